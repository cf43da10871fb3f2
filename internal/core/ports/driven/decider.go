package driven

import (
	"context"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

// DecisionRequest is everything a decision-maker sees in one round.
type DecisionRequest struct {
	// Question is the user's question.
	Question string

	// Context is the formatted evidence gathered so far.
	Context string

	// Catalog lists the callable tools.
	Catalog []domain.ToolSpec

	// Round is the 1-based decision round.
	Round int

	// Calls are the keys of calls already made, oldest first.
	Calls []string
}

// Decider chooses the next step of the orchestration loop.
// Errors and malformed output are never fatal: the loop applies a
// deterministic fallback instead.
type Decider interface {
	Decide(ctx context.Context, req DecisionRequest) (domain.Decision, error)
}

// AnswerGenerator synthesises the final answer from gathered context.
type AnswerGenerator interface {
	Generate(ctx context.Context, question, evidence string) (string, error)
}
