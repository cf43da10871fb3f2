package decider

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/tabula/internal/core/domain"
	"github.com/custodia-labs/tabula/internal/core/ports/driven"
	"github.com/custodia-labs/tabula/internal/logger"
)

// Ensure LLMDecider implements the interface.
var _ driven.Decider = (*LLMDecider)(nil)

// decisionMaxTokens leaves room for a tool call with a handful of
// parameters and little else.
const decisionMaxTokens = 300

// LLMDecider asks a language model for the next step of the loop.
type LLMDecider struct {
	llm     driven.LLMService
	prompts driven.PromptStore
}

// NewLLMDecider creates a decider. prompts may be nil, in which case the
// built-in templates are used.
func NewLLMDecider(llm driven.LLMService, prompts driven.PromptStore) *LLMDecider {
	return &LLMDecider{llm: llm, prompts: prompts}
}

// Decide sends the catalog, the evidence so far and the question, and
// parses the reply. Transport failures and unparsable replies are both
// reported as domain.ErrExternalService.
func (d *LLMDecider) Decide(ctx context.Context, req driven.DecisionRequest) (domain.Decision, error) {
	messages := []driven.ChatMessage{
		{Role: "system", Content: loadPrompt(d.prompts, driven.PromptDecideSystem)},
		{Role: "user", Content: fmt.Sprintf(
			loadPrompt(d.prompts, driven.PromptDecide),
			formatCatalog(req.Catalog),
			formatEvidence(req.Context, req.Calls),
			req.Question,
		)},
	}

	reply, err := d.llm.Chat(ctx, messages, driven.ChatOptions{MaxTokens: decisionMaxTokens, JSON: true})
	if err != nil {
		return domain.Decision{}, fmt.Errorf("%w: decide: %w", domain.ErrExternalService, err)
	}
	logger.Debug("decider round %d reply: %s", req.Round, reply)

	decision, err := ParseDecision(reply)
	if err != nil {
		return domain.Decision{}, err
	}
	return decision, nil
}

// formatCatalog lists one tool per line followed by its parameter schema.
func formatCatalog(specs []domain.ToolSpec) string {
	var sb strings.Builder
	for i, spec := range specs {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "- %s [%s]: %s", spec.Name, spec.Category, spec.Description)
		if len(spec.Parameters) > 0 {
			fmt.Fprintf(&sb, "\n  parameters: %s", compactJSON(spec.Parameters))
		}
	}
	return sb.String()
}

func formatEvidence(evidence string, calls []string) string {
	if len(calls) == 0 {
		return evidence
	}
	var sb strings.Builder
	sb.WriteString(evidence)
	sb.WriteString("\n\nCalls already made (do not repeat):")
	for _, key := range calls {
		sb.WriteString("\n- ")
		sb.WriteString(key)
	}
	return sb.String()
}
