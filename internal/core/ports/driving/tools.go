package driving

import (
	"context"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

// ToolService is the fixed tool registry exposed to decision-makers.
type ToolService interface {
	// Catalog returns every tool spec in registry order.
	Catalog() []domain.ToolSpec

	// Spec returns one tool's spec.
	Spec(name domain.ToolName) (domain.ToolSpec, bool)

	// Call validates parameters against the tool's schema and runs it.
	// Unknown tools fail with domain.ErrUnknownTool and invalid
	// parameters with domain.ErrBadParameter.
	Call(ctx context.Context, call domain.ToolCall) (domain.ToolResult, error)
}
