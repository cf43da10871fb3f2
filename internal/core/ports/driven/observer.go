package driven

import (
	"time"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

// Tool call outcomes reported to a ToolObserver.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// ToolObserver receives measurements from the tool registry and the agent.
type ToolObserver interface {
	// ObserveTool records one tool execution.
	ObserveTool(tool domain.ToolName, outcome string, elapsed time.Duration)

	// ObserveQuery records one answered question.
	ObserveQuery(mode, stopReason string, degraded bool, elapsed time.Duration)
}
