package mcp

import (
	"net/http"

	"github.com/custodia-labs/tabula/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server uses.
type Ports struct {
	// Tools is the registry exposed one MCP tool per entry.
	Tools driving.ToolService

	// Answers backs the "ask" tool. Optional.
	Answers driving.AnswerService

	// Library backs the document resources. Optional.
	Library driving.LibraryService

	// Metrics is served at /metrics in HTTP mode. Optional.
	Metrics http.Handler
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Tools == nil {
		return ErrMissingToolService
	}
	return nil
}
