// Package tui provides an interactive terminal user interface for tabula.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/tabula/internal/core/ports/driving"
)

// Ports aggregates the driving ports the TUI uses.
type Ports struct {
	// Answers answers questions. Required.
	Answers driving.AnswerService

	// Discovery backs the tables browser. Optional.
	Discovery driving.DiscoveryService

	// History backs the history browser. Optional.
	History driving.HistoryService

	// Summary is shown under the menu title, e.g. "2 documents, 14 tables".
	Summary string
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Answers == nil {
		return ErrMissingAnswerService
	}
	return nil
}
