package driven

import (
	"context"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

// HistoryStore persists answered questions.
type HistoryStore interface {
	// Save stores an entry. Saving an existing ID replaces it.
	Save(ctx context.Context, entry domain.HistoryEntry) error

	// Get retrieves an entry by ID.
	Get(ctx context.Context, id string) (*domain.HistoryEntry, error)

	// List returns the most recent entries, newest first.
	List(ctx context.Context, limit int) ([]domain.HistoryEntry, error)

	// Clear deletes all entries and returns how many were removed.
	Clear(ctx context.Context) (int, error)
}
