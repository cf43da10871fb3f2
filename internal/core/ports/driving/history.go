package driving

import (
	"context"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

// HistoryService exposes previously answered questions.
type HistoryService interface {
	// Record stores a response.
	Record(ctx context.Context, resp *domain.Response) error

	// List returns recent entries, newest first.
	List(ctx context.Context, limit int) ([]domain.HistoryEntry, error)

	// Get returns one entry.
	Get(ctx context.Context, id string) (*domain.HistoryEntry, error)

	// Clear deletes all entries.
	Clear(ctx context.Context) (int, error)
}
