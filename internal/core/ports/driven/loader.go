package driven

import (
	"context"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

// DocumentLoader reads a single document dump into domain form.
// Loaders tolerate missing optional fields and fail only on missing
// identity fields or unreadable input.
type DocumentLoader interface {
	// Load reads the dump at path and returns it tagged with docID.
	Load(ctx context.Context, docID, path string) (*domain.Document, error)

	// Parse decodes an in-memory dump.
	Parse(docID string, data []byte) (*domain.Document, error)
}
