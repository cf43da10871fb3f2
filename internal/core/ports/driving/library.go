package driving

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

// DocumentSpec names a dump to load.
type DocumentSpec struct {
	ID   string
	Path string
}

// LoadResult reports the outcome of loading one document in a batch.
type LoadResult struct {
	ID   string
	Path string
	Err  error
}

// LibraryService manages the set of loaded documents. Every change
// rebuilds the keyword index and the discovery catalog while holding an
// exclusive lock, so queries never observe a partial rebuild.
type LibraryService interface {
	// Load reads one document and rebuilds indexes.
	// A failure leaves previously loaded documents intact.
	Load(ctx context.Context, spec DocumentSpec) error

	// LoadAll loads a batch. Each document succeeds or fails on its own;
	// indexes are rebuilt once at the end.
	LoadAll(ctx context.Context, specs []DocumentSpec) []LoadResult

	// Reload re-reads a loaded document from its original path.
	Reload(ctx context.Context, docID string) error

	// Remove unloads a document. Returns false if it was not loaded.
	Remove(ctx context.Context, docID string) (bool, error)

	// Clear unloads everything.
	Clear(ctx context.Context) error

	// Documents lists loaded documents in insertion order.
	Documents() []domain.DocumentInfo

	// Statistics returns counts across the library.
	Statistics() domain.StoreStatistics

	// PathOf returns the source path of a loaded document.
	PathOf(docID string) (string, bool)
}

// ParseDocumentSpec parses an "id=path" argument. A bare path uses the
// file name without extension as the id.
func ParseDocumentSpec(s string) (DocumentSpec, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DocumentSpec{}, fmt.Errorf("%w: empty document spec", domain.ErrBadParameter)
	}
	id, path, ok := strings.Cut(s, "=")
	if !ok {
		path = s
		base := filepath.Base(path)
		id = strings.TrimSuffix(base, filepath.Ext(base))
	}
	id, path = strings.TrimSpace(id), strings.TrimSpace(path)
	if id == "" || path == "" {
		return DocumentSpec{}, &domain.BadParameterError{Param: "document", Value: s}
	}
	return DocumentSpec{ID: id, Path: path}, nil
}
