package driving

import (
	"context"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

// IndexService is the inverted keyword index over loaded documents.
// Every query method fails with domain.ErrNotIndexed before Build.
type IndexService interface {
	// Build rebuilds the index from the document store. Idempotent.
	Build(ctx context.Context) error

	// IsBuilt reports whether Build has completed.
	IsBuilt() bool

	// Search tokenises free text (tokens of three or more characters)
	// and ranks pages by the number of distinct matched tokens.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)

	// SearchByTerms ranks pages against explicit terms, without the
	// length filter applied to free text.
	SearchByTerms(ctx context.Context, terms []string, opts domain.SearchOptions) ([]domain.SearchResult, error)

	// AvailableKeywords returns every indexed token, sorted.
	AvailableKeywords(ctx context.Context) ([]string, error)

	// PageByNumber returns a page as a search result. docID may be empty.
	PageByNumber(ctx context.Context, number int, docID string) (*domain.SearchResult, error)
}
