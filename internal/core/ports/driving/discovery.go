package driving

import (
	"context"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

// DiscoveryService lists what exists and scores what is relevant.
// Listings come from a catalog built lazily and rebuilt in full after
// Invalidate.
type DiscoveryService interface {
	// ListPages returns all pages sorted by page number, then title.
	ListPages(ctx context.Context) []domain.PageEntry

	// ListTables returns all tables sorted by page number, then title.
	ListTables(ctx context.Context) []domain.TableEntry

	// ListKeywords returns the sorted vocabulary of pages and tables.
	ListKeywords(ctx context.Context) []string

	// TablesByCategory returns tables whose category equals category,
	// compared case-insensitively.
	TablesByCategory(ctx context.Context, category string) []domain.TableEntry

	// FindRelevantTables scores tables against a free-text query.
	FindRelevantTables(ctx context.Context, query string) []domain.TableRelevance

	// FindRelevantPages scores pages against a free-text query.
	FindRelevantPages(ctx context.Context, query string) []domain.PageRelevance

	// TableSummary returns the deep-dive view of a table.
	TableSummary(ctx context.Context, title string) (*domain.TableSummary, bool)

	// Invalidate drops the catalog; the next call rebuilds it.
	Invalidate()
}
