package driving

import (
	"context"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

// RetrievalService fetches exact data. All methods are pure reads.
// A missing table or page is reported as a *domain.NotFound result;
// errors are reserved for malformed requests.
type RetrievalService interface {
	// GetTableData returns table rows, projected to columns unless
	// columns is empty or ["all"]. Unknown columns are a BadParameterError.
	GetTableData(ctx context.Context, title string, columns []string) (domain.ToolResult, error)

	// GetRowData returns rows whose column value equals target,
	// case-insensitively.
	GetRowData(ctx context.Context, title, column, target string) (domain.ToolResult, error)

	// GetRowsByCriteria returns rows matching every criterion.
	GetRowsByCriteria(ctx context.Context, title string, criteria []domain.Criterion) (domain.ToolResult, error)

	// SearchTableValues returns rows with any cell containing term.
	SearchTableValues(ctx context.Context, title, term string) (domain.ToolResult, error)

	// GetPageContent resolves a page by number or title.
	GetPageContent(ctx context.Context, id domain.PageIdentifier) (domain.ToolResult, error)

	// TableStatistics counts values per column. Returns domain.ErrNotFound
	// for an unknown table.
	TableStatistics(ctx context.Context, title string) (*domain.TableStatistics, error)
}
