package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/tabula/internal/core/domain"
	"github.com/custodia-labs/tabula/internal/core/ports/driven"
	"github.com/custodia-labs/tabula/internal/core/ports/driving"
	"github.com/custodia-labs/tabula/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// maxSuggestions bounds the alternatives listed in a NotFound result.
const maxSuggestions = 10

// allColumns selects every column in GetTableData.
const allColumns = "all"

// RetrievalService fetches exact table and page data from the store.
type RetrievalService struct {
	store driven.DocumentStore
}

// NewRetrievalService creates a retrieval service over store.
func NewRetrievalService(store driven.DocumentStore) *RetrievalService {
	return &RetrievalService{store: store}
}

// GetTableData returns a table, projected to columns when given.
func (s *RetrievalService) GetTableData(
	_ context.Context, title string, columns []string,
) (domain.ToolResult, error) {
	table, ok := s.store.TableByTitle(title, "")
	if !ok {
		return s.tableNotFound(title), nil
	}

	data := domain.TableData{
		Title:       table.Title,
		PageNumber:  table.PageNumber,
		DocID:       table.DocID,
		Description: table.Description,
		Category:    tableCategory(table),
	}

	if len(columns) == 0 || (len(columns) == 1 && columns[0] == allColumns) {
		data.Columns = table.ColumnNames()
		data.Rows = table.Rows
	} else {
		if err := requireColumns(table, "columns", columns...); err != nil {
			return nil, err
		}
		data.Columns = columns
		data.Rows = make([]domain.Row, len(table.Rows))
		for i, r := range table.Rows {
			data.Rows[i] = r.Project(columns)
		}
	}
	if data.Rows == nil {
		data.Rows = []domain.Row{}
	}
	data.RowCount = len(data.Rows)
	data.ColumnCount = len(data.Columns)

	logger.Debug("table data %q: %d rows x %d columns", title, data.RowCount, data.ColumnCount)
	return &domain.TableResult{Data: data}, nil
}

// GetRowData returns rows whose column value equals target, ignoring case.
func (s *RetrievalService) GetRowData(
	_ context.Context, title, column, target string,
) (domain.ToolResult, error) {
	table, ok := s.store.TableByTitle(title, "")
	if !ok {
		return s.tableNotFound(title), nil
	}
	if err := requireColumns(table, "column", column); err != nil {
		return nil, err
	}

	matches := filterRows(table.Rows, func(r domain.Row) bool {
		v, ok := r.Get(column)
		return ok && strings.EqualFold(domain.CellString(v), target)
	})
	logger.Debug("row data %q %s=%q: %d rows", title, column, target, len(matches))
	return &domain.RowResult{Match: domain.RowMatch{
		Title:      table.Title,
		Column:     column,
		Target:     target,
		Rows:       matches,
		MatchCount: len(matches),
		PageNumber: table.PageNumber,
		DocID:      table.DocID,
	}}, nil
}

// GetRowsByCriteria returns rows satisfying every criterion.
func (s *RetrievalService) GetRowsByCriteria(
	_ context.Context, title string, criteria []domain.Criterion,
) (domain.ToolResult, error) {
	table, ok := s.store.TableByTitle(title, "")
	if !ok {
		return s.tableNotFound(title), nil
	}

	cols := make([]string, len(criteria))
	for i, c := range criteria {
		cols[i] = c.Column
		if !validOperator(c.Operator) {
			return nil, &domain.BadParameterError{
				Param: "operator",
				Value: c.Operator,
				Valid: []string{domain.OpEquals, domain.OpContains, domain.OpGreaterThan, domain.OpLessThan},
			}
		}
	}
	if err := requireColumns(table, "column", cols...); err != nil {
		return nil, err
	}

	matches := filterRows(table.Rows, func(r domain.Row) bool {
		for _, c := range criteria {
			v, ok := r.Get(c.Column)
			if !ok || !matchCriterion(v, c) {
				return false
			}
		}
		return true
	})
	return &domain.RowResult{Match: domain.RowMatch{
		Title:      table.Title,
		Rows:       matches,
		MatchCount: len(matches),
		PageNumber: table.PageNumber,
		DocID:      table.DocID,
	}}, nil
}

// SearchTableValues returns rows where any cell contains term, ignoring
// case. The table may be named by title or by id.
func (s *RetrievalService) SearchTableValues(
	_ context.Context, title, term string,
) (domain.ToolResult, error) {
	table, ok := s.tableByTitleOrID(title)
	if !ok {
		return s.tableNotFound(title), nil
	}

	needle := strings.ToLower(term)
	matches := filterRows(table.Rows, func(r domain.Row) bool {
		for _, f := range r {
			if f.Value == nil {
				continue
			}
			if strings.Contains(strings.ToLower(domain.CellString(f.Value)), needle) {
				return true
			}
		}
		return false
	})
	return &domain.RowResult{Match: domain.RowMatch{
		Title:      table.Title,
		Target:     term,
		Rows:       matches,
		MatchCount: len(matches),
		PageNumber: table.PageNumber,
		DocID:      table.DocID,
	}}, nil
}

// GetPageContent resolves a page by number, then by title. Digit-only
// titles are tried as numbers first.
func (s *RetrievalService) GetPageContent(
	_ context.Context, id domain.PageIdentifier,
) (domain.ToolResult, error) {
	pages := s.store.AllPages()

	var found *domain.Page
	if !id.ByTitle {
		for i := range pages {
			if pages[i].Number == id.Number {
				found = &pages[i]
				break
			}
		}
	}
	if found == nil && id.Title != "" {
		for i := range pages {
			if strings.EqualFold(pageTitle(&pages[i]), id.Title) {
				found = &pages[i]
				break
			}
		}
	}
	if found == nil {
		suggestions := make([]string, 0, maxSuggestions)
		for i := range pages {
			if i == maxSuggestions {
				break
			}
			suggestions = append(suggestions, pageTitle(&pages[i]))
		}
		return &domain.NotFound{What: "page", Key: id.String(), Suggestions: suggestions}, nil
	}

	content := domain.PageContent{
		Title:      pageTitle(found),
		Number:     found.Number,
		PageID:     found.ID,
		DocID:      found.DocID,
		Summary:    found.Summary,
		Content:    found.Content,
		Tables:     make([]domain.TableData, 0, len(found.Tables)),
		TableCount: len(found.Tables),
		Metadata:   found.Metadata,
	}
	for i := range found.Tables {
		t := &found.Tables[i]
		content.Tables = append(content.Tables, domain.TableData{
			Title:       t.Title,
			Columns:     t.ColumnNames(),
			Rows:        t.Rows,
			RowCount:    len(t.Rows),
			ColumnCount: len(t.Columns),
			PageNumber:  t.PageNumber,
			DocID:       t.DocID,
			Description: t.Description,
			Category:    tableCategory(t),
		})
	}
	return &domain.PageResult{Page: content}, nil
}

// TableStatistics counts values per declared column.
func (s *RetrievalService) TableStatistics(_ context.Context, title string) (*domain.TableStatistics, error) {
	table, ok := s.tableByTitleOrID(title)
	if !ok {
		return nil, fmt.Errorf("table %q: %w", title, domain.ErrNotFound)
	}

	stats := &domain.TableStatistics{
		Title:       table.Title,
		TableID:     table.ID,
		DocID:       table.DocID,
		PageID:      table.PageID,
		Category:    tableCategory(table),
		RowCount:    len(table.Rows),
		ColumnCount: len(table.Columns),
		Columns:     make(map[string]domain.ColumnStatistics, len(table.Columns)),
	}
	for _, c := range table.Columns {
		if c.Name == "" {
			continue
		}
		var cs domain.ColumnStatistics
		unique := make(map[string]struct{})
		for _, r := range table.Rows {
			v, ok := r.Get(c.Name)
			if !ok {
				continue
			}
			cs.TotalValues++
			s := domain.CellString(v)
			if v == nil || s == "" {
				continue
			}
			cs.NonNullValues++
			unique[s] = struct{}{}
		}
		cs.NullCount = cs.TotalValues - cs.NonNullValues
		cs.UniqueValues = len(unique)
		stats.Columns[c.Name] = cs
	}
	return stats, nil
}

func (s *RetrievalService) tableByTitleOrID(key string) (*domain.Table, bool) {
	if t, ok := s.store.TableByTitle(key, ""); ok {
		return t, true
	}
	return s.store.TableByID(key, "")
}

func (s *RetrievalService) tableNotFound(title string) *domain.NotFound {
	tables := s.store.AllTables()
	suggestions := make([]string, 0, min(len(tables), maxSuggestions))
	for i := range tables {
		if i == maxSuggestions {
			break
		}
		suggestions = append(suggestions, tables[i].Title)
	}
	return &domain.NotFound{What: "table", Key: title, Suggestions: suggestions}
}

// requireColumns fails with the declared columns as alternatives when
// any name is not a declared column.
func requireColumns(t *domain.Table, param string, names ...string) error {
	var missing []string
	for _, n := range names {
		if !t.HasColumn(n) {
			missing = append(missing, n)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &domain.BadParameterError{
		Param: param,
		Value: strings.Join(missing, ", "),
		Valid: t.ColumnNames(),
	}
}

func filterRows(rows []domain.Row, keep func(domain.Row) bool) []domain.Row {
	out := []domain.Row{}
	for _, r := range rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func validOperator(op string) bool {
	switch op {
	case "", domain.OpEquals, domain.OpContains, domain.OpGreaterThan, domain.OpLessThan:
		return true
	default:
		return false
	}
}

// matchCriterion compares a cell with a criterion. equals compares
// numerically when both sides are numbers and otherwise as text,
// ignoring case. Ordering operators require both sides to be numeric.
func matchCriterion(cell any, c domain.Criterion) bool {
	switch c.Operator {
	case domain.OpContains:
		return strings.Contains(
			strings.ToLower(domain.CellString(cell)),
			strings.ToLower(domain.CellString(c.Value)),
		)
	case domain.OpGreaterThan, domain.OpLessThan:
		a, okA := numeric(cell)
		b, okB := numeric(c.Value)
		if !okA || !okB {
			return false
		}
		if c.Operator == domain.OpGreaterThan {
			return a > b
		}
		return a < b
	default:
		if a, ok := numeric(cell); ok {
			if b, ok := numeric(c.Value); ok {
				return a == b
			}
		}
		return strings.EqualFold(domain.CellString(cell), domain.CellString(c.Value))
	}
}

// numeric reads numbers and numeric strings.
func numeric(v any) (float64, bool) {
	if f, ok := domain.CellNumber(v); ok {
		return f, true
	}
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f, err == nil
}
