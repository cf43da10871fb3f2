package domain

import (
	"fmt"
	"strings"
)

// ToolResult is the closed set of values a registry tool can return.
// Each variant knows how to format itself for a prompt and which
// sources it contributes.
type ToolResult interface {
	// Kind names the variant.
	Kind() ResultKind

	// Format renders the result as prompt context.
	Format() string

	// Sources returns the attributions the result supports.
	Sources() []Source

	isToolResult()
}

// ResultKind names a ToolResult variant.
type ResultKind string

// Result kinds.
const (
	KindList      ResultKind = "list"
	KindRelevance ResultKind = "relevance"
	KindSummary   ResultKind = "summary"
	KindSearch    ResultKind = "search"
	KindTable     ResultKind = "table"
	KindRow       ResultKind = "row"
	KindPage      ResultKind = "page"
	KindNotFound  ResultKind = "not_found"
)

// Source attributes part of an answer to a page or table.
type Source struct {
	Type       string `json:"type"`
	Title      string `json:"title"`
	PageNumber int    `json:"page_number"`
	DocID      string `json:"doc_id,omitempty"`
	Category   string `json:"category,omitempty"`
}

// Source types.
const (
	SourceTable    = "table"
	SourcePage     = "page"
	SourceDocument = "document"
)

// maxListed caps list lines in formatted results.
const maxListed = 25

// maxFormattedRows caps rows in formatted table results.
const maxFormattedRows = 50

// ListResult is a discovery listing. Exactly one of the slices is set,
// according to Tool.
type ListResult struct {
	Tool     ToolName     `json:"tool"`
	Pages    []PageEntry  `json:"pages,omitempty"`
	Tables   []TableEntry `json:"tables,omitempty"`
	Keywords []string     `json:"keywords,omitempty"`
}

func (*ListResult) isToolResult() {}

// Kind implements ToolResult.
func (*ListResult) Kind() ResultKind { return KindList }

// Format implements ToolResult.
func (r *ListResult) Format() string {
	var lines []string
	switch r.Tool {
	case ToolViewPages:
		lines = append(lines, fmt.Sprintf("Pages available: %d", len(r.Pages)))
		for i, p := range r.Pages {
			if i == maxListed {
				lines = append(lines, fmt.Sprintf("  ... and %d more pages", len(r.Pages)-maxListed))
				break
			}
			lines = append(lines, fmt.Sprintf("  - Page %d: %s", p.Number, p.Title))
		}
	case ToolViewTables:
		lines = append(lines, fmt.Sprintf("Tables available: %d", len(r.Tables)))
		for i, t := range r.Tables {
			if i == maxListed {
				lines = append(lines, fmt.Sprintf("  ... and %d more tables", len(r.Tables)-maxListed))
				break
			}
			lines = append(lines, fmt.Sprintf("  - %s (Category: %s, page %d, %d rows x %d columns)",
				t.Title, t.Category, t.PageNumber, t.RowCount, t.ColumnCount))
		}
	default:
		lines = append(lines, fmt.Sprintf("Keywords available: %d", len(r.Keywords)))
		if len(r.Keywords) > 0 {
			sample := r.Keywords
			if len(sample) > maxListed*2 {
				sample = sample[:maxListed*2]
			}
			lines = append(lines, "  Sample: "+strings.Join(sample, ", "))
		}
	}
	return strings.Join(lines, "\n")
}

// Sources implements ToolResult. Listings attribute nothing.
func (*ListResult) Sources() []Source { return nil }

// RelevanceResult holds scored tables or pages for a query.
type RelevanceResult struct {
	Tool   ToolName         `json:"tool"`
	Query  string           `json:"query"`
	Tables []TableRelevance `json:"tables,omitempty"`
	Pages  []PageRelevance  `json:"pages,omitempty"`
}

func (*RelevanceResult) isToolResult() {}

// Kind implements ToolResult.
func (*RelevanceResult) Kind() ResultKind { return KindRelevance }

// Format implements ToolResult.
func (r *RelevanceResult) Format() string {
	var lines []string
	if r.Tool == ToolFindRelevantPages {
		lines = append(lines, fmt.Sprintf("Relevant pages for %q: %d", r.Query, len(r.Pages)))
		for i, p := range r.Pages {
			if i == maxListed {
				break
			}
			lines = append(lines, fmt.Sprintf("  - %s (Score: %.2f, Relation: %s, page %d)",
				p.PageTitle, p.Score, p.Relation, p.PageNumber))
		}
		return strings.Join(lines, "\n")
	}
	lines = append(lines, fmt.Sprintf("Relevant tables for %q: %d", r.Query, len(r.Tables)))
	for i, t := range r.Tables {
		if i == maxListed {
			break
		}
		lines = append(lines, fmt.Sprintf("  - %s (Score: %.2f, Relation: %s, page %d)",
			t.TableName, t.Score, t.Relation, t.PageNumber))
	}
	return strings.Join(lines, "\n")
}

// Sources implements ToolResult. Relevance scores are leads, not evidence.
func (*RelevanceResult) Sources() []Source { return nil }

// SearchResultSet holds keyword index hits.
type SearchResultSet struct {
	Query   string         `json:"query"`
	Scope   SearchScope    `json:"scope"`
	Results []SearchResult `json:"results"`
}

func (*SearchResultSet) isToolResult() {}

// Kind implements ToolResult.
func (*SearchResultSet) Kind() ResultKind { return KindSearch }

// Format implements ToolResult.
func (r *SearchResultSet) Format() string {
	lines := []string{fmt.Sprintf("Search results for %q (%s): %d", r.Query, r.Scope, len(r.Results))}
	for i := range r.Results {
		lines = append(lines, fmt.Sprintf("  - [%.0f] %s", r.Results[i].Score, r.Results[i].Context))
	}
	return strings.Join(lines, "\n")
}

// Sources implements ToolResult.
func (r *SearchResultSet) Sources() []Source {
	sources := make([]Source, 0, len(r.Results))
	for i := range r.Results {
		sources = append(sources, Source{
			Type:       SourcePage,
			Title:      r.Results[i].PageTitle,
			PageNumber: r.Results[i].PageNumber,
			DocID:      r.Results[i].DocID,
		})
	}
	return sources
}

// SummaryResult is a table deep-dive.
type SummaryResult struct {
	Summary TableSummary `json:"summary"`
}

func (*SummaryResult) isToolResult() {}

// Kind implements ToolResult.
func (*SummaryResult) Kind() ResultKind { return KindSummary }

// Format implements ToolResult.
func (r *SummaryResult) Format() string {
	s := r.Summary
	lines := []string{
		"Table: " + s.Title,
		"  Category: " + s.Category,
		fmt.Sprintf("  Dimensions: %d rows x %d columns", s.RowCount, s.ColumnCount),
	}
	if s.Description != "" {
		lines = append(lines, "  Description: "+s.Description)
	}
	for _, c := range s.Columns {
		lines = append(lines, fmt.Sprintf("  Column %s (%s): %s", c.Name, c.DataType, strings.Join(c.SampleValues, ", ")))
	}
	for i, row := range s.SampleRows {
		lines = append(lines, fmt.Sprintf("  Sample row %d: %s", i+1, row))
	}
	return strings.Join(lines, "\n")
}

// Sources implements ToolResult.
func (r *SummaryResult) Sources() []Source {
	return []Source{{
		Type:       SourceTable,
		Title:      r.Summary.Title,
		PageNumber: r.Summary.PageNumber,
		DocID:      r.Summary.DocID,
		Category:   r.Summary.Category,
	}}
}

// TableResult is full or projected table data.
type TableResult struct {
	Data TableData `json:"data"`
}

func (*TableResult) isToolResult() {}

// Kind implements ToolResult.
func (*TableResult) Kind() ResultKind { return KindTable }

// Format implements ToolResult.
func (r *TableResult) Format() string {
	d := r.Data
	lines := []string{
		fmt.Sprintf("Table data: %s (page %d, %d rows x %d columns)", d.Title, d.PageNumber, d.RowCount, d.ColumnCount),
		"  Columns: " + strings.Join(d.Columns, ", "),
	}
	lines = append(lines, formatRows(d.Rows)...)
	return strings.Join(lines, "\n")
}

// Sources implements ToolResult.
func (r *TableResult) Sources() []Source {
	return []Source{{
		Type:       SourceTable,
		Title:      r.Data.Title,
		PageNumber: r.Data.PageNumber,
		DocID:      r.Data.DocID,
		Category:   r.Data.Category,
	}}
}

// RowResult is a set of rows matched within one table.
type RowResult struct {
	Match RowMatch `json:"match"`
}

func (*RowResult) isToolResult() {}

// Kind implements ToolResult.
func (*RowResult) Kind() ResultKind { return KindRow }

// Format implements ToolResult.
func (r *RowResult) Format() string {
	m := r.Match
	header := fmt.Sprintf("Rows in %s: %d match", m.Title, m.MatchCount)
	if m.Column != "" {
		header = fmt.Sprintf("Rows in %s where %s = %q: %d match", m.Title, m.Column, m.Target, m.MatchCount)
	}
	lines := append([]string{header}, formatRows(m.Rows)...)
	return strings.Join(lines, "\n")
}

// Sources implements ToolResult.
func (r *RowResult) Sources() []Source {
	if r.Match.MatchCount == 0 {
		return nil
	}
	return []Source{{
		Type:       SourceTable,
		Title:      r.Match.Title,
		PageNumber: r.Match.PageNumber,
		DocID:      r.Match.DocID,
	}}
}

// PageResult is the full content of one page.
type PageResult struct {
	Page PageContent `json:"page"`
}

func (*PageResult) isToolResult() {}

// Kind implements ToolResult.
func (*PageResult) Kind() ResultKind { return KindPage }

// Format implements ToolResult.
func (r *PageResult) Format() string {
	p := r.Page
	lines := []string{
		fmt.Sprintf("Page %d: %s", p.Number, p.Title),
		fmt.Sprintf("  Tables on page: %d", p.TableCount),
	}
	if p.Summary != "" {
		lines = append(lines, "  Summary: "+p.Summary)
	}
	if p.Content != "" {
		lines = append(lines, "  Content: "+p.Content)
	}
	for _, t := range p.Tables {
		lines = append(lines, fmt.Sprintf("  Table %s: %d rows (%s)", t.Title, t.RowCount, strings.Join(t.Columns, ", ")))
	}
	return strings.Join(lines, "\n")
}

// Sources implements ToolResult.
func (r *PageResult) Sources() []Source {
	return []Source{{
		Type:       SourcePage,
		Title:      r.Page.Title,
		PageNumber: r.Page.Number,
		DocID:      r.Page.DocID,
	}}
}

// NotFound is the expected outcome of a lookup miss.
type NotFound struct {
	What string `json:"what"`
	Key  string `json:"key"`
	// Suggestions lists nearby valid keys, when known.
	Suggestions []string `json:"suggestions,omitempty"`
}

func (*NotFound) isToolResult() {}

// Kind implements ToolResult.
func (*NotFound) Kind() ResultKind { return KindNotFound }

// Format implements ToolResult.
func (r *NotFound) Format() string {
	msg := fmt.Sprintf("No %s found for %q", r.What, r.Key)
	if len(r.Suggestions) > 0 {
		msg += ". Available: " + strings.Join(r.Suggestions, ", ")
	}
	return msg
}

// Sources implements ToolResult.
func (*NotFound) Sources() []Source { return nil }

func formatRows(rows []Row) []string {
	lines := make([]string, 0, len(rows)+1)
	for i, row := range rows {
		if i == maxFormattedRows {
			lines = append(lines, fmt.Sprintf("  ... and %d more rows", len(rows)-maxFormattedRows))
			break
		}
		lines = append(lines, fmt.Sprintf("  Row %d: %s", i+1, row))
	}
	return lines
}
