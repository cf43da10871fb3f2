package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// TableData is the result of fetching a table, optionally projected.
type TableData struct {
	Title       string   `json:"table_title"`
	Columns     []string `json:"columns"`
	Rows        []Row    `json:"rows"`
	RowCount    int      `json:"row_count"`
	ColumnCount int      `json:"column_count"`
	PageNumber  int      `json:"page_number"`
	DocID       string   `json:"doc_id"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
}

// RowMatch is the result of filtering a table's rows.
type RowMatch struct {
	Title      string `json:"table_title"`
	Column     string `json:"column,omitempty"`
	Target     string `json:"target,omitempty"`
	Rows       []Row  `json:"rows"`
	MatchCount int    `json:"match_count"`
	PageNumber int    `json:"page_number"`
	DocID      string `json:"doc_id"`
}

// PageContent is the full content of a single page.
type PageContent struct {
	Title      string         `json:"page_title"`
	Number     int            `json:"page_number"`
	PageID     string         `json:"page_id"`
	DocID      string         `json:"doc_id"`
	Summary    string         `json:"summary,omitempty"`
	Content    string         `json:"content"`
	Tables     []TableData    `json:"tables"`
	TableCount int            `json:"table_count"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Criterion operators for multi-criteria row filtering.
const (
	OpEquals      = "equals"
	OpContains    = "contains"
	OpGreaterThan = "greater_than"
	OpLessThan    = "less_than"
)

// Criterion is one column condition in a multi-criteria row filter.
type Criterion struct {
	Column   string `json:"column"`
	Operator string `json:"operator,omitempty"`
	Value    any    `json:"value"`
}

// PageIdentifier addresses a page by number or by title. A number parsed
// from a string keeps the string in Title so lookups can fall back to it.
type PageIdentifier struct {
	Number  int
	Title   string
	ByTitle bool
}

// PageByNumber addresses a page by its parsed number.
func PageByNumber(n int) PageIdentifier {
	return PageIdentifier{Number: n}
}

// PageByTitle addresses a page by title, compared case-insensitively.
func PageByTitle(title string) PageIdentifier {
	return PageIdentifier{Title: title, ByTitle: true}
}

// ParsePageIdentifier interprets a decoded JSON value. Integral numbers,
// and strings that are entirely digits, address a page number; any other
// string is a title.
func ParsePageIdentifier(v any) (PageIdentifier, bool) {
	switch x := v.(type) {
	case float64:
		if x != float64(int(x)) {
			return PageIdentifier{}, false
		}
		return PageByNumber(int(x)), true
	case int:
		return PageByNumber(x), true
	case json.Number:
		n, err := strconv.Atoi(x.String())
		if err != nil {
			return PageIdentifier{}, false
		}
		return PageByNumber(n), true
	case string:
		s := strings.TrimSpace(x)
		if n, err := strconv.Atoi(s); err == nil {
			return PageIdentifier{Number: n, Title: s}, true
		}
		if s == "" {
			return PageIdentifier{}, false
		}
		return PageByTitle(s), true
	default:
		return PageIdentifier{}, false
	}
}

// String renders the identifier as it was given.
func (p PageIdentifier) String() string {
	if p.ByTitle {
		return p.Title
	}
	return strconv.Itoa(p.Number)
}
