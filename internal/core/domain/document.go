package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Document is one loaded dump: an ordered set of pages with embedded tables.
// Documents are immutable once stored; the only mutation is full removal.
type Document struct {
	// ID is the caller-supplied unique key.
	ID string

	// Title comes from document_info.title, defaulting to "Document <id>".
	Title string

	// Source is the path the document was loaded from.
	Source string

	// Pages in dump order.
	Pages []Page

	// Keywords is document_summary.combined_keywords.
	Keywords []string

	// PageTitles is document_summary.page_titles.
	PageTitles []string

	// Info holds the remaining document_info fields.
	Info map[string]any

	PageCount  int
	TableCount int
	LoadedAt   time.Time
}

// Page is a content unit with free text and zero or more tables.
type Page struct {
	ID       string
	DocID    string
	Number   int
	Title    string
	Summary  string
	Content  string
	Keywords []string
	Tables   []Table
	Metadata map[string]any
}

// TableTitles returns the titles of the page's tables in order.
func (p *Page) TableTitles() []string {
	titles := make([]string, len(p.Tables))
	for i := range p.Tables {
		titles[i] = p.Tables[i].Title
	}
	return titles
}

// Table is structured data embedded in a page. Title is the lookup key;
// ID is only unique within its page.
type Table struct {
	ID          string
	PageID      string
	DocID       string
	PageNumber  int
	Title       string
	Description string
	Category    string
	Columns     []Column
	Rows        []Row
	Metadata    map[string]any
}

// ColumnNames returns the declared column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// HasColumn reports whether name is a declared column.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c.Name == name {
			return true
		}
	}
	return false
}

// Column is a declared table column.
type Column struct {
	Name     string `json:"name"`
	DataType string `json:"data_type"`
}

// Field is a single cell of a row.
type Field struct {
	Name  string
	Value any
}

// Row is an ordered field to scalar mapping. Field order and value types
// are preserved exactly as loaded.
type Row []Field

// Get returns the value of the named field.
func (r Row) Get(name string) (any, bool) {
	for _, f := range r {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Project returns a row with exactly the given columns, in order.
// Missing cells become empty strings.
func (r Row) Project(columns []string) Row {
	out := make(Row, len(columns))
	for i, c := range columns {
		v, ok := r.Get(c)
		if !ok {
			v = ""
		}
		out[i] = Field{Name: c, Value: v}
	}
	return out
}

// String renders the row as {k: v, ...}.
func (r Row) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %s", f.Name, CellString(f.Value))
	}
	b.WriteByte('}')
	return b.String()
}

// MarshalJSON writes the row as an object, keeping field order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("marshal field %q: %w", f.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object, keeping key order. Numbers are kept
// as json.Number so that no precision or formatting is lost.
func (r *Row) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*r = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("row: expected object, got %v", tok)
	}

	row := Row{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("row: expected key, got %v", keyTok)
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("row field %q: %w", key, err)
		}
		row = append(row, Field{Name: key, Value: v})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*r = row
	return nil
}

// CellString renders a cell value as text for matching and display.
func CellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

// CellNumber interprets a cell as a number when possible.
func CellNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	default:
		return 0, false
	}
}

// ParsePageNumber derives a page number from a page id. The trailing
// "_"-separated segment is tried first, then the first run of digits
// anywhere in the id. Ids with no digits map to 0.
func ParsePageNumber(pageID string) int {
	if i := strings.LastIndex(pageID, "_"); i >= 0 && isDigits(pageID[i+1:]) {
		if n, err := strconv.Atoi(pageID[i+1:]); err == nil {
			return n
		}
	}

	start := strings.IndexAny(pageID, "0123456789")
	if start < 0 {
		return 0
	}
	end := start
	for end < len(pageID) && pageID[end] >= '0' && pageID[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(pageID[start:end])
	if err != nil {
		return 0
	}
	return n
}

// DocumentInfo summarises a loaded document.
type DocumentInfo struct {
	ID           string    `json:"doc_id"`
	Title        string    `json:"title"`
	Source       string    `json:"source,omitempty"`
	PageCount    int       `json:"page_count"`
	TableCount   int       `json:"table_count"`
	KeywordCount int       `json:"keyword_count"`
	LoadedAt     time.Time `json:"loaded_at"`
}

// Summary returns the catalogue view of d.
func (d *Document) Summary() DocumentInfo {
	return DocumentInfo{
		ID:           d.ID,
		Title:        d.Title,
		Source:       d.Source,
		PageCount:    d.PageCount,
		TableCount:   d.TableCount,
		KeywordCount: len(d.Keywords),
		LoadedAt:     d.LoadedAt,
	}
}

// StoreStatistics aggregates counts across all loaded documents.
type StoreStatistics struct {
	TotalDocuments int            `json:"total_documents"`
	TotalPages     int            `json:"total_pages"`
	TotalTables    int            `json:"total_tables"`
	TotalKeywords  int            `json:"total_keywords"`
	Documents      []DocumentInfo `json:"documents"`
}

// isDigits reports whether s is a non-empty run of ASCII digits.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
