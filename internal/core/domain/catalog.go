package domain

// PageEntry is the discovery listing for a page.
type PageEntry struct {
	Title  string `json:"page_title"`
	Number int    `json:"page_number"`
	DocID  string `json:"doc_id"`
}

// TableEntry is the discovery listing for a table.
type TableEntry struct {
	Title       string `json:"table_title"`
	Category    string `json:"category"`
	PageNumber  int    `json:"page_number"`
	DocID       string `json:"doc_id"`
	RowCount    int    `json:"row_count"`
	ColumnCount int    `json:"column_count"`
	Description string `json:"description"`
}

// Relevance relations reported by the relevance engine. For tables the
// order below is also the tie-break priority.
const (
	RelationCategory    = "category"
	RelationColumn      = "column"
	RelationValues      = "values"
	RelationDescription = "description"

	RelationContent     = "content"
	RelationTableTitles = "table_titles"
	RelationKeywords    = "keywords"
)

// TableRelevance scores one table against a free-text query.
type TableRelevance struct {
	TableName    string  `json:"table_name"`
	Relation     string  `json:"relation"`
	Score        float64 `json:"relevance_score"`
	PageNumber   int     `json:"page_number"`
	DocID        string  `json:"doc_id"`
	Category     string  `json:"category"`
	MatchDetails string  `json:"match_details"`
}

// PageRelevance scores one page against a free-text query.
type PageRelevance struct {
	PageTitle    string  `json:"page_title"`
	Relation     string  `json:"relation"`
	Score        float64 `json:"relevance_score"`
	PageNumber   int     `json:"page_number"`
	DocID        string  `json:"doc_id"`
	TableCount   int     `json:"table_count"`
	MatchDetails string  `json:"match_details"`
}

// ColumnSummary describes one column in a table summary.
type ColumnSummary struct {
	Name         string   `json:"name"`
	DataType     string   `json:"data_type"`
	SampleValues []string `json:"sample_values"`
}

// TableSummary is the deep-dive view of a single table.
type TableSummary struct {
	Title       string          `json:"table_title"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	PageNumber  int             `json:"page_number"`
	DocID       string          `json:"doc_id"`
	RowCount    int             `json:"row_count"`
	ColumnCount int             `json:"column_count"`
	Columns     []ColumnSummary `json:"columns"`
	SampleRows  []Row           `json:"sample_rows"`
	Metadata    map[string]any  `json:"metadata,omitempty"`
}

// ColumnStatistics counts values in one column.
type ColumnStatistics struct {
	TotalValues   int `json:"total_values"`
	NonNullValues int `json:"non_null_values"`
	NullCount     int `json:"null_count"`
	UniqueValues  int `json:"unique_values"`
}

// TableStatistics aggregates per-column value counts.
type TableStatistics struct {
	Title       string                      `json:"title"`
	TableID     string                      `json:"table_id"`
	DocID       string                      `json:"doc_id"`
	PageID      string                      `json:"page_id"`
	Category    string                      `json:"technical_category"`
	RowCount    int                         `json:"row_count"`
	ColumnCount int                         `json:"column_count"`
	Columns     map[string]ColumnStatistics `json:"column_statistics"`
}
