package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// ToolName identifies a registry tool. The set is closed: only the
// constants below are valid.
type ToolName string

// Registry tools.
const (
	ToolViewPages          ToolName = "view_pages"
	ToolViewKeywords       ToolName = "view_keywords"
	ToolViewTables         ToolName = "view_tables"
	ToolTableSummary       ToolName = "table_summary"
	ToolFindRelevantTables ToolName = "find_relevant_tables"
	ToolFindRelevantPages  ToolName = "find_relevant_pages"
	ToolSearchIndex        ToolName = "search_index"
	ToolGetTableData       ToolName = "get_table_data"
	ToolGetRowData         ToolName = "get_row_data"
	ToolGetPageContent     ToolName = "get_page_content"
)

// AllToolNames returns the registry tools in catalogue order.
func AllToolNames() []ToolName {
	return []ToolName{
		ToolViewPages,
		ToolViewKeywords,
		ToolViewTables,
		ToolTableSummary,
		ToolFindRelevantTables,
		ToolFindRelevantPages,
		ToolSearchIndex,
		ToolGetTableData,
		ToolGetRowData,
		ToolGetPageContent,
	}
}

// IsValid returns true if the name is in the registry set.
func (n ToolName) IsValid() bool {
	for _, t := range AllToolNames() {
		if t == n {
			return true
		}
	}
	return false
}

// String returns the string representation.
func (n ToolName) String() string {
	return string(n)
}

// Category returns the evidence-gathering phase the tool belongs to.
func (n ToolName) Category() ToolCategory {
	switch n {
	case ToolViewPages, ToolViewKeywords, ToolViewTables:
		return CategoryDiscovery
	case ToolTableSummary, ToolFindRelevantTables, ToolFindRelevantPages, ToolSearchIndex:
		return CategoryExploration
	case ToolGetTableData, ToolGetRowData, ToolGetPageContent:
		return CategoryRetrieval
	default:
		return CategoryUnknown
	}
}

// ToolCategory groups tools by evidence-gathering phase.
type ToolCategory string

// Tool categories.
const (
	CategoryDiscovery   ToolCategory = "discovery"
	CategoryExploration ToolCategory = "exploration"
	CategoryRetrieval   ToolCategory = "retrieval"
	CategoryUnknown     ToolCategory = "unknown"
)

// ToolSpec is the catalogue entry shown to a decision-maker.
type ToolSpec struct {
	Name        ToolName        `json:"name"`
	Description string          `json:"description"`
	Category    ToolCategory    `json:"category"`
	Parameters  json.RawMessage `json:"parameters"`
}

// ToolCall is a request to run a registry tool.
type ToolCall struct {
	Name       ToolName       `json:"tool"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// Key returns a canonical identity for the call. Two calls with the same
// name and equal parameters share a key regardless of map order.
func (c ToolCall) Key() string {
	params := c.Parameters
	if params == nil {
		params = map[string]any{}
	}
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Sprintf("%s:%v", c.Name, params)
	}
	return string(c.Name) + ":" + string(data)
}

// String renders the call as name(k=v, ...) with keys sorted and values
// JSON-encoded.
func (c ToolCall) String() string {
	keys := make([]string, 0, len(c.Parameters))
	for k := range c.Parameters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		v, err := json.Marshal(c.Parameters[k])
		if err != nil {
			parts[i] = fmt.Sprintf("%s=%v", k, c.Parameters[k])
			continue
		}
		parts[i] = k + "=" + string(v)
	}
	return string(c.Name) + "(" + strings.Join(parts, ", ") + ")"
}
