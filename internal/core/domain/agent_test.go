package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToolCall_Key_IgnoresMapOrder(t *testing.T) {
	a := ToolCall{Name: ToolGetRowData, Parameters: map[string]any{"table_name": "T", "column": "Name", "target": "x"}}
	b := ToolCall{Name: ToolGetRowData, Parameters: map[string]any{"target": "x", "column": "Name", "table_name": "T"}}

	assert.Equal(t, a.Key(), b.Key())
}

func TestToolCall_Key_NilAndEmptyParams(t *testing.T) {
	assert.Equal(t, ToolCall{Name: ToolViewPages}.Key(), ToolCall{Name: ToolViewPages, Parameters: map[string]any{}}.Key())
	assert.NotEqual(t, ToolCall{Name: ToolViewPages}.Key(), ToolCall{Name: ToolViewTables}.Key())
}

func TestDecision_Validate(t *testing.T) {
	tests := []struct {
		name    string
		d       Decision
		wantErr bool
	}{
		{"answer", Decision{Action: ActionAnswer}, false},
		{"no more tools", Decision{Action: ActionNoMoreTools}, false},
		{"tool call", Decision{Action: ActionToolCall, Call: &ToolCall{Name: ToolViewPages}}, false},
		{"tool call without call", Decision{Action: ActionToolCall}, true},
		{"unknown tool", Decision{Action: ActionToolCall, Call: &ToolCall{Name: "drop_tables"}}, true},
		{"unknown action", Decision{Action: "think"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.d.Validate()
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrExternalService))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQueryContext_RepeatedLastCall(t *testing.T) {
	q := NewQueryContext("id", "q", nil)
	assert.False(t, q.RepeatedLastCall())

	q.Record(CallRecord{Call: ToolCall{Name: ToolViewTables}, Seeded: true})
	q.Record(CallRecord{Call: ToolCall{Name: ToolTableSummary, Parameters: map[string]any{"table_name": "A"}}})
	assert.False(t, q.RepeatedLastCall())

	q.Record(CallRecord{Call: ToolCall{Name: ToolTableSummary, Parameters: map[string]any{"table_name": "A"}}})
	assert.True(t, q.RepeatedLastCall())
	assert.Equal(t, 2, q.TargetedCalls())
	assert.Equal(t, []string{"view_tables", "table_summary"}, q.ToolsUsed())
}

func TestQueryContext_Sources_Dedup(t *testing.T) {
	q := NewQueryContext("id", "q", nil)
	page := &PageResult{Page: PageContent{Title: "Page 1", Number: 1, DocID: "d"}}
	q.Record(CallRecord{Call: ToolCall{Name: ToolGetPageContent}, Result: page})
	q.Record(CallRecord{Call: ToolCall{Name: ToolGetPageContent}, Result: page})
	q.Record(CallRecord{Call: ToolCall{Name: ToolGetTableData}, Err: "boom"})

	assert.Equal(t, []Source{{Type: SourcePage, Title: "Page 1", PageNumber: 1, DocID: "d"}}, q.Sources())
}

func TestQueryContext_Lookup(t *testing.T) {
	q := NewQueryContext("id", "q", nil)
	call := ToolCall{Name: ToolViewPages}
	q.Record(CallRecord{Step: 1, Call: call})
	q.Record(CallRecord{Step: 2, Call: call})

	rec, ok := q.Lookup(call.Key())
	assert.True(t, ok)
	assert.Equal(t, 2, rec.Step)

	_, ok = q.Lookup("missing")
	assert.False(t, ok)
}

func TestToolName_Category(t *testing.T) {
	assert.Equal(t, CategoryDiscovery, ToolViewKeywords.Category())
	assert.Equal(t, CategoryExploration, ToolSearchIndex.Category())
	assert.Equal(t, CategoryRetrieval, ToolGetPageContent.Category())
	assert.Equal(t, CategoryUnknown, ToolName("x").Category())
	assert.Len(t, AllToolNames(), 10)
}

func TestNotFound_Format(t *testing.T) {
	nf := &NotFound{What: "table", Key: "Missing", Suggestions: []string{"A", "B"}}
	assert.Equal(t, `No table found for "Missing". Available: A, B`, nf.Format())
	assert.Nil(t, nf.Sources())
	assert.Equal(t, KindNotFound, nf.Kind())
}

func TestToolCall_String(t *testing.T) {
	assert.Equal(t, "view_pages()", ToolCall{Name: ToolViewPages}.String())
	call := ToolCall{Name: ToolGetRowData, Parameters: map[string]any{"target": 190, "column": "Calories", "table_name": "T"}}
	assert.Equal(t, `get_row_data(column="Calories", table_name="T", target=190)`, call.String())
}
