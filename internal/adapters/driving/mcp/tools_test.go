package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

func makeCallToolRequest(args string) *mcp.CallToolRequest {
	params := &mcp.CallToolParamsRaw{}
	if args != "" {
		params.Arguments = json.RawMessage(args)
	}
	return &mcp.CallToolRequest{Params: params}
}

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestServer_toolHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("forwards arguments and formats result", func(t *testing.T) {
		tools := &mockToolService{
			specs: testSpecs(),
			result: &domain.TableResult{Data: domain.TableData{
				Title:    "Revenue",
				Columns:  []string{"Year"},
				Rows:     []domain.Row{{{Name: "Year", Value: "2023"}}},
				RowCount: 1,
			}},
		}
		server, err := NewServer(&Ports{Tools: tools})
		require.NoError(t, err)

		res, err := server.toolHandler(domain.ToolGetTableData)(ctx,
			makeCallToolRequest(`{"table_title":"Revenue","columns":"Year"}`))
		require.NoError(t, err)

		assert.False(t, res.IsError)
		require.Len(t, tools.calls, 1)
		assert.Equal(t, domain.ToolGetTableData, tools.calls[0].Name)
		assert.Equal(t, "Revenue", tools.calls[0].Parameters["table_title"])
		assert.Equal(t, "Year", tools.calls[0].Parameters["columns"])
		assert.Contains(t, textOf(t, res), "Revenue")

		sc, ok := res.StructuredContent.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, domain.KindTable, sc["kind"])
	})

	t.Run("no arguments passes nil parameters", func(t *testing.T) {
		tools := &mockToolService{
			specs:  testSpecs(),
			result: &domain.ListResult{Tool: domain.ToolViewTables},
		}
		server, err := NewServer(&Ports{Tools: tools})
		require.NoError(t, err)

		res, err := server.toolHandler(domain.ToolViewTables)(ctx, makeCallToolRequest(""))
		require.NoError(t, err)

		assert.False(t, res.IsError)
		require.Len(t, tools.calls, 1)
		assert.Nil(t, tools.calls[0].Parameters)
		assert.Contains(t, textOf(t, res), "Tables available: 0")
	})

	t.Run("not found is a normal result", func(t *testing.T) {
		tools := &mockToolService{
			specs:  testSpecs(),
			result: &domain.NotFound{What: "table", Key: "Missing", Suggestions: []string{"Revenue"}},
		}
		server, err := NewServer(&Ports{Tools: tools})
		require.NoError(t, err)

		res, err := server.toolHandler(domain.ToolGetTableData)(ctx,
			makeCallToolRequest(`{"table_title":"Missing"}`))
		require.NoError(t, err)

		assert.False(t, res.IsError)
		assert.Contains(t, textOf(t, res), "Available: Revenue")
	})

	t.Run("service error is reported in result", func(t *testing.T) {
		tools := &mockToolService{
			specs: testSpecs(),
			err:   fmt.Errorf("%w: table_title is required", domain.ErrBadParameter),
		}
		server, err := NewServer(&Ports{Tools: tools})
		require.NoError(t, err)

		res, err := server.toolHandler(domain.ToolGetTableData)(ctx, makeCallToolRequest(`{}`))
		require.NoError(t, err)

		assert.True(t, res.IsError)
		assert.Contains(t, textOf(t, res), "table_title is required")
	})

	t.Run("malformed arguments are rejected before the call", func(t *testing.T) {
		tools := &mockToolService{specs: testSpecs()}
		server, err := NewServer(&Ports{Tools: tools})
		require.NoError(t, err)

		res, err := server.toolHandler(domain.ToolGetTableData)(ctx, makeCallToolRequest(`[1,2]`))
		require.NoError(t, err)

		assert.True(t, res.IsError)
		assert.Empty(t, tools.calls)
		assert.Contains(t, textOf(t, res), "bad parameter")
	})
}

func TestServer_handleAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("returns answer with metadata", func(t *testing.T) {
		answers := &mockAnswerService{resp: &domain.Response{
			Answer:     "Revenue was 100 in 2023.",
			Confidence: 0.8,
			ToolsUsed:  []string{"get_table_data"},
			Sources:    []domain.Source{{Type: domain.SourceTable, Title: "Revenue", PageNumber: 2}},
			Metadata: domain.ResponseMetadata{
				Steps:      3,
				StopReason: domain.StopAnswer,
			},
		}}
		server, err := NewServer(&Ports{Tools: &mockToolService{specs: testSpecs()}, Answers: answers})
		require.NoError(t, err)

		_, out, err := server.handleAsk(ctx, nil, AskInput{Question: "What was revenue in 2023?"})
		require.NoError(t, err)

		assert.Equal(t, "What was revenue in 2023?", answers.question)
		assert.Equal(t, "Revenue was 100 in 2023.", out.Answer)
		assert.Equal(t, 0.8, out.Confidence)
		assert.Equal(t, []string{"get_table_data"}, out.ToolsUsed)
		assert.Len(t, out.Sources, 1)
		assert.Equal(t, 3, out.Steps)
		assert.Equal(t, domain.StopAnswer, out.StopReason)
		assert.False(t, out.Degraded)
	})

	t.Run("propagates errors", func(t *testing.T) {
		answers := &mockAnswerService{err: domain.ErrNoDocuments}
		server, err := NewServer(&Ports{Tools: &mockToolService{specs: testSpecs()}, Answers: answers})
		require.NoError(t, err)

		_, _, err = server.handleAsk(ctx, nil, AskInput{Question: "anything"})
		assert.True(t, errors.Is(err, domain.ErrNoDocuments))
	})
}
