package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: uri}}
}

func newResourceServer(t *testing.T, docs ...domain.DocumentInfo) *Server {
	t.Helper()
	server, err := NewServer(&Ports{
		Tools:   &mockToolService{specs: testSpecs()},
		Library: &mockLibraryService{docs: docs},
	})
	require.NoError(t, err)
	return server
}

func TestServer_handleCatalogResource(t *testing.T) {
	server := newResourceServer(t)

	res, err := server.handleCatalogResource(context.Background(), makeReadResourceRequest("tabula://catalog"))
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	assert.Equal(t, "application/json", res.Contents[0].MIMEType)

	var specs []domain.ToolSpec
	require.NoError(t, json.Unmarshal([]byte(res.Contents[0].Text), &specs))
	require.Len(t, specs, 2)
	assert.Equal(t, domain.ToolViewTables, specs[0].Name)
	assert.Equal(t, domain.CategoryRetrieval, specs[1].Category)
}

func TestServer_handleDocumentsResource(t *testing.T) {
	server := newResourceServer(t,
		domain.DocumentInfo{ID: "annual", Title: "Annual Report", PageCount: 3, TableCount: 5},
		domain.DocumentInfo{ID: "q1", Title: "Q1", PageCount: 1, TableCount: 2},
	)

	res, err := server.handleDocumentsResource(context.Background(), makeReadResourceRequest("tabula://documents"))
	require.NoError(t, err)

	var stats domain.StoreStatistics
	require.NoError(t, json.Unmarshal([]byte(res.Contents[0].Text), &stats))
	assert.Equal(t, 2, stats.TotalDocuments)
	assert.Equal(t, 4, stats.TotalPages)
	assert.Equal(t, 7, stats.TotalTables)
}

func TestServer_handleDocumentResource(t *testing.T) {
	server := newResourceServer(t, domain.DocumentInfo{ID: "annual", Title: "Annual Report"})
	ctx := context.Background()

	t.Run("known document", func(t *testing.T) {
		res, err := server.handleDocumentResource(ctx, makeReadResourceRequest("tabula://documents/annual"))
		require.NoError(t, err)

		var info domain.DocumentInfo
		require.NoError(t, json.Unmarshal([]byte(res.Contents[0].Text), &info))
		assert.Equal(t, "Annual Report", info.Title)
	})

	t.Run("unknown document", func(t *testing.T) {
		_, err := server.handleDocumentResource(ctx, makeReadResourceRequest("tabula://documents/missing"))
		assert.Error(t, err)
	})

	t.Run("malformed uri", func(t *testing.T) {
		_, err := server.handleDocumentResource(ctx, makeReadResourceRequest("other://documents/annual"))
		assert.Error(t, err)
	})
}

func TestExtractDocumentID(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"tabula://documents/annual", "annual"},
		{"tabula://documents/", ""},
		{"tabula://documents/a/b", ""},
		{"tabula://catalog", ""},
		{"other://documents/annual", ""},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			assert.Equal(t, tt.want, extractDocumentID(tt.uri))
		})
	}
}
