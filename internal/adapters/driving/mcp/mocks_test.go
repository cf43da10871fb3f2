package mcp

import (
	"context"
	"encoding/json"

	"github.com/custodia-labs/tabula/internal/core/domain"
	"github.com/custodia-labs/tabula/internal/core/ports/driving"
)

// mockToolService is a mock implementation of driving.ToolService.
type mockToolService struct {
	specs  []domain.ToolSpec
	result domain.ToolResult
	err    error
	calls  []domain.ToolCall
}

func (m *mockToolService) Catalog() []domain.ToolSpec {
	return m.specs
}

func (m *mockToolService) Spec(name domain.ToolName) (domain.ToolSpec, bool) {
	for _, s := range m.specs {
		if s.Name == name {
			return s, true
		}
	}
	return domain.ToolSpec{}, false
}

func (m *mockToolService) Call(_ context.Context, call domain.ToolCall) (domain.ToolResult, error) {
	m.calls = append(m.calls, call)
	return m.result, m.err
}

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	resp     *domain.Response
	err      error
	question string
}

func (m *mockAnswerService) Ask(_ context.Context, question string) (*domain.Response, error) {
	m.question = question
	return m.resp, m.err
}

// mockLibraryService is a mock implementation of driving.LibraryService.
type mockLibraryService struct {
	docs []domain.DocumentInfo
}

func (m *mockLibraryService) Load(_ context.Context, _ driving.DocumentSpec) error { return nil }

func (m *mockLibraryService) LoadAll(_ context.Context, _ []driving.DocumentSpec) []driving.LoadResult {
	return nil
}

func (m *mockLibraryService) Reload(_ context.Context, _ string) error { return nil }

func (m *mockLibraryService) Remove(_ context.Context, _ string) (bool, error) { return false, nil }

func (m *mockLibraryService) Clear(_ context.Context) error { return nil }

func (m *mockLibraryService) Documents() []domain.DocumentInfo { return m.docs }

func (m *mockLibraryService) Statistics() domain.StoreStatistics {
	stats := domain.StoreStatistics{TotalDocuments: len(m.docs), Documents: m.docs}
	for _, d := range m.docs {
		stats.TotalPages += d.PageCount
		stats.TotalTables += d.TableCount
	}
	return stats
}

func (m *mockLibraryService) PathOf(_ string) (string, bool) { return "", false }

// testSpecs returns a small catalogue with object schemas.
func testSpecs() []domain.ToolSpec {
	return []domain.ToolSpec{
		{
			Name:        domain.ToolViewTables,
			Description: "List tables",
			Category:    domain.CategoryDiscovery,
			Parameters:  json.RawMessage(`{"type":"object","properties":{}}`),
		},
		{
			Name:        domain.ToolGetTableData,
			Description: "Get table rows",
			Category:    domain.CategoryRetrieval,
			Parameters: json.RawMessage(`{"type":"object","properties":{` +
				`"table_title":{"type":"string"},"columns":{"type":"string"}},"required":["table_title"]}`),
		},
	}
}

// Ensure mocks implement the interfaces.
var (
	_ driving.ToolService    = (*mockToolService)(nil)
	_ driving.AnswerService  = (*mockAnswerService)(nil)
	_ driving.LibraryService = (*mockLibraryService)(nil)
)
