package tui

import (
	"context"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

// MockAnswerService is a mock implementation of driving.AnswerService.
type MockAnswerService struct {
	Response *domain.Response
	Err      error
	Asked    []string
}

func (m *MockAnswerService) Ask(_ context.Context, question string) (*domain.Response, error) {
	m.Asked = append(m.Asked, question)
	return m.Response, m.Err
}

// MockDiscoveryService is a mock implementation of driving.DiscoveryService.
type MockDiscoveryService struct {
	Tables  []domain.TableEntry
	Summary *domain.TableSummary
}

func (m *MockDiscoveryService) ListPages(_ context.Context) []domain.PageEntry { return nil }

func (m *MockDiscoveryService) ListTables(_ context.Context) []domain.TableEntry { return m.Tables }

func (m *MockDiscoveryService) ListKeywords(_ context.Context) []string { return nil }

func (m *MockDiscoveryService) TablesByCategory(_ context.Context, _ string) []domain.TableEntry {
	return nil
}

func (m *MockDiscoveryService) FindRelevantTables(_ context.Context, _ string) []domain.TableRelevance {
	return nil
}

func (m *MockDiscoveryService) FindRelevantPages(_ context.Context, _ string) []domain.PageRelevance {
	return nil
}

func (m *MockDiscoveryService) TableSummary(_ context.Context, _ string) (*domain.TableSummary, bool) {
	return m.Summary, m.Summary != nil
}

func (m *MockDiscoveryService) Invalidate() {}

// MockHistoryService is a mock implementation of driving.HistoryService.
type MockHistoryService struct {
	Entries []domain.HistoryEntry
	Err     error
}

func (m *MockHistoryService) Record(_ context.Context, _ *domain.Response) error { return nil }

func (m *MockHistoryService) List(_ context.Context, _ int) ([]domain.HistoryEntry, error) {
	return m.Entries, m.Err
}

func (m *MockHistoryService) Get(_ context.Context, _ string) (*domain.HistoryEntry, error) {
	return nil, domain.ErrNotFound
}

func (m *MockHistoryService) Clear(_ context.Context) (int, error) { return 0, nil }
