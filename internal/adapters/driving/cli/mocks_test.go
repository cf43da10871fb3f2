package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/custodia-labs/tabula/internal/core/domain"
	"github.com/custodia-labs/tabula/internal/core/ports/driving"
)

// executeCommand runs the root command with fresh flags and the given services.
func executeCommand(t *testing.T, svcs *Services, args ...string) (string, error) {
	t.Helper()

	resetFlags()
	SetServices(svcs)
	t.Cleanup(func() {
		SetServices(nil)
		resetFlags()
		rootCmd.SetArgs(nil)
	})

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func resetFlags() {
	verboseFlag = false
	logFormatFlag = "text"
	outputFlag = outputText
	configDirFlag = ""
	docFlags = nil
	askMode = ""
	askShowTrace = false
	historyLimit = 20
	searchLimit = domain.DefaultSearchLimit
	searchScope = string(domain.ScopeAll)
	searchTerms = false
	tablesCat = ""
	summaryStats = false
	toolListFunctions = false
	toolCallParams = ""
	loadSave = false
}

type mockAnswerService struct {
	resp     *domain.Response
	err      error
	question string
}

func (m *mockAnswerService) Ask(_ context.Context, question string) (*domain.Response, error) {
	m.question = question
	return m.resp, m.err
}

// answersFor returns a factory that records the requested mode.
func answersFor(svc driving.AnswerService, mode *domain.AnswerMode) AnswerFactory {
	return func(_ context.Context, m domain.AnswerMode) (driving.AnswerService, error) {
		if mode != nil {
			*mode = m
		}
		return svc, nil
	}
}

type mockLibraryService struct {
	driving.LibraryService
	stats   domain.StoreStatistics
	loadErr map[string]error
	loaded  []driving.DocumentSpec
}

func (m *mockLibraryService) LoadAll(_ context.Context, specs []driving.DocumentSpec) []driving.LoadResult {
	results := make([]driving.LoadResult, len(specs))
	for i, s := range specs {
		m.loaded = append(m.loaded, s)
		results[i] = driving.LoadResult{ID: s.ID, Path: s.Path, Err: m.loadErr[s.ID]}
	}
	return results
}

func (m *mockLibraryService) Statistics() domain.StoreStatistics { return m.stats }

type mockDiscoveryService struct {
	driving.DiscoveryService
	tables []domain.TableEntry
	byCat  string
}

func (m *mockDiscoveryService) ListTables(_ context.Context) []domain.TableEntry { return m.tables }

func (m *mockDiscoveryService) TablesByCategory(_ context.Context, category string) []domain.TableEntry {
	m.byCat = category
	return m.tables
}

type mockToolService struct {
	specs  []domain.ToolSpec
	result domain.ToolResult
	err    error
	calls  []domain.ToolCall
}

func (m *mockToolService) Catalog() []domain.ToolSpec { return m.specs }

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

type mockHistoryService struct {
	entries []domain.HistoryEntry
	cleared int
}

func (m *mockHistoryService) Record(_ context.Context, _ *domain.Response) error { return nil }

func (m *mockHistoryService) List(_ context.Context, limit int) ([]domain.HistoryEntry, error) {
	if limit > 0 && limit < len(m.entries) {
		return m.entries[:limit], nil
	}
	return m.entries, nil
}

func (m *mockHistoryService) Get(_ context.Context, id string) (*domain.HistoryEntry, error) {
	for i := range m.entries {
		if m.entries[i].ID == id {
			return &m.entries[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockHistoryService) Clear(_ context.Context) (int, error) {
	m.cleared = len(m.entries)
	m.entries = nil
	return m.cleared, nil
}

type mockSettingsService struct {
	settings  domain.AppSettings
	mode      domain.AnswerMode
	docs      []string
	saveErr   error
	validated bool
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(s *domain.AppSettings) error {
	m.settings = *s
	return m.saveErr
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey, baseURL string) error {
	m.settings.LLM = domain.LLMSettings{Provider: provider, Model: model, APIKey: apiKey, BaseURL: baseURL}
	return m.saveErr
}

func (m *mockSettingsService) SetAnswerMode(mode domain.AnswerMode) error {
	if !mode.IsValid() {
		return errors.New("invalid answer mode")
	}
	m.mode = mode
	return m.saveErr
}

func (m *mockSettingsService) AddDocument(spec string) error {
	m.docs = append(m.docs, spec)
	return m.saveErr
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettingsService) ValidateLLMConfig() error {
	m.validated = true
	return nil
}

type mockIndexService struct {
	driving.IndexService
	results []domain.SearchResult
	query   string
	terms   []string
	opts    domain.SearchOptions
}

func (m *mockIndexService) Search(_ context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	m.query, m.opts = query, opts
	return m.results, nil
}

func (m *mockIndexService) SearchByTerms(_ context.Context, terms []string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	m.terms, m.opts = terms, opts
	return m.results, nil
}
