package services

import (
	"fmt"
	"slices"
	"time"

	"github.com/custodia-labs/tabula/internal/core/domain"
	"github.com/custodia-labs/tabula/internal/core/ports/driven"
	"github.com/custodia-labs/tabula/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyLibraryDocuments = "library.documents"
	keySearchLimit      = "search.default_limit"
	keyAgentMode        = "agent.mode"
	keyAgentMaxRounds   = "agent.max_rounds"
	keyDecisionTimeout  = "agent.decision_timeout"
	keyAnswerTimeout    = "agent.answer_timeout"
	keyLoadTimeout      = "agent.load_timeout"
	keyLLMProvider      = "llm.provider"
	keyLLMModel         = "llm.model"
	keyLLMBaseURL       = "llm.base_url"
	keyLLMAPIKey        = "llm.api_key"
	keyLLMRate          = "llm.rate_per_minute"
	keyHistoryEnabled   = "history.enabled"
)

const defaultOllamaURL = "http://localhost:11434"

// SettingsService maps flat config keys onto domain.AppSettings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service. aiValidator may be nil.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Library: domain.LibrarySettings{
			Documents: s.configStore.GetStringSlice(keyLibraryDocuments),
		},
		Search: domain.SearchSettings{
			DefaultLimit: s.getInt(keySearchLimit, defaults.Search.DefaultLimit),
		},
		Agent: domain.AgentSettings{
			Mode:            s.getMode(defaults.Agent.Mode),
			MaxRounds:       s.getInt(keyAgentMaxRounds, defaults.Agent.MaxRounds),
			DecisionTimeout: s.getDuration(keyDecisionTimeout, defaults.Agent.DecisionTimeout),
			AnswerTimeout:   s.getDuration(keyAnswerTimeout, defaults.Agent.AnswerTimeout),
			LoadTimeout:     s.getDuration(keyLoadTimeout, defaults.Agent.LoadTimeout),
		},
		LLM: domain.LLMSettings{
			Provider:      s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:         s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:       s.configStore.GetString(keyLLMBaseURL), // No default - empty is valid for cloud providers
			APIKey:        s.configStore.GetString(keyLLMAPIKey),
			RatePerMinute: s.configStore.GetInt(keyLLMRate),
		},
		History: domain.HistorySettings{
			Enabled: s.getBool(keyHistoryEnabled, defaults.History.Enabled),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	docs := settings.Library.Documents
	if docs == nil {
		docs = []string{}
	}
	values := []struct {
		key   string
		value any
	}{
		{keyLibraryDocuments, docs},
		{keySearchLimit, settings.Search.DefaultLimit},
		{keyAgentMode, settings.Agent.Mode.String()},
		{keyAgentMaxRounds, settings.Agent.MaxRounds},
		{keyDecisionTimeout, settings.Agent.DecisionTimeout.String()},
		{keyAnswerTimeout, settings.Agent.AnswerTimeout.String()},
		{keyLoadTimeout, settings.Agent.LoadTimeout.String()},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyLLMRate, settings.LLM.RatePerMinute},
		{keyHistoryEnabled, settings.History.Enabled},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	if settings.LLM.APIKey != "" {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}

	return nil
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey, baseURL string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.LLM.Model = model
	} else {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}

	settings.LLM.BaseURL = baseURL
	if baseURL == "" && provider == domain.AIProviderOllama {
		settings.LLM.BaseURL = defaultOllamaURL
	}

	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetAnswerMode selects agent or pipeline answering.
func (s *SettingsService) SetAnswerMode(mode domain.AnswerMode) error {
	if !mode.IsValid() {
		return fmt.Errorf("invalid answer mode: %s", mode)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Agent.Mode = mode
	return s.Save(settings)
}

// AddDocument appends an "id=path" spec to the startup library. A spec
// with an id already present replaces the earlier one.
func (s *SettingsService) AddDocument(spec string) error {
	parsed, err := driving.ParseDocumentSpec(spec)
	if err != nil {
		return err
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	entry := parsed.ID + "=" + parsed.Path
	idx := slices.IndexFunc(settings.Library.Documents, func(existing string) bool {
		d, err := driving.ParseDocumentSpec(existing)
		return err == nil && d.ID == parsed.ID
	})
	if idx >= 0 {
		settings.Library.Documents[idx] = entry
	} else {
		settings.Library.Documents = append(settings.Library.Documents, entry)
	}
	return s.Save(settings)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetDuration(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getMode(defaultVal domain.AnswerMode) domain.AnswerMode {
	mode := domain.AnswerMode(s.configStore.GetString(keyAgentMode))
	if !mode.IsValid() {
		return defaultVal
	}
	return mode
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
