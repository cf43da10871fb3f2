package driving

import "github.com/custodia-labs/tabula/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetLLMProvider configures the LLM provider.
	SetLLMProvider(provider domain.AIProvider, model, apiKey, baseURL string) error

	// SetAnswerMode selects agent or pipeline answering.
	SetAnswerMode(mode domain.AnswerMode) error

	// AddDocument appends an "id=path" spec to the startup library.
	AddDocument(spec string) error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
	ValidateLLMConfig() error
}
