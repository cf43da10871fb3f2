package domain

import "time"

const unknownDescription = "Unknown"

// AnswerMode selects how questions are answered.
type AnswerMode string

// Available answer modes.
const (
	// AnswerModeAgent runs the decision/execute loop.
	AnswerModeAgent AnswerMode = ModeAgent

	// AnswerModePipeline runs the fixed discovery, exploration, retrieval flow.
	AnswerModePipeline AnswerMode = ModePipeline
)

// IsValid returns true if the answer mode is recognised.
func (m AnswerMode) IsValid() bool {
	return m == AnswerModeAgent || m == AnswerModePipeline
}

// String returns the string representation.
func (m AnswerMode) String() string {
	return string(m)
}

// Description returns a human-readable description of the mode.
func (m AnswerMode) Description() string {
	switch m {
	case AnswerModeAgent:
		return "Agent (decision-maker selects tools)"
	case AnswerModePipeline:
		return "Pipeline (fixed three-phase retrieval)"
	default:
		return unknownDescription
	}
}

// AIProvider identifies an LLM service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	// RatePerMinute caps LLM requests. Zero means unlimited.
	RatePerMinute int
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// SearchSettings holds keyword search configuration.
type SearchSettings struct {
	// DefaultLimit is used when a search does not specify one.
	DefaultLimit int
}

// AgentSettings holds the persisted parts of AgentConfig.
type AgentSettings struct {
	Mode            AnswerMode
	MaxRounds       int
	DecisionTimeout time.Duration
	AnswerTimeout   time.Duration
	LoadTimeout     time.Duration
}

// Config returns the loop configuration described by the settings.
func (a AgentSettings) Config() AgentConfig {
	return AgentConfig{
		MaxRounds:       a.MaxRounds,
		DecisionTimeout: a.DecisionTimeout,
		AnswerTimeout:   a.AnswerTimeout,
	}.WithDefaults()
}

// LibrarySettings lists documents loaded at startup.
type LibrarySettings struct {
	// Documents are "id=path" specs.
	Documents []string
}

// HistorySettings controls query history persistence.
type HistorySettings struct {
	Enabled bool
}

// DefaultLoadTimeout bounds reading a single document.
const DefaultLoadTimeout = 30 * time.Second

// AppSettings holds all application settings.
type AppSettings struct {
	Library LibrarySettings
	Search  SearchSettings
	Agent   AgentSettings
	LLM     LLMSettings
	History HistorySettings
}

// DefaultAppSettings returns settings with sensible defaults.
// The LLM is left unconfigured; without it answers degrade to context dumps.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Search: SearchSettings{DefaultLimit: DefaultSearchLimit},
		Agent: AgentSettings{
			Mode:            AnswerModeAgent,
			MaxRounds:       DefaultMaxRounds,
			DecisionTimeout: DefaultDecisionTimeout,
			AnswerTimeout:   DefaultAnswerTimeout,
			LoadTimeout:     DefaultLoadTimeout,
		},
		History: HistorySettings{Enabled: true},
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}
