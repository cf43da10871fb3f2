package driven

import (
	"context"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

// LLMService provides language model completions.
// This is an optional service - when nil, the agent decides deterministically
// and answers with a formatted context dump.
//
// Implementations include:
//   - OpenAI (and compatible APIs)
//   - Anthropic (Claude)
//   - Ollama (local models)
type LLMService interface {
	// Generate produces text completion from a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// Chat conducts a multi-turn conversation.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// StopWords are sequences that stop generation when encountered.
	StopWords []string

	// JSON asks the provider to constrain output to a JSON object where
	// it supports that. Callers must still parse defensively.
	JSON bool
}

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// ChatOptions configures chat behaviour.
type ChatOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// JSON asks for a JSON object reply. See GenerateOptions.JSON.
	JSON bool
}

// AIConfigValidator checks provider settings before they are saved.
type AIConfigValidator interface {
	// ValidateLLM creates the configured service and pings it.
	ValidateLLM(config *domain.LLMSettings) error
}
