// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/tabula/internal/adapters/driven/decider"
	anthropicllm "github.com/custodia-labs/tabula/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/tabula/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/tabula/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/tabula/internal/core/domain"
	"github.com/custodia-labs/tabula/internal/core/ports/driven"
	"github.com/custodia-labs/tabula/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult contains the result of AI service initialisation.
type InitResult struct {
	LLMService  driven.LLMService
	Decider     driven.Decider         // nil when no LLM is available.
	Generator   driven.AnswerGenerator // nil when no LLM is available.
	PromptStore driven.PromptStore
	Warnings    []string // Non-fatal issues that caused fallback.
	FellBack    bool     // True if a configured LLM could not be reached.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.LLMService != nil {
		r.LLMService.Close()
	}
}

// Init builds the decider and answer generator for the configured
// provider. It never fails: an unconfigured or unreachable provider
// leaves both nil, and the agent then falls back to deterministic
// behaviour with context-dump answers.
func Init(settings *domain.LLMSettings, prompts driven.PromptStore) *InitResult {
	result := &InitResult{PromptStore: prompts}

	if settings == nil || !settings.IsConfigured() {
		logger.Debug("no LLM configured, answers will be context dumps")
		return result
	}

	svc, err := CreateAndValidateLLMService(settings)
	if err != nil {
		logger.Warn("LLM unavailable: %v", err)
		result.Warnings = append(result.Warnings, err.Error())
		result.FellBack = true
		return result
	}

	logger.Info("LLM: %s (%s)", settings.Provider, svc.ModelName())
	result.LLMService = svc
	result.Decider = decider.NewLLMDecider(svc, prompts)
	result.Generator = decider.NewAnswerGenerator(svc, prompts)
	return result
}

// CreateAndValidateLLMService creates an LLM service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'tabula settings llm' to fix",
			domain.ErrLLMUnavailable, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'tabula settings llm' to fix",
			domain.ErrLLMUnavailable, err)
	}

	return svc, nil
}

// ValidateLLMConfig validates an LLM configuration by creating a service and pinging it.
// Used when settings are changed so bad credentials are caught early.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateLLMService(settings)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// CreateLLMService creates the LLM service for the configured provider,
// rate limited when settings.RatePerMinute is positive.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	var (
		svc driven.LLMService
		err error
	)
	switch settings.Provider {
	case domain.AIProviderOllama:
		svc = ollamallm.NewLLMService(ollamallm.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
	case domain.AIProviderOpenAI:
		svc, err = openaillm.NewLLMService(openaillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
	case domain.AIProviderAnthropic:
		svc, err = anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
	if err != nil {
		return nil, err
	}

	return NewRateLimitedLLM(svc, settings.RatePerMinute), nil
}
