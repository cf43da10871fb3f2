package ai

import (
	"fmt"

	"github.com/custodia-labs/tabula/internal/core/domain"
	"github.com/custodia-labs/tabula/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator checks LLM settings before they are saved.
type ConfigValidator struct {
	ping func(*domain.LLMSettings) error
}

// NewConfigValidator returns a validator that pings the real provider.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{ping: ValidateLLMConfig}
}

// ValidateLLM rejects settings that name a provider but cannot work with
// it, then pings the provider. Empty settings are valid: the agent runs
// without an LLM.
func (v *ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	if config == nil || config.Provider == "" {
		return nil
	}
	if !config.Provider.IsValid() {
		var valid []string
		for _, p := range domain.AllLLMProviders() {
			valid = append(valid, string(p))
		}
		return &domain.BadParameterError{Param: "provider", Value: string(config.Provider), Valid: valid}
	}
	if config.Provider.RequiresAPIKey() && config.APIKey == "" {
		return fmt.Errorf("%s requires an API key", config.Provider)
	}
	if config.RatePerMinute < 0 {
		return &domain.BadParameterError{Param: "rate_per_minute", Value: fmt.Sprint(config.RatePerMinute)}
	}
	return v.ping(config)
}
