package ai

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

func TestConfigValidator_ValidateLLM(t *testing.T) {
	errUnreachable := errors.New("unreachable")

	tests := []struct {
		name     string
		settings *domain.LLMSettings
		pingErr  error
		wantErr  error
		errText  string
		pinged   bool
	}{
		{name: "nil settings", settings: nil},
		{name: "no provider", settings: &domain.LLMSettings{}},
		{
			name:     "unknown provider",
			settings: &domain.LLMSettings{Provider: "bard"},
			wantErr:  domain.ErrBadParameter,
			errText:  "ollama, openai, anthropic",
		},
		{
			name:     "missing api key",
			settings: &domain.LLMSettings{Provider: domain.AIProviderOpenAI},
			errText:  "requires an API key",
		},
		{
			name:     "negative rate",
			settings: &domain.LLMSettings{Provider: domain.AIProviderOllama, RatePerMinute: -1},
			wantErr:  domain.ErrBadParameter,
		},
		{
			name:     "ping failure",
			settings: &domain.LLMSettings{Provider: domain.AIProviderOllama},
			pingErr:  errUnreachable,
			wantErr:  errUnreachable,
			pinged:   true,
		},
		{
			name:     "valid",
			settings: &domain.LLMSettings{Provider: domain.AIProviderAnthropic, APIKey: "sk-ant"},
			pinged:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pinged := false
			v := &ConfigValidator{ping: func(*domain.LLMSettings) error {
				pinged = true
				return tt.pingErr
			}}

			err := v.ValidateLLM(tt.settings)

			assert.Equal(t, tt.pinged, pinged)
			if tt.wantErr == nil && tt.errText == "" {
				assert.NoError(t, err)
				return
			}
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.errText != "" {
				assert.ErrorContains(t, err, tt.errText)
			}
		})
	}
}
