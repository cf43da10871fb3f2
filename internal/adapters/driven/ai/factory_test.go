package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tabula/internal/core/domain"
	"github.com/custodia-labs/tabula/internal/core/ports/driven"
)

// fakeOllama answers pings and chats like a local Ollama server.
func fakeOllama(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"models":[]}`))
	})
	mux.HandleFunc("/api/chat", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"{\"action\":\"answer\"}"},"done":true}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestCreateLLMService(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.LLMSettings
		wantNil  bool
		wantErr  bool
	}{
		{"nil settings", nil, true, false},
		{"unconfigured", &domain.LLMSettings{}, true, false},
		{"ollama", &domain.LLMSettings{Provider: domain.AIProviderOllama, Model: "llama3.2"}, false, false},
		{"openai", &domain.LLMSettings{Provider: domain.AIProviderOpenAI, APIKey: "k"}, false, false},
		{"anthropic", &domain.LLMSettings{Provider: domain.AIProviderAnthropic, APIKey: "k"}, false, false},
		{"openai without key", &domain.LLMSettings{Provider: domain.AIProviderOpenAI}, true, false},
		{"unknown provider", &domain.LLMSettings{Provider: "bard", APIKey: "k"}, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateLLMService(tt.settings)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantNil, svc == nil)
			if svc != nil {
				svc.Close()
			}
		})
	}
}

func TestCreateLLMService_RateLimited(t *testing.T) {
	plain, err := CreateLLMService(&domain.LLMSettings{Provider: domain.AIProviderOllama})
	require.NoError(t, err)
	_, wrapped := plain.(*RateLimitedLLM)
	assert.False(t, wrapped)

	limited, err := CreateLLMService(&domain.LLMSettings{Provider: domain.AIProviderOllama, RatePerMinute: 30})
	require.NoError(t, err)
	require.IsType(t, &RateLimitedLLM{}, limited)
	assert.Equal(t, "llama3.2", limited.ModelName())
}

func TestCreateAndValidateLLMService(t *testing.T) {
	srv := fakeOllama(t)

	svc, err := CreateAndValidateLLMService(&domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: srv.URL})
	require.NoError(t, err)
	require.NotNil(t, svc)
	svc.Close()

	_, err = CreateAndValidateLLMService(&domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: "http://127.0.0.1:1"})
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	assert.ErrorContains(t, err, "tabula settings llm")

	svc, err = CreateAndValidateLLMService(nil)
	assert.NoError(t, err)
	assert.Nil(t, svc)
}

func TestValidateLLMConfig(t *testing.T) {
	srv := fakeOllama(t)

	assert.NoError(t, ValidateLLMConfig(nil))
	assert.NoError(t, ValidateLLMConfig(&domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: srv.URL}))
	assert.Error(t, ValidateLLMConfig(&domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: "http://127.0.0.1:1"}))
	assert.NoError(t, NewConfigValidator().ValidateLLM(&domain.LLMSettings{}))
}

func TestInit(t *testing.T) {
	srv := fakeOllama(t)

	t.Run("unconfigured", func(t *testing.T) {
		r := Init(&domain.LLMSettings{}, nil)
		defer r.Close()

		assert.Nil(t, r.Decider)
		assert.Nil(t, r.Generator)
		assert.False(t, r.FellBack)
		assert.Empty(t, r.Warnings)
	})

	t.Run("unreachable", func(t *testing.T) {
		r := Init(&domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: "http://127.0.0.1:1"}, nil)
		defer r.Close()

		assert.Nil(t, r.Decider)
		assert.True(t, r.FellBack)
		require.Len(t, r.Warnings, 1)
	})

	t.Run("ready", func(t *testing.T) {
		r := Init(&domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: srv.URL}, nil)
		defer r.Close()

		require.NotNil(t, r.Decider)
		require.NotNil(t, r.Generator)
		d, err := r.Decider.Decide(context.Background(), driven.DecisionRequest{Question: "q"})
		require.NoError(t, err)
		assert.Equal(t, domain.ActionAnswer, d.Action)
	})
}

type countingLLM struct {
	calls int
}

func (c *countingLLM) Generate(context.Context, string, driven.GenerateOptions) (string, error) {
	c.calls++
	return "ok", nil
}

func (c *countingLLM) Chat(context.Context, []driven.ChatMessage, driven.ChatOptions) (string, error) {
	c.calls++
	return "ok", nil
}

func (c *countingLLM) ModelName() string          { return "counting" }
func (c *countingLLM) Ping(context.Context) error { return nil }
func (c *countingLLM) Close() error               { return nil }

func TestRateLimitedLLM(t *testing.T) {
	inner := &countingLLM{}
	assert.Same(t, driven.LLMService(inner), NewRateLimitedLLM(inner, 0))

	limited := NewRateLimitedLLM(inner, 1)

	// The burst goes through immediately.
	for i := 0; i < rateBurst; i++ {
		_, err := limited.Chat(context.Background(), nil, driven.ChatOptions{})
		require.NoError(t, err)
	}

	// The next token is a minute away.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := limited.Generate(ctx, "p", driven.GenerateOptions{})

	assert.Error(t, err)
	assert.Equal(t, rateBurst, inner.calls)
	assert.NoError(t, limited.Ping(context.Background()))
}
