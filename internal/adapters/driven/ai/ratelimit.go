package ai

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/tabula/internal/core/ports/driven"
)

// Ensure RateLimitedLLM implements the interface.
var _ driven.LLMService = (*RateLimitedLLM)(nil)

// rateBurst lets a query's first decision and its answer go out back to back.
const rateBurst = 2

// RateLimitedLLM spaces out completions to stay under a provider quota.
// Ping and Close pass straight through.
type RateLimitedLLM struct {
	inner   driven.LLMService
	limiter *rate.Limiter
}

// NewRateLimitedLLM wraps inner with a token bucket refilled perMinute
// times a minute. A non-positive perMinute returns inner unchanged.
func NewRateLimitedLLM(inner driven.LLMService, perMinute int) driven.LLMService {
	if perMinute <= 0 {
		return inner
	}
	return &RateLimitedLLM{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), rateBurst),
	}
}

// Generate waits for a token, then delegates.
func (r *RateLimitedLLM) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return r.inner.Generate(ctx, prompt, opts)
}

// Chat waits for a token, then delegates.
func (r *RateLimitedLLM) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return r.inner.Chat(ctx, messages, opts)
}

// ModelName returns the wrapped model's name.
func (r *RateLimitedLLM) ModelName() string {
	return r.inner.ModelName()
}

// Ping is not rate limited.
func (r *RateLimitedLLM) Ping(ctx context.Context) error {
	return r.inner.Ping(ctx)
}

// Close closes the wrapped service.
func (r *RateLimitedLLM) Close() error {
	return r.inner.Close()
}
