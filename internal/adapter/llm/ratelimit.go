package llm

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"friday/internal/domain"
)

// RateLimitedProvider wraps an LLMProvider with a client-side token
// bucket, smoothing request bursts before the API's own limiter rejects
// them with 429s.
type RateLimitedProvider struct {
	inner   domain.LLMProvider
	limiter *rate.Limiter
}

// NewRateLimitedProvider wraps inner with a limiter of requestsPerMin
// sustained throughput and the given burst size (minimum 1).
func NewRateLimitedProvider(inner domain.LLMProvider, requestsPerMin float64, burst int) *RateLimitedProvider {
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedProvider{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(requestsPerMin/60.0), burst),
	}
}

// Chat implements domain.LLMProvider. Blocks until the limiter grants a
// slot or the context is done.
func (p *RateLimitedProvider) Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	return p.inner.Chat(ctx, req)
}

// Name implements domain.LLMProvider.
func (p *RateLimitedProvider) Name() string { return p.inner.Name() }

var _ domain.LLMProvider = (*RateLimitedProvider)(nil)
