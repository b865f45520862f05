package llm

import (
	"context"

	"golang.org/x/time/rate"

	llmclient "bakerybot/internal/llmClient"
)

// Middleware decorates an LLMClient to inject cross-cutting concerns
// (rate limiting, retries, logging, hooks, etc.).
type Middleware func(LLMClient) LLMClient

// Wrap applies middlewares in left-to-right order.
// Example: Wrap(inner, A, B) => A(B(inner))
func Wrap(inner LLMClient, mws ...Middleware) LLMClient {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] == nil {
			continue
		}
		out = mws[i](out)
	}
	return out
}

// RateLimit limits request rate with a token bucket. Clients wrapped by the
// same Middleware value share one bucket. If rps <= 0, the limiter is
// disabled and clients are returned unchanged.
func RateLimit(rps float64, burst int) Middleware {
	if rps <= 0 {
		return func(next LLMClient) LLMClient { return next }
	}
	if burst <= 0 {
		burst = 1
	}
	rl := rate.NewLimiter(rate.Limit(rps), burst)
	return func(next LLMClient) LLMClient {
		return &rateLimited{next: next, rl: rl}
	}
}

type rateLimited struct {
	next LLMClient
	rl   *rate.Limiter
}

func (c *rateLimited) Name() string { return c.next.Name() }
func (c *rateLimited) Close() error { return c.next.Close() }
func (c *rateLimited) Chat(ctx context.Context, req llmclient.ChatRequest) (*llmclient.Response, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, err
	}
	return c.next.Chat(ctx, req)
}
