package llm

import (
	"context"
	"errors"
	"time"

	llmclient "bakerybot/internal/llmClient"
)

// Retry retries Chat up to maxAttempts with exponential backoff starting at
// baseDelay. Permanent errors are returned at once; a canceled context stops
// the loop immediately.
func Retry(maxAttempts int, baseDelay time.Duration) Middleware {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = 300 * time.Millisecond
	}
	return func(next LLMClient) LLMClient {
		return &retrying{next: next, max: maxAttempts, base: baseDelay}
	}
}

type retrying struct {
	next LLMClient
	max  int
	base time.Duration
}

func (r *retrying) Name() string { return r.next.Name() }
func (r *retrying) Close() error { return r.next.Close() }

func (r *retrying) Chat(ctx context.Context, req llmclient.ChatRequest) (*llmclient.Response, error) {
	var last error
	for i := 0; i < r.max; i++ {
		resp, err := r.next.Chat(ctx, req)
		if err == nil {
			return resp, nil
		}
		var pErr *llmclient.PermanentError
		if errors.As(err, &pErr) {
			return nil, err
		}
		last = err
		if i == r.max-1 {
			break
		}
		t := time.NewTimer(r.base * time.Duration(1<<i))
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
	return nil, last
}
