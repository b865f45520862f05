package llm

import (
	"context"
	"log/slog"
	"time"

	llmclient "bakerybot/internal/llmClient"
)

// WithLogging logs request size, latency and errors. Pass nil to use
// slog.Default().
func WithLogging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next LLMClient) LLMClient {
		return &logging{next: next, log: logger}
	}
}

type logging struct {
	next LLMClient
	log  *slog.Logger
}

func (l *logging) Name() string { return l.next.Name() }
func (l *logging) Close() error { return l.next.Close() }

func (l *logging) Chat(ctx context.Context, req llmclient.ChatRequest) (*llmclient.Response, error) {
	size := 0
	for _, m := range req.Messages {
		size += len(m.Content)
	}
	start := time.Now()
	resp, err := l.next.Chat(ctx, req)
	attrs := []any{
		"phase", PhaseFrom(ctx),
		"model", l.next.Name(),
		"bytes", size,
		"tools", len(req.Tools),
		"elapsed", time.Since(start),
	}
	if err != nil {
		l.log.WarnContext(ctx, "llm error", append(attrs, "err", err)...)
		return nil, err
	}
	l.log.InfoContext(ctx, "llm call", append(attrs, "tool_calls", len(resp.ToolCalls))...)
	return resp, nil
}
