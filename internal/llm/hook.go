package llm

import (
	"context"
	"log/slog"

	llmclient "bakerybot/internal/llmClient"
)

// PromptHook observes every model call made through WithHooks.
// Implementations must not modify the request or response.
type PromptHook interface {
	Before(ctx context.Context, phase string, req llmclient.ChatRequest)
	After(ctx context.Context, phase string, resp *llmclient.Response, err error)
}

type ctxKeyPhase struct{}

func WithPhase(ctx context.Context, phase string) context.Context {
	return context.WithValue(ctx, ctxKeyPhase{}, phase)
}

// PhaseFrom returns the phase string stored in the context.
func PhaseFrom(ctx context.Context) string {
	if v := ctx.Value(ctxKeyPhase{}); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return "unknown"
}

// WithHooks runs hooks around each call, in order.
func WithHooks(hooks ...PromptHook) Middleware {
	return func(next LLMClient) LLMClient {
		if len(hooks) == 0 {
			return next
		}
		return &hooked{base: next, hooks: hooks}
	}
}

type hooked struct {
	base  LLMClient
	hooks []PromptHook
}

func (h *hooked) Name() string { return h.base.Name() }
func (h *hooked) Close() error { return h.base.Close() }

func (h *hooked) Chat(ctx context.Context, req llmclient.ChatRequest) (*llmclient.Response, error) {
	phase := PhaseFrom(ctx)
	for _, hk := range h.hooks {
		hk.Before(ctx, phase, req)
	}
	resp, err := h.base.Chat(ctx, req)
	for _, hk := range h.hooks {
		hk.After(ctx, phase, resp, err)
	}
	return resp, err
}

// PromptLogger dumps full prompts and replies at debug level.
type PromptLogger struct {
	Log *slog.Logger
}

func (p PromptLogger) logger() *slog.Logger {
	if p.Log == nil {
		return slog.Default()
	}
	return p.Log
}

func (p PromptLogger) Before(ctx context.Context, phase string, req llmclient.ChatRequest) {
	for i, m := range req.Messages {
		p.logger().DebugContext(ctx, "llm prompt", "phase", phase, "index", i, "role", m.Role, "content", m.Content)
	}
}

func (p PromptLogger) After(ctx context.Context, phase string, resp *llmclient.Response, err error) {
	if err != nil || resp == nil {
		return
	}
	for _, tc := range resp.ToolCalls {
		p.logger().DebugContext(ctx, "llm tool call", "phase", phase, "name", tc.Name, "args", string(tc.Arguments))
	}
	if resp.Content != "" {
		p.logger().DebugContext(ctx, "llm reply", "phase", phase, "content", resp.Content)
	}
}
