package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	llmclient "bakerybot/internal/llmClient"
)

// ModelRole names what a model is used for within a turn.
type ModelRole string

const (
	// ModelRoleFunction detects actions; it must support tool calling.
	ModelRoleFunction ModelRole = "function"
	// ModelRoleDialog writes the customer-facing reply.
	ModelRoleDialog ModelRole = "dialog"
)

var ErrProviderNotRegistered = errors.New("llm provider is not registered")

// ProviderConfig carries everything a factory may need. Fields that do not
// apply to a provider are ignored.
type ProviderConfig struct {
	Provider string
	BaseURL  string
	APIKey   string

	FunctionModel string
	DialogModel   string

	RPS       float64
	Burst     int
	Retries   int
	RetryBase time.Duration

	Logger *slog.Logger
	Hooks  []PromptHook
}

func (c ProviderConfig) modelFor(role ModelRole) string {
	if role == ModelRoleFunction {
		return c.FunctionModel
	}
	return c.DialogModel
}

// ClientFactory builds an undecorated client for one model.
type ClientFactory func(ctx context.Context, cfg ProviderConfig, model string) (LLMClient, error)

// ProviderRegistry maps provider names to client factories.
type ProviderRegistry struct {
	mu        sync.RWMutex
	factories map[string]ClientFactory
}

func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{factories: map[string]ClientFactory{}}
}

// DefaultProviders returns a registry with openai, gemini and fake registered.
func DefaultProviders() *ProviderRegistry {
	r := NewProviderRegistry()
	r.Register("openai", func(ctx context.Context, cfg ProviderConfig, model string) (LLMClient, error) {
		return llmclient.NewOpenAIClient(llmclient.OpenAIConfig{BaseURL: cfg.BaseURL, APIKey: cfg.APIKey, Model: model})
	})
	r.Register("gemini", func(ctx context.Context, cfg ProviderConfig, model string) (LLMClient, error) {
		return llmclient.NewGeminiClient(ctx, cfg.APIKey, model)
	})
	r.Register("fake", func(ctx context.Context, cfg ProviderConfig, model string) (LLMClient, error) {
		return NewFakeClient(model), nil
	})
	return r
}

func normalizeProvider(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "", "ollama", "openai-compatible":
		return "openai"
	default:
		return name
	}
}

func (r *ProviderRegistry) Register(name string, f ClientFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[normalizeProvider(name)] = f
}

// Providers lists registered provider names, sorted.
func (r *ProviderRegistry) Providers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.factories))
	for k := range r.factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Build returns the client for role wrapped in the standard middleware chain:
// logging, hooks, retry, then rate limiting closest to the wire.
func (r *ProviderRegistry) Build(ctx context.Context, cfg ProviderConfig, role ModelRole, limit Middleware) (LLMClient, error) {
	name := normalizeProvider(cfg.Provider)
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotRegistered, name)
	}
	base, err := f(ctx, cfg, cfg.modelFor(role))
	if err != nil {
		return nil, fmt.Errorf("llm: build %s model: %w", role, err)
	}
	if limit == nil {
		limit = RateLimit(cfg.RPS, cfg.Burst)
	}
	return Wrap(base,
		WithLogging(cfg.Logger),
		WithHooks(cfg.Hooks...),
		Retry(cfg.Retries, cfg.RetryBase),
		limit,
	), nil
}

// Models holds the two clients a turn needs.
type Models struct {
	Function LLMClient
	Dialog   LLMClient
}

// NewModels builds both role clients. They share one rate limiter since they
// usually sit behind the same inference server.
func (r *ProviderRegistry) NewModels(ctx context.Context, cfg ProviderConfig) (Models, error) {
	limit := RateLimit(cfg.RPS, cfg.Burst)
	fn, err := r.Build(ctx, cfg, ModelRoleFunction, limit)
	if err != nil {
		return Models{}, err
	}
	dlg, err := r.Build(ctx, cfg, ModelRoleDialog, limit)
	if err != nil {
		_ = fn.Close()
		return Models{}, err
	}
	return Models{Function: fn, Dialog: dlg}, nil
}

func (m Models) Close() error {
	var errs []error
	if m.Function != nil {
		errs = append(errs, m.Function.Close())
	}
	if m.Dialog != nil {
		errs = append(errs, m.Dialog.Close())
	}
	return errors.Join(errs...)
}
