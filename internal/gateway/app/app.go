package app

import (
	"context"
	"fmt"
	"log/slog"

	"bakerybot/internal/action"
	"bakerybot/internal/chatbot"
	"bakerybot/internal/commerce"
	"bakerybot/internal/gateway/config"
	"bakerybot/internal/gateway/handler"
	"bakerybot/internal/gateway/handler/rpc"
	"bakerybot/internal/gateway/server"
	"bakerybot/internal/llm"
)

// Components is the wired turn pipeline, shared by the server and the CLI.
type Components struct {
	Backend      *commerce.Client
	Catalog      *action.Catalog
	Models       llm.Models
	Orchestrator *chatbot.Orchestrator
}

// Close releases the model clients.
func (c *Components) Close() error {
	return c.Models.Close()
}

// Build wires the backend client, action catalog, models and orchestrator
// from cfg. Extra hooks observe every model call.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger, hooks ...llm.PromptHook) (*Components, error) {
	return BuildWith(ctx, cfg, llm.DefaultProviders(), logger, hooks...)
}

// BuildWith is Build with an explicit provider registry.
func BuildWith(ctx context.Context, cfg *config.Config, providers *llm.ProviderRegistry, logger *slog.Logger, hooks ...llm.PromptHook) (*Components, error) {
	if logger == nil {
		logger = slog.Default()
	}
	backend := commerce.New(cfg.Backend.URL, cfg.Backend.Timeout, commerce.WithMenuCacheTTL(cfg.Backend.MenuCacheTTL))

	catalog, err := action.NewCatalog(backend)
	if err != nil {
		return nil, fmt.Errorf("failed to build action catalog: %w", err)
	}

	models, err := providers.NewModels(ctx, llm.ProviderConfig{
		Provider:      cfg.LLM.Provider,
		BaseURL:       cfg.LLM.BaseURL,
		APIKey:        cfg.LLM.APIKey,
		FunctionModel: cfg.LLM.FunctionModel,
		DialogModel:   cfg.LLM.DialogModel,
		RPS:           cfg.LLM.RPS,
		Burst:         cfg.LLM.Burst,
		Retries:       cfg.LLM.Retries,
		RetryBase:     cfg.LLM.RetryBase,
		Logger:        logger,
		Hooks:         hooks,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build models: %w", err)
	}

	orch, err := chatbot.NewOrchestrator(chatbot.Deps{
		Models:   models,
		Executor: action.NewExecutor(catalog, action.ExecutorOptions{Parallelism: cfg.Parallelism, Logger: logger}),
		Orders:   backend,
		Logger:   logger,
	})
	if err != nil {
		_ = models.Close()
		return nil, fmt.Errorf("failed to build orchestrator: %w", err)
	}

	return &Components{Backend: backend, Catalog: catalog, Models: models, Orchestrator: orch}, nil
}

type App struct {
	server     *server.Server
	components *Components
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	comps, err := Build(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	chatHandler := handler.NewChatHandler(comps.Orchestrator, handler.ServiceInfo{
		FunctionModel: cfg.LLM.FunctionModel,
		DialogModel:   cfg.LLM.DialogModel,
	}, logger)
	rpcChatHandler := rpc.NewChatHandler(comps.Orchestrator)
	chatWSHandler := rpc.NewChatWSHandler(comps.Orchestrator, cfg.CORSOrigins, logger)

	// Routing & Server
	mux := server.NewMux(chatHandler, rpcChatHandler, chatWSHandler, cfg.CORSOrigins)
	srv := server.New(cfg.Addr(), mux, logger)

	logger.Info("chat pipeline ready",
		"provider", cfg.LLM.Provider,
		"function_model", comps.Models.Function.Name(),
		"dialog_model", comps.Models.Dialog.Name(),
		"backend", comps.Backend.BaseURL())

	return &App{server: srv, components: comps}, nil
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	if cerr := a.components.Close(); err == nil {
		err = cerr
	}
	return err
}
