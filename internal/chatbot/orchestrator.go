package chatbot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"bakerybot/internal/action"
	"bakerybot/internal/cart"
	"bakerybot/internal/llm"
	llmclient "bakerybot/internal/llmClient"
)

// Orchestrator sequences a turn: route, execute, reconcile, compose.
type Orchestrator struct {
	router     *Router
	executor   *action.Executor
	reconciler *Reconciler
	composer   *Composer
	log        *slog.Logger
}

// Deps are the collaborators an Orchestrator is built from.
type Deps struct {
	Models   llm.Models
	Executor *action.Executor
	Orders   OrderPlacer
	Logger   *slog.Logger
}

func NewOrchestrator(d Deps) (*Orchestrator, error) {
	if d.Executor == nil {
		return nil, fmt.Errorf("chatbot: executor is nil")
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	router, err := NewRouter(d.Models.Function, d.Executor.Catalog())
	if err != nil {
		return nil, err
	}
	composer, err := NewComposer(d.Models.Dialog)
	if err != nil {
		return nil, err
	}
	return &Orchestrator{
		router:     router,
		executor:   d.Executor,
		reconciler: NewReconciler(d.Orders, d.Logger),
		composer:   composer,
		log:        d.Logger,
	}, nil
}

// HandleTurn answers one turn. It never fails: model and backend problems
// are turned into apology or fallback replies.
func (o *Orchestrator) HandleTurn(ctx context.Context, in TurnInput) TurnOutput {
	userMessage, ok := in.latest()
	if !ok {
		return TurnOutput{Output: EmptyInputReply}
	}
	session := in.SessionID
	if session == "" {
		session = uuid.NewString()
	}
	log := o.log.With("session", session, "turn", uuid.NewString())

	history := BuildHistory(in.Messages)
	summary := cart.Summary(in.Cart)

	outcome, err := o.router.Route(ctx, history, userMessage, summary)
	if err != nil {
		log.ErrorContext(ctx, "routing failed", "error", err)
		return TurnOutput{Output: ApologyReply}
	}

	switch oc := outcome.(type) {
	case Requests:
		return o.act(ctx, log, in, history, userMessage, oc)
	default:
		log.DebugContext(ctx, "no action needed")
		reply, err := o.composer.Compose(ctx, history, userMessage, nil, summary)
		if err != nil {
			log.ErrorContext(ctx, "compose failed", "error", err)
			reply = FallbackReply
		}
		return TurnOutput{Output: reply}
	}
}

func (o *Orchestrator) act(ctx context.Context, log *slog.Logger, in TurnInput, history []llmclient.Message, userMessage string, reqs Requests) TurnOutput {
	results := o.executor.Execute(ctx, reqs)
	for _, r := range results {
		if r.Success {
			log.InfoContext(ctx, "tool result", "tool", string(r.Action), "success", true)
		} else {
			log.InfoContext(ctx, "tool result", "tool", string(r.Action), "success", false, "error", r.Error)
		}
	}

	rec := o.reconciler.Reconcile(ctx, results, in.Cart)

	reply, err := o.composer.Compose(ctx, history, userMessage, rec.Results, rec.Summary)
	if err != nil {
		// Actions already ran, so the caller still gets the results and mutation.
		log.ErrorContext(ctx, "compose failed after actions", "error", err)
		reply = FallbackReply
	}
	return TurnOutput{
		Output:      reply,
		ToolUsed:    true,
		ToolResults: rec.Results,
		CartAction:  rec.CartAction,
	}
}
