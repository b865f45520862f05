package chatbot

import (
	"context"
	"errors"
	"fmt"

	"bakerybot/internal/action"
	"bakerybot/internal/llm"
	llmclient "bakerybot/internal/llmClient"
)

const routeTemperature = 0.1

var ErrNoRouterModel = errors.New("chatbot: router model is nil")

// Outcome is what the router decided for a turn: NoAction or Requests.
type Outcome interface {
	outcome()
}

// NoAction means the turn only needs a conversational reply.
type NoAction struct{}

// Requests are the action calls the model proposed, in the order given.
type Requests []action.Request

func (NoAction) outcome() {}
func (Requests) outcome() {}

// Router asks the function model which catalog actions, if any, a message
// needs.
type Router struct {
	model   llm.LLMClient
	catalog *action.Catalog
}

func NewRouter(model llm.LLMClient, catalog *action.Catalog) (*Router, error) {
	if model == nil {
		return nil, ErrNoRouterModel
	}
	if catalog == nil {
		return nil, fmt.Errorf("chatbot: router catalog is nil")
	}
	return &Router{model: model, catalog: catalog}, nil
}

// Route sends the routing instruction, history and message to the model with
// only the catalog offered as tools.
func (r *Router) Route(ctx context.Context, history []llmclient.Message, userMessage, cartSummary string) (Outcome, error) {
	msgs := make([]llmclient.Message, 0, len(history)+2)
	msgs = append(msgs, llmclient.Message{Role: llmclient.RoleSystem, Content: routerInstruction(r.catalog.Guides(), cartSummary)})
	msgs = append(msgs, history...)
	msgs = append(msgs, llmclient.Message{Role: llmclient.RoleUser, Content: userMessage})

	resp, err := r.model.Chat(llm.WithPhase(ctx, llm.PhaseRoute), llmclient.ChatRequest{
		Messages:    msgs,
		Tools:       r.catalog.Specs(),
		Temperature: llmclient.Temperature(routeTemperature),
	})
	if err != nil {
		return nil, fmt.Errorf("chatbot: route: %w", err)
	}
	if resp == nil || len(resp.ToolCalls) == 0 {
		return NoAction{}, nil
	}
	reqs := make(Requests, 0, len(resp.ToolCalls))
	for _, tc := range resp.ToolCalls {
		reqs = append(reqs, action.Request{Name: action.Name(tc.Name), Arguments: tc.Arguments})
	}
	return reqs, nil
}
