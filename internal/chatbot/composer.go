package chatbot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bakerybot/internal/action"
	"bakerybot/internal/llm"
	llmclient "bakerybot/internal/llmClient"
	"bakerybot/internal/llmtool"
)

const composeTemperature = 0.1

var ErrNoDialogModel = errors.New("chatbot: dialog model is nil")

// Composer writes the customer-facing reply with the dialog model.
type Composer struct {
	model llm.LLMClient
}

func NewComposer(model llm.LLMClient) (*Composer, error) {
	if model == nil {
		return nil, ErrNoDialogModel
	}
	return &Composer{model: model}, nil
}

// Compose returns the reply for userMessage. When results is non-nil they are
// shown to the model as an assistant "Tool results:" message. An empty model
// reply becomes FallbackReply.
func (c *Composer) Compose(ctx context.Context, history []llmclient.Message, userMessage string, results []action.Result, cartSummary string) (string, error) {
	msgs := make([]llmclient.Message, 0, len(history)+3)
	msgs = append(msgs, llmclient.Message{Role: llmclient.RoleSystem, Content: dialogInstruction(cartSummary)})
	msgs = append(msgs, history...)
	msgs = append(msgs, llmclient.Message{Role: llmclient.RoleUser, Content: userMessage})
	if results != nil {
		body, err := llmtool.ToolResultsMessage(results)
		if err != nil {
			return "", fmt.Errorf("chatbot: encode tool results: %w", err)
		}
		msgs = append(msgs, llmclient.Message{Role: llmclient.RoleAssistant, Content: body})
	}

	resp, err := c.model.Chat(llm.WithPhase(ctx, llm.PhaseCompose), llmclient.ChatRequest{
		Messages:    msgs,
		Temperature: llmclient.Temperature(composeTemperature),
	})
	if err != nil {
		return "", fmt.Errorf("chatbot: compose: %w", err)
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return FallbackReply, nil
	}
	return strings.TrimSpace(resp.Content), nil
}
