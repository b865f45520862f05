package llmclient

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	ErrInvalidJSON = errors.New("invalid json from LLM")
	ErrNoChoices   = errors.New("llm: response has no choices")
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ToolSpec declares a callable function to the model. Parameters is a JSON
// Schema object.
type ToolSpec struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// ToolCall is one structured call the model asked for.
type ToolCall struct {
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

type ChatRequest struct {
	Messages    []Message
	Tools       []ToolSpec
	Temperature *float64
}

type Response struct {
	Content   string
	ToolCalls []ToolCall
}

// LLMClient is the provider-neutral chat surface. Implementations only make
// the API call; retries, rate limiting and logging are layered on by
// middleware in package llm.
type LLMClient interface {
	Name() string
	Chat(ctx context.Context, req ChatRequest) (*Response, error)
	Close() error
}

// PermanentError indicates an error that will not resolve with retries.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func NewPermanentError(err error) error {
	return &PermanentError{Err: err}
}

// Temperature is a convenience for ChatRequest.Temperature.
func Temperature(t float64) *float64 { return &t }

// schemaObject decodes a tool's parameter schema into a generic map,
// substituting an empty object schema when none is declared.
func schemaObject(raw json.RawMessage) (map[string]any, error) {
	if len(raw) == 0 {
		return map[string]any{"type": "object", "properties": map[string]any{}}, nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}
