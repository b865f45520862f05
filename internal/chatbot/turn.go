// Package chatbot runs one conversational turn: route the latest message to
// backend actions, execute them, reconcile the cart and compose the reply.
package chatbot

import (
	"strings"

	"bakerybot/internal/action"
	"bakerybot/internal/cart"
	llmclient "bakerybot/internal/llmClient"
)

// MaxHistory bounds the prior turns sent to either model.
const MaxHistory = 10

// Fixed replies.
const (
	EmptyInputReply = "Maaf, tidak ada pesan yang diterima."
	ApologyReply    = "Maaf, terjadi kesalahan saat memproses pesan Anda. Silakan coba lagi."
	FallbackReply   = "Maaf, saya belum bisa menjawab saat ini. Silakan coba lagi."
)

// Turn is one chat message as supplied by the caller.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TurnInput is everything a turn needs. The cart is the caller's snapshot
// and is never modified.
type TurnInput struct {
	Messages  []Turn      `json:"messages"`
	Cart      []cart.Line `json:"cart"`
	SessionID string      `json:"session_id,omitempty"`
}

// TurnOutput is the reply plus, when actions ran, their results and the cart
// mutation the caller should apply.
type TurnOutput struct {
	Output      string          `json:"output"`
	ToolUsed    bool            `json:"tool_used"`
	ToolResults []action.Result `json:"tool_results,omitempty"`
	CartAction  *cart.Mutation  `json:"cart_action,omitempty"`
}

// latest returns the content of the newest message, or false when there is
// nothing to answer.
func (in TurnInput) latest() (string, bool) {
	if len(in.Messages) == 0 {
		return "", false
	}
	content := in.Messages[len(in.Messages)-1].Content
	if strings.TrimSpace(content) == "" {
		return "", false
	}
	return content, true
}

// BuildHistory converts every message but the newest into model messages,
// keeping the most recent MaxHistory. A missing role counts as user; unknown
// roles are dropped.
func BuildHistory(messages []Turn) []llmclient.Message {
	if len(messages) <= 1 {
		return nil
	}
	out := make([]llmclient.Message, 0, len(messages)-1)
	for _, m := range messages[:len(messages)-1] {
		role, ok := parseRole(m.Role)
		if !ok {
			continue
		}
		out = append(out, llmclient.Message{Role: role, Content: m.Content})
	}
	if len(out) > MaxHistory {
		out = out[len(out)-MaxHistory:]
	}
	return out
}

func parseRole(s string) (llmclient.Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "user", "human":
		return llmclient.RoleUser, true
	case "assistant", "ai":
		return llmclient.RoleAssistant, true
	case "system":
		return llmclient.RoleSystem, true
	default:
		return "", false
	}
}
