package rpc

import (
	"context"
	"encoding/json"
	"net/http"

	"connectrpc.com/connect"

	"bakerybot/internal/chatbot"
	"bakerybot/internal/gateway/handler"
)

// ChatProcedure is the connect route for one chat turn.
const ChatProcedure = "/bakery.v1.ChatService/Chat"

// jsonCodec lets connect carry plain Go structs as application/json.
type jsonCodec struct{}

func (jsonCodec) Name() string                       { return "json" }
func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Codec returns the codec used by the chat service, for clients.
func Codec() connect.Codec { return jsonCodec{} }

type ChatHandler struct {
	turns handler.TurnHandler
}

func NewChatHandler(turns handler.TurnHandler) *ChatHandler {
	return &ChatHandler{turns: turns}
}

func (h *ChatHandler) Chat(ctx context.Context, req *connect.Request[chatbot.TurnInput]) (*connect.Response[chatbot.TurnOutput], error) {
	if req.Msg == nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, errEmptyTurn)
	}
	out := h.turns.HandleTurn(ctx, *req.Msg)
	return connect.NewResponse(&out), nil
}

// Handler returns the route and handler to mount.
func (h *ChatHandler) Handler() (string, http.Handler) {
	return ChatProcedure, connect.NewUnaryHandler(ChatProcedure, h.Chat, connect.WithCodec(jsonCodec{}))
}
