package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"bakerybot/internal/chatbot"
)

// maxBodyBytes caps request bodies; a turn carries at most a short history
// and a cart.
const maxBodyBytes = 1 << 20

// TurnHandler answers one chat turn.
type TurnHandler interface {
	HandleTurn(ctx context.Context, in chatbot.TurnInput) chatbot.TurnOutput
}

// ServiceInfo is reported by the health endpoint.
type ServiceInfo struct {
	FunctionModel string
	DialogModel   string
}

// ChatHandler serves the plain HTTP chat surface.
type ChatHandler struct {
	turns TurnHandler
	info  ServiceInfo
	log   *slog.Logger
}

func NewChatHandler(turns TurnHandler, info ServiceInfo, logger *slog.Logger) *ChatHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatHandler{turns: turns, info: info, log: logger}
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}
