package server

import (
	"net/http"

	"bakerybot/internal/gateway/handler"
	"bakerybot/internal/gateway/handler/rpc"
	"bakerybot/internal/gateway/middleware"
)

func NewMux(
	chatHandler *handler.ChatHandler,
	rpcChatHandler *rpc.ChatHandler,
	chatWSHandler *rpc.ChatWSHandler,
	origins []string,
) http.Handler {
	mux := http.NewServeMux()

	// RPC Handlers
	mux.Handle(rpcChatHandler.Handler())

	// LangServe-style HTTP
	mux.HandleFunc("/chat/invoke", chatHandler.Invoke)
	mux.HandleFunc("/chat/batch", chatHandler.Batch)
	mux.Handle("/chat/ws", chatWSHandler)
	mux.HandleFunc("GET /health", chatHandler.Health)

	// Middleware
	return middleware.CORS(origins)(mux)
}
