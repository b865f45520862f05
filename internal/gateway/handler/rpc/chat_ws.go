package rpc

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"bakerybot/internal/chatbot"
	"bakerybot/internal/gateway/handler"
)

var errEmptyTurn = errors.New("turn is required")

const (
	chatWSWriteWait = 10 * time.Second
	chatWSPongWait  = 60 * time.Second
	chatWSTurnQueue = 16
)

// ChatWSHandler serves turns over a websocket. Turns on one connection are
// handled in the order received, off the read loop, so keepalive continues
// while a slow turn runs.
type ChatWSHandler struct {
	turns    handler.TurnHandler
	upgrader websocket.Upgrader
	log      *slog.Logger
	pongWait time.Duration
}

// NewChatWSHandler accepts upgrades from the listed origins, from any origin
// when the list is empty or holds "*", and always from clients that send no
// Origin header.
func NewChatWSHandler(turns handler.TurnHandler, origins []string, logger *slog.Logger) *ChatWSHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatWSHandler{
		turns: turns,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(origins),
		},
		log:      logger,
		pongWait: chatWSPongWait,
	}
}

func (h *ChatWSHandler) pingEvery() time.Duration {
	return (h.pongWait * 9) / 10
}

func originChecker(origins []string) func(*http.Request) bool {
	allowed := map[string]bool{}
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		if o != "" {
			allowed[o] = true
		}
	}
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowed[origin]
	}
}

type chatWSInbound struct {
	Type  string             `json:"type"`
	ID    string             `json:"id,omitempty"`
	Input *chatbot.TurnInput `json:"input,omitempty"`
}

type chatWSOutbound struct {
	Type    string              `json:"type"`
	ID      string              `json:"id,omitempty"`
	Output  *chatbot.TurnOutput `json:"output,omitempty"`
	Code    string              `json:"code,omitempty"`
	Message string              `json:"message,omitempty"`
}

func (h *ChatWSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(h.pongWait)); err != nil {
		h.log.Warn("chat ws set read deadline failed", "error", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.pongWait))
	})

	writeCh := make(chan chatWSOutbound, 32)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(h.pingEvery())
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(chatWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(chatWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	turnCh := make(chan chatWSInbound, chatWSTurnQueue)
	turnsDone := make(chan struct{})
	go func() {
		defer close(turnsDone)
		for in := range turnCh {
			out := h.turns.HandleTurn(ctx, *in.Input)
			push(ctx, writeCh, chatWSOutbound{Type: "result", ID: in.ID, Output: &out})
		}
	}()

	for {
		var in chatWSInbound
		if err := conn.ReadJSON(&in); err != nil {
			close(turnCh)
			cancel()
			<-turnsDone
			<-writerDone
			return
		}
		// Any inbound frame counts as liveness.
		_ = conn.SetReadDeadline(time.Now().Add(h.pongWait))

		switch strings.ToLower(strings.TrimSpace(in.Type)) {
		case "ping":
			push(ctx, writeCh, chatWSOutbound{Type: "pong", ID: in.ID})
		case "turn":
			if in.Input == nil {
				push(ctx, writeCh, chatWSOutbound{Type: "error", ID: in.ID, Code: "invalid_argument", Message: errEmptyTurn.Error()})
				continue
			}
			select {
			case turnCh <- in:
			case <-ctx.Done():
			}
		case "":
			push(ctx, writeCh, chatWSOutbound{Type: "error", ID: in.ID, Code: "invalid_argument", Message: "type is required"})
		default:
			push(ctx, writeCh, chatWSOutbound{Type: "error", ID: in.ID, Code: "invalid_argument", Message: "unsupported type: " + in.Type})
		}
	}
}

// push blocks until the writer accepts out or the connection is done. Turn
// results must not be dropped.
func push(ctx context.Context, writeCh chan<- chatWSOutbound, out chatWSOutbound) {
	select {
	case writeCh <- out:
	case <-ctx.Done():
	}
}
