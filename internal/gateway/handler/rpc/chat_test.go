package rpc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bakerybot/internal/cart"
	"bakerybot/internal/chatbot"
)

type fixedTurns struct{}

func (fixedTurns) HandleTurn(_ context.Context, in chatbot.TurnInput) chatbot.TurnOutput {
	if len(in.Messages) == 0 {
		return chatbot.TurnOutput{Output: chatbot.EmptyInputReply}
	}
	return chatbot.TurnOutput{
		Output:     "ok: " + in.Messages[len(in.Messages)-1].Content,
		ToolUsed:   true,
		CartAction: cart.Remove("Donat"),
	}
}

func TestChat_ConnectJSON(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle(NewChatHandler(fixedTurns{}).Handler())
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := connect.NewClient[chatbot.TurnInput, chatbot.TurnOutput](srv.Client(), srv.URL+ChatProcedure, connect.WithCodec(Codec()))
	resp, err := client.CallUnary(context.Background(), connect.NewRequest(&chatbot.TurnInput{
		Messages: []chatbot.Turn{{Role: "user", Content: "hapus donat"}},
	}))
	require.NoError(t, err)
	assert.Equal(t, "ok: hapus donat", resp.Msg.Output)
	require.NotNil(t, resp.Msg.CartAction)
	assert.Equal(t, cart.KindRemove, resp.Msg.CartAction.Kind)
	assert.Equal(t, []string{"Donat"}, resp.Msg.CartAction.Names)
}

func TestChat_PlainHTTPPost(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle(NewChatHandler(fixedTurns{}).Handler())
	srv := httptest.NewServer(mux)
	defer srv.Close()

	resp, err := http.Post(srv.URL+ChatProcedure, "application/json", strings.NewReader(`{"messages":[{"role":"user","content":"halo"}]}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func dialWS(t *testing.T, h http.Handler, origin string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	return websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), header)
}

func TestChatWS_TurnAndPing(t *testing.T) {
	conn, _, err := dialWS(t, NewChatWSHandler(fixedTurns{}, nil, nil), "")
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "ping", "id": "p1"}))
	var out chatWSOutbound
	require.NoError(t, conn.ReadJSON(&out))
	assert.Equal(t, "pong", out.Type)
	assert.Equal(t, "p1", out.ID)

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":  "turn",
		"id":    "t1",
		"input": map[string]any{"messages": []map[string]string{{"role": "user", "content": "lihat keranjang"}}},
	}))
	out = chatWSOutbound{}
	require.NoError(t, conn.ReadJSON(&out))
	assert.Equal(t, "result", out.Type)
	assert.Equal(t, "t1", out.ID)
	require.NotNil(t, out.Output)
	assert.Equal(t, "ok: lihat keranjang", out.Output.Output)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "turn"}))
	out = chatWSOutbound{}
	require.NoError(t, conn.ReadJSON(&out))
	assert.Equal(t, "error", out.Type)
	assert.Equal(t, "invalid_argument", out.Code)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "shout"}))
	out = chatWSOutbound{}
	require.NoError(t, conn.ReadJSON(&out))
	assert.Equal(t, "unsupported type: shout", out.Message)
}

type slowTurns struct {
	delay time.Duration
}

func (s slowTurns) HandleTurn(ctx context.Context, in chatbot.TurnInput) chatbot.TurnOutput {
	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
	}
	return fixedTurns{}.HandleTurn(ctx, in)
}

func TestChatWS_TurnOutlastingPongWaitKeepsConnection(t *testing.T) {
	h := NewChatWSHandler(slowTurns{delay: 1500 * time.Millisecond}, nil, nil)
	h.pongWait = 500 * time.Millisecond

	conn, _, err := dialWS(t, h, "")
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":  "turn",
		"id":    "slow",
		"input": map[string]any{"messages": []map[string]string{{"role": "user", "content": "konfirmasi"}}},
	}))
	// Reading answers the server's keepalive pings while the turn runs.
	var out chatWSOutbound
	require.NoError(t, conn.ReadJSON(&out))
	assert.Equal(t, "result", out.Type)
	assert.Equal(t, "slow", out.ID)
	require.NotNil(t, out.Output)
	assert.Equal(t, "ok: konfirmasi", out.Output.Output)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "ping", "id": "after"}))
	out = chatWSOutbound{}
	require.NoError(t, conn.ReadJSON(&out))
	assert.Equal(t, "pong", out.Type)
	assert.Equal(t, "after", out.ID)
}

func TestChatWS_QueuedTurnsKeepOrder(t *testing.T) {
	conn, _, err := dialWS(t, NewChatWSHandler(slowTurns{delay: 50 * time.Millisecond}, nil, nil), "")
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, conn.WriteJSON(map[string]any{
			"type":  "turn",
			"id":    id,
			"input": map[string]any{"messages": []map[string]string{{"role": "user", "content": id}}},
		}))
	}
	for _, id := range []string{"a", "b", "c"} {
		var out chatWSOutbound
		require.NoError(t, conn.ReadJSON(&out))
		assert.Equal(t, id, out.ID)
		require.NotNil(t, out.Output)
		assert.Equal(t, "ok: "+id, out.Output.Output)
	}
}

func TestChatWS_RejectsUnknownOrigin(t *testing.T) {
	h := NewChatWSHandler(fixedTurns{}, []string{"http://localhost:5173"}, nil)

	_, resp, err := dialWS(t, h, "https://evil.example.com")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := dialWS(t, h, "http://localhost:5173")
	require.NoError(t, err)
	conn.Close()
}
