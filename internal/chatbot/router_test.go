package chatbot

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bakerybot/internal/action"
	"bakerybot/internal/llm"
	llmclient "bakerybot/internal/llmClient"
)

func TestRoute_RequestsInModelOrder(t *testing.T) {
	model := scripted(calls(
		"add_to_cart", `{"product_name":"brownies","quantity":2}`,
		"view_cart", `{}`,
	))
	r, err := NewRouter(model, testCatalog(t, memBackend{}))
	require.NoError(t, err)

	out, err := r.Route(context.Background(), nil, "mau 2 brownies lalu lihat keranjang", "Kosong (belum ada item)")
	require.NoError(t, err)
	reqs, ok := out.(Requests)
	require.True(t, ok)
	require.Len(t, reqs, 2)
	assert.Equal(t, action.AddToCart, reqs[0].Name)
	assert.JSONEq(t, `{"product_name":"brownies","quantity":2}`, string(reqs[0].Arguments))
	assert.Equal(t, action.ViewCart, reqs[1].Name)
}

func TestRoute_SendsCatalogAndCart(t *testing.T) {
	model := scripted(text("hello"))
	r, err := NewRouter(model, testCatalog(t, memBackend{}))
	require.NoError(t, err)

	history := []llmclient.Message{{Role: llmclient.RoleAssistant, Content: "Halo!"}}
	out, err := r.Route(context.Background(), history, "terima kasih", "• 1x Roti Tawar - Rp 18.000")
	require.NoError(t, err)
	assert.Equal(t, NoAction{}, out)

	rec := model.recorded()
	require.Len(t, rec, 1)
	assert.Equal(t, llm.PhaseRoute, rec[0].phase)
	req := rec[0].req
	require.Len(t, req.Messages, 3)
	assert.Equal(t, llmclient.RoleSystem, req.Messages[0].Role)
	assert.Contains(t, req.Messages[0].Content, "TOOL CALLER")
	assert.Contains(t, req.Messages[0].Content, "• 1x Roti Tawar - Rp 18.000")
	assert.Contains(t, req.Messages[0].Content, "confirm_order() HANYA dipanggil")
	assert.Equal(t, history[0], req.Messages[1])
	assert.Equal(t, llmclient.Message{Role: llmclient.RoleUser, Content: "terima kasih"}, req.Messages[2])
	require.Len(t, req.Tools, len(action.Names))
	require.NotNil(t, req.Temperature)
	assert.InDelta(t, 0.1, *req.Temperature, 1e-9)
}

func TestRoute_ModelFailure(t *testing.T) {
	r, err := NewRouter(scripted(failing("connection refused")), testCatalog(t, memBackend{}))
	require.NoError(t, err)
	_, err = r.Route(context.Background(), nil, "menu", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestNewRouter_RequiresModel(t *testing.T) {
	_, err := NewRouter(nil, testCatalog(t, memBackend{}))
	assert.ErrorIs(t, err, ErrNoRouterModel)
}

func TestRoute_FakeModelScenarios(t *testing.T) {
	r, err := NewRouter(llm.NewFakeClient("router"), testCatalog(t, memBackend{}))
	require.NoError(t, err)

	cases := []struct {
		message string
		want    action.Name
		args    map[string]any
	}{
		{"ada roti tawar?", action.CheckAvailability, map[string]any{"product_name": "roti tawar"}},
		{"mau pesan 2 brownies", action.AddToCart, map[string]any{"product_name": "brownies", "quantity": float64(2)}},
		{"oke konfirmasi pesanan", action.ConfirmOrder, map[string]any{}},
		{"lihat menu dong", action.GetMenu, map[string]any{}},
	}
	for _, tc := range cases {
		t.Run(tc.message, func(t *testing.T) {
			out, err := r.Route(context.Background(), nil, tc.message, "Kosong (belum ada item)")
			require.NoError(t, err)
			reqs, ok := out.(Requests)
			require.True(t, ok, "expected requests, got %T", out)
			require.Len(t, reqs, 1)
			assert.Equal(t, tc.want, reqs[0].Name)
			var args map[string]any
			require.NoError(t, json.Unmarshal(reqs[0].Arguments, &args))
			assert.Equal(t, tc.args, args)
		})
	}

	out, err := r.Route(context.Background(), nil, "terima kasih", "")
	require.NoError(t, err)
	assert.Equal(t, NoAction{}, out)
}
