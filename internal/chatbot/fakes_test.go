package chatbot

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"bakerybot/internal/action"
	"bakerybot/internal/commerce"
	"bakerybot/internal/llm"
	llmclient "bakerybot/internal/llmClient"
)

type scriptedReply struct {
	resp *llmclient.Response
	err  error
}

type recordedCall struct {
	phase string
	req   llmclient.ChatRequest
}

// scriptedModel answers from a queue and records every request.
type scriptedModel struct {
	mu      sync.Mutex
	replies []scriptedReply
	calls   []recordedCall
}

func scripted(replies ...scriptedReply) *scriptedModel {
	return &scriptedModel{replies: replies}
}

func text(s string) scriptedReply { return scriptedReply{resp: &llmclient.Response{Content: s}} }

func failing(msg string) scriptedReply { return scriptedReply{err: errors.New(msg)} }

func calls(pairs ...string) scriptedReply {
	resp := &llmclient.Response{}
	for i := 0; i+1 < len(pairs); i += 2 {
		resp.ToolCalls = append(resp.ToolCalls, llmclient.ToolCall{Name: pairs[i], Arguments: json.RawMessage(pairs[i+1])})
	}
	return scriptedReply{resp: resp}
}

func (s *scriptedModel) Name() string { return "scripted" }
func (s *scriptedModel) Close() error { return nil }

func (s *scriptedModel) Chat(ctx context.Context, req llmclient.ChatRequest) (*llmclient.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, recordedCall{phase: llm.PhaseFrom(ctx), req: req})
	if len(s.replies) == 0 {
		return &llmclient.Response{}, nil
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	return r.resp, r.err
}

func (s *scriptedModel) recorded() []recordedCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]recordedCall(nil), s.calls...)
}

// bakeryBackend is an httptest stand-in for the commerce API.
type bakeryBackend struct {
	srv        *httptest.Server
	menuHits   atomic.Int32
	orderHits  atomic.Int32
	lastOrder  atomic.Value // map[string]any
	orderReply string
}

const backendMenu = `{"success":true,"data":{"menu":[
	{"name":"Roti Tawar","price":18000,"description":"Roti putih"},
	{"name":"Brownies Coklat","price":25000,"description":"Brownies panggang"},
	{"name":"Roti Coklat","price":15000,"description":"Roti isi coklat"}
],"total_products":3}}`

func newBakeryBackend(t *testing.T) *bakeryBackend {
	t.Helper()
	b := &bakeryBackend{
		orderReply: `{"success":true,"data":{"order_number":"ORD-7","total":"55000","formatted_total":"Rp 55.000","items":[]},"message":"Pesanan berhasil dibuat"}`,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/chatbot/menu", func(w http.ResponseWriter, r *http.Request) {
		b.menuHits.Add(1)
		_, _ = w.Write([]byte(backendMenu))
	})
	mux.HandleFunc("/api/chatbot/check-availability", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"data":{"products":[{"product_name":"Roti Tawar","available":true,"price":18000,"message":"Tersedia"}]}}`))
	})
	mux.HandleFunc("/api/chatbot/create-order", func(w http.ResponseWriter, r *http.Request) {
		b.orderHits.Add(1)
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		b.lastOrder.Store(body)
		_, _ = w.Write([]byte(b.orderReply))
	})
	b.srv = httptest.NewServer(mux)
	t.Cleanup(b.srv.Close)
	return b
}

func (b *bakeryBackend) client() *commerce.Client {
	return commerce.New(b.srv.URL, 2*time.Second)
}

// memBackend serves a fixed menu without HTTP.
type memBackend struct{}

func (memBackend) Menu(context.Context) (*commerce.Menu, error) {
	return &commerce.Menu{Items: []commerce.MenuItem{
		{Name: "Roti Tawar", Price: decimal.NewFromInt(18000)},
		{Name: "Brownies Coklat", Price: decimal.NewFromInt(25000)},
	}, TotalProducts: 2}, nil
}

func (memBackend) CheckAvailability(context.Context, ...commerce.AvailabilityQuery) ([]commerce.Availability, error) {
	return nil, nil
}

func testCatalog(t *testing.T, b action.Backend) *action.Catalog {
	t.Helper()
	c, err := action.NewCatalog(b)
	require.NoError(t, err)
	return c
}
