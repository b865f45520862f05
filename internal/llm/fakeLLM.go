package llm

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"unicode"

	llmclient "bakerybot/internal/llmClient"
)

// FakeClient answers deterministically for offline runs and tests. With tools
// offered it maps the latest user message onto a tool call by keyword; without
// tools it returns a short canned reply.
type FakeClient struct {
	model string
}

func NewFakeClient(model string) *FakeClient {
	if strings.TrimSpace(model) == "" {
		model = "fake"
	}
	return &FakeClient{model: model}
}

func (f *FakeClient) Name() string { return "FakeLLM:" + f.model }
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) Chat(ctx context.Context, req llmclient.ChatRequest) (*llmclient.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(req.Tools) == 0 {
		return &llmclient.Response{Content: fakeReply(req.Messages)}, nil
	}
	offered := map[string]bool{}
	for _, t := range req.Tools {
		offered[t.Name] = true
	}
	name, args, ok := detectIntent(lastUser(req.Messages))
	if !ok || !offered[name] {
		return &llmclient.Response{}, nil
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, err
	}
	return &llmclient.Response{ToolCalls: []llmclient.ToolCall{{ID: "call_fake_1", Name: name, Arguments: raw}}}, nil
}

func lastUser(msgs []llmclient.Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == llmclient.RoleUser {
			return msgs[i].Content
		}
	}
	return ""
}

func fakeReply(msgs []llmclient.Message) string {
	if n := len(msgs); n > 0 && msgs[n-1].Role == llmclient.RoleAssistant && strings.HasPrefix(msgs[n-1].Content, "Tool results:") {
		return "Baik, permintaan Anda sudah saya proses. Mau tambah yang lain atau konfirmasi pesanan?"
	}
	return "Halo! Selamat datang di toko roti kami. Ada yang bisa saya bantu?"
}

var fillerWords = map[string]bool{
	"mau": true, "pesan": true, "beli": true, "order": true, "tambah": true, "tambahkan": true,
	"ada": true, "tersedia": true, "stock": true, "stok": true, "apakah": true, "masih": true,
	"hapus": true, "batal": true, "batalkan": true, "remove": true, "item": true,
	"dong": true, "ya": true, "saya": true, "aku": true, "tolong": true, "kak": true, "yang": true,
	"lagi": true, "dari": true, "keranjang": true, "nya": true, "please": true, "buah": true, "pcs": true,
}

// detectIntent mirrors the routing rules given to the real function model.
// Checks run from the most specific intent to the broadest.
func detectIntent(text string) (string, map[string]any, bool) {
	words := normalizeWords(text)
	if len(words) == 0 {
		return "", nil, false
	}
	joined := " " + strings.Join(words, " ") + " "
	has := func(phrases ...string) bool {
		for _, p := range phrases {
			if strings.Contains(joined, " "+p+" ") {
				return true
			}
		}
		return false
	}

	switch {
	case has("konfirmasi", "checkout", "selesai pesan", "ok pesan", "oke pesan", "jadi"):
		return "confirm_order", map[string]any{}, true
	case has("hapus", "batal", "batalkan", "remove"):
		if name, _ := productAndQty(words); name != "" {
			return "remove_from_cart", map[string]any{"product_name": name}, true
		}
		return "", nil, false
	case has("keranjang", "cart", "isi pesanan"):
		return "view_cart", map[string]any{}, true
	case has("menu", "apa saja", "daftar produk"):
		return "get_menu", map[string]any{}, true
	case has("ada", "tersedia", "stock", "stok"):
		name, qty := productAndQty(words)
		if name == "" {
			return "", nil, false
		}
		args := map[string]any{"product_name": name}
		if qty > 0 {
			args["quantity"] = qty
		}
		return "check_availability", args, true
	case has("pesan", "beli", "order", "mau", "tambah", "tambahkan"):
		name, qty := productAndQty(words)
		if name == "" {
			return "", nil, false
		}
		if qty <= 0 {
			qty = 1
		}
		return "add_to_cart", map[string]any{"product_name": name, "quantity": qty}, true
	}
	return "", nil, false
}

func normalizeWords(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, text)
	return strings.Fields(cleaned)
}

func productAndQty(words []string) (string, int) {
	qty := 0
	var name []string
	for _, w := range words {
		if n, err := strconv.Atoi(w); err == nil {
			if qty == 0 {
				qty = n
			}
			continue
		}
		if fillerWords[w] {
			continue
		}
		name = append(name, w)
	}
	return strings.Join(name, " "), qty
}
