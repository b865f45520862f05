// Package commerce is the HTTP client for the bakery backend's chatbot API.
package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	pkgerrors "github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
)

const (
	apiPrefix      = "/api/chatbot"
	defaultTimeout = 30 * time.Second
	menuCacheKey   = "menu"
)

// Client talks to the bakery commerce backend. It holds no per-turn state and
// is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	menu    *expirable.LRU[string, *Menu]
	fetch   singleflight.Group
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its Timeout is kept as is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithMenuCacheTTL caches the menu for ttl. ttl <= 0 disables caching.
func WithMenuCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		if ttl <= 0 {
			c.menu = nil
			return
		}
		c.menu = expirable.NewLRU[string, *Menu](1, nil, ttl)
	}
}

// New returns a client rooted at baseURL. Every call is bounded by timeout
// (30s when timeout <= 0).
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		timeout: timeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend root the client was built with.
func (c *Client) BaseURL() string { return c.baseURL }

// Menu returns the current product catalog. The returned value may be shared
// with other callers through the cache and must not be modified. Concurrent
// misses share one backend request, which runs detached from any single
// caller so one cancellation does not fail the others.
func (c *Client) Menu(ctx context.Context) (*Menu, error) {
	if c.menu != nil {
		if m, ok := c.menu.Get(menuCacheKey); ok {
			return m, nil
		}
	}
	ch := c.fetch.DoChan(menuCacheKey, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		var data menuData
		if err := c.do(fetchCtx, "menu", http.MethodGet, "/menu", nil, &data); err != nil {
			return nil, err
		}
		m := &Menu{Items: data.Menu, TotalProducts: data.TotalProducts}
		if m.TotalProducts == 0 {
			m.TotalProducts = len(m.Items)
		}
		if c.menu != nil {
			c.menu.Add(menuCacheKey, m)
		}
		return m, nil
	})
	select {
	case <-ctx.Done():
		return nil, &RemoteError{Op: "menu", Err: pkgerrors.Wrap(ctx.Err(), "GET /menu")}
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*Menu), nil
	}
}

// CheckAvailability asks the backend whether each queried product can be
// fulfilled. An unknown product yields an empty slice, not an error.
func (c *Client) CheckAvailability(ctx context.Context, queries ...AvailabilityQuery) ([]Availability, error) {
	body := availabilityRequest{Products: queries}
	var data availabilityData
	if err := c.do(ctx, "check availability", http.MethodPost, "/check-availability", body, &data); err != nil {
		return nil, err
	}
	return data.Products, nil
}

// CreateOrder places an order for the given lines.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	payload := req.payload()
	var env envelope
	var data orderData
	if err := c.doEnvelope(ctx, "create order", http.MethodPost, "/create-order", payload, &env, &data); err != nil {
		return nil, err
	}
	msg := env.Message
	if strings.TrimSpace(msg) == "" {
		msg = fmt.Sprintf("Pesanan berhasil! No: %s", data.OrderNumber)
	}
	return &Order{
		OrderNumber:    string(data.OrderNumber),
		Total:          data.Total,
		FormattedTotal: data.FormattedTotal,
		Items:          data.Items,
		Message:        msg,
	}, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var env envelope
	return c.doEnvelope(ctx, op, method, path, body, &env, out)
}

func (c *Client) doEnvelope(ctx context.Context, op, method, path string, body any, env *envelope, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &RemoteError{Op: op, Err: pkgerrors.Wrap(err, "encode request")}
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, rd)
	if err != nil {
		return &RemoteError{Op: op, Err: pkgerrors.Wrap(err, "build request")}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &RemoteError{Op: op, Err: pkgerrors.Wrapf(err, "%s %s", method, path)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RemoteError{Op: op, Status: resp.StatusCode, Err: pkgerrors.Wrap(err, "read response")}
	}
	if err := json.Unmarshal(raw, env); err != nil {
		if resp.StatusCode >= 300 {
			return &RemoteError{Op: op, Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return &RemoteError{Op: op, Status: resp.StatusCode, Err: pkgerrors.Wrap(err, "decode response")}
	}
	if resp.StatusCode >= 300 || !env.Success {
		msg := firstNonEmpty(env.Error, env.Message)
		if msg == "" {
			msg = "Unknown error"
		}
		return &RemoteError{Op: op, Status: resp.StatusCode, Message: msg}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &RemoteError{Op: op, Status: resp.StatusCode, Err: pkgerrors.Wrap(err, "decode data")}
		}
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
