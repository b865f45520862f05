package chatbot

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bakerybot/internal/action"
	"bakerybot/internal/cart"
	"bakerybot/internal/commerce"
)

type recordingPlacer struct {
	calls []commerce.OrderRequest
	order *commerce.Order
	err   error
}

func (p *recordingPlacer) CreateOrder(_ context.Context, req commerce.OrderRequest) (*commerce.Order, error) {
	p.calls = append(p.calls, req)
	return p.order, p.err
}

func price(n int64) *decimal.Decimal {
	d := decimal.NewFromInt(n)
	return &d
}

func quietReconciler(p OrderPlacer) *Reconciler {
	return NewReconciler(p, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
}

func confirmResult(name string) action.Result {
	r := action.Success(action.ConfirmOrder, action.ConfirmData{ConfirmOrder: true, CustomerName: name})
	r.Confirmation = &action.OrderConfirmation{CustomerName: name, RequiresCart: true}
	return r
}

func addResult(name string, qty int, p int64) action.Result {
	m := cart.Add(cart.Line{ProductName: name, Quantity: qty, Price: price(p)})
	r := action.Success(action.AddToCart, action.CartData{CartAction: m})
	r.Mutation = m
	return r
}

func TestReconcile_ConfirmWithEmptyCartNeverOrders(t *testing.T) {
	p := &recordingPlacer{}
	rec := quietReconciler(p).Reconcile(context.Background(), []action.Result{confirmResult("Sari")}, nil)

	assert.Empty(t, p.calls)
	assert.Nil(t, rec.CartAction)
	assert.Nil(t, rec.Receipt)
	assert.Len(t, rec.Results, 1)
	assert.Equal(t, cart.EmptySummary, rec.Summary)
}

func TestReconcile_ConfirmPlacesOrderAndClears(t *testing.T) {
	p := &recordingPlacer{order: &commerce.Order{
		OrderNumber:    "ORD-1",
		Total:          decimal.NewFromInt(55000),
		FormattedTotal: "Rp 55.000",
		Message:        "Pesanan berhasil! No: ORD-1",
	}}
	current := []cart.Line{
		{ProductName: "Roti Tawar", Quantity: 2, Price: price(15000)},
		{ProductName: "Brownies Coklat", Price: price(25000)},
	}

	rec := quietReconciler(p).Reconcile(context.Background(), []action.Result{confirmResult("Sari")}, current)

	require.Len(t, p.calls, 1)
	assert.Equal(t, "Sari", p.calls[0].CustomerName)
	assert.Equal(t, []commerce.OrderLine{
		{ProductName: "Roti Tawar", Quantity: 2},
		{ProductName: "Brownies Coklat", Quantity: 1},
	}, p.calls[0].Items)

	require.NotNil(t, rec.CartAction)
	assert.Equal(t, cart.KindClear, rec.CartAction.Kind)
	require.Len(t, rec.Results, 2)
	last := rec.Results[1]
	assert.Equal(t, action.CreateOrderActual, last.Action)
	assert.True(t, last.Success)
	require.NotNil(t, rec.Receipt)
	assert.Equal(t, "ORD-1", rec.Receipt.OrderNumber)
	assert.Equal(t, "Rp 55.000", rec.Receipt.FormattedTotal)
	assert.Equal(t, cart.EmptySummary, rec.Summary)
	assert.Len(t, current, 2, "caller cart untouched")
}

func TestReconcile_OrderFailureKeepsPendingMutation(t *testing.T) {
	p := &recordingPlacer{err: &commerce.RemoteError{Op: "create order", Message: "Stok tidak cukup"}}
	current := []cart.Line{{ProductName: "Roti Tawar", Quantity: 1, Price: price(18000)}}

	rec := quietReconciler(p).Reconcile(context.Background(), []action.Result{
		addResult("Brownies Coklat", 1, 25000),
		confirmResult("Guest Customer"),
	}, current)

	require.Len(t, rec.Results, 3)
	failed := rec.Results[2]
	assert.Equal(t, action.CreateOrderActual, failed.Action)
	assert.False(t, failed.Success)
	assert.Equal(t, "Stok tidak cukup", failed.Error)
	require.NotNil(t, rec.CartAction)
	assert.Equal(t, cart.KindAdd, rec.CartAction.Kind)
	assert.Nil(t, rec.Receipt)
	assert.Equal(t, "• 1x Roti Tawar - Rp 18.000\n• 1x Brownies Coklat - Rp 25.000\nTotal: Rp 43.000", rec.Summary)
}

func TestReconcile_FirstMutationWins(t *testing.T) {
	first := addResult("Roti Tawar", 1, 18000)
	second := addResult("Brownies Coklat", 2, 25000)

	rec := quietReconciler(nil).Reconcile(context.Background(), []action.Result{first, second}, nil)
	assert.Same(t, first.Mutation, rec.CartAction)
	assert.Equal(t, "• 1x Roti Tawar - Rp 18.000\nTotal: Rp 18.000", rec.Summary)
}

func TestReconcile_ProjectsAllMutationKinds(t *testing.T) {
	current := []cart.Line{
		{ProductName: "Roti Coklat", Quantity: 2, Price: price(15000)},
		{ProductName: "Donat", Quantity: 1, Price: price(8000)},
	}

	add := addResult("roti coklat", 1, 15000)
	rec := quietReconciler(nil).Reconcile(context.Background(), []action.Result{add}, current)
	assert.Equal(t, "• 3x Roti Coklat - Rp 45.000\n• 1x Donat - Rp 8.000\nTotal: Rp 53.000", rec.Summary)

	remove := action.Success(action.RemoveFromCart, nil)
	remove.Mutation = cart.Remove("donat")
	rec = quietReconciler(nil).Reconcile(context.Background(), []action.Result{remove}, current)
	assert.Equal(t, "• 2x Roti Coklat - Rp 30.000\nTotal: Rp 30.000", rec.Summary)
	require.Len(t, rec.Projected, 1)

	assert.Equal(t, 2, current[0].Quantity)
	assert.Len(t, current, 2)
}

func TestReconcile_OrderFailureWithoutMessage(t *testing.T) {
	p := &recordingPlacer{err: &commerce.RemoteError{Op: "create order", Err: errors.New("dial tcp: connection refused")}}
	rec := quietReconciler(p).Reconcile(context.Background(),
		[]action.Result{confirmResult("Sari")},
		[]cart.Line{{ProductName: "Donat"}})
	require.Len(t, rec.Results, 2)
	assert.Contains(t, rec.Results[1].Error, "connection refused")
	assert.Nil(t, rec.CartAction)
}

func TestReconcile_NoPlacerConfigured(t *testing.T) {
	rec := quietReconciler(nil).Reconcile(context.Background(),
		[]action.Result{confirmResult("Sari")},
		[]cart.Line{{ProductName: "Donat"}})
	require.Len(t, rec.Results, 2)
	assert.Equal(t, "Gagal membuat pesanan", rec.Results[1].Error)
}
