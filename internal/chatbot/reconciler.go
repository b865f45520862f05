package chatbot

import (
	"context"
	"log/slog"
	"strings"

	"bakerybot/internal/action"
	"bakerybot/internal/cart"
	"bakerybot/internal/commerce"
)

const orderFailedReason = "Gagal membuat pesanan"

// OrderPlacer creates real orders. *commerce.Client satisfies it.
type OrderPlacer interface {
	CreateOrder(ctx context.Context, req commerce.OrderRequest) (*commerce.Order, error)
}

// Reconciliation is the cart-level outcome of a turn's action results.
type Reconciliation struct {
	// Results are the action results plus the synthetic order result, if any.
	Results []action.Result
	// Projected is the cart after CartAction; Summary renders it.
	Projected  []cart.Line
	Summary    string
	CartAction *cart.Mutation
	Receipt    *action.Receipt
}

type Reconciler struct {
	orders OrderPlacer
	log    *slog.Logger
}

func NewReconciler(orders OrderPlacer, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{orders: orders, log: logger}
}

// Reconcile picks the turn's cart mutation, places the order when one was
// confirmed against a non-empty cart, and projects the result onto current.
// current is never modified.
func (r *Reconciler) Reconcile(ctx context.Context, results []action.Result, current []cart.Line) Reconciliation {
	out := Reconciliation{Results: append([]action.Result(nil), results...)}

	var confirm *action.OrderConfirmation
	for _, res := range results {
		if out.CartAction == nil && res.Mutation != nil {
			out.CartAction = res.Mutation
		}
		if confirm == nil && res.Confirmation != nil {
			confirm = res.Confirmation
		}
	}

	if confirm != nil && len(current) > 0 {
		res := r.placeOrder(ctx, confirm.CustomerName, current)
		out.Results = append(out.Results, res)
		if res.Success {
			data := res.Data.(action.OrderData)
			out.Receipt = &data.Order
			out.CartAction = cart.Clear()
		}
	}

	out.Projected = out.CartAction.Apply(current)
	out.Summary = cart.Summary(out.Projected)
	return out
}

func (r *Reconciler) placeOrder(ctx context.Context, customer string, lines []cart.Line) action.Result {
	if strings.TrimSpace(customer) == "" {
		customer = action.DefaultCustomerName
	}
	if r.orders == nil {
		return action.Failure(action.CreateOrderActual, orderFailedReason)
	}
	items := make([]commerce.OrderLine, 0, len(lines))
	for _, l := range lines {
		items = append(items, commerce.OrderLine{ProductName: l.ProductName, Quantity: l.Qty()})
	}

	order, err := r.orders.CreateOrder(ctx, commerce.OrderRequest{CustomerName: customer, Items: items})
	if err != nil {
		r.log.WarnContext(ctx, "order creation failed", "customer", customer, "items", len(items), "error", err)
		reason := commerce.Reason(err)
		if reason == "" {
			reason = orderFailedReason
		}
		return action.Failure(action.CreateOrderActual, reason)
	}
	r.log.InfoContext(ctx, "order created", "order_number", order.OrderNumber, "customer", customer, "items", len(items))
	return action.Success(action.CreateOrderActual, action.OrderData{
		Order: action.Receipt{
			OrderNumber:    order.OrderNumber,
			TotalAmount:    order.Total,
			FormattedTotal: order.FormattedTotal,
			Items:          order.Items,
		},
		Message: order.Message,
	})
}
