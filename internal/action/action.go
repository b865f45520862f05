// Package action defines the closed set of backend actions the assistant can
// take in a turn, their argument schemas, and the executor that runs them.
package action

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"bakerybot/internal/cart"
)

// Name identifies an action. The zero value is never valid.
type Name string

const (
	GetMenu           Name = "get_menu"
	CheckAvailability Name = "check_availability"
	AddToCart         Name = "add_to_cart"
	ViewCart          Name = "view_cart"
	RemoveFromCart    Name = "remove_from_cart"
	ConfirmOrder      Name = "confirm_order"

	// CreateOrderActual tags the result of real order creation. It is never
	// offered to the model.
	CreateOrderActual Name = "create_order_actual"
)

// Names lists the catalog in declaration order.
var Names = []Name{GetMenu, CheckAvailability, AddToCart, ViewCart, RemoveFromCart, ConfirmOrder}

// ParseName reports whether s names a catalog action.
func ParseName(s string) (Name, bool) {
	for _, n := range Names {
		if string(n) == s {
			return n, true
		}
	}
	return "", false
}

// DefaultCustomerName is used when confirm_order is called without a name.
const DefaultCustomerName = "Guest Customer"

// Request is one model-proposed call.
type Request struct {
	Name      Name            `json:"name"`
	Arguments json.RawMessage `json:"args,omitempty"`
}

// OrderConfirmation asks the reconciler to place an order from the caller's
// cart. It is ignored when the cart is empty.
type OrderConfirmation struct {
	CustomerName string
	RequiresCart bool
}

// Result is the outcome of one request. Mutation and Confirmation are the
// typed payload signals; Data is what the dialog model and the caller see.
type Result struct {
	Action  Name   `json:"tool"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`

	Mutation     *cart.Mutation     `json:"-"`
	Confirmation *OrderConfirmation `json:"-"`
}

func Success(name Name, data any) Result {
	return Result{Action: name, Success: true, Data: data}
}

func Failure(name Name, reason string) Result {
	if reason == "" {
		reason = "Unknown error"
	}
	return Result{Action: name, Success: false, Error: reason}
}

func Failuref(name Name, format string, args ...any) Result {
	return Failure(name, fmt.Sprintf(format, args...))
}

// Payloads carried in Result.Data.

type MenuEntry struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
}

type MenuData struct {
	Menu       []MenuEntry `json:"menu"`
	TotalItems int         `json:"total_items"`
}

type AvailabilityData struct {
	Available   bool             `json:"available"`
	ProductName string           `json:"product_name,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Message     string           `json:"message"`
}

type CartData struct {
	CartAction  *cart.Mutation `json:"cart_action,omitempty"`
	CartUpdated bool           `json:"cart_updated,omitempty"`
	Message     string         `json:"message"`
}

type ConfirmData struct {
	ConfirmOrder bool   `json:"confirm_order"`
	CustomerName string `json:"customer_name"`
	Message      string `json:"message"`
}

type Receipt struct {
	OrderNumber    string          `json:"order_number"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	FormattedTotal string          `json:"formatted_total"`
	Items          json.RawMessage `json:"items,omitempty"`
}

type OrderData struct {
	Order   Receipt `json:"order"`
	Message string  `json:"message"`
}
