package commerce

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// GuestEmail is attached to every order placed through the assistant.
const GuestEmail = "guest@bakery.com"

type MenuItem struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
}

type Menu struct {
	Items         []MenuItem
	TotalProducts int
}

// Match returns the first menu item whose name contains query or is
// contained in it, ignoring case.
func (m *Menu) Match(query string) (MenuItem, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if m == nil || q == "" {
		return MenuItem{}, false
	}
	for _, it := range m.Items {
		name := strings.ToLower(strings.TrimSpace(it.Name))
		if name == "" {
			continue
		}
		if strings.Contains(name, q) || strings.Contains(q, name) {
			return it, true
		}
	}
	return MenuItem{}, false
}

type menuData struct {
	Menu          []MenuItem `json:"menu"`
	TotalProducts int        `json:"total_products"`
}

type AvailabilityQuery struct {
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}

type Availability struct {
	ProductName string           `json:"product_name"`
	Available   bool             `json:"available"`
	Price       *decimal.Decimal `json:"price"`
	Message     string           `json:"message"`
}

type availabilityRequest struct {
	Products []AvailabilityQuery `json:"products"`
}

type availabilityData struct {
	Products []Availability `json:"products"`
}

type OrderLine struct {
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}

type OrderRequest struct {
	CustomerName string
	Items        []OrderLine
}

type orderPayload struct {
	CustomerEmail string      `json:"customer_email"`
	CustomerName  string      `json:"customer_name"`
	Items         []OrderLine `json:"items"`
	Notes         string      `json:"notes"`
}

func (r OrderRequest) payload() orderPayload {
	items := make([]OrderLine, 0, len(r.Items))
	for _, it := range r.Items {
		if it.Quantity <= 0 {
			it.Quantity = 1
		}
		items = append(items, it)
	}
	return orderPayload{
		CustomerEmail: GuestEmail,
		CustomerName:  r.CustomerName,
		Items:         items,
		Notes:         fmt.Sprintf("Order by %s via chatbot", r.CustomerName),
	}
}

// Order is the backend's receipt for a created order.
type Order struct {
	OrderNumber    string
	Total          decimal.Decimal
	FormattedTotal string
	Items          json.RawMessage
	Message        string
}

type orderData struct {
	OrderNumber    orderNumber     `json:"order_number"`
	Total          decimal.Decimal `json:"total"`
	FormattedTotal string          `json:"formatted_total"`
	Items          json.RawMessage `json:"items"`
}

// orderNumber accepts both "ORD-001" and 1001 on the wire.
type orderNumber string

func (n *orderNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*n = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = orderNumber(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return err
	}
	*n = orderNumber(num.String())
	return nil
}
