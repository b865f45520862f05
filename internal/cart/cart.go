package cart

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Prices leave the process as JSON numbers, the form the backend and
// existing callers use. Decoding still accepts numbers and strings.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Line is one product entry of a client-held cart. ProductName is the
// case-insensitive identity of the line.
type Line struct {
	ProductName string           `json:"product_name"`
	Quantity    int              `json:"quantity,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
}

// Qty returns the line quantity, treating a missing or non-positive value as 1.
func (l Line) Qty() int {
	if l.Quantity <= 0 {
		return 1
	}
	return l.Quantity
}

// Subtotal returns price*quantity and whether the line carries a price.
func (l Line) Subtotal() (decimal.Decimal, bool) {
	if l.Price == nil {
		return decimal.Zero, false
	}
	return l.Price.Mul(decimal.NewFromInt(int64(l.Qty()))), true
}

// SameProduct reports whether two product names identify the same line.
func SameProduct(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// Clone returns a deep copy of lines so callers can project mutations
// without touching the caller-owned cart.
func Clone(lines []Line) []Line {
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		cp := l
		if l.Price != nil {
			p := *l.Price
			cp.Price = &p
		}
		out = append(out, cp)
	}
	return out
}

// Total sums price*quantity over priced lines. The boolean is false when no
// line has a price.
func Total(lines []Line) (decimal.Decimal, bool) {
	total := decimal.Zero
	priced := false
	for _, l := range lines {
		if sub, ok := l.Subtotal(); ok {
			total = total.Add(sub)
			priced = true
		}
	}
	return total, priced
}

// ItemCount returns the number of units across all lines.
func ItemCount(lines []Line) int {
	n := 0
	for _, l := range lines {
		n += l.Qty()
	}
	return n
}
