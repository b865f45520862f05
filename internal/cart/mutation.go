package cart

import (
	"encoding/json"
	"fmt"
)

// MutationKind tags the variant carried by a Mutation.
type MutationKind int

const (
	KindAdd MutationKind = iota + 1
	KindRemove
	KindClear
)

func (k MutationKind) String() string {
	switch k {
	case KindAdd:
		return "add"
	case KindRemove:
		return "remove"
	case KindClear:
		return "clear"
	default:
		return "unknown"
	}
}

// Mutation is a cart delta derived from a single turn. A nil *Mutation means
// "no change". The caller owns the cart store and applies the mutation.
type Mutation struct {
	Kind  MutationKind
	Items []Line   // KindAdd
	Names []string // KindRemove
}

// Add builds an Add mutation.
func Add(items ...Line) *Mutation {
	return &Mutation{Kind: KindAdd, Items: items}
}

// Remove builds a Remove mutation for the named products.
func Remove(names ...string) *Mutation {
	return &Mutation{Kind: KindRemove, Names: names}
}

// Clear builds a Clear mutation.
func Clear() *Mutation {
	return &Mutation{Kind: KindClear}
}

// Apply projects m onto a copy of lines. The input slice is never modified.
func (m *Mutation) Apply(lines []Line) []Line {
	out := Clone(lines)
	if m == nil {
		return out
	}
	switch m.Kind {
	case KindAdd:
		for _, item := range m.Items {
			out = merge(out, item)
		}
	case KindRemove:
		kept := out[:0]
		for _, l := range out {
			if !m.removes(l.ProductName) {
				kept = append(kept, l)
			}
		}
		out = kept
	case KindClear:
		out = []Line{}
	}
	return out
}

func (m *Mutation) removes(name string) bool {
	for _, n := range m.Names {
		if SameProduct(n, name) {
			return true
		}
	}
	return false
}

func merge(lines []Line, item Line) []Line {
	for i := range lines {
		if !SameProduct(lines[i].ProductName, item.ProductName) {
			continue
		}
		lines[i].Quantity = lines[i].Qty() + item.Qty()
		if item.Price != nil {
			p := *item.Price
			lines[i].Price = &p
		}
		return lines
	}
	cp := item
	cp.Quantity = item.Qty()
	if item.Price != nil {
		p := *item.Price
		cp.Price = &p
	}
	return append(lines, cp)
}

// wireMutation is the JSON shape callers already apply:
// {"type":"add","items":[...]}, {"type":"remove","items":[{"product_name":..}]}, {"type":"clear"}.
type wireMutation struct {
	Type  string `json:"type"`
	Items []Line `json:"items,omitempty"`
}

func (m Mutation) MarshalJSON() ([]byte, error) {
	w := wireMutation{Type: m.Kind.String()}
	switch m.Kind {
	case KindAdd:
		w.Items = m.Items
	case KindRemove:
		for _, n := range m.Names {
			w.Items = append(w.Items, Line{ProductName: n})
		}
	case KindClear:
	default:
		return nil, fmt.Errorf("cart: cannot encode mutation kind %d", m.Kind)
	}
	return json.Marshal(w)
}

func (m *Mutation) UnmarshalJSON(data []byte) error {
	var w wireMutation
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch w.Type {
	case "add":
		*m = Mutation{Kind: KindAdd, Items: w.Items}
	case "remove":
		names := make([]string, 0, len(w.Items))
		for _, it := range w.Items {
			names = append(names, it.ProductName)
		}
		*m = Mutation{Kind: KindRemove, Names: names}
	case "clear":
		*m = Mutation{Kind: KindClear}
	default:
		return fmt.Errorf("cart: unknown mutation type %q", w.Type)
	}
	return nil
}
