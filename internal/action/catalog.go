package action

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tmc/langchaingo/tools"

	"bakerybot/internal/commerce"
	llmclient "bakerybot/internal/llmClient"
	"bakerybot/internal/llmtool"
)

// Backend is the part of the commerce API the read-side actions need.
type Backend interface {
	Menu(ctx context.Context) (*commerce.Menu, error)
	CheckAvailability(ctx context.Context, queries ...commerce.AvailabilityQuery) ([]commerce.Availability, error)
}

// Tool is one catalog action. Every Tool is also a langchaingo tools.Tool
// whose Call takes JSON arguments and returns the JSON-encoded Result.
type Tool interface {
	tools.Tool
	Action() Name
	Spec() llmclient.ToolSpec
	Guide() llmtool.ToolGuide
	Run(ctx context.Context, args json.RawMessage) Result
}

// Catalog holds the six actions in declaration order.
type Catalog struct {
	order []Name
	tools map[Name]Tool
}

// NewCatalog builds every action against backend.
func NewCatalog(backend Backend) (*Catalog, error) {
	if backend == nil {
		return nil, fmt.Errorf("action: backend is nil")
	}
	h := handlers{backend: backend}
	builders := []func() (Tool, error){
		func() (Tool, error) {
			return newTool(GetMenu, "Get the bakery menu with all available products and prices.",
				"get_menu()", "daftar produk dan harga", h.getMenu)
		},
		func() (Tool, error) {
			return newTool(CheckAvailability, "Check if a specific product is available and has enough ingredient stock.",
				"check_availability(product_name, quantity=1)", "cek stok produk", h.checkAvailability)
		},
		func() (Tool, error) {
			return newTool(AddToCart, "Add a product to the customer's shopping cart. Use this when a customer wants to order something; they can add more items before confirming.",
				"add_to_cart(product_name, quantity=1)", "tambah item ke keranjang saat customer mau pesan", h.addToCart)
		},
		func() (Tool, error) {
			return newTool(ViewCart, "View the current contents of the customer's shopping cart.",
				"view_cart()", "tampilkan isi keranjang", h.viewCart)
		},
		func() (Tool, error) {
			return newTool(RemoveFromCart, "Remove a product from the customer's shopping cart.",
				"remove_from_cart(product_name)", "hapus item dari keranjang", h.removeFromCart)
		},
		func() (Tool, error) {
			return newTool(ConfirmOrder, "Confirm and create the final order from the current cart. Only call this when the customer explicitly confirms.",
				`confirm_order(customer_name="Guest Customer")`, "buat pesanan final dari keranjang", h.confirmOrder)
		},
	}

	c := &Catalog{tools: make(map[Name]Tool, len(builders))}
	for _, build := range builders {
		t, err := build()
		if err != nil {
			return nil, err
		}
		c.order = append(c.order, t.Action())
		c.tools[t.Action()] = t
	}
	return c, nil
}

// Lookup returns the tool registered for name.
func (c *Catalog) Lookup(name Name) (Tool, bool) {
	t, ok := c.tools[name]
	return t, ok
}

// Specs returns the function declarations offered to the model.
func (c *Catalog) Specs() []llmclient.ToolSpec {
	out := make([]llmclient.ToolSpec, 0, len(c.order))
	for _, n := range c.order {
		out = append(out, c.tools[n].Spec())
	}
	return out
}

// Guides returns the human-readable catalog for system instructions.
func (c *Catalog) Guides() []llmtool.ToolGuide {
	out := make([]llmtool.ToolGuide, 0, len(c.order))
	for _, n := range c.order {
		out = append(out, c.tools[n].Guide())
	}
	return out
}

// Tools returns the catalog as langchaingo tools.
func (c *Catalog) Tools() []tools.Tool {
	out := make([]tools.Tool, 0, len(c.order))
	for _, n := range c.order {
		out = append(out, c.tools[n])
	}
	return out
}

// tool adapts a typed handler to the Tool interface.
type tool[A any] struct {
	name      Name
	desc      string
	signature string
	usage     string
	schema    *argSchema
	run       func(ctx context.Context, args A) Result
}

func newTool[A any](name Name, desc, signature, usage string, run func(context.Context, A) Result) (Tool, error) {
	s, err := reflectArgs[A](name)
	if err != nil {
		return nil, err
	}
	return &tool[A]{name: name, desc: desc, signature: signature, usage: usage, schema: s, run: run}, nil
}

func (t *tool[A]) Name() string        { return string(t.name) }
func (t *tool[A]) Description() string { return t.desc }
func (t *tool[A]) Action() Name        { return t.name }

func (t *tool[A]) Spec() llmclient.ToolSpec {
	return llmclient.ToolSpec{Name: string(t.name), Description: t.desc, Parameters: t.schema.declared}
}

func (t *tool[A]) Guide() llmtool.ToolGuide {
	return llmtool.ToolGuide{Signature: t.signature, Usage: t.usage}
}

func (t *tool[A]) Run(ctx context.Context, raw json.RawMessage) Result {
	args, err := decode[A](t.schema, raw)
	if err != nil {
		return Failuref(t.name, "invalid arguments for %s: %v", t.name, err)
	}
	return t.run(ctx, args)
}

// Call implements tools.Tool.
func (t *tool[A]) Call(ctx context.Context, input string) (string, error) {
	res := t.Run(ctx, json.RawMessage(input))
	out, err := llmtool.FormatJSON(res)
	if err != nil {
		return "", err
	}
	return out, nil
}
