package action

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bakerybot/internal/cart"
	"bakerybot/internal/commerce"
)

// Argument shapes. Field tags drive both the declared schema and the
// validation of model-supplied arguments.

type NoArgs struct{}

type ProductArgs struct {
	ProductName string `json:"product_name" jsonschema:"required,minLength=1" jsonschema_description:"Name of the product, e.g. 'Roti Coklat'"`
	Quantity    int    `json:"quantity,omitempty" jsonschema:"minimum=1,default=1" jsonschema_description:"Number of units (default 1)"`
}

func (a ProductArgs) qty() int {
	if a.Quantity <= 0 {
		return 1
	}
	return a.Quantity
}

type RemoveArgs struct {
	ProductName string `json:"product_name" jsonschema:"required,minLength=1" jsonschema_description:"Name of the product to remove from the cart"`
}

type ConfirmArgs struct {
	CustomerName string `json:"customer_name,omitempty" jsonschema_description:"Customer name for the order (default 'Guest Customer')"`
}

type handlers struct {
	backend Backend
}

func (h handlers) getMenu(ctx context.Context, _ NoArgs) Result {
	menu, err := h.backend.Menu(ctx)
	if err != nil {
		return Failure(GetMenu, commerce.Reason(err))
	}
	entries := make([]MenuEntry, 0, len(menu.Items))
	for _, it := range menu.Items {
		entries = append(entries, MenuEntry{Name: it.Name, Price: it.Price, Description: it.Description})
	}
	total := menu.TotalProducts
	if total == 0 {
		total = len(entries)
	}
	return Success(GetMenu, MenuData{Menu: entries, TotalItems: total})
}

func (h handlers) checkAvailability(ctx context.Context, args ProductArgs) Result {
	name := strings.TrimSpace(args.ProductName)
	got, err := h.backend.CheckAvailability(ctx, commerce.AvailabilityQuery{ProductName: name, Quantity: args.qty()})
	if err != nil {
		return Failure(CheckAvailability, commerce.Reason(err))
	}
	if len(got) == 0 {
		return Success(CheckAvailability, AvailabilityData{
			Available: false,
			Message:   fmt.Sprintf("Produk '%s' tidak ditemukan", name),
		})
	}
	a := got[0]
	product := a.ProductName
	if product == "" {
		product = name
	}
	return Success(CheckAvailability, AvailabilityData{
		Available:   a.Available,
		ProductName: product,
		Price:       a.Price,
		Message:     a.Message,
	})
}

// addToCart resolves the requested name against the live menu so the cart
// carries the catalog's canonical name and current price.
func (h handlers) addToCart(ctx context.Context, args ProductArgs) Result {
	menu, err := h.backend.Menu(ctx)
	if err != nil {
		var re *commerce.RemoteError
		if errors.As(err, &re) && re.Err == nil {
			return Failure(AddToCart, "Gagal mengambil menu")
		}
		return Failure(AddToCart, err.Error())
	}
	query := strings.TrimSpace(args.ProductName)
	item, ok := menu.Match(query)
	if !ok {
		return Failuref(AddToCart, "Produk '%s' tidak ditemukan di menu. Gunakan get_menu() untuk melihat menu.", query)
	}

	qty := args.qty()
	price := item.Price
	m := cart.Add(cart.Line{ProductName: item.Name, Quantity: qty, Price: &price})
	res := Success(AddToCart, CartData{
		CartAction: m,
		Message:    fmt.Sprintf("%dx %s (%s) ditambahkan ke keranjang.", qty, item.Name, cart.Rupiah(price)),
	})
	res.Mutation = m
	return res
}

func (h handlers) viewCart(_ context.Context, _ NoArgs) Result {
	return Success(ViewCart, CartData{CartUpdated: true, Message: "Menampilkan isi keranjang."})
}

func (h handlers) removeFromCart(_ context.Context, args RemoveArgs) Result {
	name := strings.TrimSpace(args.ProductName)
	m := cart.Remove(name)
	res := Success(RemoveFromCart, CartData{
		CartAction: m,
		Message:    fmt.Sprintf("%s dihapus dari keranjang.", name),
	})
	res.Mutation = m
	return res
}

func (h handlers) confirmOrder(_ context.Context, args ConfirmArgs) Result {
	customer := strings.TrimSpace(args.CustomerName)
	if customer == "" {
		customer = DefaultCustomerName
	}
	res := Success(ConfirmOrder, ConfirmData{
		ConfirmOrder: true,
		CustomerName: customer,
		Message:      "Pesanan dikonfirmasi. Memproses order...",
	})
	res.Confirmation = &OrderConfirmation{CustomerName: customer, RequiresCart: true}
	return res
}
