package cart

import (
	cartsvc "github.com/maisonvelaire/storefront-backend/internal/cart"
)

// View is the cart as the storefront renders it.
type View struct {
	Items    []cartsvc.Line `json:"items"`
	Count    int            `json:"count"`
	Subtotal string         `json:"subtotal"`
}

func newView(items cartsvc.Cart) View {
	if items == nil {
		items = cartsvc.Cart{}
	}
	return View{
		Items:    items,
		Count:    cartsvc.Count(items),
		Subtotal: cartsvc.Subtotal(items).StringFixed(2),
	}
}
