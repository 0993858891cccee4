package types

import "github.com/shopspring/decimal"

// Color is a product variant owned by the commerce backend.
type Color struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Hex   *string `json:"hex,omitempty"`
	Image *string `json:"image,omitempty"`
}

// Product is a read-only snapshot of a catalog record. The backend owns the
// canonical version; snapshots ride in cart and wishlist cookies and are
// never written back.
type Product struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
	InStock  bool            `json:"in_stock"`
	Images   []string        `json:"images,omitempty"`
	Colors   []Color         `json:"colors,omitempty"`
}
