package cart

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/maisonvelaire/storefront-backend/internal/analytics"
	"github.com/maisonvelaire/storefront-backend/pkg/types"
)

// Line is one cart entry. Identity is the (product id, selected color id)
// pair: the same product in two colors occupies two lines, while repeat adds
// of the same pair bump the quantity on one line.
type Line struct {
	types.Product
	SelectedColorID *string `json:"selected_color_id,omitempty"`
	Quantity        int     `json:"quantity"`
}

// Cart is the full collection as it rides in the shopper's cookie. The slice
// is authoritative for the request; callers persist it back after mutating.
type Cart []Line

// Service applies cart mutations. It is stateless; every method takes the
// current collection and returns the updated one.
type Service struct {
	analytics analytics.Recorder
}

type ServiceParams struct {
	Analytics analytics.Recorder
}

func NewService(params ServiceParams) *Service {
	rec := params.Analytics
	if rec == nil {
		rec = analytics.NewRecorder(nil, nil)
	}
	return &Service{analytics: rec}
}

// sameLine reports whether a line matches the (productID, colorID) key.
func sameLine(line Line, productID string, colorID *string) bool {
	if line.ID != productID {
		return false
	}
	if line.SelectedColorID == nil || colorID == nil {
		return line.SelectedColorID == nil && colorID == nil
	}
	return *line.SelectedColorID == *colorID
}

// Normalize repairs a cookie-loaded cart. The cookie is client-controlled
// input, so lines that violate the collection invariants are dropped
// (missing product id, quantity below 1) and lines sharing a
// (productID, colorID) key are merged into one.
func Normalize(items Cart) Cart {
	out := Cart{}
	for _, line := range items {
		if line.ID == "" || line.Quantity < 1 {
			continue
		}
		merged := false
		for i := range out {
			if sameLine(out[i], line.ID, line.SelectedColorID) {
				out[i].Quantity += line.Quantity
				merged = true
				break
			}
		}
		if !merged {
			out = append(out, line)
		}
	}
	return out
}

// Add merges a product into the cart. An existing line with the same product
// and color gains one unit; otherwise a new line is appended with quantity 1.
func (s *Service) Add(ctx context.Context, items Cart, product types.Product, colorID *string) Cart {
	merged := false
	for i := range items {
		if sameLine(items[i], product.ID, colorID) {
			items[i].Quantity++
			merged = true
			break
		}
	}
	if !merged {
		items = append(items, Line{Product: product, SelectedColorID: colorID, Quantity: 1})
	}
	s.analytics.CartItemAdded(ctx, analytics.ItemEvent{
		ProductID:       product.ID,
		SelectedColorID: colorID,
		Quantity:        1,
		Price:           product.Price,
	})
	return items
}

// Remove drops every line for the product, across all color variants.
func (s *Service) Remove(ctx context.Context, items Cart, productID string) Cart {
	kept := items[:0]
	for _, line := range items {
		if line.ID != productID {
			kept = append(kept, line)
			continue
		}
		s.analytics.CartItemRemoved(ctx, analytics.ItemEvent{
			ProductID:       line.ID,
			SelectedColorID: line.SelectedColorID,
			Quantity:        line.Quantity,
			Price:           line.Price,
		})
	}
	return kept
}

// SetQuantity replaces the quantity on the matching line. A quantity of zero
// or below removes that line only; sibling color variants are untouched.
func (s *Service) SetQuantity(ctx context.Context, items Cart, productID string, colorID *string, quantity int) Cart {
	if quantity <= 0 {
		kept := items[:0]
		for _, line := range items {
			if sameLine(line, productID, colorID) {
				s.analytics.CartItemRemoved(ctx, analytics.ItemEvent{
					ProductID:       line.ID,
					SelectedColorID: line.SelectedColorID,
					Quantity:        line.Quantity,
					Price:           line.Price,
				})
				continue
			}
			kept = append(kept, line)
		}
		return kept
	}
	for i := range items {
		if sameLine(items[i], productID, colorID) {
			items[i].Quantity = quantity
			break
		}
	}
	return items
}

// Clear empties the cart.
func (s *Service) Clear(ctx context.Context, items Cart) Cart {
	return Cart{}
}

// Count sums quantities across all lines.
func Count(items Cart) int {
	total := 0
	for _, line := range items {
		total += line.Quantity
	}
	return total
}

// Subtotal prices the cart from the cookie snapshots. The value is display
// only; the backend re-prices every line during order creation.
func Subtotal(items Cart) decimal.Decimal {
	total := decimal.Zero
	for _, line := range items {
		total = total.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}
