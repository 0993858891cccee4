package wishlist

import (
	"context"

	"github.com/maisonvelaire/storefront-backend/internal/analytics"
	"github.com/maisonvelaire/storefront-backend/pkg/types"
)

// Wishlist holds at most one product snapshot per product id. There is no
// quantity or color dimension; membership is the whole signal.
type Wishlist []types.Product

// Service applies wishlist mutations. Like the cart service it is stateless
// and operates on collections the caller loads from and saves to the cookie.
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

// Normalize repairs a cookie-loaded wishlist. The cookie is
// client-controlled input; entries without a product id are dropped and
// duplicate product ids collapse to the first occurrence.
func Normalize(items Wishlist) Wishlist {
	out := Wishlist{}
	seen := map[string]bool{}
	for _, entry := range items {
		if entry.ID == "" || seen[entry.ID] {
			continue
		}
		seen[entry.ID] = true
		out = append(out, entry)
	}
	return out
}

// Toggle flips membership for the product. It returns the updated collection
// and whether the product ended up present.
func (s *Service) Toggle(ctx context.Context, items Wishlist, product types.Product) (Wishlist, bool) {
	for i, entry := range items {
		if entry.ID == product.ID {
			items = append(items[:i], items[i+1:]...)
			s.analytics.WishlistToggled(ctx, product.ID, false)
			return items, false
		}
	}
	items = append(items, product)
	s.analytics.WishlistToggled(ctx, product.ID, true)
	return items, true
}

// Contains is a pure membership query.
func Contains(items Wishlist, productID string) bool {
	for _, entry := range items {
		if entry.ID == productID {
			return true
		}
	}
	return false
}

// Clear empties the wishlist.
func (s *Service) Clear(ctx context.Context, items Wishlist) Wishlist {
	return Wishlist{}
}

// Count is the number of saved products.
func Count(items Wishlist) int {
	return len(items)
}
