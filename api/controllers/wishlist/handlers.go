package wishlist

import (
	"context"
	"net/http"

	"github.com/maisonvelaire/storefront-backend/api/responses"
	"github.com/maisonvelaire/storefront-backend/api/validators"
	wishlistsvc "github.com/maisonvelaire/storefront-backend/internal/wishlist"
	"github.com/maisonvelaire/storefront-backend/pkg/cookies"
	pkgerrors "github.com/maisonvelaire/storefront-backend/pkg/errors"
	"github.com/maisonvelaire/storefront-backend/pkg/logger"
	"github.com/maisonvelaire/storefront-backend/pkg/types"
)

type productGetter interface {
	GetProduct(ctx context.Context, id string) (*types.Product, error)
}

// ToggleRequest flips wishlist membership for one product.
type ToggleRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

// View is the wishlist as the storefront renders it.
type View struct {
	Items []types.Product `json:"items"`
	Count int             `json:"count"`
}

func newView(items wishlistsvc.Wishlist) View {
	if items == nil {
		items = wishlistsvc.Wishlist{}
	}
	return View{Items: items, Count: wishlistsvc.Count(items)}
}

// Fetch returns the wishlist from the shopper's cookie.
func Fetch(jar *cookies.Jar, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items := wishlistsvc.Normalize(cookies.DecodeSlice[types.Product](jar.Load(r, cookies.KindWishlist)))
		responses.WriteSuccess(w, newView(items))
	}
}

// Toggle adds the product if absent, removes it if present, and writes the
// cookie back either way.
func Toggle(jar *cookies.Jar, svc *wishlistsvc.Service, products productGetter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || products == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wishlist service unavailable"))
			return
		}

		var payload ToggleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := products.GetProduct(r.Context(), payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := wishlistsvc.Normalize(cookies.DecodeSlice[types.Product](jar.Load(r, cookies.KindWishlist)))
		items, added := svc.Toggle(r.Context(), items, *product)

		if err := jar.Save(w, cookies.KindWishlist, items); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"added": added,
			"items": newView(items).Items,
			"count": wishlistsvc.Count(items),
		})
	}
}

// Clear empties the wishlist and purges its cookie.
func Clear(jar *cookies.Jar, svc *wishlistsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wishlist service unavailable"))
			return
		}

		items := svc.Clear(r.Context(), nil)
		jar.Clear(w, cookies.KindWishlist)
		responses.WriteSuccess(w, newView(items))
	}
}
