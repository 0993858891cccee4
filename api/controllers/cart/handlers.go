package cart

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/maisonvelaire/storefront-backend/api/responses"
	"github.com/maisonvelaire/storefront-backend/api/validators"
	cartsvc "github.com/maisonvelaire/storefront-backend/internal/cart"
	"github.com/maisonvelaire/storefront-backend/pkg/cookies"
	pkgerrors "github.com/maisonvelaire/storefront-backend/pkg/errors"
	"github.com/maisonvelaire/storefront-backend/pkg/logger"
	"github.com/maisonvelaire/storefront-backend/pkg/types"
)

// productGetter resolves the snapshot stored on a new cart line. The catalog
// service satisfies it.
type productGetter interface {
	GetProduct(ctx context.Context, id string) (*types.Product, error)
}

// loadCart decodes and normalizes the cookie cart. The cookie crosses the
// trust boundary, so invariant-violating lines never reach the services.
func loadCart(jar *cookies.Jar, r *http.Request) cartsvc.Cart {
	return cartsvc.Normalize(cookies.DecodeSlice[cartsvc.Line](jar.Load(r, cookies.KindCart)))
}

// Fetch returns the shopper's cart, repaired to the collection invariants.
func Fetch(jar *cookies.Jar, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, newView(loadCart(jar, r)))
	}
}

// AddItem merges one unit into the cart and writes the cookie back.
func AddItem(jar *cookies.Jar, svc *cartsvc.Service, products productGetter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || products == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var payload AddItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := products.GetProduct(r.Context(), payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := loadCart(jar, r)
		items = svc.Add(r.Context(), items, *product, payload.SelectedColorID)

		if err := jar.Save(w, cookies.KindCart, items); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newView(items))
	}
}

// SetQuantity replaces one line's quantity; zero drops the line.
func SetQuantity(jar *cookies.Jar, svc *cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var payload SetQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := loadCart(jar, r)
		items = svc.SetQuantity(r.Context(), items, payload.ProductID, payload.SelectedColorID, payload.Quantity)

		if err := jar.Save(w, cookies.KindCart, items); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newView(items))
	}
}

// RemoveItem drops every color variant of a product from the cart.
func RemoveItem(jar *cookies.Jar, svc *cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		productID := chi.URLParam(r, "productId")
		if productID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product id is required"))
			return
		}

		items := loadCart(jar, r)
		items = svc.Remove(r.Context(), items, productID)

		if err := jar.Save(w, cookies.KindCart, items); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newView(items))
	}
}

// Clear empties the cart and purges its cookie.
func Clear(jar *cookies.Jar, svc *cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		items := svc.Clear(r.Context(), nil)
		jar.Clear(w, cookies.KindCart)
		responses.WriteSuccess(w, newView(items))
	}
}
