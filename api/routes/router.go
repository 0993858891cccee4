package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/maisonvelaire/storefront-backend/api/controllers"
	cartcontrollers "github.com/maisonvelaire/storefront-backend/api/controllers/cart"
	catalogcontrollers "github.com/maisonvelaire/storefront-backend/api/controllers/catalog"
	checkoutcontrollers "github.com/maisonvelaire/storefront-backend/api/controllers/checkout"
	wishlistcontrollers "github.com/maisonvelaire/storefront-backend/api/controllers/wishlist"
	"github.com/maisonvelaire/storefront-backend/api/middleware"
	cartsvc "github.com/maisonvelaire/storefront-backend/internal/cart"
	catalogsvc "github.com/maisonvelaire/storefront-backend/internal/catalog"
	checkoutsvc "github.com/maisonvelaire/storefront-backend/internal/checkout"
	wishlistsvc "github.com/maisonvelaire/storefront-backend/internal/wishlist"
	"github.com/maisonvelaire/storefront-backend/pkg/config"
	"github.com/maisonvelaire/storefront-backend/pkg/cookies"
	"github.com/maisonvelaire/storefront-backend/pkg/logger"
	"github.com/maisonvelaire/storefront-backend/pkg/redis"
)

// RouterParams carries everything the HTTP surface depends on. A nil
// checkout service is valid: it means the payment gateway is not configured
// and checkout endpoints answer with a service-unavailable error.
type RouterParams struct {
	Config          *config.Config
	Logger          *logger.Logger
	Redis           *redis.Client
	BackendPinger   controllers.Pinger
	Jar             *cookies.Jar
	CartService     *cartsvc.Service
	WishlistService *wishlistsvc.Service
	CatalogService  *catalogsvc.Service
	CheckoutService *checkoutsvc.Service
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
		middleware.BearerToken(),
	)

	var redisPinger controllers.Pinger
	if p.Redis != nil {
		redisPinger = p.Redis
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, redisPinger, p.BackendPinger))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartcontrollers.Fetch(p.Jar, logg))
			r.Delete("/", cartcontrollers.Clear(p.Jar, p.CartService, logg))
			r.Post("/items", cartcontrollers.AddItem(p.Jar, p.CartService, p.CatalogService, logg))
			r.Put("/items/quantity", cartcontrollers.SetQuantity(p.Jar, p.CartService, logg))
			r.Delete("/items/{productId}", cartcontrollers.RemoveItem(p.Jar, p.CartService, logg))
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", wishlistcontrollers.Fetch(p.Jar, logg))
			r.Post("/toggle", wishlistcontrollers.Toggle(p.Jar, p.WishlistService, p.CatalogService, logg))
			r.Delete("/", wishlistcontrollers.Clear(p.Jar, p.WishlistService, logg))
		})

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/products", catalogcontrollers.ListProducts(p.CatalogService, logg))
			r.Get("/products/{id}", catalogcontrollers.GetProduct(p.CatalogService, logg))
			r.Get("/categories", catalogcontrollers.ListCategories(p.CatalogService, logg))
			r.Get("/colors", catalogcontrollers.ListColors(p.CatalogService, logg))
		})

		checkoutLimiter := middleware.CheckoutRateLimit(cfg.RateLimit, nil, logg)
		if p.Redis != nil {
			checkoutLimiter = middleware.CheckoutRateLimit(cfg.RateLimit, p.Redis, logg)
		}

		r.Route("/checkout", func(r chi.Router) {
			r.With(checkoutLimiter).
				Post("/", checkoutcontrollers.Begin(p.Jar, p.CheckoutService, logg))
			r.Post("/{attemptId}/complete", checkoutcontrollers.Complete(p.Jar, p.CheckoutService, logg))
		})
	})

	return r
}
