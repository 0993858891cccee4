package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/maisonvelaire/storefront-backend/api/routes"
	"github.com/maisonvelaire/storefront-backend/internal/analytics"
	cartsvc "github.com/maisonvelaire/storefront-backend/internal/cart"
	catalogsvc "github.com/maisonvelaire/storefront-backend/internal/catalog"
	checkoutsvc "github.com/maisonvelaire/storefront-backend/internal/checkout"
	wishlistsvc "github.com/maisonvelaire/storefront-backend/internal/wishlist"
	"github.com/maisonvelaire/storefront-backend/pkg/backend"
	"github.com/maisonvelaire/storefront-backend/pkg/config"
	"github.com/maisonvelaire/storefront-backend/pkg/cookies"
	"github.com/maisonvelaire/storefront-backend/pkg/env"
	"github.com/maisonvelaire/storefront-backend/pkg/logger"
	"github.com/maisonvelaire/storefront-backend/pkg/metrics"
	"github.com/maisonvelaire/storefront-backend/pkg/razorpay"
	"github.com/maisonvelaire/storefront-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	storefrontMetrics := metrics.New(prometheus.DefaultRegisterer)

	backendClient, err := backend.NewClient(cfg.Backend, logg, storefrontMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to build backend client", err)
		os.Exit(1)
	}

	recorder := analytics.NewRecorder(logg, storefrontMetrics)
	cartService := cartsvc.NewService(cartsvc.ServiceParams{Analytics: recorder})
	wishlistService := wishlistsvc.NewService(wishlistsvc.ServiceParams{Analytics: recorder})

	catalogService, err := catalogsvc.NewService(catalogsvc.ServiceParams{Backend: backendClient})
	if err != nil {
		logg.Error(context.Background(), "failed to build catalog service", err)
		os.Exit(1)
	}

	var checkoutService *checkoutsvc.Service
	if cfg.Razorpay.Enabled() {
		gateway, err := razorpay.NewClient(context.Background(), cfg.Razorpay, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to build razorpay client", err)
			os.Exit(1)
		}
		attempts := checkoutsvc.NewAttemptStore(redisClient, cfg.Checkout)
		checkoutService, err = checkoutsvc.NewService(checkoutsvc.ServiceParams{
			Backend:   backendClient,
			Gateway:   gateway,
			Attempts:  attempts,
			Analytics: recorder,
			Logger:    logg,
		})
		if err != nil {
			logg.Error(context.Background(), "failed to build checkout service", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "razorpay credentials absent, checkout endpoints disabled")
	}

	jar := cookies.NewJar(cfg.Cookies, cfg.App.IsProd())

	addr := ":" + env.Get("PORT", cfg.App.Port)

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting storefront api")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:          cfg,
			Logger:          logg,
			Redis:           redisClient,
			BackendPinger:   backendClient,
			Jar:             jar,
			CartService:     cartService,
			WishlistService: wishlistService,
			CatalogService:  catalogService,
			CheckoutService: checkoutService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "storefront api stopped unexpectedly", err)
		os.Exit(1)
	}
}
