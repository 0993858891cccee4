package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maisonvelaire/storefront-backend/internal/cart"
	"github.com/maisonvelaire/storefront-backend/internal/catalog"
	"github.com/maisonvelaire/storefront-backend/internal/wishlist"
	"github.com/maisonvelaire/storefront-backend/pkg/backend"
	"github.com/maisonvelaire/storefront-backend/pkg/config"
	"github.com/maisonvelaire/storefront-backend/pkg/cookies"
	"github.com/maisonvelaire/storefront-backend/pkg/redis"
	"github.com/maisonvelaire/storefront-backend/pkg/types"
)

type stubCatalogBackend struct{}

func (stubCatalogBackend) ListProducts(_ context.Context, _ string) ([]types.Product, error) {
	return []types.Product{{ID: "p1"}}, nil
}

func (stubCatalogBackend) GetProduct(_ context.Context, id string) (*types.Product, error) {
	return &types.Product{ID: id}, nil
}

func (stubCatalogBackend) ListCategories(_ context.Context) ([]backend.Category, error) {
	return nil, nil
}

func (stubCatalogBackend) ListColors(_ context.Context) ([]types.Color, error) {
	return nil, nil
}

type okPinger struct{}

func (okPinger) Ping(_ context.Context) error { return nil }

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	mr := miniredis.RunT(t)
	raw := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { raw.Close() })

	catalogService, err := catalog.NewService(catalog.ServiceParams{Backend: stubCatalogBackend{}})
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.App.Env = "test"
	return NewRouter(RouterParams{
		Config:          cfg,
		Redis:           redis.NewFromClient(raw),
		BackendPinger:   okPinger{},
		Jar:             cookies.NewJar(config.CookieConfig{TTL: time.Hour}, false),
		CartService:     cart.NewService(cart.ServiceParams{}),
		WishlistService: wishlist.NewService(wishlist.ServiceParams{}),
		CatalogService:  catalogService,
	})
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/health/live", "/health/ready"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCartRoutesWired(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(`{"product_id":"p1"}`))
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data struct {
			Count int `json:"count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, 1, envelope.Data.Count)
}

func TestCatalogRoutesWired(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/catalog/products", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/catalog/products/p1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCheckoutUnconfiguredGateway(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{}`))
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestUnknownRouteIs404(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
