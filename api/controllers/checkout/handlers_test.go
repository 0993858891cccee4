package checkout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartsvc "github.com/maisonvelaire/storefront-backend/internal/cart"
	checkoutsvc "github.com/maisonvelaire/storefront-backend/internal/checkout"
	"github.com/maisonvelaire/storefront-backend/pkg/backend"
	"github.com/maisonvelaire/storefront-backend/pkg/config"
	"github.com/maisonvelaire/storefront-backend/pkg/cookies"
	"github.com/maisonvelaire/storefront-backend/pkg/razorpay"
	"github.com/maisonvelaire/storefront-backend/pkg/redis"
	"github.com/maisonvelaire/storefront-backend/pkg/types"
)

type stubBackend struct{}

func (stubBackend) CreateOrder(_ context.Context, _ backend.CreateOrderInput) (*backend.Order, error) {
	return &backend.Order{ID: "ord_1", Status: "pending", AmountMinor: 190000, Currency: "INR"}, nil
}

func (stubBackend) ConfirmPayment(_ context.Context, _ backend.ConfirmPaymentInput) error {
	return nil
}

type stubGateway struct{}

func (stubGateway) CreateOrder(_ context.Context, _ razorpay.OrderParams) (string, error) {
	return "rzp_order_1", nil
}

func (stubGateway) VerifyPaymentSignature(_, _, _ string) bool { return true }
func (stubGateway) KeyID() string                              { return "rzp_test_key" }
func (stubGateway) Currency() string                           { return "INR" }

func newFixtures(t *testing.T) (*cookies.Jar, *checkoutsvc.Service) {
	t.Helper()
	mr := miniredis.RunT(t)
	raw := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { raw.Close() })

	store := checkoutsvc.NewAttemptStore(redis.NewFromClient(raw), config.CheckoutConfig{})
	svc, err := checkoutsvc.NewService(checkoutsvc.ServiceParams{
		Backend:  stubBackend{},
		Gateway:  stubGateway{},
		Attempts: store,
	})
	require.NoError(t, err)
	return cookies.NewJar(config.CookieConfig{TTL: time.Hour}, false), svc
}

func seedCartCookie(t *testing.T, jar *cookies.Jar, req *http.Request) {
	t.Helper()
	rec := httptest.NewRecorder()
	items := cartsvc.Cart{{
		Product:  types.Product{ID: "p1", Name: "Wool Coat", Price: decimal.RequireFromString("1900.00")},
		Quantity: 1,
	}}
	require.NoError(t, jar.Save(rec, cookies.KindCart, items))
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
}

const beginBody = `{
	"customer_email": "shopper@example.com",
	"shipping_address": {
		"line1": "12 Rue de la Paix",
		"city": "Paris",
		"state": "IDF",
		"postal_code": "75002",
		"country": "FR"
	}
}`

func beginAttempt(t *testing.T, jar *cookies.Jar, svc *checkoutsvc.Service) checkoutsvc.Session {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(beginBody))
	seedCartCookie(t, jar, req)
	Begin(jar, svc, nil)(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var envelope struct {
		Data checkoutsvc.Session `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Data
}

func completeRequest(attemptID, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/"+attemptID+"/complete", strings.NewReader(body))
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("attemptId", attemptID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestBeginReturnsSession(t *testing.T) {
	jar, svc := newFixtures(t)

	session := beginAttempt(t, jar, svc)

	assert.NotEmpty(t, session.AttemptID)
	assert.Equal(t, "rzp_test_key", session.GatewayKeyID)
	assert.Equal(t, "rzp_order_1", session.GatewayOrderID)
	assert.Equal(t, int64(190000), session.AmountMinor)
}

func TestBeginEmptyCart(t *testing.T) {
	jar, svc := newFixtures(t)
	rec := httptest.NewRecorder()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(beginBody))
	Begin(jar, svc, nil)(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBeginInvalidEmail(t *testing.T) {
	jar, svc := newFixtures(t)
	rec := httptest.NewRecorder()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{"customer_email":"not-an-email"}`))
	seedCartCookie(t, jar, req)
	Begin(jar, svc, nil)(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCompleteSuccessClearsCartCookie(t *testing.T) {
	jar, svc := newFixtures(t)
	session := beginAttempt(t, jar, svc)

	rec := httptest.NewRecorder()
	body := `{"success":{"razorpay_order_id":"` + session.GatewayOrderID + `","razorpay_payment_id":"pay_1","razorpay_signature":"sig_1"}}`
	Complete(jar, svc, nil)(rec, completeRequest(session.AttemptID, body))

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data checkoutsvc.Outcome `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, checkoutsvc.StateComplete, envelope.Data.State)
	assert.Equal(t, "ord_1", envelope.Data.OrderID)

	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == string(cookies.KindCart) && c.MaxAge == -1 {
			cleared = true
		}
	}
	assert.True(t, cleared, "cart cookie should be purged after a confirmed payment")
}

func TestCompleteDismissalKeepsCart(t *testing.T) {
	jar, svc := newFixtures(t)
	session := beginAttempt(t, jar, svc)

	rec := httptest.NewRecorder()
	Complete(jar, svc, nil)(rec, completeRequest(session.AttemptID, `{}`))

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data checkoutsvc.Outcome `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, checkoutsvc.StateCancelled, envelope.Data.State)
	assert.Empty(t, rec.Result().Cookies(), "dismissal must not touch the cart cookie")
}

func TestCompleteGatewayFailure(t *testing.T) {
	jar, svc := newFixtures(t)
	session := beginAttempt(t, jar, svc)

	rec := httptest.NewRecorder()
	body := `{"failure":{"code":"BAD_REQUEST_ERROR","description":"card declined"}}`
	Complete(jar, svc, nil)(rec, completeRequest(session.AttemptID, body))

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data checkoutsvc.Outcome `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, checkoutsvc.StateFailed, envelope.Data.State)
	assert.Equal(t, "card declined", envelope.Data.Message)
}

func TestCompleteUnknownAttempt(t *testing.T) {
	jar, svc := newFixtures(t)

	rec := httptest.NewRecorder()
	Complete(jar, svc, nil)(rec, completeRequest("ghost", `{}`))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
