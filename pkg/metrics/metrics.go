package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StorefrontMetrics records cart activity, the checkout funnel, and latency
// of calls into the commerce backend.
type StorefrontMetrics struct {
	cartMutations   *prometheus.CounterVec
	wishlistToggles *prometheus.CounterVec
	checkoutFunnel  *prometheus.CounterVec
	backendDuration *prometheus.HistogramVec
}

// New registers the storefront metrics on the provided registerer.
func New(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	cartMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Cart mutations by operation.",
	}, []string{"operation"})
	wishlistToggles := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wishlist_toggles_total",
		Help: "Wishlist toggles by outcome.",
	}, []string{"outcome"})
	checkoutFunnel := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_attempts_total",
		Help: "Checkout attempts by terminal stage.",
	}, []string{"stage"})
	backendDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "backend_request_duration_seconds",
		Help:    "Duration of commerce backend calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
	reg.MustRegister(cartMutations, wishlistToggles, checkoutFunnel, backendDuration)
	return &StorefrontMetrics{
		cartMutations:   cartMutations,
		wishlistToggles: wishlistToggles,
		checkoutFunnel:  checkoutFunnel,
		backendDuration: backendDuration,
	}
}

// IncCartMutation counts one cart mutation for the named operation.
func (m *StorefrontMetrics) IncCartMutation(operation string) {
	if m == nil || m.cartMutations == nil {
		return
	}
	m.cartMutations.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncWishlistToggle counts one wishlist toggle with its outcome (added/removed).
func (m *StorefrontMetrics) IncWishlistToggle(outcome string) {
	if m == nil || m.wishlistToggles == nil {
		return
	}
	m.wishlistToggles.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncCheckoutStage counts a checkout attempt reaching the named stage.
func (m *StorefrontMetrics) IncCheckoutStage(stage string) {
	if m == nil || m.checkoutFunnel == nil {
		return
	}
	m.checkoutFunnel.WithLabelValues(normalizeLabel(stage)).Inc()
}

// ObserveBackendDuration records the latency of one backend call.
func (m *StorefrontMetrics) ObserveBackendDuration(endpoint string, duration time.Duration) {
	if m == nil || m.backendDuration == nil {
		return
	}
	m.backendDuration.WithLabelValues(normalizeLabel(endpoint)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
