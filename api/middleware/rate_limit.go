package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/maisonvelaire/storefront-backend/api/responses"
	"github.com/maisonvelaire/storefront-backend/pkg/config"
	pkgerrors "github.com/maisonvelaire/storefront-backend/pkg/errors"
	"github.com/maisonvelaire/storefront-backend/pkg/logger"
)

type rateLimiterStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// CheckoutRateLimit throttles checkout starts per client IP with a fixed
// redis window. Limiter outages fail open: a throttling gap is cheaper than
// blocking every checkout.
func CheckoutRateLimit(cfg config.RateLimitConfig, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if store == nil || cfg.CheckoutWindow <= 0 || cfg.CheckoutIPLimit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if ip == "" {
				next.ServeHTTP(w, r)
				return
			}

			allowed, count, err := store.FixedWindowAllow(r.Context(), "checkout:ip:"+ip, int64(cfg.CheckoutIPLimit), cfg.CheckoutWindow)
			if err != nil {
				if logg != nil {
					logg.Warn(r.Context(), "rate_limit.store_unavailable")
				}
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				ctx := r.Context()
				if logg != nil {
					ctx = logg.WithFields(ctx, map[string]any{"ip": ip, "count": count})
					logg.Warn(ctx, "rate_limit.checkout_blocked")
				}
				responses.WriteError(ctx, logg, w,
					pkgerrors.New(pkgerrors.CodeRateLimit, "too many checkout attempts, try again shortly"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}
