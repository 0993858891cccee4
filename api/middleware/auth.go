package middleware

import (
	"net/http"
	"strings"

	"github.com/maisonvelaire/storefront-backend/pkg/backend"
)

const authCookieName = "maison_token"

// BearerToken lifts the shopper's backend token out of the Authorization
// header or the auth cookie and threads it through the context so outbound
// backend calls carry it. The token is never validated here; the backend is
// the authority and anonymous browsing is allowed.
func BearerToken() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token != "" {
				r = r.WithContext(backend.WithToken(r.Context(), token))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		if token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")); token != "" {
			return token
		}
	}
	cookie, err := r.Cookie(authCookieName)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(cookie.Value)
}
