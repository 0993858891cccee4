package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBearerTokenFromHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer tok-header")

	assert.Equal(t, "tok-header", tokenFromRequest(req))
}

func TestBearerTokenFromCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: authCookieName, Value: "tok-cookie"})

	assert.Equal(t, "tok-cookie", tokenFromRequest(req))
}

func TestBearerTokenHeaderWinsOverCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer tok-header")
	req.AddCookie(&http.Cookie{Name: authCookieName, Value: "tok-cookie"})

	assert.Equal(t, "tok-header", tokenFromRequest(req))
}

func TestBearerTokenAbsent(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	assert.Empty(t, tokenFromRequest(req))
}
