package cookies

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"github.com/maisonvelaire/storefront-backend/pkg/config"
	pkgerrors "github.com/maisonvelaire/storefront-backend/pkg/errors"
)

// Kind names one of the storefront collection cookies.
type Kind string

const (
	KindCart     Kind = "maison_cart"
	KindWishlist Kind = "maison_wishlist"
)

// Browsers cap a single cookie at roughly 4KB. Values beyond this would be
// truncated or dropped silently, so the jar refuses them instead.
const maxValueBytes = 4000

// Jar round-trips JSON collections through browser cookies. Cookie contents
// are base64url(JSON); a missing or unreadable value always degrades to an
// empty collection, never an error, because the cookie is not authoritative
// for anything financially binding.
type Jar struct {
	ttl    time.Duration
	domain string
	secure bool
}

// NewJar builds a jar from config; secure is disabled for local development.
func NewJar(cfg config.CookieConfig, secure bool) *Jar {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &Jar{ttl: ttl, domain: cfg.Domain, secure: secure}
}

// Load returns the decoded JSON payload of the named cookie, or nil when the
// cookie is absent or unreadable.
func (j *Jar) Load(r *http.Request, kind Kind) []byte {
	if r == nil {
		return nil
	}
	cookie, err := r.Cookie(string(kind))
	if err != nil || cookie.Value == "" {
		return nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	return raw
}

// Save serializes value to JSON and writes it to the named cookie with the
// configured TTL, path /, SameSite=Lax, and the secure flag.
func (j *Jar) Save(w http.ResponseWriter, kind Kind, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode collection")
	}
	encoded := base64.RawURLEncoding.EncodeToString(raw)
	if len(encoded) > maxValueBytes {
		return pkgerrors.New(pkgerrors.CodeValidation, "collection too large for cookie storage")
	}
	http.SetCookie(w, &http.Cookie{
		Name:     string(kind),
		Value:    encoded,
		Path:     "/",
		Domain:   j.domain,
		MaxAge:   int(j.ttl.Seconds()),
		SameSite: http.SameSiteLaxMode,
		Secure:   j.secure,
		HttpOnly: false,
	})
	return nil
}

// Clear expires the named cookie.
func (j *Jar) Clear(w http.ResponseWriter, kind Kind) {
	http.SetCookie(w, &http.Cookie{
		Name:     string(kind),
		Value:    "",
		Path:     "/",
		Domain:   j.domain,
		MaxAge:   -1,
		SameSite: http.SameSiteLaxMode,
		Secure:   j.secure,
	})
}

// DecodeSlice parses raw JSON into a slice of T, collapsing any parse failure
// to an empty slice. Corrupted or hand-edited cookie values must never take
// the page down.
func DecodeSlice[T any](raw []byte) []T {
	if len(raw) == 0 {
		return []T{}
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return []T{}
	}
	if items == nil {
		return []T{}
	}
	return items
}
