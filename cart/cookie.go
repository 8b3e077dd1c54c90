package cart

import (
	"net/http"
	"time"

	"github.com/junaidrashid-git/storefront/models"
)

const (
	CookieName     = "cart_uuid"
	CookieLifetime = 30 * 24 * time.Hour
)

type CookieOptions struct {
	Secure bool
	Path   string
}

// SetCookie (re)issues the cart token cookie. It is always set, consent or
// not, since the cart doesn't work without it.
func SetCookie(w http.ResponseWriter, cart *models.Cart, now time.Time, opts CookieOptions) {
	path := opts.Path
	if path == "" {
		path = "/"
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    cart.Token.String(),
		Path:     path,
		Expires:  now.Add(CookieLifetime),
		MaxAge:   int(CookieLifetime / time.Second),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// TokenFromRequest returns the raw cookie value, "" when absent.
func TokenFromRequest(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
