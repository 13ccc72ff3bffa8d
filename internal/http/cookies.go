package httpx

import (
	"net/http"
	"strings"
	"time"
)

// Cookie names owned by the auth core.
const (
	// SessionCookieName carries the opaque session token.
	SessionCookieName = "session_token"
	// OAuthCSRFCookieName holds the random token whose HMAC digest travels
	// as the OAuth state parameter. Single-use: cleared on callback.
	OAuthCSRFCookieName = "oauth_csrf"
	// ImpersonationCookieName carries the signed impersonation capability
	// token as payload.signature.
	ImpersonationCookieName = "impersonation"
)

const (
	// oauthCSRFCookieTTL bounds the window between the authorization
	// redirect and the provider callback.
	oauthCSRFCookieTTL = 5 * time.Minute
	// impersonationCookieTTL is the browser-side lifetime of the
	// impersonation cookie; the payload carries its own, longer expiry.
	impersonationCookieTTL = 30 * time.Minute
)

// CookieManager writes and clears the auth cookies with consistent
// attributes. Secure is derived per request so the app works behind a
// TLS-terminating proxy and in local development alike.
type CookieManager struct {
	Domain string
}

// cookieParams groups the per-cookie attributes that vary.
type cookieParams struct {
	Name     string
	Value    string
	MaxAge   time.Duration
	SameSite http.SameSite
}

// Set writes an HTTP-only cookie with the given parameters.
func (c *CookieManager) Set(w http.ResponseWriter, r *http.Request, p cookieParams) {
	http.SetCookie(w, &http.Cookie{
		Name:     p.Name,
		Value:    p.Value,
		Path:     "/",
		Domain:   c.Domain,
		HttpOnly: true,
		Secure:   isRequestSecure(r),
		SameSite: p.SameSite,
		MaxAge:   int(p.MaxAge.Seconds()),
	})
}

// Clear expires a cookie immediately, mirroring the attributes used when
// setting it so deletion works across browsers.
func (c *CookieManager) Clear(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   c.Domain,
		HttpOnly: true,
		Secure:   isRequestSecure(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
	})
}

// isRequestSecure reports whether the request arrived over HTTPS, directly
// or via a forwarding proxy.
func isRequestSecure(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	for _, proto := range strings.Split(r.Header.Get("X-Forwarded-Proto"), ",") {
		if strings.EqualFold(strings.TrimSpace(proto), "https") {
			return true
		}
	}
	return false
}

// cookieValue returns the named cookie's value, or "" when absent.
func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
