package httpx

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/ltm/adventcal/internal/cryptoutil"
)

const (
	// csrfCookieName is the double-submit cookie for form posts. Distinct
	// from the OAuth state cookie, which binds the login flow only.
	csrfCookieName   = "csrf_token"
	csrfHeaderName   = "X-Csrf-Token"
	csrfFieldName    = "csrf_token"
	csrfTokenLength  = 32
	csrfCookieMaxAge = 3600 * 12
)

// CSRFProtection protects state-changing routes with the double-submit
// cookie pattern. The token is issued in a cookie readable by the page and
// must come back in the X-Csrf-Token header (htmx) or the csrf_token form
// field. Safe methods pass through.
func CSRFProtection(cookieDomain string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := cookieValue(r, csrfCookieName)
			if token == "" {
				var err error
				token, err = cryptoutil.RandomToken(csrfTokenLength)
				if err != nil {
					http.Error(w, "unable to generate CSRF token", http.StatusInternalServerError)
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:   csrfCookieName,
					Value:  token,
					Path:   "/",
					Domain: cookieDomain,
					// Readable by the page so htmx can echo it back.
					HttpOnly: false,
					Secure:   isRequestSecure(r),
					SameSite: http.SameSiteStrictMode,
					MaxAge:   csrfCookieMaxAge,
				})
			}

			r = r.WithContext(withCSRFToken(r.Context(), token))

			if requiresCSRFValidation(r.Method) && !validCSRFToken(r, token) {
				http.Error(w, "CSRF token validation failed", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requiresCSRFValidation reports whether the method changes state. Safe
// methods (GET, HEAD, OPTIONS, TRACE) are exempt.
func requiresCSRFValidation(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return false
	default:
		return true
	}
}

// validCSRFToken compares the submitted token against the cookie value in
// constant time. The header wins over the form field when both are present.
func validCSRFToken(r *http.Request, cookieToken string) bool {
	if cookieToken == "" {
		return false
	}

	if headerToken := r.Header.Get(csrfHeaderName); headerToken != "" {
		return subtle.ConstantTimeCompare([]byte(headerToken), []byte(cookieToken)) == 1
	}

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/x-www-form-urlencoded") ||
		strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseForm(); err != nil {
			return false
		}
		if formToken := r.FormValue(csrfFieldName); formToken != "" {
			return subtle.ConstantTimeCompare([]byte(formToken), []byte(cookieToken)) == 1
		}
	}
	return false
}

// csrfTokenKey is an unexported context key type for CSRF token storage.
type csrfTokenKey struct{}

func withCSRFToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, csrfTokenKey{}, token)
}

// GetCSRFToken retrieves the CSRF token for template use, so forms and
// htmx requests can include it.
func GetCSRFToken(r *http.Request) string {
	if token, ok := r.Context().Value(csrfTokenKey{}).(string); ok {
		return token
	}
	return ""
}
