package config

import "strings"

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// BaseURL is the externally visible base URL of the application, used
	// to construct the OAuth redirect URI.
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`

	// CookieDomain is the domain for auth cookies. Leave empty to use the
	// request domain.
	CookieDomain string `env:"APP_COOKIE_DOMAIN" envDefault:""`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	if h.Addr == "" {
		h.Addr = ":8080"
	}
	h.BaseURL = strings.TrimRight(h.BaseURL, "/")
	if h.BaseURL == "" {
		h.BaseURL = "http://localhost:8080"
	}
}

// RedirectURL returns the OAuth callback URL under the base URL.
func (h HTTPConfig) RedirectURL() string {
	return h.BaseURL + "/oauth/code"
}
