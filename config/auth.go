package config

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// AuthMode selects the identity provider implementation.
type AuthMode string

const (
	// AuthModeOAuth uses the real OAuth/OIDC provider.
	AuthModeOAuth AuthMode = "oauth"
	// AuthModeMock uses a local development identity (no network).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "oauth", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oauth, mock)", v)
	}
}

// SecretKey is binary key material supplied as base64 in the environment.
type SecretKey []byte

// UnmarshalText decodes the base64 value. Both standard and URL-safe
// alphabets are accepted, padded or not.
func (k *SecretKey) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding, base64.RawStdEncoding,
		base64.URLEncoding, base64.RawURLEncoding,
	} {
		if b, err := enc.DecodeString(s); err == nil {
			*k = b
			return nil
		}
	}
	return fmt.Errorf("secret key is not valid base64")
}

// OAuthConfig contains the OAuth/OIDC provider configuration. The endpoint
// URLs are each independently overridable and default to the canonical
// Google endpoints when empty.
type OAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	AuthURL      string `env:"AUTH_URL"`
	TokenURL     string `env:"TOKEN_URL"`
	JWKSURL      string `env:"JWKS_URL"`
}

// DevAuthConfig controls the mock identity used when Mode=mock.
type DevAuthConfig struct {
	Subject string `env:"SUBJECT" envDefault:"dev-subject"`
	Email   string `env:"EMAIL"   envDefault:"dev@example.com"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which identity provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"oauth"`

	// OAuth configuration (used when Mode=oauth).
	OAuth OAuthConfig `envPrefix:"OAUTH_"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// AllowedEmails is the allow-list of emails permitted to sign in.
	AllowedEmails []string `env:"ALLOWED_EMAILS" envSeparator:","`

	// AdminEmails is the allow-list of admin emails, recomputed per request.
	AdminEmails []string `env:"ADMIN_EMAILS" envSeparator:","`

	// SecretKey signs OAuth state values and impersonation tokens. Supplied
	// externally as base64-encoded binary.
	SecretKey SecretKey `env:"SECRET_KEY,required"`
}
