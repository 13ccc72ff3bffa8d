// Package devauth provides a config-driven IdentityProvider for local
// development. It short-circuits the provider round trip: the authorization
// URL points straight back at our own callback, and Exchange returns the
// configured identity without any network call.
package devauth

import (
	"context"
	"errors"
	"net/url"
	"time"

	domainauth "github.com/ltm/adventcal/internal/domain/auth"
	"github.com/ltm/adventcal/internal/ports"
)

// Config controls the dev auth provider behavior.
type Config struct {
	Subject string
	Email   string
}

// Provider implements ports.IdentityProvider for local development.
type Provider struct {
	identity domainauth.Identity
}

var _ ports.IdentityProvider = (*Provider)(nil)

// NewProvider constructs a dev auth provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.Subject == "" {
		return nil, errors.New("dev auth: Subject is required")
	}
	if cfg.Email == "" {
		return nil, errors.New("dev auth: Email is required")
	}
	return &Provider{
		identity: domainauth.Identity{
			Subject: cfg.Subject,
			Email:   cfg.Email,
			Issuer:  "devauth",
		},
	}, nil
}

// AuthCodeURL points straight back at the local callback; the handler's
// usual state verification still applies.
func (p *Provider) AuthCodeURL(state string) string {
	return "/oauth/code?code=dev&state=" + url.QueryEscape(state)
}

// Exchange ignores the code and returns the configured identity.
func (p *Provider) Exchange(_ context.Context, _ string) (domainauth.Identity, error) {
	id := p.identity
	now := time.Now()
	id.IssuedAt = now
	id.ExpiresAt = now.Add(time.Hour)
	return id, nil
}
