// Package oidc integrates exactly one identity provider: Google's OAuth2
// authorization-code flow and ID token format. Endpoints default to the
// canonical Google ones and are each independently overridable.
package oidc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	domainauth "github.com/ltm/adventcal/internal/domain/auth"
	"github.com/ltm/adventcal/internal/ports"
)

const (
	// DefaultAuthURL is Google's authorization endpoint.
	DefaultAuthURL = "https://accounts.google.com/o/oauth2/v2/auth"
	// DefaultTokenURL is Google's token endpoint.
	DefaultTokenURL = "https://oauth2.googleapis.com/token"
	// DefaultJWKSURL is Google's public signing key endpoint.
	DefaultJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"
)

// DefaultIssuers are the canonical issuer strings Google uses in ID tokens.
func DefaultIssuers() []string {
	return []string{"https://accounts.google.com", "accounts.google.com"}
}

// issuedAtSkew is the tolerated clock skew on the iat claim.
const issuedAtSkew = 5 * time.Minute

// ProviderConfig holds configuration for the Google provider.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// Endpoint overrides; empty values fall back to the Google defaults.
	AuthURL  string
	TokenURL string
	JWKSURL  string
	Issuers  []string

	HTTPClient *http.Client // optional; timeouts on the exchange live here
}

// Provider implements ports.IdentityProvider against Google.
type Provider struct {
	config   *oauth2.Config
	verifier *gooidc.IDTokenVerifier
	issuers  map[string]bool
	now      func() time.Time
}

var _ ports.IdentityProvider = (*Provider)(nil)

// NewProvider creates a Google provider. The JWKS key set is fetched lazily
// and cached by go-oidc's remote key set.
func NewProvider(cfg ProviderConfig) (*Provider, error) {
	if cfg.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if cfg.ClientSecret == "" {
		return nil, errors.New("client secret is required")
	}
	if cfg.RedirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}

	authURL := cfg.AuthURL
	if authURL == "" {
		authURL = DefaultAuthURL
	}
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	jwksURL := cfg.JWKSURL
	if jwksURL == "" {
		jwksURL = DefaultJWKSURL
	}
	issuers := cfg.Issuers
	if len(issuers) == 0 {
		issuers = DefaultIssuers()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	keyCtx := gooidc.ClientContext(context.Background(), httpClient)
	keySet := gooidc.NewRemoteKeySet(keyCtx, jwksURL)

	issuerSet := make(map[string]bool, len(issuers))
	for _, iss := range issuers {
		issuerSet[iss] = true
	}

	return &Provider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email"},
			Endpoint:     oauth2.Endpoint{AuthURL: authURL, TokenURL: tokenURL},
		},
		// Issuer membership is checked against the full set below, so the
		// verifier's own single-issuer check is skipped.
		verifier: gooidc.NewVerifier(issuers[0], keySet, &gooidc.Config{
			ClientID:        cfg.ClientID,
			SkipIssuerCheck: true,
		}),
		issuers: issuerSet,
		now:     time.Now,
	}, nil
}

// AuthCodeURL returns the authorization endpoint URL carrying state.
func (p *Provider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state)
}

// Exchange trades the authorization code for tokens and verifies the ID
// token. Transport and non-2xx failures from the token endpoint are
// unrecoverable for the request; authorization codes are single-use, so
// there is no retry.
func (p *Provider) Exchange(ctx context.Context, code string) (domainauth.Identity, error) {
	if code == "" {
		return domainauth.Identity{}, errors.New("authorization code is required")
	}

	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("exchange authorization code: %w", err)
	}

	raw, ok := token.Extra("id_token").(string)
	if !ok || raw == "" {
		return domainauth.Identity{}, ports.ErrInvalidAssertion
	}

	return p.VerifyAssertion(ctx, raw)
}

// assertionClaims is the expected claim shape of a Google ID token beyond
// the registered claims go-oidc exposes directly.
type assertionClaims struct {
	Email string `json:"email"`
}

// VerifyAssertion validates a raw identity assertion: signature against a
// currently trusted key, issuer, audience, expiry, issued-at skew, and
// well-formed claims with a subject and email. Every failure collapses into
// ports.ErrInvalidAssertion; callers cannot distinguish why verification
// failed.
func (p *Provider) VerifyAssertion(ctx context.Context, raw string) (domainauth.Identity, error) {
	idToken, err := p.verifier.Verify(ctx, raw)
	if err != nil {
		return domainauth.Identity{}, ports.ErrInvalidAssertion
	}

	if !p.issuers[idToken.Issuer] {
		return domainauth.Identity{}, ports.ErrInvalidAssertion
	}
	if idToken.IssuedAt.After(p.now().Add(issuedAtSkew)) {
		return domainauth.Identity{}, ports.ErrInvalidAssertion
	}
	if idToken.Subject == "" {
		return domainauth.Identity{}, ports.ErrInvalidAssertion
	}

	var claims assertionClaims
	if err := idToken.Claims(&claims); err != nil || claims.Email == "" {
		return domainauth.Identity{}, ports.ErrInvalidAssertion
	}

	audience := ""
	if len(idToken.Audience) > 0 {
		audience = idToken.Audience[0]
	}

	return domainauth.Identity{
		Subject:   idToken.Subject,
		Email:     claims.Email,
		Issuer:    idToken.Issuer,
		Audience:  audience,
		IssuedAt:  idToken.IssuedAt,
		ExpiresAt: idToken.Expiry,
	}, nil
}
