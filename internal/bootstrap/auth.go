package bootstrap

import (
	"fmt"

	"github.com/ltm/adventcal/config"
	"github.com/ltm/adventcal/internal/adapters/devauth"
	"github.com/ltm/adventcal/internal/adapters/oidc"
	"github.com/ltm/adventcal/internal/ports"
	"github.com/ltm/adventcal/internal/service"
)

// AuthDeps groups the dependencies for building the auth service.
type AuthDeps struct {
	Auth        config.AuthConfig
	RedirectURL string
	Sessions    ports.SessionStore
	Users       ports.UserStore
}

// BuildAuthService creates the auth service for the configured auth mode.
func BuildAuthService(deps AuthDeps) (*service.AuthService, error) {
	provider, err := buildIdentityProvider(deps)
	if err != nil {
		return nil, err
	}
	return service.NewAuthService(service.AuthServiceOptions{
		Provider:      provider,
		Sessions:      deps.Sessions,
		Users:         deps.Users,
		StateKey:      deps.Auth.SecretKey,
		AllowedEmails: deps.Auth.AllowedEmails,
	}), nil
}

func buildIdentityProvider(deps AuthDeps) (ports.IdentityProvider, error) {
	switch deps.Auth.Mode {
	case config.AuthModeMock:
		prov, err := devauth.NewProvider(devauth.Config{
			Subject: deps.Auth.DevAuth.Subject,
			Email:   deps.Auth.DevAuth.Email,
		})
		if err != nil {
			return nil, fmt.Errorf("build dev auth provider: %w", err)
		}
		return prov, nil

	case config.AuthModeOAuth:
		prov, err := oidc.NewProvider(oidc.ProviderConfig{
			ClientID:     deps.Auth.OAuth.ClientID,
			ClientSecret: deps.Auth.OAuth.ClientSecret,
			RedirectURL:  deps.RedirectURL,
			AuthURL:      deps.Auth.OAuth.AuthURL,
			TokenURL:     deps.Auth.OAuth.TokenURL,
			JWKSURL:      deps.Auth.OAuth.JWKSURL,
		})
		if err != nil {
			return nil, fmt.Errorf("build oauth provider: %w", err)
		}
		return prov, nil

	default:
		return nil, fmt.Errorf("unsupported auth mode: %q", deps.Auth.Mode)
	}
}
