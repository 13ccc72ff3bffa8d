package httpx

import (
	"context"

	domainauth "github.com/ltm/adventcal/internal/domain/auth"
)

// identityKey is an unexported context key type to avoid collisions across
// packages. Centralized here so all filters and handlers use the same key.
type identityKey struct{}

// WithIdentity returns a child context carrying the resolved request
// identity. The auth gate installs it; the admin-elevation and
// impersonation filters replace it with an updated copy.
func WithIdentity(ctx context.Context, identity domainauth.RequestIdentity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFrom returns the request identity from context and a boolean
// indicating presence. Handlers behind the auth gate can rely on presence.
func IdentityFrom(ctx context.Context) (domainauth.RequestIdentity, bool) {
	identity, ok := ctx.Value(identityKey{}).(domainauth.RequestIdentity)
	return identity, ok
}
