// Package ports defines interfaces (hexagonal ports) for the auth core and
// its collaborators. Implementations live in internal/adapters and
// internal/data; orchestration in internal/service.
package ports

import (
	"context"
	"errors"

	domainauth "github.com/ltm/adventcal/internal/domain/auth"
)

// ErrInvalidAssertion is the single coarse outcome for any identity
// assertion verification failure. Callers must not learn which check failed.
var ErrInvalidAssertion = errors.New("invalid identity assertion")

// ErrSessionNotFound is returned when a session token resolves to nothing,
// either because it never existed or because it expired.
var ErrSessionNotFound = errors.New("session not found")

// ErrUserNotFound is returned when no user matches the lookup.
var ErrUserNotFound = errors.New("user not found")

// IdentityProvider drives the provider half of the authorization-code flow:
// building the authorization redirect and exchanging a code for a verified
// identity assertion.
type IdentityProvider interface {
	// AuthCodeURL returns the provider authorization endpoint URL carrying
	// the given state value.
	AuthCodeURL(state string) string

	// Exchange trades the authorization code for an identity assertion and
	// verifies it. Verification failures surface as ErrInvalidAssertion;
	// transport failures surface as-is and are not retried, since
	// authorization codes are single-use.
	Exchange(ctx context.Context, code string) (domainauth.Identity, error)
}

// SessionStore persists session-token → user-id with sliding expiry.
type SessionStore interface {
	// Create generates a fresh random token and persists the session.
	Create(ctx context.Context, userID string) (domainauth.Session, error)

	// Resolve sweeps expired sessions, then atomically extends the named
	// session's expiry and returns the owning user id. Returns
	// ErrSessionNotFound when the token is absent or expired.
	Resolve(ctx context.Context, token string) (string, error)

	// Delete removes the session. Idempotent; absent tokens are not an error.
	Delete(ctx context.Context, token string) error
}

// UserStore persists local user identity records.
type UserStore interface {
	// UpsertBySubject creates the user on first sign-in and returns the
	// existing record on every later call with the same subject.
	UpsertBySubject(ctx context.Context, subject, email string) (domainauth.User, error)

	// GetByEmail returns the user with the given email, or ErrUserNotFound.
	GetByEmail(ctx context.Context, email string) (domainauth.User, error)

	// GetByID returns the user with the given internal id, or ErrUserNotFound.
	GetByID(ctx context.Context, id string) (domainauth.User, error)
}
