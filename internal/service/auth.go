package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/ltm/adventcal/internal/cryptoutil"
	domainauth "github.com/ltm/adventcal/internal/domain/auth"
	apperrors "github.com/ltm/adventcal/internal/errors"
	"github.com/ltm/adventcal/internal/ports"
)

// csrfTokenBytes is the entropy behind the CSRF token round-tripped through
// the provider as the state parameter's preimage.
const csrfTokenBytes = 32

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Provider ports.IdentityProvider
	Sessions ports.SessionStore
	Users    ports.UserStore
	// StateKey signs the OAuth state value binding it to the CSRF cookie.
	StateKey []byte
	// AllowedEmails is the allow-list of emails permitted to authenticate.
	AllowedEmails []string
}

// AuthService orchestrates the authorization-code flow: CSRF/state binding,
// code exchange, assertion verification, allow-list enforcement, user
// upsert, and session establishment.
type AuthService struct {
	provider ports.IdentityProvider
	sessions ports.SessionStore
	users    ports.UserStore
	stateKey []byte
	allowed  EmailSet
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	return &AuthService{
		provider: opts.Provider,
		sessions: opts.Sessions,
		users:    opts.Users,
		stateKey: append([]byte(nil), opts.StateKey...),
		allowed:  NewEmailSet(opts.AllowedEmails),
	}
}

// BeginLoginResult contains the values needed to start an authentication
// attempt: the CSRF token for the browser cookie, its HMAC digest carried as
// the OAuth state, and the provider authorization URL.
type BeginLoginResult struct {
	CSRFToken string
	State     string
	AuthURL   string
}

// BeginLogin generates a fresh CSRF token, derives the state value from it,
// and builds the provider authorization URL.
func (s *AuthService) BeginLogin(_ context.Context) (*BeginLoginResult, error) {
	csrfToken, err := cryptoutil.RandomToken(csrfTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("generate csrf token: %w", err)
	}
	state := s.stateFor(csrfToken)
	return &BeginLoginResult{
		CSRFToken: csrfToken,
		State:     state,
		AuthURL:   s.provider.AuthCodeURL(state),
	}, nil
}

// stateFor derives the state value: the HMAC digest of the CSRF token under
// the server key.
func (s *AuthService) stateFor(csrfToken string) string {
	return base64.RawURLEncoding.EncodeToString(cryptoutil.Sign([]byte(csrfToken), s.stateKey))
}

// VerifyState reports whether state is the digest of csrfToken. Comparison
// runs over raw bytes in constant time.
func (s *AuthService) VerifyState(csrfToken, state string) bool {
	if csrfToken == "" || state == "" {
		return false
	}
	sig, err := base64.RawURLEncoding.DecodeString(state)
	if err != nil {
		return false
	}
	return cryptoutil.Verify([]byte(csrfToken), sig, s.stateKey)
}

// CompleteLoginInput groups the callback parameters.
type CompleteLoginInput struct {
	Code      string
	State     string
	CSRFToken string
}

// CompleteLoginResult is a successfully established login.
type CompleteLoginResult struct {
	User    domainauth.User
	Session domainauth.Session
}

// CompleteLogin finishes an authentication attempt. The state must match the
// CSRF token, the exchanged assertion must verify, and the asserted email
// must be on the allow-list — all before any user row is written.
func (s *AuthService) CompleteLogin(ctx context.Context, in CompleteLoginInput) (*CompleteLoginResult, error) {
	if in.Code == "" {
		return nil, apperrors.Forbidden("callback missing authorization code")
	}
	if !s.VerifyState(in.CSRFToken, in.State) {
		return nil, apperrors.Forbidden("state does not match csrf token")
	}

	identity, err := s.provider.Exchange(ctx, in.Code)
	if err != nil {
		if errors.Is(err, ports.ErrInvalidAssertion) {
			return nil, apperrors.Forbidden("identity assertion rejected")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "token exchange failed")
	}

	email := strings.ToLower(identity.Email)
	if !s.allowed.Contains(email) {
		return nil, apperrors.Forbiddenf("email not on allow-list: %s", email)
	}

	user, err := s.users.UpsertBySubject(ctx, identity.Subject, email)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}

	session, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &CompleteLoginResult{User: user, Session: session}, nil
}

// Resolve maps a session token to its user, sliding the session expiry
// forward. Returns ports.ErrSessionNotFound when the token is absent,
// expired, or orphaned.
func (s *AuthService) Resolve(ctx context.Context, token string) (domainauth.User, error) {
	userID, err := s.sessions.Resolve(ctx, token)
	if err != nil {
		if errors.Is(err, ports.ErrSessionNotFound) {
			return domainauth.User{}, ports.ErrSessionNotFound
		}
		return domainauth.User{}, fmt.Errorf("resolve session: %w", err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ports.ErrUserNotFound) {
			return domainauth.User{}, ports.ErrSessionNotFound
		}
		return domainauth.User{}, fmt.Errorf("load session user: %w", err)
	}
	return user, nil
}

// Logout deletes the session. Absent tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// LookupByEmail finds a user by email, used by the impersonation handlers.
func (s *AuthService) LookupByEmail(ctx context.Context, email string) (domainauth.User, error) {
	return s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}
