package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	domainauth "github.com/ltm/adventcal/internal/domain/auth"
	apperrors "github.com/ltm/adventcal/internal/errors"
	"github.com/ltm/adventcal/internal/service"
)

// AuthService defines the auth operations the HTTP layer depends on.
type AuthService interface {
	BeginLogin(ctx context.Context) (*service.BeginLoginResult, error)
	CompleteLogin(ctx context.Context, in service.CompleteLoginInput) (*service.CompleteLoginResult, error)
	Resolve(ctx context.Context, token string) (domainauth.User, error)
	Logout(ctx context.Context, token string) error
	LookupByEmail(ctx context.Context, email string) (domainauth.User, error)
}

// AuthHandlers provides HTTP handlers for the authentication flow.
type AuthHandlers struct {
	Svc     AuthService
	Cookies *CookieManager
	Logger  *slog.Logger
}

// Callback finishes an authentication attempt.
// GET /oauth/code?code=<code>&state=<state>.
func (h *AuthHandlers) Callback(w http.ResponseWriter, r *http.Request) error {
	csrfToken := cookieValue(r, OAuthCSRFCookieName)
	if csrfToken == "" {
		return apperrors.Forbidden("callback without csrf cookie")
	}

	result, err := h.Svc.CompleteLogin(r.Context(), service.CompleteLoginInput{
		Code:      r.URL.Query().Get("code"),
		State:     r.URL.Query().Get("state"),
		CSRFToken: csrfToken,
	})
	if err != nil {
		return err
	}

	// Any session the browser already held is replaced, not stacked.
	if old := cookieValue(r, SessionCookieName); old != "" && old != result.Session.Token {
		if lerr := h.Svc.Logout(r.Context(), old); lerr != nil {
			h.Logger.Warn("invalidate superseded session", slog.Any("error", lerr))
		}
	}

	h.Cookies.Set(w, r, cookieParams{
		Name:     SessionCookieName,
		Value:    result.Session.Token,
		MaxAge:   time.Until(result.Session.ExpiresAt),
		SameSite: http.SameSiteLaxMode,
	})
	// The csrf cookie is single-use.
	h.Cookies.Clear(w, r, OAuthCSRFCookieName)

	h.Logger.Info("login completed", slog.String("email", result.User.Email))

	// Post-login destination is always the root; deep-link return is a
	// deliberate non-goal.
	return apperrors.RedirectTo("/")
}

// Logout deletes the session and clears impersonation state.
// GET /logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) error {
	if token := cookieValue(r, SessionCookieName); token != "" {
		if err := h.Svc.Logout(r.Context(), token); err != nil {
			h.Logger.Warn("logout failed", slog.Any("error", err))
		}
	}
	h.Cookies.Clear(w, r, SessionCookieName)
	h.Cookies.Clear(w, r, ImpersonationCookieName)
	return apperrors.RedirectTo("/")
}
