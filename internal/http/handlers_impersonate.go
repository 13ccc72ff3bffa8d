package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	apperrors "github.com/ltm/adventcal/internal/errors"
	"github.com/ltm/adventcal/internal/ports"
	"github.com/ltm/adventcal/internal/service"
)

// ImpersonationHandlers provides the impersonation start/stop endpoints.
// Both sit behind the auth gate; Start additionally requires admin.
type ImpersonationHandlers struct {
	Auth         AuthService
	Impersonator *service.Impersonator
	Cookies      *CookieManager
	Logger       *slog.Logger
}

// Start issues an impersonation capability token for the requested email.
// POST /impersonate, form field "email".
func (h *ImpersonationHandlers) Start(w http.ResponseWriter, r *http.Request) error {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		return apperrors.Forbidden("impersonation without identity")
	}
	if !identity.User.IsAdmin {
		return apperrors.Forbidden("impersonation requires admin")
	}

	if err := r.ParseForm(); err != nil {
		return apperrors.Display("Could not read the form submission.")
	}
	email := strings.TrimSpace(r.FormValue("email"))
	if email == "" {
		return apperrors.Display("Enter an email address to impersonate.")
	}

	target, err := h.Auth.LookupByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, ports.ErrUserNotFound) {
			return apperrors.Displayf("No user with email %s has signed in yet.", strings.ToLower(email))
		}
		return err
	}

	token, err := h.Impersonator.Sign(identity.User.Email, target.Email)
	if err != nil {
		return err
	}
	h.Cookies.Set(w, r, cookieParams{
		Name:     ImpersonationCookieName,
		Value:    token,
		MaxAge:   impersonationCookieTTL,
		SameSite: http.SameSiteStrictMode,
	})

	h.Logger.Info("impersonation started",
		slog.String("impersonator", identity.User.Email),
		slog.String("impersonated", target.Email),
	)
	return apperrors.RedirectTo("/")
}

// Stop drops the impersonation cookie, restoring the caller's own identity
// on the next request.
// POST /impersonate/stop.
func (h *ImpersonationHandlers) Stop(w http.ResponseWriter, r *http.Request) error {
	if identity, ok := IdentityFrom(r.Context()); ok && identity.Impersonating() {
		h.Logger.Info("impersonation stopped",
			slog.String("impersonator", identity.User.Email),
		)
	}
	h.Cookies.Clear(w, r, ImpersonationCookieName)
	return apperrors.RedirectTo("/")
}
