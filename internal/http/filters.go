package httpx

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ltm/adventcal/internal/data/pgxutil"
	domainauth "github.com/ltm/adventcal/internal/domain/auth"
	apperrors "github.com/ltm/adventcal/internal/errors"
	"github.com/ltm/adventcal/internal/ports"
	"github.com/ltm/adventcal/internal/service"
)

// Handler is an error-returning HTTP handler. Control-flow outcomes
// (forbidden, redirect, display error) travel up the filter chain as typed
// errors; each translation filter either consumes its outcome or forwards
// the error outward.
type Handler func(w http.ResponseWriter, r *http.Request) error

// Filter wraps a Handler with one pipeline concern.
type Filter func(Handler) Handler

// Chain composes filters around h. The first filter listed is outermost.
func Chain(h Handler, filters ...Filter) Handler {
	for i := len(filters) - 1; i >= 0; i-- {
		h = filters[i](h)
	}
	return h
}

// ErrorBoundary is the last-resort safety net: any error still unclaimed by
// the translation filters is logged and answered with a generic 500. It
// never returns an error itself.
func ErrorBoundary(logger *slog.Logger) Filter {
	return func(next Handler) Handler {
		return func(w http.ResponseWriter, r *http.Request) error {
			ww := newStatusWriter(w)
			if err := next(ww, r); err != nil {
				logger.Error("request failed",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Any("error", err),
				)
				if !ww.wrote {
					http.Error(ww, "Internal Server Error", http.StatusInternalServerError)
				}
			}
			return nil
		}
	}
}

// Transaction opens one database transaction for the whole request. The
// translation filters run inside it and return nil after writing their
// response, so a forbidden/redirect/display outcome still commits any
// writes performed earlier in the request. Only an unrecoverable error
// rolls back.
func Transaction(pool *pgxpool.Pool, logger *slog.Logger) Filter {
	return func(next Handler) Handler {
		return func(w http.ResponseWriter, r *http.Request) error {
			ctx := r.Context()
			tx, err := pool.Begin(ctx)
			if err != nil {
				return fmt.Errorf("begin request tx: %w", err)
			}

			err = next(w, r.WithContext(pgxutil.WithTx(ctx, tx)))
			if err != nil {
				if rerr := tx.Rollback(ctx); rerr != nil && !errors.Is(rerr, pgx.ErrTxClosed) {
					logger.Error("request tx rollback failed", slog.Any("error", rerr))
				}
				return err
			}
			if err := tx.Commit(ctx); err != nil {
				return fmt.Errorf("commit request tx: %w", err)
			}
			return nil
		}
	}
}

// ForbiddenFilter maps a forbidden outcome to an opaque 403 with an empty
// body. The detail stays in the audit log and never reaches the client.
func ForbiddenFilter(logger *slog.Logger) Filter {
	return func(next Handler) Handler {
		return func(w http.ResponseWriter, r *http.Request) error {
			err := next(w, r)
			if err == nil || !apperrors.IsForbidden(err) {
				return err
			}
			logger.Warn("forbidden",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Any("reason", err),
			)
			w.WriteHeader(http.StatusForbidden)
			return nil
		}
	}
}

// RedirectFilter maps a redirect outcome to a full-page 302 or, for htmx
// requests, an Hx-Redirect instruction so the client navigates instead of
// swapping the response into the page.
func RedirectFilter() Filter {
	return func(next Handler) Handler {
		return func(w http.ResponseWriter, r *http.Request) error {
			err := next(w, r)
			if err == nil || !apperrors.IsRedirect(err) {
				return err
			}
			url := apperrors.RedirectURL(err)
			if url == "" {
				url = "/"
			}
			if IsHTMX(r) {
				SetHXRedirect(w, url)
				w.WriteHeader(http.StatusOK)
				return nil
			}
			http.Redirect(w, r, url, http.StatusFound)
			return nil
		}
	}
}

// DisplayErrorFilter maps a display outcome into an inline error fragment.
// These are user-correctable input errors, so the response is a 200 with
// targeted UI text rather than an HTTP error page.
func DisplayErrorFilter(renderer *TemplateRenderer, logger *slog.Logger) Filter {
	return func(next Handler) Handler {
		return func(w http.ResponseWriter, r *http.Request) error {
			err := next(w, r)
			if err == nil || !apperrors.IsDisplay(err) {
				return err
			}
			var appErr *apperrors.AppError
			message := "Something went wrong with your request."
			if errors.As(err, &appErr) && appErr.Message != "" {
				message = appErr.Message
			}
			if rerr := renderer.Render(w, "error-fragment", ErrorFragmentData{Message: message}); rerr != nil {
				logger.Error("render error fragment", slog.Any("error", rerr))
			}
			return nil
		}
	}
}

// AuthGate resolves the caller's user from the session cookie. An
// unauthenticated request starts a fresh authentication attempt: the CSRF
// token goes into a short-lived cookie and the request is redirected to the
// provider's authorization endpoint. Everything downstream of the gate sees
// a resolved identity in the request context.
func AuthGate(svc AuthService, cookies *CookieManager) Filter {
	return func(next Handler) Handler {
		return func(w http.ResponseWriter, r *http.Request) error {
			if token := cookieValue(r, SessionCookieName); token != "" {
				user, err := svc.Resolve(r.Context(), token)
				switch {
				case err == nil:
					// Resolution slid the server-side expiry forward to
					// now + TTL; re-issue the cookie so the browser copy
					// slides with it instead of dying at its login-time
					// Max-Age.
					cookies.Set(w, r, cookieParams{
						Name:     SessionCookieName,
						Value:    token,
						MaxAge:   domainauth.SessionTTL,
						SameSite: http.SameSiteLaxMode,
					})
					ctx := WithIdentity(r.Context(), domainauth.RequestIdentity{User: user})
					return next(w, r.WithContext(ctx))
				case errors.Is(err, ports.ErrSessionNotFound):
					cookies.Clear(w, r, SessionCookieName)
				default:
					return fmt.Errorf("resolve session: %w", err)
				}
			}

			begin, err := svc.BeginLogin(r.Context())
			if err != nil {
				return fmt.Errorf("begin login: %w", err)
			}
			cookies.Set(w, r, cookieParams{
				Name:     OAuthCSRFCookieName,
				Value:    begin.CSRFToken,
				MaxAge:   oauthCSRFCookieTTL,
				SameSite: http.SameSiteLaxMode,
			})
			return apperrors.RedirectTo(begin.AuthURL)
		}
	}
}

// AdminElevation marks the resolved user as admin when their email is on
// the admin allow-list. Recomputed on every request from configuration,
// never persisted, never cached across requests.
func AdminElevation(adminEmails []string) Filter {
	admins := service.NewEmailSet(adminEmails)
	return func(next Handler) Handler {
		return func(w http.ResponseWriter, r *http.Request) error {
			identity, ok := IdentityFrom(r.Context())
			if !ok {
				return next(w, r)
			}
			identity.User.IsAdmin = admins.Contains(identity.User.Email)
			return next(w, r.WithContext(WithIdentity(r.Context(), identity)))
		}
	}
}

// ImpersonationFilter substitutes an acting identity when a valid
// impersonation token is presented. The authenticated identity is never
// mutated. Every failure mode is uniform and fail-closed: drop the cookie
// and continue the request as the caller's own identity.
func ImpersonationFilter(imp *service.Impersonator, svc AuthService, cookies *CookieManager) Filter {
	return func(next Handler) Handler {
		return func(w http.ResponseWriter, r *http.Request) error {
			identity, ok := IdentityFrom(r.Context())
			if !ok {
				return next(w, r)
			}
			raw := cookieValue(r, ImpersonationCookieName)
			if raw == "" {
				return next(w, r)
			}

			drop := func() error {
				cookies.Clear(w, r, ImpersonationCookieName)
				return next(w, r)
			}

			// Admin status is recomputed per request; a demoted admin's
			// outstanding tokens die with the demotion.
			if !identity.User.IsAdmin {
				return drop()
			}
			tok, err := imp.Parse(raw)
			if err != nil {
				return drop()
			}
			if !imp.Verify(tok, identity.User.Email) {
				return drop()
			}
			acting, err := svc.LookupByEmail(r.Context(), tok.Claims.ImpersonatedEmail)
			if err != nil {
				if errors.Is(err, ports.ErrUserNotFound) {
					return drop()
				}
				return fmt.Errorf("resolve impersonated user: %w", err)
			}

			identity.Acting = &acting
			return next(w, r.WithContext(WithIdentity(r.Context(), identity)))
		}
	}
}
