package httpx

import (
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ltm/adventcal/internal/service"
)

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Auth         AuthService
	Calendar     *service.CalendarService
	Impersonator *service.Impersonator
	// Pool backs the per-request transaction filter. Nil disables it, for
	// tests running against in-memory stores.
	Pool         *pgxpool.Pool
	AdminEmails  []string
	CookieDomain string
	Logger       *slog.Logger
}

// NewRouter builds the full handler: routed endpoints wrapped in the filter
// pipeline, then the CSRF, logging, and panic-recovery middlewares.
//
// Filter order is load-bearing. The transaction sits outside all
// translation filters so a forbidden/redirect/display outcome still commits
// writes performed earlier in the same request. The auth gate resolves
// identity before admin elevation and impersonation, which both depend on
// the resolved email. Display translation is innermost so a handler's
// inline error renders inside whatever identity context is in force.
func NewRouter(services RouterServices) (http.Handler, error) {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	renderer, err := NewTemplateRenderer(logger)
	if err != nil {
		return nil, err
	}
	cookies := &CookieManager{Domain: services.CookieDomain}

	base := []Filter{
		ErrorBoundary(logger),
	}
	if services.Pool != nil {
		base = append(base, Transaction(services.Pool, logger))
	}
	base = append(base,
		ForbiddenFilter(logger),
		RedirectFilter(),
	)

	// Ungated routes translate display errors without an identity.
	ungated := append(append([]Filter(nil), base...), DisplayErrorFilter(renderer, logger))

	gated := append(append([]Filter(nil), base...),
		AuthGate(services.Auth, cookies),
		AdminElevation(services.AdminEmails),
		ImpersonationFilter(services.Impersonator, services.Auth, cookies),
		DisplayErrorFilter(renderer, logger),
	)

	authHandlers := &AuthHandlers{Svc: services.Auth, Cookies: cookies, Logger: logger}
	impHandlers := &ImpersonationHandlers{
		Auth:         services.Auth,
		Impersonator: services.Impersonator,
		Cookies:      cookies,
		Logger:       logger,
	}
	calHandlers := &CalendarHandlers{Svc: services.Calendar, Renderer: renderer}

	mux := http.NewServeMux()
	mux.Handle("GET /{$}", route(calHandlers.Home, gated))
	mux.Handle("GET /days/{day}", route(calHandlers.Day, gated))
	mux.Handle("POST /days/{day}/open", route(calHandlers.OpenDay, gated))
	mux.Handle("GET /oauth/code", route(authHandlers.Callback, ungated))
	mux.Handle("GET /logout", route(authHandlers.Logout, ungated))
	mux.Handle("POST /impersonate", route(impHandlers.Start, gated))
	mux.Handle("POST /impersonate/stop", route(impHandlers.Stop, gated))
	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	var handler http.Handler = mux
	handler = CSRFProtection(services.CookieDomain)(handler)
	handler = Logging(logger)(handler)
	handler = Recover(logger)(handler)
	return handler, nil
}

// route composes the filter chain around h and adapts it to http.Handler.
// The error boundary is always outermost, so the returned error is nil by
// construction; the fallback 500 is for chains built without one.
func route(h Handler, filters []Filter) http.Handler {
	chained := Chain(h, filters...)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := chained(w, r); err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
	})
}
