package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/ltm/adventcal/config"
	"github.com/ltm/adventcal/internal/data"
	httpx "github.com/ltm/adventcal/internal/http"
	"github.com/ltm/adventcal/internal/service"
)

// ServeDeps groups everything the HTTP runtime needs.
type ServeDeps struct {
	Config config.AppConfig
	Pool   *pgxpool.Pool
	Logger *slog.Logger
}

// Serve builds the full application and runs the HTTP server until the
// context is canceled or a termination signal arrives, then shuts down
// gracefully.
func Serve(ctx context.Context, deps ServeDeps) error {
	logger := deps.Logger

	sessions := data.NewSessionRepo(deps.Pool)
	users := data.NewUserRepo(deps.Pool)
	calendar := data.NewCalendarRepo(deps.Pool)

	authSvc, err := BuildAuthService(AuthDeps{
		Auth:        deps.Config.Auth,
		RedirectURL: deps.Config.HTTP.RedirectURL(),
		Sessions:    sessions,
		Users:       users,
	})
	if err != nil {
		return err
	}

	handler, err := httpx.NewRouter(httpx.RouterServices{
		Auth:         authSvc,
		Calendar:     service.NewCalendarService(calendar),
		Impersonator: service.NewImpersonator(deps.Config.Auth.SecretKey),
		Pool:         deps.Pool,
		AdminEmails:  deps.Config.Auth.AdminEmails,
		CookieDomain: deps.Config.HTTP.CookieDomain,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:         deps.Config.HTTP.Addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting HTTP server", "addr", server.Addr, "auth_mode", string(deps.Config.Auth.Mode))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("HTTP server stopped")
	return nil
}
