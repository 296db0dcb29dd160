package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/spoutbreeze/internal/frontend/http"
	"github.com/aussiebroadwan/spoutbreeze/internal/frontend/service"
	"github.com/aussiebroadwan/spoutbreeze/pkg/authflow"
	"github.com/aussiebroadwan/spoutbreeze/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"

	serviceName = "spoutbreeze-web"
)

// Application is the web front-end with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	session             *Session
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router

	running bool
}

// New creates an Application over the credential context described by cfg.
func New(ctx context.Context, cfg Config) (*Application, error) {
	app := &Application{
		cfg:    cfg,
		logger: slogx.New(cfg.LogConfig(serviceName, BuildVersion)),
	}

	session, err := OpenSession(ctx, cfg, app.logger, authflow.WithNavigator(httpapi.Navigator))
	if err != nil {
		return nil, err
	}
	app.session = session
	app.logger.Info("session storage ready", "database", cfg.DatabaseFile, "auth_mode", cfg.AuthMode)

	app.housekeepingService = service.NewHousekeepingService(
		session.Store,
		app.logger,
		cfg.HousekeepingInterval,
		cfg.VerifierTTL,
	)

	app.initHTTP()
	return app, nil
}

// Handler exposes the router, mainly for tests.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.running = true
	app.housekeepingService.Start()

	app.logger.Info("web front-end starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			app.housekeepingService.Stop()
			_ = app.session.Close()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application. It also releases an
// application that was never run.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down web front-end...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if app.running {
		app.housekeepingService.Stop()
	}

	if err := app.session.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("web front-end stopped")
	return nil
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(app.session.Auth, app.session.API, BuildVersion, app.logger)
	router.PublicBaseURL = app.cfg.PublicBaseURL
	router.JoinLimit = app.cfg.JoinRateLimit
	router.Store = app.session.Store
	router.Tokens = app.session.AccessToken
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
