package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/teamlinkhq/teamlink/internal/invites/http"
	"github.com/teamlinkhq/teamlink/internal/invites/service"
	"github.com/teamlinkhq/teamlink/internal/invites/store"
	"github.com/teamlinkhq/teamlink/internal/invites/store/drivers/sqlite"
	"github.com/teamlinkhq/teamlink/pkg/cryptox"
	"github.com/teamlinkhq/teamlink/pkg/jwtx"
	"github.com/teamlinkhq/teamlink/pkg/mailx"
	"github.com/teamlinkhq/teamlink/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the invitation service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db       store.Store
	verifier jwtx.Verifier
	sender   mailx.Sender
	notifier *service.Notifier

	inviteService       *service.InviteService
	redeemService       *service.RedeemService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "invites-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if len(cfg.JWTSecret) < 32 {
		return nil, errors.New("INVITES_JWT_SECRET must be set and at least 32 bytes")
	}
	app.verifier = jwtx.NewVerifierHS256([]byte(cfg.JWTSecret), cfg.Issuer)

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initMail(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("invitation service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
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

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down invitation service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	// Let in-flight invitation emails drain before the process exits.
	app.notifier.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("invitation service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations.
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initMail selects the outbound email sender. Without SMTP settings the
// pipeline still runs end to end; mail is just dropped.
func (app *Application) initMail() error {
	if app.cfg.SMTPHost == "" {
		app.logger.Warn("SMTP not configured, invitation emails will be discarded")
		app.sender = mailx.NopSender{}
		return nil
	}

	sender, err := mailx.NewSMTPSender(mailx.SMTPConfig{
		Host:     app.cfg.SMTPHost,
		Port:     app.cfg.SMTPPort,
		Username: app.cfg.SMTPUsername,
		Password: app.cfg.SMTPPassword,
		From:     app.cfg.SMTPFrom,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize SMTP sender: %w", err)
	}
	app.sender = sender
	return nil
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.notifier = &service.Notifier{
		Sender: app.sender,
		Origin: app.cfg.AppOrigin,
		Logger: app.logger,
	}

	app.inviteService = &service.InviteService{
		Store:           app.db,
		Notifier:        app.notifier,
		RateLimitMax:    app.cfg.InviteRateLimitMax,
		RateLimitWindow: app.cfg.InviteRateLimitWindow,
	}
	app.redeemService = &service.RedeemService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.verifier,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.InviteService = app.inviteService
	router.RedeemService = app.redeemService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
