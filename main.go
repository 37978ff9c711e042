// fixit/main.go
package main

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

	"github.com/AB-App-Dev/FixIt/auth"
	"github.com/AB-App-Dev/FixIt/config"
	"github.com/AB-App-Dev/FixIt/database"
	"github.com/AB-App-Dev/FixIt/handlers"
	"github.com/AB-App-Dev/FixIt/mail"
	"github.com/AB-App-Dev/FixIt/models"
	"github.com/AB-App-Dev/FixIt/stats"
	"github.com/AB-App-Dev/FixIt/utils"
)

type Application struct {
	db          *database.DatabaseService
	auth        *auth.Manager
	stats       *stats.Aggregator
	verifier    models.Verifier
	rateLimiter *models.RateLimiter
	storage     models.StorageService
	logger      *slog.Logger
	settings    *config.Settings
}

// Methods to satisfy the handlers.App interface
func (a *Application) DB() *database.DatabaseService    { return a.db }
func (a *Application) Auth() *auth.Manager              { return a.auth }
func (a *Application) Stats() *stats.Aggregator         { return a.stats }
func (a *Application) Verifier() models.Verifier        { return a.verifier }
func (a *Application) RateLimiter() *models.RateLimiter { return a.rateLimiter }
func (a *Application) Storage() models.StorageService   { return a.storage }
func (a *Application) Logger() *slog.Logger             { return a.logger }
func (a *Application) Settings() *config.Settings       { return a.settings }

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)
	return logger
}

// newApplication wires every service from settings. The caller owns the
// returned database handle.
func newApplication(ctx context.Context, settings *config.Settings, logger *slog.Logger) (*Application, error) {
	dbService, err := database.InitDB(settings.Database.Driver, settings.Database.DSN, logger)
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	storage, err := newStorage(ctx, settings, logger)
	if err != nil {
		dbService.Close()
		return nil, err
	}

	var sender mail.Sender = mail.NewLogSender(logger)
	if settings.Mail.ResendAPIKey != "" {
		sender = mail.NewResendSender(settings.Mail.ResendAPIKey, settings.Mail.From, logger)
		logger.Info("Resend mail delivery enabled", "from", settings.Mail.From)
	}

	app := &Application{
		db: dbService,
		auth: auth.NewManager(dbService, sender, auth.Options{
			BaseURL:    settings.App.BaseURL,
			Secure:     settings.IsProduction(),
			SessionKey: settings.Auth.SessionKey,
			BcryptCost: config.BcryptCost,
		}, logger),
		stats:       stats.NewAggregator(dbService),
		rateLimiter: models.NewRateLimiter(settings.RateLimit.Every, settings.RateLimit.Burst, settings.RateLimit.Prune, settings.RateLimit.Expire),
		storage:     storage,
		logger:      logger,
		settings:    settings,
	}

	if settings.Recaptcha.SecretKey != "" {
		app.verifier = models.NewRecaptchaVerifier(settings.Recaptcha.SecretKey, settings.Recaptcha.VerifyURL,
			config.RecaptchaMinScore, config.RecaptchaTimeout, logger)
	} else {
		logger.Warn("reCAPTCHA secret not configured, bot detection disabled")
	}
	if settings.Auth.SessionKey == "" {
		logger.Warn("auth.session_key not set, session cookies carry the raw admin id")
	}
	return app, nil
}

func newStorage(ctx context.Context, settings *config.Settings, logger *slog.Logger) (models.StorageService, error) {
	s3cfg := settings.Storage.S3
	if s3cfg.Enabled {
		store, err := utils.NewS3Storage(ctx, s3cfg.Endpoint, s3cfg.AccessKey, s3cfg.SecretKey, s3cfg.Bucket, s3cfg.Region, s3cfg.PublicURL, s3cfg.UseSSL)
		if err != nil {
			return nil, fmt.Errorf("initialize S3 storage: %w", err)
		}
		logger.Info("S3 Storage initialized", "endpoint", s3cfg.Endpoint, "bucket", s3cfg.Bucket)
		return store, nil
	}
	store, err := utils.NewLocalStorage(settings.Uploads.Dir)
	if err != nil {
		return nil, err
	}
	logger.Info("Local Storage initialized", "dir", settings.Uploads.Dir)
	return store, nil
}

// runServer serves HTTP until SIGINT or SIGTERM, then shuts down gracefully.
func runServer(settings *config.Settings, logger *slog.Logger) error {
	app, err := newApplication(context.Background(), settings, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.db.Close(); err != nil {
			logger.Error("Failed to close database", "error", err)
		}
	}()

	server := &http.Server{
		Addr:              ":" + settings.Server.Port,
		Handler:           handlers.SetupRouter(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	logger.Info("fixit server started successfully",
		"version", config.AppVersion,
		"address", "http://localhost:"+settings.Server.Port,
		"driver", settings.Database.Driver,
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed unexpectedly: %w", err)
	case <-quit:
	}

	logger.Info("Shutting down server...")

	timeout := settings.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("Server exiting")
	return nil
}
