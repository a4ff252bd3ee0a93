package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"campusbot/config"
	_ "campusbot/docs"
	"campusbot/internal/adapters/auth"
	"campusbot/internal/adapters/chat"
	"campusbot/internal/adapters/email"
	deliveryhttp "campusbot/internal/delivery/http"
	"campusbot/internal/delivery/http/controllers"
	"campusbot/internal/delivery/http/middleware"
	"campusbot/internal/domain"
	"campusbot/internal/maintenance"
	"campusbot/internal/repository/postgres"
	"campusbot/internal/services"
)

// @title CampusBot API
// @version 1.0
// @description Backend API for the CampusBot community management service.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := config.NewLogger()

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db, logger); err != nil {
		return err
	}

	// Repositories
	settingsRepo := postgres.NewSettingsRepository(db)
	pendingRepo := postgres.NewPendingVerificationRepository(db)
	verifiedRepo := postgres.NewVerifiedUserRepository(db)
	quoteRepo := postgres.NewQuoteRepository(db)
	dueDateRepo := postgres.NewDueDateRepository(db)

	// Adapters
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:             cfg.AWSRegion,
			AccessKeyID:        cfg.AWSAccessKeyID,
			SecretAccessKey:    cfg.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.AWSInsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		return fmt.Errorf("create mailer: %w", err)
	}

	var roleGranter domain.RoleGranter
	if cfg.GatewayBaseURL != "" {
		roleGranter = chat.NewGatewayRoleGranter(&http.Client{Timeout: 10 * time.Second}, cfg.GatewayBaseURL, cfg.GatewayToken)
	} else {
		roleGranter = chat.NewNoopRoleGranter(logger)
	}

	tokens := auth.NewJWTTokens(cfg.JWTSecret)

	// Services
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)
	settingsService := services.NewSettingsService(settingsRepo)
	verificationService := services.NewVerificationService(settingsRepo, pendingRepo, verifiedRepo, emailService, roleGranter, nil, logger)
	quoteService := services.NewQuoteService(quoteRepo, settingsRepo)
	dueDateService := services.NewDueDateService(dueDateRepo, settingsRepo)

	// Background expiry sweep for stale pending verifications.
	sweeper := maintenance.NewSweeper(pendingRepo, logger,
		maintenance.WithSchedule(cfg.SweepSchedule),
		maintenance.WithMaxAge(cfg.PendingMaxAge),
	)
	if err := sweeper.Start(); err != nil {
		return fmt.Errorf("start sweeper: %w", err)
	}
	defer sweeper.Stop()

	// HTTP
	mux := deliveryhttp.NewRouter(
		tokens,
		controllers.NewAuthController(logger, tokens, cfg.ServiceSecret),
		controllers.NewVerificationController(logger, verificationService),
		controllers.NewSettingsController(logger, settingsService),
		controllers.NewQuoteController(logger, quoteService),
		controllers.NewDueDateController(logger, dueDateService),
	)

	var handler http.Handler = mux
	handler = middleware.LoggingMiddleware(logger, handler)
	if len(cfg.CORSAllowedOrigins) > 0 {
		handler = middleware.CORS(cfg.CORSAllowedOrigins, handler)
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func runMigrations(db *sql.DB, logger *slog.Logger) error {
	driver, err := migratepostgres.WithInstance(db, &migratepostgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}
	migrator, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	err = migrator.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to apply")
	} else {
		logger.Info("migrations applied")
	}
	return nil
}
