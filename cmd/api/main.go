// Copyright (c) 2026 Veribank. All rights reserved.
// Author: platform@veribank.io

// Command api is the entry point for the Veribank HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables (.env in development).
//  3. Initialize Sentry error monitoring (optional).
//  4. Connect to PostgreSQL (pgxpool).
//  5. Connect to Redis.
//  6. Run database migrations (idempotent).
//  7. Wire the credential codec, stores, and domain services.
//  8. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"

	"github.com/veribank/veribank/internal/api"
	"github.com/veribank/veribank/internal/auth"
	"github.com/veribank/veribank/internal/bank"
	"github.com/veribank/veribank/internal/platform/config"
	"github.com/veribank/veribank/internal/platform/constants"
	"github.com/veribank/veribank/internal/platform/migration"
	pgstore "github.com/veribank/veribank/internal/platform/postgres"
	redisstore "github.com/veribank/veribank/internal/platform/redis"
	"github.com/veribank/veribank/internal/platform/sec"
	"github.com/veribank/veribank/internal/users"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("[Veribank] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	// .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// ── 3. Error Monitoring ───────────────────────────────────────────────
	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Environment,
			Release:     constants.AppName + "@" + constants.AppVersion,
		})
		must(log, err, "initialize sentry")
		defer sentry.Flush(2 * time.Second)
	}

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 4. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 5. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 6. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 7. Credential Codec ───────────────────────────────────────────────
	codec, err := sec.NewCodec(cfg.SigningSecret, cfg.AuthIssuer, cfg.AuthAudience)
	must(log, err, "initialize credential codec")

	// ── 8. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 9. Domain Wiring ──────────────────────────────────────────────────
	userRepository := users.NewRepository(pool)
	tokenRepository := auth.NewTokenRepository(pool)
	resetTokenRepository := auth.NewResetTokenRepository(rdb)
	attemptGuard := auth.NewAttemptGuard(rdb, cfg.LoginLockoutWindow())
	tokenManager := auth.NewManager(codec, tokenRepository, cfg.AccessTokenTTL(), cfg.RefreshTokenTTL())

	authService := auth.NewService(
		userRepository,
		tokenRepository,
		resetTokenRepository,
		attemptGuard,
		tokenManager,
		codec,
		cfg.LoginLockoutThreshold,
		log,
	)
	authHandler := auth.NewHandler(authService)

	userService := users.NewService(userRepository, authService, log)
	userHandler := users.NewHandler(userService)

	bankRepository := bank.NewRepository(pool)
	bankService := bank.NewService(bankRepository, log)
	bankHandler := bank.NewHandler(bankService)

	// ── 10. HTTP Server ───────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      authHandler,
		Users:     userHandler,
		Bank:      bankHandler,
	}

	server := api.NewServer(context.Background(), cfg, log, authService, handlers)

	// ── 11. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
