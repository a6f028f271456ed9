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

	"github.com/monocle-dev/timetrack/db"
	"github.com/monocle-dev/timetrack/internal/auth"
	"github.com/monocle-dev/timetrack/internal/config"
	"github.com/monocle-dev/timetrack/internal/logger"
	"github.com/monocle-dev/timetrack/internal/observability/tracing"
	"github.com/monocle-dev/timetrack/internal/router"
	"github.com/monocle-dev/timetrack/internal/serializers"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.NewLogger(cfg.LogLevel)
	slog.SetDefault(log)

	ctx := context.Background()

	shutdownTracer, err := tracing.Init(ctx, log, "timetrack", cfg.Environment)
	if err != nil {
		return fmt.Errorf("failed to init tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Warn("tracer shutdown failed", slog.Any("error", err))
		}
	}()

	if err := db.ConnectDatabase(ctx, cfg); err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}
	if err := db.MigrateDatabase(db.DB, cfg.DatabaseDriver); err != nil {
		return err
	}

	if err := auth.Init(auth.Options{
		Secret:     cfg.JWTSecret,
		Issuer:     cfg.JWTIssuer,
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	}); err != nil {
		return err
	}

	if cfg.RedisURL != "" {
		revoker, err := auth.NewRedisRevoker(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to connect redis: %w", err)
		}
		defer revoker.Close()
		auth.SetRevoker(revoker)
		log.Info("token blacklist backed by redis")
	}

	serializers.DefaultCurrency = cfg.DefaultCurrency

	r, limiters := router.NewRouter(cfg, log)
	defer limiters.Stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           tracing.Wrap(r, "timetrack"),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server starting", slog.Int("port", cfg.Port), slog.String("environment", cfg.Environment))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-sigChan:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info("server stopped")
	return nil
}
