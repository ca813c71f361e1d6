// Command server runs the AI Notes Summarizer HTTP API.
//
// @title        AI Notes Summarizer API
// @version      1.0.0
// @description  Summarizes meeting notes with an AI provider and stores, edits and shares the results.
// @BasePath     /api
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-notes-summarizer/internal/config"
	httpapi "github.com/tbourn/go-notes-summarizer/internal/http"
	"github.com/tbourn/go-notes-summarizer/internal/notify"
	"github.com/tbourn/go-notes-summarizer/internal/observability"
	"github.com/tbourn/go-notes-summarizer/internal/repo"
	"github.com/tbourn/go-notes-summarizer/internal/summarizer"
	"github.com/tbourn/go-notes-summarizer/internal/sysutil"
)

const (
	shutdownTimeout = 10 * time.Second
	purgeInterval   = time.Hour
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := config.MustLoad()
	gin.SetMode(cfg.GinMode)

	if err := run(cfg); err != nil {
		log.Error().Err(err).Msg("server exited")
		os.Exit(1)
	}
}

// run wires the server from cfg and blocks until a signal or a server error.
// Deferred cleanups always run before it returns.
func run(cfg config.Config) error {
	logger, logCloser := sysutil.SetupLogger(sysutil.LogOptions{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
		File:   cfg.LogFile,
	})
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, cfg.Version)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			logger.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := repo.Open(cfg)
	if err != nil {
		return fmt.Errorf("open %s database: %w", cfg.DBDriver, err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	provider, err := summarizer.NewProvider(cfg.AI)
	switch {
	case errors.Is(err, summarizer.ErrNotConfigured):
		logger.Warn().Str("provider", cfg.AI.Provider).Msg("no AI API key configured; serving fallback summaries")
		provider = nil
	case err != nil:
		return fmt.Errorf("ai provider setup: %w", err)
	default:
		logger.Info().Str("provider", provider.Name()).Msg("ai provider ready")
	}
	gateway := summarizer.NewGateway(provider, cfg.AI)

	sender := notify.New(cfg.Email)
	if !sender.Configured() {
		logger.Warn().Msg("email credentials not set; shared summaries are logged, not sent")
	}

	r := gin.New()
	httpapi.RegisterRoutes(r, db, gateway, sender, cfg)

	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
		BaseContext:       func(net.Listener) context.Context { return logger.WithContext(context.Background()) },
	}

	go purgeIdempotency(ctx, db, purgeInterval, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", srv.Addr).
			Str("version", cfg.Version).
			Str("api", cfg.APIBasePath).
			Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
	case serveErr = <-errCh:
		logger.Error().Err(serveErr).Msg("server failed")
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return serveErr
}

// purgeIdempotency drops expired Idempotency-Key records until ctx ends.
func purgeIdempotency(ctx context.Context, db *gorm.DB, every time.Duration, logger zerolog.Logger) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := repo.PurgeExpiredIdempotency(ctx, db, now.UTC())
			if err != nil {
				logger.Warn().Err(err).Msg("idempotency purge failed")
				continue
			}
			if n > 0 {
				logger.Debug().Int64("removed", n).Msg("idempotency purge")
			}
		}
	}
}
