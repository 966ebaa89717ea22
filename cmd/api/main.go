package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/clinicflow/internal/api/router"
	"github.com/wolfman30/clinicflow/internal/board"
	appconfig "github.com/wolfman30/clinicflow/internal/config"
	"github.com/wolfman30/clinicflow/internal/healthcare"
	"github.com/wolfman30/clinicflow/internal/observability/metrics"
	"github.com/wolfman30/clinicflow/internal/queue"
	"github.com/wolfman30/clinicflow/internal/session"
	"github.com/wolfman30/clinicflow/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel, cfg.Env)
	logger.Info("starting clinicflow queue gateway",
		"env", cfg.Env,
		"port", cfg.Port,
		"backend", cfg.BackendBaseURL,
	)

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		redisClient = redis.NewClient(opts)
	}
	tokens := session.NewTokenStore(redisClient, cfg.BackendToken)

	backend := healthcare.NewClient(cfg.BackendBaseURL, tokens, cfg.BackendTimeout, logger)
	queueMetrics := metrics.NewQueueMetrics(nil)
	store := queue.NewStore(backend, logger, queueMetrics)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initial snapshot; a failure here is not fatal, the poller catches up.
	if err := store.Refresh(ctx, false); err != nil {
		logger.Warn("initial queue refresh failed", "error", err)
	}

	poller, err := queue.NewPoller(queue.PollerConfig{Store: store, Interval: cfg.PollInterval})
	if err != nil {
		logger.Error("failed to create poller", "error", err)
		os.Exit(1)
	}
	go poller.Start(ctx)

	hub := board.NewHub(logger)
	go hub.Run(ctx, store)

	boardHandler := board.NewHandler(store, backend, hub, logger)

	r := router.New(&router.Config{
		Logger:             logger,
		BoardHandler:       boardHandler,
		BoardAuthSecret:    cfg.BoardJWTSecret,
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Stop the poller and websocket hub before draining connections.
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
