package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/rentiva/walletsync/internal/api"
	"github.com/rentiva/walletsync/internal/config"
	"github.com/rentiva/walletsync/internal/infra"
	"github.com/rentiva/walletsync/internal/logging"
	"github.com/rentiva/walletsync/internal/metrics"
	"github.com/rentiva/walletsync/internal/notify"
	"github.com/rentiva/walletsync/internal/server"
	"github.com/rentiva/walletsync/internal/session"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)

	ctx := context.Background()

	cache, err := infra.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error("connect redis", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := cache.Close(); err != nil {
			logger.Warn("close redis", "error", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	storeMetrics := metrics.New(registry)

	backend := api.NewHTTPClient(cfg.APIBaseURL, cfg.APIToken, cfg.RequestTimeout, logger)
	notifier := notify.NewLoggerNotifier(logger)
	sessions := session.NewManager(backend, cache, notifier, storeMetrics, logger)

	if _, err := sessions.Login(ctx, cfg.UserID); err != nil {
		logger.Error("start wallet session", "error", err)
		os.Exit(1)
	}

	srv, err := server.New(cfg, sessions, cache, registry, logger)
	if err != nil {
		logger.Error("build server", "error", err)
		os.Exit(1)
	}

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.Listen()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-srvErrCh:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownPeriod)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	if err := sessions.Logout(); err != nil {
		logger.Warn("end wallet session", "error", err)
	}

	logger.Info("server exited cleanly")
}
