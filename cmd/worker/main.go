package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventsales/backend/internal/config"
	"eventsales/backend/internal/db"
	"eventsales/backend/internal/logging"
	"eventsales/backend/internal/repository"
	"eventsales/backend/internal/sales"
)

const refreshBatchSize = 200

type refresher interface {
	RefreshAll(ctx context.Context, batchSize int) (int, error)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, cleanup, err := logging.New(cfg.Logging, "worker")
	if err != nil {
		log.Fatalf("log error: %v", err)
	}
	defer func() {
		_ = cleanup()
	}()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("db error", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	reporter := sales.NewReporter(repository.New(pool), logger)

	logger.Info("worker_started", "interval", cfg.SalesRefreshInterval.String())
	runRefreshLoop(ctx, reporter, cfg.SalesRefreshInterval, logger)
	logger.Info("shutdown", "service", "worker")
}

// runRefreshLoop refreshes every event right away and then once per
// interval until ctx is done.
func runRefreshLoop(ctx context.Context, r refresher, interval time.Duration, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		start := time.Now()
		n, err := r.RefreshAll(ctx, refreshBatchSize)
		if err != nil && ctx.Err() == nil {
			logger.Error("refresh_failed", "error", err, "events", n)
		} else if err == nil {
			logger.Info("refresh_done", "events", n, "duration_ms", time.Since(start).Milliseconds())
		}

		if ctx.Err() != nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
