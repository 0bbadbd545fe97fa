package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventsales/backend/internal/config"
	"eventsales/backend/internal/db"
	"eventsales/backend/internal/http/handlers"
	"eventsales/backend/internal/http/middleware"
	"eventsales/backend/internal/integrations"
	"eventsales/backend/internal/logging"
	"eventsales/backend/internal/permission"
	"eventsales/backend/internal/rate"
	"eventsales/backend/internal/repository"
	"eventsales/backend/internal/sales"
	"eventsales/backend/migrations"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, cleanup, err := logging.New(cfg.Logging, "api")
	if err != nil {
		log.Fatalf("log error: %v", err)
	}
	defer func() {
		_ = cleanup()
	}()
	slog.SetDefault(logger)

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("db error", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.MigrateOnStart {
		if err := migrations.Apply(ctx, pool); err != nil {
			logger.Error("migrate error", "error", err)
			os.Exit(1)
		}
		logger.Info("migrations_applied")
	}

	repo := repository.New(pool)
	checker := permission.NewChecker(repo)
	reporter := sales.NewReporter(repo, logger)

	var objects sales.ObjectStore
	if cfg.S3.Bucket != "" {
		s3Client, err := integrations.NewS3(cfg.S3)
		if err != nil {
			logger.Error("s3 error", "error", err)
			os.Exit(1)
		}
		objects = s3Client
	}
	exporter := sales.NewExporter(reporter, repo, objects)

	var cache *middleware.ResponseCache
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("redis error", "error", err)
			os.Exit(1)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err = rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Error("redis error", "error", err)
			os.Exit(1)
		}
		cache = middleware.NewResponseCache(rdb, "cache:video-channels", cfg.CacheTTL, logger)
	}

	limiter := rate.NewKeyedLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, 10*time.Minute)
	h := handlers.New(repo, checker, reporter, exporter, cache, cfg, logger)

	r := newRouter(h, checker, limiter, cache, cfg.JWTSecret, logger)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	go func() {
		logger.Info("api_listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutdown", "service", "api")
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
}
