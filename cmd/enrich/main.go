package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/user/listings-service/internal/adapter/httpfetcher"
	"github.com/user/listings-service/internal/adapter/postgres"
	redis_adapter "github.com/user/listings-service/internal/adapter/redis"
	"github.com/user/listings-service/internal/repository"
	"github.com/user/listings-service/internal/usecase"
	"github.com/user/listings-service/pkg/config"
	"github.com/user/listings-service/pkg/logger"
	"github.com/user/listings-service/pkg/metrics"
)

func main() {
	// --- Configuration ---
	cfg := config.Load()

	// --- Logger ---
	logger.Init(os.Stdout, logger.Level(cfg.LogLevel))

	// --- Metrics ---
	metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database Connections ---
	dbpool, err := pgxpool.New(ctx, cfg.PostgresDSN())
	if err != nil {
		slog.Error("Unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbpool.Close()
	slog.Info("PostgreSQL connection pool established")

	// Redis is optional here: without it delisted items are retried every
	// run instead of being skipped.
	var skip repository.SkipRepository
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		slog.Warn("Redis unavailable, delisted items will be retried", "error", err)
	} else {
		skip = redis_adapter.NewSkipRepo(rdb)
		slog.Info("Redis connection established")
	}

	// --- Use Case ---
	enricher := usecase.NewEnricher(
		postgres.NewListingRepo(dbpool),
		postgres.NewTagRepo(dbpool),
		skip,
		httpfetcher.NewHTTPFetcher(cfg.FetchTimeout),
		usecase.EnrichConfig{
			DetailBaseURL: cfg.DetailBaseURL,
			Workers:       cfg.EnrichWorkers,
			RateLimit:     cfg.RateLimit,
			GoneTTL:       cfg.GoneTTL,
		},
	)

	slog.Info("Starting enrichment pass", "workers", cfg.EnrichWorkers)
	if err := enricher.Run(ctx); err != nil {
		slog.Error("Enrichment pass failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Enrichment pass complete")
}
