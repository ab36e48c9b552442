package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/user/listings-service/internal/adapter/exchangerate"
	"github.com/user/listings-service/internal/adapter/postgres"
	redis_adapter "github.com/user/listings-service/internal/adapter/redis"
	"github.com/user/listings-service/internal/delivery/http/handler"
	"github.com/user/listings-service/internal/delivery/http/router"
	"github.com/user/listings-service/internal/rates"
	"github.com/user/listings-service/internal/repository"
	"github.com/user/listings-service/internal/usecase"
	"github.com/user/listings-service/pkg/config"
	"github.com/user/listings-service/pkg/logger"
	"github.com/user/listings-service/pkg/metrics"
)

const ratesRefreshInterval = time.Hour

func main() {
	// --- Configuration ---
	cfg := config.Load()

	// --- Logger ---
	logger.Init(os.Stdout, logger.Level(cfg.LogLevel))
	slog.Info("Logger initialized", "level", cfg.LogLevel)

	// --- Metrics ---
	metrics.Init()
	slog.Info("Metrics initialized")

	// --- Database Connections ---
	ctx := context.Background()

	dbpool, err := pgxpool.New(ctx, cfg.PostgresDSN())
	if err != nil {
		slog.Error("Unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbpool.Close()
	slog.Info("PostgreSQL connection pool established")

	// Redis is optional here: without it the filter-options tree is
	// recomputed on every request.
	var cache repository.CacheRepository
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		slog.Warn("Redis unavailable, filter-options caching disabled", "error", err)
	} else {
		cache = redis_adapter.NewCacheRepo(rdb)
		slog.Info("Redis connection established")
	}

	// --- Conversion Rates ---
	table := rates.New(exchangerate.NewClient(cfg.RatesURL, cfg.FetchTimeout))
	if err := table.Refresh(ctx); err != nil {
		slog.Warn("Initial rates refresh failed, using defaults", "error", err)
	}
	go func() {
		ticker := time.NewTicker(ratesRefreshInterval)
		defer ticker.Stop()
		for range ticker.C {
			if err := table.Refresh(context.Background()); err != nil {
				slog.Warn("Rates refresh failed, keeping previous table", "error", err)
			}
		}
	}()

	// --- Use Case ---
	query := usecase.NewQuery(
		postgres.NewListingRepo(dbpool),
		postgres.NewTagRepo(dbpool),
		cache,
		table,
	)

	// --- HTTP Server ---
	apiHandler := handler.NewHandler(query)
	httpRouter := router.New(apiHandler)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      httpRouter,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	slog.Info("Starting server", "port", cfg.ServerPort)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("Could not listen on port", "port", cfg.ServerPort, "error", err)
		os.Exit(1)
	}
}
