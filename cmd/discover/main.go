package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/listings-service/internal/adapter/chromedp_fetcher"
	"github.com/user/listings-service/internal/adapter/httpfetcher"
	"github.com/user/listings-service/internal/adapter/postgres"
	"github.com/user/listings-service/internal/entity"
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

	// --- Database Connection ---
	dbpool, err := pgxpool.New(ctx, cfg.PostgresDSN())
	if err != nil {
		slog.Error("Unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbpool.Close()
	slog.Info("PostgreSQL connection pool established")

	// --- Fetcher ---
	var fetcher repository.PageFetcher
	if cfg.FetchMode == "browser" {
		fetcher = chromedp_fetcher.NewChromedpFetcher(cfg.DiscoverWorkers, cfg.FetchTimeout)
	} else {
		fetcher = httpfetcher.NewHTTPFetcher(cfg.FetchTimeout)
	}
	slog.Info("Fetcher initialized", "mode", cfg.FetchMode)

	// --- Use Case ---
	var brackets []entity.PriceBracket
	for _, b := range cfg.Brackets() {
		brackets = append(brackets, entity.PriceBracket{Min: b[0], Max: b[1]})
	}
	if len(brackets) == 0 {
		slog.Error("No valid price brackets configured", "raw", cfg.PriceBrackets)
		os.Exit(1)
	}

	discoverer := usecase.NewDiscoverer(
		postgres.NewListingRepo(dbpool),
		fetcher,
		usecase.DiscoverConfig{
			SearchBaseURL: cfg.SearchBaseURL,
			Brackets:      brackets,
			MaxPages:      cfg.MaxPagesPerBracket,
			Workers:       cfg.DiscoverWorkers,
			RateLimit:     cfg.RateLimit,
		},
	)

	slog.Info("Starting discovery pass", "brackets", len(brackets), "workers", cfg.DiscoverWorkers)
	if err := discoverer.Run(ctx); err != nil {
		slog.Error("Discovery pass failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Discovery pass complete")
}
