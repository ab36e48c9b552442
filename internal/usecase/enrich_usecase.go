package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/user/listings-service/internal/parse"
	"github.com/user/listings-service/internal/repository"
	"github.com/user/listings-service/pkg/metrics"
	"github.com/user/listings-service/pkg/pool"
)

// Enricher defines the interface for the detail-enrichment fetcher: one
// pass that drains the current resume set.
type Enricher interface {
	Run(ctx context.Context) error
}

// EnrichConfig carries the run parameters of an enrichment pass.
type EnrichConfig struct {
	DetailBaseURL string
	Workers       int
	RateLimit     time.Duration
	// GoneTTL bounds how long a delisted id stays excluded from the
	// resume set before it is retried.
	GoneTTL time.Duration
}

type enrichUseCase struct {
	listings repository.ListingRepository
	tags     repository.TagRepository
	skip     repository.SkipRepository
	fetcher  repository.PageFetcher
	cfg      EnrichConfig

	// writeMu serializes tag writes so concurrent detail results never
	// interleave partial batches.
	writeMu sync.Mutex
}

// NewEnricher creates a new instance of the enrichment use case. skip may
// be nil, in which case delisted items are simply retried every run.
func NewEnricher(
	listings repository.ListingRepository,
	tags repository.TagRepository,
	skip repository.SkipRepository,
	fetcher repository.PageFetcher,
	cfg EnrichConfig,
) Enricher {
	return &enrichUseCase{
		listings: listings,
		tags:     tags,
		skip:     skip,
		fetcher:  fetcher,
		cfg:      cfg,
	}
}

// Run computes the resume set and fetches the detail page of every pending
// listing. The resume set is a pure function of store state — ids with no
// tag yet — so the pass is safe to kill and restart at any point, and
// repeated runs converge toward an empty set. It is computed once, before
// the pool starts.
func (uc *enrichUseCase) Run(ctx context.Context) error {
	if err := uc.tags.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("enrich: prepare store: %w", err)
	}

	pending, err := uc.resumeSet(ctx)
	if err != nil {
		return fmt.Errorf("enrich: resume set: %w", err)
	}
	if len(pending) == 0 {
		slog.Info("No pending listings to enrich")
		return nil
	}

	slog.Info("Starting enrichment", "pending", len(pending), "workers", uc.cfg.Workers)

	workers := pool.New(uc.cfg.Workers, uc.cfg.RateLimit)
	var (
		storeErr  error
		storeOnce sync.Once
	)

	for _, id := range pending {
		id := id
		workers.Submit(func() {
			if ctx.Err() != nil {
				return
			}
			if err := uc.enrichOne(ctx, id); err != nil {
				storeOnce.Do(func() { storeErr = err })
				slog.Error("Store write failed", "listing_id", id, "error", err)
			}
		})
	}
	workers.Wait()

	if storeErr != nil {
		return fmt.Errorf("enrich: %w", storeErr)
	}
	slog.Info("Enrichment pass complete")
	return nil
}

// resumeSet returns listing ids that have no tag yet, minus ids currently
// marked as gone.
func (uc *enrichUseCase) resumeSet(ctx context.Context) ([]string, error) {
	all, err := uc.listings.IDs(ctx)
	if err != nil {
		return nil, err
	}
	tagged, err := uc.tags.ListingIDs(ctx)
	if err != nil {
		return nil, err
	}

	done := make(map[string]struct{}, len(tagged))
	for _, id := range tagged {
		done[id] = struct{}{}
	}

	var pending []string
	skipped := 0
	for _, id := range all {
		if _, ok := done[id]; ok {
			continue
		}
		if uc.skip != nil {
			gone, err := uc.skip.IsGone(ctx, id)
			if err != nil {
				// Marker unavailable: fall back to re-fetching.
				slog.Warn("Gone-marker lookup failed", "listing_id", id, "error", err)
			} else if gone {
				skipped++
				continue
			}
		}
		pending = append(pending, id)
	}

	slog.Info("Resume set computed",
		"total", len(all), "enriched", len(done), "gone", skipped, "pending", len(pending))
	return pending, nil
}

// enrichOne fetches one detail page and materializes its tags. Only a
// store write failure is returned; fetch and parse problems are logged and
// leave the listing in the resume set for the next run.
func (uc *enrichUseCase) enrichOne(ctx context.Context, id string) error {
	detailURL := fmt.Sprintf("%s/%s", uc.cfg.DetailBaseURL, id)

	start := time.Now()
	result, err := uc.fetcher.Fetch(ctx, repository.FetchRequest{URL: detailURL})
	metrics.FetchDuration.WithLabelValues("enrich").Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.DetailFetches.WithLabelValues("transient").Inc()
		slog.Warn("Detail fetch failed", "listing_id", id, "error", err)
		return nil
	}

	switch {
	case result.StatusCode == 404:
		metrics.DetailFetches.WithLabelValues("not_found").Inc()
		slog.Info("Listing gone", "listing_id", id)
		uc.markGone(ctx, id)
		return nil
	case result.StatusCode != 200:
		metrics.DetailFetches.WithLabelValues("transient").Inc()
		slog.Warn("Detail fetch returned non-200", "listing_id", id, "status", result.StatusCode)
		return nil
	}

	tags, err := parse.DetailPage(id, result.Body)
	if err != nil {
		metrics.DetailFetches.WithLabelValues("transient").Inc()
		slog.Warn("Detail parse failed", "listing_id", id, "error", err)
		return nil
	}
	if len(tags) == 0 {
		// Page exists but carries no attribute table; leave the listing
		// pending so a later run can pick up a fixed page.
		metrics.DetailFetches.WithLabelValues("not_found").Inc()
		slog.Info("No attributes on detail page", "listing_id", id)
		return nil
	}

	uc.writeMu.Lock()
	err = uc.tags.InsertBatch(ctx, tags)
	uc.writeMu.Unlock()
	if err != nil {
		return err
	}

	metrics.DetailFetches.WithLabelValues("parsed").Inc()
	metrics.TagsInserted.Add(float64(len(tags)))
	return nil
}

func (uc *enrichUseCase) markGone(ctx context.Context, id string) {
	if uc.skip == nil {
		return
	}
	if err := uc.skip.MarkGone(ctx, id, uc.cfg.GoneTTL); err != nil {
		slog.Warn("Failed to mark listing as gone", "listing_id", id, "error", err)
	}
}
