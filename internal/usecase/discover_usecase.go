package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/user/listings-service/internal/entity"
	"github.com/user/listings-service/internal/parse"
	"github.com/user/listings-service/internal/repository"
	"github.com/user/listings-service/pkg/metrics"
	"github.com/user/listings-service/pkg/pool"
)

// Discoverer defines the interface for the crawl orchestrator: one full
// discovery pass over the configured price brackets.
type Discoverer interface {
	Run(ctx context.Context) error
}

// DiscoverConfig carries the run parameters of a discovery pass.
type DiscoverConfig struct {
	SearchBaseURL string
	Brackets      []entity.PriceBracket
	MaxPages      int
	Workers       int
	RateLimit     time.Duration
}

type discoverUseCase struct {
	listings repository.ListingRepository
	fetcher  repository.PageFetcher
	cfg      DiscoverConfig

	// writeMu serializes store writes so concurrent page results never
	// interleave partial batches.
	writeMu sync.Mutex
}

// NewDiscoverer creates a new instance of the crawl orchestrator use case.
func NewDiscoverer(
	listings repository.ListingRepository,
	fetcher repository.PageFetcher,
	cfg DiscoverConfig,
) Discoverer {
	return &discoverUseCase{
		listings: listings,
		fetcher:  fetcher,
		cfg:      cfg,
	}
}

// Run processes the price brackets strictly one at a time: each bracket's
// worker pool fully drains before the next bracket starts. That ordering
// caps the concurrent load on the source; it is the only cross-phase
// ordering guarantee the system relies on. Partitioning by price keeps
// every query under the source's result-count ceiling.
func (uc *discoverUseCase) Run(ctx context.Context) error {
	if err := uc.listings.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("discover: prepare store: %w", err)
	}

	for _, bracket := range uc.cfg.Brackets {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := uc.runBracket(ctx, bracket); err != nil {
			return fmt.Errorf("discover: bracket [%d,%d): %w", bracket.Min, bracket.Max, err)
		}
	}
	return nil
}

func (uc *discoverUseCase) runBracket(ctx context.Context, bracket entity.PriceBracket) error {
	slog.Info("Starting price bracket",
		"min", bracket.Min, "max", bracket.Max, "pages", uc.cfg.MaxPages)

	workers := pool.New(uc.cfg.Workers, uc.cfg.RateLimit)

	var (
		saved       int64
		emptyStreak int64
		storeErr    error
		storeOnce   sync.Once
	)

	for page := 1; page <= uc.cfg.MaxPages; page++ {
		page := page
		workers.Submit(func() {
			if ctx.Err() != nil {
				return
			}

			summaries := uc.fetchPage(ctx, bracket, page)
			if len(summaries) == 0 {
				// Completion order is not page order, so an empty page is
				// only a loose exhaustion hint; it must not terminate the
				// bracket early.
				atomic.AddInt64(&emptyStreak, 1)
				return
			}
			atomic.StoreInt64(&emptyStreak, 0)

			uc.writeMu.Lock()
			err := uc.listings.UpsertBatch(ctx, summaries)
			uc.writeMu.Unlock()
			if err != nil {
				// A store failure is the one fatal condition; remember it
				// and let in-flight work drain.
				storeOnce.Do(func() { storeErr = err })
				slog.Error("Store write failed", "page", page, "error", err)
				return
			}

			metrics.ListingsUpserted.Add(float64(len(summaries)))
			atomic.AddInt64(&saved, int64(len(summaries)))
			slog.Debug("Saved page", "page", page, "listings", len(summaries))
		})
	}
	workers.Wait()

	slog.Info("Finished price bracket",
		"min", bracket.Min, "max", bracket.Max,
		"listings", atomic.LoadInt64(&saved),
		"trailing_empty_pages", atomic.LoadInt64(&emptyStreak))
	return storeErr
}

// fetchPage retrieves and parses one search result page. Transient fetch
// and parse failures are logged and swallowed: the page counts as empty and
// is not retried this run, because the next full pass is idempotent and
// will refill the gap.
func (uc *discoverUseCase) fetchPage(ctx context.Context, bracket entity.PriceBracket, page int) []*entity.Listing {
	pageURL := uc.searchURL(bracket, page)

	start := time.Now()
	result, err := uc.fetcher.Fetch(ctx, repository.FetchRequest{URL: pageURL})
	metrics.FetchDuration.WithLabelValues("discover").Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.PagesFetched.WithLabelValues("error").Inc()
		slog.Warn("Page fetch failed", "url", pageURL, "error", err)
		return nil
	}
	if result.StatusCode != 200 {
		metrics.PagesFetched.WithLabelValues("error").Inc()
		slog.Warn("Page fetch returned non-200", "url", pageURL, "status", result.StatusCode)
		return nil
	}

	summaries, err := parse.SearchPage(result.Body)
	if err != nil {
		metrics.PagesFetched.WithLabelValues("error").Inc()
		slog.Warn("Page parse failed", "url", pageURL, "error", err)
		return nil
	}
	if len(summaries) == 0 {
		metrics.PagesFetched.WithLabelValues("empty").Inc()
		slog.Debug("Page yielded no listings", "url", pageURL)
		return nil
	}

	metrics.PagesFetched.WithLabelValues("ok").Inc()
	return summaries
}

// searchURL builds the paginated, price-bounded search URL. Page 1 is the
// bare category path; later pages append the page number.
func (uc *discoverUseCase) searchURL(bracket entity.PriceBracket, page int) string {
	base := uc.cfg.SearchBaseURL
	if page > 1 {
		base = fmt.Sprintf("%s/%d", base, page)
	}

	params := url.Values{}
	params.Set("price1", fmt.Sprintf("%d", bracket.Min))
	params.Set("price2", fmt.Sprintf("%d", bracket.Max))
	return base + "?" + params.Encode()
}
