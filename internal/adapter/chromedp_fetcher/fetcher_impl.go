package chromedp_fetcher

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/user/listings-service/internal/repository"
)

// ChromedpFetcher renders pages through headless Chrome. The source sits
// behind JS challenges, so for search pages a real browser is the only
// reliable way to get at the listing markup.
type ChromedpFetcher struct {
	allocatorPool *sync.Pool
	timeout       time.Duration
}

// NewChromedpFetcher creates a fetcher backed by a pool of browser
// allocator contexts, pre-warmed to maxConcurrency.
func NewChromedpFetcher(maxConcurrency int, timeout time.Duration) *ChromedpFetcher {
	pool := &sync.Pool{
		New: func() interface{} {
			opts := append(chromedp.DefaultExecAllocatorOptions[:],
				chromedp.Flag("headless", true),
				chromedp.Flag("disable-gpu", true),
				chromedp.Flag("no-sandbox", true),
				chromedp.Flag("disable-dev-shm-usage", true),
				chromedp.UserAgent(`Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36`),
			)
			allocCtx, _ := chromedp.NewExecAllocator(context.Background(), opts...)
			return allocCtx
		},
	}

	for i := 0; i < maxConcurrency; i++ {
		allocCtx := pool.Get().(context.Context)
		pool.Put(allocCtx)
	}

	return &ChromedpFetcher{
		allocatorPool: pool,
		timeout:       timeout,
	}
}

// Fetch navigates to the URL and returns the rendered document. Headers
// and Body are ignored: the browser speaks for itself. The status code is
// reported as 200 whenever navigation succeeds; challenge pages come back
// as documents without listing markup and parse to zero results, which is
// the failure mode the orchestrator already tolerates.
func (f *ChromedpFetcher) Fetch(ctx context.Context, req repository.FetchRequest) (*repository.FetchResult, error) {
	allocCtx := f.allocatorPool.Get().(context.Context)
	defer f.allocatorPool.Put(allocCtx)

	taskCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	taskCtx, cancel = context.WithTimeout(taskCtx, f.timeout)
	defer cancel()

	var html string
	err := chromedp.Run(taskCtx,
		chromedp.Navigate(req.URL),
		chromedp.WaitVisible("body", chromedp.ByQuery),
		// A small scroll nudges lazy-loaded images into the DOM.
		chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight/2)`, nil),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, repository.ErrFetchTimeout
		}
		return nil, err
	}

	status := http.StatusOK
	if strings.Contains(html, "Just a moment") {
		// Cloudflare interstitial rendered instead of the page.
		status = http.StatusServiceUnavailable
	}

	return &repository.FetchResult{StatusCode: status, Body: html}, nil
}
