package repository

import (
	"context"
	"errors"
)

// Fetch failures that callers may want to distinguish. Anything else is a
// transport-level error.
var (
	ErrFetchTimeout = errors.New("page fetch timed out")
	ErrNotFound     = errors.New("page not found")
)

// FetchRequest describes one page retrieval. Headers and Body are optional;
// a non-empty Body turns the request into a POST.
type FetchRequest struct {
	URL     string
	Headers map[string]string
	Body    string
}

// FetchResult carries the outcome of a fetch. A non-200 StatusCode is a
// result, not an error: the two failure modes surface separately.
type FetchResult struct {
	StatusCode int
	Body       string
}

// PageFetcher is the opaque fetch-rendered-page capability. How a page is
// obtained (headless browser, plain HTTP) is an adapter concern.
type PageFetcher interface {
	Fetch(ctx context.Context, req FetchRequest) (*FetchResult, error)
}
