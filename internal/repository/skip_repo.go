package repository

import (
	"context"
	"time"
)

// SkipRepository tracks listing ids whose detail pages are permanently gone
// (delisted). Marked ids are excluded from the enrichment resume set until
// the marker expires, bounding repeated re-fetches of dead listings.
type SkipRepository interface {
	MarkGone(ctx context.Context, listingID string, expiry time.Duration) error
	IsGone(ctx context.Context, listingID string) (bool, error)
}
