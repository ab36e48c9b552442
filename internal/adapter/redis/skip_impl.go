package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const goneKeyPrefix = "listings:gone:"

// SkipRepoImpl tracks permanently-gone listing ids in Redis. A marker with
// a long TTL keeps a delisted item out of the enrichment resume set; once
// the marker expires the listing is retried, so a wrongly marked id is
// eventually recovered. Losing Redis only costs extra re-fetches.
type SkipRepoImpl struct {
	client *redis.Client
}

// NewSkipRepo creates a new instance of SkipRepoImpl.
func NewSkipRepo(client *redis.Client) *SkipRepoImpl {
	return &SkipRepoImpl{client: client}
}

// MarkGone records that a listing's detail page no longer exists.
func (r *SkipRepoImpl) MarkGone(ctx context.Context, listingID string, expiry time.Duration) error {
	return r.client.SetEx(ctx, goneKeyPrefix+listingID, "1", expiry).Err()
}

// IsGone reports whether a listing is currently marked as gone.
func (r *SkipRepoImpl) IsGone(ctx context.Context, listingID string) (bool, error) {
	val, err := r.client.Exists(ctx, goneKeyPrefix+listingID).Result()
	if err != nil {
		return false, err
	}
	return val == 1, nil
}
