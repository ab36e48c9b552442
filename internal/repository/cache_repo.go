package repository

import (
	"context"
	"time"
)

// CacheRepository is a best-effort byte cache. A miss and a backend failure
// look the same to callers: recompute and move on.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}
