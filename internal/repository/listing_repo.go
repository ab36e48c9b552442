package repository

import (
	"context"

	"github.com/user/listings-service/internal/entity"
)

// ListingRepository defines the interface for the listing store: a keyed
// record store with at-least-once upsert semantics.
type ListingRepository interface {
	// EnsureSchema creates the listings table if it does not exist.
	EnsureSchema(ctx context.Context) error
	// UpsertBatch writes summaries with last-write-wins semantics: a
	// re-discovered id has all its text fields replaced wholesale.
	UpsertBatch(ctx context.Context, listings []*entity.Listing) error
	// IDs returns every stored listing id.
	IDs(ctx context.Context) ([]string, error)
	// FindByID retrieves one listing, or nil when absent.
	FindByID(ctx context.Context, id string) (*entity.Listing, error)
	// Search returns raw rows ordered by id. Non-empty makeSub/modelSub
	// are matched as case-insensitive substrings of the raw title text;
	// numeric predicates are the caller's concern.
	Search(ctx context.Context, makeSub, modelSub string) ([]*entity.Listing, error)
	// Count returns the number of stored listings.
	Count(ctx context.Context) (int, error)
}
