package repository

import (
	"context"

	"github.com/user/listings-service/internal/entity"
)

// TagRepository defines the interface for the enrichment tag store.
type TagRepository interface {
	// EnsureSchema creates the tags table if it does not exist.
	EnsureSchema(ctx context.Context) error
	// InsertBatch writes tags with insert-if-absent semantics: a
	// (listing_id, attribute) pair already present is left untouched.
	InsertBatch(ctx context.Context, tags []*entity.Tag) error
	// ListingIDs returns the distinct listing ids that have at least one tag.
	ListingIDs(ctx context.Context) ([]string, error)
	// ForListing returns all tags of one listing.
	ForListing(ctx context.Context, listingID string) ([]*entity.Tag, error)
	// All returns every tag ordered by listing id, used by the export feed.
	All(ctx context.Context) ([]*entity.Tag, error)
}
