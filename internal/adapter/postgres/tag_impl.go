package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/listings-service/internal/entity"
)

// TagRepoImpl provides a concrete implementation for the TagRepository
// interface using PostgreSQL.
type TagRepoImpl struct {
	db *pgxpool.Pool
}

// NewTagRepo creates a new instance of TagRepoImpl.
func NewTagRepo(db *pgxpool.Pool) *TagRepoImpl {
	return &TagRepoImpl{db: db}
}

// EnsureSchema creates the tags table if it does not exist.
func (r *TagRepoImpl) EnsureSchema(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS tags (
			id         BIGSERIAL PRIMARY KEY,
			listing_id TEXT NOT NULL,
			attribute  TEXT NOT NULL,
			value      TEXT,
			UNIQUE (listing_id, attribute)
		);
	`)
	if err != nil {
		return fmt.Errorf("tags: ensure schema: %w", err)
	}
	return nil
}

// InsertBatch writes tags with insert-if-absent semantics: an existing
// (listing_id, attribute) pair is left untouched, never merged.
func (r *TagRepoImpl) InsertBatch(ctx context.Context, tags []*entity.Tag) error {
	if len(tags) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, t := range tags {
		batch.Queue(`
			INSERT INTO tags (listing_id, attribute, value)
			VALUES ($1, $2, $3)
			ON CONFLICT (listing_id, attribute) DO NOTHING;
		`, t.ListingID, t.Attribute, t.Value)
	}

	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("tags: insert batch: %w", err)
	}
	return nil
}

// ListingIDs returns the distinct listing ids that have at least one tag.
func (r *TagRepoImpl) ListingIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT listing_id FROM tags;`)
	if err != nil {
		return nil, fmt.Errorf("tags: listing ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("tags: scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ForListing returns all tags of one listing.
func (r *TagRepoImpl) ForListing(ctx context.Context, listingID string) ([]*entity.Tag, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, listing_id, attribute, value
		FROM tags
		WHERE listing_id = $1
		ORDER BY id;
	`, listingID)
	if err != nil {
		return nil, fmt.Errorf("tags: for listing %s: %w", listingID, err)
	}
	defer rows.Close()

	return scanTags(rows)
}

// All returns every tag ordered by listing id, used by the export feed.
func (r *TagRepoImpl) All(ctx context.Context) ([]*entity.Tag, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, listing_id, attribute, value
		FROM tags
		ORDER BY listing_id, id;
	`)
	if err != nil {
		return nil, fmt.Errorf("tags: all: %w", err)
	}
	defer rows.Close()

	return scanTags(rows)
}

func scanTags(rows pgx.Rows) ([]*entity.Tag, error) {
	var tags []*entity.Tag
	for rows.Next() {
		var t entity.Tag
		if err := rows.Scan(&t.ID, &t.ListingID, &t.Attribute, &t.Value); err != nil {
			return nil, fmt.Errorf("tags: scan row: %w", err)
		}
		tags = append(tags, &t)
	}
	return tags, rows.Err()
}
