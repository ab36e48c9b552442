package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/listings-service/internal/entity"
)

// ListingRepoImpl provides a concrete implementation for the
// ListingRepository interface using PostgreSQL.
type ListingRepoImpl struct {
	db *pgxpool.Pool
}

// NewListingRepo creates a new instance of ListingRepoImpl.
func NewListingRepo(db *pgxpool.Pool) *ListingRepoImpl {
	return &ListingRepoImpl{db: db}
}

// EnsureSchema creates the listings table if it does not exist.
func (r *ListingRepoImpl) EnsureSchema(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS listings (
			id              TEXT PRIMARY KEY,
			image_ref       TEXT,
			price_text      TEXT,
			title_text      TEXT,
			attributes_text TEXT
		);
	`)
	if err != nil {
		return fmt.Errorf("listings: ensure schema: %w", err)
	}
	return nil
}

// UpsertBatch writes listing summaries in one transaction. Re-discovered
// ids have all text fields replaced wholesale (last-write-wins).
func (r *ListingRepoImpl) UpsertBatch(ctx context.Context, listings []*entity.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, l := range listings {
		batch.Queue(`
			INSERT INTO listings (id, image_ref, price_text, title_text, attributes_text)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE SET
				image_ref = EXCLUDED.image_ref,
				price_text = EXCLUDED.price_text,
				title_text = EXCLUDED.title_text,
				attributes_text = EXCLUDED.attributes_text;
		`, l.ID, l.ImageRef, l.PriceText, l.TitleText, l.AttributesText)
	}

	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("listings: upsert batch: %w", err)
	}
	return nil
}

// IDs returns every stored listing id.
func (r *ListingRepoImpl) IDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM listings;`)
	if err != nil {
		return nil, fmt.Errorf("listings: ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("listings: scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// FindByID retrieves one listing, or nil when absent.
func (r *ListingRepoImpl) FindByID(ctx context.Context, id string) (*entity.Listing, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, image_ref, price_text, title_text, attributes_text
		FROM listings
		WHERE id = $1;
	`, id)

	var l entity.Listing
	err := row.Scan(&l.ID, &l.ImageRef, &l.PriceText, &l.TitleText, &l.AttributesText)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listings: find %s: %w", id, err)
	}
	return &l, nil
}

// Search returns raw rows ordered by id, with optional case-insensitive
// substring pushdown against the raw title text. Numeric predicates are
// evaluated by the caller against the returned raw fields.
func (r *ListingRepoImpl) Search(ctx context.Context, makeSub, modelSub string) ([]*entity.Listing, error) {
	query := `
		SELECT id, image_ref, price_text, title_text, attributes_text
		FROM listings
		WHERE 1=1`
	var args []any

	if makeSub != "" {
		args = append(args, "%"+makeSub+"%")
		query += fmt.Sprintf(" AND title_text ILIKE $%d", len(args))
	}
	if modelSub != "" {
		args = append(args, "%"+modelSub+"%")
		query += fmt.Sprintf(" AND title_text ILIKE $%d", len(args))
	}
	query += " ORDER BY id;"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listings: search: %w", err)
	}
	defer rows.Close()

	var listings []*entity.Listing
	for rows.Next() {
		var l entity.Listing
		if err := rows.Scan(&l.ID, &l.ImageRef, &l.PriceText, &l.TitleText, &l.AttributesText); err != nil {
			return nil, fmt.Errorf("listings: scan row: %w", err)
		}
		listings = append(listings, &l)
	}
	return listings, rows.Err()
}

// Count returns the number of stored listings.
func (r *ListingRepoImpl) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM listings;`).Scan(&n); err != nil {
		return 0, fmt.Errorf("listings: count: %w", err)
	}
	return n, nil
}
