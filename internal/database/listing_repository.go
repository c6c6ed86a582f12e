package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/nordbil/carcatalog/internal/domain"
)

// listingSelectColumns lists columns for SELECT queries on car_listings.
const listingSelectColumns = `id, source, reference, url, make, model, year, price, mileage,
	display_make, display_name, image_reference, is_active,
	created_at, last_scraped_at, last_seen_at`

// ListingRepository handles database operations for catalog listings.
type ListingRepository struct {
	db *sqlx.DB
}

// NewListingRepository creates a new listing repository.
func NewListingRepository(db *sqlx.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

// Upsert inserts a listing or refreshes it on re-ingestion. On conflict
// (same source and reference) the attribute fields are replaced, the scrape
// timestamps are advanced, and the row is reactivated. Reactivation through
// re-ingestion is the only path that sets is_active back to true.
func (r *ListingRepository) Upsert(ctx context.Context, l *domain.Listing) error {
	query := `
		INSERT INTO car_listings (source, reference, url, make, model, year, price, mileage,
			display_make, display_name, image_reference, is_active,
			last_scraped_at, last_seen_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, TRUE, NOW(), NOW())
		ON CONFLICT (source, reference) DO UPDATE SET
			url = EXCLUDED.url,
			make = EXCLUDED.make,
			model = EXCLUDED.model,
			year = EXCLUDED.year,
			price = EXCLUDED.price,
			mileage = EXCLUDED.mileage,
			display_make = EXCLUDED.display_make,
			display_name = EXCLUDED.display_name,
			image_reference = COALESCE(EXCLUDED.image_reference, car_listings.image_reference),
			is_active = TRUE,
			last_scraped_at = NOW(),
			last_seen_at = NOW()
	`

	_, err := r.db.ExecContext(
		ctx, query,
		l.Source, l.Reference, l.URL, l.Make, l.Model, l.Year, l.Price, l.Mileage,
		l.DisplayMake, l.DisplayName, l.ImageReference,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert listing: %w", err)
	}

	return nil
}

// ActiveReferences returns the references of all active listings for a source.
// Used by the frontier tracker's per-cycle snapshot.
func (r *ListingRepository) ActiveReferences(ctx context.Context, source string) ([]string, error) {
	query := `SELECT reference FROM car_listings WHERE source = $1 AND is_active = TRUE`

	var refs []string
	if err := r.db.SelectContext(ctx, &refs, query, source); err != nil {
		return nil, fmt.Errorf("failed to load active references: %w", err)
	}

	return refs, nil
}

// Touch advances last_seen_at for a listing rediscovered during a discovery
// cycle. A missing row is not an error: the listing may have been deleted by
// a concurrent dedup run.
func (r *ListingRepository) Touch(ctx context.Context, source, reference string) error {
	query := `UPDATE car_listings SET last_seen_at = NOW() WHERE source = $1 AND reference = $2`

	if _, err := r.db.ExecContext(ctx, query, source, reference); err != nil {
		return fmt.Errorf("failed to touch listing: %w", err)
	}

	return nil
}

// DeactivateStale flips is_active to false on every active listing whose
// last_seen_at is older than the threshold (in seconds). The transition is
// monotonic: this statement never activates a row.
func (r *ListingRepository) DeactivateStale(ctx context.Context, thresholdSeconds int64) (int64, error) {
	query := `
		UPDATE car_listings
		SET is_active = FALSE
		WHERE is_active = TRUE
		  AND last_seen_at < NOW() - ($1 * INTERVAL '1 second')
	`

	result, err := r.db.ExecContext(ctx, query, thresholdSeconds)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate stale listings: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deactivated listings: %w", err)
	}

	return count, nil
}

// ListActiveBySource returns all active listings for one source, oldest first.
func (r *ListingRepository) ListActiveBySource(ctx context.Context, source string) ([]*domain.Listing, error) {
	query := `
		SELECT ` + listingSelectColumns + `
		FROM car_listings
		WHERE source = $1 AND is_active = TRUE
		ORDER BY created_at ASC, id ASC
	`

	var listings []*domain.Listing
	if err := r.db.SelectContext(ctx, &listings, query, source); err != nil {
		return nil, fmt.Errorf("failed to list listings for source %s: %w", source, err)
	}

	return listings, nil
}

// ListActive returns all active listings across every source, oldest first.
func (r *ListingRepository) ListActive(ctx context.Context) ([]*domain.Listing, error) {
	query := `
		SELECT ` + listingSelectColumns + `
		FROM car_listings
		WHERE is_active = TRUE
		ORDER BY created_at ASC, id ASC
	`

	var listings []*domain.Listing
	if err := r.db.SelectContext(ctx, &listings, query); err != nil {
		return nil, fmt.Errorf("failed to list active listings: %w", err)
	}

	return listings, nil
}

// Delete removes a listing row by ID. Returns an error if the row does not
// exist. All deletions route through the deletion coordinator, never here
// directly.
func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM car_listings WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)

	return execRequireRows(result, err, fmt.Errorf("listing not found: %s", id))
}

// CountActive returns the number of active listings per source.
func (r *ListingRepository) CountActive(ctx context.Context) (map[string]int, error) {
	query := `SELECT source, COUNT(*) FROM car_listings WHERE is_active = TRUE GROUP BY source`

	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count active listings: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var source string
		var count int
		if scanErr := rows.Scan(&source, &count); scanErr != nil {
			return nil, fmt.Errorf("failed to scan listing count row: %w", scanErr)
		}
		counts[source] = count
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate listing counts: %w", rowsErr)
	}

	return counts, nil
}
