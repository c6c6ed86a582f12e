package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/nordbil/carcatalog/internal/domain"
)

// FrontierRepository handles database operations for the crawl frontier.
// The frontier holds references only, keeping it small relative to total
// discovery volume.
type FrontierRepository struct {
	db *sqlx.DB
}

// NewFrontierRepository creates a new frontier repository.
func NewFrontierRepository(db *sqlx.DB) *FrontierRepository {
	return &FrontierRepository{db: db}
}

// InsertBatch appends discovered references to the frontier. Re-inserting a
// reference that is already queued is a no-op (ON CONFLICT DO NOTHING), which
// is how duplicate entries across adjacent discovery cycles stay harmless.
func (r *FrontierRepository) InsertBatch(ctx context.Context, entries []domain.FrontierEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin frontier insert transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	query := `
		INSERT INTO frontier_entries (source, reference, url)
		VALUES ($1, $2, $3)
		ON CONFLICT (source, reference) DO NOTHING
	`

	for i := range entries {
		e := &entries[i]
		if _, execErr := tx.ExecContext(ctx, query, e.Source, e.Reference, e.URL); execErr != nil {
			return fmt.Errorf("failed to insert frontier entry %s: %w", e.Reference, execErr)
		}
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return fmt.Errorf("failed to commit frontier insert transaction: %w", commitErr)
	}

	return nil
}

// ListBySource returns the frontier for one source in stored order, which the
// balanced sampler partitions into buckets.
func (r *FrontierRepository) ListBySource(ctx context.Context, source string) ([]domain.FrontierEntry, error) {
	query := `
		SELECT source, reference, url, discovered_at
		FROM frontier_entries
		WHERE source = $1
		ORDER BY discovered_at ASC, reference ASC
	`

	var entries []domain.FrontierEntry
	if err := r.db.SelectContext(ctx, &entries, query, source); err != nil {
		return nil, fmt.Errorf("failed to list frontier for source %s: %w", source, err)
	}

	return entries, nil
}

// Delete removes a resolved reference from the frontier. Deleting a
// reference that is no longer queued is a no-op, because a reference may be
// resolved by an adjacent cycle first.
func (r *FrontierRepository) Delete(ctx context.Context, source, reference string) error {
	query := `DELETE FROM frontier_entries WHERE source = $1 AND reference = $2`

	if _, err := r.db.ExecContext(ctx, query, source, reference); err != nil {
		return fmt.Errorf("failed to delete frontier entry %s: %w", reference, err)
	}

	return nil
}

// Count returns the number of queued references for a source.
func (r *FrontierRepository) Count(ctx context.Context, source string) (int, error) {
	query := `SELECT COUNT(*) FROM frontier_entries WHERE source = $1`

	var count int
	if err := r.db.GetContext(ctx, &count, query, source); err != nil {
		return 0, fmt.Errorf("failed to count frontier entries: %w", err)
	}

	return count, nil
}
