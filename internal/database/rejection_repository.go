package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/nordbil/carcatalog/internal/domain"
)

// RejectionRepository handles database operations for the rejection ledger.
type RejectionRepository struct {
	db *sqlx.DB
}

// NewRejectionRepository creates a new rejection ledger repository.
func NewRejectionRepository(db *sqlx.DB) *RejectionRepository {
	return &RejectionRepository{db: db}
}

// Insert records a rejected reference. The insert is idempotent: rejecting a
// reference that is already in the ledger is a no-op, not an error, so that
// re-processing races are tolerated. Returns true when a new row was written.
func (r *RejectionRepository) Insert(
	ctx context.Context,
	reference string,
	reason domain.RejectionReason,
	notes *string,
) (bool, error) {
	query := `
		INSERT INTO rejected_references (reference, reason, notes)
		VALUES ($1, $2, $3)
		ON CONFLICT (reference) DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query, reference, reason, notes)
	if err != nil {
		return false, fmt.Errorf("failed to insert rejected reference: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rejection insert result: %w", err)
	}

	return affected > 0, nil
}

// AllReferences returns every rejected reference. Used by the frontier
// tracker's per-cycle snapshot.
func (r *RejectionRepository) AllReferences(ctx context.Context) ([]string, error) {
	query := `SELECT reference FROM rejected_references`

	var refs []string
	if err := r.db.SelectContext(ctx, &refs, query); err != nil {
		return nil, fmt.Errorf("failed to load rejected references: %w", err)
	}

	return refs, nil
}
