package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schemaStatements creates the three core tables. CREATE TABLE IF NOT EXISTS
// keeps startup idempotent; production migrations run out of band.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS car_listings (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		source TEXT NOT NULL,
		reference TEXT NOT NULL,
		url TEXT NOT NULL,
		make TEXT,
		model TEXT,
		year INTEGER,
		price BIGINT,
		mileage BIGINT,
		display_make TEXT,
		display_name TEXT,
		image_reference TEXT,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		last_scraped_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		last_seen_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (source, reference)
	)`,
	`CREATE INDEX IF NOT EXISTS car_listings_active_seen_idx
		ON car_listings (is_active, last_seen_at)`,
	`CREATE TABLE IF NOT EXISTS rejected_references (
		reference TEXT PRIMARY KEY,
		reason TEXT NOT NULL,
		notes TEXT,
		rejected_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS frontier_entries (
		source TEXT NOT NULL,
		reference TEXT NOT NULL,
		url TEXT NOT NULL,
		discovered_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (source, reference)
	)`,
}

// EnsureSchema creates the catalog tables when they do not exist yet.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}

	return nil
}
