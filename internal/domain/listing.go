// Package domain provides domain models used across the application.
package domain

import "time"

// Listing represents one vehicle listing from one source.
//
// The (source, reference) pair is unique: a reference identifies a listing
// within its source but is not globally unique. The aggregator and a dealer
// may assign different references to the same physical vehicle, which is why
// cross-source matching uses the correlation token extracted from the URL
// rather than reference equality.
type Listing struct {
	// Identity
	ID        string `db:"id"        json:"id"`
	Source    string `db:"source"    json:"source"`
	Reference string `db:"reference" json:"reference"`
	URL       string `db:"url"       json:"url"`

	// Normalized attributes, used for matching. Nullable: extraction may not
	// recover every field, and validation nulls out-of-range values.
	Make    *string `db:"make"    json:"make,omitempty"`
	Model   *string `db:"model"   json:"model,omitempty"`
	Year    *int    `db:"year"    json:"year,omitempty"`
	Price   *int64  `db:"price"   json:"price,omitempty"`
	Mileage *int64  `db:"mileage" json:"mileage,omitempty"`

	// Presentation-only fields, never used for matching.
	DisplayMake *string `db:"display_make" json:"display_make,omitempty"`
	DisplayName *string `db:"display_name" json:"display_name,omitempty"`

	// ImageReference points at the externally stored listing image.
	ImageReference *string `db:"image_reference" json:"image_reference,omitempty"`

	// IsActive goes false only via the staleness sweep and back to true only
	// via a successful re-ingestion.
	IsActive bool `db:"is_active" json:"is_active"`

	// Timestamps
	CreatedAt     time.Time `db:"created_at"      json:"created_at"`
	LastScrapedAt time.Time `db:"last_scraped_at" json:"last_scraped_at"`
	LastSeenAt    time.Time `db:"last_seen_at"    json:"last_seen_at"`
}

// Completeness returns how many of the matching attributes are populated.
// Used by the within-source dedup pass to pick the row to keep.
func (l *Listing) Completeness() int {
	count := 0
	if l.Make != nil {
		count++
	}
	if l.Model != nil {
		count++
	}
	if l.Year != nil {
		count++
	}
	if l.Price != nil {
		count++
	}
	if l.Mileage != nil {
		count++
	}
	return count
}

// AttributeSignature is the exact-match grouping key for the final dedup pass.
type AttributeSignature struct {
	Make    string
	Model   string
	Year    int
	Price   int64
	Mileage int64
}

// Signature returns the listing's attribute signature. The second return is
// false when any attribute is missing; such rows never participate in
// exact-attribute collapsing.
func (l *Listing) Signature() (AttributeSignature, bool) {
	if l.Make == nil || l.Model == nil || l.Year == nil || l.Price == nil || l.Mileage == nil {
		return AttributeSignature{}, false
	}
	return AttributeSignature{
		Make:    *l.Make,
		Model:   *l.Model,
		Year:    *l.Year,
		Price:   *l.Price,
		Mileage: *l.Mileage,
	}, true
}
