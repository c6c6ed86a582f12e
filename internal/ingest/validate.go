package ingest

import (
	"strings"
	"time"

	"github.com/nordbil/carcatalog/internal/domain"
	"github.com/nordbil/carcatalog/internal/normalize"
)

const (
	minYear    = 1950
	maxMileage = 10_000_000
)

// BuildListing turns a raw extracted record into a catalog listing for the
// given frontier entry. Attributes are normalized for matching, and
// out-of-range values are nulled rather than rejected: a listing with a
// nonsense mileage is still a real vehicle.
func BuildListing(entry domain.FrontierEntry, record *domain.VehicleRecord) *domain.Listing {
	listing := &domain.Listing{
		Source:    entry.Source,
		Reference: entry.Reference,
		URL:       entry.URL,
	}

	if mk := normalize.Make(record.Make); mk != "" {
		listing.Make = &mk
		display := normalize.DisplayMake(mk)
		listing.DisplayMake = &display
	}

	if model := normalize.Model(record.Model); model != "" {
		listing.Model = &model
		display := normalize.DisplayName(model)
		listing.DisplayName = &display
	}

	if record.Year != nil && validYear(*record.Year) {
		year := *record.Year
		listing.Year = &year
	}

	if record.Price != nil && *record.Price > 0 {
		price := *record.Price
		listing.Price = &price
	}

	if record.Mileage != nil && *record.Mileage >= 0 && *record.Mileage < maxMileage {
		mileage := *record.Mileage
		listing.Mileage = &mileage
	}

	if record.ImageURL != nil && strings.TrimSpace(*record.ImageURL) != "" {
		image := strings.TrimSpace(*record.ImageURL)
		listing.ImageReference = &image
	}

	return listing
}

// validYear accepts model years from 1950 through next year. Listings for
// the upcoming model year appear before the calendar year changes.
func validYear(year int) bool {
	return year >= minYear && year <= time.Now().Year()+1
}

// Usable reports whether a record identifies a vehicle well enough to catalog.
// A whitelisted make is always enough; otherwise a non-blank title keeps the
// record, since dealer pages sometimes put the whole description there.
func Usable(record *domain.VehicleRecord) bool {
	if record == nil {
		return false
	}
	if normalize.IsKnownMake(normalize.Make(record.Make)) {
		return true
	}
	return strings.TrimSpace(record.Title) != ""
}
