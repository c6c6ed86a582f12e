package domain

import "time"

// RejectionReason classifies why a reference was permanently rejected.
type RejectionReason string

const (
	// RejectionNonVehicle means extraction determined the listing is not a vehicle.
	RejectionNonVehicle RejectionReason = "non_vehicle"
	// RejectionNavigationFailed means the listing page was unreachable.
	RejectionNavigationFailed RejectionReason = "navigation_failed"
	// RejectionInvalidData means the extracted record could not be used at all.
	RejectionInvalidData RejectionReason = "invalid_data"
)

// RejectedReference is a permanent negative record. Once present, the
// reference is never re-queued by the frontier tracker.
type RejectedReference struct {
	Reference  string          `db:"reference"   json:"reference"`
	Reason     RejectionReason `db:"reason"      json:"reason"`
	Notes      *string         `db:"notes"       json:"notes,omitempty"`
	RejectedAt time.Time       `db:"rejected_at" json:"rejected_at"`
}
