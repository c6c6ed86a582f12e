package domain

// OutcomeKind discriminates the closed set of extraction results.
type OutcomeKind int

const (
	// OutcomeVehicle means a vehicle record was extracted.
	OutcomeVehicle OutcomeKind = iota
	// OutcomeNotVehicle means the page describes something other than a vehicle.
	OutcomeNotVehicle
	// OutcomeNavigationFailed means the page could not be reached.
	OutcomeNavigationFailed
)

// VehicleRecord holds the raw attributes extracted from a listing page,
// before normalization and validation.
type VehicleRecord struct {
	Title    string  `json:"title"`
	Make     string  `json:"make"`
	Model    string  `json:"model"`
	Year     *int    `json:"year,omitempty"`
	Price    *int64  `json:"price,omitempty"`
	Mileage  *int64  `json:"mileage,omitempty"`
	ImageURL *string `json:"image_url,omitempty"`
}

// ExtractionOutcome is the closed result variant produced by an Extractor:
// exactly one of the three constructors below builds it, and consumers
// switch on Kind.
type ExtractionOutcome struct {
	Kind   OutcomeKind
	Record *VehicleRecord
	// Detail carries the classification or failure explanation for the two
	// non-vehicle outcomes.
	Detail string
}

// VehicleOutcome wraps a successfully extracted record.
func VehicleOutcome(record *VehicleRecord) ExtractionOutcome {
	return ExtractionOutcome{Kind: OutcomeVehicle, Record: record}
}

// NotVehicleOutcome marks the reference as not describing a vehicle.
func NotVehicleOutcome(detail string) ExtractionOutcome {
	return ExtractionOutcome{Kind: OutcomeNotVehicle, Detail: detail}
}

// NavigationFailedOutcome marks the reference as unreachable.
func NavigationFailedOutcome(detail string) ExtractionOutcome {
	return ExtractionOutcome{Kind: OutcomeNavigationFailed, Detail: detail}
}
