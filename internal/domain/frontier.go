package domain

import "time"

// FrontierEntry is a discovered reference that has not yet been resolved to
// either a catalog listing or a rejection. The frontier stores only the
// reference and the URL needed to fetch it, never discovery payloads.
//
// An entry is created only when its reference was absent from both the active
// catalog and the rejection ledger at the time of the discovery cycle that
// produced it. Because that snapshot is read once per cycle, an entry may
// reappear across adjacent cycles; consumers skip it idempotently.
type FrontierEntry struct {
	Reference    string    `db:"reference"     json:"reference"`
	Source       string    `db:"source"        json:"source"`
	URL          string    `db:"url"           json:"url"`
	DiscoveredAt time.Time `db:"discovered_at" json:"discovered_at"`
}
