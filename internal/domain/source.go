package domain

// SourceKind distinguishes sources that originate listings from the one that
// republishes them.
type SourceKind string

const (
	// SourceKindAuthoritative marks a dealer's own inventory feed.
	SourceKindAuthoritative SourceKind = "authoritative"
	// SourceKindAggregator marks a source that republishes dealer inventory.
	SourceKindAggregator SourceKind = "aggregator"
)

// Source describes one configured listing source.
type Source struct {
	// ID is the stable source tag stored on listings (e.g. "brimborg").
	ID string `json:"id"`
	// Name is the human-readable source name.
	Name string `json:"name"`
	// Kind is authoritative or aggregator. Dedup tie-breaking keys on the
	// kind: authoritative rows outrank aggregator rows.
	Kind SourceKind `json:"kind"`
}

// IsAuthoritative reports whether the source originates its listings.
func (s Source) IsAuthoritative() bool {
	return s.Kind == SourceKindAuthoritative
}
