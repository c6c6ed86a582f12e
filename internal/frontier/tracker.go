package frontier

import (
	"context"
	"fmt"

	"github.com/nordbil/carcatalog/internal/domain"
	"github.com/nordbil/carcatalog/internal/logger"
	"github.com/nordbil/carcatalog/internal/metrics"
)

// CatalogReader is the catalog read/reconfirm surface the tracker needs.
type CatalogReader interface {
	ActiveReferences(ctx context.Context, source string) ([]string, error)
	Touch(ctx context.Context, source, reference string) error
}

// LedgerReader is the rejection ledger read surface the tracker needs.
type LedgerReader interface {
	AllReferences(ctx context.Context) ([]string, error)
}

// FrontierWriter appends new entries to the frontier store.
type FrontierWriter interface {
	InsertBatch(ctx context.Context, entries []domain.FrontierEntry) error
}

// Delta reports what one discovery cycle contributed.
type Delta struct {
	Discovered  int `json:"discovered"`
	Enqueued    int `json:"enqueued"`
	Reconfirmed int `json:"reconfirmed"`
	Rejected    int `json:"rejected"`
	Malformed   int `json:"malformed"`
	Duplicate   int `json:"duplicate"`
}

// snapshot is the known-reference state read once at the start of a
// discovery cycle. It is rebuilt from the store on every cycle rather than
// cached in memory, so it can never go stale across cycles. References
// catalogued by a concurrently running batch are not visible; the resulting
// duplicate frontier entries are absorbed by the store's conflict handling.
type snapshot struct {
	catalogued map[string]struct{}
	rejected   map[string]struct{}
}

// Tracker merges discovery output into the frontier.
type Tracker struct {
	catalog  CatalogReader
	ledger   LedgerReader
	frontier FrontierWriter
	parsers  *ParserRegistry
	logger   logger.Interface
	metrics  *metrics.Metrics
}

// NewTracker creates a frontier tracker.
func NewTracker(
	catalog CatalogReader,
	ledger LedgerReader,
	frontier FrontierWriter,
	parsers *ParserRegistry,
	log logger.Interface,
	m *metrics.Metrics,
) *Tracker {
	return &Tracker{
		catalog:  catalog,
		ledger:   ledger,
		frontier: frontier,
		parsers:  parsers,
		logger:   log.WithComponent("frontier-tracker"),
		metrics:  m,
	}
}

// MergeDiscoveries classifies every discovered URL for one source against a
// fresh known-reference snapshot and persists only the incremental delta:
// already-catalogued references get a last_seen_at reconfirm, rejected and
// malformed ones are dropped, and the remainder joins the frontier
// (deduplicated within the cycle).
func (t *Tracker) MergeDiscoveries(ctx context.Context, source string, urls []string) (Delta, error) {
	parser, err := t.parsers.Lookup(source)
	if err != nil {
		return Delta{}, err
	}

	snap, err := t.loadSnapshot(ctx, source)
	if err != nil {
		return Delta{}, err
	}

	delta := Delta{Discovered: len(urls)}
	seen := make(map[string]struct{}, len(urls))
	var pending []domain.FrontierEntry

	for _, rawURL := range urls {
		reference, parseErr := parser.ParseReference(rawURL)
		if parseErr != nil {
			delta.Malformed++
			t.metrics.FrontierDropped.WithLabelValues(metrics.DropCauseMalformed).Inc()
			t.logger.Debug("Dropping unparseable discovery", "source", source, "url", rawURL)
			continue
		}

		if _, dup := seen[reference]; dup {
			delta.Duplicate++
			t.metrics.FrontierDropped.WithLabelValues(metrics.DropCauseDuplicate).Inc()
			continue
		}
		seen[reference] = struct{}{}

		if _, rejected := snap.rejected[reference]; rejected {
			delta.Rejected++
			t.metrics.FrontierDropped.WithLabelValues(metrics.DropCauseRejected).Inc()
			continue
		}

		if _, known := snap.catalogued[reference]; known {
			if touchErr := t.catalog.Touch(ctx, source, reference); touchErr != nil {
				t.logger.Warn("Failed to reconfirm listing",
					"source", source, "reference", reference, "error", touchErr)
			}
			delta.Reconfirmed++
			t.metrics.FrontierReconfirmed.Inc()
			continue
		}

		pending = append(pending, domain.FrontierEntry{
			Source:    source,
			Reference: reference,
			URL:       rawURL,
		})
	}

	if insertErr := t.frontier.InsertBatch(ctx, pending); insertErr != nil {
		return delta, fmt.Errorf("failed to persist frontier delta: %w", insertErr)
	}

	delta.Enqueued = len(pending)
	t.metrics.FrontierEnqueued.Add(float64(delta.Enqueued))

	t.logger.Info("Merged discovery cycle",
		"source", source,
		"discovered", delta.Discovered,
		"enqueued", delta.Enqueued,
		"reconfirmed", delta.Reconfirmed,
		"rejected", delta.Rejected,
		"malformed", delta.Malformed,
	)

	return delta, nil
}

// loadSnapshot reads the known-reference sets once for this cycle.
func (t *Tracker) loadSnapshot(ctx context.Context, source string) (*snapshot, error) {
	catalogued, err := t.catalog.ActiveReferences(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot catalogued references: %w", err)
	}

	rejected, err := t.ledger.AllReferences(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot rejected references: %w", err)
	}

	snap := &snapshot{
		catalogued: make(map[string]struct{}, len(catalogued)),
		rejected:   make(map[string]struct{}, len(rejected)),
	}
	for _, ref := range catalogued {
		snap.catalogued[ref] = struct{}{}
	}
	for _, ref := range rejected {
		snap.rejected[ref] = struct{}{}
	}

	return snap, nil
}
