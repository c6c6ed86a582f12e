// Package ingest drains frontier batches through extraction and into the
// catalog. Every frontier entry processed resolves exactly one way: upserted
// into the catalog, recorded in the rejection ledger, or left queued after a
// storage error so a later cycle retries it.
package ingest

import (
	"context"
	"fmt"
	"sync"

	"github.com/nordbil/carcatalog/internal/domain"
	"github.com/nordbil/carcatalog/internal/logger"
	"github.com/nordbil/carcatalog/internal/metrics"
)

// Extractor fetches a listing page and classifies what it found.
type Extractor interface {
	Extract(ctx context.Context, entry domain.FrontierEntry) domain.ExtractionOutcome
}

// CatalogWriter is the catalog write surface the ingester needs.
type CatalogWriter interface {
	Upsert(ctx context.Context, listing *domain.Listing) error
}

// LedgerWriter records permanently rejected references.
type LedgerWriter interface {
	Insert(ctx context.Context, reference string, reason domain.RejectionReason, notes *string) (bool, error)
}

// FrontierRemover removes resolved references from the frontier.
type FrontierRemover interface {
	Delete(ctx context.Context, source, reference string) error
}

// Result summarizes one batch.
type Result struct {
	Ingested int
	Rejected int
	Failed   int
}

// Ingester processes sampled frontier batches for a single source.
type Ingester struct {
	extractor   Extractor
	catalog     CatalogWriter
	ledger      LedgerWriter
	frontier    FrontierRemover
	concurrency int
	metrics     *metrics.Metrics
	logger      logger.Interface
}

// NewIngester creates an ingester writing through the given stores. Up to
// concurrency entries are in flight at once; values below one run the batch
// sequentially.
func NewIngester(
	extractor Extractor,
	catalog CatalogWriter,
	ledger LedgerWriter,
	frontier FrontierRemover,
	concurrency int,
	m *metrics.Metrics,
	log logger.Interface,
) *Ingester {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Ingester{
		extractor:   extractor,
		catalog:     catalog,
		ledger:      ledger,
		frontier:    frontier,
		concurrency: concurrency,
		metrics:     m,
		logger:      log.WithComponent("ingest"),
	}
}

// ProcessBatch resolves every entry in the batch, up to the concurrency
// limit in flight at once. Entry order within the batch carries no meaning.
// A storage failure on one entry is logged and counted but does not abort
// the batch; the entry stays in the frontier for a later cycle. Cancellation
// stops dispatch between entries; entries already in flight run to
// completion.
func (i *Ingester) ProcessBatch(ctx context.Context, batch []domain.FrontierEntry) (Result, error) {
	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		result Result
	)
	sem := make(chan struct{}, i.concurrency)

	var batchErr error
	for _, entry := range batch {
		if err := ctx.Err(); err != nil {
			batchErr = fmt.Errorf("batch interrupted: %w", err)
			break
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(entry domain.FrontierEntry) {
			defer wg.Done()
			defer func() { <-sem }()

			ingested, err := i.processEntry(ctx, entry)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				result.Failed++
				i.logger.Error("Failed to resolve frontier entry",
					"source", entry.Source, "reference", entry.Reference, "error", err)
			case ingested:
				result.Ingested++
			default:
				result.Rejected++
			}
		}(entry)
	}

	wg.Wait()
	return result, batchErr
}

// processEntry resolves one entry. The boolean is true when the entry was
// upserted into the catalog and false when it landed in the rejection ledger.
func (i *Ingester) processEntry(ctx context.Context, entry domain.FrontierEntry) (bool, error) {
	outcome := i.extractor.Extract(ctx, entry)

	switch outcome.Kind {
	case domain.OutcomeVehicle:
		return i.ingestVehicle(ctx, entry, outcome.Record)
	case domain.OutcomeNotVehicle:
		return false, i.reject(ctx, entry, domain.RejectionNonVehicle, outcome.Detail)
	case domain.OutcomeNavigationFailed:
		return false, i.reject(ctx, entry, domain.RejectionNavigationFailed, outcome.Detail)
	default:
		return false, fmt.Errorf("unknown extraction outcome %d for %s", outcome.Kind, entry.Reference)
	}
}

func (i *Ingester) ingestVehicle(ctx context.Context, entry domain.FrontierEntry, record *domain.VehicleRecord) (bool, error) {
	if !Usable(record) {
		return false, i.reject(ctx, entry, domain.RejectionInvalidData, "record lacks make and title")
	}

	listing := BuildListing(entry, record)
	if err := i.catalog.Upsert(ctx, listing); err != nil {
		return false, fmt.Errorf("upsert: %w", err)
	}

	if err := i.frontier.Delete(ctx, entry.Source, entry.Reference); err != nil {
		return false, fmt.Errorf("dequeue after upsert: %w", err)
	}

	i.metrics.ListingsIngested.WithLabelValues(entry.Source).Inc()
	return true, nil
}

func (i *Ingester) reject(ctx context.Context, entry domain.FrontierEntry, reason domain.RejectionReason, detail string) error {
	var notes *string
	if detail != "" {
		notes = &detail
	}

	inserted, err := i.ledger.Insert(ctx, entry.Reference, reason, notes)
	if err != nil {
		return fmt.Errorf("record rejection: %w", err)
	}

	if err := i.frontier.Delete(ctx, entry.Source, entry.Reference); err != nil {
		return fmt.Errorf("dequeue after rejection: %w", err)
	}

	if inserted {
		i.metrics.ReferencesRejected.WithLabelValues(string(reason)).Inc()
		i.logger.Debug("Rejected reference",
			"source", entry.Source, "reference", entry.Reference, "reason", reason)
	}

	return nil
}
