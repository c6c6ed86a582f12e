// Package catalog hosts the maintenance operations that mutate the listing
// catalog outside the ingestion path: coordinated deletion and the staleness
// sweep.
package catalog

import (
	"context"
	"fmt"

	"github.com/nordbil/carcatalog/internal/domain"
	"github.com/nordbil/carcatalog/internal/imagestore"
	"github.com/nordbil/carcatalog/internal/logger"
	"github.com/nordbil/carcatalog/internal/metrics"
)

// RowDeleter removes a listing row from the catalog store.
type RowDeleter interface {
	Delete(ctx context.Context, id string) error
}

// Deleter is the single choke-point for removing catalog rows. Every dedup
// pass routes its deletions here so the image cleanup and metrics cascade
// apply uniformly.
type Deleter struct {
	catalog RowDeleter
	images  imagestore.Store
	logger  logger.Interface
	metrics *metrics.Metrics
}

// NewDeleter creates a deletion coordinator.
func NewDeleter(catalog RowDeleter, images imagestore.Store, log logger.Interface, m *metrics.Metrics) *Deleter {
	return &Deleter{
		catalog: catalog,
		images:  images,
		logger:  log.WithComponent("deleter"),
		metrics: m,
	}
}

// DeleteListing removes a catalog row and, when the row carries an image
// reference, issues exactly one best-effort image store delete first. An
// image store failure is logged and counted but never blocks row removal:
// an orphaned image is preferable to an un-deletable catalog row. The image
// call is not retried within this invocation.
func (d *Deleter) DeleteListing(ctx context.Context, listing *domain.Listing, cause string) error {
	if listing.ImageReference != nil {
		if err := d.images.Delete(ctx, *listing.ImageReference); err != nil {
			d.metrics.ImageDeleteFailures.Inc()
			d.logger.WithError(err).Warn("Image store delete failed, removing row anyway",
				"listing_id", listing.ID,
				"image_reference", *listing.ImageReference,
			)
		}
	}

	if err := d.catalog.Delete(ctx, listing.ID); err != nil {
		return fmt.Errorf("failed to delete listing %s: %w", listing.ID, err)
	}

	d.metrics.ListingsDeleted.WithLabelValues(cause).Inc()
	d.logger.Debug("Deleted listing",
		"listing_id", listing.ID,
		"source", listing.Source,
		"reference", listing.Reference,
		"cause", cause,
	)

	return nil
}
