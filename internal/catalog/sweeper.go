package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/nordbil/carcatalog/internal/logger"
	"github.com/nordbil/carcatalog/internal/metrics"
)

// StaleDeactivator is the catalog store surface the sweeper needs.
type StaleDeactivator interface {
	DeactivateStale(ctx context.Context, thresholdSeconds int64) (int64, error)
}

// Sweeper deactivates listings not reconfirmed within the freshness window.
// The sweep is monotonic (never activates a row) and idempotent beyond the
// first pass in a window, so it is safe to run any number of times per day.
type Sweeper struct {
	catalog StaleDeactivator
	logger  logger.Interface
	metrics *metrics.Metrics
}

// NewSweeper creates a staleness sweeper.
func NewSweeper(catalog StaleDeactivator, log logger.Interface, m *metrics.Metrics) *Sweeper {
	return &Sweeper{
		catalog: catalog,
		logger:  log.WithComponent("sweeper"),
		metrics: m,
	}
}

// Sweep deactivates every active listing whose last_seen_at is older than
// the threshold and returns the number of rows flipped.
func (s *Sweeper) Sweep(ctx context.Context, threshold time.Duration) (int64, error) {
	count, err := s.catalog.DeactivateStale(ctx, int64(threshold.Seconds()))
	if err != nil {
		return 0, fmt.Errorf("staleness sweep failed: %w", err)
	}

	s.metrics.ListingsDeactivated.Add(float64(count))
	if count > 0 {
		s.logger.Info("Deactivated stale listings", "count", count, "threshold", threshold)
	}

	return count, nil
}
