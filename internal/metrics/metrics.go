// Package metrics exposes Prometheus metrics for the ingestion and
// maintenance pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all catalog Prometheus metrics.
type Metrics struct {
	// Frontier metrics
	FrontierEnqueued    prometheus.Counter
	FrontierReconfirmed prometheus.Counter
	FrontierDropped     *prometheus.CounterVec

	// Ingestion metrics
	ListingsIngested   *prometheus.CounterVec
	ReferencesRejected *prometheus.CounterVec

	// Maintenance metrics
	ListingsDeleted     *prometheus.CounterVec
	ListingsDeactivated prometheus.Counter
	ImageDeleteFailures prometheus.Counter

	// Orchestration metrics
	JobRuns *prometheus.CounterVec
}

// New creates catalog metrics registered on the given registerer.
// Tests pass a fresh prometheus.NewRegistry().
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		FrontierEnqueued: factory.NewCounter(prometheus.CounterOpts{
			Name: "carcatalog_frontier_enqueued_total",
			Help: "Total references added to the crawl frontier",
		}),
		FrontierReconfirmed: factory.NewCounter(prometheus.CounterOpts{
			Name: "carcatalog_frontier_reconfirmed_total",
			Help: "Total discoveries matching an already catalogued reference",
		}),
		FrontierDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "carcatalog_frontier_dropped_total",
			Help: "Total discoveries dropped during frontier merge",
		}, []string{"cause"}),
		ListingsIngested: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "carcatalog_listings_ingested_total",
			Help: "Total listings written to the catalog",
		}, []string{"source"}),
		ReferencesRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "carcatalog_references_rejected_total",
			Help: "Total references added to the rejection ledger",
		}, []string{"reason"}),
		ListingsDeleted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "carcatalog_listings_deleted_total",
			Help: "Total catalog rows removed, by deletion cause",
		}, []string{"cause"}),
		ListingsDeactivated: factory.NewCounter(prometheus.CounterOpts{
			Name: "carcatalog_listings_deactivated_total",
			Help: "Total listings deactivated by the staleness sweep",
		}),
		ImageDeleteFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "carcatalog_image_delete_failures_total",
			Help: "Total best-effort image store deletions that failed",
		}),
		JobRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "carcatalog_job_runs_total",
			Help: "Total job executions by terminal status",
		}, []string{"job", "status"}),
	}
}

// Deletion cause label values.
const (
	DeleteCauseWithinSource = "within_source"
	DeleteCauseAggregator   = "aggregator"
	DeleteCauseExactMatch   = "exact_match"
)

// Frontier drop cause label values.
const (
	DropCauseRejected  = "rejected"
	DropCauseMalformed = "malformed"
	DropCauseDuplicate = "duplicate"
)
