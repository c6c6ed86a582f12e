package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/nordbil/carcatalog/internal/metrics"
)

func TestNew(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	assert.NotNil(t, m)
	assert.NotNil(t, m.FrontierEnqueued)
	assert.NotNil(t, m.JobRuns)
}

func TestCounters(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	m.FrontierEnqueued.Add(3)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.FrontierEnqueued))

	m.FrontierDropped.WithLabelValues(metrics.DropCauseMalformed).Inc()
	m.FrontierDropped.WithLabelValues(metrics.DropCauseDuplicate).Inc()
	m.FrontierDropped.WithLabelValues(metrics.DropCauseDuplicate).Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FrontierDropped.WithLabelValues(metrics.DropCauseMalformed)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.FrontierDropped.WithLabelValues(metrics.DropCauseDuplicate)))

	m.ListingsDeleted.WithLabelValues(metrics.DeleteCauseAggregator).Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ListingsDeleted.WithLabelValues(metrics.DeleteCauseAggregator)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ListingsDeleted.WithLabelValues(metrics.DeleteCauseExactMatch)))
}

func TestSeparateRegistries(t *testing.T) {
	a := metrics.New(prometheus.NewRegistry())
	b := metrics.New(prometheus.NewRegistry())

	a.ListingsDeactivated.Add(5)
	assert.Equal(t, 5.0, testutil.ToFloat64(a.ListingsDeactivated))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.ListingsDeactivated))
}
