// Package metrics holds the Prometheus collectors of the meeting coordinator.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

// Metrics groups the coordinator collectors. A nil *Metrics records nothing.
type Metrics struct {
	operations *prometheus.CounterVec
	lockWait   prometheus.Histogram
	gatherer   prometheus.Gatherer
}

// New registers the collectors on a fresh registry (plus the Go and process
// collectors) so tests and multiple app instances never collide on the
// default registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegisterer(reg, reg)
}

// NewWithRegisterer registers the collectors on reg; gatherer backs Handler.
func NewWithRegisterer(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quickmatch",
			Name:      "operations_total",
			Help:      "Coordinator operations by operation name and outcome kind.",
		}, []string{"operation", "outcome"}),
		lockWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quickmatch",
			Name:      "meeting_lock_wait_seconds",
			Help:      "Time spent waiting for the per-meeting lock.",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 3},
		}),
		gatherer: gatherer,
	}
	reg.MustRegister(m.operations, m.lockWait)
	return m
}

// ObserveOperation counts one finished operation.
func (m *Metrics) ObserveOperation(operation, outcome string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, outcome).Inc()
}

// ObserveLockWait records how long a caller waited for a meeting lock.
func (m *Metrics) ObserveLockWait(d time.Duration) {
	if m == nil {
		return
	}
	m.lockWait.Observe(d.Seconds())
}

// OperationCount returns the current counter value, for tests.
func (m *Metrics) OperationCount(operation, outcome string) float64 {
	if m == nil {
		return 0
	}
	c, err := m.operations.GetMetricWithLabelValues(operation, outcome)
	if err != nil {
		return 0
	}
	var out dto.Metric
	if err := c.Write(&out); err != nil {
		return 0
	}
	return out.GetCounter().GetValue()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
