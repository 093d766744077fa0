// Package metrics instruments the engine with Prometheus counters and
// histograms, grounded on dreamsxin-wal's metrics.go (promauto.With(reg),
// CounterOpts/HistogramOpts) but scoped to this store's operations: sets,
// removes, gets, and compactions.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every counter/histogram the engine records into. A nil
// *Metrics is safe to call methods on (they become no-ops), so embedding
// the store never requires wiring Prometheus.
type Metrics struct {
	sets               prometheus.Counter
	removes            prometheus.Counter
	gets               prometheus.Counter
	compactions        prometheus.Counter
	bytesReclaimed     prometheus.Counter
	compactionDuration prometheus.Histogram
}

// New builds a Metrics registered against reg. Pass nil to use a private
// registry, so a store embedded alongside an application's own Prometheus
// registry never collides with it.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		sets: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "ignite_sets_total",
			Help: "ignite_sets_total counts successful Set operations.",
		}),
		removes: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "ignite_removes_total",
			Help: "ignite_removes_total counts successful Remove operations.",
		}),
		gets: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "ignite_gets_total",
			Help: "ignite_gets_total counts Get lookups, hit or miss.",
		}),
		compactions: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "ignite_compactions_total",
			Help: "ignite_compactions_total counts inline compactions run.",
		}),
		bytesReclaimed: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "ignite_bytes_reclaimed_total",
			Help: "ignite_bytes_reclaimed_total sums uncompacted bytes discarded by compaction.",
		}),
		compactionDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "ignite_compaction_duration_seconds",
			Help:    "ignite_compaction_duration_seconds observes how long each inline compaction took.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) RecordSet() {
	if m != nil {
		m.sets.Inc()
	}
}

func (m *Metrics) RecordRemove() {
	if m != nil {
		m.removes.Inc()
	}
}

func (m *Metrics) RecordGet() {
	if m != nil {
		m.gets.Inc()
	}
}

func (m *Metrics) RecordCompaction(durationSeconds float64, bytesReclaimed uint64) {
	if m == nil {
		return
	}
	m.compactions.Inc()
	m.bytesReclaimed.Add(float64(bytesReclaimed))
	m.compactionDuration.Observe(durationSeconds)
}
