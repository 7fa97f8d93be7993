package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	EntityCacheSize = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "boris_entity_cache_size",
			Help: "Entities currently cached, by domain",
		},
		[]string{"domain"},
	)

	EntityLoadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boris_entity_loads_total",
			Help: "Entity load attempts by domain and result (hit, miss, not_found, malformed)",
		},
		[]string{"domain", "result"},
	)

	EntitySavesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boris_entity_saves_total",
			Help: "Entity save attempts by domain and result (ok, error)",
		},
		[]string{"domain", "result"},
	)

	FreelistFreeExtents = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "boris_freelist_free_extents",
			Help: "Free extents remaining in a domain's id pool",
		},
		[]string{"domain"},
	)

	FreelistFreeUnits = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "boris_freelist_free_units",
			Help: "Sum of free extent lengths in a domain's id pool",
		},
		[]string{"domain"},
	)

	FDBWriteDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "boris_fdb_write_duration_seconds",
			Help:    "Time taken to commit a record write, by domain",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"domain"},
	)

	FDBReadDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "boris_fdb_read_duration_seconds",
			Help:    "Time taken to read and parse a record, by domain",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"domain"},
	)

	SchedulerPendingTasks = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "boris_scheduler_pending_tasks",
			Help: "Current size of the scheduler's priority queue",
		},
	)

	SchedulerWakeupsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "boris_scheduler_wakeups_total",
			Help: "Total number of scheduled tasks woken up",
		},
	)
)

func init() {
	prometheus.MustRegister(EntityCacheSize)
	prometheus.MustRegister(EntityLoadsTotal)
	prometheus.MustRegister(EntitySavesTotal)
	prometheus.MustRegister(FreelistFreeExtents)
	prometheus.MustRegister(FreelistFreeUnits)
	prometheus.MustRegister(FDBWriteDuration)
	prometheus.MustRegister(FDBReadDuration)
	prometheus.MustRegister(SchedulerPendingTasks)
	prometheus.MustRegister(SchedulerWakeupsTotal)
}

// Handler returns the Prometheus HTTP handler for /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations against a histogram.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer, started now.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the elapsed duration to histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the elapsed duration to a histogram vec with
// labels, e.g. the domain a read or write belongs to.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
