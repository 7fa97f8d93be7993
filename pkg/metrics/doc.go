/*
Package metrics provides Prometheus metrics collection and exposition
for the server: entity registry cache/load/save counters, freelist
occupancy gauges, FDB read/write latency histograms, and scheduler
queue depth.

# Architecture

	┌──────────────────── METRICS SYSTEM ──────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │          Prometheus Registry                │          │
	│  │  - Global DefaultRegistry                   │          │
	│  │  - MustRegister at package init             │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │           Metric Categories                 │          │
	│  │                                              │          │
	│  │  Entity: cache size, load/save result        │          │
	│  │  Freelist: free extents, free units          │          │
	│  │  FDB: read/write duration                    │          │
	│  │  Scheduler: pending tasks, wakeups           │          │
	│  └────────────────────────────────────────────┘           │
	└────────────────────────────────────────────────────────┘

# Usage

	timer := metrics.NewTimer()
	// ... do the FDB write ...
	timer.ObserveDurationVec(metrics.FDBWriteDuration, domain)

	metrics.EntityLoadsTotal.WithLabelValues("rooms", "hit").Inc()
	metrics.EntityCacheSize.WithLabelValues("rooms").Set(float64(registry.CacheSize()))

The admin HTTP server (pkg/health) mounts metrics.Handler() at /metrics.

# Design Patterns

All metric variables are package-level and registered once in init(), the
standard client_golang idiom: components that want to record a metric
import this package and call into the relevant collector directly rather
than threading a registry handle through every constructor.

# See Also

  - https://github.com/prometheus/client_golang
  - https://prometheus.io/docs/practices/naming/
*/
package metrics
