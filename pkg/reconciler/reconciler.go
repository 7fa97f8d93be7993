package reconciler

import (
	"sync"
	"time"

	"github.com/duskhold/boris/pkg/log"
	"github.com/duskhold/boris/pkg/metrics"
	"github.com/rs/zerolog"
)

// Registry is the subset of entity.Registry[T] the reconciler sweeps. It
// never mutates an entity — only observes cache occupancy and dirty
// entries. This is observability, not garbage collection.
type Registry interface {
	Domain() string
	CacheSize() int
	DirtyIDs() []uint64
}

// Reconciler periodically sweeps a set of entity registries, reporting
// cache size as a metric and warning when an
// entity has stayed dirty across more than one sweep interval — a sign
// its owning task never released it.
type Reconciler struct {
	registries []Registry
	interval   time.Duration
	logger     zerolog.Logger
	mu         sync.Mutex
	stopCh     chan struct{}
	prevDirty  map[string]map[uint64]bool
}

// New creates a Reconciler that sweeps registries every interval.
func New(interval time.Duration, registries ...Registry) *Reconciler {
	return &Reconciler{
		registries: registries,
		interval:   interval,
		logger:     log.WithComponent("reconciler"),
		stopCh:     make(chan struct{}),
		prevDirty:  make(map[string]map[uint64]bool),
	}
}

// Start begins the sweep loop.
func (r *Reconciler) Start() {
	go r.run()
}

// Stop halts the sweep loop.
func (r *Reconciler) Stop() {
	close(r.stopCh)
}

func (r *Reconciler) run() {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info().Dur("interval", r.interval).Msg("reconciler started")

	for {
		select {
		case <-ticker.C:
			r.sweep()
		case <-r.stopCh:
			r.logger.Info().Msg("reconciler stopped")
			return
		}
	}
}

// sweep performs one pass over every registry.
func (r *Reconciler) sweep() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, reg := range r.registries {
		domain := reg.Domain()
		metrics.EntityCacheSize.WithLabelValues(domain).Set(float64(reg.CacheSize()))

		dirty := reg.DirtyIDs()
		dirtySet := make(map[uint64]bool, len(dirty))
		for _, id := range dirty {
			dirtySet[id] = true
			if r.prevDirty[domain][id] {
				r.logger.Warn().
					Str("domain", domain).
					Uint64("entity_id", id).
					Msg("entity has been dirty for more than one reconciler interval")
			}
		}
		r.prevDirty[domain] = dirtySet
	}
}
