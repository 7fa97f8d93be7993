package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/duskhold/boris/pkg/log"
	"github.com/duskhold/boris/pkg/metrics"
	"github.com/duskhold/boris/pkg/pqueue"
	"github.com/rs/zerolog"
)

// Scheduler is a cooperative scheduler of sleeping tasks keyed by wake
// deadline, built directly on pkg/pqueue. It is the layer a game loop
// would drive tasks through — this package owns only the wake-up timing,
// not task execution.
type Scheduler struct {
	mu     sync.Mutex
	heap   *pqueue.Heap
	wake   chan struct{}
	stopCh chan struct{}
	logger zerolog.Logger
	clock  clock.Clock
}

// Option configures a Scheduler at construction time.
type Option func(*Scheduler)

// WithClock overrides the clock a Scheduler uses for deadlines and
// waits. Production code never needs this — it defaults to the real
// wall clock — but tests use it to drive the driver loop with
// clock.NewMock() instead of sleeping on wall-clock time.
func WithClock(c clock.Clock) Option {
	return func(s *Scheduler) {
		s.clock = c
	}
}

// New creates a Scheduler whose priority queue can hold at most capacity
// pending sleeps.
func New(capacity int, opts ...Option) *Scheduler {
	s := &Scheduler{
		heap:   pqueue.New(capacity),
		wake:   make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		logger: log.WithComponent("scheduler"),
		clock:  clock.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins the driver loop.
func (s *Scheduler) Start() {
	go s.run()
}

// Stop halts the driver loop. Tasks still parked in Sleep are left
// waiting on their own ctx; Stop does not cancel them.
func (s *Scheduler) Stop() {
	close(s.stopCh)
}

// Sleep parks the calling goroutine until the deadline or until ctx is
// done, whichever comes first. It returns ctx.Err() if ctx was the
// reason for waking.
func (s *Scheduler) Sleep(ctx context.Context, until time.Time) error {
	ch := make(chan struct{})
	elm := pqueue.Element{Deadline: until.UnixNano(), Payload: ch}

	s.mu.Lock()
	ok := s.heap.Enqueue(elm)
	s.mu.Unlock()
	if !ok {
		s.logger.Error().Msg("scheduler queue is full; cannot enqueue sleep")
		return context.DeadlineExceeded
	}
	metrics.SchedulerPendingTasks.Set(float64(s.pendingCount()))
	s.poke()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		s.cancel(ch)
		return ctx.Err()
	}
}

// After is Sleep(ctx, now+d).
func (s *Scheduler) After(ctx context.Context, d time.Duration) error {
	return s.Sleep(ctx, s.clock.Now().Add(d))
}

func (s *Scheduler) pendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.heap.Len()
}

// cancel removes the pending sleep identified by its channel payload, if
// it has not already fired. A task whose sleep fired concurrently with
// the ctx cancellation simply finds nothing to cancel here.
func (s *Scheduler) cancel(payload chan struct{}) {
	s.mu.Lock()
	idx, found := s.heap.Find(payload)
	if found {
		s.heap.Cancel(idx)
	}
	s.mu.Unlock()
	if found {
		metrics.SchedulerPendingTasks.Set(float64(s.pendingCount()))
	}
}

// poke wakes the driver loop so it can recompute its wait — used after an
// enqueue that might have inserted a new earliest deadline.
func (s *Scheduler) poke() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// run is the driver loop: peek the heap root, wait until its deadline (or
// until poked, or until stopped), then dequeue and release every element
// whose deadline has elapsed.
func (s *Scheduler) run() {
	timer := s.clock.Timer(0)
	<-timer.C // leave it expired and drained; nextWait always Resets from this state
	defer timer.Stop()

	for {
		hasWork := s.nextWait(timer)

		if !hasWork {
			select {
			case <-s.wake:
				continue
			case <-s.stopCh:
				return
			}
		}

		select {
		case <-timer.C:
			s.fireDue()
		case <-s.wake:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		case <-s.stopCh:
			return
		}
	}
}

// nextWait resets timer to fire at the current heap root's deadline and
// reports whether there is anything pending at all.
func (s *Scheduler) nextWait(timer *clock.Timer) bool {
	s.mu.Lock()
	elm, ok := s.heap.Peek()
	s.mu.Unlock()
	if !ok {
		return false
	}
	d := time.Unix(0, elm.Deadline).Sub(s.clock.Now())
	if d < 0 {
		d = 0
	}
	timer.Reset(d)
	return true
}

// fireDue dequeues and releases every element whose deadline has
// elapsed.
func (s *Scheduler) fireDue() {
	now := s.clock.Now().UnixNano()
	var fired []chan struct{}

	s.mu.Lock()
	for {
		elm, ok := s.heap.Peek()
		if !ok || elm.Deadline > now {
			break
		}
		elm, _ = s.heap.Dequeue()
		if ch, ok := elm.Payload.(chan struct{}); ok {
			fired = append(fired, ch)
		}
	}
	s.mu.Unlock()

	for _, ch := range fired {
		close(ch)
		metrics.SchedulerWakeupsTotal.Inc()
	}
	metrics.SchedulerPendingTasks.Set(float64(s.pendingCount()))
}
