package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSleepFiresAtDeadline(t *testing.T) {
	s := New(8)
	s.Start()
	defer s.Stop()

	start := time.Now()
	err := s.Sleep(context.Background(), start.Add(50*time.Millisecond))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestAfterFiresApproximatelyOnSchedule(t *testing.T) {
	s := New(8)
	s.Start()
	defer s.Stop()

	start := time.Now()
	require.NoError(t, s.After(context.Background(), 30*time.Millisecond))
	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, 30*time.Millisecond)
	assert.Less(t, elapsed, 500*time.Millisecond)
}

func TestSleepCancelledByContext(t *testing.T) {
	s := New(8)
	s.Start()
	defer s.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- s.Sleep(ctx, time.Now().Add(time.Hour))
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Sleep did not return after context cancellation")
	}
}

func TestMultipleSleepersWakeInOrder(t *testing.T) {
	s := New(8)
	s.Start()
	defer s.Stop()

	var mu sync.Mutex
	var order []int
	start := time.Now()

	var wg sync.WaitGroup
	for i, delay := range []time.Duration{60, 20, 40} {
		i, delay := i, delay
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, s.Sleep(context.Background(), start.Add(delay*time.Millisecond)))
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, []int{1, 2, 0}, order)
}

// TestDeadlineOrderingWithFakeClock drives the driver loop with a mock
// clock instead of wall-clock sleeps: three sleepers are enqueued with
// deadlines relative to the mock's current time, then the mock is
// advanced past all of them in one step, and wake order is checked.
func TestDeadlineOrderingWithFakeClock(t *testing.T) {
	mock := clock.NewMock()
	s := New(8, WithClock(mock))
	s.Start()
	defer s.Stop()

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup

	delays := []time.Duration{60 * time.Millisecond, 20 * time.Millisecond, 40 * time.Millisecond}
	for i, d := range delays {
		i, d := i, d
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, s.Sleep(context.Background(), mock.Now().Add(d)))
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		}()
	}

	require.Eventually(t, func() bool {
		return s.pendingCount() == len(delays)
	}, time.Second, time.Millisecond, "all three sleepers must enqueue before the clock advances")

	mock.Add(60 * time.Millisecond)
	wg.Wait()

	assert.Equal(t, []int{1, 2, 0}, order)
}

func TestEnqueueBeyondCapacityFailsFast(t *testing.T) {
	s := New(1)
	s.Start()
	defer s.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = s.Sleep(ctx, time.Now().Add(time.Hour)) }()
	time.Sleep(20 * time.Millisecond) // let the first sleep occupy the one slot

	err := s.Sleep(context.Background(), time.Now().Add(time.Hour))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
