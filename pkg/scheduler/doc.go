/*
Package scheduler implements a cooperative scheduler of sleeping tasks,
built on pkg/pqueue. A goroutine that wants to wait calls Sleep or After;
a single driver goroutine wakes it (and any other tasks due at the same
time) by closing a per-call channel once its deadline has elapsed.

# Usage

	sched := scheduler.New(1024)
	sched.Start()
	defer sched.Stop()

	if err := sched.After(ctx, 5*time.Second); err != nil {
		// ctx was cancelled before the deadline
	}

# Design

The driver loop peeks the heap root, arms a timer for its deadline, and
waits on either that timer, a "poke" signal sent by a fresh Sleep call
that may have inserted an earlier deadline, or Stop. Cancelling a Sleep
via its context removes the pending entry from the heap without closing
its channel — the caller is the one selecting on ctx.Done(), so it never
blocks waiting for a close that will not come.

Time is read through a clock.Clock (github.com/benbjohnson/clock)
rather than called directly, so tests can pass WithClock(clock.NewMock())
and drive deadline ordering by advancing the mock instead of sleeping on
the wall clock.
*/
package scheduler
