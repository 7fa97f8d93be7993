package pqueue

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHeapOrder enqueues an unordered set of deadlines and checks they
// dequeue back out in ascending order.
func TestHeapOrder(t *testing.T) {
	h := New(16)
	keys := []int64{42, 2, 123, 88, 3, 1, 0}
	for _, k := range keys {
		require.True(t, h.Enqueue(Element{Deadline: k}))
	}

	want := []int64{0, 1, 2, 3, 42, 88, 123}
	for _, w := range want {
		e, ok := h.Dequeue()
		require.True(t, ok)
		assert.Equal(t, w, e.Deadline)
	}
	_, ok := h.Dequeue()
	assert.False(t, ok)
}

func TestEnqueueFullReportsFalse(t *testing.T) {
	h := New(2)
	require.True(t, h.Enqueue(Element{Deadline: 1}))
	require.True(t, h.Enqueue(Element{Deadline: 2}))
	assert.False(t, h.Enqueue(Element{Deadline: 3}))
	assert.Equal(t, 2, h.Len())
}

func TestDequeueOrderRandomized(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	const n = 200
	h := New(n)

	var keys []int64
	for i := 0; i < n; i++ {
		k := r.Int63n(1000)
		keys = append(keys, k)
		require.True(t, h.Enqueue(Element{Deadline: k}))
		require.NoError(t, h.Validate())
	}

	var prev int64 = -1
	for i := 0; i < n; i++ {
		e, ok := h.Dequeue()
		require.True(t, ok)
		assert.GreaterOrEqual(t, e.Deadline, prev)
		prev = e.Deadline
		require.NoError(t, h.Validate())
	}
}

func TestFindAndCancel(t *testing.T) {
	h := New(8)
	type payload struct{ id int }
	p1 := &payload{1}
	p2 := &payload{2}

	h.Enqueue(Element{Deadline: 10, Payload: p1})
	h.Enqueue(Element{Deadline: 5, Payload: p2})

	idx, ok := h.Find(p2)
	require.True(t, ok)

	_, ok = h.Cancel(idx)
	require.True(t, ok)
	require.NoError(t, h.Validate())

	_, found := h.Find(p2)
	assert.False(t, found, "cancelled payload must no longer be findable")

	_, found = h.Find(p1)
	assert.True(t, found)
}

func TestCancelMaintainsHeapProperty(t *testing.T) {
	h := New(16)
	keys := []int64{5, 3, 8, 1, 9, 2, 7, 4, 6}
	for _, k := range keys {
		h.Enqueue(Element{Deadline: k})
	}

	// Cancel an arbitrary middle element and re-validate after every step.
	for h.Len() > 0 {
		_, ok := h.Cancel(h.Len() / 2)
		require.True(t, ok)
		require.NoError(t, h.Validate())
	}
}

func TestPeekDoesNotRemove(t *testing.T) {
	h := New(4)
	h.Enqueue(Element{Deadline: 5})
	e, ok := h.Peek()
	require.True(t, ok)
	assert.Equal(t, int64(5), e.Deadline)
	assert.Equal(t, 1, h.Len())
}
