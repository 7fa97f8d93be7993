// Package pqueue implements a fixed-capacity binary min-heap priority
// queue keyed by a 64-bit deadline, used by the scheduler (pkg/scheduler)
// to order cooperative wake-ups. It has no knowledge of entities or any
// other component in this repository.
package pqueue

import "fmt"

// Element is one queued item: a deadline key and an opaque payload.
type Element struct {
	Deadline int64
	Payload  any
}

// Heap is a fixed-capacity min-heap of Element ordered by Deadline.
type Heap struct {
	items    []Element
	capacity int
}

// New creates a Heap with room for at most capacity elements.
func New(capacity int) *Heap {
	if capacity < 1 {
		panic("pqueue: capacity must be >= 1")
	}
	return &Heap{items: make([]Element, 0, capacity), capacity: capacity}
}

// Len returns the number of queued elements.
func (h *Heap) Len() int {
	return len(h.items)
}

// Cap returns the heap's fixed capacity.
func (h *Heap) Cap() int {
	return h.capacity
}

// Enqueue inserts elm, sifting it up until the heap property holds. It
// reports false without modifying the heap if the heap is already at
// capacity — enqueuing past capacity is a contract violation the caller
// must not commit (§7: ContractViolation).
func (h *Heap) Enqueue(elm Element) bool {
	if len(h.items) >= h.capacity {
		return false
	}
	h.items = append(h.items, elm)
	h.siftUp(len(h.items) - 1)
	return true
}

// Dequeue removes and returns the minimum-deadline element. It reports
// false if the heap is empty.
func (h *Heap) Dequeue() (Element, bool) {
	if len(h.items) == 0 {
		return Element{}, false
	}
	return h.Cancel(0)
}

// Peek returns the minimum-deadline element without removing it.
func (h *Heap) Peek() (Element, bool) {
	if len(h.items) == 0 {
		return Element{}, false
	}
	return h.items[0], true
}

// Cancel removes the element at index, moving the last element into the
// hole and sifting in whichever direction restores the heap property. It
// reports false, leaving the heap unchanged, if index is out of range.
func (h *Heap) Cancel(index int) (Element, bool) {
	n := len(h.items)
	if index < 0 || index >= n {
		return Element{}, false
	}
	removed := h.items[index]
	last := n - 1
	h.items[index] = h.items[last]
	h.items = h.items[:last]

	if index < len(h.items) {
		// The moved element may need to go either way to restore the
		// heap property.
		parent := (index - 1) / 2
		if index > 0 && h.items[index].Deadline < h.items[parent].Deadline {
			h.siftUp(index)
		} else {
			h.siftDown(index)
		}
	}
	return removed, true
}

// Find performs a linear scan for the first element whose Payload equals
// payload (using ==), returning its index. Used to implement cancellation
// of a timer from outside the heap (spec §4.3/§5).
func (h *Heap) Find(payload any) (int, bool) {
	for i, e := range h.items {
		if e.Payload == payload {
			return i, true
		}
	}
	return -1, false
}

func (h *Heap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h.items[parent].Deadline <= h.items[i].Deadline {
			break
		}
		h.items[parent], h.items[i] = h.items[i], h.items[parent]
		i = parent
	}
}

func (h *Heap) siftDown(i int) {
	n := len(h.items)
	for {
		left := 2*i + 1
		right := 2*i + 2
		smallest := i
		if left < n && h.items[left].Deadline < h.items[smallest].Deadline {
			smallest = left
		}
		if right < n && h.items[right].Deadline < h.items[smallest].Deadline {
			smallest = right
		}
		if smallest == i {
			return
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}

// Validate checks the heap property holds for every index; it exists for
// tests, mirroring the validator the source this was distilled from keeps
// for its own test suite.
func (h *Heap) Validate() error {
	for i := 1; i < len(h.items); i++ {
		parent := (i - 1) / 2
		if h.items[parent].Deadline > h.items[i].Deadline {
			return fmt.Errorf("pqueue: heap property violated at index %d (parent %d)", i, parent)
		}
	}
	return nil
}
