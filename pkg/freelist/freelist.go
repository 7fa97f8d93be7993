// Package freelist implements a sparse integer-range allocator: an ordered
// sequence of disjoint, non-adjacent extents representing the free side of
// an allocator's complement. It backs entity id assignment (§4.5 of the
// spec this repository implements) and, historically in the source this
// was distilled from, on-disk block extents — a use this package does not
// revive (see the Open Question in the design notes).
package freelist

import (
	"fmt"
	"sort"
)

// Extent is a contiguous (offset, length) range, length >= 1.
type Extent struct {
	Offset uint64
	Length uint64
}

// End returns the first offset past the extent.
func (e Extent) End() uint64 {
	return e.Offset + e.Length
}

// Freelist is an ordered, disjoint, non-adjacent set of free Extents.
type Freelist struct {
	extents []Extent
}

// New creates a Freelist seeded with a single free extent [start, start+count).
// A zero count yields an empty freelist.
func New(start, count uint64) *Freelist {
	fl := &Freelist{}
	if count > 0 {
		fl.extents = []Extent{{Offset: start, Length: count}}
	}
	return fl
}

// Extents returns the free extents in offset order. The caller must not
// mutate the returned slice.
func (fl *Freelist) Extents() []Extent {
	return fl.extents
}

// FreeUnits returns the sum of all free extent lengths.
func (fl *Freelist) FreeUnits() uint64 {
	var total uint64
	for _, e := range fl.extents {
		total += e.Length
	}
	return total
}

// Alloc returns the offset of the first free extent with length >= count
// (first-fit), trimming or removing that extent. It reports false if no
// extent is large enough. count must be >= 1.
func (fl *Freelist) Alloc(count uint64) (uint64, bool) {
	if count < 1 {
		panic("freelist: alloc of zero count")
	}
	for i := range fl.extents {
		if fl.extents[i].Length >= count {
			offset := fl.extents[i].Offset
			if fl.extents[i].Length == count {
				fl.extents = append(fl.extents[:i], fl.extents[i+1:]...)
			} else {
				fl.extents[i].Offset += count
				fl.extents[i].Length -= count
			}
			return offset, true
		}
	}
	return 0, false
}

// Pool inserts the free range [ofs, ofs+count) back into the freelist,
// coalescing with adjacent extents (bridge, grow-next, grow-prev) or
// inserting a fresh entry (normal/end/initial). Pool panics if the new
// range overlaps an existing free extent — that is a contract violation,
// not a recoverable error.
func (fl *Freelist) Pool(ofs, count uint64) {
	if count < 1 {
		panic("freelist: pool of zero count")
	}
	newEnd := ofs + count

	insertAt := sort.Search(len(fl.extents), func(i int) bool {
		return fl.extents[i].Offset >= ofs
	})

	predIdx := -1
	if insertAt > 0 {
		predIdx = insertAt - 1
	}
	succIdx := -1
	if insertAt < len(fl.extents) {
		succIdx = insertAt
	}

	if predIdx >= 0 && fl.extents[predIdx].End() > ofs {
		panic(fmt.Sprintf("freelist: pool(%d,%d) overlaps extent [%d,%d)", ofs, count, fl.extents[predIdx].Offset, fl.extents[predIdx].End()))
	}
	if succIdx >= 0 && fl.extents[succIdx].Offset < newEnd {
		panic(fmt.Sprintf("freelist: pool(%d,%d) overlaps extent [%d,%d)", ofs, count, fl.extents[succIdx].Offset, fl.extents[succIdx].End()))
	}

	bridgesPrev := predIdx >= 0 && fl.extents[predIdx].End() == ofs
	bridgesNext := succIdx >= 0 && fl.extents[succIdx].Offset == newEnd

	switch {
	case bridgesPrev && bridgesNext:
		// bridge: the three ranges coalesce into one; the successor is freed.
		fl.extents[predIdx].Length = fl.extents[succIdx].End() - fl.extents[predIdx].Offset
		fl.extents = append(fl.extents[:succIdx], fl.extents[succIdx+1:]...)
	case bridgesPrev:
		// grow-prev: extend the predecessor upward.
		fl.extents[predIdx].Length += count
	case bridgesNext:
		// grow-next: extend the successor downward.
		fl.extents[succIdx].Offset = ofs
		fl.extents[succIdx].Length += count
	default:
		// normal/end/initial: insert a fresh entry.
		fl.extents = append(fl.extents, Extent{})
		copy(fl.extents[insertAt+1:], fl.extents[insertAt:])
		fl.extents[insertAt] = Extent{Offset: ofs, Length: count}
	}
}

// Thwack removes the sub-range [ofs, ofs+count) which must lie wholly
// inside a single existing free extent, reserving it as in-use. It
// reports false if no single extent encloses the range.
func (fl *Freelist) Thwack(ofs, count uint64) bool {
	if count < 1 {
		panic("freelist: thwack of zero count")
	}
	end := ofs + count

	for i := range fl.extents {
		e := fl.extents[i]
		if e.Offset <= ofs && end <= e.End() {
			switch {
			case e.Offset == ofs && end == e.End():
				fl.extents = append(fl.extents[:i], fl.extents[i+1:]...)
			case e.Offset == ofs:
				fl.extents[i].Offset = end
				fl.extents[i].Length = e.End() - end
			case end == e.End():
				fl.extents[i].Length = ofs - e.Offset
			default:
				left := Extent{Offset: e.Offset, Length: ofs - e.Offset}
				right := Extent{Offset: end, Length: e.End() - end}
				fl.extents[i] = left
				fl.extents = append(fl.extents, Extent{})
				copy(fl.extents[i+2:], fl.extents[i+1:])
				fl.extents[i+1] = right
			}
			return true
		}
	}
	return false
}

// Validate checks that the ordering invariant of §3 holds: extents are
// sorted, disjoint, non-adjacent, and each has length >= 1. It exists for
// tests and debug assertions, not for production control flow.
func (fl *Freelist) Validate() error {
	for i, e := range fl.extents {
		if e.Length < 1 {
			return fmt.Errorf("freelist: extent %d has length %d", i, e.Length)
		}
		if i > 0 && fl.extents[i-1].End() >= e.Offset {
			return fmt.Errorf("freelist: extent %d [%d,%d) is not strictly before extent %d [%d,%d)",
				i-1, fl.extents[i-1].Offset, fl.extents[i-1].End(), i, e.Offset, e.End())
		}
	}
	return nil
}
