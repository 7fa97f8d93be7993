// Package attrlist implements the ordered, case-insensitive name/value list
// used by every entity for fields outside its fixed schema.
package attrlist

import "strings"

// Entry is a single name/value pair. Names are compared case-insensitively
// but stored with their original casing.
type Entry struct {
	Name  string
	Value string
}

// List is an ordered sequence of Entry with unique names under
// case-insensitive comparison. The zero value is an empty, usable list.
type List struct {
	entries []Entry
}

// New returns an empty List.
func New() *List {
	return &List{}
}

// Len returns the number of entries.
func (l *List) Len() int {
	return len(l.entries)
}

// Entries returns the entries in insertion order. The caller must not
// mutate the returned slice.
func (l *List) Entries() []Entry {
	return l.entries
}

// Find returns the entry matching name (case-insensitive) and whether it
// was found.
func (l *List) Find(name string) (Entry, bool) {
	if i := l.index(name); i >= 0 {
		return l.entries[i], true
	}
	return Entry{}, false
}

func (l *List) index(name string) int {
	for i, e := range l.entries {
		if strings.EqualFold(e.Name, name) {
			return i
		}
	}
	return -1
}

// Add appends name/value at the tail. It returns false if name already
// exists (case-insensitive) and leaves the list unchanged.
func (l *List) Add(name, value string) bool {
	if l.index(name) >= 0 {
		return false
	}
	l.entries = append(l.entries, Entry{Name: name, Value: value})
	return true
}

// SetOrAdd overwrites the value of an existing entry (preserving its
// original name and position) or appends a new one.
func (l *List) SetOrAdd(name, value string) {
	if i := l.index(name); i >= 0 {
		l.entries[i].Value = value
		return
	}
	l.entries = append(l.entries, Entry{Name: name, Value: value})
}

// Remove deletes the entry matching name, if present, preserving the order
// of the remaining entries. Reports whether anything was removed.
func (l *List) Remove(name string) bool {
	i := l.index(name)
	if i < 0 {
		return false
	}
	l.entries = append(l.entries[:i], l.entries[i+1:]...)
	return true
}

// Free empties the list.
func (l *List) Free() {
	l.entries = nil
}
