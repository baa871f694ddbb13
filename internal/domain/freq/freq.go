// Package freq accumulates occurrence counts per key.
//
// A Map pairs a hash lookup with an explicit insertion-order slice, so
// reporting order never depends on Go's map iteration order. Counts only
// depend on which keys were folded in, not on the order they arrived.
package freq

import (
	"iter"
	"strings"

	"github.com/corey/tally/internal/domain/scan"
)

// Entry is one key and its count.
type Entry struct {
	Key   string
	Count int
}

// Map is an insertion-ordered frequency map. The zero value is not usable;
// call New. A Map is not safe for concurrent mutation: give each worker its
// own Map and Merge afterwards.
type Map struct {
	counts map[string]int
	order  []string
}

// New returns an empty Map.
func New() *Map {
	return &Map{counts: make(map[string]int)}
}

// Fold counts every record's key into a fresh Map.
// Folding an empty sequence yields an empty Map.
func Fold(records iter.Seq[scan.MatchRecord]) *Map {
	m := New()
	m.FoldFrom(records)
	return m
}

// FoldFrom adds every record's key to m and returns how many records it consumed.
func (m *Map) FoldFrom(records iter.Seq[scan.MatchRecord]) int {
	n := 0
	for rec := range records {
		m.Add(rec.Key)
		n++
	}
	return n
}

// Add increments key by one, inserting it with count 1 on first sight.
func (m *Map) Add(key string) int {
	return m.AddN(key, 1)
}

// AddN increments key by n. Non-positive n is ignored so that every stored
// count stays at least 1.
func (m *Map) AddN(key string, n int) int {
	if n <= 0 {
		return m.counts[key]
	}
	c, ok := m.counts[key]
	if !ok {
		// Keys are usually substrings of a whole line or document; copy so
		// the map doesn't pin the source text.
		key = strings.Clone(key)
		m.order = append(m.order, key)
	}
	c += n
	m.counts[key] = c
	return c
}

// Set stores n for key, replacing any previous count. A key keeps the
// position of its first insertion. Used for per-pattern totals, where zero
// and sentinel values are legitimate.
func (m *Map) Set(key string, n int) {
	if _, ok := m.counts[key]; !ok {
		key = strings.Clone(key)
		m.order = append(m.order, key)
	}
	m.counts[key] = n
}

// Delete removes key. A later Add or Set appends it at the end again.
func (m *Map) Delete(key string) {
	if _, ok := m.counts[key]; !ok {
		return
	}
	delete(m.counts, key)
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// Get returns the count for key.
func (m *Map) Get(key string) (int, bool) {
	c, ok := m.counts[key]
	return c, ok
}

// Len returns the number of distinct keys.
func (m *Map) Len() int { return len(m.order) }

// Total returns the sum of all non-negative counts.
func (m *Map) Total() int {
	total := 0
	for _, c := range m.counts {
		if c > 0 {
			total += c
		}
	}
	return total
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Entries returns key/count pairs in insertion order.
func (m *Map) Entries() []Entry {
	out := make([]Entry, len(m.order))
	for i, k := range m.order {
		out[i] = Entry{Key: k, Count: m.counts[k]}
	}
	return out
}

// All iterates key/count pairs in insertion order.
func (m *Map) All() iter.Seq2[string, int] {
	return func(yield func(string, int) bool) {
		for _, k := range m.order {
			if !yield(k, m.counts[k]) {
				return
			}
		}
	}
}

// Merge adds other's counts into m. Keys new to m are appended in other's order.
func (m *Map) Merge(other *Map) {
	for _, k := range other.order {
		m.AddN(k, other.counts[k])
	}
}

// Clone returns an independent copy.
func (m *Map) Clone() *Map {
	c := &Map{
		counts: make(map[string]int, len(m.counts)),
		order:  make([]string, len(m.order)),
	}
	copy(c.order, m.order)
	for k, v := range m.counts {
		c.counts[k] = v
	}
	return c
}
