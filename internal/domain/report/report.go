// Package report holds the frozen result of a scan.
//
// A Report bundles one or more named frequency maps with scan metadata. It
// has no mutators: accessors hand out copies, so a Report can be passed to
// printers and writers without further coordination.
package report

import (
	"fmt"

	"github.com/corey/tally/internal/domain/freq"
)

// ErrorCount is the count recorded for a pattern that failed to compile
// under the sentinel policy.
const ErrorCount = -1

// Mode records which orchestrator produced a report.
type Mode int

const (
	LineMode Mode = iota
	BulkMode
)

func (m Mode) String() string {
	switch m {
	case LineMode:
		return "line"
	case BulkMode:
		return "bulk"
	default:
		return "unknown"
	}
}

// ModeFromName parses the String form of a Mode.
func ModeFromName(s string) (Mode, error) {
	switch s {
	case "line":
		return LineMode, nil
	case "bulk":
		return BulkMode, nil
	default:
		return 0, fmt.Errorf("unknown report mode %q", s)
	}
}

// Entry is one key and its count.
type Entry = freq.Entry

// Failure names a declared pattern that could not be compiled.
type Failure struct {
	Name    string
	Message string
}

// Report is an immutable scan result.
type Report struct {
	mode              Mode
	names             []string
	maps              map[string]*freq.Map
	linesParsed       int
	patternsEvaluated int
	partial           bool
	failures          []Failure
}

// Mode returns the orchestrator that produced the report.
func (r *Report) Mode() Mode { return r.mode }

// Names returns the map names in declaration order.
func (r *Report) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Has reports whether a map with this name exists.
func (r *Report) Has(name string) bool {
	_, ok := r.maps[name]
	return ok
}

// SizeOf returns the number of distinct keys in a map; 0 for unknown names.
func (r *Report) SizeOf(name string) int {
	if m, ok := r.maps[name]; ok {
		return m.Len()
	}
	return 0
}

// Entries returns a map's key/count pairs in insertion order.
func (r *Report) Entries(name string) []Entry {
	if m, ok := r.maps[name]; ok {
		return m.Entries()
	}
	return nil
}

// Get returns the count of key in the named map.
func (r *Report) Get(name, key string) (int, bool) {
	if m, ok := r.maps[name]; ok {
		return m.Get(key)
	}
	return 0, false
}

// Total returns the sum of non-negative counts in a map.
func (r *Report) Total(name string) int {
	if m, ok := r.maps[name]; ok {
		return m.Total()
	}
	return 0
}

// LinesParsed is the number of lines read (line mode).
func (r *Report) LinesParsed() int { return r.linesParsed }

// PatternsEvaluated is the number of declared patterns (bulk mode).
func (r *Report) PatternsEvaluated() int { return r.patternsEvaluated }

// Partial reports whether the scan was cut short by cancellation.
func (r *Report) Partial() bool { return r.partial }

// Failures lists the patterns that failed to compile, in declaration order.
func (r *Report) Failures() []Failure {
	out := make([]Failure, len(r.failures))
	copy(out, r.failures)
	return out
}

// Builder assembles a Report. It is used by a single orchestrator run.
type Builder struct {
	r Report
}

// NewBuilder starts an empty report for mode.
func NewBuilder(mode Mode) *Builder {
	return &Builder{r: Report{mode: mode, maps: make(map[string]*freq.Map)}}
}

// Map returns the named map, creating it on first use.
func (b *Builder) Map(name string) *freq.Map {
	if m, ok := b.r.maps[name]; ok {
		return m
	}
	m := freq.New()
	b.r.maps[name] = m
	b.r.names = append(b.r.names, name)
	return m
}

// SetLinesParsed records the line counter.
func (b *Builder) SetLinesParsed(n int) { b.r.linesParsed = n }

// SetPatternsEvaluated records the pattern counter.
func (b *Builder) SetPatternsEvaluated(n int) { b.r.patternsEvaluated = n }

// MarkPartial flags the report as incomplete.
func (b *Builder) MarkPartial() { b.r.partial = true }

// AddFailure records a compile failure. A later failure for the same name
// replaces the earlier one in place.
func (b *Builder) AddFailure(name string, err error) {
	f := Failure{Name: name, Message: err.Error()}
	for i := range b.r.failures {
		if b.r.failures[i].Name == name {
			b.r.failures[i] = f
			return
		}
	}
	b.r.failures = append(b.r.failures, f)
}

// ClearFailure drops a recorded failure, used when a later pattern with the
// same name compiles and overwrites it.
func (b *Builder) ClearFailure(name string) {
	for i := range b.r.failures {
		if b.r.failures[i].Name == name {
			b.r.failures = append(b.r.failures[:i], b.r.failures[i+1:]...)
			return
		}
	}
}

// Build freezes the current state into a Report. The builder may keep
// being used; later changes don't affect reports already built.
func (b *Builder) Build() *Report {
	r := b.r
	r.names = append([]string(nil), b.r.names...)
	r.failures = append([]Failure(nil), b.r.failures...)
	r.maps = make(map[string]*freq.Map, len(b.r.maps))
	for name, m := range b.r.maps {
		r.maps[name] = m.Clone()
	}
	return &r
}
