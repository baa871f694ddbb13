// Package scan runs a compiled pattern over a span of text and yields its
// matches as records.
//
// Matching is leftmost-first and non-overlapping: after a match ending at
// offset e the next search starts at e. An empty match directly after the
// previous match is not reported (regexp.FindAll semantics). Text is matched
// as-is: case-sensitive, no trimming, anchors exactly as written.
package scan

import (
	"iter"

	"github.com/corey/tally/internal/domain/pattern"
)

// MatchRecord is one located occurrence. It is transient: callers fold it
// into a frequency map and drop it.
type MatchRecord struct {
	Start int    // byte offset of the match within the scanned span
	End   int    // exclusive
	Key   string // whole match, or the selected group's text
	Line  int    // 1-based source line in line mode; 0 for a whole document
}

// Scan yields the matches of m in text. The span is a whole document, so
// Start is the absolute offset in that document.
func Scan(m *pattern.Matcher, text string) iter.Seq[MatchRecord] {
	return ScanLine(m, text, 0)
}

// ScanLine yields the matches of m in a single line, stamped with its line number.
//
// The sequence is finite and restartable: every iteration searches text
// afresh. Occurrences whose selected group did not participate are skipped.
func ScanLine(m *pattern.Matcher, text string, line int) iter.Seq[MatchRecord] {
	return func(yield func(MatchRecord) bool) {
		group := m.Group()
		for _, loc := range m.FindAll(text) {
			rec, ok := record(group, text, loc)
			if !ok {
				continue
			}
			rec.Line = line
			if !yield(rec) {
				return
			}
		}
	}
}

// Count returns the number of records Scan would yield, without building keys.
func Count(m *pattern.Matcher, text string) int {
	locs := m.FindAll(text)
	group := m.Group()
	if group <= 0 {
		return len(locs)
	}
	n := 0
	for _, loc := range locs {
		if participated(group, loc) {
			n++
		}
	}
	return n
}

func record(group int, text string, loc []int) (MatchRecord, bool) {
	rec := MatchRecord{Start: loc[0], End: loc[1]}
	if group <= 0 {
		rec.Key = text[loc[0]:loc[1]]
		return rec, true
	}
	if !participated(group, loc) {
		return rec, false
	}
	rec.Key = text[loc[2*group]:loc[2*group+1]]
	return rec, true
}

func participated(group int, loc []int) bool {
	return 2*group+1 < len(loc) && loc[2*group] >= 0
}
