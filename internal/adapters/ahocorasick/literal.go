// Package ahocorasick finds fixed strings using an Aho-Corasick automaton.
// It wraps the petar-dambovaliev/aho-corasick library for O(n + m) matching.
package ahocorasick

import (
	"errors"

	"github.com/corey/tally/internal/ports"
	aho "github.com/petar-dambovaliev/aho-corasick"
)

var errEmptyLiteral = errors.New("literal is empty")

// Literal matches one fixed string. It satisfies ports.SpanFinder so the
// pattern compiler can use it in place of a quoted regex.
//
// Matches are leftmost and non-overlapping: after a match the search
// resumes at its end, the same as the regex engine.
type Literal struct {
	automaton aho.AhoCorasick
	text      string
}

var _ ports.SpanFinder = (*Literal)(nil)

// NewLiteral builds an automaton for text.
func NewLiteral(text string) (*Literal, error) {
	if text == "" {
		return nil, errEmptyLiteral
	}
	builder := aho.NewAhoCorasickBuilder(aho.Opts{
		MatchKind: aho.LeftMostFirstMatch,
		DFA:       true,
	})
	return &Literal{
		automaton: builder.Build([]string{text}),
		text:      text,
	}, nil
}

// Factory adapts NewLiteral to pattern.LiteralFactory.
func Factory(text string) (ports.SpanFinder, error) {
	return NewLiteral(text)
}

// Text returns the string being searched for.
func (l *Literal) Text() string { return l.text }

// FindAllStringIndex returns [start, end] for up to n matches in s; n < 0
// means all of them.
func (l *Literal) FindAllStringIndex(s string, n int) [][]int {
	if n == 0 || len(s) < len(l.text) {
		return nil
	}
	matches := l.automaton.FindAll(s)
	if len(matches) == 0 {
		return nil
	}
	// The automaton reports overlapping occurrences of the same needle
	// ("aa" in "aaaa" at 0, 1 and 2). Keep each one only if it starts at or
	// after the end of the last kept match.
	out := make([][]int, 0, len(matches))
	end := 0
	for _, m := range matches {
		if m.Start() < end {
			continue
		}
		out = append(out, []int{m.Start(), m.End()})
		end = m.End()
		if n > 0 && len(out) == n {
			break
		}
	}
	return out
}

// FindAllStringSubmatchIndex is FindAllStringIndex; a literal has no groups.
func (l *Literal) FindAllStringSubmatchIndex(s string, n int) [][]int {
	return l.FindAllStringIndex(s, n)
}

// NumSubexp is always 0.
func (l *Literal) NumSubexp() int { return 0 }
