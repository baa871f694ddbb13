package ports

// SpanFinder locates every non-overlapping, leftmost-first match of a single
// compiled pattern. Results use the same layouts as regexp:
// FindAllStringIndex returns one [start, end) pair per match;
// FindAllStringSubmatchIndex also appends a pair per capture group, -1 for
// groups that did not participate. n < 0 means no limit.
//
// Implementations must be safe for concurrent use once built.
type SpanFinder interface {
	FindAllStringIndex(s string, n int) [][]int
	FindAllStringSubmatchIndex(s string, n int) [][]int
	NumSubexp() int
}

// PatternDef is a raw pattern declaration as read from a pattern list.
// It is converted to a domain pattern spec before compilation.
type PatternDef struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
	Kind    string `yaml:"kind,omitempty"`  // "regex" (default) or "literal"
	Group   string `yaml:"group,omitempty"` // capture index ("1") or name ("user")
}

// PatternSource supplies an ordered list of pattern declarations,
// typically one per line of an external patterns file.
type PatternSource interface {
	Patterns() ([]PatternDef, error)
}
