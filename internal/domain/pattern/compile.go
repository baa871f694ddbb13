package pattern

import (
	"fmt"
	"regexp"

	"github.com/corey/tally/internal/ports"
)

// Matcher is a compiled Spec. It is immutable and safe for concurrent use.
type Matcher struct {
	spec   Spec
	finder ports.SpanFinder
	group  int // -1 when the whole match is the key
}

// Spec returns the declaration the matcher was compiled from.
func (m *Matcher) Spec() Spec { return m.spec }

// Name returns the name the pattern is reported under.
func (m *Matcher) Name() string { return m.spec.Key() }

// Group returns the resolved capture index used as key, or -1 for the whole match.
func (m *Matcher) Group() int { return m.group }

// FindAll returns the index pairs of every non-overlapping match in text.
// When a group is selected each entry also carries the submatch pairs, so
// entry[2*Group()] is the start of the key; otherwise entries are [start, end].
func (m *Matcher) FindAll(text string) [][]int {
	if m.group > 0 {
		return m.finder.FindAllStringSubmatchIndex(text, -1)
	}
	return m.finder.FindAllStringIndex(text, -1)
}

// LiteralFactory builds a finder for a fixed string.
type LiteralFactory func(text string) (ports.SpanFinder, error)

// Compiler compiles Specs. The zero value is ready to use; literals are then
// quoted and run through the regex engine.
type Compiler struct {
	Literal LiteralFactory
}

// Compile compiles spec with the zero Compiler.
func Compile(spec Spec) (*Matcher, error) {
	return Compiler{}.Compile(spec)
}

// Compile validates spec and builds its Matcher. Failures are always
// returned as *PatternError.
func (c Compiler) Compile(spec Spec) (*Matcher, error) {
	if spec.Text == "" {
		return nil, &PatternError{
			Kind:    Empty,
			Name:    spec.Name,
			Message: "pattern text is empty",
			Err:     ErrEmptyPattern,
		}
	}

	var (
		finder ports.SpanFinder
		names  []string
	)
	switch spec.Kind {
	case Literal:
		f, err := c.literal(spec.Text)
		if err != nil {
			return nil, syntaxError(spec, err)
		}
		finder = f
	default:
		re, err := regexp.Compile(spec.Text)
		if err != nil {
			return nil, syntaxError(spec, err)
		}
		finder = re
		names = re.SubexpNames()
	}

	group, err := resolveGroup(spec.Group, numGroups(finder, names), names)
	if err != nil {
		return nil, &PatternError{
			Kind:    UnknownGroup,
			Name:    spec.Name,
			Text:    spec.Text,
			Message: err.Error(),
		}
	}

	return &Matcher{spec: spec, finder: finder, group: group}, nil
}

func (c Compiler) literal(text string) (ports.SpanFinder, error) {
	if c.Literal != nil {
		return c.Literal(text)
	}
	return regexp.Compile(regexp.QuoteMeta(text))
}

// numGroups is the number of capture groups in the submatch layout.
func numGroups(f ports.SpanFinder, names []string) int {
	if len(names) > 0 {
		return len(names) - 1
	}
	return f.NumSubexp()
}

func syntaxError(spec Spec, err error) *PatternError {
	return &PatternError{
		Kind:    InvalidSyntax,
		Name:    spec.Name,
		Text:    spec.Text,
		Message: err.Error(),
		Err:     err,
	}
}

// resolveGroup maps a selector to a capture index. names follows
// SubexpNames: names[0] is the whole match.
func resolveGroup(sel GroupSelector, numSubexp int, names []string) (int, error) {
	if !sel.IsSet() {
		return -1, nil
	}
	if sel.name != "" {
		for i, n := range names {
			if i > 0 && n == sel.name {
				return i, nil
			}
		}
		return 0, fmt.Errorf("no capture group named %q", sel.name)
	}
	if sel.index < 0 || sel.index > numSubexp {
		return 0, fmt.Errorf("group %d out of range (pattern has %d)", sel.index, numSubexp)
	}
	return sel.index, nil
}
