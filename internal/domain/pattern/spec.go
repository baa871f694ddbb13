// Package pattern compiles textual pattern declarations into matchers.
//
// A Spec is the immutable declaration (text, logical name, kind and optional
// group selector). Compile turns it into a Matcher that the scanner drives.
// Compilation is pure: the same text always yields an equivalent matcher, so
// callers compile once per run and reuse the Matcher for every line.
package pattern

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/corey/tally/internal/ports"
)

// Kind selects the matching engine for a pattern.
type Kind int

const (
	// Regex patterns use RE2 syntax (package regexp).
	Regex Kind = iota
	// Literal patterns match their text byte for byte, like grep -F.
	Literal
)

func (k Kind) String() string {
	switch k {
	case Regex:
		return "regex"
	case Literal:
		return "literal"
	default:
		return "unknown"
	}
}

// KindFromName parses a kind name. The empty string means Regex.
func KindFromName(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "regex", "re":
		return Regex, nil
	case "literal", "fixed":
		return Literal, nil
	default:
		return 0, fmt.Errorf("unknown pattern kind %q", name)
	}
}

// GroupSelector picks which capture group becomes the aggregation key.
// The zero value selects nothing: the whole match is the key.
type GroupSelector struct {
	index int
	name  string
	set   bool
}

// GroupIndex selects a capture group by position (1-based; 0 is the whole match).
func GroupIndex(i int) GroupSelector {
	return GroupSelector{index: i, set: true}
}

// GroupName selects a named capture group, e.g. (?P<user>\w+).
func GroupName(name string) GroupSelector {
	return GroupSelector{name: name, index: -1, set: true}
}

// ParseGroup reads a selector from its textual form: "" selects nothing,
// a decimal number selects by index, anything else selects by name.
func ParseGroup(s string) GroupSelector {
	s = strings.TrimSpace(s)
	if s == "" {
		return GroupSelector{}
	}
	if i, err := strconv.Atoi(s); err == nil {
		return GroupIndex(i)
	}
	return GroupName(s)
}

// IsSet reports whether a group was selected.
func (g GroupSelector) IsSet() bool { return g.set }

func (g GroupSelector) String() string {
	switch {
	case !g.set:
		return ""
	case g.name != "":
		return g.name
	default:
		return strconv.Itoa(g.index)
	}
}

// Spec declares one pattern.
type Spec struct {
	Name  string // logical name; Text is used when empty
	Text  string
	Kind  Kind
	Group GroupSelector
}

// Key returns the name the pattern is reported under.
func (s Spec) Key() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Text
}

// FromDef converts a raw declaration from a pattern list.
func FromDef(d ports.PatternDef) (Spec, error) {
	kind, err := KindFromName(d.Kind)
	if err != nil {
		return Spec{}, err
	}
	return Spec{
		Name:  d.Name,
		Text:  d.Pattern,
		Kind:  kind,
		Group: ParseGroup(d.Group),
	}, nil
}

// FromDefs converts a whole pattern list, preserving order.
func FromDefs(defs []ports.PatternDef) ([]Spec, error) {
	specs := make([]Spec, 0, len(defs))
	for i, d := range defs {
		s, err := FromDef(d)
		if err != nil {
			return nil, fmt.Errorf("pattern %d (%q): %w", i+1, d.Pattern, err)
		}
		specs = append(specs, s)
	}
	return specs, nil
}
