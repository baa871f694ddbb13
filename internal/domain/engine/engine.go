// Package engine drives the scanner over text sources and assembles reports.
//
// Two orchestrators share the pattern compiler, scanner and accumulator:
// RunLineMode scans a stream one line at a time and tallies each pattern's
// keys separately; RunBulkMode scans a whole document once per pattern and
// records one count per pattern name. The engine never logs or prints.
package engine

import (
	"fmt"

	"github.com/corey/tally/internal/domain/pattern"
)

// Report map names.
const (
	MapAddresses   = "addresses"
	MapIdentifiers = "identifiers"
	MapPatterns    = "patterns"
)

// Extraction patterns for the log use case.
const (
	AddressPattern    = `\b(?:\d{1,3}\.){3}\d{1,3}\b`
	IdentifierPattern = `username=(\w+)`
)

// DefaultLogSpecs returns the address and identifier extractors used for
// line-mode log scans.
func DefaultLogSpecs() []pattern.Spec {
	return []pattern.Spec{
		{Name: MapAddresses, Text: AddressPattern},
		{Name: MapIdentifiers, Text: IdentifierPattern, Group: pattern.GroupIndex(1)},
	}
}

// Policy decides what happens to a declared pattern that fails to compile.
// One policy applies to a whole run.
type Policy int

const (
	// PolicySentinel keeps the pattern in the report: in bulk mode its count
	// is report.ErrorCount, in line mode its map stays empty. The error is
	// listed in Report.Failures.
	PolicySentinel Policy = iota
	// PolicySkip scans the remaining patterns and lists the error in
	// Report.Failures without a count.
	PolicySkip
	// PolicyAbort fails the run with the *pattern.PatternError.
	PolicyAbort
)

func (p Policy) String() string {
	switch p {
	case PolicySentinel:
		return "sentinel"
	case PolicySkip:
		return "skip"
	case PolicyAbort:
		return "abort"
	default:
		return "unknown"
	}
}

// PolicyFromName parses a Policy from its String form.
func PolicyFromName(name string) (Policy, error) {
	switch name {
	case "sentinel", "":
		return PolicySentinel, nil
	case "skip":
		return PolicySkip, nil
	case "abort":
		return PolicyAbort, nil
	default:
		return 0, fmt.Errorf("unknown pattern policy %q (want sentinel, skip or abort)", name)
	}
}

// DuplicatePolicy decides how bulk mode treats repeated pattern names.
type DuplicatePolicy int

const (
	// DuplicateLastWins lets the later pattern's count overwrite the earlier
	// one. The name keeps its first position in the report.
	DuplicateLastWins DuplicatePolicy = iota
	// DuplicateReject fails the run before scanning.
	DuplicateReject
)

func (d DuplicatePolicy) String() string {
	switch d {
	case DuplicateLastWins:
		return "last-wins"
	case DuplicateReject:
		return "reject"
	default:
		return "unknown"
	}
}

// DuplicatePolicyFromName parses a DuplicatePolicy from its String form.
func DuplicatePolicyFromName(name string) (DuplicatePolicy, error) {
	switch name {
	case "last-wins", "":
		return DuplicateLastWins, nil
	case "reject":
		return DuplicateReject, nil
	default:
		return 0, fmt.Errorf("unknown duplicate policy %q (want last-wins or reject)", name)
	}
}

// Options tunes a run. The zero value is the reference behavior: sentinel
// failures, last-write-wins duplicates, sequential scanning.
type Options struct {
	Compiler   pattern.Compiler
	Policy     Policy
	Duplicates DuplicatePolicy

	// Workers > 1 scans bulk-mode patterns concurrently. Line mode ignores it.
	Workers int
}

// compileAll compiles specs in order. Failed entries are nil in matchers and
// set in errs. Under PolicyAbort the first failure is returned instead.
func compileAll(specs []pattern.Spec, opts Options) (matchers []*pattern.Matcher, errs []error, err error) {
	matchers = make([]*pattern.Matcher, len(specs))
	errs = make([]error, len(specs))
	for i, s := range specs {
		m, cerr := opts.Compiler.Compile(s)
		if cerr != nil {
			if opts.Policy == PolicyAbort {
				return nil, nil, cerr
			}
			errs[i] = cerr
			continue
		}
		matchers[i] = m
	}
	return matchers, errs, nil
}

// duplicateName returns the first name that occurs twice, or "".
func duplicateName(specs []pattern.Spec) string {
	seen := make(map[string]bool, len(specs))
	for _, s := range specs {
		k := s.Key()
		if seen[k] {
			return k
		}
		seen[k] = true
	}
	return ""
}
