package pattern

import (
	"errors"
	"fmt"
)

// ErrEmptyPattern is matched by errors.Is for patterns rejected for having no text.
var ErrEmptyPattern = errors.New("empty pattern")

// ErrorKind classifies a compile failure.
type ErrorKind int

const (
	Empty ErrorKind = iota
	InvalidSyntax
	UnknownGroup
)

func (k ErrorKind) String() string {
	switch k {
	case Empty:
		return "empty"
	case InvalidSyntax:
		return "invalid syntax"
	case UnknownGroup:
		return "unknown group"
	default:
		return "unknown"
	}
}

// PatternError reports why a Spec could not be compiled.
type PatternError struct {
	Kind    ErrorKind
	Name    string
	Text    string
	Message string
	Err     error
}

func (e *PatternError) Error() string {
	if e.Kind == Empty {
		return fmt.Sprintf("pattern %q: %s", e.Name, e.Message)
	}
	return fmt.Sprintf("invalid pattern %q: %s", e.Text, e.Message)
}

func (e *PatternError) Unwrap() error { return e.Err }
