package engine

import "fmt"

// SourceError reports a failure of the text source (unreadable input,
// undecodable line). The scan is aborted and no report is produced.
type SourceError struct {
	Op  string
	Err error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// DuplicateNameError reports a repeated pattern name where names must be unique.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("duplicate pattern name %q", e.Name)
}
