package cmd

import (
	"errors"
	"fmt"
	"strings"
)

// Exit statuses.
const (
	exitOK    = 0
	exitScan  = 1 // the scan or an I/O step failed
	exitUsage = 2 // bad arguments, flags or configuration
)

// exitError carries the process exit status for an error.
type exitError struct {
	code int
	err  error
}

func (e exitError) Error() string {
	if e.err == nil {
		return ""
	}
	return e.err.Error()
}

func (e exitError) Unwrap() error { return e.err }

func usageError(err error) error {
	return exitError{code: exitUsage, err: err}
}

func usageErrorf(format string, args ...any) error {
	return usageError(fmt.Errorf(format, args...))
}

// ExitCode maps an error returned by Execute to a process exit status.
// Errors without an explicit status are scan failures.
func ExitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ee exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	// cobra reports unknown commands without a typed error.
	if strings.HasPrefix(err.Error(), "unknown command") {
		return exitUsage
	}
	return exitScan
}

// isDBLockError returns true if the error chain contains a bbolt lock timeout.
// bbolt returns the string "timeout" when it cannot acquire the file lock
// within the configured deadline.
func isDBLockError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "timeout")
}

// archiveError adds guidance to archive failures caused by lock contention.
func archiveError(err error) error {
	if isDBLockError(err) {
		return fmt.Errorf("%w\n  → another tally process is using the archive (a running watch --archive?)\n  → retry once it finishes", err)
	}
	return err
}
