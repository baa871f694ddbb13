// Package ports defines the interfaces (contracts) that adapters must implement.
// These are the boundaries of the hexagonal architecture. Domain logic depends
// only on these interfaces, never on concrete implementations.
package ports

import "time"

// ReportStore archives finished scan reports.
// The backing store (bbolt) keeps one record per run ID. Writes are
// transactional: a crash mid-write must not corrupt previously archived runs.
//
// The store is an output sink only. Scans never read it back, so a run's
// counts never depend on what earlier runs archived.
type ReportStore interface {
	// SaveReport archives a report under runID, replacing any prior record
	// with the same ID.
	SaveReport(rec *ReportRecord) error

	// LoadReport retrieves an archived report.
	// Returns nil, nil if no record exists for runID.
	LoadReport(runID string) (*ReportRecord, error)

	// ListRuns returns the archived run summaries, newest first.
	ListRuns() ([]RunSummary, error)

	// DeleteRun removes an archived run.
	// Idempotent: deleting a nonexistent run is not an error.
	DeleteRun(runID string) error
}

// ReportRecord is the storable form of a scan report.
type ReportRecord struct {
	RunID             string         `json:"run_id"`
	Mode              string         `json:"mode"`   // "line" or "bulk"
	Source            string         `json:"source"` // input path
	CreatedAt         time.Time      `json:"created_at"`
	LinesParsed       int            `json:"lines_parsed"`
	PatternsEvaluated int            `json:"patterns_evaluated"`
	Partial           bool           `json:"partial"`
	Maps              []CountTable   `json:"maps"`
	Failures          []FailureEntry `json:"failures,omitempty"`
}

// CountTable is one named frequency map in insertion order.
type CountTable struct {
	Name    string       `json:"name"`
	Entries []CountEntry `json:"entries"`
}

// CountEntry is a single key and its count.
type CountEntry struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// FailureEntry records a declared pattern that failed to compile.
type FailureEntry struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// RunSummary is the listing view of an archived run.
type RunSummary struct {
	RunID     string
	Mode      string
	Source    string
	CreatedAt time.Time
}
