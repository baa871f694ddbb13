// Package bbolt implements ports.ReportStore using bbolt (embedded B+ tree).
// Each archived run gets its own sub-bucket under "runs", holding a gob
// header and a binary blob of count tables. Writes are transactional: a
// crash mid-write cannot corrupt previously archived runs.
package bbolt

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/corey/tally/internal/ports"
	bolt "go.etcd.io/bbolt"
)

// Bucket keys
var (
	bucketRuns = []byte("runs")
	keyMeta    = []byte("meta")
	keyTables  = []byte("tables")
)

// Store implements ports.ReportStore backed by bbolt.
type Store struct {
	db *bolt.DB
}

var _ ports.ReportStore = (*Store)(nil)

// NewStore opens (or creates) a bbolt database at the given path.
// It gives up after one second if another process holds the lock.
func NewStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// runMeta is everything in a ReportRecord except the count tables.
type runMeta struct {
	Mode              string
	Source            string
	CreatedAt         time.Time
	LinesParsed       int
	PatternsEvaluated int
	Partial           bool
	Failures          []ports.FailureEntry
}

// SaveReport archives rec under rec.RunID, replacing any earlier record.
func (s *Store) SaveReport(rec *ports.ReportRecord) error {
	if rec == nil {
		return fmt.Errorf("nil report record")
	}
	if rec.RunID == "" {
		return fmt.Errorf("report record has no run ID")
	}

	meta, err := encodeGob(runMeta{
		Mode:              rec.Mode,
		Source:            rec.Source,
		CreatedAt:         rec.CreatedAt,
		LinesParsed:       rec.LinesParsed,
		PatternsEvaluated: rec.PatternsEvaluated,
		Partial:           rec.Partial,
		Failures:          rec.Failures,
	})
	if err != nil {
		return fmt.Errorf("encode run meta: %w", err)
	}
	tables, err := encodeCountTables(rec.Maps)
	if err != nil {
		return fmt.Errorf("encode count tables: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		runs, err := tx.CreateBucketIfNotExists(bucketRuns)
		if err != nil {
			return err
		}
		id := []byte(rec.RunID)
		if err := runs.DeleteBucket(id); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}
		rb, err := runs.CreateBucket(id)
		if err != nil {
			return err
		}
		if err := rb.Put(keyMeta, meta); err != nil {
			return err
		}
		return rb.Put(keyTables, tables)
	})
}

// LoadReport retrieves an archived run.
// Returns nil, nil if no record exists for runID.
func (s *Store) LoadReport(runID string) (*ports.ReportRecord, error) {
	var metaData, tableData []byte

	err := s.db.View(func(tx *bolt.Tx) error {
		runs := tx.Bucket(bucketRuns)
		if runs == nil {
			return nil
		}
		rb := runs.Bucket([]byte(runID))
		if rb == nil {
			return nil
		}
		// Copy bytes out of the transaction (bbolt slices are only valid within tx)
		if v := rb.Get(keyMeta); v != nil {
			metaData = append([]byte(nil), v...)
		}
		if v := rb.Get(keyTables); v != nil {
			tableData = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if metaData == nil {
		return nil, nil
	}

	var meta runMeta
	if err := decodeGob(metaData, &meta); err != nil {
		return nil, fmt.Errorf("decode run meta %q: %w", runID, err)
	}
	var maps []ports.CountTable
	if tableData != nil {
		maps, err = decodeCountTables(tableData)
		if err != nil {
			return nil, fmt.Errorf("decode count tables %q: %w", runID, err)
		}
	}

	return &ports.ReportRecord{
		RunID:             runID,
		Mode:              meta.Mode,
		Source:            meta.Source,
		CreatedAt:         meta.CreatedAt,
		LinesParsed:       meta.LinesParsed,
		PatternsEvaluated: meta.PatternsEvaluated,
		Partial:           meta.Partial,
		Maps:              maps,
		Failures:          meta.Failures,
	}, nil
}

// ListRuns returns a summary of every archived run, newest first.
// Runs created at the same instant are ordered by ID.
func (s *Store) ListRuns() ([]ports.RunSummary, error) {
	var out []ports.RunSummary

	err := s.db.View(func(tx *bolt.Tx) error {
		runs := tx.Bucket(bucketRuns)
		if runs == nil {
			return nil
		}
		return runs.ForEachBucket(func(k []byte) error {
			rb := runs.Bucket(k)
			v := rb.Get(keyMeta)
			if v == nil {
				return nil
			}
			var meta runMeta
			if err := decodeGob(v, &meta); err != nil {
				return fmt.Errorf("decode run meta %q: %w", k, err)
			}
			out = append(out, ports.RunSummary{
				RunID:     string(k),
				Mode:      meta.Mode,
				Source:    meta.Source,
				CreatedAt: meta.CreatedAt,
			})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].RunID < out[j].RunID
	})
	return out, nil
}

// DeleteRun removes an archived run.
// Idempotent: deleting a nonexistent run is not an error.
func (s *Store) DeleteRun(runID string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		runs := tx.Bucket(bucketRuns)
		if runs == nil {
			return nil
		}
		if err := runs.DeleteBucket([]byte(runID)); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}
		return nil
	})
}
