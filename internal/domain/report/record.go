package report

import (
	"fmt"
	"time"

	"github.com/corey/tally/internal/ports"
)

// Record converts r to its archivable form.
func (r *Report) Record(runID, source string, at time.Time) *ports.ReportRecord {
	rec := &ports.ReportRecord{
		RunID:             runID,
		Mode:              r.mode.String(),
		Source:            source,
		CreatedAt:         at,
		LinesParsed:       r.linesParsed,
		PatternsEvaluated: r.patternsEvaluated,
		Partial:           r.partial,
		Maps:              make([]ports.CountTable, 0, len(r.names)),
	}
	for _, name := range r.names {
		entries := r.maps[name].Entries()
		table := ports.CountTable{Name: name, Entries: make([]ports.CountEntry, len(entries))}
		for i, e := range entries {
			table.Entries[i] = ports.CountEntry{Key: e.Key, Count: e.Count}
		}
		rec.Maps = append(rec.Maps, table)
	}
	for _, f := range r.failures {
		rec.Failures = append(rec.Failures, ports.FailureEntry{Name: f.Name, Message: f.Message})
	}
	return rec
}

// FromRecord rebuilds a Report from an archived record.
func FromRecord(rec *ports.ReportRecord) (*Report, error) {
	if rec == nil {
		return nil, fmt.Errorf("nil report record")
	}
	mode, err := ModeFromName(rec.Mode)
	if err != nil {
		return nil, err
	}
	b := NewBuilder(mode)
	for _, table := range rec.Maps {
		m := b.Map(table.Name)
		for _, e := range table.Entries {
			m.Set(e.Key, e.Count)
		}
	}
	b.SetLinesParsed(rec.LinesParsed)
	b.SetPatternsEvaluated(rec.PatternsEvaluated)
	if rec.Partial {
		b.MarkPartial()
	}
	for _, f := range rec.Failures {
		b.r.failures = append(b.r.failures, Failure{Name: f.Name, Message: f.Message})
	}
	return b.Build(), nil
}
