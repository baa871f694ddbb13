// Package app wires together adapters and domain logic.
// A Runner executes line-mode and bulk-mode scans against files on disk,
// writes bulk reports next to their documents, and optionally archives every
// report in the bbolt run store.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/corey/tally/internal/adapters/ahocorasick"
	"github.com/corey/tally/internal/adapters/bbolt"
	"github.com/corey/tally/internal/adapters/reportfile"
	"github.com/corey/tally/internal/adapters/textsource"
	"github.com/corey/tally/internal/domain/engine"
	"github.com/corey/tally/internal/domain/pattern"
	"github.com/corey/tally/internal/domain/report"
	"github.com/corey/tally/internal/ports"
)

// ScanResult is the outcome of one scan.
type ScanResult struct {
	Report  *report.Report
	Source  string // absolute input path
	RunID   string // set when the report was archived
	OutPath string // bulk mode: where the count file was written
	Elapsed time.Duration
}

// Runner executes scans with a fixed configuration.
// It is not safe for concurrent use.
type Runner struct {
	cfg   Config
	paths *Paths
	log   *slog.Logger
	now   func() time.Time

	store  ports.ReportStore
	closer func() error
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithStore archives into s instead of opening the bbolt database under
// the state directory. The caller keeps ownership of s.
func WithStore(s ports.ReportStore) RunnerOption {
	return func(r *Runner) { r.store = s }
}

// WithClock overrides the time source used for run IDs and timestamps.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) { r.now = now }
}

// NewRunner creates a Runner. The archive is opened lazily on first use.
func NewRunner(cfg Config, log *slog.Logger, opts ...RunnerOption) *Runner {
	if log == nil {
		log = DiscardLogger()
	}
	r := &Runner{
		cfg:   cfg,
		paths: cfg.Paths(),
		log:   log,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Config returns the runner's configuration.
func (r *Runner) Config() Config { return r.cfg }

// Close releases the archive if the runner opened it.
func (r *Runner) Close() error {
	if r.closer == nil {
		return nil
	}
	err := r.closer()
	r.closer = nil
	r.store = nil
	return err
}

// Options returns the engine options for this configuration. Literal
// patterns are matched with the Aho-Corasick finder.
func (r *Runner) Options() engine.Options {
	return engine.Options{
		Compiler:   pattern.Compiler{Literal: ahocorasick.Factory},
		Policy:     r.cfg.Policy,
		Duplicates: r.cfg.Duplicates,
		Workers:    r.cfg.Workers,
	}
}

// LoadSpecs reads and converts a pattern file.
func LoadSpecs(path string) ([]pattern.Spec, error) {
	defs, err := textsource.PatternFile{Path: path}.Patterns()
	if err != nil {
		return nil, fmt.Errorf("load patterns: %w", err)
	}
	specs, err := pattern.FromDefs(defs)
	if err != nil {
		return nil, fmt.Errorf("load patterns %s: %w", path, err)
	}
	return specs, nil
}

// LineScan runs line mode over logPath. With an empty patternsPath the
// address and identifier extractors are used.
//
// On cancellation the partial report is returned with the context error.
func (r *Runner) LineScan(ctx context.Context, logPath, patternsPath string) (*ScanResult, error) {
	specs := engine.DefaultLogSpecs()
	if patternsPath != "" {
		var err error
		if specs, err = LoadSpecs(patternsPath); err != nil {
			return nil, err
		}
	}

	source := absPath(logPath)
	src, err := textsource.OpenLines(logPath)
	if err != nil {
		return nil, &engine.SourceError{Op: "open log", Err: err}
	}
	defer src.Close()

	r.log.Debug("scan started", "mode", report.LineMode, "source", source, "patterns", len(specs))
	start := r.now()
	rep, err := engine.RunLineMode(ctx, src, specs, r.Options())
	if rep == nil {
		return nil, err
	}

	res := &ScanResult{Report: rep, Source: source, Elapsed: r.now().Sub(start)}
	r.log.Info("scan finished",
		"mode", report.LineMode,
		"source", source,
		"lines", rep.LinesParsed(),
		"failures", len(rep.Failures()),
		"partial", rep.Partial(),
		"elapsed", res.Elapsed,
	)
	r.logFailures(rep)
	if aerr := r.maybeArchive(res); aerr != nil {
		return res, aerr
	}
	return res, err
}

// BulkScan runs bulk mode over docPath with the patterns in patternsPath
// and writes the count file to outPath, or next to the document when
// outPath is empty. Partial reports are not written.
func (r *Runner) BulkScan(ctx context.Context, docPath, patternsPath, outPath string) (*ScanResult, error) {
	specs, err := LoadSpecs(patternsPath)
	if err != nil {
		return nil, err
	}

	source := absPath(docPath)
	doc, err := textsource.FileDocument{Path: docPath}.Document()
	if err != nil {
		return nil, &engine.SourceError{Op: "read document", Err: err}
	}

	r.log.Debug("scan started", "mode", report.BulkMode, "source", source, "patterns", len(specs), "workers", r.cfg.Workers)
	start := r.now()
	rep, err := engine.RunBulkMode(ctx, doc, specs, r.Options())
	if rep == nil {
		return nil, err
	}

	res := &ScanResult{Report: rep, Source: source, Elapsed: r.now().Sub(start)}
	r.log.Info("scan finished",
		"mode", report.BulkMode,
		"source", source,
		"patterns", rep.PatternsEvaluated(),
		"failures", len(rep.Failures()),
		"partial", rep.Partial(),
		"elapsed", res.Elapsed,
	)
	r.logFailures(rep)
	if err != nil {
		return res, err
	}

	if outPath == "" {
		outPath = reportfile.OutputPath(docPath)
	}
	if err := reportfile.WriteFile(outPath, rep.Entries(engine.MapPatterns)); err != nil {
		return res, err
	}
	res.OutPath = outPath
	r.log.Info("report written", "path", outPath)

	if err := r.maybeArchive(res); err != nil {
		return res, err
	}
	return res, nil
}

func (r *Runner) logFailures(rep *report.Report) {
	for _, f := range rep.Failures() {
		r.log.Warn("pattern failed to compile", "pattern", f.Name, "err", f.Message)
	}
}

func (r *Runner) maybeArchive(res *ScanResult) error {
	if !r.cfg.Archive {
		return nil
	}
	id, err := r.Archive(res.Report, res.Source)
	if err != nil {
		return err
	}
	res.RunID = id
	return nil
}

// Archive saves rep to the run store and returns its run ID.
func (r *Runner) Archive(rep *report.Report, source string) (string, error) {
	store, err := r.Store()
	if err != nil {
		return "", err
	}
	at := r.now().UTC()
	id := NewRunID(rep.Mode(), at)
	if err := store.SaveReport(rep.Record(id, source, at)); err != nil {
		return "", fmt.Errorf("archive report: %w", err)
	}
	r.log.Info("report archived", "run", id)
	return id, nil
}

// Store returns the run archive, opening the bbolt database on first use.
func (r *Runner) Store() (ports.ReportStore, error) {
	if r.store != nil {
		return r.store, nil
	}
	if err := r.paths.EnsureDirs(); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	s, err := bbolt.NewStore(r.paths.DB)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	r.store = s
	r.closer = s.Close
	return s, nil
}

// NewRunID formats a sortable run identifier such as "20260314T092653.123-bulk".
func NewRunID(mode report.Mode, at time.Time) string {
	return at.UTC().Format("20060102T150405.000") + "-" + mode.String()
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
