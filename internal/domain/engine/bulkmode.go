package engine

import (
	"context"

	"github.com/corey/tally/internal/domain/pattern"
	"github.com/corey/tally/internal/domain/report"
	"github.com/corey/tally/internal/domain/scan"
	"golang.org/x/sync/errgroup"
)

// RunBulkMode scans doc as one span, once per spec, and records how many
// matches each spec found under its name in the MapPatterns map. Patterns may
// match across line boundaries.
//
// Every declared spec is accounted for: it has a count, the ErrorCount
// sentinel, or an entry in Failures, depending on opts.Policy. Repeated
// names follow opts.Duplicates; under last-wins a failed later pattern also
// replaces an earlier count for its name. PatternsEvaluated is the number of specs
// declared.
//
// With opts.Workers > 1 the specs are scanned concurrently; each worker
// writes only its own result slot and the map is filled afterwards in
// declaration order, so the report doesn't depend on scheduling.
func RunBulkMode(ctx context.Context, doc string, specs []pattern.Spec, opts Options) (*report.Report, error) {
	if opts.Duplicates == DuplicateReject {
		if name := duplicateName(specs); name != "" {
			return nil, &DuplicateNameError{Name: name}
		}
	}

	matchers, errs, err := compileAll(specs, opts)
	if err != nil {
		return nil, err
	}

	counts := make([]int, len(specs))
	done := make([]bool, len(specs))
	scanErr := countAll(ctx, doc, matchers, counts, done, opts.Workers)

	b := report.NewBuilder(report.BulkMode)
	b.SetPatternsEvaluated(len(specs))
	m := b.Map(MapPatterns)
	for i, s := range specs {
		name := s.Key()
		if errs[i] != nil {
			// The failed pattern is the last write for name: it replaces any
			// earlier count with the sentinel, or removes it under Skip.
			if opts.Policy == PolicySentinel {
				m.Set(name, report.ErrorCount)
			} else {
				m.Delete(name)
			}
			b.AddFailure(name, errs[i])
			continue
		}
		if !done[i] {
			continue
		}
		m.Set(name, counts[i])
		b.ClearFailure(name)
	}

	if scanErr != nil {
		b.MarkPartial()
		return b.Build(), scanErr
	}
	return b.Build(), nil
}

// countAll fills counts[i] and sets done[i] for every non-nil matcher.
// It stops early, returning ctx.Err(), once ctx is cancelled.
func countAll(ctx context.Context, doc string, matchers []*pattern.Matcher, counts []int, done []bool, workers int) error {
	if workers <= 1 {
		for i, m := range matchers {
			if m == nil {
				continue
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			counts[i] = scan.Count(m, doc)
			done[i] = true
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, m := range matchers {
		if m == nil {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			counts[i] = scan.Count(m, doc)
			done[i] = true
			return nil
		})
	}
	return g.Wait()
}
