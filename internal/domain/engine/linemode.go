package engine

import (
	"context"
	"errors"
	"io"

	"github.com/corey/tally/internal/domain/freq"
	"github.com/corey/tally/internal/domain/pattern"
	"github.com/corey/tally/internal/domain/report"
	"github.com/corey/tally/internal/domain/scan"
	"github.com/corey/tally/internal/ports"
)

// RunLineMode scans src line by line. Each spec gets its own map, named by
// the spec, and every line is matched independently: no match spans a line
// boundary and anchors apply per line. Lines without matches still count
// toward LinesParsed.
//
// Names must be unique in line mode since each names its own map.
//
// If ctx is cancelled between lines the report read so far is returned,
// marked Partial, together with ctx.Err(). Source errors abort the run
// with a *SourceError and no report.
func RunLineMode(ctx context.Context, src ports.LineSource, specs []pattern.Spec, opts Options) (*report.Report, error) {
	if name := duplicateName(specs); name != "" {
		return nil, &DuplicateNameError{Name: name}
	}

	matchers, errs, err := compileAll(specs, opts)
	if err != nil {
		return nil, err
	}

	b := report.NewBuilder(report.LineMode)
	maps := make([]*freq.Map, len(specs))
	for i, s := range specs {
		maps[i] = b.Map(s.Key())
		if errs[i] != nil {
			b.AddFailure(s.Key(), errs[i])
		}
	}

	lines := 0
	for {
		if err := ctx.Err(); err != nil {
			b.SetLinesParsed(lines)
			b.MarkPartial()
			return b.Build(), err
		}

		line, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &SourceError{Op: "read line", Err: err}
		}
		lines++

		for i, m := range matchers {
			if m == nil {
				continue
			}
			maps[i].FoldFrom(scan.ScanLine(m, line, lines))
		}
	}

	b.SetLinesParsed(lines)
	return b.Build(), nil
}
