package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/corey/tally/internal/app"
	"github.com/corey/tally/internal/domain/engine"
	"github.com/corey/tally/internal/domain/report"
	"github.com/corey/tally/internal/ports"
)

// ANSI color codes for terminal output.
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorCyan   = "\033[36m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
)

// paint wraps s in color when enabled.
func paint(enabled bool, color, s string) string {
	if !enabled {
		return s
	}
	return color + s + colorReset
}

// isLogReport reports whether rep was produced by the default extractors.
func isLogReport(rep *report.Report) bool {
	names := rep.Names()
	return len(names) == 2 && names[0] == engine.MapAddresses && names[1] == engine.MapIdentifiers
}

// writeLineReport prints a line-mode report:
//
//	2 lines in the log file were parsed.
//	There are 1 unique IP addresses in the log.
//	There are 2 unique users in the log.
//	10.0.0.1: 2
//
// printMode selects the map whose entries follow the summary, counting from
// 1 in declaration order. Any other value prints the summary only.
func writeLineReport(w io.Writer, rep *report.Report, printMode int, color bool) {
	fmt.Fprintf(w, "%d lines in the log file were parsed.\n", rep.LinesParsed())

	names := rep.Names()
	if isLogReport(rep) {
		fmt.Fprintf(w, "There are %d unique IP addresses in the log.\n", rep.SizeOf(engine.MapAddresses))
		fmt.Fprintf(w, "There are %d unique users in the log.\n", rep.SizeOf(engine.MapIdentifiers))
	} else {
		for _, name := range names {
			fmt.Fprintf(w, "There are %d unique matches for %s in the log.\n", rep.SizeOf(name), paint(color, colorCyan, name))
		}
	}
	writePartial(w, rep, color)

	if printMode < 1 || printMode > len(names) {
		return
	}
	for _, e := range rep.Entries(names[printMode-1]) {
		fmt.Fprintf(w, "%s: %d\n", e.Key, e.Count)
	}
}

// writeBulkResult prints where a bulk report went and what it holds.
func writeBulkResult(w io.Writer, res *app.ScanResult, color bool) {
	rep := res.Report
	failed := len(rep.Failures())
	summary := fmt.Sprintf("%d patterns evaluated", rep.PatternsEvaluated())
	if failed > 0 {
		summary += ", " + paint(color, colorYellow, fmt.Sprintf("%d invalid", failed))
	}
	fmt.Fprintf(w, "%s %s\n", summary, paint(color, colorGray, "│ "+res.Elapsed.Round(time.Microsecond).String()))
	writePartial(w, rep, color)
	if res.OutPath != "" {
		fmt.Fprintf(w, "Word count data written to %s\n", paint(color, colorGreen, res.OutPath))
	}
}

func writeRunID(w io.Writer, res *app.ScanResult, color bool) {
	if res.RunID != "" {
		fmt.Fprintf(w, "Archived as %s\n", paint(color, colorCyan, res.RunID))
	}
}

func writePartial(w io.Writer, rep *report.Report, color bool) {
	if rep.Partial() {
		fmt.Fprintln(w, paint(color, colorYellow, "Scan interrupted; counts are partial."))
	}
}

// writeRunList prints archived runs, newest first.
func writeRunList(w io.Writer, runs []ports.RunSummary, color bool) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No archived runs.")
		return
	}
	fmt.Fprintln(w, paint(color, colorBold, fmt.Sprintf("%-28s %-5s %-20s %s", "RUN", "MODE", "CREATED", "SOURCE")))
	for _, r := range runs {
		fmt.Fprintf(w, "%-28s %-5s %-20s %s\n",
			r.RunID, r.Mode, r.CreatedAt.UTC().Format("2006-01-02 15:04:05"), r.Source)
	}
}

// writeArchivedReport prints one archived run. Line-mode maps use the
// "key: count" form, the bulk map uses the report file form "key|count".
func writeArchivedReport(w io.Writer, rec *ports.ReportRecord, rep *report.Report, color bool) {
	fmt.Fprintf(w, "%s  %s  %s\n",
		paint(color, colorBold, rec.RunID), rec.Mode, rec.CreatedAt.UTC().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "  Source: %s\n", rec.Source)
	switch rep.Mode() {
	case report.LineMode:
		fmt.Fprintf(w, "  Lines:  %d\n", rep.LinesParsed())
	case report.BulkMode:
		fmt.Fprintf(w, "  Patterns: %d\n", rep.PatternsEvaluated())
	}
	writePartial(w, rep, color)
	for _, f := range rep.Failures() {
		fmt.Fprintf(w, "  %s %s: %s\n", paint(color, colorYellow, "invalid"), f.Name, f.Message)
	}

	sep := ": "
	if rep.Mode() == report.BulkMode {
		sep = "|"
	}
	for _, name := range rep.Names() {
		fmt.Fprintf(w, "%s (%d)\n", paint(color, colorCyan, name), rep.SizeOf(name))
		var sb strings.Builder
		for _, e := range rep.Entries(name) {
			fmt.Fprintf(&sb, "  %s%s%d\n", e.Key, sep, e.Count)
		}
		io.WriteString(w, sb.String())
	}
}
