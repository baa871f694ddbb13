package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/corey/tally/internal/adapters/bbolt"
	"github.com/corey/tally/internal/domain/engine"
	"github.com/corey/tally/internal/domain/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const authLog = "user login username=alice from 10.0.0.1\n" +
	"user login username=bob from 10.0.0.1\n"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func fixedClock() func() time.Time {
	at := time.Date(2026, 3, 14, 9, 26, 53, 123e6, time.UTC)
	return func() time.Time { return at }
}

func newTestRunner(t *testing.T, mutate func(*Config), opts ...RunnerOption) (*Runner, string) {
	t.Helper()
	home := t.TempDir()
	cfg := DefaultConfig()
	cfg.Home = home
	if mutate != nil {
		mutate(&cfg)
	}
	r := NewRunner(cfg, nil, opts...)
	t.Cleanup(func() { r.Close() })
	return r, home
}

// =============================================================================
// Line mode
// =============================================================================

func TestRunner_LineScan_DefaultExtractors(t *testing.T) {
	r, home := newTestRunner(t, nil)
	logPath := writeFile(t, home, "auth.log", authLog)

	res, err := r.LineScan(context.Background(), logPath, "")
	require.NoError(t, err)
	assert.Equal(t, logPath, res.Source)
	assert.Empty(t, res.RunID)

	rep := res.Report
	assert.Equal(t, 2, rep.LinesParsed())
	assert.Equal(t, []report.Entry{{Key: "10.0.0.1", Count: 2}}, rep.Entries(engine.MapAddresses))
	assert.Equal(t, []report.Entry{{Key: "alice", Count: 1}, {Key: "bob", Count: 1}}, rep.Entries(engine.MapIdentifiers))
}

func TestRunner_LineScan_PatternFile(t *testing.T) {
	r, home := newTestRunner(t, nil)
	logPath := writeFile(t, home, "app.log", "GET /a 200\nGET /b 404\nPOST /a 200\n")
	patterns := writeFile(t, home, "p.yaml", `
- name: status
  pattern: ' (\d{3})$'
  group: "1"
- name: verb
  pattern: '^(?P<verb>[A-Z]+) '
  group: verb
`)

	res, err := r.LineScan(context.Background(), logPath, patterns)
	require.NoError(t, err)
	assert.Equal(t, []string{"status", "verb"}, res.Report.Names())
	assert.Equal(t, []report.Entry{{Key: "200", Count: 2}, {Key: "404", Count: 1}}, res.Report.Entries("status"))
	assert.Equal(t, []report.Entry{{Key: "GET", Count: 2}, {Key: "POST", Count: 1}}, res.Report.Entries("verb"))
}

func TestRunner_LineScan_MissingFile(t *testing.T) {
	r, home := newTestRunner(t, nil)

	_, err := r.LineScan(context.Background(), filepath.Join(home, "none.log"), "")
	var se *engine.SourceError
	require.True(t, errors.As(err, &se))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunner_LineScan_InvalidUTF8(t *testing.T) {
	r, home := newTestRunner(t, nil)
	logPath := writeFile(t, home, "bad.log", "ok\n\xff\n")

	res, err := r.LineScan(context.Background(), logPath, "")
	assert.Nil(t, res)
	var se *engine.SourceError
	assert.True(t, errors.As(err, &se))
}

func TestRunner_LineScan_Cancelled(t *testing.T) {
	r, home := newTestRunner(t, nil)
	logPath := writeFile(t, home, "auth.log", authLog)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := r.LineScan(ctx, logPath, "")
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.True(t, res.Report.Partial())
	assert.Zero(t, res.Report.LinesParsed())
}

// =============================================================================
// Bulk mode
// =============================================================================

func TestRunner_BulkScan_WritesCountFile(t *testing.T) {
	r, home := newTestRunner(t, nil)
	doc := writeFile(t, home, "novel.txt", "the cat sat on the mat")
	patterns := writeFile(t, home, "patterns.txt", "cat\n(\nat\n")

	res, err := r.BulkScan(context.Background(), doc, patterns, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "novel_wc.txt"), res.OutPath)

	data, err := os.ReadFile(res.OutPath)
	require.NoError(t, err)
	assert.Equal(t, "cat|1\n(|-1\nat|3\n", string(data))
	require.Len(t, res.Report.Failures(), 1)
}

func TestRunner_BulkScan_PolicyAndOutPath(t *testing.T) {
	r, home := newTestRunner(t, func(c *Config) {
		c.Policy = engine.PolicySkip
		c.Workers = 4
	})
	doc := writeFile(t, home, "doc.txt", "the cat sat on the mat")
	patterns := writeFile(t, home, "patterns.txt", "cat\n(\nat\n")
	out := filepath.Join(home, "custom.txt")

	res, err := r.BulkScan(context.Background(), doc, patterns, out)
	require.NoError(t, err)
	assert.Equal(t, out, res.OutPath)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "cat|1\nat|3\n", string(data))
}

func TestRunner_BulkScan_Abort(t *testing.T) {
	r, home := newTestRunner(t, func(c *Config) { c.Policy = engine.PolicyAbort })
	doc := writeFile(t, home, "doc.txt", "x")
	patterns := writeFile(t, home, "patterns.txt", "x\n(\n")

	res, err := r.BulkScan(context.Background(), doc, patterns, "")
	assert.Nil(t, res)
	require.Error(t, err)
	_, statErr := os.Stat(filepath.Join(home, "doc_wc.txt"))
	assert.ErrorIs(t, statErr, os.ErrNotExist, "no count file on abort")
}

func TestRunner_BulkScan_LiteralPatterns(t *testing.T) {
	r, home := newTestRunner(t, nil)
	doc := writeFile(t, home, "doc.txt", "a.b a.b axb")
	patterns := writeFile(t, home, "p.yml", `
- name: literal
  pattern: a.b
  kind: literal
- name: regex
  pattern: a.b
`)

	res, err := r.BulkScan(context.Background(), doc, patterns, "")
	require.NoError(t, err)
	assert.Equal(t, []report.Entry{{Key: "literal", Count: 2}, {Key: "regex", Count: 3}}, res.Report.Entries(engine.MapPatterns))
}

func TestRunner_BulkScan_MissingInputs(t *testing.T) {
	r, home := newTestRunner(t, nil)
	patterns := writeFile(t, home, "patterns.txt", "x\n")

	_, err := r.BulkScan(context.Background(), filepath.Join(home, "none.txt"), patterns, "")
	var se *engine.SourceError
	assert.True(t, errors.As(err, &se))

	doc := writeFile(t, home, "doc.txt", "x")
	_, err = r.BulkScan(context.Background(), doc, filepath.Join(home, "none.txt"), "")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "load patterns"))
}

// =============================================================================
// Archive
// =============================================================================

func TestRunner_ArchiveToStateDir(t *testing.T) {
	r, home := newTestRunner(t, func(c *Config) { c.Archive = true }, WithClock(fixedClock()))
	logPath := writeFile(t, home, "auth.log", authLog)

	res, err := r.LineScan(context.Background(), logPath, "")
	require.NoError(t, err)
	assert.Equal(t, "20260314T092653.123-line", res.RunID)

	store, err := r.Store()
	require.NoError(t, err)
	rec, err := store.LoadReport(res.RunID)
	require.NoError(t, err)
	require.NotNil(t, rec)

	back, err := report.FromRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, res.Report.Entries(engine.MapIdentifiers), back.Entries(engine.MapIdentifiers))
	assert.Equal(t, logPath, rec.Source)

	require.NoError(t, r.Close())
	_, err = os.Stat(filepath.Join(home, ".tally", "tally.db"))
	assert.NoError(t, err)
}

func TestRunner_ArchiveWithInjectedStore(t *testing.T) {
	store, err := bbolt.NewStore(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer store.Close()

	r, home := newTestRunner(t, func(c *Config) { c.Archive = true }, WithStore(store), WithClock(fixedClock()))
	doc := writeFile(t, home, "doc.txt", "aaa")
	patterns := writeFile(t, home, "p.txt", "a\n")

	res, err := r.BulkScan(context.Background(), doc, patterns, "")
	require.NoError(t, err)
	assert.Equal(t, "20260314T092653.123-bulk", res.RunID)

	runs, err := store.ListRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "bulk", runs[0].Mode)

	// The injected store stays open after the runner closes.
	require.NoError(t, r.Close())
	_, err = store.ListRuns()
	assert.NoError(t, err)

	_, err = os.Stat(filepath.Join(home, ".tally"))
	assert.ErrorIs(t, err, os.ErrNotExist, "state dir untouched when a store is injected")
}

func TestNewRunID(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 6e6, time.FixedZone("x", 3600))
	assert.Equal(t, "20260102T020405.006-line", NewRunID(report.LineMode, at))
}
