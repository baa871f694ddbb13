package bbolt

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/corey/tally/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Report archive: save/load runs, listing, crash safety
// =============================================================================

// newTestStore creates a temporary bbolt store for testing.
func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")
	store, err := NewStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, path
}

var baseTime = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

// makeLineRecord creates a realistic line-mode record.
func makeLineRecord(id string, at time.Time) *ports.ReportRecord {
	return &ports.ReportRecord{
		RunID:       id,
		Mode:        "line",
		Source:      "/var/log/auth.log",
		CreatedAt:   at,
		LinesParsed: 2,
		Maps: []ports.CountTable{
			{Name: "addresses", Entries: []ports.CountEntry{{Key: "10.0.0.1", Count: 2}}},
			{Name: "identifiers", Entries: []ports.CountEntry{{Key: "alice", Count: 1}, {Key: "bob", Count: 1}}},
		},
	}
}

// makeBulkRecord creates a bulk-mode record with a sentinel and a failure.
func makeBulkRecord(id string, at time.Time) *ports.ReportRecord {
	return &ports.ReportRecord{
		RunID:             id,
		Mode:              "bulk",
		Source:            "novel.txt",
		CreatedAt:         at,
		PatternsEvaluated: 3,
		Partial:           true,
		Maps: []ports.CountTable{
			{Name: "patterns", Entries: []ports.CountEntry{
				{Key: "cat", Count: 1},
				{Key: "(", Count: -1},
				{Key: "at", Count: 3},
				{Key: "zz", Count: 0},
			}},
		},
		Failures: []ports.FailureEntry{{Name: "(", Message: "missing closing )"}},
	}
}

func assertSameRecord(t *testing.T, want, got *ports.ReportRecord) {
	t.Helper()
	require.NotNil(t, got)
	assert.Equal(t, want.RunID, got.RunID)
	assert.Equal(t, want.Mode, got.Mode)
	assert.Equal(t, want.Source, got.Source)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt), "CreatedAt %v != %v", want.CreatedAt, got.CreatedAt)
	assert.Equal(t, want.LinesParsed, got.LinesParsed)
	assert.Equal(t, want.PatternsEvaluated, got.PatternsEvaluated)
	assert.Equal(t, want.Partial, got.Partial)
	assert.Equal(t, want.Maps, got.Maps)
	assert.Equal(t, want.Failures, got.Failures)
}

func TestStore_SaveLoadReport_Roundtrip(t *testing.T) {
	store, _ := newTestStore(t)

	for _, rec := range []*ports.ReportRecord{
		makeLineRecord("run-line", baseTime),
		makeBulkRecord("run-bulk", baseTime.Add(time.Minute)),
	} {
		require.NoError(t, store.SaveReport(rec))
		got, err := store.LoadReport(rec.RunID)
		require.NoError(t, err)
		assertSameRecord(t, rec, got)
	}
}

func TestStore_LoadReport_Missing(t *testing.T) {
	store, _ := newTestStore(t)

	got, err := store.LoadReport("nope")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, store.SaveReport(makeLineRecord("a", baseTime)))
	got, err = store.LoadReport("nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_SaveReport_Replaces(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.SaveReport(makeBulkRecord("same", baseTime)))
	replacement := makeLineRecord("same", baseTime.Add(time.Hour))
	require.NoError(t, store.SaveReport(replacement))

	got, err := store.LoadReport("same")
	require.NoError(t, err)
	assertSameRecord(t, replacement, got)

	runs, err := store.ListRuns()
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestStore_SaveReport_Invalid(t *testing.T) {
	store, _ := newTestStore(t)
	assert.Error(t, store.SaveReport(nil))
	assert.Error(t, store.SaveReport(&ports.ReportRecord{}))
}

func TestStore_ListRuns_NewestFirst(t *testing.T) {
	store, _ := newTestStore(t)

	runs, err := store.ListRuns()
	require.NoError(t, err)
	assert.Empty(t, runs)

	require.NoError(t, store.SaveReport(makeLineRecord("b-old", baseTime)))
	require.NoError(t, store.SaveReport(makeBulkRecord("a-new", baseTime.Add(2*time.Hour))))
	require.NoError(t, store.SaveReport(makeLineRecord("c-mid", baseTime.Add(time.Hour))))
	require.NoError(t, store.SaveReport(makeLineRecord("a-mid", baseTime.Add(time.Hour))))

	runs, err = store.ListRuns()
	require.NoError(t, err)
	ids := make([]string, len(runs))
	for i, r := range runs {
		ids[i] = r.RunID
	}
	assert.Equal(t, []string{"a-new", "a-mid", "c-mid", "b-old"}, ids)
	assert.Equal(t, "bulk", runs[0].Mode)
	assert.Equal(t, "novel.txt", runs[0].Source)
}

func TestStore_DeleteRun(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.SaveReport(makeLineRecord("keep", baseTime)))
	require.NoError(t, store.SaveReport(makeLineRecord("drop", baseTime)))

	require.NoError(t, store.DeleteRun("drop"))
	got, err := store.LoadReport("drop")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = store.LoadReport("keep")
	require.NoError(t, err)
	assert.NotNil(t, got)

	// Idempotent, including on a fresh database.
	assert.NoError(t, store.DeleteRun("drop"))
	fresh, _ := newTestStore(t)
	assert.NoError(t, fresh.DeleteRun("anything"))
}

func TestStore_CrashRecovery(t *testing.T) {
	// Committed transactions survive close and reopen.
	dir := t.TempDir()
	path := filepath.Join(dir, "crash.db")

	store, err := NewStore(path)
	require.NoError(t, err)
	rec := makeBulkRecord("run-1", baseTime)
	require.NoError(t, store.SaveReport(rec))
	require.NoError(t, store.Close())

	store2, err := NewStore(path)
	require.NoError(t, err)
	defer store2.Close()

	got, err := store2.LoadReport("run-1")
	require.NoError(t, err)
	assertSameRecord(t, rec, got)
}

func TestStore_ConcurrentReads(t *testing.T) {
	store, _ := newTestStore(t)
	rec := makeLineRecord("shared", baseTime)
	require.NoError(t, store.SaveReport(rec))

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := store.LoadReport("shared")
			if err != nil {
				errs <- err
				return
			}
			if len(got.Maps) != len(rec.Maps) {
				errs <- fmt.Errorf("got %d maps, want %d", len(got.Maps), len(rec.Maps))
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestStore_LargeReport(t *testing.T) {
	store, _ := newTestStore(t)

	entries := make([]ports.CountEntry, 50000)
	for i := range entries {
		entries[i] = ports.CountEntry{Key: fmt.Sprintf("10.%d.%d.%d", i/65536, (i/256)%256, i%256), Count: i + 1}
	}
	rec := &ports.ReportRecord{
		RunID:     "big",
		Mode:      "line",
		CreatedAt: baseTime,
		Maps:      []ports.CountTable{{Name: "addresses", Entries: entries}},
	}
	require.NoError(t, store.SaveReport(rec))

	got, err := store.LoadReport("big")
	require.NoError(t, err)
	require.Len(t, got.Maps, 1)
	assert.Equal(t, entries, got.Maps[0].Entries)
}

// =============================================================================
// Lock contention: the 1s timeout prevents hangs
// =============================================================================

func TestStore_OpenTimeout_DoesNotHang(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "locked.db")

	store1, err := NewStore(path)
	require.NoError(t, err)
	defer store1.Close()

	start := time.Now()
	store2, err := NewStore(path)
	elapsed := time.Since(start)

	require.Error(t, err, "second open should fail with lock timeout")
	assert.Nil(t, store2)
	assert.Contains(t, err.Error(), "bbolt open")
	assert.Contains(t, err.Error(), "timeout")
	assert.Less(t, elapsed, 3*time.Second, "should complete within 3s, not hang")
}

func TestStore_OpenAfterClose_Succeeds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "released.db")

	store1, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, store1.SaveReport(makeLineRecord("r", baseTime)))
	store1.Close()

	store2, err := NewStore(path)
	require.NoError(t, err)
	defer store2.Close()

	got, err := store2.LoadReport("r")
	require.NoError(t, err)
	assert.Len(t, got.Maps, 2)
}
