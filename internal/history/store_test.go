package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/raaihank/grammar-sentinel/internal/grammar"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "history.db") + "?_pragma=busy_timeout(5000)"
	store, err := Open(&Config{Driver: "sqlite", DSN: dsn, MaxOpenConns: 1}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func correct(t *testing.T, text string, tier int) *grammar.Result {
	t.Helper()
	return grammar.New(nil, nil, zap.NewNop()).Correct(context.Background(), text, tier)
}

func newEntry(t *testing.T, text string, tier int, source string) *Entry {
	t.Helper()
	entry, err := NewEntry(correct(t, text, tier), grammar.DefaultCatalog().Fingerprint(), source, "req-1")
	require.NoError(t, err)
	return entry
}

func TestOpen(t *testing.T) {
	t.Run("UnsupportedDriver", func(t *testing.T) {
		_, err := Open(&Config{Driver: "mysql"}, zap.NewNop())
		assert.ErrorContains(t, err, "unsupported history driver")
	})

	t.Run("MigrateTwice", func(t *testing.T) {
		store := openTestStore(t)
		assert.NoError(t, store.migrate())
	})
}

func TestRecordAndGet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	entry := newEntry(t, "I are going too school", 12, "api")
	require.NoError(t, store.Record(ctx, entry))

	got, err := store.Get(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entry.OriginalText, got.OriginalText)
	assert.Equal(t, "I am going to school", got.CorrectedText)
	assert.Equal(t, 75, got.Score)
	assert.Equal(t, "intermediate", got.Band)
	assert.Equal(t, 2, got.FindingCount)
	require.Len(t, got.Findings, 2)
	assert.Equal(t, "sva-i-are", got.Findings[0].RuleID)
	assert.WithinDuration(t, entry.CreatedAt, got.CreatedAt, time.Second)

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	t.Run("DuplicateID", func(t *testing.T) {
		assert.Error(t, store.Record(ctx, entry))
	})
}

func TestRecordBatchAndList(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	entries := []*Entry{
		newEntry(t, "I are happy", 5, "batch"),
		newEntry(t, "The cat sat on the mat.", 12, "batch"),
		newEntry(t, "She don't have no money", 16, "api"),
	}
	for i, e := range entries {
		e.CreatedAt = e.CreatedAt.Add(time.Duration(i) * time.Minute)
	}

	result, err := store.RecordBatch(ctx, entries)
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.Inserted)
	assert.Zero(t, result.Failed)

	empty, err := store.RecordBatch(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, empty.Inserted)

	all, err := store.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, entries[2].ID, all[0].ID, "newest first")

	batch, err := store.List(ctx, &ListOptions{Source: "batch"})
	require.NoError(t, err)
	assert.Len(t, batch, 2)

	basic, err := store.List(ctx, &ListOptions{Band: "basic"})
	require.NoError(t, err)
	require.Len(t, basic, 1)
	assert.Equal(t, "I are happy", basic[0].OriginalText)

	paged, err := store.List(ctx, &ListOptions{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, entries[1].ID, paged[0].ID)

	t.Run("FailedBatchRollsBack", func(t *testing.T) {
		dup := newEntry(t, "I are sad", 5, "batch")
		_, err := store.RecordBatch(ctx, []*Entry{dup, entries[0]})
		assert.Error(t, err)

		_, err = store.Get(ctx, dup.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestGetStats(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	stats, err := store.GetStats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalCorrections)
	assert.Empty(t, stats.TopCategories)

	_, err = store.RecordBatch(ctx, []*Entry{
		newEntry(t, "I are going too school", 12, "api"),
		newEntry(t, "The cat sat on the mat.", 12, "api"),
	})
	require.NoError(t, err)

	stats, err = store.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalCorrections)
	assert.Equal(t, int64(2), stats.TotalFindings)
	assert.Equal(t, int64(1), stats.PerfectCount)
	assert.InDelta(t, 87.5, stats.AverageScore, 0.01)
	assert.Equal(t, int64(2), stats.ByBand["intermediate"])
	assert.Equal(t, int64(1), stats.BySeverity["high"])
	assert.Equal(t, int64(1), stats.BySeverity["medium"])
	assert.Len(t, stats.TopCategories, 2)
}

func TestPrune(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	old := newEntry(t, "I are happy", 5, "api")
	old.CreatedAt = time.Now().UTC().Add(-48 * time.Hour)
	fresh := newEntry(t, "He are happy", 5, "api")
	require.NoError(t, store.Record(ctx, old))
	require.NoError(t, store.Record(ctx, fresh))

	deleted, err := store.Prune(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = store.Get(ctx, old.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	stats, err := store.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalCorrections)
	assert.Equal(t, int64(1), stats.TotalFindings)
}

func TestMaskDatabaseURL(t *testing.T) {
	assert.Equal(t, "postgres://user:***@db:5432/grammar", maskDatabaseURL("postgres://user:secret@db:5432/grammar"))
	assert.Equal(t, "file:history.db", maskDatabaseURL("file:history.db"))
}
