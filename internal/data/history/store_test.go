package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ifacescan/internal/core/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "state", "history.db"), time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_SaveListLoad(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 2, 13, 10, 0, 0, 0, time.UTC)

	firstID, err := store.SaveScan(ctx, ScanRecord{
		Interface:    "myfunc",
		Library:      "mylib",
		Root:         "/src",
		StartedAt:    base,
		Duration:     1500 * time.Millisecond,
		FilesScanned: 4,
	}, []MatchRecord{
		{Path: "/src/a.py", Line: 3, Kind: "call", SourceText: "mf()"},
		{Path: "/src/b.py", Line: 7, Kind: "call"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, firstID)

	secondID, err := store.SaveScan(ctx, ScanRecord{
		ID:                "fixed-id",
		Interface:         "MyClass",
		Library:           "mylib",
		Kind:              "class",
		Root:              "/src",
		StartedAt:         base.Add(time.Hour),
		ParseFailureCount: 1,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", secondID)

	all, err := store.ListScans(ctx, ScanFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "fixed-id", all[0].ID, "newest first")
	assert.Equal(t, firstID, all[1].ID)
	assert.Equal(t, 2, all[1].MatchCount)
	assert.Equal(t, 1500*time.Millisecond, all[1].Duration)
	assert.Equal(t, "auto", all[1].Kind)
	assert.Equal(t, "mylib.myfunc", all[1].Target())
	assert.Equal(t, 1, all[0].ParseFailureCount)
	assert.True(t, all[1].StartedAt.Equal(base))

	filtered, err := store.ListScans(ctx, ScanFilter{Library: "mylib", Interface: "myfunc"})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, firstID, filtered[0].ID)

	limited, err := store.ListScans(ctx, ScanFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)

	matches, err := store.LoadMatches(ctx, firstID)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "/src/a.py", matches[0].Path)
	assert.Equal(t, 3, matches[0].Line)
	assert.Equal(t, "mf()", matches[0].SourceText)
	assert.Equal(t, 1, matches[1].Ordinal)

	empty, err := store.LoadMatches(ctx, secondID)
	require.NoError(t, err)
	assert.Empty(t, empty)

	got, err := store.GetScan(ctx, secondID)
	require.NoError(t, err)
	assert.Equal(t, "MyClass", got.Interface)
	assert.Equal(t, "class", got.Kind)
	assert.True(t, got.StartedAt.Equal(base.Add(time.Hour)))
}

func TestStore_LoadMatchesUnknownScan(t *testing.T) {
	store := openTestStore(t)
	_, err := store.LoadMatches(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeNotFound))

	_, err = store.GetScan(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeNotFound))
}

func TestStore_SaveScanValidation(t *testing.T) {
	store := openTestStore(t)
	_, err := store.SaveScan(context.Background(), ScanRecord{Library: "mylib"}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))
}

func TestStore_DuplicateIDFails(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	rec := ScanRecord{ID: "dup", Interface: "f", Library: "lib"}
	_, err := store.SaveScan(ctx, rec, nil)
	require.NoError(t, err)
	_, err = store.SaveScan(ctx, rec, []MatchRecord{{Path: "x.py", Kind: "call"}})
	require.Error(t, err)

	matches, err := store.LoadMatches(ctx, "dup")
	require.NoError(t, err)
	assert.Empty(t, matches, "failed transaction must not leave matches behind")
}

func TestOpen_RejectsBadPaths(t *testing.T) {
	_, err := Open("  ", 0)
	require.Error(t, err)

	dir := t.TempDir()
	_, err = Open(dir, 0)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))
}

func TestOpen_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(path, 0)
	require.NoError(t, err)
	id, err := store.SaveScan(context.Background(), ScanRecord{Interface: "f", Library: "lib"}, nil)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := Open(path, 0)
	require.NoError(t, err)
	defer reopened.Close()
	assert.Equal(t, path, reopened.Path())

	scans, err := reopened.ListScans(context.Background(), ScanFilter{})
	require.NoError(t, err)
	require.Len(t, scans, 1)
	assert.Equal(t, id, scans[0].ID)

	_, statErr := os.Stat(path)
	assert.NoError(t, statErr)
}

func TestIsLockError(t *testing.T) {
	assert.False(t, isLockError(nil))
	assert.False(t, isLockError(os.ErrDeadlineExceeded))
	assert.True(t, isLockError(errors.New(errors.CodeInternal, "database is locked")))
}
