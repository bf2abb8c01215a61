package host

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_WriteRead(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.Write(ctx, map[string]string{"a": "1", "b": "2"}, WriteOptions{}))
	require.NoError(t, s.Write(ctx, map[string]string{"a": "updated"}, WriteOptions{Silent: true}))

	got, err := s.Read(ctx, []string{"a", "b", "missing"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "updated", "b": "2"}, got)
}

func TestSQLiteStore_ReadPastParameterLimit(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	// Enough keys to need three chunks and to blow SQLite's default
	// 999-parameter limit in a single unchunked query.
	const n = 1200
	values := make(map[string]string, n)
	keys := make([]string, 0, n)
	for i := 0; i < n; i++ {
		k := fmt.Sprintf("attr_%04d", i)
		values[k] = fmt.Sprintf("%d", i)
		keys = append(keys, k)
	}
	require.NoError(t, s.Write(ctx, values, WriteOptions{}))

	got, err := s.Read(ctx, append(keys, "missing"))
	require.NoError(t, err)
	assert.Len(t, got, n)
	assert.Equal(t, "7", got["attr_0007"])
	assert.Equal(t, "1199", got["attr_1199"])
}

func TestSQLiteStore_ReadEmptyKeyList(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	got, err := s.Read(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLiteStore_ListRowIDsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.Write(ctx, map[string]string{RowKey("bonds", "r2", "name"): "x"}, WriteOptions{}))
	require.NoError(t, s.Write(ctx, map[string]string{RowKey("bonds", "r1", "name"): "y"}, WriteOptions{}))
	// Second member of an existing row must not move it.
	require.NoError(t, s.Write(ctx, map[string]string{RowKey("bonds", "r2", "die"): "z"}, WriteOptions{}))
	// A different section must not leak in.
	require.NoError(t, s.Write(ctx, map[string]string{RowKey("boons", "r9", "check"): "1"}, WriteOptions{}))

	ids, err := s.ListRowIDs(ctx, "bonds")
	require.NoError(t, err)
	assert.Equal(t, []string{"r2", "r1"}, ids)

	none, err := s.ListRowIDs(ctx, "empty")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sheet.db")

	s1, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s1.Write(ctx, map[string]string{"version": "1.0"}, WriteOptions{}))
	require.NoError(t, s1.Close())

	s2, err := OpenSQLite(path)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.Read(ctx, []string{"version"})
	require.NoError(t, err)
	assert.Equal(t, "1.0", got["version"])
}

func TestSQLiteStore_AllInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.Write(ctx, map[string]string{"b": "2"}, WriteOptions{}))
	require.NoError(t, s.Write(ctx, map[string]string{"a": "1"}, WriteOptions{}))

	all, err := s.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, [][2]string{{"b", "2"}, {"a", "1"}}, all)
}
