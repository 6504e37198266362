package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "journey.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	_, err := Open(" ")
	require.Error(t, err)
}

func TestBucketRoundTripAndOverwrite(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTempStore(t)
	kv := store.Bucket("default")

	_, ok, err := kv.Get(ctx, "viewerName")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set(ctx, "viewerName", []byte(`"Aria"`)))
	require.NoError(t, kv.Set(ctx, "viewerName", []byte(`"Frodo"`)))

	got, ok, err := kv.Get(ctx, "viewerName")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `"Frodo"`, string(got))
}

func TestBucketsAreIsolated(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTempStore(t)

	require.NoError(t, store.Bucket("a").Set(ctx, "cart", []byte(`[]`)))
	_, ok, err := store.Bucket("b").Get(ctx, "cart")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReopenKeepsDataAndSkipsAppliedMigrations(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "journey.db")

	first, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Bucket("p").Set(ctx, "currentPage", []byte(`"roi"`)))
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	got, ok, err := second.Bucket("p").Get(ctx, "currentPage")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `"roi"`, string(got))
}

func TestExtractUp(t *testing.T) {
	t.Parallel()

	content := "-- +migrate Up\nCREATE TABLE x (a INT);\n-- +migrate Down\nDROP TABLE x;\n"
	assert.Equal(t, "\nCREATE TABLE x (a INT);\n", extractUp(content))
	assert.Equal(t, "SELECT 1;", extractUp("SELECT 1;"))
}

func TestNilStoreBucketErrors(t *testing.T) {
	t.Parallel()

	var store *Store
	require.NoError(t, store.Close())
	kv := (&Store{}).Bucket("x")
	_, _, err := kv.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.Error(t, kv.Set(context.Background(), "k", nil))
}
