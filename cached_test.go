package fluxorblob

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCachedStore_ReadThrough(t *testing.T) {
	ctx := context.Background()
	store, err := OpenCached(ctx, t.TempDir(), "assets")
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "k", []byte("cached")))

	// First read fills the cache, second is served from it; both agree.
	first, err := store.Get(ctx, "k")
	require.NoError(t, err)
	second, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "cached", string(first))
	require.Equal(t, first, second)
}

func TestCachedStore_PutInvalidates(t *testing.T) {
	ctx := context.Background()
	store, err := OpenCached(ctx, t.TempDir(), "assets")
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "k", []byte("v1")))
	_, err = store.Get(ctx, "k") // warm the cache
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "k", []byte("v2")))
	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "v2", string(got))
}

func TestCachedStore_RemoveInvalidates(t *testing.T) {
	ctx := context.Background()
	store, err := OpenCached(ctx, t.TempDir(), "assets")
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "k", []byte("v")))
	_, err = store.Get(ctx, "k")
	require.NoError(t, err)

	removed, err := store.Remove(ctx, "k")
	require.NoError(t, err)
	require.True(t, removed)

	_, err = store.Get(ctx, "k")
	require.ErrorIs(t, err, ErrNotFound)

	ok, err := store.Exists(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCachedStore_ShardedVariant(t *testing.T) {
	ctx := context.Background()
	store, err := OpenCached(ctx, t.TempDir(), "assets",
		WithShardedCache(true),
		WithCacheBytes(1<<20),
	)
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "k", []byte("sharded")))
	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "sharded", string(got))

	store.ClearCache()
	got, err = store.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "sharded", string(got))
}

func TestCachedStore_ListAndSize(t *testing.T) {
	ctx := context.Background()
	store, err := OpenCached(ctx, t.TempDir(), "assets")
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "a", []byte("12")))
	require.NoError(t, store.Put(ctx, "b", []byte("345")))

	keys, err := store.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, keys)

	size, err := store.SizeOf(ctx, "b")
	require.NoError(t, err)
	require.Equal(t, uint64(3), size)
}
