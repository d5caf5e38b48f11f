package index

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quadgate/fluxor-blob/blobstore"
)

const testBucket = "default"

func newTestIndexer(t *testing.T, opts ...Option) (*blobstore.Store, *Indexer) {
	t.Helper()
	store := blobstore.New(t.TempDir())
	require.NoError(t, store.Init(context.Background(), testBucket))
	return store, New(store, testBucket, opts...)
}

func TestIndexer_OnPutOnRemove(t *testing.T) {
	_, ix := newTestIndexer(t)

	require.False(t, ix.Exists("k"))

	ix.OnPut("k", 42)
	require.True(t, ix.Exists("k"))

	meta, ok := ix.GetMeta("k")
	require.True(t, ok)
	require.Equal(t, uint64(42), meta.Size)
	require.NotZero(t, meta.ModTime)

	require.Equal(t, 1, ix.Count())
	require.Equal(t, uint64(42), ix.TotalBytes())

	// Overwrite replaces, not accumulates.
	ix.OnPut("k", 10)
	require.Equal(t, 1, ix.Count())
	require.Equal(t, uint64(10), ix.TotalBytes())

	ix.OnRemove("k")
	require.False(t, ix.Exists("k"))
	require.Zero(t, ix.Count())
	require.Zero(t, ix.TotalBytes())

	ix.OnRemove("k") // no-op when absent
	require.Zero(t, ix.Count())
}

func TestIndexer_OrderedScans(t *testing.T) {
	_, ix := newTestIndexer(t)

	for _, k := range []string{"cherry", "apple", "banana", "apricot"} {
		ix.OnPut(k, 1)
	}

	require.Equal(t, []string{"apple", "apricot", "banana", "cherry"}, ix.AllKeys())
	require.Equal(t, []string{"apple", "apricot"}, ix.KeysWithPrefix("ap"))
	require.Equal(t, []string{"apricot", "banana"}, ix.KeysInRange("apricot", "cherry"))

	require.Empty(t, ix.KeysWithPrefix("zz"))
	require.Empty(t, ix.KeysInRange("x", "y"))

	// Full range includes everything; [a, a) is empty.
	require.Len(t, ix.KeysInRange("", "\xff"), 4)
	require.Empty(t, ix.KeysInRange("apple", "apple"))
}

func TestIndexer_PrefixIsWholeKeyMatch(t *testing.T) {
	_, ix := newTestIndexer(t)
	ix.OnPut("app", 1)
	ix.OnPut("apple", 1)
	ix.OnPut("application", 1)
	ix.OnPut("banana", 1)

	require.Equal(t, []string{"app", "apple", "application"}, ix.KeysWithPrefix("app"))
	require.Equal(t, []string{"apple", "application"}, ix.KeysWithPrefix("appl"))
}

func TestIndexer_Rebuild(t *testing.T) {
	store, ix := newTestIndexer(t)
	ctx := context.Background()

	payloads := map[string]int{"a": 1, "bb": 2, "ccc": 3}
	for k, n := range payloads {
		require.NoError(t, store.Put(ctx, testBucket, k, make([]byte, n), ""))
	}

	require.NoError(t, ix.Rebuild(ctx))
	require.Equal(t, 3, ix.Count())
	require.Equal(t, uint64(6), ix.TotalBytes())
	for k, n := range payloads {
		meta, ok := ix.GetMeta(k)
		require.True(t, ok)
		require.Equal(t, uint64(n), meta.Size)
	}

	// Rebuild replaces stale state entirely.
	ix.OnPut("ghost", 99)
	require.NoError(t, ix.Rebuild(ctx))
	require.False(t, ix.Exists("ghost"))
	require.Equal(t, 3, ix.Count())
}

func TestIndexer_RebuildManyKeys(t *testing.T) {
	store, ix := newTestIndexer(t, WithRebuildWorkers(4))
	ctx := context.Background()

	const n = 3000 // spans multiple worker chunks
	for i := range n {
		require.NoError(t, store.Put(ctx, testBucket, fmt.Sprintf("key-%04d", i), []byte{1}, ""))
	}

	require.NoError(t, ix.Rebuild(ctx))
	require.Equal(t, n, ix.Count())
	require.Equal(t, uint64(n), ix.TotalBytes())

	keys := ix.AllKeys()
	require.Len(t, keys, n)
	require.Equal(t, "key-0000", keys[0])
	require.Equal(t, fmt.Sprintf("key-%04d", n-1), keys[n-1])
}

func TestIndexer_Clear(t *testing.T) {
	_, ix := newTestIndexer(t)
	ix.OnPut("k", 5)
	ix.Clear()
	require.Zero(t, ix.Count())
	require.Zero(t, ix.TotalBytes())
	require.Empty(t, ix.AllKeys())
}
