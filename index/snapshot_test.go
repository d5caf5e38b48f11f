package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSnapshot_RoundTrip(t *testing.T) {
	store, ix := newTestIndexer(t, WithClock(func() uint64 { return 1700000000 }))

	ix.OnPut("alpha", 10)
	ix.OnPut("beta", 20)
	ix.OnPut("", 0) // empty key survives the format

	require.NoError(t, ix.Snapshot())

	// A fresh indexer over the same root reconstructs both views exactly.
	other := New(store, testBucket, WithClock(func() uint64 { return 1700000000 }))
	loaded, err := other.LoadSnapshot()
	require.NoError(t, err)
	require.True(t, loaded)

	require.Equal(t, 3, other.Count())
	require.Equal(t, uint64(30), other.TotalBytes())
	require.Equal(t, []string{"", "alpha", "beta"}, other.AllKeys())

	meta, ok := other.GetMeta("alpha")
	require.True(t, ok)
	require.Equal(t, BlobMeta{Size: 10, ModTime: 1700000000}, meta)
}

func TestSnapshot_PlainTextFormat(t *testing.T) {
	store, ix := newTestIndexer(t, WithClock(func() uint64 { return 42 }))
	ix.OnPut("key", 7)
	require.NoError(t, ix.Snapshot())

	raw, err := os.ReadFile(filepath.Join(store.Root(), SnapshotName))
	require.NoError(t, err)
	require.Equal(t, "key\t7\t42\n", string(raw))
}

func TestSnapshot_Compressed(t *testing.T) {
	store, ix := newTestIndexer(t,
		WithSnapshotCompression(true),
		WithClock(func() uint64 { return 42 }),
	)
	ix.OnPut("compressed-key", 123)
	require.NoError(t, ix.Snapshot())

	raw, err := os.ReadFile(filepath.Join(store.Root(), SnapshotName))
	require.NoError(t, err)
	require.Equal(t, zstdMagic, raw[:4])

	// A loader without the compression option still reads it.
	other := New(store, testBucket)
	loaded, err := other.LoadSnapshot()
	require.NoError(t, err)
	require.True(t, loaded)

	meta, ok := other.GetMeta("compressed-key")
	require.True(t, ok)
	require.Equal(t, uint64(123), meta.Size)
}

func TestLoadSnapshot_Missing(t *testing.T) {
	_, ix := newTestIndexer(t)
	loaded, err := ix.LoadSnapshot()
	require.NoError(t, err)
	require.False(t, loaded)
}

func TestLoadSnapshot_Corrupt(t *testing.T) {
	store, ix := newTestIndexer(t)

	cases := map[string]string{
		"missing fields":    "justakey\n",
		"non-numeric size":  "key\tabc\t42\n",
		"non-numeric mtime": "key\t7\tlater\n",
		"truncated line":    "key\t7\t42",
	}
	for name, contents := range cases {
		require.NoError(t, os.WriteFile(filepath.Join(store.Root(), SnapshotName), []byte(contents), 0o644))
		_, err := ix.LoadSnapshot()
		require.ErrorIs(t, err, ErrCorruption, "case %q", name)
	}
}

func TestLoadSnapshot_EmptyFileIsEmptyIndex(t *testing.T) {
	store, ix := newTestIndexer(t)
	ix.OnPut("stale", 1)

	require.NoError(t, os.WriteFile(filepath.Join(store.Root(), SnapshotName), nil, 0o644))
	loaded, err := ix.LoadSnapshot()
	require.NoError(t, err)
	require.True(t, loaded)
	require.Zero(t, ix.Count())
}

func TestSnapshot_FacadeRoundTripAfterClear(t *testing.T) {
	store, ix := newTestIndexer(t)
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, testBucket, "disk-key", []byte("1234"), ""))
	require.NoError(t, ix.Rebuild(ctx))

	require.NoError(t, ix.Snapshot())
	ix.Clear()
	require.Zero(t, ix.Count())

	loaded, err := ix.LoadSnapshot()
	require.NoError(t, err)
	require.True(t, loaded)
	require.Equal(t, []string{"disk-key"}, ix.AllKeys())
	meta, _ := ix.GetMeta("disk-key")
	require.Equal(t, uint64(4), meta.Size)
}
