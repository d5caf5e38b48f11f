package blobstore

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExportImport_RoundTrip(t *testing.T) {
	src := newTestStore(t)
	ctx := context.Background()

	blobs := map[string]string{
		"alpha": "first payload",
		"beta":  "second payload",
		"empty": "",
	}
	for k, v := range blobs {
		require.NoError(t, src.Put(ctx, testBucket, k, []byte(v), ""))
	}
	require.NoError(t, src.Put(ctx, testBucket, "versioned", []byte("v1"), "1"))
	require.NoError(t, src.Put(ctx, testBucket, "versioned", []byte("v2"), "2"))

	var archive bytes.Buffer
	require.NoError(t, src.Export(ctx, testBucket, &archive))

	dst := New(t.TempDir())
	require.NoError(t, dst.Import(ctx, testBucket, &archive))

	for k, v := range blobs {
		got, err := dst.Get(ctx, testBucket, k, "")
		require.NoError(t, err)
		require.Equal(t, v, string(got))
	}

	versions, err := dst.ListVersions(ctx, testBucket, "versioned")
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2"}, versions)

	got, err := dst.Get(ctx, testBucket, "versioned", "")
	require.NoError(t, err)
	require.Equal(t, "v2", string(got))
}

func TestExport_MissingBucket(t *testing.T) {
	s := New(t.TempDir())
	var buf bytes.Buffer
	err := s.Export(context.Background(), "nope", &buf)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestImport_RejectsGarbage(t *testing.T) {
	s := newTestStore(t)
	err := s.Import(context.Background(), testBucket, bytes.NewReader([]byte("not an archive")))
	require.Error(t, err)
}
