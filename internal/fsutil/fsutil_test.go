package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteAtomic_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "blob")

	require.NoError(t, WriteAtomic(nil, path, []byte("payload")))

	data, err := ReadAll(nil, path)
	require.NoError(t, err)
	require.Equal(t, "payload", string(data))

	size, err := FileSize(nil, path)
	require.NoError(t, err)
	require.Equal(t, uint64(7), size)

	// No temp sidecar left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestWriteAtomic_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty")

	require.NoError(t, WriteAtomic(nil, path, nil))

	data, err := ReadAll(nil, path)
	require.NoError(t, err)
	require.Empty(t, data)

	size, err := FileSize(nil, path)
	require.NoError(t, err)
	require.Zero(t, size)
}

func TestWriteAtomic_FailedWriteKeepsPrevious(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blob")
	require.NoError(t, WriteAtomic(nil, path, []byte("v1")))

	ffs := NewFaultyFS(nil)
	ffs.AddFault(".tmp-", Fault{FailOnWrite: true})

	err := WriteAtomic(ffs, path, []byte("v2"))
	require.ErrorIs(t, err, ErrInjected)

	// Previous contents intact, temp cleaned up.
	data, err := ReadAll(nil, path)
	require.NoError(t, err)
	require.Equal(t, "v1", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestWriteAtomic_FailedRenameKeepsPrevious(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blob")
	require.NoError(t, WriteAtomic(nil, path, []byte("old")))

	ffs := NewFaultyFS(nil)
	ffs.AddFault("blob", Fault{FailOnRename: true})

	err := WriteAtomic(ffs, path, []byte("new"))
	require.ErrorIs(t, err, ErrInjected)

	data, err := ReadAll(nil, path)
	require.NoError(t, err)
	require.Equal(t, "old", string(data))
}

func TestFileSize_Missing(t *testing.T) {
	_, err := FileSize(nil, filepath.Join(t.TempDir(), "nope"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestIsTempPath(t *testing.T) {
	require.True(t, IsTempPath(TempPath("/a/b/c")))
	require.True(t, IsTempPath("6162.tmp-1234"))
	require.False(t, IsTempPath("6162"))
	require.False(t, IsTempPath("6162.v7"))
}

func TestReadAll_FaultyFSFallback(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blob")
	require.NoError(t, os.WriteFile(path, []byte("through the interface"), 0o644))

	data, err := ReadAll(NewFaultyFS(nil), path)
	require.NoError(t, err)
	require.Equal(t, "through the interface", string(data))
}
