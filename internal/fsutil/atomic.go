package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/quadgate/fluxor-blob/internal/mmap"
)

const (
	// FileMode is the mode for blob and snapshot files.
	FileMode os.FileMode = 0o644
	// DirMode is the mode for storage directories.
	DirMode os.FileMode = 0o755

	tmpInfix = ".tmp-"
)

// TempPath returns the temp sidecar path used by WriteAtomic for path.
func TempPath(path string) string {
	return fmt.Sprintf("%s%s%d", path, tmpInfix, os.Getpid())
}

// IsTempPath reports whether name carries a WriteAtomic temp suffix,
// regardless of the writing pid.
func IsTempPath(name string) bool {
	return strings.Contains(name, tmpInfix)
}

// WriteAtomic writes data to path so that readers never observe a partial
// file: the bytes land in a ".tmp-<pid>" sibling, are flushed, and the temp
// is renamed over the target. The parent directory is created if missing.
// On any failure the temp file is unlinked best-effort.
func WriteAtomic(fsys FileSystem, path string, data []byte) error {
	if fsys == nil {
		fsys = Default
	}
	if err := fsys.MkdirAll(filepath.Dir(path), DirMode); err != nil {
		return fmt.Errorf("fsutil: mkdir %s: %w", filepath.Dir(path), err)
	}

	tmp := TempPath(path)
	f, err := fsys.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, FileMode)
	if err != nil {
		return fmt.Errorf("fsutil: create temp %s: %w", tmp, err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = fsys.Remove(tmp)
		return fmt.Errorf("fsutil: write temp %s: %w", tmp, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = fsys.Remove(tmp)
		return fmt.Errorf("fsutil: sync temp %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		_ = fsys.Remove(tmp)
		return fmt.Errorf("fsutil: close temp %s: %w", tmp, err)
	}

	if err := fsys.Rename(tmp, path); err != nil {
		_ = fsys.Remove(tmp)
		return fmt.Errorf("fsutil: rename %s: %w", path, err)
	}
	return nil
}

// ReadAll returns the full contents of the file at path.
//
// For the local file system the read goes through a read-only mapping with
// sequential-access advice, copied into a heap buffer before unmapping.
// Zero-length files return empty bytes without mapping. Non-local file
// systems fall back to a buffered read so fault injection still works.
func ReadAll(fsys FileSystem, path string) ([]byte, error) {
	if fsys == nil {
		fsys = Default
	}
	if _, ok := fsys.(LocalFS); ok {
		return readAllMapped(path)
	}

	f, err := fsys.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	buf := make([]byte, fi.Size())
	if len(buf) == 0 {
		return buf, nil
	}
	if _, err := f.ReadAt(buf, 0); err != nil {
		return nil, err
	}
	return buf, nil
}

func readAllMapped(path string) ([]byte, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	if m.Size() == 0 {
		return []byte{}, nil
	}
	_ = m.Advise(mmap.AccessSequential)

	buf := make([]byte, m.Size())
	copy(buf, m.Bytes())
	return buf, nil
}

// FileSize returns the size of the file at path. Fails if absent.
func FileSize(fsys FileSystem, path string) (uint64, error) {
	if fsys == nil {
		fsys = Default
	}
	fi, err := fsys.Stat(path)
	if err != nil {
		return 0, err
	}
	return uint64(fi.Size()), nil
}
