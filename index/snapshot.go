package index

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/klauspost/compress/zstd"

	"github.com/quadgate/fluxor-blob/internal/fsutil"
)

// SnapshotName is the snapshot file name under the store root.
const SnapshotName = ".blob_index"

// ErrCorruption is returned when a snapshot line does not parse.
var ErrCorruption = errors.New("index: snapshot corrupted")

// zstdMagic is the zstd frame header; LoadSnapshot uses it to detect
// compressed snapshots regardless of the writer's setting.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

func (ix *Indexer) snapshotPath() string {
	return filepath.Join(ix.store.Root(), SnapshotName)
}

// Snapshot persists the index atomically as one "key\tsize\tmodTime" line
// per key, zstd-compressed when the indexer was configured for it.
func (ix *Indexer) Snapshot() error {
	ix.mu.Lock()
	var buf bytes.Buffer
	ix.keys.Ascend(func(k string) bool {
		meta := ix.metas[k]
		buf.WriteString(k)
		buf.WriteByte('\t')
		buf.WriteString(strconv.FormatUint(meta.Size, 10))
		buf.WriteByte('\t')
		buf.WriteString(strconv.FormatUint(meta.ModTime, 10))
		buf.WriteByte('\n')
		return true
	})
	count := len(ix.metas)
	ix.mu.Unlock()

	data := buf.Bytes()
	if ix.compress {
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return err
		}
		data = enc.EncodeAll(data, make([]byte, 0, len(data)/2))
		_ = enc.Close()
	}

	if err := fsutil.WriteAtomic(ix.fs, ix.snapshotPath(), data); err != nil {
		return err
	}
	ix.logger.Info("index snapshot saved", "bucket", ix.bucket, "keys", count, "bytes", len(data))
	return nil
}

// LoadSnapshot replaces the index contents from the snapshot file.
// Returns false with a nil error when no snapshot exists (the caller
// typically rebuilds), and ErrCorruption when a line does not parse.
func (ix *Indexer) LoadSnapshot() (bool, error) {
	data, err := fsutil.ReadAll(ix.fs, ix.snapshotPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}

	if bytes.HasPrefix(data, zstdMagic) {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return false, err
		}
		data, err = dec.DecodeAll(data, nil)
		dec.Close()
		if err != nil {
			return false, fmt.Errorf("%w: %w", ErrCorruption, err)
		}
	}

	metas := make(map[string]BlobMeta)
	lineNo := 0
	for len(data) > 0 {
		lineNo++
		line, rest, found := bytes.Cut(data, []byte{'\n'})
		if !found {
			return false, fmt.Errorf("%w: line %d: missing newline", ErrCorruption, lineNo)
		}
		data = rest

		key, fields, ok := bytes.Cut(line, []byte{'\t'})
		if !ok {
			return false, fmt.Errorf("%w: line %d: missing size field", ErrCorruption, lineNo)
		}
		sizeStr, modStr, ok := bytes.Cut(fields, []byte{'\t'})
		if !ok {
			return false, fmt.Errorf("%w: line %d: missing modTime field", ErrCorruption, lineNo)
		}
		size, err := strconv.ParseUint(string(sizeStr), 10, 64)
		if err != nil {
			return false, fmt.Errorf("%w: line %d: bad size: %w", ErrCorruption, lineNo, err)
		}
		modTime, err := strconv.ParseUint(string(modStr), 10, 64)
		if err != nil {
			return false, fmt.Errorf("%w: line %d: bad modTime: %w", ErrCorruption, lineNo, err)
		}
		metas[string(key)] = BlobMeta{Size: size, ModTime: modTime}
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.clearLocked()
	for k, meta := range metas {
		ix.metas[k] = meta
		ix.keys.ReplaceOrInsert(k)
		ix.totalBytes += meta.Size
	}
	ix.logger.Info("index snapshot loaded", "bucket", ix.bucket, "keys", len(metas))
	return true, nil
}
