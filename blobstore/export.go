package blobstore

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pierrec/lz4/v4"
	"github.com/quadgate/fluxor-blob/internal/fsutil"
)

// Export streams the bucket's blob files to w as an lz4-compressed tar
// archive. Entry names are "<shard>/<filename>" relative to the bucket's
// data directory, so an archive restores into any store root. Export is
// throttled by the store's resource controller when one is configured.
func (s *Store) Export(ctx context.Context, bucket string, w io.Writer) error {
	zw := lz4.NewWriter(w)
	tw := tar.NewWriter(zw)

	shards, err := s.fs.ReadDir(s.dataDir(bucket))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("blobstore: bucket %q: %w", bucket, ErrNotFound)
		}
		return err
	}

	for _, shard := range shards {
		if !shard.IsDir() {
			continue
		}
		entries, err := s.fs.ReadDir(filepath.Join(s.dataDir(bucket), shard.Name()))
		if err != nil {
			continue
		}
		for _, ent := range entries {
			if err := ctx.Err(); err != nil {
				return err
			}
			if fsutil.IsTempPath(ent.Name()) {
				continue
			}
			if _, _, err := decodeFilename(ent.Name()); err != nil {
				continue
			}

			data, err := fsutil.ReadAll(s.fs, filepath.Join(s.dataDir(bucket), shard.Name(), ent.Name()))
			if err != nil {
				return err
			}
			if err := s.rc.WaitIO(ctx, len(data)); err != nil {
				return err
			}

			hdr := &tar.Header{
				Name: path.Join(shard.Name(), ent.Name()),
				Mode: int64(fsutil.FileMode),
				Size: int64(len(data)),
			}
			if err := tw.WriteHeader(hdr); err != nil {
				return err
			}
			if _, err := tw.Write(data); err != nil {
				return err
			}
		}
	}

	if err := tw.Close(); err != nil {
		return err
	}
	return zw.Close()
}

// Import restores blobs from an archive produced by Export into the
// bucket, overwriting existing files. Entries with unrecognizable names
// are rejected rather than silently planted outside the data tree.
func (s *Store) Import(ctx context.Context, bucket string, r io.Reader) error {
	if err := s.Init(ctx, bucket); err != nil {
		return err
	}

	tr := tar.NewReader(lz4.NewReader(r))
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		shard, name, ok := splitArchiveName(hdr.Name)
		if !ok {
			return fmt.Errorf("blobstore: import: unexpected archive entry %q", hdr.Name)
		}
		if _, _, err := decodeFilename(name); err != nil {
			return fmt.Errorf("blobstore: import: entry %q: %w", hdr.Name, err)
		}

		data, err := io.ReadAll(tr)
		if err != nil {
			return err
		}
		if err := s.rc.WaitIO(ctx, len(data)); err != nil {
			return err
		}
		if err := fsutil.WriteAtomic(s.fs, filepath.Join(s.dataDir(bucket), shard, name), data); err != nil {
			return err
		}
	}
}

// splitArchiveName validates a "<shard>/<filename>" archive entry name.
func splitArchiveName(entry string) (shard, name string, ok bool) {
	parts := strings.Split(path.Clean(entry), "/")
	if len(parts) != 2 || parts[0] == ".." || parts[1] == ".." {
		return "", "", false
	}
	return parts[0], parts[1], true
}
