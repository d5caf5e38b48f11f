package blobstore

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/quadgate/fluxor-blob/internal/mmap"
)

// MappedBlob is a read-only, zero-copy view of one stored blob. It pins the
// underlying mapping until Close; the file descriptor is closed as soon as
// the mapping is made, so an open handle does not hold one.
type MappedBlob struct {
	m       *mmap.Mapping
	bucket  string
	key     string
	version string
}

// OpenMapped memory-maps the blob at (bucket, key, version). An empty
// version resolves to the greatest existing one. The returned handle must
// be closed; Bytes is valid only until then.
func (s *Store) OpenMapped(ctx context.Context, bucket, key, version string) (*MappedBlob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, err := s.resolveVersion(ctx, bucket, key, version)
	if err != nil {
		return nil, err
	}
	m, err := mmap.Open(s.blobPath(bucket, key, v))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("blobstore: key %q: %w", key, ErrNotFound)
		}
		return nil, err
	}
	return &MappedBlob{m: m, bucket: bucket, key: key, version: v}, nil
}

// Bytes returns the mapped contents. Nil after Close; empty for
// zero-length blobs.
func (b *MappedBlob) Bytes() []byte { return b.m.Bytes() }

// Size returns the blob size in bytes.
func (b *MappedBlob) Size() int { return b.m.Size() }

// Version returns the resolved version id this handle is pinned to.
func (b *MappedBlob) Version() string { return b.version }

// Advise passes an access-pattern hint to the kernel for the mapped range.
func (b *MappedBlob) Advise(pattern mmap.AccessPattern) error {
	return b.m.Advise(pattern)
}

// Close unmaps the blob. Idempotent.
func (b *MappedBlob) Close() error { return b.m.Close() }
