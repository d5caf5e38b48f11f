package blobstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/quadgate/fluxor-blob/internal/fsutil"
	"github.com/quadgate/fluxor-blob/internal/resource"
)

// ErrNotFound is returned when a blob or version does not exist.
//
// It maps to os.ErrNotExist, so errors.Is(err, ErrNotFound) also holds for
// raw stat failures bubbling up from the file system.
var ErrNotFound = os.ErrNotExist

// ErrInvalidKey is returned for keys the store cannot represent: malformed
// hex on decode paths, or keys containing tab or newline (which would
// corrupt the index snapshot format).
var ErrInvalidKey = errors.New("blobstore: invalid key")

// DefaultRetention is the number of lexicographically greatest versions
// kept per key after a put.
const DefaultRetention = 3

// Store is a bucketed, versioned key->bytes store rooted at a directory.
type Store struct {
	root   string
	fs     fsutil.FileSystem
	logger *slog.Logger
	rc     *resource.Controller
	retain int
}

// Option configures a Store.
type Option func(*Store)

// WithFileSystem overrides the file system (tests use FaultyFS).
func WithFileSystem(fsys fsutil.FileSystem) Option {
	return func(s *Store) {
		if fsys != nil {
			s.fs = fsys
		}
	}
}

// WithLogger sets the structured logger. Defaults to a discarding logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRetention sets how many of the lexicographically greatest versions
// survive a put. n < 1 keeps the default.
func WithRetention(n int) Option {
	return func(s *Store) {
		if n >= 1 {
			s.retain = n
		}
	}
}

// WithResourceController attaches a controller used to throttle background
// IO (export, offload).
func WithResourceController(rc *resource.Controller) Option {
	return func(s *Store) { s.rc = rc }
}

// New creates a Store rooted at the given directory. The directory is not
// touched until Init.
func New(root string, opts ...Option) *Store {
	s := &Store{
		root:   root,
		fs:     fsutil.Default,
		logger: slog.New(slog.DiscardHandler),
		retain: DefaultRetention,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the store's root directory.
func (s *Store) Root() string { return s.root }

// Init ensures the root and the bucket's data directory exist, and sweeps
// temp sidecars left behind by interrupted writes. Idempotent.
func (s *Store) Init(ctx context.Context, bucket string) error {
	if bucket == "" {
		return errors.New("blobstore: empty bucket name")
	}
	if err := s.fs.MkdirAll(s.dataDir(bucket), fsutil.DirMode); err != nil {
		return fmt.Errorf("blobstore: init bucket %s: %w", bucket, err)
	}
	s.sweepTemps(ctx, bucket)
	return nil
}

// sweepTemps removes ".tmp-*" sidecars under the bucket's data tree.
// Best-effort: a failed unlink only costs disk space.
func (s *Store) sweepTemps(ctx context.Context, bucket string) {
	shards, err := s.fs.ReadDir(s.dataDir(bucket))
	if err != nil {
		return
	}
	for _, shard := range shards {
		if ctx.Err() != nil {
			return
		}
		if !shard.IsDir() {
			continue
		}
		shardDir := filepath.Join(s.dataDir(bucket), shard.Name())
		entries, err := s.fs.ReadDir(shardDir)
		if err != nil {
			continue
		}
		for _, ent := range entries {
			if fsutil.IsTempPath(ent.Name()) {
				if err := s.fs.Remove(filepath.Join(shardDir, ent.Name())); err == nil {
					s.logger.Debug("swept stale temp file", "bucket", bucket, "name", ent.Name())
				}
			}
		}
	}
}

func validateKey(key string) error {
	if strings.ContainsAny(key, "\t\n") {
		return fmt.Errorf("%w: key contains tab or newline", ErrInvalidKey)
	}
	return nil
}

// Put stores data under (bucket, key, version) atomically. An empty version
// writes the unversioned file. After a successful write, versions beyond
// the retention count are unlinked best-effort; reaping failures never fail
// the put.
func (s *Store) Put(ctx context.Context, bucket, key string, data []byte, version string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	path := s.blobPath(bucket, key, version)
	if err := fsutil.WriteAtomic(s.fs, path, data); err != nil {
		return err
	}
	s.logger.Debug("put", "bucket", bucket, "key", key, "version", version, "size", len(data))

	s.reapVersions(ctx, bucket, key)
	return nil
}

// reapVersions unlinks all but the retain lexicographically greatest
// versions of key. Failures are swallowed: retention is advisory, the put
// already succeeded.
func (s *Store) reapVersions(ctx context.Context, bucket, key string) {
	versions, err := s.ListVersions(ctx, bucket, key)
	if err != nil {
		return
	}
	sort.Sort(sort.Reverse(sort.StringSlice(versions)))
	for _, v := range versions[min(s.retain, len(versions)):] {
		if err := s.fs.Remove(s.blobPath(bucket, key, v)); err == nil {
			s.logger.Debug("reaped version", "bucket", bucket, "key", key, "version", v)
		}
	}
}

// resolveVersion maps an empty version id to the greatest existing one.
func (s *Store) resolveVersion(ctx context.Context, bucket, key, version string) (string, error) {
	if version != "" {
		return version, nil
	}
	versions, err := s.ListVersions(ctx, bucket, key)
	if err != nil {
		return "", err
	}
	if len(versions) == 0 {
		return "", fmt.Errorf("blobstore: key %q: %w", key, ErrNotFound)
	}
	return versions[len(versions)-1], nil
}

// Get returns the bytes stored under (bucket, key, version). An empty
// version reads the greatest existing one.
func (s *Store) Get(ctx context.Context, bucket, key, version string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, err := s.resolveVersion(ctx, bucket, key, version)
	if err != nil {
		return nil, err
	}
	data, err := fsutil.ReadAll(s.fs, s.blobPath(bucket, key, v))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("blobstore: key %q: %w", key, ErrNotFound)
		}
		return nil, err
	}
	return data, nil
}

// PutFromFile stores the contents of the file at path under (bucket, key, version).
func (s *Store) PutFromFile(ctx context.Context, bucket, key, path, version string) error {
	data, err := fsutil.ReadAll(s.fs, path)
	if err != nil {
		return err
	}
	return s.Put(ctx, bucket, key, data, version)
}

// GetToFile writes the blob's bytes to the file at path, atomically.
func (s *Store) GetToFile(ctx context.Context, bucket, key, path, version string) error {
	data, err := s.Get(ctx, bucket, key, version)
	if err != nil {
		return err
	}
	return fsutil.WriteAtomic(s.fs, path, data)
}

// Remove unlinks a specific version, or every version of key when version
// is empty. Returns true if anything was removed.
func (s *Store) Remove(ctx context.Context, bucket, key, version string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if version != "" {
		if err := s.fs.Remove(s.blobPath(bucket, key, version)); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return false, nil
			}
			return false, err
		}
		s.logger.Debug("removed", "bucket", bucket, "key", key, "version", version)
		return true, nil
	}

	versions, err := s.ListVersions(ctx, bucket, key)
	if err != nil {
		return false, err
	}
	any := false
	for _, v := range versions {
		if err := s.fs.Remove(s.blobPath(bucket, key, v)); err == nil {
			any = true
		}
	}
	if any {
		s.logger.Debug("removed", "bucket", bucket, "key", key, "versions", len(versions))
	}
	return any, nil
}

// Exists reports whether any version of key is stored.
func (s *Store) Exists(ctx context.Context, bucket, key string) (bool, error) {
	versions, err := s.ListVersions(ctx, bucket, key)
	if err != nil {
		return false, err
	}
	return len(versions) > 0, nil
}

// List walks the bucket's shard directories and returns the deduplicated,
// sorted set of keys. Entries that do not decode are skipped.
func (s *Store) List(ctx context.Context, bucket string) ([]string, error) {
	shards, err := s.fs.ReadDir(s.dataDir(bucket))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	seen := make(map[string]struct{})
	for _, shard := range shards {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !shard.IsDir() {
			continue
		}
		entries, err := s.fs.ReadDir(filepath.Join(s.dataDir(bucket), shard.Name()))
		if err != nil {
			continue
		}
		for _, ent := range entries {
			if fsutil.IsTempPath(ent.Name()) {
				continue
			}
			key, _, err := decodeFilename(ent.Name())
			if err != nil {
				continue
			}
			seen[key] = struct{}{}
		}
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// ListVersions returns the version ids stored for key, in ascending
// lexicographic order. The unversioned file appears as the empty string.
func (s *Store) ListVersions(ctx context.Context, bucket, key string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h := encodeKey(key)
	shardDir := filepath.Join(s.dataDir(bucket), shardFor(h))
	entries, err := s.fs.ReadDir(shardDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	prefix := h + VersionDelim
	var versions []string
	for _, ent := range entries {
		name := ent.Name()
		if fsutil.IsTempPath(name) {
			continue
		}
		switch {
		case name == h:
			versions = append(versions, "")
		case strings.HasPrefix(name, prefix):
			versions = append(versions, name[len(prefix):])
		}
	}
	sort.Strings(versions)
	return versions, nil
}

// LatestVersion returns the lexicographically greatest version id for key.
// Fails with ErrNotFound if the key has no versions at all.
func (s *Store) LatestVersion(ctx context.Context, bucket, key string) (string, error) {
	return s.resolveVersion(ctx, bucket, key, "")
}

// SizeOf returns the stored size of (bucket, key, version) in bytes. An
// empty version resolves to the greatest existing one.
func (s *Store) SizeOf(ctx context.Context, bucket, key, version string) (uint64, error) {
	v, err := s.resolveVersion(ctx, bucket, key, version)
	if err != nil {
		return 0, err
	}
	size, err := fsutil.FileSize(s.fs, s.blobPath(bucket, key, v))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, fmt.Errorf("blobstore: key %q: %w", key, ErrNotFound)
		}
		return 0, err
	}
	return size, nil
}
