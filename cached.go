package fluxorblob

import (
	"context"

	"github.com/quadgate/fluxor-blob/blobstore"
	"github.com/quadgate/fluxor-blob/cache"
)

// readCache is the surface CachedStore needs from either LRU variant.
type readCache interface {
	Get(key string) ([]byte, bool)
	Put(key string, value []byte)
	Invalidate(key string)
	Clear()
}

// CachedStore fronts a blob store bucket with a byte-bounded LRU read
// cache. Writes and removes invalidate before touching the store, so the
// cache never serves stale bytes; reads fill the cache on miss. The
// returned payloads are shared with the cache and must be treated as
// read-only.
type CachedStore struct {
	store  *blobstore.Store
	cache  readCache
	bucket string
	logger *Logger
}

// OpenCached creates (or reopens) the bucket under root with a read cache
// of WithCacheBytes capacity (64 MiB default).
func OpenCached(ctx context.Context, root, bucket string, opts ...Option) (*CachedStore, error) {
	o := newOptions(opts...)

	storeOpts := []blobstore.Option{
		blobstore.WithLogger(o.logger.Logger),
		blobstore.WithRetention(o.retention),
		blobstore.WithResourceController(o.rc),
	}
	if o.fs != nil {
		storeOpts = append(storeOpts, blobstore.WithFileSystem(o.fs))
	}
	store := blobstore.New(root, storeOpts...)
	if err := store.Init(ctx, bucket); err != nil {
		return nil, err
	}

	var rc readCache
	if o.shardedCache {
		rc = cache.NewShardedLRU(o.cacheBytes)
	} else {
		rc = cache.NewLRU(o.cacheBytes)
	}

	return &CachedStore{
		store:  store,
		cache:  rc,
		bucket: bucket,
		logger: o.logger.WithBucket(bucket),
	}, nil
}

// Put writes data under key, invalidating any cached copy.
func (s *CachedStore) Put(ctx context.Context, key string, data []byte) error {
	s.cache.Invalidate(key)
	return s.store.Put(ctx, s.bucket, key, data, "")
}

// Get returns the bytes for key, from cache when possible.
func (s *CachedStore) Get(ctx context.Context, key string) ([]byte, error) {
	if data, ok := s.cache.Get(key); ok {
		return data, nil
	}
	data, err := s.store.Get(ctx, s.bucket, key, "")
	if err != nil {
		return nil, err
	}
	s.cache.Put(key, data)
	return data, nil
}

// Remove unlinks every version of key and drops the cached copy.
func (s *CachedStore) Remove(ctx context.Context, key string) (bool, error) {
	s.cache.Invalidate(key)
	return s.store.Remove(ctx, s.bucket, key, "")
}

// Exists reports whether any version of key is stored.
func (s *CachedStore) Exists(ctx context.Context, key string) (bool, error) {
	return s.store.Exists(ctx, s.bucket, key)
}

// List returns the bucket's keys, sorted.
func (s *CachedStore) List(ctx context.Context) ([]string, error) {
	return s.store.List(ctx, s.bucket)
}

// SizeOf returns the stored size of key's greatest version.
func (s *CachedStore) SizeOf(ctx context.Context, key string) (uint64, error) {
	return s.store.SizeOf(ctx, s.bucket, key, "")
}

// Store exposes the underlying multi-bucket store.
func (s *CachedStore) Store() *blobstore.Store { return s.store }

// ClearCache drops every cached payload.
func (s *CachedStore) ClearCache() { s.cache.Clear() }
