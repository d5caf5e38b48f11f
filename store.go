package fluxorblob

import (
	"context"

	"github.com/quadgate/fluxor-blob/blobstore"
	"github.com/quadgate/fluxor-blob/index"
)

// IndexedStore couples a blob store bucket with the dynamic indexer.
// Writes go through the store first, then update the index, so the index
// never claims a key the disk does not have. Indexed reads (Exists, Meta,
// key scans) never touch the disk.
type IndexedStore struct {
	store   *blobstore.Store
	indexer *index.Indexer
	bucket  string
	logger  *Logger
}

// Open creates (or reopens) the bucket under root and warms the index:
// the snapshot is loaded when present, otherwise the index is rebuilt by
// scanning the bucket.
func Open(ctx context.Context, root, bucket string, opts ...Option) (*IndexedStore, error) {
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

	ixOpts := []index.Option{
		index.WithLogger(o.logger.Logger),
		index.WithSnapshotCompression(o.snapshotCompression),
	}
	if o.fs != nil {
		ixOpts = append(ixOpts, index.WithFileSystem(o.fs))
	}
	if o.rebuildWorkers > 0 {
		ixOpts = append(ixOpts, index.WithRebuildWorkers(o.rebuildWorkers))
	}
	indexer := index.New(store, bucket, ixOpts...)

	s := &IndexedStore{
		store:   store,
		indexer: indexer,
		bucket:  bucket,
		logger:  o.logger.WithBucket(bucket),
	}

	loaded, err := indexer.LoadSnapshot()
	if err != nil || !loaded {
		if err != nil {
			s.logger.Warn("index snapshot unusable, rebuilding", "error", err)
		}
		if err := indexer.Rebuild(ctx); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Put writes data under key and records it in the index.
func (s *IndexedStore) Put(ctx context.Context, key string, data []byte) error {
	if err := s.store.Put(ctx, s.bucket, key, data, ""); err != nil {
		s.logger.LogPut(ctx, key, len(data), err)
		return err
	}
	s.indexer.OnPut(key, uint64(len(data)))
	s.logger.LogPut(ctx, key, len(data), nil)
	return nil
}

// Get returns the bytes stored under key.
func (s *IndexedStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.store.Get(ctx, s.bucket, key, "")
}

// Remove unlinks every version of key. The index entry is dropped only
// when the store actually removed something.
func (s *IndexedStore) Remove(ctx context.Context, key string) (bool, error) {
	removed, err := s.store.Remove(ctx, s.bucket, key, "")
	if err != nil {
		s.logger.LogRemove(ctx, key, false, err)
		return false, err
	}
	if removed {
		s.indexer.OnRemove(key)
	}
	s.logger.LogRemove(ctx, key, removed, nil)
	return removed, nil
}

// Exists reports whether key is indexed. O(1), no disk access.
func (s *IndexedStore) Exists(key string) bool {
	return s.indexer.Exists(key)
}

// Meta returns the indexed size and modification time for key.
func (s *IndexedStore) Meta(key string) (index.BlobMeta, bool) {
	return s.indexer.GetMeta(key)
}

// Keys returns every indexed key in ascending order.
func (s *IndexedStore) Keys() []string { return s.indexer.AllKeys() }

// KeysWithPrefix returns indexed keys beginning with prefix, ascending.
func (s *IndexedStore) KeysWithPrefix(prefix string) []string {
	return s.indexer.KeysWithPrefix(prefix)
}

// KeysInRange returns indexed keys in [start, end), ascending.
func (s *IndexedStore) KeysInRange(start, end string) []string {
	return s.indexer.KeysInRange(start, end)
}

// Count returns the number of indexed keys.
func (s *IndexedStore) Count() int { return s.indexer.Count() }

// TotalBytes returns the summed indexed sizes.
func (s *IndexedStore) TotalBytes() uint64 { return s.indexer.TotalBytes() }

// SaveIndex persists the index snapshot.
func (s *IndexedStore) SaveIndex() error { return s.indexer.Snapshot() }

// LoadIndex replaces the index from the snapshot file. Returns false when
// no snapshot exists.
func (s *IndexedStore) LoadIndex() (bool, error) { return s.indexer.LoadSnapshot() }

// RebuildIndex rescans the bucket from disk.
func (s *IndexedStore) RebuildIndex(ctx context.Context) error {
	err := s.indexer.Rebuild(ctx)
	s.logger.LogRebuild(ctx, s.indexer.Count(), err)
	return err
}

// Store exposes the underlying multi-bucket store.
func (s *IndexedStore) Store() *blobstore.Store { return s.store }

// Indexer exposes the dynamic indexer.
func (s *IndexedStore) Indexer() *index.Indexer { return s.indexer }

// Bucket returns the bucket this store is bound to.
func (s *IndexedStore) Bucket() string { return s.bucket }

// Close persists the index snapshot.
func (s *IndexedStore) Close() error { return s.indexer.Snapshot() }
