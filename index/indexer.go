package index

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/btree"
	"golang.org/x/sync/errgroup"

	"github.com/quadgate/fluxor-blob/blobstore"
	"github.com/quadgate/fluxor-blob/internal/fsutil"
)

// BlobMeta is the indexed metadata for one key.
type BlobMeta struct {
	Size    uint64
	ModTime uint64 // unix seconds
}

const (
	btreeDegree = 32

	// rebuildChunk is the number of keys a rebuild worker claims at once.
	rebuildChunk = 1024
)

// Indexer is the dynamic in-memory index coupled to one store bucket.
type Indexer struct {
	store  *blobstore.Store
	bucket string
	fs     fsutil.FileSystem
	logger *slog.Logger

	compress bool
	workers  int
	now      func() uint64

	mu         sync.Mutex
	metas      map[string]BlobMeta
	keys       *btree.BTreeG[string]
	totalBytes uint64
}

// Option configures an Indexer.
type Option func(*Indexer)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(ix *Indexer) {
		if logger != nil {
			ix.logger = logger
		}
	}
}

// WithSnapshotCompression enables zstd compression for Snapshot output.
// LoadSnapshot accepts both forms regardless of this setting.
func WithSnapshotCompression(on bool) Option {
	return func(ix *Indexer) { ix.compress = on }
}

// WithRebuildWorkers bounds the stat worker pool used by Rebuild.
func WithRebuildWorkers(n int) Option {
	return func(ix *Indexer) {
		if n > 0 {
			ix.workers = n
		}
	}
}

// WithFileSystem overrides the file system used for snapshot I/O.
func WithFileSystem(fsys fsutil.FileSystem) Option {
	return func(ix *Indexer) {
		if fsys != nil {
			ix.fs = fsys
		}
	}
}

// WithClock overrides the modTime source. Tests pin it.
func WithClock(now func() uint64) Option {
	return func(ix *Indexer) {
		if now != nil {
			ix.now = now
		}
	}
}

// New creates an empty Indexer for the given store bucket.
func New(store *blobstore.Store, bucket string, opts ...Option) *Indexer {
	ix := &Indexer{
		store:   store,
		bucket:  bucket,
		fs:      fsutil.Default,
		logger:  slog.New(slog.DiscardHandler),
		workers: 8,
		now:     func() uint64 { return uint64(time.Now().Unix()) },
		metas:   make(map[string]BlobMeta),
		keys:    btree.NewG(btreeDegree, func(a, b string) bool { return a < b }),
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Rebuild repopulates the index by scanning the bucket on disk. Keys whose
// stat fails mid-scan are skipped. Stat calls run on a worker pool; the
// resulting insertion order is not observable.
func (ix *Indexer) Rebuild(ctx context.Context) error {
	keys, err := ix.store.List(ctx, ix.bucket)
	if err != nil {
		return err
	}

	type keyed struct {
		meta BlobMeta
		ok   bool
	}
	metas := make([]keyed, len(keys))

	var cursor atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	for range ix.workers {
		g.Go(func() error {
			for {
				if err := gctx.Err(); err != nil {
					return err
				}
				start := int(cursor.Add(rebuildChunk)) - rebuildChunk
				if start >= len(keys) {
					return nil
				}
				end := min(start+rebuildChunk, len(keys))
				for i := start; i < end; i++ {
					size, err := ix.store.SizeOf(gctx, ix.bucket, keys[i], "")
					if err != nil {
						// The key may have been removed since List;
						// skip it rather than fail the rebuild.
						continue
					}
					metas[i] = keyed{meta: BlobMeta{Size: size, ModTime: ix.now()}, ok: true}
				}
			}
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.clearLocked()
	skipped := 0
	for i, k := range keys {
		if !metas[i].ok {
			skipped++
			continue
		}
		ix.metas[k] = metas[i].meta
		ix.keys.ReplaceOrInsert(k)
		ix.totalBytes += metas[i].meta.Size
	}
	ix.logger.Info("index rebuilt", "bucket", ix.bucket, "keys", len(ix.metas), "skipped", skipped)
	return nil
}

// OnPut records a put of key with the given payload size, overwriting any
// previous entry.
func (ix *Indexer) OnPut(key string, size uint64) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if old, ok := ix.metas[key]; ok {
		ix.totalBytes -= old.Size
	}
	ix.metas[key] = BlobMeta{Size: size, ModTime: ix.now()}
	ix.keys.ReplaceOrInsert(key)
	ix.totalBytes += size
}

// OnRemove erases key from both views. No-op if absent.
func (ix *Indexer) OnRemove(key string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if old, ok := ix.metas[key]; ok {
		ix.totalBytes -= old.Size
		delete(ix.metas, key)
		ix.keys.Delete(key)
	}
}

// Exists reports whether key is indexed.
func (ix *Indexer) Exists(key string) bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	_, ok := ix.metas[key]
	return ok
}

// GetMeta returns the indexed metadata for key.
func (ix *Indexer) GetMeta(key string) (BlobMeta, bool) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	meta, ok := ix.metas[key]
	return meta, ok
}

// Count returns the number of indexed keys.
func (ix *Indexer) Count() int {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return len(ix.metas)
}

// TotalBytes returns the sum of all indexed sizes.
func (ix *Indexer) TotalBytes() uint64 {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.totalBytes
}

// AllKeys returns every indexed key in ascending order.
func (ix *Indexer) AllKeys() []string {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	out := make([]string, 0, ix.keys.Len())
	ix.keys.Ascend(func(k string) bool {
		out = append(out, k)
		return true
	})
	return out
}

// KeysWithPrefix returns the indexed keys beginning with prefix, ascending.
func (ix *Indexer) KeysWithPrefix(prefix string) []string {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	var out []string
	ix.keys.AscendGreaterOrEqual(prefix, func(k string) bool {
		if !strings.HasPrefix(k, prefix) {
			return false
		}
		out = append(out, k)
		return true
	})
	return out
}

// KeysInRange returns the indexed keys in [start, end), ascending.
func (ix *Indexer) KeysInRange(start, end string) []string {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	var out []string
	ix.keys.AscendRange(start, end, func(k string) bool {
		out = append(out, k)
		return true
	})
	return out
}

// Clear empties the index. Blobs on disk are untouched.
func (ix *Indexer) Clear() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.clearLocked()
}

func (ix *Indexer) clearLocked() {
	ix.metas = make(map[string]BlobMeta)
	ix.keys.Clear(false)
	ix.totalBytes = 0
}
