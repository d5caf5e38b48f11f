package fluxorblob

import (
	"github.com/quadgate/fluxor-blob/internal/fsutil"
	"github.com/quadgate/fluxor-blob/internal/resource"
)

// DefaultCacheBytes is the CachedStore read-cache budget when none is set.
const DefaultCacheBytes int64 = 64 << 20

type options struct {
	logger              *Logger
	fs                  fsutil.FileSystem
	retention           int
	cacheBytes          int64
	shardedCache        bool
	snapshotCompression bool
	rebuildWorkers      int
	rc                  *resource.Controller
}

// Option configures Open and OpenCached.
type Option func(*options)

// WithLogger sets the structured logger for all components.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithFileSystem overrides the file system (tests inject fault rules).
func WithFileSystem(fsys fsutil.FileSystem) Option {
	return func(o *options) { o.fs = fsys }
}

// WithRetention sets how many of the lexicographically greatest versions
// survive a put. Default 3.
func WithRetention(n int) Option {
	return func(o *options) { o.retention = n }
}

// WithCacheBytes sets the CachedStore read-cache budget in bytes.
func WithCacheBytes(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.cacheBytes = n
		}
	}
}

// WithShardedCache switches the read cache to the 64-shard variant for
// high-concurrency workloads.
func WithShardedCache(on bool) Option {
	return func(o *options) { o.shardedCache = on }
}

// WithSnapshotCompression stores the index snapshot zstd-compressed.
// Loading accepts both forms regardless.
func WithSnapshotCompression(on bool) Option {
	return func(o *options) { o.snapshotCompression = on }
}

// WithRebuildWorkers bounds the index rebuild stat pool.
func WithRebuildWorkers(n int) Option {
	return func(o *options) { o.rebuildWorkers = n }
}

// WithResourceController attaches a controller that throttles background
// IO (export, offload).
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) { o.rc = rc }
}

func newOptions(opts ...Option) options {
	o := options{
		logger:     NoopLogger(),
		cacheBytes: DefaultCacheBytes,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
