// Package fluxorblob is an embeddable, content-addressed blob storage
// engine: a bucketed key->bytes store with atomic durability, bounded
// multi-version retention, memory-mapped zero-copy reads, an in-memory
// index for O(1) lookups and ordered scans, and an LRU read cache.
//
// # Entry points
//
//   - IndexedStore: a blob store for one bucket with write-through index
//     maintenance, snapshot persistence, and prefix/range scans.
//   - CachedStore: a blob store for one bucket fronted by a byte-bounded
//     LRU read cache.
//   - blobstore.Store: the underlying multi-bucket store, for callers who
//     manage indexing themselves.
//   - batchindex.Run: the one-shot static indexer for bulk
//     (key, size, offset) workloads.
//
// # Quick start
//
//	store, err := fluxorblob.Open(ctx, "/var/lib/blobs", "assets")
//	if err != nil { ... }
//	defer store.Close()
//
//	if err := store.Put(ctx, "logo.png", data); err != nil { ... }
//	b, err := store.Get(ctx, "logo.png")
//	keys := store.KeysWithPrefix("logo")
package fluxorblob
