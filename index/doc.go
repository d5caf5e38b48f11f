// Package index maintains the live in-memory index for one store bucket.
//
// The Indexer keeps two views of the same metadata: a hash view
// (key -> BlobMeta) for O(1) existence and size lookups, and an ordered
// key view for prefix and range scans. The metadata lives only in the hash
// view; the ordered view holds keys, so the two cannot drift apart.
//
// Both views sit behind a single mutex. Range scans copy their results out
// under the mutex, so callers iterate snapshots.
//
// # Persistence
//
// Snapshot writes the index to <root>/.blob_index as one tab-separated
// line per key, optionally zstd-compressed; LoadSnapshot sniffs the zstd
// magic, so either form loads transparently. A missing snapshot is not an
// error (the caller typically rebuilds); a malformed one is reported as
// ErrCorruption with the offending line.
package index
