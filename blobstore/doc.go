// Package blobstore implements the persistent, versioned blob store.
//
// A Store maps (bucket, key, version) triples to files on disk. Keys are
// arbitrary byte strings; the on-disk name is the lowercase hex encoding of
// the key, placed in one of 256 shard directories selected by the first two
// hex characters:
//
//	<root>/<bucket>/data/<xx>/<hex(key)>             # unversioned
//	<root>/<bucket>/data/<xx>/<hex(key)>.<version>   # versioned
//
// The version delimiter is a dot, which cannot occur in hex, so the path
// always decodes unambiguously back to (key, version).
//
// # Durability
//
// Every write goes through fsutil.WriteAtomic: readers either see the
// previous version or the complete new bytes, never a torn file. A crash
// leaves at most a ".tmp-<pid>" sidecar, swept by Init.
//
// # Versioning
//
// A put with a version id creates a new file next to its siblings. After a
// successful put the store keeps only the lexicographically greatest
// versions (three by default, see WithRetention) and unlinks the rest
// best-effort. An empty version id on read paths means "greatest existing
// version".
//
// # Concurrency
//
// The store does not serialize concurrent puts to the same key; callers
// either partition writes per key externally or accept last-writer-wins
// with atomic visibility. Concurrent readers are always safe under POSIX
// rename atomicity.
package blobstore
