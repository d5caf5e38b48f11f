// Package fsutil abstracts file system operations for testability and
// implements the durability primitives the blob store relies on.
//
// WriteAtomic is the single write path for blob payloads and snapshots:
// data lands in a ".tmp-<pid>" sibling first and is renamed over the target,
// so readers either see the previous content or the complete new content,
// never a torn write. A crash leaves at most a temp sidecar, which the store
// sweeps on startup.
//
// FaultyFS wraps any FileSystem and injects errors on configurable
// operations; the atomic-write crash tests are built on it.
package fsutil
