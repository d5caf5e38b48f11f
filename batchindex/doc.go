// Package batchindex implements the one-shot static indexer: a pipeline
// that ingests a text stream of (key, size, offset) records, builds an
// open-addressing hash table over arena-owned keys, answers a batch of
// point queries, and emits the answers in query order.
//
// # Pipeline
//
// Run maps the entire input read-only (pre-faulted, sequential advice),
// parses records zero-copy against the mapping, then copies every key into
// a single bump-allocated arena in parallel. Arena ownership decouples key
// lifetime from the mapping and packs keys for cache locality. The table
// is sized once at twice the entry count (load factor <= 0.5) and never
// rehashed; inserts are serial, queries may run sequentially with
// look-ahead prefetch or in parallel over claimed chunks.
//
// # Hashing
//
// Keys hash with unrolled FNV-1a 64. The full 64-bit hash picks the probe
// start; the lower 32 bits are stored per slot so lookups reject mismatches
// before touching key bytes. Query hashes are computed at parse time and
// carried through, so no key is ever hashed twice.
//
// Duplicate keys in the input are permitted: probe order makes the first
// inserted entry the one lookups find (first-wins).
package batchindex
