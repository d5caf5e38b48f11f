// Package cache provides a bounded-byte LRU cache for blob payloads.
//
// LRU is the single-mutex implementation the cached store uses by default.
// Payload slices are shared between the cache and its callers: eviction
// only drops the cache's reference, so readers holding a result keep a
// valid slice past eviction. Callers must treat returned slices as
// read-only.
//
// ShardedLRU distributes entries across 64 independent shards for
// high-concurrency workloads where the single mutex becomes a bottleneck.
package cache
