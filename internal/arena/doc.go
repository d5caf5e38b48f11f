// Package arena provides a fixed-capacity bump allocator for key storage.
//
// The batch indexer copies every ingested key out of the input mapping into
// one arena, decoupling key lifetime from the mapping and giving the hash
// table a cache-friendly layout. Allocations are immortal for the arena's
// lifetime; there is no per-object free.
//
// Concurrent allocation is safe: the bump offset is a single atomic
// fetch-add, and ordering between concurrent allocations is not observable.
// Close must not race with allocations.
package arena
