package cache

import (
	"hash/maphash"
)

const numShards = 64

// ShardedLRU distributes entries across 64 LRU shards to reduce lock
// contention. The byte budget is divided evenly; recency is per-shard, so
// eviction order is only approximately global.
type ShardedLRU struct {
	shards [numShards]*LRU
	seed   maphash.Seed
}

// NewShardedLRU creates a sharded cache bounded by capacity bytes in total.
func NewShardedLRU(capacity int64) *ShardedLRU {
	shardCapacity := capacity / numShards
	if shardCapacity < 1 {
		shardCapacity = 1
	}

	s := &ShardedLRU{seed: maphash.MakeSeed()}
	for i := range s.shards {
		s.shards[i] = NewLRU(shardCapacity)
	}
	return s
}

func (s *ShardedLRU) shard(key string) *LRU {
	idx := maphash.String(s.seed, key) % numShards
	return s.shards[idx]
}

// Get returns the cached payload for key.
func (s *ShardedLRU) Get(key string) ([]byte, bool) {
	return s.shard(key).Get(key)
}

// Put inserts value, evicting within the key's shard as needed.
func (s *ShardedLRU) Put(key string, value []byte) {
	s.shard(key).Put(key, value)
}

// Invalidate drops the entry for key, if present.
func (s *ShardedLRU) Invalidate(key string) {
	s.shard(key).Invalidate(key)
}

// Clear drops every entry in every shard.
func (s *ShardedLRU) Clear() {
	for _, sh := range s.shards {
		sh.Clear()
	}
}

// Bytes returns the summed cached byte total.
func (s *ShardedLRU) Bytes() int64 {
	var total int64
	for _, sh := range s.shards {
		total += sh.Bytes()
	}
	return total
}
