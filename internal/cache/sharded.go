package cache

import (
	"hash/maphash"

	"github.com/hupe1980/slicescan/internal/resource"
)

const numShards = 16

// Sharded distributes keys across independent LRU shards.
type Sharded struct {
	shards [numShards]*LRU
	seed   maphash.Seed
}

// NewSharded creates a sharded cache. The capacity is divided evenly
// across all shards.
func NewSharded(capacity int64, rc *resource.Controller) *Sharded {
	shardCapacity := capacity / numShards
	if shardCapacity < 1 {
		shardCapacity = 1
	}

	s := &Sharded{seed: maphash.MakeSeed()}
	for i := range numShards {
		s.shards[i] = NewLRU(shardCapacity, rc)
	}
	return s
}

func (s *Sharded) shard(key string) *LRU {
	return s.shards[maphash.String(s.seed, key)%numShards]
}

// Get returns a cached blob.
func (s *Sharded) Get(key string) ([]byte, bool) {
	return s.shard(key).Get(key)
}

// Set caches a blob.
func (s *Sharded) Set(key string, b []byte) {
	s.shard(key).Set(key, b)
}

// Delete removes key if present.
func (s *Sharded) Delete(key string) {
	s.shard(key).Delete(key)
}

// Stats aggregates hit and miss counts over all shards.
func (s *Sharded) Stats() (hits, misses int64) {
	for _, sh := range s.shards {
		h, m := sh.Stats()
		hits += h
		misses += m
	}
	return hits, misses
}

// Size returns the total cached bytes.
func (s *Sharded) Size() int64 {
	var total int64
	for _, sh := range s.shards {
		total += sh.Size()
	}
	return total
}
