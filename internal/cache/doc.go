// Package cache provides byte-bounded LRU caches for immutable blobs.
//
// # LRU
//
// LRU wraps golang-lru's simplelru, tracks entry sizes and evicts the least
// recently used blobs once the configured capacity is exceeded. When a resource.Controller is attached,
// cached bytes are also reserved against its memory budget; a denied
// reservation skips caching instead of blocking.
//
// # Sharded
//
// Sharded spreads keys over independent LRUs to reduce lock contention when
// many operators read snapshots concurrently.
package cache
