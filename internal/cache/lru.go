package cache

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/hashicorp/golang-lru/v2/simplelru"

	"github.com/hupe1980/slicescan/internal/resource"
)

// Cache is a byte-oriented cache for immutable blobs.
// Returned slices must be treated as read-only.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, b []byte)
	Delete(key string)
	Stats() (hits, misses int64)
	Size() int64
}

// LRU implements a byte-bounded Cache on top of simplelru. The entry count is
// unbounded; eviction is driven by the byte capacity.
type LRU struct {
	mu       sync.Mutex
	capacity int64
	size     int64
	lru      *simplelru.LRU[string, []byte]
	rc       *resource.Controller

	hits   atomic.Int64
	misses atomic.Int64
}

// NewLRU creates a new LRU cache with the given capacity in bytes.
// If rc is non-nil, cached bytes are accounted against its memory limit.
func NewLRU(capacity int64, rc *resource.Controller) *LRU {
	c := &LRU{capacity: capacity, rc: rc}
	// Only fails for a non-positive size.
	c.lru, _ = simplelru.NewLRU[string, []byte](math.MaxInt32, c.onEvict)
	return c
}

// onEvict runs under c.mu for every entry leaving the cache.
func (c *LRU) onEvict(_ string, value []byte) {
	n := int64(len(value))
	c.size -= n
	c.rc.ReleaseMemory(n)
}

// Get returns a cached blob.
func (c *LRU) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if b, ok := c.lru.Get(key); ok {
		c.hits.Add(1)
		return b, true
	}
	c.misses.Add(1)
	return nil, false
}

// Set caches a blob. Blobs larger than the capacity are ignored.
func (c *LRU) Set(key string, b []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	itemSize := int64(len(b))
	if itemSize > c.capacity {
		c.lru.Remove(key)
		return
	}

	if old, ok := c.lru.Peek(key); ok {
		oldSize := int64(len(old))
		if itemSize > oldSize {
			if err := c.rc.AcquireMemory(itemSize - oldSize); err != nil {
				// Keep the cache consistent with the store.
				c.lru.Remove(key)
				return
			}
		} else {
			c.rc.ReleaseMemory(oldSize - itemSize)
		}
		c.size += itemSize - oldSize
		c.lru.Add(key, b)
		c.evict(0)
		return
	}

	// Evict locally first so released bytes are available to the controller.
	c.evict(itemSize)

	if err := c.rc.AcquireMemory(itemSize); err != nil {
		return
	}
	c.lru.Add(key, b)
	c.size += itemSize
}

// Delete removes key if present.
func (c *LRU) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Remove(key)
}

// Stats returns hit and miss counts.
func (c *LRU) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Size returns the current size of the cache in bytes.
func (c *LRU) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Len returns the number of cached blobs.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// evict drops the oldest entries until extra more bytes fit.
func (c *LRU) evict(extra int64) {
	for c.size+extra > c.capacity {
		if _, _, ok := c.lru.RemoveOldest(); !ok {
			return
		}
	}
}
