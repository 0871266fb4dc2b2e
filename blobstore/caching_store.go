package blobstore

import (
	"context"
	"slices"

	"github.com/hupe1980/slicescan/internal/cache"
)

// DefaultCacheBytes is the cache capacity used when none is given.
const DefaultCacheBytes = 64 << 20

// CachingStore wraps a Store and caches whole blobs on read.
// Pointer blobs are never cached since other writers may move them.
type CachingStore struct {
	inner Store
	cache cache.Cache
}

// NewCachingStore creates a new CachingStore holding at most capacity
// bytes. A non-positive capacity selects DefaultCacheBytes.
func NewCachingStore(inner Store, capacity int64) *CachingStore {
	if capacity <= 0 {
		capacity = DefaultCacheBytes
	}
	return NewCachingStoreWithCache(inner, cache.NewSharded(capacity, nil))
}

// NewCachingStoreWithCache creates a CachingStore backed by c.
func NewCachingStoreWithCache(inner Store, c cache.Cache) *CachingStore {
	return &CachingStore{inner: inner, cache: c}
}

// Put writes through and invalidates the cached entry.
func (s *CachingStore) Put(ctx context.Context, name string, data []byte) error {
	s.cache.Delete(name)
	return s.inner.Put(ctx, name, data)
}

// Get serves from the cache or reads through.
func (s *CachingStore) Get(ctx context.Context, name string) ([]byte, error) {
	if data, ok := s.cache.Get(name); ok {
		return slices.Clone(data), nil
	}

	data, err := s.inner.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if !IsPointer(name) {
		s.cache.Set(name, slices.Clone(data))
	}
	return data, nil
}

// Delete removes the blob and its cached entry.
func (s *CachingStore) Delete(ctx context.Context, name string) error {
	s.cache.Delete(name)
	return s.inner.Delete(ctx, name)
}

// List is not cached.
func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

// Stats returns cache hit and miss counts.
func (s *CachingStore) Stats() (hits, misses int64) {
	return s.cache.Stats()
}
