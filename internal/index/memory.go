package index

import (
	"context"
	"fmt"
	"maps"
	"math/rand"
	"slices"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/slicescan/model"
)

// Memory is an in-memory Reader. Postings are keyed by the exact query text.
// Thread-safe for concurrent reads and writes.
type Memory struct {
	mu     sync.RWMutex
	shards map[string]*memShard
}

type memShard struct {
	counts   []uint32
	postings []map[string]*roaring.Bitmap
}

// NewMemory creates an empty in-memory index.
func NewMemory() *Memory {
	return &Memory{shards: make(map[string]*memShard)}
}

// AddShard registers a shard with the segment sizes of d.
// Re-adding a shard replaces it.
func (m *Memory) AddShard(d model.ShardDescriptor) {
	sh := &memShard{
		counts:   slices.Clone(d.Segments),
		postings: make([]map[string]*roaring.Bitmap, len(d.Segments)),
	}
	for i := range sh.postings {
		sh.postings[i] = make(map[string]*roaring.Bitmap)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.shards[d.ID] = sh
}

// Index records that the given segment-local docs match query.
func (m *Memory) Index(shard string, segment uint32, query string, docs ...uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sh, ok := m.shards[shard]
	if !ok {
		return fmt.Errorf("%w: %s", ErrShardNotFound, shard)
	}
	if int(segment) >= len(sh.counts) {
		return fmt.Errorf("%w: %s", ErrSegmentNotFound, model.SegmentKey(shard, segment))
	}
	for _, d := range docs {
		if d >= sh.counts[segment] {
			return fmt.Errorf("doc %d out of range for segment %s (%d docs)", d, model.SegmentKey(shard, segment), sh.counts[segment])
		}
	}

	bm, ok := sh.postings[segment][query]
	if !ok {
		bm = roaring.New()
		sh.postings[segment][query] = bm
	}
	bm.AddMany(docs)
	return nil
}

// Descriptors returns the registered shards ordered by identifier.
func (m *Memory) Descriptors() []model.ShardDescriptor {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := slices.Sorted(maps.Keys(m.shards))
	out := make([]model.ShardDescriptor, len(ids))
	for i, id := range ids {
		out[i] = model.ShardDescriptor{ID: id, Segments: slices.Clone(m.shards[id].counts)}
	}
	return out
}

// Segments implements Reader.
func (m *Memory) Segments(ctx context.Context, shard string) ([]SegmentInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	sh, ok := m.shards[shard]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrShardNotFound, shard)
	}
	return Layout(sh.counts), nil
}

// Match implements Reader.
func (m *Memory) Match(ctx context.Context, shard string, segment uint32, query string) (*roaring.Bitmap, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	sh, ok := m.shards[shard]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrShardNotFound, shard)
	}
	if int(segment) >= len(sh.counts) {
		return nil, fmt.Errorf("%w: %s", ErrSegmentNotFound, model.SegmentKey(shard, segment))
	}

	if query == MatchAll {
		bm := roaring.New()
		bm.AddRange(0, uint64(sh.counts[segment]))
		return bm, nil
	}
	if bm, ok := sh.postings[segment][query]; ok {
		return bm.Clone(), nil
	}
	return roaring.New(), nil
}

// Synthesize builds an in-memory index over shards where each document matches
// each term independently with the given probability.
func Synthesize(shards []model.ShardDescriptor, terms map[string]float64, seed int64) *Memory {
	m := NewMemory()
	rng := rand.New(rand.NewSource(seed))
	names := slices.Sorted(maps.Keys(terms))

	for _, d := range shards {
		m.AddShard(d)
		sh := m.shards[d.ID]
		for seg, count := range d.Segments {
			for _, term := range names {
				p := terms[term]
				bm := roaring.New()
				for doc := uint32(0); doc < count; doc++ {
					if rng.Float64() < p {
						bm.Add(doc)
					}
				}
				sh.postings[seg][term] = bm
			}
		}
	}
	return m
}
