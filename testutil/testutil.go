package testutil

import (
	"fmt"
	"math/rand"
	"slices"
	"sync"

	"github.com/hupe1980/slicescan/model"
	"github.com/hupe1980/slicescan/status"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz"

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Between returns a pseudo-random number in [lo, hi].
func (r *RNG) Between(lo, hi int) int {
	return lo + r.Intn(hi-lo+1)
}

// NonNegativeInt returns a pseudo-random int in [0, MaxInt32].
func (r *RNG) NonNegativeInt() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int(r.rand.Int31())
}

// Alpha returns a random lowercase string of length n.
func (r *RNG) Alpha(n int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[r.rand.Intn(len(alphabet))]
	}
	return string(b)
}

// Queries returns a set of up to 10 random query expressions.
func (r *RNG) Queries() []string {
	size := r.Between(0, 10)
	set := make(map[string]struct{}, size)
	for len(set) < size {
		set[r.Alpha(5)] = struct{}{}
	}
	return keys(set)
}

// SegmentKeys returns a set of up to 10 random "shard:segment" keys.
func (r *RNG) SegmentKeys() []string {
	size := r.Between(0, 10)
	set := make(map[string]struct{}, size)
	for len(set) < size {
		set[model.SegmentKey(r.Alpha(3), uint32(r.Between(0, 10)))] = struct{}{}
	}
	return keys(set)
}

// Status returns a random status. Set fields are returned in map order, so
// callers exercise canonicalization as well.
func (r *RNG) Status() status.Status {
	return status.New(
		r.NonNegativeInt(),
		r.Queries(),
		r.SegmentKeys(),
		r.NonNegativeInt(),
		r.NonNegativeInt(),
		r.NonNegativeInt(),
		r.NonNegativeInt(),
		r.NonNegativeInt(),
		r.NonNegativeInt(),
	)
}

// StatusFields lists the text field names in format order.
var StatusFields = []string{
	"processed_slices",
	"processed_queries",
	"processed_shards",
	"slice_index",
	"total_slices",
	"pages_emitted",
	"slice_min",
	"slice_max",
	"current",
}

// Mutate returns a copy of s with exactly one field changed, and that field's name.
func (r *RNG) Mutate(s status.Status) (status.Status, string) {
	f := [9]int{
		s.ProcessedSlices(), 0, 0,
		s.SliceIndex(), s.TotalSlices(), s.PagesEmitted(),
		s.SliceMin(), s.SliceMax(), s.Current(),
	}
	queries := s.ProcessedQueries()
	shards := s.ProcessedShards()

	field := r.Intn(len(StatusFields))
	switch field {
	case 1:
		queries = otherSet(queries, r.Queries)
	case 2:
		shards = otherSet(shards, r.SegmentKeys)
	default:
		old := f[field]
		for f[field] == old {
			f[field] = r.NonNegativeInt()
		}
	}

	return status.New(f[0], queries, shards, f[3], f[4], f[5], f[6], f[7], f[8]), StatusFields[field]
}

func otherSet(old []string, gen func() []string) []string {
	for {
		next := gen()
		slices.Sort(next)
		if !slices.Equal(next, old) {
			return next
		}
	}
}

// Shards returns n shard descriptors named "shard-<i>", each with between one
// and maxSegments segments of up to maxDocs documents.
func (r *RNG) Shards(n, maxSegments, maxDocs int) []model.ShardDescriptor {
	out := make([]model.ShardDescriptor, n)
	for i := range out {
		segs := make([]uint32, r.Between(1, maxSegments))
		for j := range segs {
			segs[j] = uint32(r.Between(0, maxDocs))
		}
		out[i] = model.ShardDescriptor{ID: fmt.Sprintf("shard-%d", i), Segments: segs}
	}
	return out
}

// UniformShards returns n shards with a single segment of size docs each.
func UniformShards(n, docs int) []model.ShardDescriptor {
	out := make([]model.ShardDescriptor, n)
	for i := range out {
		out[i] = model.ShardDescriptor{ID: fmt.Sprintf("shard-%d", i), Segments: []uint32{uint32(docs)}}
	}
	return out
}

func keys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}
