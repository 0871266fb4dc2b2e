package scheduler

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/hupe1980/slicescan/model"
)

var (
	// ErrInvalidParallelism is returned for a negative parallelism request.
	ErrInvalidParallelism = errors.New("invalid parallelism")

	// ErrDuplicateShard is returned when two descriptors share an identifier.
	ErrDuplicateShard = errors.New("duplicate shard")
)

// SliceScheduler computes slice assignments for scans. It is stateless apart
// from its statistics and safe for concurrent use.
type SliceScheduler struct {
	scans  atomic.Uint64
	issued atomic.Uint64
}

// Stats tracks scheduling activity.
type Stats struct {
	Scans        uint64
	SlicesIssued uint64
}

// New creates a new slice scheduler.
func New() *SliceScheduler {
	return &SliceScheduler{}
}

type allocation struct {
	shard  model.ShardDescriptor
	size   int
	slices int
}

// largest returns the size of the biggest slice when the shard is cut into a.slices parts.
func (a allocation) largest() int {
	return (a.size + a.slices - 1) / a.slices
}

// Schedule partitions shards into slices for a scan with the given parallelism.
// Zero shards or zero parallelism yields an empty result.
func (s *SliceScheduler) Schedule(shards []model.ShardDescriptor, parallelism int) ([]model.Slice, error) {
	if parallelism < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidParallelism, parallelism)
	}

	ordered := slices.Clone(shards)
	slices.SortFunc(ordered, func(a, b model.ShardDescriptor) int {
		return strings.Compare(a.ID, b.ID)
	})
	for i := 1; i < len(ordered); i++ {
		if ordered[i].ID == ordered[i-1].ID {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateShard, ordered[i].ID)
		}
	}

	s.scans.Add(1)

	if len(ordered) == 0 || parallelism == 0 {
		return []model.Slice{}, nil
	}

	allocs := make([]allocation, 0, len(ordered))
	for _, d := range ordered {
		if size := d.Size(); size > 0 {
			allocs = append(allocs, allocation{shard: d, size: size, slices: 1})
		}
	}

	for spare := parallelism - len(allocs); spare > 0; spare-- {
		best := -1
		for i, a := range allocs {
			if a.slices >= a.size {
				continue
			}
			if best < 0 || a.largest() > allocs[best].largest() {
				best = i
			}
		}
		if best < 0 {
			// every slice is a single document
			break
		}
		allocs[best].slices++
	}

	total := 0
	for _, a := range allocs {
		total += a.slices
	}

	out := make([]model.Slice, 0, total)
	for _, a := range allocs {
		base, rem := a.size/a.slices, a.size%a.slices
		start := 0
		for i := 0; i < a.slices; i++ {
			n := base
			if i < rem {
				n++
			}
			out = append(out, model.Slice{
				ShardID: a.shard.ID,
				Index:   len(out),
				Total:   total,
				Min:     start,
				Max:     start + n,
			})
			start += n
		}
	}

	s.issued.Add(uint64(len(out)))
	return out, nil
}

// Stats returns scheduling statistics.
func (s *SliceScheduler) Stats() Stats {
	return Stats{
		Scans:        s.scans.Load(),
		SlicesIssued: s.issued.Load(),
	}
}

// Reset resets scheduling statistics.
func (s *SliceScheduler) Reset() {
	s.scans.Store(0)
	s.issued.Store(0)
}
