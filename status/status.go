package status

import (
	"fmt"
	"math"
	"slices"
)

// Status is an immutable snapshot of a source operator's progress counters.
//
// The zero value is a valid, empty status.
type Status struct {
	processedSlices  int
	processedQueries []string
	processedShards  []string
	sliceIndex       int
	totalSlices      int
	pagesEmitted     int
	sliceMin         int
	sliceMax         int
	current          int
}

// New creates a Status. The query and shard collections are copied and
// canonicalized; later changes to the arguments do not affect the result.
func New(
	processedSlices int,
	processedQueries []string,
	processedShards []string,
	sliceIndex int,
	totalSlices int,
	pagesEmitted int,
	sliceMin int,
	sliceMax int,
	current int,
) Status {
	return Status{
		processedSlices:  processedSlices,
		processedQueries: canonical(processedQueries),
		processedShards:  canonical(processedShards),
		sliceIndex:       sliceIndex,
		totalSlices:      totalSlices,
		pagesEmitted:     pagesEmitted,
		sliceMin:         sliceMin,
		sliceMax:         sliceMax,
		current:          current,
	}
}

// canonical returns a sorted, deduplicated copy of in.
func canonical(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	slices.Sort(out)
	return slices.Compact(out)
}

// ProcessedSlices returns the number of slices fully processed so far.
func (s Status) ProcessedSlices() int { return s.processedSlices }

// ProcessedQueries returns the distinct query expressions evaluated, in ascending order.
func (s Status) ProcessedQueries() []string { return slices.Clone(s.processedQueries) }

// ProcessedShards returns the distinct "shardId:segmentOrdinal" keys visited, in ascending order.
func (s Status) ProcessedShards() []string { return slices.Clone(s.processedShards) }

// SliceIndex returns the ordinal of the current slice.
func (s Status) SliceIndex() int { return s.sliceIndex }

// TotalSlices returns the number of slices in the scan.
func (s Status) TotalSlices() int { return s.totalSlices }

// PagesEmitted returns the number of non-empty pages produced.
func (s Status) PagesEmitted() int { return s.pagesEmitted }

// SliceMin returns the lower bound of the current slice range.
func (s Status) SliceMin() int { return s.sliceMin }

// SliceMax returns the upper bound of the current slice range.
func (s Status) SliceMax() int { return s.sliceMax }

// Current returns the cursor position within the current slice.
func (s Status) Current() int { return s.current }

// Progress returns the fraction of the current slice range consumed, in [0, 1].
func (s Status) Progress() float64 {
	span := s.sliceMax - s.sliceMin
	if span <= 0 {
		return 1
	}
	p := float64(s.current-s.sliceMin) / float64(span)
	return min(max(p, 0), 1)
}

// Equal reports whether s and o hold the same field values.
func (s Status) Equal(o Status) bool {
	return s.processedSlices == o.processedSlices &&
		slices.Equal(s.processedQueries, o.processedQueries) &&
		slices.Equal(s.processedShards, o.processedShards) &&
		s.sliceIndex == o.sliceIndex &&
		s.totalSlices == o.totalSlices &&
		s.pagesEmitted == o.pagesEmitted &&
		s.sliceMin == o.sliceMin &&
		s.sliceMax == o.sliceMax &&
		s.current == o.current
}

// Validate checks that all counters are non-negative and fit the 32-bit wire range.
func (s Status) Validate() error {
	for name, v := range map[string]int{
		"processed_slices": s.processedSlices,
		"slice_index":      s.sliceIndex,
		"total_slices":     s.totalSlices,
		"pages_emitted":    s.pagesEmitted,
		"slice_min":        s.sliceMin,
		"slice_max":        s.sliceMax,
		"current":          s.current,
	} {
		if v < 0 || v > math.MaxInt32 {
			return fmt.Errorf("%w: %s out of range (%d)", ErrInvalidStatus, name, v)
		}
	}
	return nil
}

// String returns a compact single-line rendering for logs.
func (s Status) String() string {
	return fmt.Sprintf("slices=%d pages=%d slice=%d/%d range=[%d,%d) current=%d queries=%d shards=%d",
		s.processedSlices, s.pagesEmitted, s.sliceIndex, s.totalSlices,
		s.sliceMin, s.sliceMax, s.current, len(s.processedQueries), len(s.processedShards))
}
