package status

import "math"

// Aggregate folds the statuses of many operators into one.
//
// Counters are summed and the sets are unioned. The slice fields describe the
// combined work: sliceMin is 0, sliceMax is the sum of all range widths and
// current is the sum of consumed positions, so Progress reports the overall
// fraction. totalSlices is the largest total seen and sliceIndex is 0.
//
// Sums saturate at math.MaxInt32, the largest value the binary encoding
// carries, so the aggregate of a very large corpus stays encodable.
func Aggregate(statuses ...Status) Status {
	var (
		out     Status
		queries []string
		shards  []string
	)
	for _, s := range statuses {
		out.processedSlices = satAdd(out.processedSlices, s.processedSlices)
		out.pagesEmitted = satAdd(out.pagesEmitted, s.pagesEmitted)
		out.totalSlices = max(out.totalSlices, s.totalSlices)
		out.sliceMax = satAdd(out.sliceMax, s.sliceMax-s.sliceMin)
		out.current = satAdd(out.current, s.current-s.sliceMin)
		queries = append(queries, s.processedQueries...)
		shards = append(shards, s.processedShards...)
	}
	out.totalSlices = min(out.totalSlices, math.MaxInt32)
	out.processedQueries = canonical(queries)
	out.processedShards = canonical(shards)
	return out
}

// satAdd adds a non-negative b to a in [0, math.MaxInt32], clamping the result.
func satAdd(a, b int) int {
	if b <= 0 {
		return a
	}
	if b >= math.MaxInt32-a {
		return math.MaxInt32
	}
	return a + b
}
