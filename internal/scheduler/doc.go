// Package scheduler partitions a scan's shards into slices.
//
// Every slice covers a contiguous range of exactly one shard. For a requested
// parallelism N the scheduler:
//
//  1. orders shards by ascending identifier and drops empty ones,
//  2. gives every non-empty shard one slice,
//  3. hands out the remaining N-S slices one at a time to the shard whose
//     current largest slice is biggest (ties broken by shard identifier),
//  4. cuts each shard into its k slices with sizes differing by at most one,
//  5. numbers slices 0..total-1 in (shard identifier, range start) order.
//
// The result never has more slices than documents. When N is smaller than the
// number of non-empty shards, each shard still gets one slice so coverage is
// complete; the slice count then exceeds N.
package scheduler
