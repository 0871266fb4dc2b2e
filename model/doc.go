// Package model defines core types used throughout slicescan.
//
// # Identity Types
//
//   - ShardDescriptor: a logical shard and the document counts of its segments
//   - Slice: a bounded, non-overlapping range [Min, Max) over one shard's document space
//   - SegmentKey: the "shardId:segmentOrdinal" string naming a physical segment
//
// # Data Types
//
//   - Row: one matching document, addressed by shard, segment and shard-global position
//   - Page: a bounded batch of rows produced by one successful pull
//
// Slices are created by the scheduler and are immutable once issued:
//
//	slices, err := scheduler.New().Schedule(shards, 4)
//	for _, s := range slices {
//	    fmt.Println(s) // shard-a[0/4] [0,250)
//	}
package model
