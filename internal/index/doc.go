// Package index is the storage port consulted by source operators.
//
// The operator does not know how documents are stored. It only needs, per
// shard, the ordered list of physical segments (so it can map shard-global
// positions onto segment-local doc ids) and, per segment and query expression,
// the set of matching segment-local doc ids. Matches are returned as roaring
// bitmaps.
//
// Memory is the in-process implementation used by tests and the CLI. Faulty
// wraps any Reader and injects failures.
package index
