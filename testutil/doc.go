// Package testutil provides testing utilities for slicescan.
//
// This package is intended for use in tests only. It provides a seeded,
// thread-safe random source and generators for statuses and shard layouts.
//
// # Random Statuses
//
//	rng := testutil.NewRNG(seed)
//	s := rng.Status()
//	m, field := rng.Mutate(s) // differs from s in exactly one field
//
// # Shard Layouts
//
//	shards := rng.Shards(3, 4, 100) // 3 shards, up to 4 segments of up to 100 docs
package testutil
