package index

import (
	"context"
	"errors"

	"github.com/RoaringBitmap/roaring/v2"
)

// MatchAll is the canonical expression matching every document.
const MatchAll = "*:*"

var (
	// ErrShardNotFound is returned when a shard is unknown to the reader.
	ErrShardNotFound = errors.New("shard not found")

	// ErrSegmentNotFound is returned when a segment ordinal is out of range.
	ErrSegmentNotFound = errors.New("segment not found")
)

// SegmentInfo locates a physical segment within its shard's document space.
// The segment covers shard-global positions [Base, Base+Docs).
type SegmentInfo struct {
	Ordinal uint32
	Base    int
	Docs    int
}

// End returns the first position after the segment.
func (s SegmentInfo) End() int {
	return s.Base + s.Docs
}

// Reader is the read-only storage interface.
// Implementations must be safe for concurrent use.
type Reader interface {
	// Segments returns the segments of a shard ordered by ordinal.
	Segments(ctx context.Context, shard string) ([]SegmentInfo, error)

	// Match returns the segment-local doc ids matching query.
	// The returned bitmap is owned by the caller.
	Match(ctx context.Context, shard string, segment uint32, query string) (*roaring.Bitmap, error)
}

// Layout computes segment positions from per-segment document counts.
func Layout(counts []uint32) []SegmentInfo {
	out := make([]SegmentInfo, len(counts))
	base := 0
	for i, c := range counts {
		out[i] = SegmentInfo{Ordinal: uint32(i), Base: base, Docs: int(c)}
		base += int(c)
	}
	return out
}
