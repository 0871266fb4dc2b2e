package model

import (
	"fmt"
	"strconv"
)

// ShardDescriptor describes a logical shard as the ordered list of its
// physical segments. Segments[i] is the document count of segment ordinal i.
type ShardDescriptor struct {
	ID       string
	Segments []uint32
}

// Size returns the number of documents in the shard.
func (d ShardDescriptor) Size() int {
	n := 0
	for _, c := range d.Segments {
		n += int(c)
	}
	return n
}

// Slice is one unit of scan work: a half-open range [Min, Max) over the
// document space of a single shard, tagged with its ordinal among all slices
// of the scan.
type Slice struct {
	ShardID string
	Index   int
	Total   int
	Min     int
	Max     int
}

// Len returns the number of positions covered by the slice.
func (s Slice) Len() int {
	return s.Max - s.Min
}

// Validate checks the structural invariants of a slice.
func (s Slice) Validate() error {
	if s.Total <= 0 || s.Index < 0 || s.Index >= s.Total {
		return fmt.Errorf("%w: index %d of %d", ErrInvalidSlice, s.Index, s.Total)
	}
	if s.Min < 0 || s.Min > s.Max {
		return fmt.Errorf("%w: range [%d,%d)", ErrInvalidSlice, s.Min, s.Max)
	}
	return nil
}

// String returns a string representation of the Slice.
func (s Slice) String() string {
	return fmt.Sprintf("%s[%d/%d] [%d,%d)", s.ShardID, s.Index, s.Total, s.Min, s.Max)
}

// SegmentKey renders the identifier of a physical segment as "shardId:segmentOrdinal".
func SegmentKey(shardID string, ordinal uint32) string {
	return shardID + ":" + strconv.FormatUint(uint64(ordinal), 10)
}

// Row is a single matching document.
type Row struct {
	Shard   string
	Segment uint32
	// Doc is the shard-global position of the document.
	Doc int
}

// Page is a bounded batch of rows produced by one successful pull.
// Rows are ordered by ascending position.
type Page struct {
	Slice Slice
	Rows  []Row
}

// Len returns the number of rows in the page.
func (p *Page) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Rows)
}

// Positions returns the shard-global positions of the rows.
func (p *Page) Positions() []int {
	if p == nil {
		return nil
	}
	out := make([]int, len(p.Rows))
	for i, r := range p.Rows {
		out[i] = r.Doc
	}
	return out
}
