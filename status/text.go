package status

import (
	"fmt"

	"github.com/hupe1980/slicescan/codec"
)

// document is the text rendering of a Status. Field order is part of the format.
type document struct {
	ProcessedSlices  *int     `json:"processed_slices"`
	ProcessedQueries []string `json:"processed_queries"`
	ProcessedShards  []string `json:"processed_shards"`
	SliceIndex       *int     `json:"slice_index"`
	TotalSlices      *int     `json:"total_slices"`
	PagesEmitted     *int     `json:"pages_emitted"`
	SliceMin         *int     `json:"slice_min"`
	SliceMax         *int     `json:"slice_max"`
	Current          *int     `json:"current"`
}

func toDocument(s Status) document {
	nonNil := func(ss []string) []string {
		if ss == nil {
			return []string{}
		}
		return ss
	}
	return document{
		ProcessedSlices:  &s.processedSlices,
		ProcessedQueries: nonNil(s.processedQueries),
		ProcessedShards:  nonNil(s.processedShards),
		SliceIndex:       &s.sliceIndex,
		TotalSlices:      &s.totalSlices,
		PagesEmitted:     &s.pagesEmitted,
		SliceMin:         &s.sliceMin,
		SliceMax:         &s.sliceMax,
		Current:          &s.current,
	}
}

// ToText renders s as an indented JSON document using the default codec.
func ToText(s Status) ([]byte, error) {
	return ToTextWith(codec.Default, s)
}

// ToTextWith renders s as an indented JSON document using c.
func ToTextWith(c codec.Codec, s Status) ([]byte, error) {
	return codec.Indent(c, toDocument(s))
}

// FromText parses a document produced by ToText. Every field must be present.
func FromText(data []byte) (Status, error) {
	var doc document
	if err := codec.Default.Unmarshal(data, &doc); err != nil {
		return Status{}, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	ints := []struct {
		name string
		v    *int
	}{
		{"processed_slices", doc.ProcessedSlices},
		{"slice_index", doc.SliceIndex},
		{"total_slices", doc.TotalSlices},
		{"pages_emitted", doc.PagesEmitted},
		{"slice_min", doc.SliceMin},
		{"slice_max", doc.SliceMax},
		{"current", doc.Current},
	}
	for _, f := range ints {
		if f.v == nil {
			return Status{}, fmt.Errorf("%w: missing field %s", ErrCorrupt, f.name)
		}
	}
	if doc.ProcessedQueries == nil {
		return Status{}, fmt.Errorf("%w: missing field processed_queries", ErrCorrupt)
	}
	if doc.ProcessedShards == nil {
		return Status{}, fmt.Errorf("%w: missing field processed_shards", ErrCorrupt)
	}

	s := New(
		*doc.ProcessedSlices,
		doc.ProcessedQueries,
		doc.ProcessedShards,
		*doc.SliceIndex,
		*doc.TotalSlices,
		*doc.PagesEmitted,
		*doc.SliceMin,
		*doc.SliceMax,
		*doc.Current,
	)
	if err := s.Validate(); err != nil {
		return Status{}, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return s, nil
}
