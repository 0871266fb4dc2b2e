package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShardDescriptor_Size(t *testing.T) {
	d := ShardDescriptor{ID: "a", Segments: []uint32{3, 0, 7}}
	assert.Equal(t, 10, d.Size())
	assert.Equal(t, 0, ShardDescriptor{ID: "empty"}.Size())
}

func TestSlice_Validate(t *testing.T) {
	assert.NoError(t, Slice{ShardID: "a", Index: 0, Total: 1, Min: 0, Max: 0}.Validate())
	assert.NoError(t, Slice{ShardID: "a", Index: 2, Total: 3, Min: 5, Max: 9}.Validate())

	assert.ErrorIs(t, Slice{Index: 1, Total: 1}.Validate(), ErrInvalidSlice)
	assert.ErrorIs(t, Slice{Index: -1, Total: 1}.Validate(), ErrInvalidSlice)
	assert.ErrorIs(t, Slice{Index: 0, Total: 0}.Validate(), ErrInvalidSlice)
	assert.ErrorIs(t, Slice{Index: 0, Total: 1, Min: 4, Max: 3}.Validate(), ErrInvalidSlice)
	assert.ErrorIs(t, Slice{Index: 0, Total: 1, Min: -1, Max: 3}.Validate(), ErrInvalidSlice)
}

func TestSlice_String(t *testing.T) {
	s := Slice{ShardID: "logs-0", Index: 1, Total: 4, Min: 250, Max: 500}
	assert.Equal(t, "logs-0[1/4] [250,500)", s.String())
	assert.Equal(t, 250, s.Len())
}

func TestSegmentKey(t *testing.T) {
	assert.Equal(t, "a:0", SegmentKey("a", 0))
	assert.Equal(t, "shard-7:12", SegmentKey("shard-7", 12))
}

func TestPage_Positions(t *testing.T) {
	var nilPage *Page
	assert.Equal(t, 0, nilPage.Len())
	assert.Nil(t, nilPage.Positions())

	p := &Page{Rows: []Row{{Shard: "a", Doc: 1}, {Shard: "a", Segment: 1, Doc: 12}}}
	assert.Equal(t, 2, p.Len())
	assert.Equal(t, []int{1, 12}, p.Positions())
}
