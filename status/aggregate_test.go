package status_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/slicescan/status"
)

func TestAggregate(t *testing.T) {
	a := status.New(1, []string{"*:*"}, []string{"a:0", "a:1"}, 0, 3, 4, 0, 10, 10)
	b := status.New(0, []string{"title:go", "*:*"}, []string{"b:0"}, 1, 3, 2, 10, 30, 15)

	got := status.Aggregate(a, b)

	assert.Equal(t, 1, got.ProcessedSlices())
	assert.Equal(t, 6, got.PagesEmitted())
	assert.Equal(t, []string{"*:*", "title:go"}, got.ProcessedQueries())
	assert.Equal(t, []string{"a:0", "a:1", "b:0"}, got.ProcessedShards())
	assert.Equal(t, 3, got.TotalSlices())
	assert.Equal(t, 0, got.SliceIndex())
	assert.Equal(t, 0, got.SliceMin())
	assert.Equal(t, 30, got.SliceMax())
	assert.Equal(t, 15, got.Current())
	assert.InDelta(t, 0.5, got.Progress(), 1e-9)
}

func TestAggregateEmpty(t *testing.T) {
	got := status.Aggregate()
	assert.True(t, got.Equal(status.Status{}))
	assert.Equal(t, 1.0, got.Progress())
}

func TestAggregateSaturates(t *testing.T) {
	width := math.MaxInt32 - 10
	a := status.New(1, nil, []string{"a:0"}, 0, 2, math.MaxInt32, 0, width, width)
	b := status.New(1, nil, []string{"b:0"}, 1, 2, 5, 0, width, 20)

	got := status.Aggregate(a, b)

	assert.Equal(t, 2, got.ProcessedSlices())
	assert.Equal(t, math.MaxInt32, got.PagesEmitted())
	assert.Equal(t, math.MaxInt32, got.SliceMax())
	assert.Equal(t, math.MaxInt32, got.Current())
	require.NoError(t, got.Validate())

	data, err := status.Encode(got)
	require.NoError(t, err)
	decoded, err := status.Decode(data)
	require.NoError(t, err)
	assert.True(t, got.Equal(decoded))
}
