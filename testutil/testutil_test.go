package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRNG_Deterministic(t *testing.T) {
	a := NewRNG(4711)
	b := NewRNG(4711)

	assert.Equal(t, a.Alpha(8), b.Alpha(8))
	assert.True(t, a.Status().Equal(b.Status()))
	assert.Equal(t, int64(4711), a.Seed())
}

func TestRNG_Mutate(t *testing.T) {
	rng := NewRNG(42)
	for i := 0; i < 200; i++ {
		s := rng.Status()
		m, field := rng.Mutate(s)
		assert.False(t, s.Equal(m), "mutating %s must change the status", field)
		assert.Contains(t, StatusFields, field)
	}
}

func TestRNG_Shards(t *testing.T) {
	rng := NewRNG(7)
	shards := rng.Shards(5, 3, 50)

	assert.Len(t, shards, 5)
	for _, s := range shards {
		assert.NotEmpty(t, s.Segments)
		assert.LessOrEqual(t, len(s.Segments), 3)
		assert.LessOrEqual(t, s.Size(), 150)
	}
}

func TestUniformShards(t *testing.T) {
	shards := UniformShards(3, 10)
	assert.Len(t, shards, 3)
	assert.Equal(t, "shard-2", shards[2].ID)
	assert.Equal(t, 10, shards[1].Size())
}
