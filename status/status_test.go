package status_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/hupe1980/slicescan/codec"
	"github.com/hupe1980/slicescan/status"
	"github.com/hupe1980/slicescan/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func simple() status.Status {
	return status.New(2, []string{"*:*"}, []string{"a:1", "a:0"}, 0, 1, 5, 123, 99990, 8000)
}

const simpleText = `{
  "processed_slices": 2,
  "processed_queries": [
    "*:*"
  ],
  "processed_shards": [
    "a:0",
    "a:1"
  ],
  "slice_index": 0,
  "total_slices": 1,
  "pages_emitted": 5,
  "slice_min": 123,
  "slice_max": 99990,
  "current": 8000
}`

func TestToText(t *testing.T) {
	for _, c := range []codec.Codec{codec.JSON{}, codec.GoJSON{}} {
		out, err := status.ToTextWith(c, simple())
		require.NoError(t, err)
		assert.Equal(t, simpleText, string(out), "codec %s", c.Name())
	}

	out, err := status.ToText(simple())
	require.NoError(t, err)
	assert.Equal(t, simpleText, string(out))
}

func TestToText_EmptySets(t *testing.T) {
	out, err := status.ToText(status.Status{})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"processed_queries": []`)
	assert.Contains(t, string(out), `"processed_shards": []`)
}

func TestToText_IndependentOfInsertionOrder(t *testing.T) {
	a := status.New(1, []string{"b", "a", "c"}, []string{"x:1", "x:0"}, 0, 1, 1, 0, 10, 5)
	b := status.New(1, []string{"c", "b", "a", "a"}, []string{"x:0", "x:1", "x:0"}, 0, 1, 1, 0, 10, 5)

	ta, err := status.ToText(a)
	require.NoError(t, err)
	tb, err := status.ToText(b)
	require.NoError(t, err)
	assert.Equal(t, ta, tb)

	ea, err := status.Encode(a)
	require.NoError(t, err)
	eb, err := status.Encode(b)
	require.NoError(t, err)
	assert.Equal(t, ea, eb)
}

func TestFromText(t *testing.T) {
	s, err := status.FromText([]byte(simpleText))
	require.NoError(t, err)
	assert.True(t, simple().Equal(s))

	_, err = status.FromText([]byte(`{"processed_slices": 1}`))
	assert.ErrorIs(t, err, status.ErrCorrupt)

	_, err = status.FromText([]byte(`not json`))
	assert.ErrorIs(t, err, status.ErrCorrupt)
}

func TestBinaryRoundTrip(t *testing.T) {
	rng := testutil.NewRNG(4711)
	for i := 0; i < 500; i++ {
		s := rng.Status()

		b, err := status.Encode(s)
		require.NoError(t, err)

		got, err := status.Decode(b)
		require.NoError(t, err)
		assert.True(t, s.Equal(got), "round trip %d: %v != %v", i, s, got)

		var buf bytes.Buffer
		require.NoError(t, status.Write(&buf, s))
		got, err = status.Read(&buf)
		require.NoError(t, err)
		assert.True(t, s.Equal(got))
	}
}

func TestTextRoundTrip(t *testing.T) {
	rng := testutil.NewRNG(99)
	for i := 0; i < 200; i++ {
		s := rng.Status()
		text, err := status.ToText(s)
		require.NoError(t, err)

		got, err := status.FromText(text)
		require.NoError(t, err)
		assert.True(t, s.Equal(got))
	}
}

func TestMutationIsolation(t *testing.T) {
	rng := testutil.NewRNG(1234)
	for i := 0; i < 200; i++ {
		s := rng.Status()
		m, field := rng.Mutate(s)

		b, err := status.Encode(m)
		require.NoError(t, err)
		got, err := status.Decode(b)
		require.NoError(t, err)

		assert.False(t, s.Equal(got), "mutated field %s", field)
		assert.True(t, m.Equal(got))
	}
}

func TestNew_CopiesInputs(t *testing.T) {
	queries := []string{"q1"}
	shards := []string{"a:0"}
	s := status.New(0, queries, shards, 0, 1, 0, 0, 10, 0)

	queries[0] = "changed"
	shards[0] = "z:9"
	assert.Equal(t, []string{"q1"}, s.ProcessedQueries())
	assert.Equal(t, []string{"a:0"}, s.ProcessedShards())

	got := s.ProcessedQueries()
	got[0] = "mutated"
	assert.Equal(t, []string{"q1"}, s.ProcessedQueries())
}

func TestDecode_VersionMismatch(t *testing.T) {
	b, err := status.Encode(simple())
	require.NoError(t, err)

	binary.LittleEndian.PutUint32(b[4:8], 2)
	_, err = status.Decode(b)
	assert.ErrorIs(t, err, status.ErrIncompatibleVersion)

	_, err = status.Read(bytes.NewReader(b))
	assert.ErrorIs(t, err, status.ErrIncompatibleVersion)
}

func TestDecode_Corrupt(t *testing.T) {
	b, err := status.Encode(simple())
	require.NoError(t, err)

	t.Run("Magic", func(t *testing.T) {
		c := bytes.Clone(b)
		c[0] ^= 0xff
		_, err := status.Decode(c)
		assert.ErrorIs(t, err, status.ErrCorrupt)
	})

	t.Run("Checksum", func(t *testing.T) {
		c := bytes.Clone(b)
		c[len(c)-1] ^= 0x01
		_, err := status.Decode(c)
		assert.ErrorIs(t, err, status.ErrCorrupt)
	})

	t.Run("Truncated", func(t *testing.T) {
		_, err := status.Decode(b[:len(b)-2])
		assert.ErrorIs(t, err, status.ErrCorrupt)

		_, err = status.Read(bytes.NewReader(b[:len(b)-2]))
		assert.ErrorIs(t, err, status.ErrCorrupt)

		_, err = status.Decode(b[:4])
		assert.ErrorIs(t, err, status.ErrCorrupt)
	})

	t.Run("TrailingBytes", func(t *testing.T) {
		_, err := status.Decode(append(bytes.Clone(b), 0))
		assert.ErrorIs(t, err, status.ErrCorrupt)
	})
}

func TestEncode_Invalid(t *testing.T) {
	_, err := status.Encode(status.New(-1, nil, nil, 0, 1, 0, 0, 0, 0))
	assert.ErrorIs(t, err, status.ErrInvalidStatus)
}

func TestProgress(t *testing.T) {
	assert.InDelta(t, 0.5, status.New(0, nil, nil, 0, 1, 0, 100, 200, 150).Progress(), 1e-9)
	assert.InDelta(t, 1.0, status.New(0, nil, nil, 0, 1, 0, 5, 5, 5).Progress(), 1e-9)
	assert.InDelta(t, 0.0, status.New(0, nil, nil, 0, 1, 0, 100, 200, 100).Progress(), 1e-9)
}
