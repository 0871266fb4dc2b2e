package archive

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressRoundTrip(t *testing.T) {
	compressible := bytes.Repeat([]byte("shard-a:0 title:go "), 200)
	incompressible := []byte{0x01, 0x7f, 0x33}

	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		t.Run(c.String(), func(t *testing.T) {
			for _, data := range [][]byte{compressible, incompressible, {}} {
				blob, err := compress(data, c)
				require.NoError(t, err)

				got, gotC, err := decompress(blob)
				require.NoError(t, err)
				assert.Equal(t, c, gotC)
				assert.Equal(t, len(data), len(got))
				assert.True(t, bytes.Equal(data, got))
			}
		})
	}
}

func TestCompressShrinks(t *testing.T) {
	data := bytes.Repeat([]byte("abcdefgh"), 512)

	lz, err := compress(data, CompressionLZ4)
	require.NoError(t, err)
	zs, err := compress(data, CompressionZstd)
	require.NoError(t, err)

	assert.Less(t, len(lz), len(data)/2)
	assert.Less(t, len(zs), len(data)/2)
}

func TestCompressStoresIncompressibleRaw(t *testing.T) {
	data := []byte{9, 8, 7}
	blob, err := compress(data, CompressionZstd)
	require.NoError(t, err)
	assert.Len(t, blob, envelopeHeaderSize+len(data))
	assert.Equal(t, data, blob[envelopeHeaderSize:])
}

func TestDecompressCorrupt(t *testing.T) {
	_, _, err := decompress([]byte{1, 2})
	require.ErrorIs(t, err, ErrCorrupt)

	blob, err := compress(bytes.Repeat([]byte("x"), 1024), CompressionLZ4)
	require.NoError(t, err)

	_, _, err = decompress(blob[:len(blob)-1])
	require.ErrorIs(t, err, ErrCorrupt)

	bad := bytes.Clone(blob)
	bad[0] = 0x7f
	_, _, err = decompress(bad)
	require.ErrorIs(t, err, ErrCorrupt)
}

func TestParseCompression(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		got, err := ParseCompression(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
	_, err := ParseCompression("snappy")
	require.Error(t, err)
}
