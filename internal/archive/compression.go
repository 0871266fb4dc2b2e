package archive

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression defines the compression algorithm used for archived blobs.
type Compression uint8

const (
	// CompressionNone stores blobs as is.
	CompressionNone Compression = 0
	// CompressionLZ4 is fast and suits frequently written live statuses.
	CompressionLZ4 Compression = 1
	// CompressionZstd has the better ratio and suits long-term retention.
	CompressionZstd Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// ParseCompression parses the names returned by Compression.String.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZstd, nil
	default:
		return 0, fmt.Errorf("unknown compression %q", name)
	}
}

// ErrCorrupt is returned when an archived blob cannot be unwrapped.
var ErrCorrupt = errors.New("archive: corrupt blob")

const envelopeHeaderSize = 9

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// compress wraps data in an envelope, compressing it with c when that pays off.
func compress(data []byte, c Compression) ([]byte, error) {
	var (
		packed []byte
		err    error
	)
	switch c {
	case CompressionNone:
	case CompressionLZ4:
		packed, err = compressLZ4(data)
	case CompressionZstd:
		enc := getZstdEncoder()
		packed = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	default:
		return nil, fmt.Errorf("unsupported compression %s", c)
	}
	if err != nil {
		return nil, err
	}

	// Keep the raw bytes unless compression saves at least 10%.
	if len(packed) == 0 || float64(len(packed)) > float64(len(data))*0.9 {
		packed = nil
	}

	out := make([]byte, envelopeHeaderSize, envelopeHeaderSize+max(len(packed), len(data)))
	out[0] = byte(c)
	binary.LittleEndian.PutUint32(out[1:], uint32(len(data)))
	binary.LittleEndian.PutUint32(out[5:], uint32(len(packed)))
	if packed == nil {
		return append(out, data...), nil
	}
	return append(out, packed...), nil
}

func compressLZ4(data []byte) ([]byte, error) {
	dst := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, dst, nil)
	if err != nil {
		return nil, err
	}
	// n == 0 means incompressible
	return dst[:n], nil
}

// decompress unwraps an envelope produced by compress.
func decompress(blob []byte) ([]byte, Compression, error) {
	if len(blob) < envelopeHeaderSize {
		return nil, 0, fmt.Errorf("%w: %d bytes", ErrCorrupt, len(blob))
	}

	c := Compression(blob[0])
	rawSize := binary.LittleEndian.Uint32(blob[1:])
	packedSize := binary.LittleEndian.Uint32(blob[5:])
	body := blob[envelopeHeaderSize:]

	if packedSize == 0 {
		if uint64(len(body)) != uint64(rawSize) {
			return nil, c, fmt.Errorf("%w: stored size %d, have %d", ErrCorrupt, rawSize, len(body))
		}
		return body, c, nil
	}

	if uint64(len(body)) != uint64(packedSize) {
		return nil, c, fmt.Errorf("%w: compressed size %d, have %d", ErrCorrupt, packedSize, len(body))
	}

	out := make([]byte, rawSize)
	switch c {
	case CompressionLZ4:
		n, err := lz4.UncompressBlock(body, out)
		if err != nil {
			return nil, c, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		if uint32(n) != rawSize {
			return nil, c, fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
		}
		return out, c, nil
	case CompressionZstd:
		dec := getZstdDecoder()
		defer zstdDecoderPool.Put(dec)

		decoded, err := dec.DecodeAll(body, out[:0])
		if err != nil {
			return nil, c, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		if uint32(len(decoded)) != rawSize {
			return nil, c, fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
		}
		return decoded, c, nil
	default:
		return nil, c, fmt.Errorf("%w: unknown compression %d", ErrCorrupt, uint8(c))
	}
}
