package status

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"math"
)

const (
	binaryMagic   = 0x53534354 // "SSCT"
	binaryVersion = 1

	headerSize = 16

	// maxPayload bounds the payload length accepted by Read.
	maxPayload = 64 << 20
)

// Encode returns the binary encoding of s.
func Encode(s Status) ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	pb := newPayloadBuffer(make([]byte, 0, 64+16*(len(s.processedQueries)+len(s.processedShards))))
	pb.writeInt(s.processedSlices)
	pb.writeStrings(s.processedQueries)
	pb.writeStrings(s.processedShards)
	pb.writeInt(s.sliceIndex)
	pb.writeInt(s.totalSlices)
	pb.writeInt(s.pagesEmitted)
	pb.writeInt(s.sliceMin)
	pb.writeInt(s.sliceMax)
	pb.writeInt(s.current)

	if pb.err != nil {
		return nil, pb.err
	}

	payload := pb.buf
	out := make([]byte, headerSize, headerSize+len(payload))
	binary.LittleEndian.PutUint32(out[0:4], binaryMagic)
	binary.LittleEndian.PutUint32(out[4:8], binaryVersion)
	binary.LittleEndian.PutUint32(out[8:12], crc32.ChecksumIEEE(payload))
	binary.LittleEndian.PutUint32(out[12:16], uint32(len(payload)))
	return append(out, payload...), nil
}

// Decode reconstructs a Status from its binary encoding.
// The input must contain exactly one encoded status.
func Decode(data []byte) (Status, error) {
	if len(data) < headerSize {
		return Status{}, fmt.Errorf("%w: short header (%d bytes)", ErrCorrupt, len(data))
	}
	length, err := checkHeader(data[:headerSize])
	if err != nil {
		return Status{}, err
	}
	if uint64(len(data)-headerSize) != uint64(length) {
		return Status{}, fmt.Errorf("%w: payload length %d, have %d", ErrCorrupt, length, len(data)-headerSize)
	}
	return decodePayload(data[headerSize:], binary.LittleEndian.Uint32(data[8:12]))
}

// Write writes the binary encoding of s to w.
func Write(w io.Writer, s Status) error {
	b, err := Encode(s)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// Read reads one binary-encoded Status from r.
func Read(r io.Reader) (Status, error) {
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return Status{}, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	length, err := checkHeader(header)
	if err != nil {
		return Status{}, err
	}
	if length > maxPayload {
		return Status{}, fmt.Errorf("%w: payload too large (%d)", ErrCorrupt, length)
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return Status{}, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return decodePayload(payload, binary.LittleEndian.Uint32(header[8:12]))
}

func checkHeader(header []byte) (uint32, error) {
	magic := binary.LittleEndian.Uint32(header[0:4])
	if magic != binaryMagic {
		return 0, fmt.Errorf("%w: invalid magic %x", ErrCorrupt, magic)
	}
	version := binary.LittleEndian.Uint32(header[4:8])
	if version != binaryVersion {
		return 0, fmt.Errorf("%w: %d", ErrIncompatibleVersion, version)
	}
	return binary.LittleEndian.Uint32(header[12:16]), nil
}

func decodePayload(payload []byte, checksum uint32) (Status, error) {
	if crc32.ChecksumIEEE(payload) != checksum {
		return Status{}, fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}

	pb := newPayloadBuffer(payload)
	var s Status
	s.processedSlices = pb.readInt()
	s.processedQueries = pb.readStrings()
	s.processedShards = pb.readStrings()
	s.sliceIndex = pb.readInt()
	s.totalSlices = pb.readInt()
	s.pagesEmitted = pb.readInt()
	s.sliceMin = pb.readInt()
	s.sliceMax = pb.readInt()
	s.current = pb.readInt()

	if pb.err != nil {
		return Status{}, fmt.Errorf("%w: %w", ErrCorrupt, pb.err)
	}
	if pb.pos != len(pb.buf) {
		return Status{}, fmt.Errorf("%w: %d trailing bytes", ErrCorrupt, len(pb.buf)-pb.pos)
	}
	return s, nil
}

type payloadBuffer struct {
	buf []byte
	pos int
	err error
}

func newPayloadBuffer(b []byte) *payloadBuffer {
	return &payloadBuffer{buf: b}
}

func (p *payloadBuffer) writeInt(v int) {
	if p.err != nil {
		return
	}
	p.buf = binary.AppendUvarint(p.buf, uint64(v))
}

func (p *payloadBuffer) writeStrings(ss []string) {
	p.writeInt(len(ss))
	for _, s := range ss {
		p.writeInt(len(s))
		if p.err != nil {
			return
		}
		p.buf = append(p.buf, s...)
	}
}

func (p *payloadBuffer) readInt() int {
	if p.err != nil {
		return 0
	}
	v, n := binary.Uvarint(p.buf[p.pos:])
	if n <= 0 {
		p.err = io.ErrUnexpectedEOF
		return 0
	}
	if v > math.MaxInt32 {
		p.err = fmt.Errorf("value out of range: %d", v)
		return 0
	}
	p.pos += n
	return int(v)
}

// readStrings reads a set. Elements must be strictly ascending; anything else
// was not produced by Encode.
func (p *payloadBuffer) readStrings() []string {
	count := p.readInt()
	if p.err != nil {
		return nil
	}
	if count > len(p.buf)-p.pos {
		p.err = io.ErrUnexpectedEOF
		return nil
	}
	out := make([]string, 0, count)
	for i := 0; i < count; i++ {
		l := p.readInt()
		if p.err != nil {
			return nil
		}
		if p.pos+l > len(p.buf) {
			p.err = io.ErrUnexpectedEOF
			return nil
		}
		s := string(p.buf[p.pos : p.pos+l])
		p.pos += l
		if i > 0 && s <= out[i-1] {
			p.err = fmt.Errorf("set not in canonical order at element %d", i)
			return nil
		}
		out = append(out, s)
	}
	return out
}
