package ubjson

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"

	"github.com/pkg/errors"
)

// byteReader is the reading half of the Byte I/O layer. It
// tracks a byte position for error diagnostics the way sbunce-bson's decode
// functions thread a dotted "path" string through recursion for the same
// purpose, but at the primitive-I/O level instead of the document-structure
// level.
type byteReader struct {
	r      *bufio.Reader
	pos    int64
	borrow BorrowReader
}

func newByteReader(r io.Reader) *byteReader {
	return &byteReader{r: bufio.NewReader(r)}
}

func (b *byteReader) position() int64 { return b.pos }

func (b *byteReader) readByte() (byte, error) {
	c, err := b.r.ReadByte()
	if err != nil {
		return 0, wrapUnexpectedEnd(err)
	}
	b.pos++
	return c, nil
}

func (b *byteReader) peekByte() (byte, error) {
	peeked, err := b.r.Peek(1)
	if err != nil {
		return 0, wrapUnexpectedEnd(err)
	}
	return peeked[0], nil
}

func (b *byteReader) readFull(n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(b.r, buf); err != nil {
		return nil, wrapUnexpectedEnd(err)
	}
	b.pos += int64(n)
	return buf, nil
}

// readMarker reads one byte and interprets it as a marker.
func (b *byteReader) readMarker() (Marker, error) {
	c, err := b.readByte()
	if err != nil {
		return 0, err
	}
	return Marker(c), nil
}

func (b *byteReader) readInt8() (int8, error) {
	buf, err := b.readFull(1)
	if err != nil {
		return 0, err
	}
	return int8(buf[0]), nil
}

func (b *byteReader) readUint8() (uint8, error) {
	buf, err := b.readFull(1)
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (b *byteReader) readInt16() (int16, error) {
	buf, err := b.readFull(2)
	if err != nil {
		return 0, err
	}
	return int16(binary.BigEndian.Uint16(buf)), nil
}

func (b *byteReader) readInt32() (int32, error) {
	buf, err := b.readFull(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(buf)), nil
}

func (b *byteReader) readInt64() (int64, error) {
	buf, err := b.readFull(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(buf)), nil
}

func (b *byteReader) readFloat32() (float32, error) {
	buf, err := b.readFull(4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.BigEndian.Uint32(buf)), nil
}

func (b *byteReader) readFloat64() (float64, error) {
	buf, err := b.readFull(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(buf)), nil
}

// readIntByMarker reads the fixed-width payload for one of the five integer
// markers and returns it widened to int64.
func (b *byteReader) readIntByMarker(m Marker) (int64, error) {
	switch m {
	case int8Marker:
		v, err := b.readInt8()
		return int64(v), err
	case uint8Marker:
		v, err := b.readUint8()
		return int64(v), err
	case int16Marker:
		v, err := b.readInt16()
		return int64(v), err
	case int32Marker:
		v, err := b.readInt32()
		return int64(v), err
	case int64Marker:
		return b.readInt64()
	default:
		return 0, &MarkerError{Byte: byte(m), Position: b.pos}
	}
}

// wrapUnexpectedEnd normalizes io.EOF/io.ErrUnexpectedEOF into
// ErrUnexpectedEnd while passing any other underlying I/O error through
// wrapped with context.
func wrapUnexpectedEnd(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrUnexpectedEnd
	}
	return wrapIO(err, "ubjson: read failed")
}

// byteWriter is the writing half of the Byte I/O layer.
type byteWriter struct {
	w   *bufio.Writer
	buf [8]byte
}

func newByteWriter(w io.Writer) *byteWriter {
	return &byteWriter{w: bufio.NewWriter(w)}
}

func (b *byteWriter) flush() error {
	return wrapIO(b.w.Flush(), "ubjson: flush failed")
}

func (b *byteWriter) writeByte(c byte) error {
	return wrapIO(b.w.WriteByte(c), "ubjson: write failed")
}

func (b *byteWriter) writeBytes(p []byte) error {
	_, err := b.w.Write(p)
	return wrapIO(err, "ubjson: write failed")
}

func (b *byteWriter) writeMarker(m Marker) error {
	return b.writeByte(byte(m))
}

func (b *byteWriter) writeInt8(v int8) error {
	return b.writeByte(byte(v))
}

func (b *byteWriter) writeUint8(v uint8) error {
	return b.writeByte(v)
}

func (b *byteWriter) writeInt16(v int16) error {
	binary.BigEndian.PutUint16(b.buf[:2], uint16(v))
	return b.writeBytes(b.buf[:2])
}

func (b *byteWriter) writeInt32(v int32) error {
	binary.BigEndian.PutUint32(b.buf[:4], uint32(v))
	return b.writeBytes(b.buf[:4])
}

func (b *byteWriter) writeInt64(v int64) error {
	binary.BigEndian.PutUint64(b.buf[:8], uint64(v))
	return b.writeBytes(b.buf[:8])
}

func (b *byteWriter) writeFloat32(v float32) error {
	binary.BigEndian.PutUint32(b.buf[:4], math.Float32bits(v))
	return b.writeBytes(b.buf[:4])
}

func (b *byteWriter) writeFloat64(v float64) error {
	binary.BigEndian.PutUint64(b.buf[:8], math.Float64bits(v))
	return b.writeBytes(b.buf[:8])
}

// writeIntByMarker writes v's payload using the width named by m. The caller
// is responsible for having already written m as the preceding marker byte.
func (b *byteWriter) writeIntByMarker(m Marker, v int64) error {
	switch m {
	case int8Marker:
		return b.writeInt8(int8(v))
	case uint8Marker:
		return b.writeUint8(uint8(v))
	case int16Marker:
		return b.writeInt16(int16(v))
	case int32Marker:
		return b.writeInt32(int32(v))
	case int64Marker:
		return b.writeInt64(v)
	default:
		return &UnsupportedValueError{Detail: "not an integer marker: " + m.String()}
	}
}
