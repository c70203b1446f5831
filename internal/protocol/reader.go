package protocol

import (
	"encoding/binary"
	"math"
)

// Reader decodes fixed-width little-endian fields from a frame payload. The
// first byte of every payload is the message kind; callers consume it via
// Kind before reading the rest of the fields.
type Reader struct {
	data []byte
	off  int
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Kind reads the 1-byte message kind discriminator.
func (r *Reader) Kind() MessageKind {
	return MessageKind(r.ReadU8())
}

func (r *Reader) ReadU8() uint8 {
	if r.off+1 > len(r.data) {
		r.off = len(r.data)
		return 0
	}
	v := r.data[r.off]
	r.off++
	return v
}

func (r *Reader) ReadU16() uint16 {
	if r.off+2 > len(r.data) {
		r.off = len(r.data)
		return 0
	}
	v := binary.LittleEndian.Uint16(r.data[r.off:])
	r.off += 2
	return v
}

func (r *Reader) ReadU32() uint32 {
	if r.off+4 > len(r.data) {
		r.off = len(r.data)
		return 0
	}
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v
}

func (r *Reader) ReadU64() uint64 {
	if r.off+8 > len(r.data) {
		r.off = len(r.data)
		return 0
	}
	v := binary.LittleEndian.Uint64(r.data[r.off:])
	r.off += 8
	return v
}

func (r *Reader) ReadI32() int32 {
	return int32(r.ReadU32())
}

func (r *Reader) ReadF32() float32 {
	bits := r.ReadU32()
	return math.Float32frombits(bits)
}

// ReadString reads a u16 byte-length prefix followed by that many UTF-8 bytes.
func (r *Reader) ReadString() string {
	n := int(r.ReadU16())
	if n == 0 {
		return ""
	}
	if r.off+n > len(r.data) {
		r.off = len(r.data)
		return ""
	}
	s := string(r.data[r.off : r.off+n])
	r.off += n
	return s
}

// Err reports whether the reader ran past the end of the payload.
func (r *Reader) Err() bool {
	return r.off > len(r.data)
}

// Remaining reports the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.off
}
