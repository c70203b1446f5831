package protocol

import (
	"encoding/binary"
	"math"
)

// Writer encodes fixed-width little-endian fields into a frame payload.
type Writer struct {
	buf []byte
}

func NewWriter(kind MessageKind) *Writer {
	w := &Writer{buf: make([]byte, 0, 64)}
	w.WriteU8(uint8(kind))
	return w
}

func (w *Writer) WriteU8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *Writer) WriteU16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *Writer) WriteU32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *Writer) WriteU64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *Writer) WriteI32(v int32) {
	w.WriteU32(uint32(v))
}

func (w *Writer) WriteF32(v float32) {
	w.WriteU32(math.Float32bits(v))
}

// WriteString writes a u16 byte-length prefix followed by the UTF-8 bytes.
func (w *Writer) WriteString(s string) {
	if len(s) > 0xFFFF {
		s = s[:0xFFFF]
	}
	w.WriteU16(uint16(len(s)))
	w.buf = append(w.buf, s...)
}

// Bytes returns the encoded payload, ready for protocol.WriteFrame.
func (w *Writer) Bytes() []byte {
	return w.buf
}
