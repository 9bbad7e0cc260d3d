package packet

import (
	"encoding/binary"
	"math"
	"strings"
)

// Writer builds a packet. All multi-byte writes are little-endian.
type Writer struct {
	buf []byte
}

func NewWriter(packetType int32) *Writer {
	w := &Writer{buf: make([]byte, 0, 64)}
	w.WriteInt32(packetType)
	return w
}

// WriteInt32 writes 4 bytes little-endian.
func (w *Writer) WriteInt32(v int32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(v))
	w.buf = append(w.buf, b[:]...)
}

// WriteFloat32 writes an IEEE 754 float little-endian.
func (w *Writer) WriteFloat32(v float32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], math.Float32bits(v))
	w.buf = append(w.buf, b[:]...)
}

// WriteBool writes 1 byte.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.buf = append(w.buf, 1)
		return
	}
	w.buf = append(w.buf, 0)
}

// WriteString writes a null-terminated string, normalised like ReadString.
// Embedded NUL bytes are dropped.
func (w *Writer) WriteString(s string) {
	w.buf = append(w.buf, clampText(strings.ReplaceAll(s, "\x00", ""))...)
	w.buf = append(w.buf, 0)
}

// WriteBytes writes raw bytes.
func (w *Writer) WriteBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the current length including the packet type.
func (w *Writer) Len() int {
	return len(w.buf)
}
