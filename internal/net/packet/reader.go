package packet

import (
	"encoding/binary"
	"errors"
	"math"

	"golang.org/x/text/unicode/norm"
)

// ErrShortPacket reports a read past the end of the payload.
var ErrShortPacket = errors.New("packet too short")

// Reader reads little-endian packet fields from a payload.
// The first four bytes are always the packet type.
type Reader struct {
	data []byte
	off  int
	err  error
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data, off: 4} // skip packet type
}

// Type returns the packet type, or -1 when the payload cannot hold one.
func (r *Reader) Type() int32 {
	if len(r.data) < 4 {
		return -1
	}
	return int32(binary.LittleEndian.Uint32(r.data))
}

// ReadInt32 reads 4 bytes as little-endian int32.
func (r *Reader) ReadInt32() int32 {
	if r.off+4 > len(r.data) {
		r.fail()
		return 0
	}
	v := int32(binary.LittleEndian.Uint32(r.data[r.off:]))
	r.off += 4
	return v
}

// ReadFloat32 reads 4 bytes as a little-endian IEEE 754 float.
func (r *Reader) ReadFloat32() float32 {
	if r.off+4 > len(r.data) {
		r.fail()
		return 0
	}
	v := math.Float32frombits(binary.LittleEndian.Uint32(r.data[r.off:]))
	r.off += 4
	return v
}

// ReadBool reads one byte; any non-zero value is true.
func (r *Reader) ReadBool() bool {
	if r.off >= len(r.data) {
		r.fail()
		return false
	}
	v := r.data[r.off] != 0
	r.off++
	return v
}

// ReadString reads a null-terminated UTF-8 string, NFC-normalised and cut
// to MaxTextRunes.
func (r *Reader) ReadString() string {
	start := r.off
	for r.off < len(r.data) {
		if r.data[r.off] == 0 {
			raw := r.data[start:r.off]
			r.off++
			return clampText(string(raw))
		}
		r.off++
	}
	r.fail()
	return clampText(string(r.data[start:r.off]))
}

// ReadBytes reads n raw bytes.
func (r *Reader) ReadBytes(n int) []byte {
	if r.off+n > len(r.data) {
		remaining := r.data[r.off:]
		r.off = len(r.data)
		r.fail()
		return remaining
	}
	b := make([]byte, n)
	copy(b, r.data[r.off:r.off+n])
	r.off += n
	return b
}

// Rest returns every unread byte.
func (r *Reader) Rest() []byte {
	return r.ReadBytes(r.Remaining())
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.off
}

// Err returns ErrShortPacket once any read ran past the payload.
func (r *Reader) Err() error {
	return r.err
}

func (r *Reader) fail() {
	if r.err == nil {
		r.err = ErrShortPacket
	}
}

func clampText(s string) string {
	s = norm.NFC.String(s)
	n := 0
	for i := range s {
		if n == MaxTextRunes {
			return s[:i]
		}
		n++
	}
	return s
}
