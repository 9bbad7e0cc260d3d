package net

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	// MaxPayload is the largest payload a frame can carry.
	MaxPayload = 65533
	// MinPayload is the packet type header every payload starts with.
	MinPayload = 4
)

// ErrFrameLength reports a frame whose payload is empty, shorter than a
// packet type or longer than MaxPayload.
var ErrFrameLength = errors.New("invalid frame length")

func checkPayload(n int) error {
	if n < MinPayload || n > MaxPayload {
		return fmt.Errorf("%w: %d byte payload", ErrFrameLength, n)
	}
	return nil
}

// ReadFrame reads one packet frame from r.
// Wire format: [2 bytes LE: total length including header][payload].
// Returns the payload bytes (without the 2-byte length header).
func ReadFrame(r io.Reader) ([]byte, error) {
	var header [2]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("read frame header: %w", err)
	}

	payloadLen := int(binary.LittleEndian.Uint16(header[:])) - 2
	if err := checkPayload(payloadLen); err != nil {
		return nil, err
	}

	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("read frame payload (%d bytes): %w", payloadLen, err)
	}
	return payload, nil
}

// WriteFrame writes header and payload with a single Write so frames from
// one writer never interleave.
func WriteFrame(w io.Writer, data []byte) error {
	if err := checkPayload(len(data)); err != nil {
		return err
	}
	buf := make([]byte, 2+len(data))
	binary.LittleEndian.PutUint16(buf, uint16(len(data)+2))
	copy(buf[2:], data)

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}
