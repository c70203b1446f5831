// Package protocol implements the length-prefixed little-endian binary wire
// format shared by cmd/server and cmd/client: one frame per message, no
// partial-message delivery is ever exposed above ReadFrame.
package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
)

// MaxFrameLen bounds a single frame's payload to guard against a malformed
// or hostile length header exhausting memory.
const MaxFrameLen = 1 << 16

// ReadFrame reads one frame from r.
// Wire format: [4 bytes LE: payload length][payload].
func ReadFrame(r io.Reader) ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("protocol: read frame header: %w", err)
	}
	payloadLen := binary.LittleEndian.Uint32(header[:])
	if payloadLen == 0 || payloadLen > MaxFrameLen {
		return nil, fmt.Errorf("protocol: invalid frame length: %d", payloadLen)
	}
	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("protocol: read frame payload (%d bytes): %w", payloadLen, err)
	}
	return payload, nil
}

// WriteFrame writes one frame to w.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) == 0 || len(payload) > MaxFrameLen {
		return fmt.Errorf("protocol: invalid frame length: %d", len(payload))
	}
	var header [4]byte
	binary.LittleEndian.PutUint32(header[:], uint32(len(payload)))
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("protocol: write frame header: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("protocol: write frame payload: %w", err)
	}
	return nil
}
