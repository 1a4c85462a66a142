package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/lattice/pkg/core"
)

// DefaultMaxFrameSize bounds the length prefix accepted by ReadFrame.
const DefaultMaxFrameSize = 64 << 20

// WriteFrame writes payload prefixed with its 8-byte little-endian length
// in a single Write call.
func WriteFrame(w io.Writer, payload []byte) error {
	buf := make([]byte, 0, UintSize+len(payload))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(payload)))
	buf = append(buf, payload...)
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("%w: %w", core.ErrConnectionIO, err)
	}
	return nil
}

// ReadFrame reads one length-prefixed payload. It returns io.EOF unwrapped
// when the stream ends cleanly before a new frame. A zero max disables the
// size check.
func ReadFrame(r io.Reader, max uint64) ([]byte, error) {
	var hdr [UintSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: reading length: %w", core.ErrConnectionIO, err)
	}

	n := binary.LittleEndian.Uint64(hdr[:])
	if max > 0 && n > max {
		return nil, fmt.Errorf("%w: frame of %d bytes exceeds limit %d", core.ErrMalformedTransaction, n, max)
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("%w: reading %d byte frame: %w", core.ErrConnectionIO, n, err)
	}
	return payload, nil
}
