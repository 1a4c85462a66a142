package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/aretw0/lattice/pkg/core"
)

// EncodeResponse serializes the reply to a transaction of kind cmd.
// Create replies with the bare identifier; everything else is the result
// identifier followed by the UTF-8 payload.
func EncodeResponse(cmd core.Command, resp core.Response) []byte {
	if cmd == core.CmdCreate {
		return binary.LittleEndian.AppendUint64(nil, uint64(resp.Object))
	}
	buf := make([]byte, 0, UintSize+len(resp.Payload))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(resp.Object))
	return append(buf, resp.Payload...)
}

// DecodeResponse parses the reply to a transaction of kind cmd.
func DecodeResponse(cmd core.Command, data []byte) (core.Response, error) {
	if len(data) < UintSize {
		return core.Response{}, fmt.Errorf("%w: response of %d bytes", core.ErrMalformedTransaction, len(data))
	}
	resp := core.Response{Object: core.ID(binary.LittleEndian.Uint64(data))}
	if cmd != core.CmdCreate {
		resp.Payload = string(data[UintSize:])
	}
	return resp, nil
}
