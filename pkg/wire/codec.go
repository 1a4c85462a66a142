package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/aretw0/lattice/pkg/core"
)

// UintSize is the width of every integer on the wire.
const UintSize = 8

// Encode serializes tx. Every non-Create transaction carries all five
// fields so that older decoders keep working.
func Encode(tx core.Transaction) []byte {
	r := core.Flatten(tx)
	if r.Command == core.CmdCreate {
		return []byte{byte(core.CmdCreate)}
	}

	buf := make([]byte, 0, 1+UintSize*4+len(r.Key)+len(r.Value))
	buf = append(buf, byte(r.Command))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(r.Object))
	buf = appendString(buf, r.Key)
	buf = appendString(buf, r.Value)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(r.Other))
	return buf
}

func appendString(buf []byte, s string) []byte {
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(s)))
	return append(buf, s...)
}

// Decode parses one transaction from data. Trailing bytes beyond what the
// command needs are ignored.
func Decode(data []byte) (core.Transaction, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty buffer", core.ErrMalformedTransaction)
	}

	cmd := core.Command(data[0])
	if !cmd.Valid() {
		return nil, fmt.Errorf("%w: unsupported command %d", core.ErrMalformedTransaction, data[0])
	}
	if cmd == core.CmdCreate {
		return core.Create{}, nil
	}

	d := decoder{buf: data, pos: 1}
	obj := core.ID(d.uint64())
	key := d.string()

	var tx core.Transaction
	switch cmd {
	case core.CmdGet:
		tx = core.Get{Object: obj, Key: key}
	case core.CmdSet:
		tx = core.Set{Object: obj, Key: key, Value: d.string()}
	case core.CmdLink:
		d.skipString()
		tx = core.Link{Object: obj, Key: key, Other: core.ID(d.uint64())}
	case core.CmdGetRaw:
		d.skipString()
		d.uint64()
		tx = core.GetRaw{Object: obj, Key: key}
	}

	if d.err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrMalformedTransaction, cmd, d.err)
	}
	return tx, nil
}

// decoder reads fixed-width fields from a buffer and remembers the first
// out-of-bounds read.
type decoder struct {
	buf []byte
	pos int
	err error
}

func (d *decoder) take(n uint64) []byte {
	if d.err != nil {
		return nil
	}
	if n > uint64(len(d.buf)-d.pos) {
		d.err = fmt.Errorf("need %d bytes at offset %d, have %d", n, d.pos, len(d.buf)-d.pos)
		return nil
	}
	b := d.buf[d.pos : d.pos+int(n)]
	d.pos += int(n)
	return b
}

func (d *decoder) uint64() uint64 {
	b := d.take(UintSize)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (d *decoder) string() string {
	n := d.uint64()
	return string(d.take(n))
}

func (d *decoder) skipString() {
	d.take(d.uint64())
}
