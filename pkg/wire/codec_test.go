package wire_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/lattice/pkg/core"
	"github.com/aretw0/lattice/pkg/wire"
)

func TestRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		tx   core.Transaction
	}{
		{"create", core.Create{}},
		{"set", core.Set{Object: 7, Key: "name", Value: "amit"}},
		{"set empty", core.Set{Object: 1}},
		{"get", core.Get{Object: 3, Key: "a.b.c"}},
		{"get empty key", core.Get{Object: 3}},
		{"getraw", core.GetRaw{Object: 9, Key: "child"}},
		{"link", core.Link{Object: 15453332589748683533, Key: "child", Other: 8693387624441552404}},
		{"link empty key", core.Link{Object: 1, Other: 2}},
		{"unicode", core.Set{Object: 2, Key: "título", Value: "\"quoted\"\t\n✓"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := wire.Decode(wire.Encode(tc.tx))
			require.NoError(t, err)
			assert.Equal(t, tc.tx, got)
		})
	}
}

func TestEncode_CreateIsCommandByteOnly(t *testing.T) {
	assert.Equal(t, []byte{0}, wire.Encode(core.Create{}))
}

func TestEncode_UniformLayout(t *testing.T) {
	buf := wire.Encode(core.Get{Object: 5, Key: "ab"})

	// cmd + obj + key_len + key + value_len + other
	require.Len(t, buf, 1+8+8+2+8+8)
	assert.Equal(t, byte(core.CmdGet), buf[0])
	assert.Equal(t, uint64(5), binary.LittleEndian.Uint64(buf[1:]))
	assert.Equal(t, uint64(2), binary.LittleEndian.Uint64(buf[9:]))
	assert.Equal(t, "ab", string(buf[17:19]))
	assert.Equal(t, uint64(0), binary.LittleEndian.Uint64(buf[19:]))
	assert.Equal(t, uint64(0), binary.LittleEndian.Uint64(buf[27:]))
}

func TestDecode_CreateIgnoresTrailingFields(t *testing.T) {
	legacy := append([]byte{0}, make([]byte, 32)...)
	tx, err := wire.Decode(legacy)
	require.NoError(t, err)
	assert.Equal(t, core.Create{}, tx)
}

func TestDecode_LinkSkipsValue(t *testing.T) {
	// A writer that put a value on a Link must not shift the other field.
	var buf []byte
	buf = append(buf, byte(core.CmdLink))
	buf = binary.LittleEndian.AppendUint64(buf, 1)
	buf = binary.LittleEndian.AppendUint64(buf, 1)
	buf = append(buf, 'k')
	buf = binary.LittleEndian.AppendUint64(buf, 3)
	buf = append(buf, "xyz"...)
	buf = binary.LittleEndian.AppendUint64(buf, 42)

	tx, err := wire.Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, core.Link{Object: 1, Key: "k", Other: 42}, tx)
}

func TestDecode_Malformed(t *testing.T) {
	full := wire.Encode(core.Set{Object: 1, Key: "key", Value: "value"})

	cases := map[string][]byte{
		"empty":           nil,
		"bad command":     {9},
		"truncated obj":   full[:5],
		"truncated key":   full[:18],
		"truncated value": full[:len(full)-12],
		"huge key len":    append([]byte{byte(core.CmdGet), 1, 0, 0, 0, 0, 0, 0, 0}, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff),
		"link no other":   wire.Encode(core.Link{Object: 1, Key: "k", Other: 2})[:27],
	}

	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := wire.Decode(data)
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrMalformedTransaction), "got %v", err)
		})
	}
}

func TestResponse(t *testing.T) {
	buf := wire.EncodeResponse(core.CmdCreate, core.Response{Object: 12})
	require.Len(t, buf, 8)
	resp, err := wire.DecodeResponse(core.CmdCreate, buf)
	require.NoError(t, err)
	assert.Equal(t, core.Response{Object: 12}, resp)

	buf = wire.EncodeResponse(core.CmdGet, core.Response{Object: 4, Payload: `{"a":"b"}`})
	resp, err = wire.DecodeResponse(core.CmdGet, buf)
	require.NoError(t, err)
	assert.Equal(t, core.Response{Object: 4, Payload: `{"a":"b"}`}, resp)

	_, err = wire.DecodeResponse(core.CmdGet, []byte{1, 2})
	assert.ErrorIs(t, err, core.ErrMalformedTransaction)
}

func TestFrame(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, wire.WriteFrame(&buf, []byte("hello")))
	require.NoError(t, wire.WriteFrame(&buf, nil))

	got, err := wire.ReadFrame(&buf, 0)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))

	got, err = wire.ReadFrame(&buf, 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = wire.ReadFrame(&buf, 0)
	assert.Equal(t, io.EOF, err)
}

func TestFrame_Errors(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, wire.WriteFrame(&buf, make([]byte, 100)))
	_, err := wire.ReadFrame(bytes.NewReader(buf.Bytes()), 10)
	assert.ErrorIs(t, err, core.ErrMalformedTransaction)

	_, err = wire.ReadFrame(bytes.NewReader(buf.Bytes()[:50]), 0)
	assert.ErrorIs(t, err, core.ErrConnectionIO)

	_, err = wire.ReadFrame(bytes.NewReader([]byte{1, 2, 3}), 0)
	assert.ErrorIs(t, err, core.ErrConnectionIO)
}
