package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/lattice/pkg/core"
)

func TestCommand(t *testing.T) {
	assert.True(t, core.CmdCreate.IsWrite())
	assert.True(t, core.CmdSet.IsWrite())
	assert.True(t, core.CmdLink.IsWrite())
	assert.False(t, core.CmdGet.IsWrite())
	assert.False(t, core.CmdGetRaw.IsWrite())

	assert.True(t, core.CmdGetRaw.Valid())
	assert.False(t, core.Command(5).Valid())
	assert.Equal(t, "command(5)", core.Command(5).String())
}

func TestRecord_DropsUnusedFields(t *testing.T) {
	tx, err := core.Record{Command: core.CmdLink, Object: 1, Key: "k", Value: "ignored", Other: 2}.Transaction()
	require.NoError(t, err)
	assert.Equal(t, core.Link{Object: 1, Key: "k", Other: 2}, tx)

	tx, err = core.Record{Command: core.CmdCreate, Object: 9, Key: "x"}.Transaction()
	require.NoError(t, err)
	assert.Equal(t, core.Create{}, tx)

	_, err = core.Record{Command: 7}.Transaction()
	assert.ErrorIs(t, err, core.ErrMalformedTransaction)
}

func TestFlatten(t *testing.T) {
	txs := []core.Transaction{
		core.Create{},
		core.Set{Object: 1, Key: "a.b", Value: "v"},
		core.Get{Object: 1, Key: "a"},
		core.GetRaw{Object: 1},
		core.Link{Object: 1, Key: "c", Other: 3},
	}
	for _, tx := range txs {
		rec := core.Flatten(tx)
		assert.Equal(t, tx.Command(), rec.Command)
		back, err := rec.Transaction()
		require.NoError(t, err)
		assert.Equal(t, tx, back)
	}
}
