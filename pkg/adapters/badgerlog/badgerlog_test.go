package badgerlog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/lattice/pkg/adapters/badgerlog"
	"github.com/aretw0/lattice/pkg/core"
)

func replay(t *testing.T, l core.Log) []core.Transaction {
	t.Helper()
	var got []core.Transaction
	for tx, err := range l.Replay(context.Background()) {
		require.NoError(t, err)
		got = append(got, tx)
	}
	return got
}

func TestLog_InMemory(t *testing.T) {
	l, err := badgerlog.Open(badgerlog.Config{InMemory: true})
	require.NoError(t, err)
	defer l.Close()

	assert.Empty(t, replay(t, l))

	history := []core.Transaction{
		core.Create{},
		core.Set{Object: 1, Key: "name", Value: "amit"},
		core.Link{Object: 1, Key: "self", Other: 1},
	}
	for _, tx := range history {
		require.NoError(t, l.Append(context.Background(), tx))
	}
	assert.Equal(t, history, replay(t, l))
	assert.Equal(t, uint64(3), l.Len())
}

func TestLog_ReopenContinuesSequence(t *testing.T) {
	dir := t.TempDir()

	l, err := badgerlog.Open(badgerlog.Config{Path: dir, Sync: true})
	require.NoError(t, err)
	for i := 0; i < 300; i++ {
		require.NoError(t, l.Append(context.Background(), core.Create{}))
	}
	require.NoError(t, l.Close())

	l, err = badgerlog.Open(badgerlog.Config{Path: dir})
	require.NoError(t, err)
	defer l.Close()
	assert.Equal(t, uint64(300), l.Len())

	require.NoError(t, l.Append(context.Background(), core.Set{Object: 300, Key: "last", Value: "yes"}))
	got := replay(t, l)
	require.Len(t, got, 301)
	assert.Equal(t, core.Set{Object: 300, Key: "last", Value: "yes"}, got[300])
}

func TestLog_StopEarly(t *testing.T) {
	l, err := badgerlog.Open(badgerlog.Config{InMemory: true})
	require.NoError(t, err)
	defer l.Close()
	for i := 0; i < 5; i++ {
		require.NoError(t, l.Append(context.Background(), core.Create{}))
	}

	n := 0
	for range l.Replay(context.Background()) {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}
