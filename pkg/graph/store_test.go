package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/lattice/pkg/core"
	"github.com/aretw0/lattice/pkg/graph"
)

func TestStore_CreateAssignsMonotonicIDs(t *testing.T) {
	s := graph.New()
	assert.Equal(t, core.ID(1), s.Create())
	assert.Equal(t, core.ID(2), s.Create())

	id, node, ok := s.Get(1, "")
	require.True(t, ok)
	assert.Equal(t, core.ID(1), id)
	assert.IsType(t, &core.Entity{}, node)
}

func TestStore_Interning(t *testing.T) {
	s := graph.New()
	o1 := s.Create()
	o2 := s.Create()

	x1, err := s.Set(o1, "k1", "x")
	require.NoError(t, err)
	x2, err := s.Set(o2, "k2", "x")
	require.NoError(t, err)
	assert.Equal(t, x1, x2)

	id1, _, ok := s.Get(o1, "k1")
	require.True(t, ok)
	id2, _, ok := s.Get(o2, "k2")
	require.True(t, ok)
	assert.Equal(t, id1, id2)

	lookup, ok := s.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, x1, lookup)
}

func TestStore_OverwriteRepointsProperty(t *testing.T) {
	s := graph.New()
	o := s.Create()

	first, err := s.Set(o, "name", "a")
	require.NoError(t, err)
	second, err := s.Set(o, "name", "b")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	id, node, ok := s.Get(o, "name")
	require.True(t, ok)
	assert.Equal(t, second, id)
	assert.Equal(t, &core.Scalar{Value: "b"}, node)

	// The old scalar is kept.
	_, ok = s.Node(first)
	assert.True(t, ok)
}

func TestStore_SetFailures(t *testing.T) {
	s := graph.New()
	o := s.Create()
	v, err := s.Set(o, "k", "v")
	require.NoError(t, err)

	_, err = s.Set(99, "k", "new")
	assert.ErrorIs(t, err, core.ErrNoSuchObject)

	_, err = s.Set(v, "k", "new")
	assert.ErrorIs(t, err, core.ErrNotAnEntity)

	_, ok := s.Lookup("new")
	assert.False(t, ok, "failed set must not intern")
	assert.Equal(t, 2, s.Len())
}

func TestStore_LinkAllowsDangling(t *testing.T) {
	s := graph.New()
	o := s.Create()

	require.NoError(t, s.Link(o, "ghost", 42))
	_, _, ok := s.Get(o, "ghost")
	assert.False(t, ok)

	assert.ErrorIs(t, s.Link(7, "x", o), core.ErrNoSuchObject)
}

func TestStore_GetOnScalarOrMissing(t *testing.T) {
	s := graph.New()
	o := s.Create()
	v, err := s.Set(o, "k", "v")
	require.NoError(t, err)

	_, _, ok := s.Get(v, "anything")
	assert.False(t, ok)

	id, node, ok := s.Get(v, "")
	require.True(t, ok)
	assert.Equal(t, v, id)
	assert.Equal(t, &core.Scalar{Value: "v"}, node)

	_, _, ok = s.Get(o, "missing")
	assert.False(t, ok)

	_, _, ok = s.Get(123, "")
	assert.False(t, ok)
}

func TestStore_Stats(t *testing.T) {
	s := graph.New()
	o := s.Create()
	_, _ = s.Set(o, "a", "1")
	_, _ = s.Set(o, "b", "1")
	_, _ = s.Set(o, "c", "2")

	st := s.Stats()
	assert.Equal(t, graph.Stats{Nodes: 3, Entities: 1, Scalars: 2, LastID: 3}, st)
}
