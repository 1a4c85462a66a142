package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/lattice/pkg/graph"
)

func TestRender_ExpandAndShallow(t *testing.T) {
	s := graph.New()
	person := s.Create()
	stats := s.Create()
	_, _ = s.Set(person, "name", "amit")
	_, _ = s.Set(stats, "thebest", "true")
	require.NoError(t, s.Link(person, "stats", stats))

	out, err := s.Render(person, graph.Expand)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"amit","stats":{"thebest":"true"}}`, out)

	out, err = s.Render(person, graph.Shallow)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"amit","stats":2}`, out)
}

func TestRender_DanglingIsNull(t *testing.T) {
	s := graph.New()
	o := s.Create()
	require.NoError(t, s.Link(o, "ghost", 500))

	out, err := s.Render(o, graph.Expand)
	require.NoError(t, err)
	assert.Equal(t, `{"ghost":null}`, out)
}

func TestRender_CycleTerminates(t *testing.T) {
	s := graph.New()
	a := s.Create()
	b := s.Create()
	require.NoError(t, s.Link(a, "next", b))
	require.NoError(t, s.Link(b, "prev", a))
	require.NoError(t, s.Link(a, "self", a))

	out, err := s.Render(a, graph.Expand)
	require.NoError(t, err)
	assert.JSONEq(t, `{"next":{"prev":1},"self":1}`, out)
}

func TestRender_SharedChildIsExpandedEachTime(t *testing.T) {
	s := graph.New()
	root := s.Create()
	shared := s.Create()
	_, _ = s.Set(shared, "v", "x")
	require.NoError(t, s.Link(root, "left", shared))
	require.NoError(t, s.Link(root, "right", shared))

	out, err := s.Render(root, graph.Expand)
	require.NoError(t, err)
	assert.JSONEq(t, `{"left":{"v":"x"},"right":{"v":"x"}}`, out)
}

func TestRender_EscapesValues(t *testing.T) {
	s := graph.New()
	o := s.Create()
	_, _ = s.Set(o, "proffesion", "developer \"lol\"\t\n<kk>")

	out, err := s.Render(o, graph.Expand)
	require.NoError(t, err)
	assert.Equal(t, `{"proffesion":"developer \"lol\"\t\n<kk>"}`, out)
}
