package memnet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atanasg/ProteoVisualizer/errors"
	"github.com/atanasg/ProteoVisualizer/network"
)

type recorder struct {
	events []network.GroupEvent
}

func (r *recorder) HandleGroupEvent(e network.GroupEvent) {
	r.events = append(r.events, e)
}

func visibleEdgeSet(net network.Network) map[network.SUID]bool {
	out := make(map[network.SUID]bool)
	for _, e := range net.Edges() {
		out[e.SUID] = true
	}
	return out
}

func TestGroup_CollapseExpand(t *testing.T) {
	s := NewSession()
	rec := &recorder{}
	s.AddGroupListener(rec)

	net := s.CreateNetwork("n")
	a, b, c := net.AddNode(), net.AddNode(), net.AddNode()
	ab, _ := net.AddEdge(a, b, false)
	ac, _ := net.AddEdge(a, c, false)
	bc, _ := net.AddEdge(b, c, false)

	g, err := s.CreateGroup(net, []network.SUID{a, b}, a, false)
	require.NoError(t, err)
	assert.False(t, g.IsCollapsed())
	assert.False(t, net.ContainsNode(g.GroupNode()), "group node is hidden while expanded")
	assert.ElementsMatch(t, []network.Edge{ac, bc}, g.ExternalEdges())

	require.NoError(t, g.Collapse())
	assert.True(t, g.IsCollapsed())
	assert.Equal(t, []network.SUID{c, g.GroupNode()}, net.Nodes())
	edges := net.Edges()
	require.Len(t, edges, 1)
	meta := edges[0]
	assert.True(t, meta.Touches(g.GroupNode()))
	assert.True(t, meta.Touches(c))
	assert.True(t, network.IsMetaEdge(net.Root(), meta.SUID))
	assert.False(t, network.IsMetaEdge(net.Root(), ac.SUID))

	require.Len(t, rec.events, 1)
	assert.True(t, rec.events[0].Collapsed)
	assert.Equal(t, g.GroupNode(), rec.events[0].Group.GroupNode())

	require.NoError(t, g.Collapse())
	assert.Len(t, rec.events, 1, "collapsing twice fires once")

	require.NoError(t, g.Expand())
	assert.Equal(t, []network.SUID{a, b, c}, net.Nodes())
	assert.Equal(t, map[network.SUID]bool{ab.SUID: true, ac.SUID: true, bc.SUID: true}, visibleEdgeSet(net))
	require.Len(t, rec.events, 2)
	assert.False(t, rec.events[1].Collapsed)

	require.NoError(t, g.Collapse())
	assert.Equal(t, meta.SUID, net.Edges()[0].SUID, "meta-edges are reused")
}

func TestGroup_TwoGroups(t *testing.T) {
	s := NewSession()
	net := s.CreateNetwork("n")
	a, b, c, d := net.AddNode(), net.AddNode(), net.AddNode(), net.AddNode()
	ac, _ := net.AddEdge(a, c, false)
	_, _ = net.AddEdge(b, d, false)

	g1, err := s.CreateGroup(net, []network.SUID{a, b}, a, false)
	require.NoError(t, err)
	g2, err := s.CreateGroup(net, []network.SUID{c, d}, c, false)
	require.NoError(t, err)

	require.NoError(t, g1.Collapse())
	assert.Equal(t, 2, net.EdgeCount(), "one meta-edge per visible neighbour")

	require.NoError(t, g2.Collapse())
	require.Equal(t, 1, net.EdgeCount())
	between := net.Edges()[0]
	assert.True(t, between.Touches(g1.GroupNode()))
	assert.True(t, between.Touches(g2.GroupNode()))

	require.NoError(t, g1.Expand())
	assert.ElementsMatch(t, []network.SUID{a, b, g2.GroupNode()}, net.Nodes())
	require.Len(t, net.AdjacentEdges(a), 1)
	toGroup := net.AdjacentEdges(a)[0]
	assert.True(t, toGroup.Touches(g2.GroupNode()))
	assert.True(t, network.IsMetaEdge(net.Root(), toGroup.SUID))
	assert.Contains(t, g1.ExternalEdges(), toGroup)

	require.NoError(t, g2.Expand())
	assert.ElementsMatch(t, []network.SUID{a, b, c, d}, net.Nodes())
	assert.Contains(t, net.AdjacentEdges(a), ac)
	assert.Equal(t, 2, net.EdgeCount(), "stale meta-edges stay hidden")

	require.NoError(t, g1.Collapse())
	require.NoError(t, g2.Collapse())
	assert.Equal(t, between.SUID, net.Edges()[0].SUID)
}

func TestSession_CreateGroupValidation(t *testing.T) {
	s := NewSession()
	net := s.CreateNetwork("n")
	a, b := net.AddNode(), net.AddNode()

	_, err := s.CreateGroup(net, nil, 0, false)
	assert.True(t, errors.IsInvalid(err))

	_, err = s.CreateGroup(net, []network.SUID{a, 12345}, a, false)
	assert.True(t, errors.Is(err, errors.ErrNodeNotFound))

	_, err = s.CreateGroup(net, []network.SUID{a, a}, a, false)
	assert.True(t, errors.Is(err, errors.ErrInvalidData))

	g, err := s.CreateGroup(net, []network.SUID{a, b}, a, true)
	require.NoError(t, err)
	assert.True(t, g.IsCollapsed())
	assert.Equal(t, a, g.Representative())

	_, err = s.CreateGroup(net, []network.SUID{b}, b, false)
	assert.True(t, errors.Is(err, errors.ErrGroupExists), "hidden members of a collapsed group are still members")
	assert.False(t, errors.Is(err, errors.ErrNodeNotFound))

	require.NoError(t, g.Expand())
	_, err = s.CreateGroup(net, []network.SUID{a}, a, false)
	assert.True(t, errors.Is(err, errors.ErrGroupExists))
}

func TestSession_Vertex(t *testing.T) {
	s := NewSession()
	net := s.CreateNetwork("n")
	other := s.CreateNetwork("other")
	a, b, c := net.AddNode(), net.AddNode(), net.AddNode()

	g, err := s.CreateGroup(net, []network.SUID{a, b}, a, false)
	require.NoError(t, err)

	v := s.Vertex(net, g.GroupNode())
	assert.Equal(t, network.GroupVertex, v.Kind)
	assert.Equal(t, []network.SUID{a, b}, v.Nodes())
	assert.Equal(t, 2, v.Size())

	plain := s.Vertex(net, c)
	assert.Equal(t, network.PlainVertex, plain.Kind)
	assert.Equal(t, []network.SUID{c}, plain.Nodes())
	assert.Equal(t, 1, plain.Size())

	_, ok := s.GroupFor(other, g.GroupNode())
	assert.False(t, ok)
	found, ok := s.GroupFor(net, g.GroupNode())
	require.True(t, ok)
	assert.Equal(t, g, found)
	assert.Len(t, s.Groups(net), 1)
	assert.Empty(t, s.Groups(other))
}
