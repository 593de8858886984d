package pgroup

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atanasg/ProteoVisualizer/network"
	"github.com/atanasg/ProteoVisualizer/testutil"
	"github.com/atanasg/ProteoVisualizer/vocabulary"
)

// incidentEdge is an edge seen from one node: the other endpoint, whether the node is
// the source, and the attribute row.
type incidentEdge struct {
	Other    network.SUID
	Outgoing bool
	Directed bool
	Attrs    map[string]any
}

func incident(net network.Network, node network.SUID) []incidentEdge {
	var out []incidentEdge
	for _, e := range net.AdjacentEdges(node) {
		if v, _ := network.GetString(net.EdgeTable(), e.SUID, vocabulary.Interaction); v == vocabulary.InteractionIdentity {
			continue
		}
		other, _ := e.Other(node)
		out = append(out, incidentEdge{
			Other:    other,
			Outgoing: e.Source == node,
			Directed: e.Directed,
			Attrs:    testutil.Row(net.EdgeTable(), e.SUID),
		})
	}
	return out
}

func TestDuplicateNodes(t *testing.T) {
	pn := testutil.NewProteinNetwork(t, "P1", "P2", "P3")
	pn.Set(t, "P1", vocabulary.Description, "kinase")
	pn.Set(t, "P1", vocabulary.Structures, []string{"1ABC"})
	pn.Set(t, "P1", network.SelectedColumn, true)
	pn.Connect(t, "P1", "P2", 0.9)
	directed, err := pn.Net.AddEdge(pn.Node(t, "P3"), pn.Node(t, "P1"), true)
	require.NoError(t, err)
	require.NoError(t, pn.Net.EdgeTable().Set(directed.SUID, vocabulary.Score, 0.4))

	m := NewMapping()
	m.Add("A", "P1", "P2")
	m.Add("B", "P1")
	m.Add("C", "P1", "P3")

	original := pn.Node(t, "P1")
	before := incident(pn.Net, original)
	resolved := ResolveQueryTerms(pn.Net, vocabulary.QueryTerm)

	registry, warns, err := DuplicateNodes(pn.Net, m, resolved)
	require.NoError(t, err)
	assert.Empty(t, warns)

	assert.Equal(t, 1, registry.Len(), "only multi-group proteins are duplicated")
	_, ok := registry.Queue(pn.Node(t, "P2"))
	assert.False(t, ok)

	q, ok := registry.Queue(original)
	require.True(t, ok)
	nodes := q.Nodes()
	require.Len(t, nodes, 3)
	assert.Equal(t, original, nodes[0])
	assert.Equal(t, 2, registry.Copies())
	assert.Equal(t, 5, pn.Net.NodeCount(), "three proteins plus two copies")

	originalRow := testutil.Row(pn.Net.NodeTable(), original)
	for _, dup := range nodes[1:] {
		dupRow := testutil.Row(pn.Net.NodeTable(), dup)
		assert.Equal(t, false, dupRow[network.SelectedColumn], "selection is not copied")
		delete(dupRow, network.SelectedColumn)
		want := make(map[string]any)
		for k, v := range originalRow {
			if k != network.SelectedColumn {
				want[k] = v
			}
		}
		if diff := cmp.Diff(want, dupRow); diff != "" {
			t.Errorf("copy row mismatch (-want +got):\n%s", diff)
		}

		after := incident(pn.Net, dup)
		if diff := cmp.Diff(before, after); diff != "" {
			t.Errorf("copy edges mismatch (-want +got):\n%s", diff)
		}

		links := pn.Net.ConnectingEdges(original, dup)
		require.Len(t, links, 1)
		assert.False(t, links[0].Directed)
		assert.Equal(t, original, links[0].Source)
		name, _ := network.GetString(pn.Net.EdgeTable(), links[0].SUID, vocabulary.Name)
		assert.Equal(t, "P1 (identity) P1", name)
	}
}

// leakyNetwork lists a foreign edge among the edges of one node.
type leakyNetwork struct {
	network.Network
	node  network.SUID
	extra network.Edge
}

func (l *leakyNetwork) AdjacentEdges(node network.SUID) []network.Edge {
	edges := l.Network.AdjacentEdges(node)
	if node == l.node {
		edges = append(edges, l.extra)
	}
	return edges
}

func TestDuplicateNodes_EdgeMismatch(t *testing.T) {
	pn := testutil.NewProteinNetwork(t, "P1", "P2", "P3")
	pn.Connect(t, "P1", "P2", 0.9)
	foreign := pn.Connect(t, "P2", "P3", 0.5)

	m := NewMapping()
	m.Add("A", "P1")
	m.Add("B", "P1")
	m.Add("C", "P1")

	net := &leakyNetwork{Network: pn.Net, node: pn.Node(t, "P1"), extra: foreign}
	registry, warns, err := DuplicateNodes(net, m, ResolveQueryTerms(pn.Net, vocabulary.QueryTerm))
	require.NoError(t, err)

	require.Len(t, warns, 1, "reported once, not once per copy")
	assert.Equal(t, WarnEdgeMismatch, warns[0].Kind)
	assert.Equal(t, 2, registry.Copies())
	assert.Len(t, pn.Net.ConnectingEdges(pn.Node(t, "P2"), pn.Node(t, "P3")), 1, "foreign edge is not copied")
}

func TestDuplicateNodes_SelfLoop(t *testing.T) {
	pn := testutil.NewProteinNetwork(t, "P1")
	p1 := pn.Node(t, "P1")
	_, err := pn.Net.AddEdge(p1, p1, false)
	require.NoError(t, err)

	m := NewMapping()
	m.Add("A", "P1")
	m.Add("B", "P1")

	registry, _, err := DuplicateNodes(pn.Net, m, ResolveQueryTerms(pn.Net, vocabulary.QueryTerm))
	require.NoError(t, err)
	q, _ := registry.Queue(p1)
	dup := q.Nodes()[1]
	assert.Empty(t, pn.Net.ConnectingEdges(dup, dup))
	assert.Len(t, pn.Net.ConnectingEdges(p1, p1), 1, "the original keeps its loop")

	var fromCopy, fromOriginal int
	for _, e := range pn.Net.ConnectingEdges(dup, p1) {
		switch {
		case e.Source == dup && e.Target == p1:
			fromCopy++
		case e.Source == p1 && e.Target == dup:
			fromOriginal++
		}
	}
	assert.Equal(t, 1, fromCopy, "the copy takes the source side of a loop")
	assert.Equal(t, 1, fromOriginal, "identity edge")
}
