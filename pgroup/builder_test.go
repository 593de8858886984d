package pgroup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atanasg/ProteoVisualizer/network"
	"github.com/atanasg/ProteoVisualizer/testutil"
	"github.com/atanasg/ProteoVisualizer/vocabulary"
)

func ofKind(warns []Warning, kind WarningKind) []Warning {
	var out []Warning
	for _, w := range warns {
		if w.Kind == kind {
			out = append(out, w)
		}
	}
	return out
}

func buildFixture(t *testing.T) (*testutil.ProteinNetwork, *Mapping) {
	t.Helper()
	pn := testutil.NewProteinNetwork(t, "P1", "P2", "P3", "P4", "P5", "P6")
	m := NewMapping()
	m.Add("A", "P1", "P2")
	m.Add("B", "P1", "P3")
	m.Add("C", "P4")
	m.Add("D", "PX")
	m.Add("E", "PX", "P5", "P6")
	return pn, m
}

func TestBuilder_Build(t *testing.T) {
	pn, m := buildFixture(t)
	resolved := ResolveQueryTerms(pn.Net, vocabulary.QueryTerm)
	registry, _, err := DuplicateNodes(pn.Net, m, resolved)
	require.NoError(t, err)
	q, _ := registry.Queue(pn.Node(t, "P1"))
	p1Copy := q.Nodes()[1]

	summaries, warns, err := NewBuilder(pn.Session, nil).Build(pn.Net, m, resolved, registry)
	require.NoError(t, err)

	require.Len(t, summaries, 4)
	assert.Equal(t, "A", summaries[0].Group)
	assert.Equal(t, []network.SUID{pn.Node(t, "P1"), pn.Node(t, "P2")}, summaries[0].Members)
	assert.Equal(t, "B", summaries[1].Group)
	assert.Equal(t, []network.SUID{p1Copy, pn.Node(t, "P3")}, summaries[1].Members)

	assert.Equal(t, "C", summaries[2].Group)
	assert.True(t, summaries[2].Flagged)
	assert.Zero(t, summaries[2].GroupNode)
	flag, ok := network.GetBool(pn.Net.NodeTable(), pn.Node(t, "P4"), vocabulary.UseForAnalysis)
	require.True(t, ok)
	assert.True(t, flag)

	assert.Equal(t, "E", summaries[3].Group)
	g, ok := pn.Session.GroupFor(pn.Net, summaries[3].GroupNode)
	require.True(t, ok)
	assert.Equal(t, pn.Node(t, "P5"), g.Representative(), "first resolved member represents the group")
	name, _ := network.GetString(pn.Net.NodeTable(), g.GroupNode(), vocabulary.Name)
	assert.Equal(t, "P5", name)
	assert.False(t, g.IsCollapsed())

	assert.Equal(t, []Warning{{Kind: WarnUnresolvedGroup, Subject: "D"}}, ofKind(warns, WarnUnresolvedGroup))
	assert.Empty(t, ofKind(warns, WarnSharedNode))

	owner := make(map[network.SUID]string)
	for _, s := range summaries {
		for _, node := range s.Members {
			prev, taken := owner[node]
			assert.False(t, taken, "node %d in %s and %s", node, prev, s.Group)
			owner[node] = s.Group
		}
	}
}

func TestBuilder_SharedNodeIsNeverReused(t *testing.T) {
	pn := testutil.NewProteinNetwork(t, "P1", "P2", "P3")
	m := NewMapping()
	m.Add("A", "P1", "P2")
	m.Add("B", "P1", "P3")
	resolved := ResolveQueryTerms(pn.Net, vocabulary.QueryTerm)

	// No duplicates were made, so P1 can only go to A.
	summaries, warns, err := NewBuilder(pn.Session, nil).Build(pn.Net, m, resolved, nil)
	require.NoError(t, err)

	require.Len(t, summaries, 2)
	assert.Equal(t, []network.SUID{pn.Node(t, "P3")}, summaries[1].Members)
	assert.True(t, summaries[1].Flagged)
	shared := ofKind(warns, WarnSharedNode)
	require.Len(t, shared, 1)
	assert.Equal(t, "P1", shared[0].Subject)
}

func TestBuilder_ExhaustedQueue(t *testing.T) {
	pn := testutil.NewProteinNetwork(t, "P1", "P2", "P3", "P4")
	m := NewMapping()
	m.Add("A", "P1", "P2")
	m.Add("B", "P1", "P3")
	m.Add("C", "P1", "P4")
	resolved := ResolveQueryTerms(pn.Net, vocabulary.QueryTerm)

	registry := NewDuplicateRegistry()
	extra := pn.Net.AddNode()
	registry.Add(pn.Node(t, "P1"), extra)

	summaries, warns, err := NewBuilder(pn.Session, nil).Build(pn.Net, m, resolved, registry)
	require.NoError(t, err)
	require.Len(t, summaries, 3)
	assert.Equal(t, []network.SUID{pn.Node(t, "P4")}, summaries[2].Members)
	assert.Len(t, ofKind(warns, WarnSharedNode), 1)
}
