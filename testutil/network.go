package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/atanasg/ProteoVisualizer/network"
	"github.com/atanasg/ProteoVisualizer/network/memnet"
	"github.com/atanasg/ProteoVisualizer/vocabulary"
)

// Extra columns present on fixture networks besides the vocabulary ones.
const (
	TissueLiver       = "tissue::liver"
	CompartmentNuclei = "compartment::nucleus"
	ScoreExperiments  = "stringdb::experiments"
)

// ProteinNetwork is a network of protein nodes keyed by query term.
type ProteinNetwork struct {
	Session *memnet.Session
	Net     *memnet.Network
	Nodes   map[string]network.SUID
}

// NodeColumns are the node columns of a fixture network.
var NodeColumns = []network.Column{
	{Name: vocabulary.QueryTerm, Type: network.StringColumn},
	{Name: vocabulary.Name, Type: network.StringColumn},
	{Name: vocabulary.DisplayName, Type: network.StringColumn},
	{Name: vocabulary.CanonicalName, Type: network.StringColumn},
	{Name: vocabulary.Species, Type: network.StringColumn},
	{Name: vocabulary.Description, Type: network.StringColumn},
	{Name: vocabulary.Structures, Type: network.StringListColumn},
	{Name: vocabulary.InteractorScore, Type: network.NumberColumn},
	{Name: vocabulary.Style, Type: network.StringColumn},
	{Name: TissueLiver, Type: network.NumberColumn},
	{Name: CompartmentNuclei, Type: network.NumberColumn},
	{Name: network.SelectedColumn, Type: network.BoolColumn, Default: false},
}

// EdgeColumns are the edge columns of a fixture network.
var EdgeColumns = []network.Column{
	{Name: vocabulary.Name, Type: network.StringColumn},
	{Name: vocabulary.Interaction, Type: network.StringColumn},
	{Name: vocabulary.Score, Type: network.NumberColumn},
	{Name: ScoreExperiments, Type: network.NumberColumn},
}

// NewProteinNetwork creates a session with one network holding a node per protein.
// Each node gets its query term, name and display name set to the protein identifier.
func NewProteinNetwork(t testing.TB, proteins ...string) *ProteinNetwork {
	t.Helper()
	s := memnet.NewSession()
	pn := &ProteinNetwork{
		Session: s,
		Net:     s.CreateNetwork("STRING network"),
		Nodes:   make(map[string]network.SUID),
	}
	for _, c := range NodeColumns {
		require.NoError(t, pn.Net.NodeTable().CreateColumn(c.Name, c.Type, c.Default))
	}
	for _, c := range EdgeColumns {
		require.NoError(t, pn.Net.EdgeTable().CreateColumn(c.Name, c.Type, c.Default))
	}
	for _, p := range proteins {
		pn.AddProtein(t, p)
	}
	return pn
}

// AddProtein adds a protein node.
func (pn *ProteinNetwork) AddProtein(t testing.TB, protein string) network.SUID {
	t.Helper()
	node := pn.Net.AddNode()
	table := pn.Net.NodeTable()
	require.NoError(t, table.Set(node, vocabulary.QueryTerm, protein))
	require.NoError(t, table.Set(node, vocabulary.Name, protein))
	require.NoError(t, table.Set(node, vocabulary.DisplayName, protein))
	pn.Nodes[protein] = node
	return node
}

// Node returns the node of a protein.
func (pn *ProteinNetwork) Node(t testing.TB, protein string) network.SUID {
	t.Helper()
	node, ok := pn.Nodes[protein]
	require.True(t, ok, "unknown protein %s", protein)
	return node
}

// Connect adds an undirected edge with a combined score.
func (pn *ProteinNetwork) Connect(t testing.TB, a, b string, score float64) network.Edge {
	t.Helper()
	e, err := pn.Net.AddEdge(pn.Node(t, a), pn.Node(t, b), false)
	require.NoError(t, err)
	table := pn.Net.EdgeTable()
	require.NoError(t, table.Set(e.SUID, vocabulary.Score, score))
	require.NoError(t, table.Set(e.SUID, vocabulary.Interaction, "pp"))
	require.NoError(t, table.Set(e.SUID, vocabulary.Name, a+" (pp) "+b))
	return e
}

// Set writes a node attribute of a protein.
func (pn *ProteinNetwork) Set(t testing.TB, protein, column string, v any) {
	t.Helper()
	require.NoError(t, pn.Net.NodeTable().Set(pn.Node(t, protein), column, v))
}

// Row returns every set cell of a row, keyed by column.
func Row(table network.Table, row network.SUID) map[string]any {
	out := make(map[string]any)
	for _, c := range table.Columns() {
		if v, ok := table.Get(row, c.Name); ok {
			out[c.Name] = v
		}
	}
	return out
}
