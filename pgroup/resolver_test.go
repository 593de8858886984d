package pgroup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atanasg/ProteoVisualizer/network"
	"github.com/atanasg/ProteoVisualizer/network/memnet"
	"github.com/atanasg/ProteoVisualizer/testutil"
	"github.com/atanasg/ProteoVisualizer/vocabulary"
)

func TestResolveQueryTerms(t *testing.T) {
	pn := testutil.NewProteinNetwork(t, "P1", "P2")
	untagged := pn.Net.AddNode()
	duplicate := pn.AddProtein(t, "P1")
	blank := pn.AddProtein(t, "")

	resolved := ResolveQueryTerms(pn.Net, vocabulary.QueryTerm)

	assert.Equal(t, map[string]network.SUID{
		"P1": duplicate,
		"P2": pn.Node(t, "P2"),
		"":   blank,
	}, resolved, "later node wins for a repeated query term")
	_ = untagged
}

func TestResolveQueryTerms_MissingColumn(t *testing.T) {
	net := memnet.NewSession().NewNetwork("empty")
	net.AddNode()

	assert.Empty(t, ResolveQueryTerms(net, vocabulary.QueryTerm))
}

func TestDuplicateQueue(t *testing.T) {
	r := NewDuplicateRegistry()
	r.Add(1, 10, 11)

	q, ok := r.Queue(1)
	require.True(t, ok)
	assert.Equal(t, 3, q.Remaining())
	assert.Equal(t, []network.SUID{1, 10, 11}, q.Nodes())

	for _, want := range []network.SUID{1, 10, 11} {
		got, ok := q.Claim()
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
	_, ok = q.Claim()
	assert.False(t, ok)
	assert.Equal(t, 0, q.Remaining())

	_, ok = r.Queue(2)
	assert.False(t, ok)
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, 2, r.Copies())
}
