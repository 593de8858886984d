package memnet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atanasg/ProteoVisualizer/network"
)

func TestGridLayout(t *testing.T) {
	s := NewSession()
	net := s.CreateNetwork("n")
	nodes := []network.SUID{net.AddNode(), net.AddNode(), net.AddNode(), net.AddNode(), net.AddNode()}

	_, ok := s.ViewFor(net)
	assert.False(t, ok)

	view, err := s.CreateView(net)
	require.NoError(t, err)
	view.SetPosition(nodes[2], network.Point{X: 40, Y: 100})
	view.SetPosition(nodes[4], network.Point{X: 10, Y: 300})

	found, ok := s.ViewFor(net)
	require.True(t, ok)
	require.NoError(t, GridLayouter{}.GridLayout(found, nodes, 80, 80))

	expected := []network.Point{
		{X: 10, Y: 100}, {X: 90, Y: 100}, {X: 170, Y: 100},
		{X: 10, Y: 180}, {X: 90, Y: 180},
	}
	for i, node := range nodes {
		p, ok := view.Position(node)
		require.True(t, ok)
		assert.Equal(t, expected[i], p, "node %d", i)
	}

	assert.Error(t, GridLayouter{}.GridLayout(view, nodes, 0, 80))
	assert.Error(t, GridLayouter{}.GridLayout(nil, nodes, 80, 80))
	assert.NoError(t, GridLayouter{}.GridLayout(view, nil, 80, 80))
}
