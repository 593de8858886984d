package memnet

import (
	"fmt"
	"sort"

	"github.com/atanasg/ProteoVisualizer/errors"
	"github.com/atanasg/ProteoVisualizer/network"
)

// Network is the visible part of a root.
type Network struct {
	root  *Root
	suid  network.SUID
	name  string
	nodes map[network.SUID]struct{}
	edges map[network.SUID]struct{}
}

// SUID implements network.Network.
func (n *Network) SUID() network.SUID { return n.suid }

// Name implements network.Network.
func (n *Network) Name() string { return n.name }

// SetName implements network.Network.
func (n *Network) SetName(name string) { n.name = name }

// Nodes implements network.Network. Nodes are returned in creation order.
func (n *Network) Nodes() []network.SUID {
	out := make([]network.SUID, 0, len(n.nodes))
	for id := range n.nodes {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Edges implements network.Network. Edges are returned in creation order.
func (n *Network) Edges() []network.Edge {
	out := make([]network.Edge, 0, len(n.edges))
	for id := range n.edges {
		out = append(out, n.root.edges[id])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SUID < out[j].SUID })
	return out
}

// NodeCount implements network.Network.
func (n *Network) NodeCount() int { return len(n.nodes) }

// EdgeCount implements network.Network.
func (n *Network) EdgeCount() int { return len(n.edges) }

// ContainsNode implements network.Network.
func (n *Network) ContainsNode(node network.SUID) bool {
	_, ok := n.nodes[node]
	return ok
}

// Edge implements network.Network.
func (n *Network) Edge(edge network.SUID) (network.Edge, bool) {
	if _, ok := n.edges[edge]; !ok {
		return network.Edge{}, false
	}
	return n.root.edges[edge], true
}

// AddNode implements network.Network.
func (n *Network) AddNode() network.SUID {
	id := n.root.addNode()
	n.nodes[id] = struct{}{}
	return id
}

// AddEdge implements network.Network.
func (n *Network) AddEdge(source, target network.SUID, directed bool) (network.Edge, error) {
	for _, node := range []network.SUID{source, target} {
		if !n.ContainsNode(node) {
			return network.Edge{}, errors.WrapInvalid(
				fmt.Errorf("%w: %d", errors.ErrNodeNotFound, node), "Network", "AddEdge", "endpoint lookup")
		}
	}
	e := n.root.addEdge(source, target, directed)
	n.edges[e.SUID] = struct{}{}
	return e, nil
}

// AdjacentEdges implements network.Network.
func (n *Network) AdjacentEdges(node network.SUID) []network.Edge {
	var out []network.Edge
	for _, e := range n.root.adjacent(node) {
		if _, ok := n.edges[e.SUID]; ok {
			out = append(out, e)
		}
	}
	return out
}

// ConnectingEdges implements network.Network.
func (n *Network) ConnectingEdges(a, b network.SUID) []network.Edge {
	var out []network.Edge
	for _, e := range n.root.ConnectingEdges(a, b) {
		if _, ok := n.edges[e.SUID]; ok {
			out = append(out, e)
		}
	}
	return out
}

// NodeTable implements network.Network. The table is shared with the root.
func (n *Network) NodeTable() network.Table { return n.root.nodeTable }

// EdgeTable implements network.Network. The table is shared with the root.
func (n *Network) EdgeTable() network.Table { return n.root.edgeTable }

// Root implements network.Network.
func (n *Network) Root() network.Root { return n.root }

func (n *Network) includeNode(node network.SUID) {
	n.nodes[node] = struct{}{}
}

// includeEdge shows an existing root edge when both endpoints are visible.
func (n *Network) includeEdge(e network.Edge) bool {
	if !n.ContainsNode(e.Source) || !n.ContainsNode(e.Target) {
		return false
	}
	n.edges[e.SUID] = struct{}{}
	return true
}

// excludeNode hides node and every visible edge touching it.
func (n *Network) excludeNode(node network.SUID) {
	delete(n.nodes, node)
	for _, id := range n.root.adjacency[node] {
		delete(n.edges, id)
	}
}
