package memnet

import (
	"github.com/atanasg/ProteoVisualizer/network"
)

type pair struct {
	a, b network.SUID
}

func newPair(a, b network.SUID) pair {
	if b < a {
		a, b = b, a
	}
	return pair{a: a, b: b}
}

// Root holds every node and edge of a network, visible or not.
type Root struct {
	session *Session
	suid    network.SUID

	nodes     map[network.SUID]struct{}
	edges     map[network.SUID]network.Edge
	adjacency map[network.SUID][]network.SUID
	metaEdges map[pair]network.SUID

	nodeTable   *Table
	edgeTable   *Table
	hiddenEdges *Table
}

func newRoot(s *Session) *Root {
	r := &Root{
		session:     s,
		suid:        s.nextSUID(),
		nodes:       make(map[network.SUID]struct{}),
		edges:       make(map[network.SUID]network.Edge),
		adjacency:   make(map[network.SUID][]network.SUID),
		metaEdges:   make(map[pair]network.SUID),
		nodeTable:   NewTable(),
		edgeTable:   NewTable(),
		hiddenEdges: NewTable(),
	}
	_ = r.hiddenEdges.CreateColumn(network.MetaEdgeColumn, network.BoolColumn, false)
	return r
}

// SUID implements network.Root.
func (r *Root) SUID() network.SUID { return r.suid }

// EdgeTable implements network.Root.
func (r *Root) EdgeTable() network.Table { return r.edgeTable }

// HiddenEdgeTable implements network.Root.
func (r *Root) HiddenEdgeTable() network.Table { return r.hiddenEdges }

// ConnectingEdges implements network.Root.
func (r *Root) ConnectingEdges(a, b network.SUID) []network.Edge {
	var out []network.Edge
	for _, id := range r.adjacency[a] {
		e := r.edges[id]
		if other, _ := e.Other(a); other == b {
			out = append(out, e)
		}
	}
	return out
}

func (r *Root) adjacent(node network.SUID) []network.Edge {
	ids := r.adjacency[node]
	out := make([]network.Edge, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.edges[id])
	}
	return out
}

func (r *Root) addNode() network.SUID {
	id := r.session.nextSUID()
	r.nodes[id] = struct{}{}
	return id
}

func (r *Root) addEdge(source, target network.SUID, directed bool) network.Edge {
	e := network.Edge{SUID: r.session.nextSUID(), Source: source, Target: target, Directed: directed}
	r.edges[e.SUID] = e
	r.adjacency[source] = append(r.adjacency[source], e.SUID)
	if target != source {
		r.adjacency[target] = append(r.adjacency[target], e.SUID)
	}
	return e
}

// metaEdge returns the meta-edge between a and b, creating it on first use.
func (r *Root) metaEdge(a, b network.SUID) network.Edge {
	key := newPair(a, b)
	if id, ok := r.metaEdges[key]; ok {
		return r.edges[id]
	}
	e := r.addEdge(a, b, false)
	r.metaEdges[key] = e.SUID
	_ = r.hiddenEdges.Set(e.SUID, network.MetaEdgeColumn, true)
	return e
}
