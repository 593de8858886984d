package memnet

import (
	"github.com/atanasg/ProteoVisualizer/network"
)

// Group is a group of member nodes within one network.
type Group struct {
	session        *Session
	net            *Network
	node           network.SUID
	members        []network.SUID
	memberSet      map[network.SUID]struct{}
	representative network.SUID
	collapsed      bool
}

// GroupNode implements network.Group.
func (g *Group) GroupNode() network.SUID { return g.node }

// Members implements network.Group.
func (g *Group) Members() []network.SUID {
	return append([]network.SUID(nil), g.members...)
}

// Representative implements network.Group.
func (g *Group) Representative() network.SUID { return g.representative }

// Network implements network.Group.
func (g *Group) Network() network.Network { return g.net }

// Root implements network.Group.
func (g *Group) Root() network.Root { return g.net.root }

// IsCollapsed implements network.Group.
func (g *Group) IsCollapsed() bool { return g.collapsed }

// Contains implements network.Group.
func (g *Group) Contains(node network.SUID) bool {
	_, ok := g.memberSet[node]
	return ok
}

// ExternalEdges implements network.Group.
func (g *Group) ExternalEdges() []network.Edge {
	seen := make(map[network.SUID]struct{})
	var out []network.Edge
	for _, m := range g.members {
		for _, e := range g.net.root.adjacent(m) {
			other, _ := e.Other(m)
			if g.Contains(other) {
				continue
			}
			if _, dup := seen[e.SUID]; dup {
				continue
			}
			seen[e.SUID] = struct{}{}
			out = append(out, e)
		}
	}
	return out
}

// Collapse hides the members, shows the group node and connects it through meta-edges
// to whatever stands for each external neighbour. Collapsing a collapsed group is a
// no-op and fires no event.
func (g *Group) Collapse() error {
	if g.collapsed {
		return nil
	}
	n := g.net
	external := g.ExternalEdges()

	for _, m := range g.members {
		n.excludeNode(m)
	}
	n.includeNode(g.node)
	g.collapsed = true

	for _, e := range external {
		other := e.Target
		if g.Contains(e.Target) {
			other = e.Source
		}
		target, ok := g.session.visibleEndpoint(n, other)
		if !ok || target == g.node {
			continue
		}
		n.includeEdge(n.root.metaEdge(g.node, target))
	}

	g.session.fire(network.GroupEvent{Group: g, Network: n, Collapsed: true})
	return nil
}

// Expand hides the group node and restores the members with their edges. Edges to a
// member of another collapsed group are routed through a meta-edge to that group node.
func (g *Group) Expand() error {
	if !g.collapsed {
		return nil
	}
	n := g.net

	n.excludeNode(g.node)
	for _, m := range g.members {
		n.includeNode(m)
	}
	g.collapsed = false

	for _, m := range g.members {
		for _, e := range n.root.adjacent(m) {
			other, _ := e.Other(m)
			if g.Contains(other) {
				n.includeEdge(e)
				continue
			}
			target, ok := g.session.visibleEndpoint(n, other)
			if !ok {
				continue
			}
			if target == other {
				n.includeEdge(e)
				continue
			}
			if network.IsMetaEdge(n.root, e.SUID) {
				continue
			}
			n.includeEdge(n.root.metaEdge(m, target))
		}
	}

	g.session.fire(network.GroupEvent{Group: g, Network: n, Collapsed: false})
	return nil
}
