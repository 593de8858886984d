package memnet

import (
	"fmt"

	"github.com/atanasg/ProteoVisualizer/errors"
	"github.com/atanasg/ProteoVisualizer/network"
)

type memberKey struct {
	net  network.SUID
	node network.SUID
}

// Session owns the SUID space, the networks, their groups and views.
type Session struct {
	last network.SUID

	networks  map[network.SUID]*Network
	groups    []*Group
	byNode    map[network.SUID]*Group
	byMember  map[memberKey]*Group
	listeners []network.GroupListener
	views     map[network.SUID]*View
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{
		networks: make(map[network.SUID]*Network),
		byNode:   make(map[network.SUID]*Group),
		byMember: make(map[memberKey]*Group),
		views:    make(map[network.SUID]*View),
	}
}

func (s *Session) nextSUID() network.SUID {
	s.last++
	return s.last
}

// NewNetwork creates an empty network on a fresh root.
func (s *Session) NewNetwork(name string) network.Network {
	return s.CreateNetwork(name)
}

// CreateNetwork is NewNetwork returning the concrete type.
func (s *Session) CreateNetwork(name string) *Network {
	root := newRoot(s)
	n := &Network{
		root:  root,
		suid:  s.nextSUID(),
		name:  name,
		nodes: make(map[network.SUID]struct{}),
		edges: make(map[network.SUID]struct{}),
	}
	s.networks[n.suid] = n
	return n
}

// Network returns a network of this session by SUID.
func (s *Session) Network(id network.SUID) (*Network, bool) {
	n, ok := s.networks[id]
	return n, ok
}

// DestroyNetwork forgets a network, its groups and its view.
func (s *Session) DestroyNetwork(id network.SUID) {
	n, ok := s.networks[id]
	if !ok {
		return
	}
	kept := s.groups[:0]
	for _, g := range s.groups {
		if g.net != n {
			kept = append(kept, g)
			continue
		}
		delete(s.byNode, g.node)
		for _, m := range g.members {
			delete(s.byMember, memberKey{net: id, node: m})
		}
	}
	s.groups = kept
	delete(s.views, id)
	delete(s.networks, id)
}

func (s *Session) own(net network.Network, method string) (*Network, error) {
	n, ok := net.(*Network)
	if !ok || s.networks[n.suid] != n {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: network %d does not belong to this session", errors.ErrNetworkNotFound, net.SUID()),
			"Session", method, "network lookup")
	}
	return n, nil
}

// CreateGroup implements network.GroupManager. The group node is created in the root and
// only becomes visible while the group is collapsed.
func (s *Session) CreateGroup(net network.Network, members []network.SUID, representative network.SUID, collapse bool) (network.Group, error) {
	n, err := s.own(net, "CreateGroup")
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, errors.WrapInvalid(errors.ErrInvalidData, "Session", "CreateGroup", "member check")
	}

	seen := make(map[network.SUID]struct{}, len(members))
	for _, m := range members {
		// Members of a collapsed group are hidden, so membership is checked first.
		if _, dup := s.byMember[memberKey{net: n.suid, node: m}]; dup {
			return nil, errors.WrapInvalid(
				fmt.Errorf("%w: node %d is already a member", errors.ErrGroupExists, m), "Session", "CreateGroup", "member check")
		}
		if !n.ContainsNode(m) {
			return nil, errors.WrapInvalid(
				fmt.Errorf("%w: %d", errors.ErrNodeNotFound, m), "Session", "CreateGroup", "member lookup")
		}
		if _, dup := seen[m]; dup {
			return nil, errors.WrapInvalid(
				fmt.Errorf("%w: node %d listed twice", errors.ErrInvalidData, m), "Session", "CreateGroup", "member check")
		}
		seen[m] = struct{}{}
	}

	g := &Group{
		session:        s,
		net:            n,
		node:           n.root.addNode(),
		members:        append([]network.SUID(nil), members...),
		memberSet:      seen,
		representative: representative,
	}
	s.groups = append(s.groups, g)
	s.byNode[g.node] = g
	for _, m := range members {
		s.byMember[memberKey{net: n.suid, node: m}] = g
	}

	if collapse {
		if err := g.Collapse(); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// GroupFor implements network.GroupManager.
func (s *Session) GroupFor(net network.Network, node network.SUID) (network.Group, bool) {
	g, ok := s.byNode[node]
	if !ok || g.net.suid != net.SUID() {
		return nil, false
	}
	return g, true
}

// Vertex implements network.GroupManager.
func (s *Session) Vertex(net network.Network, node network.SUID) network.Vertex {
	if g, ok := s.byNode[node]; ok && g.net.suid == net.SUID() {
		return network.Vertex{Kind: network.GroupVertex, Node: node, Members: g.Members()}
	}
	return network.Vertex{Kind: network.PlainVertex, Node: node}
}

// Groups implements network.GroupManager.
func (s *Session) Groups(net network.Network) []network.Group {
	var out []network.Group
	for _, g := range s.groups {
		if g.net.suid == net.SUID() {
			out = append(out, g)
		}
	}
	return out
}

// AddGroupListener implements network.GroupManager.
func (s *Session) AddGroupListener(l network.GroupListener) {
	s.listeners = append(s.listeners, l)
}

func (s *Session) fire(e network.GroupEvent) {
	for _, l := range s.listeners {
		l.HandleGroupEvent(e)
	}
}

// visibleEndpoint returns the node that stands for node in n: the node itself, or the
// group node of the collapsed group containing it.
func (s *Session) visibleEndpoint(n *Network, node network.SUID) (network.SUID, bool) {
	if n.ContainsNode(node) {
		return node, true
	}
	if g, ok := s.byMember[memberKey{net: n.suid, node: node}]; ok && g.collapsed && n.ContainsNode(g.node) {
		return g.node, true
	}
	return 0, false
}
