package network

// MetaEdgeColumn is the hidden root edge column flagging edges created by the grouping
// primitive.
const MetaEdgeColumn = "__isMetaEdge"

// VertexKind tells plain nodes and group nodes apart.
type VertexKind int

const (
	// PlainVertex is an ordinary node.
	PlainVertex VertexKind = iota
	// GroupVertex is the node standing for a group.
	GroupVertex
)

func (k VertexKind) String() string {
	if k == GroupVertex {
		return "group"
	}
	return "plain"
}

// Vertex is a node together with its role. Members is set only for GroupVertex.
type Vertex struct {
	Kind    VertexKind
	Node    SUID
	Members []SUID
}

// Nodes returns the nodes the vertex stands for: the members of a group, or the node
// itself.
func (v Vertex) Nodes() []SUID {
	if v.Kind == GroupVertex {
		return v.Members
	}
	return []SUID{v.Node}
}

// Size is the number of underlying nodes.
func (v Vertex) Size() int {
	if v.Kind == GroupVertex {
		return len(v.Members)
	}
	return 1
}

// Group is a set of member nodes that can be shown as a single group node.
type Group interface {
	GroupNode() SUID
	// Members returns the member nodes in creation order.
	Members() []SUID
	Representative() SUID
	// Network is the network the group was created in.
	Network() Network
	Root() Root
	IsCollapsed() bool
	Collapse() error
	Expand() error
	// ExternalEdges returns the root edges with exactly one endpoint among the members,
	// meta-edges included.
	ExternalEdges() []Edge
	// Contains reports whether node is a member.
	Contains(node SUID) bool
}

// GroupManager creates groups and answers role queries.
type GroupManager interface {
	CreateGroup(net Network, members []SUID, representative SUID, collapse bool) (Group, error)
	// GroupFor returns the group whose group node is node.
	GroupFor(net Network, node SUID) (Group, bool)
	// Vertex classifies node within net.
	Vertex(net Network, node SUID) Vertex
	// Groups returns the groups of net in creation order.
	Groups(net Network) []Group
	AddGroupListener(l GroupListener)
}

// GroupEvent is delivered after a group changed state.
type GroupEvent struct {
	Group     Group
	Network   Network
	Collapsed bool
}

// GroupListener receives group events one at a time.
type GroupListener interface {
	HandleGroupEvent(GroupEvent)
}

// GroupListenerFunc adapts a function to GroupListener.
type GroupListenerFunc func(GroupEvent)

// HandleGroupEvent calls f(e).
func (f GroupListenerFunc) HandleGroupEvent(e GroupEvent) { f(e) }

// IsMetaEdge reports whether the root flags edge as a meta-edge.
func IsMetaEdge(root Root, edge SUID) bool {
	v, ok := GetBool(root.HiddenEdgeTable(), edge, MetaEdgeColumn)
	return ok && v
}
