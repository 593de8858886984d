package network

// SUID is a session-unique identifier of a node, edge or network.
type SUID int64

// Edge is an edge handle together with its endpoints.
type Edge struct {
	SUID     SUID
	Source   SUID
	Target   SUID
	Directed bool
}

// Other returns the endpoint opposite to node, and false when node is not an endpoint.
func (e Edge) Other(node SUID) (SUID, bool) {
	switch node {
	case e.Source:
		return e.Target, true
	case e.Target:
		return e.Source, true
	default:
		return 0, false
	}
}

// Touches reports whether node is one of the endpoints.
func (e Edge) Touches(node SUID) bool {
	return e.Source == node || e.Target == node
}

// Network is a mutable graph with per-element attribute tables.
type Network interface {
	SUID() SUID
	Name() string
	SetName(name string)

	// Nodes returns the nodes currently in the network in creation order.
	Nodes() []SUID
	// Edges returns the edges currently in the network in creation order.
	Edges() []Edge
	NodeCount() int
	EdgeCount() int
	ContainsNode(node SUID) bool
	Edge(edge SUID) (Edge, bool)

	// AddNode creates a node with an empty attribute row.
	AddNode() SUID
	// AddEdge creates an edge between two nodes of this network.
	AddEdge(source, target SUID, directed bool) (Edge, error)

	// AdjacentEdges returns the edges incident to node in either direction.
	AdjacentEdges(node SUID) []Edge
	// ConnectingEdges returns the edges between a and b in either direction.
	ConnectingEdges(a, b SUID) []Edge

	NodeTable() Table
	EdgeTable() Table

	// Root returns the root network holding every element, including the ones hidden
	// by collapsed groups.
	Root() Root
}

// Root is the full, never-collapsed edge set behind one or more networks.
type Root interface {
	SUID() SUID
	ConnectingEdges(a, b SUID) []Edge
	EdgeTable() Table
	// HiddenEdgeTable holds bookkeeping columns such as the meta-edge flag.
	HiddenEdgeTable() Table
}

// Factory creates empty networks on a substrate.
type Factory interface {
	NewNetwork(name string) Network
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(name string) Network

// NewNetwork calls f(name).
func (f FactoryFunc) NewNetwork(name string) Network { return f(name) }
