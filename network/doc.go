// Package network defines the graph substrate the grouping pipeline works against.
//
// The pipeline never owns a graph implementation. It receives capability objects:
// a Network to read and mutate nodes, edges and attribute tables, a GroupManager to
// create groups and ask whether a node is a group, and optionally a ViewProvider and
// Layouter to arrange nodes after a group is expanded. Package memnet provides the
// in-memory implementation used by the service and by tests.
//
// Element handles are SUIDs, unique across every node, edge and network of a session.
// Attribute values are one of four column types: string, number (float64), boolean and
// ordered string list ([]string).
//
// A node reached through a meta-edge is classified once as a Vertex, a tagged union of
// PlainVertex and GroupVertex, so code that aggregates across groups carries the node
// role explicitly instead of re-querying it.
package network
