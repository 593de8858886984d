// Package memnet is an in-memory implementation of the network substrate.
//
// A Session hands out SUIDs and owns every network, group and view created through it.
// Each network sits on its own root that keeps all nodes and edges ever created, while
// the network itself holds the visible subset. Collapsing a group hides its members,
// shows the group node and routes every external edge through a meta-edge created in
// the root (and flagged in the root's hidden edge table). Meta-edges are reused across
// collapse and expand cycles, so anything written on them survives.
//
// Group events are delivered synchronously to listeners in registration order, after the
// state change is complete. A Session is not safe for concurrent use.
package memnet
