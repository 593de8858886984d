package retrieval

import (
	"fmt"

	"github.com/atanasg/ProteoVisualizer/errors"
	"github.com/atanasg/ProteoVisualizer/network"
)

// ColumnSpec declares a table column. Type is the textual form of network.ColumnType.
type ColumnSpec struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Default any    `json:"default,omitempty"`
}

// Node is one node of a payload.
type Node struct {
	ID         string         `json:"id"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Edge connects two payload nodes by identifier.
type Edge struct {
	Source     string         `json:"source"`
	Target     string         `json:"target"`
	Directed   bool           `json:"directed,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Payload is the wire form of a retrieved network.
type Payload struct {
	Name        string       `json:"name"`
	NodeColumns []ColumnSpec `json:"node_columns,omitempty"`
	EdgeColumns []ColumnSpec `json:"edge_columns,omitempty"`
	Nodes       []Node       `json:"nodes"`
	Edges       []Edge       `json:"edges,omitempty"`
}

// Empty reports whether the payload holds no node.
func (p *Payload) Empty() bool {
	return p == nil || len(p.Nodes) == 0
}

// Build creates the network described by p through factory. Attributes of undeclared
// columns are rejected, as are edges to unknown nodes.
func (p *Payload) Build(factory network.Factory) (network.Network, error) {
	if p.Empty() {
		return nil, errors.WrapFatal(errors.ErrNoNetwork, "Payload", "Build", "node check")
	}

	net := factory.NewNetwork(p.Name)
	if err := createColumns(net.NodeTable(), p.NodeColumns); err != nil {
		return nil, errors.Wrap(err, "Payload", "Build", "node columns")
	}
	if err := createColumns(net.EdgeTable(), p.EdgeColumns); err != nil {
		return nil, errors.Wrap(err, "Payload", "Build", "edge columns")
	}

	ids := make(map[string]network.SUID, len(p.Nodes))
	for _, n := range p.Nodes {
		if _, dup := ids[n.ID]; dup {
			return nil, errors.WrapInvalid(fmt.Errorf("%w: duplicate node %q", errors.ErrInvalidData, n.ID),
				"Payload", "Build", "node decode")
		}
		suid := net.AddNode()
		ids[n.ID] = suid
		if err := setRow(net.NodeTable(), suid, n.Attributes); err != nil {
			return nil, errors.Wrap(err, "Payload", "Build", "node "+n.ID)
		}
	}

	for i, e := range p.Edges {
		source, ok := ids[e.Source]
		if !ok {
			return nil, errors.WrapInvalid(fmt.Errorf("%w: edge %d source %q", errors.ErrNodeNotFound, i, e.Source),
				"Payload", "Build", "edge decode")
		}
		target, ok := ids[e.Target]
		if !ok {
			return nil, errors.WrapInvalid(fmt.Errorf("%w: edge %d target %q", errors.ErrNodeNotFound, i, e.Target),
				"Payload", "Build", "edge decode")
		}
		edge, err := net.AddEdge(source, target, e.Directed)
		if err != nil {
			return nil, errors.Wrap(err, "Payload", "Build", "edge decode")
		}
		if err := setRow(net.EdgeTable(), edge.SUID, e.Attributes); err != nil {
			return nil, errors.Wrap(err, "Payload", "Build", fmt.Sprintf("edge %d", i))
		}
	}
	return net, nil
}

func createColumns(table network.Table, specs []ColumnSpec) error {
	for _, spec := range specs {
		typ, err := network.ParseColumnType(spec.Type)
		if err != nil {
			return errors.WrapInvalid(err, "Payload", "createColumns", "column "+spec.Name)
		}
		if err := network.CreateColumnIfNeeded(table, spec.Name, typ, spec.Default); err != nil {
			return err
		}
	}
	return nil
}

func setRow(table network.Table, row network.SUID, attrs map[string]any) error {
	for column, v := range attrs {
		if err := table.Set(row, column, v); err != nil {
			return err
		}
	}
	return nil
}
