package pgroup

import (
	"fmt"

	"github.com/atanasg/ProteoVisualizer/errors"
	"github.com/atanasg/ProteoVisualizer/network"
	"github.com/atanasg/ProteoVisualizer/vocabulary"
)

// DuplicateNodes creates one copy of a resolved node for every group membership of its
// protein beyond the first. A copy carries the original's attributes and a copy of each
// edge the original had before duplication started. Each copy is linked to the original
// by an undirected identity edge.
func DuplicateNodes(net network.Network, mapping *Mapping, resolved map[string]network.SUID) (*DuplicateRegistry, []Warning, error) {
	registry := NewDuplicateRegistry()
	var warns []Warning

	edgeTable := net.EdgeTable()
	for _, col := range []string{vocabulary.Interaction, vocabulary.Name} {
		if err := network.CreateColumnIfNeeded(edgeTable, col, network.StringColumn, nil); err != nil {
			return nil, nil, errors.Wrap(err, "Duplicator", "DuplicateNodes", "edge column setup")
		}
	}

	for _, protein := range mapping.Proteins() {
		k := mapping.Memberships(protein)
		if k < 2 {
			continue
		}
		original, ok := resolved[protein]
		if !ok {
			continue
		}

		copies, w, err := duplicate(net, original, k-1)
		if err != nil {
			return nil, nil, errors.Wrap(err, "Duplicator", "DuplicateNodes", fmt.Sprintf("duplication of %s", protein))
		}
		warns = append(warns, w...)
		registry.Add(original, copies...)
	}
	return registry, warns, nil
}

func duplicate(net network.Network, original network.SUID, n int) ([]network.SUID, []Warning, error) {
	nodeTable, edgeTable := net.NodeTable(), net.EdgeTable()
	incident := net.AdjacentEdges(original)
	name, _ := network.GetString(nodeTable, original, vocabulary.Name)

	var warns []Warning
	copies := make([]network.SUID, 0, n)
	for i := 0; i < n; i++ {
		dup := net.AddNode()
		if err := copyRow(nodeTable, original, dup); err != nil {
			return nil, nil, err
		}

		for _, e := range incident {
			var source, target network.SUID
			switch {
			case e.Source == original:
				source, target = dup, e.Target
			case e.Target == original:
				source, target = e.Source, dup
			default:
				if i == 0 {
					warns = append(warns, Warning{
						Kind:    WarnEdgeMismatch,
						Subject: fmt.Sprintf("edge %d", e.SUID),
						Detail:  fmt.Sprintf("listed for node %d but connects %d and %d", original, e.Source, e.Target),
					})
				}
				continue
			}
			copied, err := net.AddEdge(source, target, e.Directed)
			if err != nil {
				return nil, nil, err
			}
			if err := copyRow(edgeTable, e.SUID, copied.SUID); err != nil {
				return nil, nil, err
			}
		}

		identity, err := net.AddEdge(original, dup, false)
		if err != nil {
			return nil, nil, err
		}
		dupName, _ := network.GetString(nodeTable, dup, vocabulary.Name)
		if err := edgeTable.Set(identity.SUID, vocabulary.Interaction, vocabulary.InteractionIdentity); err != nil {
			return nil, nil, err
		}
		if err := edgeTable.Set(identity.SUID, vocabulary.Name, name+vocabulary.IdentityInfix+dupName); err != nil {
			return nil, nil, err
		}

		copies = append(copies, dup)
	}
	return copies, warns, nil
}

// copyRow copies every cell of from into to, except the substrate's reserved columns.
func copyRow(table network.Table, from, to network.SUID) error {
	for _, col := range table.Columns() {
		if col.Name == network.SUIDColumn || col.Name == network.SelectedColumn {
			continue
		}
		v, ok := table.Get(from, col.Name)
		if !ok {
			continue
		}
		if err := table.Set(to, col.Name, v); err != nil {
			return errors.Wrap(err, "Duplicator", "copyRow", "attribute copy")
		}
	}
	return nil
}
