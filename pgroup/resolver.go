package pgroup

import (
	"github.com/atanasg/ProteoVisualizer/network"
)

// ResolveQueryTerms maps every query term found in column to its node. Nodes without a
// query term are skipped; an empty term is still a term. When two nodes carry the
// same term the later node wins.
func ResolveQueryTerms(net network.Network, column string) map[string]network.SUID {
	resolved := make(map[string]network.SUID)
	table := net.NodeTable()
	if !network.HasColumn(table, column) {
		return resolved
	}
	for _, node := range net.Nodes() {
		term, ok := network.GetString(table, node, column)
		if !ok {
			continue
		}
		resolved[term] = node
	}
	return resolved
}
