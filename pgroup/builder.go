package pgroup

import (
	"fmt"

	"github.com/atanasg/ProteoVisualizer/errors"
	"github.com/atanasg/ProteoVisualizer/network"
	"github.com/atanasg/ProteoVisualizer/vocabulary"
)

// Builder partitions resolved nodes into groups and creates them on the substrate.
type Builder struct {
	groups      network.GroupManager
	synthesizer *Synthesizer
}

// NewBuilder creates a Builder. A nil synthesizer uses the default policies.
func NewBuilder(groups network.GroupManager, synthesizer *Synthesizer) *Builder {
	if synthesizer == nil {
		synthesizer = NewSynthesizer(nil)
	}
	return &Builder{groups: groups, synthesizer: synthesizer}
}

// Build visits the groups of mapping in order. Every member claims one node: the next
// node of its protein's duplicate queue when the protein was duplicated, the resolved
// node otherwise. Groups are created expanded.
func (b *Builder) Build(net network.Network, mapping *Mapping, resolved map[string]network.SUID, registry *DuplicateRegistry) ([]GroupSummary, []Warning, error) {
	var (
		summaries []GroupSummary
		warns     []Warning
		claimed   = make(map[network.SUID]string)
	)
	if registry == nil {
		registry = NewDuplicateRegistry()
	}

	nodeTable := net.NodeTable()
	if err := network.CreateColumnIfNeeded(nodeTable, vocabulary.UseForAnalysis, network.BoolColumn, false); err != nil {
		return nil, nil, errors.Wrap(err, "Builder", "Build", "analysis column setup")
	}

	for _, group := range mapping.Groups() {
		var members []network.SUID
		for _, protein := range mapping.ProteinsOf(group) {
			node, ok := resolved[protein]
			if !ok {
				continue
			}
			if q, dup := registry.Queue(node); dup {
				next, ok := q.Claim()
				if !ok {
					warns = append(warns, Warning{
						Kind:    WarnSharedNode,
						Subject: protein,
						Detail:  fmt.Sprintf("no copy left for group %s", group),
					})
					continue
				}
				node = next
			}
			if owner, taken := claimed[node]; taken {
				warns = append(warns, Warning{
					Kind:    WarnSharedNode,
					Subject: protein,
					Detail:  fmt.Sprintf("node %d already belongs to group %s", node, owner),
				})
				continue
			}
			claimed[node] = group
			members = append(members, node)
		}

		switch len(members) {
		case 0:
			warns = append(warns, Warning{Kind: WarnUnresolvedGroup, Subject: group})
		case 1:
			if err := nodeTable.Set(members[0], vocabulary.UseForAnalysis, true); err != nil {
				return nil, nil, errors.Wrap(err, "Builder", "Build", "analysis flag write")
			}
			summaries = append(summaries, GroupSummary{Group: group, Members: members, Flagged: true})
		default:
			representative := members[0]
			g, err := b.groups.CreateGroup(net, members, representative, false)
			if err != nil {
				warns = append(warns, Warning{Kind: WarnGroupRejected, Subject: group, Detail: err.Error()})
				continue
			}
			w, err := b.synthesizer.Synthesize(nodeTable, group, g.GroupNode(), representative, members)
			if err != nil {
				return nil, nil, err
			}
			warns = append(warns, w...)
			summaries = append(summaries, GroupSummary{Group: group, Members: members, GroupNode: g.GroupNode()})
		}
	}
	return summaries, warns, nil
}
