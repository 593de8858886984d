// Package pgroup turns a retrieved protein interaction network into a protein-group
// network.
//
// A Mapping relates protein identifiers to the protein groups they belong to. The
// Pipeline runs the stages in order on a network.Network:
//
//  1. ResolveQueryTerms maps each query term to the node retrieved for it.
//  2. DuplicateNodes gives every protein that belongs to k > 1 groups k distinct nodes:
//     the original plus k-1 copies with the same attributes and edges, each linked to the
//     original by an identity edge. The copies are queued per original in a
//     DuplicateRegistry.
//  3. Builder.Build walks the groups, claims one node per member from the registry
//     queues so that no node ends up in two groups, and creates a group per multi-member
//     group. A single-member group is not grouped; its node is marked for analysis.
//  4. Synthesizer.Synthesize derives the group node's attributes from its members under
//     the vocabulary policies (copy, concatenation, union, average).
//  5. Optionally every created group is collapsed.
//
// The Aggregator listens to group events. When a group collapses it aggregates every
// new meta-edge of the group node: possible = |members| x |neighbour members|, existing =
// the number of underlying edges, and each STRING score column = sum / possible. When a
// group expands it does the same for meta-edges between single members and collapsed
// neighbour groups, then lays the members out on a grid.
//
// Problems with the data never abort a run. They are returned as Warnings in the Report
// and logged.
package pgroup
