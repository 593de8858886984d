package pgroup

import (
	"log/slog"

	"github.com/atanasg/ProteoVisualizer/metric"
	"github.com/atanasg/ProteoVisualizer/network"
)

// WarningKind classifies a non-fatal problem found while grouping.
type WarningKind string

const (
	// WarnUnresolvedProtein: no node carries the protein's query term.
	WarnUnresolvedProtein WarningKind = "unresolved_protein"
	// WarnUnresolvedGroup: none of the group's proteins resolved.
	WarnUnresolvedGroup WarningKind = "unresolved_group"
	// WarnEdgeMismatch: an adjacent edge did not touch the node it was listed for.
	WarnEdgeMismatch WarningKind = "edge_endpoint_mismatch"
	// WarnOrphanExternalEdge: an external edge of a group touches none of its members.
	WarnOrphanExternalEdge WarningKind = "orphan_external_edge"
	// WarnSharedNode: a member node was already claimed by another group.
	WarnSharedNode WarningKind = "shared_node"
	// WarnGroupRejected: the substrate refused to create a group.
	WarnGroupRejected WarningKind = "group_rejected"
	// WarnMissingColumn: a policy column does not exist in the table.
	WarnMissingColumn WarningKind = "missing_column"
	// WarnNoContributors: no member had a value for an averaged column.
	WarnNoContributors WarningKind = "no_contributors"
)

// Warning is one reported problem.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Subject string      `json:"subject"`
	Detail  string      `json:"detail,omitempty"`
}

// GroupSummary describes one protein group after building.
type GroupSummary struct {
	Group     string         `json:"group"`
	Members   []network.SUID `json:"members"`
	GroupNode network.SUID   `json:"group_node,omitempty"`
	// Flagged is set for single-member groups, which are marked for analysis instead of
	// grouped.
	Flagged bool `json:"flagged,omitempty"`
}

// Report is the outcome of a pipeline run.
type Report struct {
	Resolved          int            `json:"resolved"`
	DuplicatesCreated int            `json:"duplicates_created"`
	Groups            []GroupSummary `json:"groups"`
	Warnings          []Warning      `json:"warnings,omitempty"`
}

// GroupCount is the number of groups actually created.
func (r *Report) GroupCount() int {
	n := 0
	for _, g := range r.Groups {
		if g.GroupNode != 0 {
			n++
		}
	}
	return n
}

// Flagged returns the nodes of single-member groups.
func (r *Report) Flagged() []network.SUID {
	var out []network.SUID
	for _, g := range r.Groups {
		if g.Flagged {
			out = append(out, g.Members...)
		}
	}
	return out
}

// WarningsOf returns the warnings of one kind.
func (r *Report) WarningsOf(kind WarningKind) []Warning {
	var out []Warning
	for _, w := range r.Warnings {
		if w.Kind == kind {
			out = append(out, w)
		}
	}
	return out
}

// warnings collects, deduplicates, logs and counts warnings for one run.
type warnings struct {
	logger  *slog.Logger
	metrics *metric.PipelineMetrics
	seen    map[Warning]struct{}
	list    []Warning
}

func newWarnings(logger *slog.Logger, metrics *metric.PipelineMetrics) *warnings {
	return &warnings{logger: logger, metrics: metrics, seen: make(map[Warning]struct{})}
}

func (w *warnings) add(list ...Warning) {
	for _, item := range list {
		if _, dup := w.seen[item]; dup {
			continue
		}
		w.seen[item] = struct{}{}
		w.list = append(w.list, item)
		w.metrics.RecordWarning(string(item.Kind))
		w.logger.Warn("grouping warning", "kind", item.Kind, "subject", item.Subject, "detail", item.Detail)
	}
}
