package pgroup

import (
	"log/slog"

	"github.com/atanasg/ProteoVisualizer/metric"
	"github.com/atanasg/ProteoVisualizer/network"
	"github.com/atanasg/ProteoVisualizer/vocabulary"
)

// DefaultGridSpacing is the horizontal and vertical node spacing used when laying out
// the members of an expanded group.
const DefaultGridSpacing = 80.0

// Aggregator keeps meta-edge attributes consistent with the edges they stand for. It is
// registered as a group listener and runs on every collapse and expand.
type Aggregator struct {
	groups    network.GroupManager
	views     network.ViewProvider
	layouter  network.Layouter
	hSpacing  float64
	vSpacing  float64
	namespace string
	logger    *slog.Logger
	metrics   *metric.PipelineMetrics
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithLayout enables the grid layout of members after an expand.
func WithLayout(views network.ViewProvider, layouter network.Layouter) AggregatorOption {
	return func(a *Aggregator) {
		a.views = views
		a.layouter = layouter
	}
}

// WithGridSpacing overrides DefaultGridSpacing.
func WithGridSpacing(h, v float64) AggregatorOption {
	return func(a *Aggregator) {
		a.hSpacing = h
		a.vSpacing = v
	}
}

// WithScoreNamespace sets the edge column namespace whose number columns are aggregated.
func WithScoreNamespace(ns string) AggregatorOption {
	return func(a *Aggregator) { a.namespace = ns }
}

// WithAggregatorLogger sets the logger.
func WithAggregatorLogger(logger *slog.Logger) AggregatorOption {
	return func(a *Aggregator) { a.logger = logger }
}

// WithAggregatorMetrics sets the metrics.
func WithAggregatorMetrics(m *metric.PipelineMetrics) AggregatorOption {
	return func(a *Aggregator) { a.metrics = m }
}

// NewAggregator creates an Aggregator. Register it with groups.AddGroupListener.
func NewAggregator(groups network.GroupManager, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		groups:    groups,
		hSpacing:  DefaultGridSpacing,
		vSpacing:  DefaultGridSpacing,
		namespace: vocabulary.NamespaceStringDB,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// HandleGroupEvent implements network.GroupListener.
func (a *Aggregator) HandleGroupEvent(e network.GroupEvent) {
	if e.Group == nil || e.Network == nil {
		return
	}
	if e.Collapsed {
		a.collapsed(e.Network, e.Group)
	} else {
		a.expanded(e.Network, e.Group)
	}
}

func (a *Aggregator) collapsed(net network.Network, g network.Group) {
	a.setStyle(net, g.GroupNode(), vocabulary.StyleCollapsed)

	root := g.Root()
	if !a.prepare(root) {
		return
	}
	scores := a.scoreColumns(root)
	members := g.Members()

	for _, e := range net.AdjacentEdges(g.GroupNode()) {
		if !network.IsMetaEdge(root, e.SUID) || aggregated(root, e.SUID) {
			continue
		}
		other, _ := e.Other(g.GroupNode())
		a.aggregate(root, e, members, a.groups.Vertex(net, other), scores, "collapse")
	}
}

func (a *Aggregator) expanded(net network.Network, g network.Group) {
	a.setStyle(net, g.GroupNode(), vocabulary.StyleExpanded)

	root := g.Root()
	if a.prepare(root) {
		scores := a.scoreColumns(root)
		for _, e := range g.ExternalEdges() {
			if !network.IsMetaEdge(root, e.SUID) || aggregated(root, e.SUID) {
				continue
			}
			var member, other network.SUID
			switch {
			case g.Contains(e.Source):
				member, other = e.Source, e.Target
			case g.Contains(e.Target):
				member, other = e.Target, e.Source
			default:
				a.metrics.RecordWarning(string(WarnOrphanExternalEdge))
				a.logger.Error("external edge touches no group member",
					"edge", e.SUID, "group_node", g.GroupNode())
				continue
			}
			a.aggregate(root, e, []network.SUID{member}, a.groups.Vertex(net, other), scores, "expand")
		}
	}

	a.layout(net, g.Members())
}

// aggregate writes existing, possible and the per-column score averages on meta-edge e
// connecting nodes to neighbor.
func (a *Aggregator) aggregate(root network.Root, e network.Edge, nodes []network.SUID, neighbor network.Vertex, scores []string, transition string) {
	table := root.EdgeTable()
	possible := len(nodes) * neighbor.Size()

	var existing []network.Edge
	for _, n := range nodes {
		for _, other := range neighbor.Nodes() {
			existing = append(existing, root.ConnectingEdges(n, other)...)
		}
	}

	for _, column := range scores {
		var sum float64
		for _, ex := range existing {
			if v, ok := network.GetNumber(table, ex.SUID, column); ok {
				sum += v
			}
		}
		if sum == 0 {
			continue
		}
		if err := table.Set(e.SUID, column, sum/float64(possible)); err != nil {
			a.logger.Warn("meta-edge score write failed", "edge", e.SUID, "column", column, "error", err)
		}
	}

	for _, cell := range []struct {
		column string
		value  any
	}{
		{vocabulary.EdgeExisting, len(existing)},
		{vocabulary.EdgePossible, possible},
		{vocabulary.EdgeAggregated, true},
	} {
		if err := table.Set(e.SUID, cell.column, cell.value); err != nil {
			a.logger.Warn("meta-edge count write failed", "edge", e.SUID, "column", cell.column, "error", err)
		}
	}

	a.metrics.RecordAggregated(transition)
	a.logger.Debug("meta-edge aggregated",
		"edge", e.SUID, "transition", transition, "neighbor", neighbor.Node,
		"neighbor_kind", neighbor.Kind.String(), "existing", len(existing), "possible", possible)
}

// prepare makes sure the bookkeeping columns exist on the root edge table.
func (a *Aggregator) prepare(root network.Root) bool {
	table := root.EdgeTable()
	for _, col := range []struct {
		name string
		typ  network.ColumnType
		def  any
	}{
		{vocabulary.EdgeExisting, network.NumberColumn, nil},
		{vocabulary.EdgePossible, network.NumberColumn, nil},
		{vocabulary.EdgeAggregated, network.BoolColumn, false},
	} {
		if err := network.CreateColumnIfNeeded(table, col.name, col.typ, col.def); err != nil {
			a.metrics.RecordWarning(string(WarnMissingColumn))
			a.logger.Warn("meta-edge column unavailable", "column", col.name, "error", err)
			return false
		}
	}
	return true
}

func (a *Aggregator) scoreColumns(root network.Root) []string {
	var out []string
	for _, col := range root.EdgeTable().ColumnsInNamespace(a.namespace) {
		if col.Type == network.NumberColumn {
			out = append(out, col.Name)
		}
	}
	return out
}

func (a *Aggregator) setStyle(net network.Network, node network.SUID, style string) {
	table := net.NodeTable()
	if !network.HasColumn(table, vocabulary.Style) {
		return
	}
	if err := table.Set(node, vocabulary.Style, style); err != nil {
		a.logger.Warn("group style write failed", "node", node, "error", err)
	}
}

func (a *Aggregator) layout(net network.Network, members []network.SUID) {
	if a.views == nil || a.layouter == nil {
		return
	}
	view, ok := a.views.ViewFor(net)
	if !ok {
		return
	}
	if err := a.layouter.GridLayout(view, members, a.hSpacing, a.vSpacing); err != nil {
		a.logger.Warn("grid layout failed", "network", net.SUID(), "error", err)
	}
}

func aggregated(root network.Root, edge network.SUID) bool {
	v, ok := network.GetBool(root.EdgeTable(), edge, vocabulary.EdgeAggregated)
	return ok && v
}
