package pgroup

import (
	"log/slog"
	"time"

	"github.com/atanasg/ProteoVisualizer/errors"
	"github.com/atanasg/ProteoVisualizer/metric"
	"github.com/atanasg/ProteoVisualizer/network"
	"github.com/atanasg/ProteoVisualizer/vocabulary"
)

// Pipeline runs resolution, duplication, grouping and synthesis on a network.
type Pipeline struct {
	groups          network.GroupManager
	policies        *vocabulary.Registry
	separator       string
	queryTermColumn string
	keepCollapsed   bool
	logger          *slog.Logger
	metrics         *metric.PipelineMetrics
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithKeepCollapsed collapses every created group at the end of a run.
func WithKeepCollapsed(collapse bool) Option {
	return func(p *Pipeline) { p.keepCollapsed = collapse }
}

// WithQueryTerm sets the node column holding query terms.
func WithQueryTerm(column string) Option {
	return func(p *Pipeline) { p.queryTermColumn = column }
}

// WithPolicies replaces the default attribute policies.
func WithPolicies(policies *vocabulary.Registry) Option {
	return func(p *Pipeline) { p.policies = policies }
}

// WithConcatSeparator sets the separator of concatenated attributes.
func WithConcatSeparator(sep string) Option {
	return func(p *Pipeline) { p.separator = sep }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// WithMetrics sets the metrics.
func WithMetrics(m *metric.PipelineMetrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// New creates a Pipeline creating groups through groups. Groups are collapsed after a
// run unless WithKeepCollapsed(false) is given.
func New(groups network.GroupManager, opts ...Option) *Pipeline {
	p := &Pipeline{
		groups:          groups,
		separator:       vocabulary.ConcatSeparator,
		queryTermColumn: vocabulary.QueryTerm,
		keepCollapsed:   true,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.policies == nil {
		p.policies = vocabulary.DefaultRegistry()
	}
	return p
}

// Run groups net according to mapping. Data problems end up in the report; an error is
// returned only when the substrate fails.
func (p *Pipeline) Run(net network.Network, mapping *Mapping) (*Report, error) {
	warns := newWarnings(p.logger.With("network", net.SUID()), p.metrics)

	start := time.Now()
	resolved := ResolveQueryTerms(net, p.queryTermColumn)
	for _, protein := range mapping.Proteins() {
		if _, ok := resolved[protein]; !ok {
			warns.add(Warning{Kind: WarnUnresolvedProtein, Subject: protein})
		}
	}
	p.metrics.ObserveStage("resolve", start)

	if err := network.CreateColumnIfNeeded(net.NodeTable(), vocabulary.UseForAnalysis, network.BoolColumn, false); err != nil {
		return nil, errors.Wrap(err, "Pipeline", "Run", "analysis column setup")
	}

	start = time.Now()
	registry, w, err := DuplicateNodes(net, mapping, resolved)
	if err != nil {
		return nil, errors.Wrap(err, "Pipeline", "Run", "node duplication")
	}
	warns.add(w...)
	p.metrics.RecordDuplicates(registry.Copies())
	p.metrics.ObserveStage("duplicate", start)

	start = time.Now()
	synthesizer := NewSynthesizer(p.policies,
		WithSeparator(p.separator),
		WithQueryTermColumn(p.queryTermColumn))
	summaries, w, err := NewBuilder(p.groups, synthesizer).Build(net, mapping, resolved, registry)
	if err != nil {
		return nil, errors.Wrap(err, "Pipeline", "Run", "group building")
	}
	warns.add(w...)
	p.metrics.ObserveStage("build", start)

	for _, s := range summaries {
		if s.Flagged {
			p.metrics.RecordFlagged()
		} else {
			p.metrics.RecordGroupCreated()
		}
	}

	if p.keepCollapsed {
		start = time.Now()
		for _, s := range summaries {
			if s.GroupNode == 0 {
				continue
			}
			g, ok := p.groups.GroupFor(net, s.GroupNode)
			if !ok {
				return nil, errors.Wrap(errors.ErrGroupNotFound, "Pipeline", "Run", "group lookup for "+s.Group)
			}
			if err := g.Collapse(); err != nil {
				return nil, errors.Wrap(err, "Pipeline", "Run", "collapse of "+s.Group)
			}
		}
		p.metrics.ObserveStage("collapse", start)
	}

	report := &Report{
		Resolved:          len(resolved),
		DuplicatesCreated: registry.Copies(),
		Groups:            summaries,
		Warnings:          warns.list,
	}
	p.logger.Info("network grouped",
		"network", net.SUID(),
		"groups", report.GroupCount(),
		"flagged", len(report.Flagged()),
		"duplicates", report.DuplicatesCreated,
		"warnings", len(report.Warnings))
	return report, nil
}
