package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/atanasg/ProteoVisualizer/errors"
	"github.com/atanasg/ProteoVisualizer/health"
	"github.com/atanasg/ProteoVisualizer/metric"
	"github.com/atanasg/ProteoVisualizer/network"
	"github.com/atanasg/ProteoVisualizer/network/memnet"
	"github.com/atanasg/ProteoVisualizer/pgroup"
	"github.com/atanasg/ProteoVisualizer/query"
	"github.com/atanasg/ProteoVisualizer/retrieval"
	"github.com/atanasg/ProteoVisualizer/vocabulary"
)

// NoNetworkMessage is the user-facing result of a call that loaded nothing.
const NoNetworkMessage = "No network was loaded"

// DefaultMaxNetworks bounds the number of networks a Service keeps.
const DefaultMaxNetworks = 32

// Request asks for the network of a protein-group query.
type Request struct {
	// Query lists one protein group per line.
	Query string `json:"query"`
	// Delimiter separates proteins within a line. Empty means the service default.
	Delimiter string `json:"delimiter,omitempty"`
	TaxonID   int    `json:"taxon_id,omitempty"`
	Species   string `json:"species,omitempty"`
	// Cutoff is the confidence cutoff; nil means the service default.
	Cutoff      *float64 `json:"cutoff,omitempty"`
	NetworkType string   `json:"network_type,omitempty"`
	NetworkName string   `json:"network_name,omitempty"`
}

// Result references a grouped network.
type Result struct {
	NetworkID string         `json:"network_id"`
	SUID      network.SUID   `json:"suid"`
	Name      string         `json:"name"`
	Nodes     int            `json:"nodes"`
	Edges     int            `json:"edges"`
	Report    *pgroup.Report `json:"report"`
}

// GroupState is the state of one group after SetGroupState.
type GroupState struct {
	NetworkID string       `json:"network_id"`
	Group     string       `json:"group"`
	GroupNode network.SUID `json:"group_node"`
	Collapsed bool         `json:"collapsed"`
	Nodes     int          `json:"nodes"`
	Edges     int          `json:"edges"`
}

// Defaults fill the fields a Request leaves empty. A zero TaxonID with an empty Species
// leaves the species unset, which RetrieveAndGroup rejects.
type Defaults struct {
	TaxonID     int
	Species     string
	Cutoff      float64
	NetworkType string
	Delimiter   string
}

// DefaultDefaults returns human proteins, cutoff 0.4 and the functional network.
func DefaultDefaults() Defaults {
	return Defaults{
		TaxonID:     retrieval.DefaultTaxonID,
		Cutoff:      retrieval.DefaultCutoff,
		NetworkType: retrieval.DefaultNetworkType,
		Delimiter:   query.DefaultDelimiter,
	}
}

// Service retrieves, groups and keeps protein networks.
type Service struct {
	mu        sync.Mutex
	session   *memnet.Session
	retriever retrieval.Retriever
	registry  *Registry
	defaults  Defaults

	maxNetworks   int
	keepCollapsed bool
	policies      *vocabulary.Registry
	separator     string
	hSpacing      float64
	vSpacing      float64

	logger   *slog.Logger
	metrics  *metric.Metrics
	pipeline *metric.PipelineMetrics
	started  time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithDefaults sets the request defaults.
func WithDefaults(d Defaults) Option {
	return func(s *Service) { s.defaults = d }
}

// WithMaxNetworks bounds the kept networks; the oldest is destroyed first.
func WithMaxNetworks(n int) Option {
	return func(s *Service) { s.maxNetworks = n }
}

// WithKeepCollapsed controls whether groups are collapsed after a run.
func WithKeepCollapsed(collapse bool) Option {
	return func(s *Service) { s.keepCollapsed = collapse }
}

// WithPolicies replaces the attribute policies.
func WithPolicies(policies *vocabulary.Registry) Option {
	return func(s *Service) { s.policies = policies }
}

// WithConcatSeparator sets the separator of concatenated attributes.
func WithConcatSeparator(sep string) Option {
	return func(s *Service) { s.separator = sep }
}

// WithGridSpacing sets the spacing of members laid out on expand.
func WithGridSpacing(h, v float64) Option {
	return func(s *Service) { s.hSpacing, s.vSpacing = h, v }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithMetrics sets the request and pipeline metrics. Either may be nil.
func WithMetrics(core *metric.Metrics, pipeline *metric.PipelineMetrics) Option {
	return func(s *Service) { s.metrics, s.pipeline = core, pipeline }
}

// New creates a Service fetching networks through retriever.
func New(retriever retrieval.Retriever, opts ...Option) *Service {
	s := &Service{
		session:       memnet.NewSession(),
		retriever:     retriever,
		defaults:      DefaultDefaults(),
		maxNetworks:   DefaultMaxNetworks,
		keepCollapsed: true,
		separator:     vocabulary.ConcatSeparator,
		logger:        slog.Default(),
		started:       time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "service")

	aggOpts := []pgroup.AggregatorOption{
		pgroup.WithLayout(s.session, memnet.GridLayouter{}),
		pgroup.WithAggregatorLogger(s.logger),
		pgroup.WithAggregatorMetrics(s.pipeline),
	}
	if s.hSpacing > 0 && s.vSpacing > 0 {
		aggOpts = append(aggOpts, pgroup.WithGridSpacing(s.hSpacing, s.vSpacing))
	}
	s.session.AddGroupListener(pgroup.NewAggregator(s.session, aggOpts...))

	// Eviction runs from Add and Remove, both called with s.mu held.
	s.registry = NewRegistry(s.maxNetworks, func(e *Entry) {
		s.session.DestroyNetwork(e.Network.SUID())
		s.logger.Debug("network released", "network_id", e.ID, "suid", e.Network.SUID())
	})
	return s
}

// RetrieveAndGroup fetches the network of the proteins named in req.Query, groups it by
// the query's protein groups and registers it. Input errors are returned before anything
// is fetched; a failed or empty retrieval yields errors.ErrNoNetwork.
func (s *Service) RetrieveAndGroup(ctx context.Context, req Request) (*Result, error) {
	const operation = "retrieve_and_group"
	start := time.Now()
	s.recordReceived(operation)

	res, err := s.retrieveAndGroup(ctx, req)
	s.recordProcessed(operation, start, err)
	return res, err
}

func (s *Service) retrieveAndGroup(ctx context.Context, req Request) (*Result, error) {
	q, args, err := s.prepare(req)
	if err != nil {
		return nil, err
	}

	payload, err := s.retriever.Retrieve(ctx, args)
	if err != nil {
		s.logger.Error(NoNetworkMessage, "terms", len(q.Proteins()), "error", err)
		if errors.IsInvalid(err) || errors.Is(err, errors.ErrNoNetwork) {
			return nil, err
		}
		return nil, errors.WrapFatal(fmt.Errorf("%w: %w", errors.ErrNoNetwork, err), "Service", "RetrieveAndGroup", "retrieval")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var created *memnet.Network
	built, err := payload.Build(network.FactoryFunc(func(name string) network.Network {
		created = s.session.CreateNetwork(name)
		return created
	}))
	if err != nil {
		if created != nil {
			s.session.DestroyNetwork(created.SUID())
		}
		s.logger.Error(NoNetworkMessage, "error", err)
		return nil, errors.WrapFatal(fmt.Errorf("%w: %w", errors.ErrNoNetwork, err), "Service", "RetrieveAndGroup", "network build")
	}
	if req.NetworkName != "" {
		built.SetName(req.NetworkName)
	}
	if _, err := s.session.CreateView(built); err != nil {
		s.session.DestroyNetwork(created.SUID())
		return nil, errors.Wrap(err, "Service", "RetrieveAndGroup", "view creation")
	}

	report, err := pgroup.New(s.session,
		pgroup.WithKeepCollapsed(s.keepCollapsed),
		pgroup.WithPolicies(s.policies),
		pgroup.WithConcatSeparator(s.separator),
		pgroup.WithLogger(s.logger),
		pgroup.WithMetrics(s.pipeline),
	).Run(built, q.Mapping)
	if err != nil {
		s.session.DestroyNetwork(created.SUID())
		return nil, errors.Wrap(err, "Service", "RetrieveAndGroup", "grouping")
	}

	entry := s.registry.Add(created, report)
	s.logger.Info("network loaded",
		"network_id", entry.ID,
		"name", created.Name(),
		"nodes", created.NodeCount(),
		"edges", created.EdgeCount(),
		"groups", report.GroupCount())
	return s.result(entry), nil
}

// prepare parses the query and builds the retrieval arguments. Nothing is mutated.
func (s *Service) prepare(req Request) (*query.Query, retrieval.Args, error) {
	delimiter := req.Delimiter
	if delimiter == "" {
		delimiter = s.defaults.Delimiter
	}
	q, err := query.Parse(req.Query, delimiter)
	if err != nil {
		return nil, retrieval.Args{}, err
	}

	args := retrieval.Args{
		Terms:       q.Terms(),
		TaxonID:     req.TaxonID,
		Species:     req.Species,
		Cutoff:      s.defaults.Cutoff,
		NetworkType: req.NetworkType,
		NetworkName: req.NetworkName,
	}
	if args.TaxonID == 0 && args.Species == "" {
		args.TaxonID = s.defaults.TaxonID
		args.Species = s.defaults.Species
	}
	if req.Cutoff != nil {
		args.Cutoff = *req.Cutoff
	}
	if args.NetworkType == "" {
		args.NetworkType = s.defaults.NetworkType
	}
	args = args.WithDefaults()
	if err := args.Validate(); err != nil {
		return nil, retrieval.Args{}, err
	}
	return q, args, nil
}

// SetGroupState collapses or expands the group built for the protein group groupID.
func (s *Service) SetGroupState(ctx context.Context, networkID, groupID string, collapsed bool) (*GroupState, error) {
	const operation = "group_state"
	start := time.Now()
	s.recordReceived(operation)

	state, err := s.setGroupState(ctx, networkID, groupID, collapsed)
	s.recordProcessed(operation, start, err)
	return state, err
}

func (s *Service) setGroupState(ctx context.Context, networkID, groupID string, collapsed bool) (*GroupState, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "Service", "SetGroupState", "context check")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.registry.Get(networkID)
	if err != nil {
		return nil, err
	}
	var node network.SUID
	for _, summary := range entry.Report.Groups {
		if summary.Group == groupID && summary.GroupNode != 0 {
			node = summary.GroupNode
			break
		}
	}
	if node == 0 {
		return nil, errors.WrapInvalid(fmt.Errorf("%w: %q", errors.ErrGroupNotFound, groupID), "Service", "SetGroupState", "group lookup")
	}
	g, ok := s.session.GroupFor(entry.Network, node)
	if !ok {
		return nil, errors.WrapFatal(fmt.Errorf("%w: node %d", errors.ErrGroupNotFound, node), "Service", "SetGroupState", "group lookup")
	}

	if collapsed {
		err = g.Collapse()
	} else {
		err = g.Expand()
	}
	if err != nil {
		return nil, errors.Wrap(err, "Service", "SetGroupState", "state change")
	}

	return &GroupState{
		NetworkID: entry.ID.String(),
		Group:     groupID,
		GroupNode: node,
		Collapsed: g.IsCollapsed(),
		Nodes:     entry.Network.NodeCount(),
		Edges:     entry.Network.EdgeCount(),
	}, nil
}

// Network returns the result reference of a registered network.
func (s *Service) Network(networkID string) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, err := s.registry.Get(networkID)
	if err != nil {
		return nil, err
	}
	return s.result(entry), nil
}

// Networks returns the registered networks, oldest first.
func (s *Service) Networks() []*Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.registry.List()
	out := make([]*Result, 0, len(entries))
	for _, e := range entries {
		out = append(out, s.result(e))
	}
	return out
}

// Remove destroys a registered network.
func (s *Service) Remove(networkID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.Remove(networkID)
}

// Export returns the visible part of a registered network in wire form. Node
// identifiers are SUIDs; NaN cells are left out.
func (s *Service) Export(networkID string) (*retrieval.Payload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.registry.Get(networkID)
	if err != nil {
		return nil, err
	}
	net := entry.Network
	p := &retrieval.Payload{
		Name:        net.Name(),
		NodeColumns: columnSpecs(net.NodeTable()),
		EdgeColumns: columnSpecs(net.EdgeTable()),
	}
	for _, node := range net.Nodes() {
		p.Nodes = append(p.Nodes, retrieval.Node{
			ID:         suidString(node),
			Attributes: row(net.NodeTable(), node),
		})
	}
	for _, e := range net.Edges() {
		p.Edges = append(p.Edges, retrieval.Edge{
			Source:     suidString(e.Source),
			Target:     suidString(e.Target),
			Directed:   e.Directed,
			Attributes: row(net.EdgeTable(), e.SUID),
		})
	}
	return p, nil
}

// Health reports the networks held. A full registry is degraded since the next run evicts.
func (s *Service) Health() health.Status {
	held := s.registry.Len()
	m := &health.Metrics{Uptime: time.Since(s.started), NetworksHeld: held}
	if s.maxNetworks > 0 && held >= s.maxNetworks {
		msg := fmt.Sprintf("holding the maximum of %d networks", s.maxNetworks)
		return health.NewDegraded("grouping", msg).WithMetrics(m)
	}
	return health.NewHealthy("grouping", fmt.Sprintf("%d networks held", held)).WithMetrics(m)
}

func (s *Service) result(e *Entry) *Result {
	return &Result{
		NetworkID: e.ID.String(),
		SUID:      e.Network.SUID(),
		Name:      e.Network.Name(),
		Nodes:     e.Network.NodeCount(),
		Edges:     e.Network.EdgeCount(),
		Report:    e.Report,
	}
}

func (s *Service) recordReceived(operation string) {
	if s.metrics != nil {
		s.metrics.RecordRequestReceived(operation)
	}
}

func (s *Service) recordProcessed(operation string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
		s.metrics.RecordError(operation, errors.Classify(err).String())
	}
	s.metrics.RecordRequestProcessed(operation, status, time.Since(start))
}

func columnSpecs(t network.Table) []retrieval.ColumnSpec {
	cols := t.Columns()
	out := make([]retrieval.ColumnSpec, 0, len(cols))
	for _, c := range cols {
		if c.Name == network.SUIDColumn {
			continue
		}
		out = append(out, retrieval.ColumnSpec{Name: c.Name, Type: c.Type.String(), Default: c.Default})
	}
	return out
}

func row(t network.Table, id network.SUID) map[string]any {
	var attrs map[string]any
	for _, c := range t.Columns() {
		if c.Name == network.SUIDColumn {
			continue
		}
		v, ok := t.Get(id, c.Name)
		if !ok {
			continue
		}
		if f, isNum := v.(float64); isNum && math.IsNaN(f) {
			continue
		}
		if attrs == nil {
			attrs = make(map[string]any)
		}
		attrs[c.Name] = v
	}
	return attrs
}

func suidString(id network.SUID) string {
	return strconv.FormatInt(int64(id), 10)
}
