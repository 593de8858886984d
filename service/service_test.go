package service

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atanasg/ProteoVisualizer/errors"
	"github.com/atanasg/ProteoVisualizer/metric"
	"github.com/atanasg/ProteoVisualizer/pgroup"
	"github.com/atanasg/ProteoVisualizer/retrieval"
	"github.com/atanasg/ProteoVisualizer/vocabulary"
)

const groupQuery = "P1;P2\nP1;P3\nP4\nPX"

type stubRetriever struct {
	mu      sync.Mutex
	payload func() *retrieval.Payload
	err     error
	args    []retrieval.Args
}

func (s *stubRetriever) Retrieve(_ context.Context, args retrieval.Args) (*retrieval.Payload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.args = append(s.args, args)
	if s.err != nil {
		return nil, s.err
	}
	return s.payload(), nil
}

func (s *stubRetriever) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.args)
}

// proteinPayload is P1..P4 with P1-P2 0.8, P1-P3 0.6 and P3-P4 0.4.
func proteinPayload() *retrieval.Payload {
	node := func(id string, extra map[string]any) retrieval.Node {
		attrs := map[string]any{
			vocabulary.QueryTerm:   id,
			vocabulary.Name:        id,
			vocabulary.DisplayName: id,
		}
		for k, v := range extra {
			attrs[k] = v
		}
		return retrieval.Node{ID: "9606." + id, Attributes: attrs}
	}
	edge := func(a, b string, score float64) retrieval.Edge {
		return retrieval.Edge{
			Source:     "9606." + a,
			Target:     "9606." + b,
			Attributes: map[string]any{vocabulary.Score: score, vocabulary.Interaction: "pp"},
		}
	}
	return &retrieval.Payload{
		Name: "STRING network",
		NodeColumns: []retrieval.ColumnSpec{
			{Name: vocabulary.QueryTerm, Type: "string"},
			{Name: vocabulary.Name, Type: "string"},
			{Name: vocabulary.DisplayName, Type: "string"},
			{Name: "tissue::liver", Type: "number"},
			{Name: "compartment::nucleus", Type: "number"},
		},
		EdgeColumns: []retrieval.ColumnSpec{
			{Name: vocabulary.Score, Type: "number"},
			{Name: vocabulary.Interaction, Type: "string"},
		},
		Nodes: []retrieval.Node{
			node("P1", map[string]any{"tissue::liver": 2.0}),
			node("P2", map[string]any{"tissue::liver": 4.0}),
			node("P3", nil),
			node("P4", nil),
		},
		Edges: []retrieval.Edge{
			edge("P1", "P2", 0.8),
			edge("P1", "P3", 0.6),
			edge("P3", "P4", 0.4),
		},
	}
}

func newTestService(opts ...Option) (*Service, *stubRetriever) {
	r := &stubRetriever{payload: proteinPayload}
	return New(r, opts...), r
}

func TestService_RetrieveAndGroup(t *testing.T) {
	core := metric.NewMetrics()
	s, r := newTestService(WithMetrics(core, nil))

	res, err := s.RetrieveAndGroup(context.Background(), Request{Query: groupQuery, NetworkName: "my groups"})
	require.NoError(t, err)

	require.Equal(t, 1, r.calls())
	args := r.args[0]
	assert.ElementsMatch(t, []string{"P1", "P2", "P3", "P4", "PX"}, strings.Split(args.Terms, "\n"))
	assert.Equal(t, retrieval.DefaultTaxonID, args.TaxonID)
	assert.Equal(t, retrieval.DefaultCutoff, args.Cutoff)
	assert.Equal(t, retrieval.NetworkFunctional, args.NetworkType)

	assert.NotEmpty(t, res.NetworkID)
	assert.NotZero(t, res.SUID)
	assert.Equal(t, "my groups", res.Name)
	assert.Equal(t, 3, res.Nodes, "two group nodes and the flagged P4")
	assert.Equal(t, 2, res.Edges)

	require.NotNil(t, res.Report)
	assert.Equal(t, 4, res.Report.Resolved)
	assert.Equal(t, 1, res.Report.DuplicatesCreated)
	assert.Equal(t, 2, res.Report.GroupCount())
	assert.Len(t, res.Report.Flagged(), 1)
	assert.Equal(t, []pgroup.Warning{{Kind: pgroup.WarnUnresolvedProtein, Subject: "PX"}},
		res.Report.WarningsOf(pgroup.WarnUnresolvedProtein))

	assert.Equal(t, 1.0, testutil.ToFloat64(core.RequestsProcessed.WithLabelValues("retrieve_and_group", "success")))

	got, err := s.Network(res.NetworkID)
	require.NoError(t, err)
	assert.Equal(t, res, got)
}

func TestService_RequestOverrides(t *testing.T) {
	s, r := newTestService()
	cutoff := 0.9

	_, err := s.RetrieveAndGroup(context.Background(), Request{
		Query:       "P1,P2",
		Delimiter:   ",",
		Species:     "Mus musculus",
		Cutoff:      &cutoff,
		NetworkType: retrieval.NetworkPhysical,
	})
	require.NoError(t, err)

	args := r.args[0]
	assert.Equal(t, "P1\nP2", args.Terms)
	assert.Zero(t, args.TaxonID, "an explicit species suppresses the default taxon")
	assert.Equal(t, "Mus musculus", args.Species)
	assert.Equal(t, 0.9, args.Cutoff)
	assert.Equal(t, retrieval.NetworkPhysical, args.NetworkType)
}

func TestService_InputErrors(t *testing.T) {
	outOfRange := 1.5
	tests := []struct {
		name     string
		defaults Defaults
		req      Request
		want     error
	}{
		{"empty query", DefaultDefaults(), Request{Query: "\n  \n"}, errors.ErrEmptyQuery},
		{"no species", Defaults{Cutoff: 0.4, NetworkType: retrieval.NetworkFunctional}, Request{Query: "P1"}, errors.ErrMissingSpecies},
		{"cutoff", DefaultDefaults(), Request{Query: "P1", Cutoff: &outOfRange}, errors.ErrCutoffRange},
		{"network type", DefaultDefaults(), Request{Query: "P1", NetworkType: "genetic"}, errors.ErrUnknownNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, r := newTestService(WithDefaults(tt.defaults))

			_, err := s.RetrieveAndGroup(context.Background(), tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, errors.IsInvalid(err))
			assert.Zero(t, r.calls(), "nothing is fetched for invalid input")
			assert.Empty(t, s.Networks())
		})
	}
}

func TestService_NoNetwork(t *testing.T) {
	t.Run("retrieval failure", func(t *testing.T) {
		s := New(&stubRetriever{err: errors.WrapTransient(errors.ErrConnectionLost, "test", "Retrieve", "request")})

		_, err := s.RetrieveAndGroup(context.Background(), Request{Query: groupQuery})
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrNoNetwork)
		assert.True(t, errors.IsFatal(err))
		assert.Empty(t, s.Networks())
	})

	t.Run("empty payload", func(t *testing.T) {
		s := New(&stubRetriever{payload: func() *retrieval.Payload { return &retrieval.Payload{Name: "empty"} }})

		_, err := s.RetrieveAndGroup(context.Background(), Request{Query: groupQuery})
		assert.ErrorIs(t, err, errors.ErrNoNetwork)
		assert.Empty(t, s.Networks())
	})

	t.Run("dangling edge", func(t *testing.T) {
		s := New(&stubRetriever{payload: func() *retrieval.Payload {
			p := proteinPayload()
			p.Edges = append(p.Edges, retrieval.Edge{Source: "9606.P1", Target: "9606.P9"})
			return p
		}})

		_, err := s.RetrieveAndGroup(context.Background(), Request{Query: groupQuery})
		assert.ErrorIs(t, err, errors.ErrNoNetwork)
		assert.ErrorIs(t, err, errors.ErrNodeNotFound)
		assert.Empty(t, s.Networks())
	})
}

func TestService_SetGroupState(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()
	res, err := s.RetrieveAndGroup(ctx, Request{Query: groupQuery})
	require.NoError(t, err)

	state, err := s.SetGroupState(ctx, res.NetworkID, "P1;P2", false)
	require.NoError(t, err)
	assert.False(t, state.Collapsed)
	assert.Equal(t, "P1;P2", state.Group)
	assert.Equal(t, 4, state.Nodes, "P1 and P2 replace their group node")

	state, err = s.SetGroupState(ctx, res.NetworkID, "P1;P2", true)
	require.NoError(t, err)
	assert.True(t, state.Collapsed)
	assert.Equal(t, 3, state.Nodes)
	assert.Equal(t, 2, state.Edges)

	_, err = s.SetGroupState(ctx, res.NetworkID, "P4", false)
	assert.ErrorIs(t, err, errors.ErrGroupNotFound, "flagged single-member groups have no group node")
	assert.True(t, errors.IsInvalid(err))

	_, err = s.SetGroupState(ctx, "not-a-uuid", "P1;P2", false)
	assert.ErrorIs(t, err, errors.ErrNetworkNotFound)

	_, err = s.SetGroupState(ctx, "7c9e6679-7425-40de-944b-e07fc1f90ae7", "P1;P2", false)
	assert.ErrorIs(t, err, errors.ErrNetworkNotFound)
}

func TestService_Export(t *testing.T) {
	s, _ := newTestService()
	res, err := s.RetrieveAndGroup(context.Background(), Request{Query: groupQuery})
	require.NoError(t, err)

	p, err := s.Export(res.NetworkID)
	require.NoError(t, err)
	assert.Equal(t, res.Name, p.Name)
	require.Len(t, p.Nodes, 3)
	require.Len(t, p.Edges, 2)

	ga := res.Report.Groups[0].GroupNode
	var group *retrieval.Node
	for i := range p.Nodes {
		if p.Nodes[i].ID == strconv.FormatInt(int64(ga), 10) {
			group = &p.Nodes[i]
		}
	}
	require.NotNil(t, group)
	assert.Equal(t, "P1;P2", group.Attributes[vocabulary.DisplayName])
	assert.Equal(t, 3.0, group.Attributes["tissue::liver"])
	assert.NotContains(t, group.Attributes, "compartment::nucleus", "NaN averages are left out")

	_, err = json.Marshal(p)
	require.NoError(t, err)
}

func TestService_Eviction(t *testing.T) {
	s, _ := newTestService(WithMaxNetworks(1))
	ctx := context.Background()

	first, err := s.RetrieveAndGroup(ctx, Request{Query: groupQuery})
	require.NoError(t, err)
	second, err := s.RetrieveAndGroup(ctx, Request{Query: groupQuery})
	require.NoError(t, err)

	_, err = s.Network(first.NetworkID)
	assert.ErrorIs(t, err, errors.ErrNetworkNotFound)
	_, ok := s.session.Network(first.SUID)
	assert.False(t, ok, "evicted networks are destroyed")

	networks := s.Networks()
	require.Len(t, networks, 1)
	assert.Equal(t, second.NetworkID, networks[0].NetworkID)

	status := s.Health()
	assert.True(t, status.IsDegraded(), "a full registry evicts on the next run")
	assert.Equal(t, 1, status.Metrics.NetworksHeld)
}

func TestService_Health(t *testing.T) {
	s, _ := newTestService()
	assert.True(t, s.Health().IsHealthy())

	_, err := s.RetrieveAndGroup(context.Background(), Request{Query: groupQuery})
	require.NoError(t, err)
	status := s.Health()
	assert.True(t, status.IsHealthy())
	assert.Equal(t, "1 networks held", status.Message)
}

func TestService_Remove(t *testing.T) {
	s, _ := newTestService()
	res, err := s.RetrieveAndGroup(context.Background(), Request{Query: groupQuery})
	require.NoError(t, err)

	require.NoError(t, s.Remove(res.NetworkID))
	_, ok := s.session.Network(res.SUID)
	assert.False(t, ok)
	assert.ErrorIs(t, s.Remove(res.NetworkID), errors.ErrNetworkNotFound)
}
