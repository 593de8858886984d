package retrieval

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atanasg/ProteoVisualizer/errors"
	"github.com/atanasg/ProteoVisualizer/metric"
	"github.com/atanasg/ProteoVisualizer/pkg/cache"
	"github.com/atanasg/ProteoVisualizer/pkg/retry"
	fixtures "github.com/atanasg/ProteoVisualizer/testutil"
)

func testArgs() Args {
	return Args{Terms: "P04637\nP38398", TaxonID: DefaultTaxonID, Cutoff: DefaultCutoff}
}

func newRetriever(requester Requester, opts ...Option) *NATSRetriever {
	base := []Option{
		WithRateLimit(0, 0),
		WithRetry(retry.Config{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}),
	}
	return NewNATSRetriever(requester, append(base, opts...)...)
}

func reply(body string) func(string, []byte) ([]byte, error) {
	return func(string, []byte) ([]byte, error) { return []byte(body), nil }
}

func TestNATSRetriever_Retrieve(t *testing.T) {
	mock := fixtures.NewMockRequester(reply(payloadJSON))
	r := newRetriever(mock, WithSubject("test.retrieve"))

	args := testArgs()
	args.NetworkName = "my proteins"
	p, err := r.Retrieve(context.Background(), args)
	require.NoError(t, err)

	assert.Equal(t, "my proteins", p.Name)
	assert.Len(t, p.Nodes, 2)

	requests := mock.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, "test.retrieve", requests[0].Subject)
	var sent Args
	require.NoError(t, json.Unmarshal(requests[0].Data, &sent))
	assert.Equal(t, NetworkFunctional, sent.NetworkType, "defaults are applied before sending")
	assert.Equal(t, args.Terms, sent.Terms)
}

func TestNATSRetriever_Cache(t *testing.T) {
	mock := fixtures.NewMockRequester(reply(payloadJSON))
	c, err := cache.NewLRU[*Payload](4)
	require.NoError(t, err)
	r := newRetriever(mock, WithCache(c))

	first, err := r.Retrieve(context.Background(), testArgs())
	require.NoError(t, err)
	second, err := r.Retrieve(context.Background(), testArgs())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, mock.Count())

	other := testArgs()
	other.Cutoff = 0.7
	_, err = r.Retrieve(context.Background(), other)
	require.NoError(t, err)
	assert.Equal(t, 2, mock.Count())
}

func TestNATSRetriever_RetriesTransientFailures(t *testing.T) {
	calls := 0
	mock := fixtures.NewMockRequester(func(string, []byte) ([]byte, error) {
		calls++
		if calls == 1 {
			return nil, errors.ErrConnectionTimeout
		}
		if calls == 2 {
			return []byte(`{"error": "backend busy", "class": "transient"}`), nil
		}
		return []byte(payloadJSON), nil
	})

	p, err := newRetriever(mock).Retrieve(context.Background(), testArgs())
	require.NoError(t, err)
	assert.False(t, p.Empty())
	assert.Equal(t, 3, mock.Count())
}

func TestNATSRetriever_Failures(t *testing.T) {
	tests := []struct {
		name     string
		handler  func(string, []byte) ([]byte, error)
		requests int
	}{
		{name: "service rejects", handler: reply(`{"error": "unknown species", "class": "invalid"}`), requests: 1},
		{name: "empty network", handler: reply(`{"name": "empty", "nodes": []}`), requests: 1},
		{name: "garbage", handler: reply(`<html>`), requests: 1},
		{name: "unreachable", handler: func(string, []byte) ([]byte, error) { return nil, errors.ErrNotConnected }, requests: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := fixtures.NewMockRequester(tt.handler)
			_, err := newRetriever(mock).Retrieve(context.Background(), testArgs())
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrNoNetwork)
			assert.True(t, errors.IsFatal(err))
			assert.Equal(t, tt.requests, mock.Count())
		})
	}
}

func TestNATSRetriever_InvalidArgs(t *testing.T) {
	mock := fixtures.NewMockRequester(reply(payloadJSON))
	args := testArgs()
	args.TaxonID = 0

	_, err := newRetriever(mock).Retrieve(context.Background(), args)
	assert.ErrorIs(t, err, errors.ErrMissingSpecies)
	assert.True(t, errors.IsInvalid(err))
	assert.Zero(t, mock.Count())
}

func TestNATSRetriever_Metrics(t *testing.T) {
	registry := metric.NewMetricsRegistry()
	core := registry.CoreMetrics()
	mock := fixtures.NewMockRequester(reply(payloadJSON))
	r := newRetriever(mock, WithMetrics(core))

	_, err := r.Retrieve(context.Background(), testArgs())
	require.NoError(t, err)
	bad := testArgs()
	bad.Cutoff = 2
	_, err = r.Retrieve(context.Background(), bad)
	require.Error(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(core.RequestsReceived.WithLabelValues("retrieve")))
	assert.Equal(t, 1.0, testutil.ToFloat64(core.RequestsProcessed.WithLabelValues("retrieve", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(core.ErrorsTotal.WithLabelValues("retrieve", "invalid")))
}
