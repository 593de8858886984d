package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atanasg/ProteoVisualizer/errors"
	"github.com/atanasg/ProteoVisualizer/natsclient"
	"github.com/atanasg/ProteoVisualizer/retrieval"
)

type recordingSubscriber struct {
	queues   map[string]string
	handlers map[string]natsclient.RequestHandler
}

func (r *recordingSubscriber) SubscribeRequest(_ context.Context, subject, queue string, handler natsclient.RequestHandler) error {
	if r.handlers == nil {
		r.handlers = make(map[string]natsclient.RequestHandler)
		r.queues = make(map[string]string)
	}
	r.handlers[subject] = handler
	r.queues[subject] = queue
	return nil
}

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	s, _ := newTestService()
	h, err := NewHandler(s, nil)
	require.NoError(t, err)
	return h
}

func retrieveResult(t *testing.T, h *Handler) *Result {
	t.Helper()
	reply, err := h.HandleRetrieve(context.Background(), []byte(`{"query": "P1;P2\nP1;P3\nP4", "taxon_id": 9606}`))
	require.NoError(t, err)
	var res Result
	require.NoError(t, json.Unmarshal(reply, &res))
	return &res
}

func TestHandler_Register(t *testing.T) {
	h := newTestHandler(t)
	sub := &recordingSubscriber{}

	require.NoError(t, h.Register(context.Background(), sub, ""))
	for _, subject := range []string{SubjectRetrieve, SubjectGroupState, SubjectExport, SubjectRemove} {
		assert.Contains(t, sub.handlers, subject)
		assert.Equal(t, DefaultQueue, sub.queues[subject])
	}
}

func TestHandler_Retrieve(t *testing.T) {
	h := newTestHandler(t)

	res := retrieveResult(t, h)
	assert.NotEmpty(t, res.NetworkID)
	assert.Equal(t, 3, res.Nodes)
	require.NotNil(t, res.Report)
	assert.Equal(t, 2, res.Report.GroupCount())
}

func TestHandler_RejectsInvalidRequests(t *testing.T) {
	h := newTestHandler(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		handler natsclient.RequestHandler
		body    string
	}{
		{"missing query", h.HandleRetrieve, `{"taxon_id": 9606}`},
		{"cutoff above one", h.HandleRetrieve, `{"query": "P1", "cutoff": 2}`},
		{"unknown network type", h.HandleRetrieve, `{"query": "P1", "network_type": "genetic"}`},
		{"unknown field", h.HandleRetrieve, `{"query": "P1", "colour": "red"}`},
		{"not json", h.HandleRetrieve, `P1;P2`},
		{"network id format", h.HandleGroupState, `{"network_id": "abc", "group": "P1;P2", "collapsed": true}`},
		{"missing collapsed", h.HandleGroupState, `{"network_id": "7c9e6679-7425-40de-944b-e07fc1f90ae7", "group": "P1;P2"}`},
		{"export without id", h.HandleExport, `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.handler(ctx, []byte(tt.body))
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrInvalidRequest)
			assert.True(t, errors.IsInvalid(err))
		})
	}
}

func TestHandler_GroupStateExportRemove(t *testing.T) {
	h := newTestHandler(t)
	ctx := context.Background()
	res := retrieveResult(t, h)

	body, err := json.Marshal(GroupStateRequest{NetworkID: res.NetworkID, Group: "P1;P3", Collapsed: false})
	require.NoError(t, err)
	reply, err := h.HandleGroupState(ctx, body)
	require.NoError(t, err)
	var state GroupState
	require.NoError(t, json.Unmarshal(reply, &state))
	assert.False(t, state.Collapsed)
	assert.Equal(t, 4, state.Nodes)

	ref, err := json.Marshal(NetworkRef{NetworkID: res.NetworkID})
	require.NoError(t, err)
	reply, err = h.HandleExport(ctx, ref)
	require.NoError(t, err)
	var p retrieval.Payload
	require.NoError(t, json.Unmarshal(reply, &p))
	assert.Len(t, p.Nodes, 4)

	reply, err = h.HandleRemove(ctx, ref)
	require.NoError(t, err)
	var removed RemoveReply
	require.NoError(t, json.Unmarshal(reply, &removed))
	assert.True(t, removed.Removed)

	_, err = h.HandleExport(ctx, ref)
	assert.ErrorIs(t, err, errors.ErrNetworkNotFound)
}
