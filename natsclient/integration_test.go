//go:build integration

package natsclient

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atanasg/ProteoVisualizer/errors"
)

func TestIntegration_Connect(t *testing.T) {
	tc := NewTestClient(t)

	assert.True(t, tc.Client.IsHealthy())
	rtt, err := tc.Client.RTT()
	require.NoError(t, err)
	assert.Greater(t, rtt, time.Duration(0))
}

func TestIntegration_RequestReply(t *testing.T) {
	tc := NewTestClient(t)
	ctx := context.Background()

	err := tc.Client.SubscribeRequest(ctx, "test.echo", "echo", func(_ context.Context, data []byte) ([]byte, error) {
		if string(data) == "fail" {
			return nil, errors.WrapInvalid(errors.ErrInvalidRequest, "echo", "handle", "input check")
		}
		return append([]byte("echo:"), data...), nil
	})
	require.NoError(t, err)

	caller := tc.NewClient(t)

	reply, err := caller.Request(ctx, "test.echo", []byte("P04637"))
	require.NoError(t, err)
	assert.Equal(t, "echo:P04637", string(reply))

	reply, err = caller.Request(ctx, "test.echo", []byte("fail"))
	require.NoError(t, err)
	var envelope ErrorReply
	require.NoError(t, json.Unmarshal(reply, &envelope))
	assert.Equal(t, "invalid", envelope.Class)
	assert.Contains(t, envelope.Error, "invalid request")
}

func TestIntegration_RequestTimeout(t *testing.T) {
	tc := NewTestClient(t)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	err := tc.Client.Subscribe(ctx, "test.silent", func(context.Context, []byte) {})
	require.NoError(t, err)

	_, err = tc.Client.Request(ctx, "test.silent", []byte("x"))
	require.Error(t, err)
	assert.True(t, errors.IsTransient(err))
}

func TestIntegration_PublishSubscribe(t *testing.T) {
	tc := NewTestClient(t)
	ctx := context.Background()

	received := make(chan string, 1)
	require.NoError(t, tc.Client.Subscribe(ctx, "test.events", func(_ context.Context, data []byte) {
		received <- string(data)
	}))
	require.NoError(t, tc.Client.Publish(ctx, "test.events", []byte("collapsed")))

	select {
	case msg := <-received:
		assert.Equal(t, "collapsed", msg)
	case <-time.After(2 * time.Second):
		t.Fatal("message not received")
	}
}
