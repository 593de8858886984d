package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atanasg/ProteoVisualizer/health"
	"github.com/atanasg/ProteoVisualizer/natsclient"
)

func TestNATSHealth_NotConnected(t *testing.T) {
	client, err := natsclient.NewClient("nats://localhost:4222")
	require.NoError(t, err)

	monitor := health.NewMonitor()
	monitor.AddCheck("nats", natsHealth(client))

	status, ok := monitor.Get("nats")
	require.True(t, ok)
	assert.True(t, status.IsUnhealthy())
	assert.Equal(t, "disconnected", status.Message)
	assert.True(t, monitor.AggregateHealth(appName).IsUnhealthy())
}
