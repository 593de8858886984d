package main

import (
	"log/slog"

	"github.com/atanasg/ProteoVisualizer/health"
	"github.com/atanasg/ProteoVisualizer/natsclient"
)

// natsHealth maps the connection state onto a health status.
func natsHealth(client *natsclient.Client) health.Check {
	return func() health.Status {
		st := client.GetStatus()
		var status health.Status
		switch st.Status {
		case natsclient.StatusConnected:
			status = health.NewHealthy("nats", "connected")
		case natsclient.StatusConnecting, natsclient.StatusReconnecting:
			status = health.NewDegraded("nats", st.Status.String())
		default:
			status = health.NewUnhealthy("nats", st.Status.String())
		}
		return status.WithMetrics(&health.Metrics{
			ErrorCount:   int(st.FailureCount),
			LastActivity: st.LastFailureTime,
		})
	}
}

func logHealthChange(logger *slog.Logger) func(bool) {
	return func(healthy bool) {
		if healthy {
			logger.Info("NATS connection healthy")
			return
		}
		logger.Warn("NATS connection unhealthy")
	}
}
