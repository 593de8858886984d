// Package metric exposes Prometheus metrics for ProteoVisualizer.
//
// A MetricsRegistry wraps a private prometheus.Registry (never the global default) and
// carries the core service metrics: requests handled, errors and NATS connection
// state. Components register their own collectors under a service name; registering
// the same service.metric key twice is an invalid error.
//
// PipelineMetrics are the grouping pipeline's domain metrics: duplicates created,
// groups built, single-member groups flagged, warnings by kind and meta-edges aggregated
// by transition. A nil *PipelineMetrics is valid and records nothing, which keeps the
// pipeline usable without a registry in tests.
//
// Server serves the registry on an HTTP port:
//
//	registry := metric.NewMetricsRegistry()
//	server := metric.NewServer(9090, "/metrics", registry)
//	go server.Start()
//	defer server.Stop()
package metric
