// Package health tracks the health of the proteovis process and serves it over HTTP.
//
// A Monitor holds one Status per named part of the process. Parts that change on events,
// such as the NATS connection, are pushed with Update. Parts that are cheaper to ask on
// demand, such as the number of networks a service holds, register a Check that runs each
// time the aggregate is read.
//
//	monitor := health.NewMonitor()
//	monitor.UpdateHealthy("nats", "connected")
//	monitor.AddCheck("grouping", svc.Health)
//
//	http.Handle("/health", monitor.Handler("proteovis"))
//
// Aggregation is worst-case: one unhealthy part makes the process unhealthy, otherwise one
// degraded part makes it degraded. Error messages turned into statuses with FromError are
// stripped of URLs, paths, addresses and credentials before they are exposed.
package health
