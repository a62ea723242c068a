/*
Package metrics defines and registers the Prometheus metrics exposed by
driftbase nodes and gateways, plus the health/readiness/liveness HTTP
handlers used for orchestrator probes.

# Metrics

Gateway: request counts and latency by method.

Ingestion/retrieval: PUT/GET durations, blocks written/read, failure
counts by reason.

Block RPC: quorum PutBlock/GetBlock durations, digest mismatch counts.

Replicated table: insert duration and quorum-failure counts by entity
kind.

Ring: current membership size.

# Health

HealthChecker tracks named components (e.g. "table", "blockrpc",
"gateway") via RegisterComponent/UpdateComponent. GetHealth reports
"unhealthy" if any registered component is unhealthy; GetReadiness
considers only registered components marked critical and requires each
of them to be healthy (a component that was never registered does not
affect readiness), plus a ring quorum once RegisterRing has been called.

# Usage

	metrics.RegisterComponent("blockrpc", true, true, "")
	http.Handle("/metrics", metrics.Handler())
	http.HandleFunc("/healthz", metrics.HealthHandler())
	http.HandleFunc("/readyz", metrics.ReadyHandler())
*/
package metrics
