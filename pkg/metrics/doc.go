// Package metrics records postd request and store metrics and exposes them in
// the Prometheus text format.
//
// Metrics live in a per-server Registry backed by a VictoriaMetrics Set, so
// tests and multiple servers in one process never share counters.
//
// Exported series:
//
//   - postd_http_requests_total{method,route,status}
//   - postd_http_request_duration_seconds{method,route}
//   - postd_store_operations_total{op,result}
//   - postd_version_conflicts_total
//   - postd_rate_limited_total
//   - postd_posts (gauge, when a counter func is registered)
//
// Usage:
//
//	reg := metrics.NewRegistry()
//	reg.ObserveRequest("GET", "/api/posts", 200, time.Since(start))
//	mux.Handle("GET /metrics", reg.Handler())
package metrics
