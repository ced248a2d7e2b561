// Package observability exports pool metrics to Prometheus.
//
// Collector implements membuf.MetricsCollector and prometheus.Collector:
//
//	registry := prometheus.NewRegistry()
//	collector, err := observability.NewCollector(registry)
//	if err != nil { ... }
//	pool, err := membuf.New(membuf.WithMetricsCollector(collector))
//
// Metrics are labeled by resource id, which is bounded by the pool's slot
// count, and by an error class derived from the membuf sentinel errors.
package observability
