// Package metric provides Prometheus metrics for respkv.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: Prometheus registry, recorders and HTTP handler
//   - collector.go: a collector reporting the live key count
//
// Metrics include:
//
//   - Command counters and latency histograms
//   - Connection gauges and counters
//   - Protocol error and key expiration counters
//   - Requests served by the HTTP endpoint
//
// Metrics are exposed at /metrics in Prometheus format.
package metric
