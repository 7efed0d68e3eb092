// Package metrics provides Prometheus metrics for polykv.
//
// This package implements metrics collection and exposition:
//
//   - registry.go: Prometheus registry and the metric families it owns
//   - collector.go: a custom collector sampling live substrate/WAL state
//
// Metrics include:
//
//   - Transaction throughput and conflict counters
//   - Blob/document/graph operation latency histograms
//   - WAL segment size and substrate size gauges
//   - Open snapshot and goroutine gauges
//
// Metrics are exposed at /metrics in Prometheus format via Handler.
package metrics
