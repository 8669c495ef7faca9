// Package metric provides Prometheus metrics for projsnap.
//
//   - prometheus.go: registry, snapshot and request metrics, HTTP handler
//   - collector.go: scrape-time collector reporting store statistics
//
// Metrics are exposed at /metrics in Prometheus text format.
package metric
