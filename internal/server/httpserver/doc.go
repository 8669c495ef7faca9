// Package httpserver provides the HTTP server for the snapshot API.
//
// It uses the Go standard library net/http with method-based routing:
//
//   - Snapshot endpoints: /snapshots, /snapshots/{id}, /snapshots/{id}/restore,
//     /snapshots/{id}/delete, /snapshots/{id}/compare, /snapshots/prune
//   - Health endpoints: /health, /ready, /metrics
//
// Middleware chain: Recover, RequestID, RateLimit, Audit, Instrument.
package httpserver
