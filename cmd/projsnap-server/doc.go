// Package main provides the entry point for projsnap-server.
//
// The server owns the snapshot store and exposes it over HTTP:
//
//   - Snapshot API (create, list, get, restore, delete, compare, prune)
//   - Health and readiness probes
//   - Prometheus metrics at /metrics
//   - Optional automatic snapshots of a watched project directory
//
// Usage:
//
//	projsnap-server [flags]
//	projsnap-server --config /etc/projsnap/server.yaml
//
// Every setting can be overridden with a PROJSNAP_ environment variable,
// e.g. PROJSNAP_STORAGE_DATA_DIR=/srv/projsnap.
package main
