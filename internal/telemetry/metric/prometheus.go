package metric

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "projsnap"

// Registry holds all application metrics on a dedicated prometheus registry.
type Registry struct {
	registry *prometheus.Registry

	// Snapshot metrics
	SnapshotsCreated *prometheus.CounterVec
	CaptureFiles     prometheus.Histogram
	CaptureBytes     prometheus.Counter
	CreateDuration   prometheus.Histogram
	RestoredFiles    prometheus.Counter
	Operations       *prometheus.CounterVec
	PrunedSnapshots  prometheus.Counter

	// Watcher metrics
	WatchEvents prometheus.Counter

	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewRegistry creates a registry with Go runtime and process collectors
// plus every application metric registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Registry{
		registry: reg,
		SnapshotsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_created_total",
			Help:      "Snapshots created, by kind.",
		}, []string{"kind"}),
		CaptureFiles: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "snapshot_files",
			Help:      "Number of files captured per snapshot.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		CaptureBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_captured_bytes_total",
			Help:      "Bytes of file content captured.",
		}),
		CreateDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "snapshot_create_duration_seconds",
			Help:      "Time spent walking, digesting and persisting a snapshot.",
			Buckets:   prometheus.DefBuckets,
		}),
		RestoredFiles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_restored_files_total",
			Help:      "Files written back by restore.",
		}),
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_operations_total",
			Help:      "Snapshot operations, by operation and result.",
		}, []string{"op", "result"}),
		PrunedSnapshots: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_pruned_total",
			Help:      "Snapshots removed by retention.",
		}),
		WatchEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "watch_events_total",
			Help:      "File system events seen by the auto-snapshotter.",
		}),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "HTTP requests, by method, route and status.",
		}, []string{"method", "route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		r.SnapshotsCreated,
		r.CaptureFiles,
		r.CaptureBytes,
		r.CreateDuration,
		r.RestoredFiles,
		r.Operations,
		r.PrunedSnapshots,
		r.WatchEvents,
		r.RequestsTotal,
		r.RequestDuration,
	)

	return r
}

var (
	globalOnce     sync.Once
	globalRegistry *Registry
)

// Global returns the process-wide registry.
func Global() *Registry {
	globalOnce.Do(func() {
		globalRegistry = NewRegistry()
	})
	return globalRegistry
}

// Handler serves the global registry.
func Handler() http.Handler {
	return Global().Handler()
}

// Handler serves this registry in Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Register adds an extra collector, e.g. a StoreCollector.
func (r *Registry) Register(c prometheus.Collector) error {
	return r.registry.Register(c)
}

// RecordSnapshotCreated records a completed capture.
func (r *Registry) RecordSnapshotCreated(kind string, files, bytes int, seconds float64) {
	r.SnapshotsCreated.WithLabelValues(kind).Inc()
	r.CaptureFiles.Observe(float64(files))
	r.CaptureBytes.Add(float64(bytes))
	r.CreateDuration.Observe(seconds)
}

// RecordOperation counts a store operation. result is "ok" or an error code.
func (r *Registry) RecordOperation(op, result string) {
	r.Operations.WithLabelValues(op, result).Inc()
}

// AddRestoredFiles counts files written by restore.
func (r *Registry) AddRestoredFiles(n int) {
	r.RestoredFiles.Add(float64(n))
}

// AddPruned counts snapshots removed by retention.
func (r *Registry) AddPruned(n int) {
	r.PrunedSnapshots.Add(float64(n))
}

// IncWatchEvents counts a file system event.
func (r *Registry) IncWatchEvents() {
	r.WatchEvents.Inc()
}

// RecordRequest counts an HTTP request.
func (r *Registry) RecordRequest(method, route, status string) {
	r.RequestsTotal.WithLabelValues(method, route, status).Inc()
}

// ObserveRequestDuration records HTTP request latency.
func (r *Registry) ObserveRequestDuration(method, route string, seconds float64) {
	r.RequestDuration.WithLabelValues(method, route).Observe(seconds)
}
