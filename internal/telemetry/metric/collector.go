package metric

import "github.com/prometheus/client_golang/prometheus"

// StoreStats is the read-only view of a snapshot store the collector needs.
type StoreStats interface {
	Len() int
}

// StoreCollector reports store statistics at scrape time.
type StoreCollector struct {
	store StoreStats
	desc  *prometheus.Desc
}

// NewStoreCollector creates a collector for the given store.
func NewStoreCollector(store StoreStats) *StoreCollector {
	return &StoreCollector{
		store: store,
		desc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "snapshots_indexed"),
			"Snapshots currently held in the store index.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *StoreCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

// Collect implements prometheus.Collector.
func (c *StoreCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(c.store.Len()))
}
