package metric

import "github.com/prometheus/client_golang/prometheus"

// KeySource reports the number of stored keys.
type KeySource interface {
	Len() int
}

// Collector reports store statistics at scrape time.
type Collector struct {
	source KeySource
	keys   *prometheus.Desc
}

// NewCollector creates a collector reading from source.
func NewCollector(source KeySource) *Collector {
	return &Collector{
		source: source,
		keys: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "keys"),
			"Keys currently stored, including expired keys not yet collected.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.keys
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.keys, prometheus.GaugeValue, float64(c.source.Len()))
}
