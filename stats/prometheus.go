package stats

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Compile-time interface check.
var _ prometheus.Collector = (*Collector)(nil)

// initDescs builds the per-instance descriptors. The queue id is baked
// in as a const label so collectors for different queues have distinct
// identities and can share one registry.
func (c *Collector) initDescs() {
	labels := prometheus.Labels{"queue": c.queue}
	c.addedDesc = prometheus.NewDesc(
		"packetq_packets_added_total",
		"Number of packets admitted to the queue",
		nil, labels,
	)
	c.removedDesc = prometheus.NewDesc(
		"packetq_packets_removed_total",
		"Number of packets removed from the queue and handed to the handler",
		nil, labels,
	)
	c.droppedDesc = prometheus.NewDesc(
		"packetq_packets_dropped_total",
		"Number of packets evicted due to capacity pressure",
		nil, labels,
	)
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.addedDesc
	ch <- c.removedDesc
	ch <- c.droppedDesc
}

// Collect implements prometheus.Collector. Register one Collector per
// queue; the queue id becomes the "queue" label.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(
		c.addedDesc, prometheus.CounterValue, float64(c.added.Load()))
	ch <- prometheus.MustNewConstMetric(
		c.removedDesc, prometheus.CounterValue, float64(c.removed.Load()))
	ch <- prometheus.MustNewConstMetric(
		c.droppedDesc, prometheus.CounterValue, float64(c.dropped.Load()))
}
