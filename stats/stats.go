// Package stats implements the statistics collector a packet queue
// reports timestamped add/remove/drop events to, and exposes the
// collected counters as Prometheus metrics.
package stats

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector accumulates per-queue event counters. All methods are safe
// for concurrent use; recording an event is a couple of atomic stores.
type Collector struct {
	queue     string
	createdAt time.Time

	added   atomic.Int64
	removed atomic.Int64
	dropped atomic.Int64

	// Unix milliseconds of the most recent event of each kind.
	lastAddedMs   atomic.Int64
	lastRemovedMs atomic.Int64
	lastDroppedMs atomic.Int64

	addedDesc   *prometheus.Desc
	removedDesc *prometheus.Desc
	droppedDesc *prometheus.Desc
}

// New creates a collector for the queue with the given id.
func New(queue string) *Collector {
	c := &Collector{
		queue:     queue,
		createdAt: time.Now(),
	}
	c.initDescs()
	return c
}

// Queue returns the id of the queue this collector belongs to.
func (c *Collector) Queue() string { return c.queue }

// PacketAdded records a packet admission at the given time.
func (c *Collector) PacketAdded(at time.Time) {
	c.added.Add(1)
	c.lastAddedMs.Store(at.UnixMilli())
}

// PacketRemoved records a packet being handed to the handler.
func (c *Collector) PacketRemoved(at time.Time) {
	c.removed.Add(1)
	c.lastRemovedMs.Store(at.UnixMilli())
}

// PacketDropped records an overflow eviction.
func (c *Collector) PacketDropped(at time.Time) {
	c.dropped.Add(1)
	c.lastDroppedMs.Store(at.UnixMilli())
}

// TotalAdded returns the number of admissions recorded.
func (c *Collector) TotalAdded() int64 { return c.added.Load() }

// TotalRemoved returns the number of removals recorded.
func (c *Collector) TotalRemoved() int64 { return c.removed.Load() }

// TotalDropped returns the number of drops recorded.
func (c *Collector) TotalDropped() int64 { return c.dropped.Load() }

// Snapshot returns a point-in-time summary of the collected counters,
// suitable for inclusion in a queue's debug state.
func (c *Collector) Snapshot() map[string]any {
	elapsed := time.Since(c.createdAt).Seconds()
	added := c.added.Load()
	removed := c.removed.Load()
	dropped := c.dropped.Load()

	s := map[string]any{
		"added_packets":   added,
		"removed_packets": removed,
		"dropped_packets": dropped,
	}
	if elapsed > 0 {
		s["average_added_packets_per_second"] = float64(added) / elapsed
		s["average_removed_packets_per_second"] = float64(removed) / elapsed
		s["average_dropped_packets_per_second"] = float64(dropped) / elapsed
	}
	if ms := c.lastAddedMs.Load(); ms > 0 {
		s["last_packet_added_ms"] = ms
	}
	if ms := c.lastRemovedMs.Load(); ms > 0 {
		s["last_packet_removed_ms"] = ms
	}
	if ms := c.lastDroppedMs.Load(); ms > 0 {
		s["last_packet_dropped_ms"] = ms
	}
	return s
}
