// Package observability provides an OpenTelemetry metrics extension for
// packetq. Register it on a queue with packetq.WithExtensions to track
// enqueue, drop and handling rates plus handler latency.
package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/xraph/packetq/ext"
)

// meterName is the instrumentation scope name for packetq metrics.
const meterName = "github.com/xraph/packetq"

// Compile-time interface checks.
var (
	_ ext.Extension      = (*MetricsExtension)(nil)
	_ ext.PacketEnqueued = (*MetricsExtension)(nil)
	_ ext.PacketDropped  = (*MetricsExtension)(nil)
	_ ext.PacketHandled  = (*MetricsExtension)(nil)
	_ ext.HandlingFailed = (*MetricsExtension)(nil)
	_ ext.QueueClosed    = (*MetricsExtension)(nil)
)

// MetricsExtension records queue lifecycle metrics.
//
// Instruments:
//   - packetq.packets.enqueued (Int64Counter), attribute: queue
//   - packetq.packets.dropped (Int64Counter), attribute: queue
//   - packetq.packets.handled (Int64Counter), attributes: queue,
//     status ("ok" or "error")
//   - packetq.handler.faults (Int64Counter), attribute: queue
//   - packetq.handle.duration (Float64Histogram, seconds), attributes:
//     queue, status
type MetricsExtension struct {
	enqueued metric.Int64Counter
	dropped  metric.Int64Counter
	handled  metric.Int64Counter
	faults   metric.Int64Counter
	duration metric.Float64Histogram
}

// NewMetricsExtension creates a MetricsExtension using the global OTel
// MeterProvider. If no MeterProvider is configured, noop instruments
// are used and the extension becomes a pass-through.
func NewMetricsExtension() *MetricsExtension {
	return NewMetricsExtensionWithMeter(otel.Meter(meterName))
}

// NewMetricsExtensionWithMeter creates a MetricsExtension with the
// provided meter. This variant allows injecting a specific
// MeterProvider for testing.
func NewMetricsExtensionWithMeter(meter metric.Meter) *MetricsExtension {
	// On error the OTel API returns noop instruments, so the extension
	// degrades gracefully.
	enqueued, _ := meter.Int64Counter(
		"packetq.packets.enqueued",
		metric.WithDescription("Total number of packets admitted"),
		metric.WithUnit("{packet}"),
	)
	dropped, _ := meter.Int64Counter(
		"packetq.packets.dropped",
		metric.WithDescription("Total number of packets evicted under capacity pressure"),
		metric.WithUnit("{packet}"),
	)
	handled, _ := meter.Int64Counter(
		"packetq.packets.handled",
		metric.WithDescription("Total number of packets dispatched to the handler"),
		metric.WithUnit("{packet}"),
	)
	faults, _ := meter.Int64Counter(
		"packetq.handler.faults",
		metric.WithDescription("Total number of handler panics"),
		metric.WithUnit("{fault}"),
	)
	duration, _ := meter.Float64Histogram(
		"packetq.handle.duration",
		metric.WithDescription("Duration of packet handling in seconds"),
		metric.WithUnit("s"),
	)

	return &MetricsExtension{
		enqueued: enqueued,
		dropped:  dropped,
		handled:  handled,
		faults:   faults,
		duration: duration,
	}
}

// Name implements ext.Extension.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnPacketEnqueued implements ext.PacketEnqueued.
func (m *MetricsExtension) OnPacketEnqueued(queue string, _ int) error {
	m.enqueued.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("queue", queue)))
	return nil
}

// OnPacketDropped implements ext.PacketDropped.
func (m *MetricsExtension) OnPacketDropped(queue string) error {
	m.dropped.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("queue", queue)))
	return nil
}

// OnPacketHandled implements ext.PacketHandled.
func (m *MetricsExtension) OnPacketHandled(queue string, elapsed time.Duration, err error) error {
	status := "ok"
	if err != nil {
		status = "error"
	}
	attrs := metric.WithAttributes(
		attribute.String("queue", queue),
		attribute.String("status", status),
	)
	m.handled.Add(context.Background(), 1, attrs)
	m.duration.Record(context.Background(), elapsed.Seconds(), attrs)
	return nil
}

// OnHandlingFailed implements ext.HandlingFailed.
func (m *MetricsExtension) OnHandlingFailed(queue string, _ error) error {
	m.faults.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("queue", queue)))
	return nil
}

// OnQueueClosed implements ext.QueueClosed.
func (m *MetricsExtension) OnQueueClosed(_ string, _ int) error {
	return nil
}
