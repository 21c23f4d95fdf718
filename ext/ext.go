// Package ext defines the extension system for packetq.
// Extensions are notified of queue lifecycle events (packet enqueued,
// dropped, handled, queue closed) and can react to them — logging,
// metrics, tracing, etc.
//
// Each lifecycle hook is a separate interface so extensions opt in only
// to the events they care about.
package ext

import "time"

// Extension is the base interface all extensions must implement.
type Extension interface {
	// Name returns a unique human-readable name for the extension.
	Name() string
}

// ──────────────────────────────────────────────────
// Packet lifecycle hooks
// ──────────────────────────────────────────────────

// PacketEnqueued is called after a packet is admitted to a queue.
// depth is the queue size immediately after admission.
type PacketEnqueued interface {
	OnPacketEnqueued(queue string, depth int) error
}

// PacketDropped is called when admission evicts the oldest resident
// packet to stay within capacity.
type PacketDropped interface {
	OnPacketDropped(queue string) error
}

// PacketHandled is called after the packet handler returns. err is the
// handler's reported result (nil on success); handler panics surface
// here as errors too, after HandlingFailed has fired.
type PacketHandled interface {
	OnPacketHandled(queue string, elapsed time.Duration, err error) error
}

// HandlingFailed is called when the packet handler panics. The drain
// loop continues with the next packet.
type HandlingFailed interface {
	OnHandlingFailed(queue string, cause error) error
}

// ──────────────────────────────────────────────────
// Queue lifecycle hooks
// ──────────────────────────────────────────────────

// QueueClosed is called once when a queue is closed. flushed is the
// number of resident packets released during the close flush.
type QueueClosed interface {
	OnQueueClosed(queue string, flushed int) error
}
