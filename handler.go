package packetq

import "time"

// Handler processes packets removed from a queue. It is invoked once per
// removed packet, from pool worker goroutines — possibly different ones
// over the queue's lifetime, but never concurrently for the same queue,
// so implementations need no self-synchronization.
type Handler[T any] interface {
	// HandlePacket processes one packet. A non-nil error marks the
	// packet as failed; the failure is observed (statistics, handled
	// hook) but does not stop the drain loop and is not forwarded to
	// the ErrorHandler. Callers needing stronger failure semantics
	// wrap their handler with retry middleware.
	HandlePacket(pkt T) error
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc[T any] func(pkt T) error

// HandlePacket implements Handler.
func (f HandlerFunc[T]) HandlePacket(pkt T) error { return f(pkt) }

// ErrorHandler receives error notifications from a queue: overflow
// drops and handler panics. Implementations must be safe for concurrent
// use; notifications arrive from producer and worker goroutines alike.
type ErrorHandler interface {
	// PacketDropped is called when admission evicts the oldest
	// resident packet.
	PacketDropped()

	// PacketHandlingFailed is called when the packet handler panics.
	PacketHandlingFailed(cause error)
}

// NopErrorHandler is the default ErrorHandler; it ignores everything.
type NopErrorHandler struct{}

func (NopErrorHandler) PacketDropped() {}

func (NopErrorHandler) PacketHandlingFailed(_ error) {}

// Statistics receives timestamped queue events. The removed event fires
// immediately before the packet is handed to the handler.
// stats.Collector is the default implementation.
type Statistics interface {
	PacketAdded(at time.Time)
	PacketRemoved(at time.Time)
	PacketDropped(at time.Time)
}

// Snapshotter is implemented by statistics collectors that can report a
// summary for a queue's debug state.
type Snapshotter interface {
	Snapshot() map[string]any
}

// Executor accepts units of work for asynchronous execution. pool.Pool
// implements it; any executor with non-blocking submission works.
type Executor interface {
	Submit(task func()) error
}

// Releaser reclaims a packet that leaves the queue without being
// handled: overflow evictions and packets flushed at close. It exists
// so callers pooling packet objects can return them to their pool.
type Releaser[T any] func(pkt T)
