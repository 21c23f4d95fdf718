package ext

import (
	"log/slog"
	"time"
)

// Named entry types pair a hook implementation with the extension name
// captured at registration time. This avoids type-asserting back to
// Extension inside the emit methods.
type packetEnqueuedEntry struct {
	name string
	hook PacketEnqueued
}

type packetDroppedEntry struct {
	name string
	hook PacketDropped
}

type packetHandledEntry struct {
	name string
	hook PacketHandled
}

type handlingFailedEntry struct {
	name string
	hook HandlingFailed
}

type queueClosedEntry struct {
	name string
	hook QueueClosed
}

// Registry holds registered extensions and dispatches lifecycle events
// to them. It type-caches extensions at registration time so emit calls
// iterate only over extensions that implement the relevant hook.
type Registry struct {
	extensions []Extension
	logger     *slog.Logger

	// Type-cached slices for each lifecycle hook.
	packetEnqueued []packetEnqueuedEntry
	packetDropped  []packetDroppedEntry
	packetHandled  []packetHandledEntry
	handlingFailed []handlingFailedEntry
	queueClosed    []queueClosedEntry
}

// NewRegistry creates an extension registry with the given logger.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{logger: logger}
}

// Register adds an extension and type-asserts it into all applicable
// hook caches. Extensions are notified in registration order.
func (r *Registry) Register(e Extension) {
	r.extensions = append(r.extensions, e)
	name := e.Name()

	if h, ok := e.(PacketEnqueued); ok {
		r.packetEnqueued = append(r.packetEnqueued, packetEnqueuedEntry{name, h})
	}
	if h, ok := e.(PacketDropped); ok {
		r.packetDropped = append(r.packetDropped, packetDroppedEntry{name, h})
	}
	if h, ok := e.(PacketHandled); ok {
		r.packetHandled = append(r.packetHandled, packetHandledEntry{name, h})
	}
	if h, ok := e.(HandlingFailed); ok {
		r.handlingFailed = append(r.handlingFailed, handlingFailedEntry{name, h})
	}
	if h, ok := e.(QueueClosed); ok {
		r.queueClosed = append(r.queueClosed, queueClosedEntry{name, h})
	}
}

// Extensions returns all registered extensions.
func (r *Registry) Extensions() []Extension { return r.extensions }

// ──────────────────────────────────────────────────
// Event emitters
// ──────────────────────────────────────────────────

// EmitPacketEnqueued notifies all extensions that implement PacketEnqueued.
func (r *Registry) EmitPacketEnqueued(queue string, depth int) {
	for _, e := range r.packetEnqueued {
		if err := e.hook.OnPacketEnqueued(queue, depth); err != nil {
			r.logHookError("OnPacketEnqueued", e.name, err)
		}
	}
}

// EmitPacketDropped notifies all extensions that implement PacketDropped.
func (r *Registry) EmitPacketDropped(queue string) {
	for _, e := range r.packetDropped {
		if err := e.hook.OnPacketDropped(queue); err != nil {
			r.logHookError("OnPacketDropped", e.name, err)
		}
	}
}

// EmitPacketHandled notifies all extensions that implement PacketHandled.
func (r *Registry) EmitPacketHandled(queue string, elapsed time.Duration, handleErr error) {
	for _, e := range r.packetHandled {
		if err := e.hook.OnPacketHandled(queue, elapsed, handleErr); err != nil {
			r.logHookError("OnPacketHandled", e.name, err)
		}
	}
}

// EmitHandlingFailed notifies all extensions that implement HandlingFailed.
func (r *Registry) EmitHandlingFailed(queue string, cause error) {
	for _, e := range r.handlingFailed {
		if err := e.hook.OnHandlingFailed(queue, cause); err != nil {
			r.logHookError("OnHandlingFailed", e.name, err)
		}
	}
}

// EmitQueueClosed notifies all extensions that implement QueueClosed.
func (r *Registry) EmitQueueClosed(queue string, flushed int) {
	for _, e := range r.queueClosed {
		if err := e.hook.OnQueueClosed(queue, flushed); err != nil {
			r.logHookError("OnQueueClosed", e.name, err)
		}
	}
}

// logHookError logs a hook error. Hook errors never propagate to the
// queue's hot path.
func (r *Registry) logHookError(hook, extension string, err error) {
	r.logger.Error("extension hook error",
		slog.String("hook", hook),
		slog.String("extension", extension),
		slog.String("error", err.Error()),
	)
}
