package packetq

import (
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/xraph/packetq/ext"
	"github.com/xraph/packetq/store"
)

// Queue is a bounded FIFO packet queue draining asynchronously on a
// shared executor. All public methods are safe to call from arbitrary
// goroutines; Add is O(1) and never blocks.
type Queue[T any] struct {
	id       string
	capacity int

	store    *store.Bounded[T]
	handler  Handler[T]
	executor Executor

	logger     *slog.Logger
	stats      Statistics
	releaser   Releaser[T]
	extensions *ext.Registry
	limiter    *rate.Limiter

	// pendingExts accumulates WithExtensions values until New builds
	// the registry with the final logger.
	pendingExts []ext.Extension

	turnBudget int

	// errHandler holds the current ErrorHandler behind a pointer so
	// SetErrorHandler is safe against concurrent drains.
	errHandler atomic.Pointer[errorHandlerBox]

	closed   atomic.Bool
	draining atomic.Bool
}

type errorHandlerBox struct {
	h ErrorHandler
}

// New creates a queue with the given id, capacity, packet handler and
// executor. The id is used for diagnostics only. The executor is
// typically a pool.Pool shared by many queues.
func New[T any](id string, capacity int, handler Handler[T], executor Executor, opts ...Option[T]) (*Queue[T], error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	if handler == nil {
		return nil, ErrNilHandler
	}
	if executor == nil {
		return nil, ErrNoExecutor
	}

	q := &Queue[T]{
		id:         id,
		capacity:   capacity,
		store:      store.New[T](capacity),
		handler:    handler,
		executor:   executor,
		logger:     slog.Default(),
		turnBudget: DefaultTurnBudget,
	}
	q.storeErrorHandler(NopErrorHandler{})

	for _, opt := range opts {
		if err := opt(q); err != nil {
			return nil, err
		}
	}

	q.extensions = ext.NewRegistry(q.logger)
	for _, e := range q.pendingExts {
		q.extensions.Register(e)
	}
	q.pendingExts = nil

	q.logger.Debug("packet queue created",
		slog.String("queue", q.id),
		slog.Int("capacity", q.capacity),
	)
	return q, nil
}

// ID returns the queue's identifying name.
func (q *Queue[T]) ID() string { return q.id }

// Len returns the number of packets currently resident.
func (q *Queue[T]) Len() int { return q.store.Len() }

// Add admits pkt to the queue. It never blocks and never fails: when
// the queue is full the oldest resident packet is evicted (reported via
// the drop event, the error handler and the release hook). After Close,
// Add is a silent no-op.
//
// Add racing Close is best-effort: a packet admitted between the closed
// check and Close's flush may end up neither handled nor released.
// Callers that need every packet accounted for must stop producing
// before calling Close.
func (q *Queue[T]) Add(pkt T) {
	if q.closed.Load() {
		return
	}

	evicted, dropped := q.store.TryAdmit(pkt)

	now := time.Now()
	if q.stats != nil {
		q.stats.PacketAdded(now)
	}
	q.extensions.EmitPacketEnqueued(q.id, q.store.Len())

	if dropped {
		if q.stats != nil {
			q.stats.PacketDropped(now)
		}
		q.errorHandler().PacketDropped()
		q.extensions.EmitPacketDropped(q.id)
		if q.releaser != nil {
			q.releaser(evicted)
		}
	}

	q.requestDrain()
}

// Close shuts the queue down. The first call marks the queue closed,
// stops new drain tasks from being scheduled, and synchronously flushes
// all resident packets through the release hook. An in-flight drain
// task finishes its current slice and observes the closed state at its
// next iteration. Subsequent calls are no-ops.
func (q *Queue[T]) Close() {
	if !q.closed.CompareAndSwap(false, true) {
		return
	}

	flushed := q.store.DrainAll()
	for _, pkt := range flushed {
		if q.releaser != nil {
			q.releaser(pkt)
		}
	}

	q.extensions.EmitQueueClosed(q.id, len(flushed))
	q.logger.Debug("packet queue closed",
		slog.String("queue", q.id),
		slog.Int("flushed", len(flushed)),
	)
}

// SetErrorHandler replaces the queue's error handler. Safe to call at
// any time, from any goroutine. A nil handler restores the no-op
// default.
func (q *Queue[T]) SetErrorHandler(h ErrorHandler) {
	if h == nil {
		h = NopErrorHandler{}
	}
	q.storeErrorHandler(h)
}

func (q *Queue[T]) storeErrorHandler(h ErrorHandler) {
	q.errHandler.Store(&errorHandlerBox{h: h})
}

func (q *Queue[T]) errorHandler() ErrorHandler {
	return q.errHandler.Load().h
}

// DebugState is a structured record of the parts of a queue's state
// useful for debugging.
type DebugState struct {
	ID         string         `json:"id"`
	Capacity   int            `json:"capacity"`
	Closed     bool           `json:"closed"`
	Statistics map[string]any `json:"statistics"`
}

// DebugState reports the queue's diagnostic state. Statistics is nil
// when collection is disabled.
func (q *Queue[T]) DebugState() DebugState {
	ds := DebugState{
		ID:       q.id,
		Capacity: q.capacity,
		Closed:   q.closed.Load(),
	}
	if s, ok := q.stats.(Snapshotter); ok {
		ds.Statistics = s.Snapshot()
	}
	return ds
}
