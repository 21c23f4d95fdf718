package packetq

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"
)

// requestDrain ensures a drain task is scheduled for this queue. Called
// after every admission. The draining flag enforces the single active
// task invariant: the CAS below is the only place a drain acquires
// ownership, so concurrent producers submit at most one task.
func (q *Queue[T]) requestDrain() {
	if q.closed.Load() {
		return
	}
	if !q.draining.CompareAndSwap(false, true) {
		// A task already owns draining; it will see the new packet.
		return
	}
	q.submitDrain()
}

// submitDrain hands a fresh drain task to the executor. The caller
// must hold drain ownership (draining=true).
func (q *Queue[T]) submitDrain() {
	q.submitTask(q.drain)
}

// submitTask hands a drain task body to the executor. On rejection,
// ownership is released so a later admission can retry.
func (q *Queue[T]) submitTask(task func()) {
	if err := q.executor.Submit(task); err != nil {
		q.draining.Store(false)
		q.logger.Error("drain task rejected by executor",
			slog.String("queue", q.id),
			slog.String("error", err.Error()),
		)
	}
}

// drain is the task body that runs on a pool worker. It pops packets
// and invokes the handler until the store empties, the queue closes, or
// the turn budget runs out. On budget exhaustion it re-submits an
// equivalent task without releasing ownership, returning the worker to
// the pool so other queues get a turn.
func (q *Queue[T]) drain() {
	q.drainLoop(false)
}

// drainLoop is the shared body of initial and resumed drain tasks.
// paid reports whether a pacing reservation redeemed by an earlier
// incarnation of this task still covers the next pop; reserving again
// would burn a second token per packet and stall the queue well below
// the configured rate.
func (q *Queue[T]) drainLoop(paid bool) {
	remaining := q.turnBudget

	for {
		if q.closed.Load() {
			q.draining.Store(false)
			return
		}

		if q.limiter != nil && !paid {
			if d := q.limiter.Reserve().Delay(); d > 0 {
				// Pacing: resume after the delay instead of
				// sleeping on a pool worker. Ownership is kept,
				// and the reservation carries over to the
				// resumed task.
				time.AfterFunc(d, func() {
					q.submitTask(func() { q.drainLoop(true) })
				})
				return
			}
		}
		paid = false

		pkt, ok := q.store.RemoveHead()
		if !ok {
			q.draining.Store(false)
			// An admission may have raced the flag reset and seen
			// draining=true, skipping its own submission. Reclaim
			// that work rather than stranding it.
			if q.store.Len() > 0 {
				q.requestDrain()
			}
			return
		}

		q.handle(pkt)

		if remaining > 0 {
			remaining--
			if remaining == 0 {
				if q.store.Len() > 0 && !q.closed.Load() {
					// Budget spent with work left: yield the
					// worker, keep ownership, go again.
					q.submitDrain()
					return
				}
				remaining = q.turnBudget
			}
		}
	}
}

// handle dispatches one packet to the handler with panic containment. A
// panic is reported to the error handler and the drain loop carries on;
// a single bad packet never halts the queue.
func (q *Queue[T]) handle(pkt T) {
	if q.stats != nil {
		q.stats.PacketRemoved(time.Now())
	}

	start := time.Now()
	err := q.invokeHandler(pkt)
	q.extensions.EmitPacketHandled(q.id, time.Since(start), err)

	if err != nil {
		// Reported failures are informational; see Handler.
		q.logger.Debug("packet handler reported failure",
			slog.String("queue", q.id),
			slog.String("error", err.Error()),
		)
	}
}

func (q *Queue[T]) invokeHandler(pkt T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			cause := fmt.Errorf("packetq: handler panic: %v", r)
			q.errorHandler().PacketHandlingFailed(cause)
			q.extensions.EmitHandlingFailed(q.id, cause)
			q.logger.Error("packet handler panicked",
				slog.String("queue", q.id),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
			err = cause
		}
	}()
	return q.handler.HandlePacket(pkt)
}
