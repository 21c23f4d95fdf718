package packetq

import (
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/xraph/packetq/ext"
	"github.com/xraph/packetq/stats"
)

// Unlimited disables the per-turn budget: a drain task keeps the worker
// until its queue is empty. On a shared pool this can starve other
// queues; it is a deliberate opt-out for queues that must not be
// preempted.
const Unlimited = -1

// DefaultTurnBudget is the per-turn budget applied when no
// WithTurnBudget option is given.
const DefaultTurnBudget = 64

// Option configures a Queue.
type Option[T any] func(*Queue[T]) error

// WithTurnBudget sets how many packets one drain task processes before
// yielding the worker back to the pool. n must be positive or the
// Unlimited sentinel.
func WithTurnBudget[T any](n int) Option[T] {
	return func(q *Queue[T]) error {
		if n <= 0 && n != Unlimited {
			return ErrInvalidBudget
		}
		q.turnBudget = n
		return nil
	}
}

// WithStatistics enables statistics collection with the default
// collector. Statistics are disabled unless requested; there is no
// process-wide default toggle.
func WithStatistics[T any]() Option[T] {
	return func(q *Queue[T]) error {
		q.stats = stats.New(q.id)
		return nil
	}
}

// WithStatisticsCollector enables statistics collection with a custom
// collector, e.g. a stats.Collector shared with a Prometheus registry.
func WithStatisticsCollector[T any](s Statistics) Option[T] {
	return func(q *Queue[T]) error {
		q.stats = s
		return nil
	}
}

// WithErrorHandler sets the initial error handler. It can be replaced
// later with SetErrorHandler.
func WithErrorHandler[T any](h ErrorHandler) Option[T] {
	return func(q *Queue[T]) error {
		q.storeErrorHandler(h)
		return nil
	}
}

// WithLogger sets the structured logger for the queue.
func WithLogger[T any](l *slog.Logger) Option[T] {
	return func(q *Queue[T]) error {
		q.logger = l
		return nil
	}
}

// WithReleaser sets the release hook invoked for packets that leave the
// queue without being handled (overflow evictions and the close flush).
func WithReleaser[T any](r Releaser[T]) Option[T] {
	return func(q *Queue[T]) error {
		q.releaser = r
		return nil
	}
}

// WithExtensions registers lifecycle extensions with the queue.
func WithExtensions[T any](exts ...ext.Extension) Option[T] {
	return func(q *Queue[T]) error {
		q.pendingExts = append(q.pendingExts, exts...)
		return nil
	}
}

// WithRateLimit paces draining to at most perSecond packets per second
// with the given burst. When the limiter delays, the drain task hands
// its worker back to the pool and resumes after the pacing delay
// instead of sleeping on a worker. Burst defaults to 1.
func WithRateLimit[T any](perSecond float64, burst int) Option[T] {
	return func(q *Queue[T]) error {
		if perSecond <= 0 {
			return ErrInvalidRate
		}
		if burst <= 0 {
			burst = 1
		}
		q.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		return nil
	}
}
