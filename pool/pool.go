// Package pool provides the default shared worker pool on which drain
// tasks execute. One pool serves many queues; the pool knows nothing
// about queues, it just runs submitted tasks on a fixed set of
// goroutines.
package pool

import (
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"
)

var (
	// ErrClosed is returned by Submit after the pool has been stopped.
	ErrClosed = errors.New("pool: closed")

	// ErrBacklogFull is returned by Submit when the task backlog is
	// saturated. Submit never blocks the caller.
	ErrBacklogFull = errors.New("pool: task backlog full")
)

// Pool runs submitted tasks on a fixed number of worker goroutines.
// It is safe for concurrent use.
type Pool struct {
	workers int
	tasks   chan func()
	logger  *slog.Logger

	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	stopped bool
}

// Option configures a Pool.
type Option func(*Pool)

// WithBacklog sets the size of the task backlog buffer. The backlog
// only needs to hold one pending drain task per queue sharing the pool.
func WithBacklog(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.tasks = make(chan func(), n)
		}
	}
}

// WithLogger sets the structured logger for the pool.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pool) { p.logger = l }
}

// New creates a pool and starts its worker goroutines.
func New(workers int, opts ...Option) *Pool {
	if workers <= 0 {
		workers = 1
	}

	p := &Pool{
		workers: workers,
		tasks:   make(chan func(), 128),
		logger:  slog.Default(),
		stopCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}

	for range p.workers {
		p.wg.Add(1)
		go p.worker()
	}

	p.logger.Debug("worker pool started", slog.Int("workers", p.workers))
	return p
}

// Workers returns the number of worker goroutines.
func (p *Pool) Workers() int { return p.workers }

// Submit queues a task for asynchronous execution. It never blocks:
// when the backlog is full it returns ErrBacklogFull, and after Stop or
// StopWait it returns ErrClosed.
func (p *Pool) Submit(task func()) error {
	if task == nil {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return ErrClosed
	}
	select {
	case p.tasks <- task:
		return nil
	default:
		return ErrBacklogFull
	}
}

// Stop shuts the pool down, discarding any tasks still in the backlog.
// Tasks already executing run to completion. Stop is idempotent and
// safe to call concurrently with StopWait.
func (p *Pool) Stop() {
	if !p.markStopped() {
		return
	}

	// Discard the backlog so workers only finish what they already started.
	discarded := 0
drain:
	for {
		select {
		case <-p.tasks:
			discarded++
		default:
			break drain
		}
	}

	close(p.stopCh)
	p.wg.Wait()
	p.logger.Debug("worker pool stopped", slog.Int("discarded", discarded))
}

// StopWait shuts the pool down after the backlog has fully drained.
func (p *Pool) StopWait() {
	if !p.markStopped() {
		return
	}
	close(p.tasks)
	p.wg.Wait()
	p.logger.Debug("worker pool stopped after drain")
}

func (p *Pool) markStopped() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return false
	}
	p.stopped = true
	return true
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopCh:
			return
		case task, ok := <-p.tasks:
			if !ok {
				return
			}
			p.run(task)
		}
	}
}

// run executes one task, containing panics so a misbehaving task never
// takes a worker goroutine down with it.
func (p *Pool) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("pool task panicked",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
		}
	}()
	task()
}
