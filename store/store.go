// Package store provides the bounded FIFO storage underlying a packet
// queue. Admission never fails and never blocks: when the store is full,
// the oldest element is evicted to make room for the new one.
package store

import (
	"sync"

	"github.com/eapache/queue"
)

// Bounded is a fixed-capacity FIFO store. All methods are safe for
// concurrent use by any number of producers and a draining consumer.
// Create one with New; the zero value is not usable.
type Bounded[T any] struct {
	mu       sync.Mutex
	buf      *queue.Queue
	capacity int
}

// New creates a bounded store with the given capacity. Capacity must be
// positive; the queue facade validates it before calling New.
func New[T any](capacity int) *Bounded[T] {
	return &Bounded[T]{
		buf:      queue.New(),
		capacity: capacity,
	}
}

// TryAdmit inserts pkt at the tail. If the store is already at capacity
// the head (oldest) element is evicted first and returned with
// dropped=true. Admission itself cannot fail.
func (b *Bounded[T]) TryAdmit(pkt T) (evicted T, dropped bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.buf.Length() >= b.capacity {
		evicted = b.buf.Remove().(T)
		dropped = true
	}
	b.buf.Add(pkt)
	return evicted, dropped
}

// RemoveHead returns and removes the oldest element, or ok=false if the
// store is empty.
func (b *Bounded[T]) RemoveHead() (pkt T, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.buf.Length() == 0 {
		return pkt, false
	}
	return b.buf.Remove().(T), true
}

// DrainAll empties the store and returns the removed elements in FIFO
// order. Used during shutdown to flush resident packets.
func (b *Bounded[T]) DrainAll() []T {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]T, 0, b.buf.Length())
	for b.buf.Length() > 0 {
		out = append(out, b.buf.Remove().(T))
	}
	return out
}

// Len returns the number of elements currently stored.
func (b *Bounded[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Length()
}

// Cap returns the fixed capacity.
func (b *Bounded[T]) Cap() int { return b.capacity }
