// Package middleware provides composable middleware for packet
// handlers. Middleware wraps handler calls synchronously and can modify
// execution (log, retry, time, etc.). Note that middleware runs on the
// drain task's worker goroutine: anything that sleeps — retry backoff
// in particular — holds that worker for the duration.
package middleware

import "github.com/xraph/packetq"

// Middleware wraps a handler invocation with cross-cutting logic. It
// receives the packet and the next handler to call. Middleware MUST
// call next to continue the chain (unless short-circuiting).
type Middleware[T any] func(pkt T, next packetq.HandlerFunc[T]) error

// Chain composes multiple middleware into a single Middleware.
// Middleware are applied right-to-left: the first middleware in the
// list is the outermost wrapper.
//
// Example: Chain(logging, retry) executes as:
//
//	logging → retry → handler
func Chain[T any](mws ...Middleware[T]) Middleware[T] {
	return func(pkt T, next packetq.HandlerFunc[T]) error {
		h := next
		for i := len(mws) - 1; i >= 0; i-- {
			mw := mws[i]
			prev := h
			h = func(pkt T) error {
				return mw(pkt, prev)
			}
		}
		return h(pkt)
	}
}

// Wrap applies middleware to a handler, outermost first, producing a
// handler suitable for packetq.New.
func Wrap[T any](h packetq.Handler[T], mws ...Middleware[T]) packetq.Handler[T] {
	chain := Chain(mws...)
	return packetq.HandlerFunc[T](func(pkt T) error {
		return chain(pkt, h.HandlePacket)
	})
}
