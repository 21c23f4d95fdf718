package middleware_test

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/xraph/packetq"
	mw "github.com/xraph/packetq/middleware"
)

// ---------------------------------------------------------------------------
// Chain
// ---------------------------------------------------------------------------

func TestChain_Order(t *testing.T) {
	var order []string

	tag := func(name string) mw.Middleware[int] {
		return func(pkt int, next packetq.HandlerFunc[int]) error {
			order = append(order, name+"-before")
			err := next(pkt)
			order = append(order, name+"-after")
			return err
		}
	}

	h := mw.Wrap[int](packetq.HandlerFunc[int](func(_ int) error {
		order = append(order, "handler")
		return nil
	}), tag("outer"), tag("inner"))

	assert.NoError(t, h.HandlePacket(1))
	assert.Equal(t, []string{
		"outer-before", "inner-before", "handler", "inner-after", "outer-after",
	}, order)
}

func TestChain_Empty(t *testing.T) {
	called := false
	h := mw.Wrap[int](packetq.HandlerFunc[int](func(_ int) error {
		called = true
		return nil
	}))

	assert.NoError(t, h.HandlePacket(1))
	assert.True(t, called)
}

func TestChain_ErrorPropagates(t *testing.T) {
	want := errors.New("downstream failure")
	h := mw.Wrap[int](
		packetq.HandlerFunc[int](func(_ int) error { return want }),
		mw.Logging[int](slog.Default(), "q"),
	)

	assert.ErrorIs(t, h.HandlePacket(1), want)
}

// ---------------------------------------------------------------------------
// Retry
// ---------------------------------------------------------------------------

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	h := mw.Wrap[int](
		packetq.HandlerFunc[int](func(_ int) error {
			calls++
			if calls < 3 {
				return errors.New("transient")
			}
			return nil
		}),
		mw.Retry[int](mw.RetryPolicy{MaxAttempts: 5}),
	)

	assert.NoError(t, h.HandlePacket(1))
	assert.Equal(t, 3, calls)
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	want := errors.New("permanent")
	calls := 0
	h := mw.Wrap[int](
		packetq.HandlerFunc[int](func(_ int) error {
			calls++
			return want
		}),
		mw.Retry[int](mw.RetryPolicy{MaxAttempts: 3}),
	)

	assert.ErrorIs(t, h.HandlePacket(1), want)
	assert.Equal(t, 3, calls)
}

func TestRetry_NoRetryOnSuccess(t *testing.T) {
	calls := 0
	h := mw.Wrap[int](
		packetq.HandlerFunc[int](func(_ int) error {
			calls++
			return nil
		}),
		mw.Retry[int](mw.RetryPolicy{MaxAttempts: 5}),
	)

	assert.NoError(t, h.HandlePacket(1))
	assert.Equal(t, 1, calls)
}

func TestRetry_BackoffDelays(t *testing.T) {
	calls := 0
	h := mw.Wrap[int](
		packetq.HandlerFunc[int](func(_ int) error {
			calls++
			return errors.New("transient")
		}),
		mw.Retry[int](mw.RetryPolicy{
			MaxAttempts: 3,
			Initial:     10 * time.Millisecond,
			Multiplier:  2,
			Max:         50 * time.Millisecond,
		}),
	)

	start := time.Now()
	assert.Error(t, h.HandlePacket(1))
	// Two sleeps: 10ms + 20ms.
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	assert.Equal(t, 3, calls)
}

func TestRetry_ZeroAttemptsMeansOne(t *testing.T) {
	calls := 0
	h := mw.Wrap[int](
		packetq.HandlerFunc[int](func(_ int) error {
			calls++
			return errors.New("fail")
		}),
		mw.Retry[int](mw.RetryPolicy{}),
	)

	assert.Error(t, h.HandlePacket(1))
	assert.Equal(t, 1, calls)
}
