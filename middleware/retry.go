package middleware

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/xraph/packetq"
)

// RetryPolicy controls the Retry middleware. The zero value of Initial
// disables sleeping between attempts.
type RetryPolicy struct {
	// MaxAttempts is the total number of handler invocations per
	// packet, including the first. Values below 1 are treated as 1.
	MaxAttempts int

	// Initial is the delay before the first retry.
	Initial time.Duration

	// Max caps the computed delay. Zero means no cap.
	Max time.Duration

	// Multiplier grows the delay between attempts: delay(n) =
	// Initial * Multiplier^(n-1). Values at or below 1 keep the delay
	// constant.
	Multiplier float64

	// Jitter, when set, randomizes each delay uniformly over
	// (0, delay] (full jitter), decorrelating retries across queues.
	Jitter bool
}

// delay computes the sleep before retry attempt n (1-indexed).
func (p RetryPolicy) delay(attempt int) time.Duration {
	d := p.Initial
	if p.Multiplier > 1 {
		d = time.Duration(float64(p.Initial) * math.Pow(p.Multiplier, float64(attempt-1)))
	}
	if p.Max > 0 && d > p.Max {
		d = p.Max
	}
	if p.Jitter && d > 0 {
		d = time.Duration(rand.Int64N(int64(d))) + 1
	}
	return d
}

// Retry returns middleware that re-invokes the handler when it reports
// failure, giving callers the stronger failure contract the queue
// itself deliberately does not impose. The backoff sleep runs on the
// drain worker, so keep delays short on shared pools. Panics are not
// retried; they propagate to the queue's fault containment.
func Retry[T any](policy RetryPolicy) Middleware[T] {
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	return func(pkt T, next packetq.HandlerFunc[T]) error {
		var err error
		for attempt := 1; attempt <= attempts; attempt++ {
			if err = next(pkt); err == nil {
				return nil
			}
			if attempt < attempts {
				if d := policy.delay(attempt); d > 0 {
					time.Sleep(d)
				}
			}
		}
		return err
	}
}
