package middleware

import (
	"log/slog"
	"time"

	"github.com/xraph/packetq"
)

// Logging returns middleware that logs each handled packet with its
// outcome and duration. queue is included on every record for queues
// sharing one logger.
func Logging[T any](logger *slog.Logger, queue string) Middleware[T] {
	return func(pkt T, next packetq.HandlerFunc[T]) error {
		start := time.Now()
		err := next(pkt)
		elapsed := time.Since(start)

		if err != nil {
			logger.Error("packet handling failed",
				slog.String("queue", queue),
				slog.Duration("elapsed", elapsed),
				slog.String("error", err.Error()),
			)
		} else {
			logger.Debug("packet handled",
				slog.String("queue", queue),
				slog.Duration("elapsed", elapsed),
			)
		}

		return err
	}
}
