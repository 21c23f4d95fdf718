package packetq

import "errors"

var (
	// Construction errors.
	ErrInvalidCapacity = errors.New("packetq: capacity must be positive")
	ErrNilHandler      = errors.New("packetq: nil packet handler")
	ErrNoExecutor      = errors.New("packetq: no executor")

	// Option errors.
	ErrInvalidBudget = errors.New("packetq: turn budget must be positive or Unlimited")
	ErrInvalidRate   = errors.New("packetq: rate limit must be positive")
)
