package resilience

import "errors"

// Sentinel errors for resilience operations.
var (
	// ErrCircuitOpen is returned when the circuit breaker is open.
	ErrCircuitOpen = errors.New("resilience: circuit breaker is open")

	// ErrRateLimitExceeded is returned when the rate limit is exceeded.
	ErrRateLimitExceeded = errors.New("resilience: rate limit exceeded")

	// ErrTimeout is returned when an operation times out.
	ErrTimeout = errors.New("resilience: operation timed out")

	// ErrPanic is returned when an operation panics on a goroutine owned by
	// the resilience layer.
	ErrPanic = errors.New("resilience: operation panicked")

	// ErrUnknownBackoff is returned when parsing an unknown backoff name.
	ErrUnknownBackoff = errors.New("resilience: unknown backoff strategy")
)
