package resilience

import (
	"context"
	"testing"
	"time"
)

// BenchmarkCircuitBreaker_Execute measures the closed-circuit fast path.
func BenchmarkCircuitBreaker_Execute(b *testing.B) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{})
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = cb.Execute(ctx, okOp)
	}
}

// BenchmarkCircuitBreaker_Open measures short-circuiting.
func BenchmarkCircuitBreaker_Open(b *testing.B) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 1, ResetTimeout: time.Hour})
	ctx := context.Background()
	_ = cb.Execute(ctx, failOp)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = cb.Execute(ctx, okOp)
	}
}

// BenchmarkRetry_Success measures retry overhead when nothing fails.
func BenchmarkRetry_Success(b *testing.B) {
	r := NewRetry(RetryConfig{})
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = r.Execute(ctx, okOp)
	}
}

// BenchmarkRateLimiter_Allow measures token accounting.
func BenchmarkRateLimiter_Allow(b *testing.B) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 1e9, Burst: 1 << 30})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = rl.Allow()
	}
}

// BenchmarkTimeout_Execute measures the goroutine-per-call cost.
func BenchmarkTimeout_Execute(b *testing.B) {
	to := NewTimeout(TimeoutConfig{Timeout: time.Second})
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = to.Execute(ctx, okOp)
	}
}

// BenchmarkExecutor_Guard measures a full check guard.
func BenchmarkExecutor_Guard(b *testing.B) {
	e := NewExecutor(
		WithCircuitBreaker(NewCircuitBreaker(CircuitBreakerConfig{})),
		WithRetry(NewRetry(RetryConfig{})),
		WithTimeout(time.Second),
	)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = e.Execute(ctx, okOp)
	}
}
