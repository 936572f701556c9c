// Package resilience provides the resilience patterns healthops wraps around
// health checks and the HTTP surface.
//
// None of these patterns change how a check result is classified. They shape
// how a probe is attempted:
//
//   - Timeout bounds a single check so a hung dependency cannot stall the
//     whole cycle. The health executor applies it per check.
//
//   - Retry re-runs a flaky probe with exponential, linear or constant
//     backoff before reporting it as failed.
//
//   - Circuit Breaker stops probing a dependency that keeps failing and
//     reports it failed immediately until the reset timeout elapses.
//
//   - Rate Limiter is a token bucket guarding the checks route, since every
//     request there runs the full registry.
//
// Retry and circuit breaking are composed per check with an Executor:
//
//	guard := resilience.NewExecutor(
//	    resilience.WithCircuitBreaker(resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
//	        Name:         "postgres",
//	        MaxFailures:  3,
//	        ResetTimeout: 30 * time.Second,
//	    })),
//	    resilience.WithRetry(resilience.NewRetry(resilience.RetryConfig{
//	        MaxAttempts:  3,
//	        InitialDelay: 50 * time.Millisecond,
//	    })),
//	    resilience.WithTimeout(2*time.Second),
//	)
//
//	err := guard.Execute(ctx, func(ctx context.Context) error {
//	    return db.PingContext(ctx)
//	})
package resilience
