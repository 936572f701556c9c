// Package checks provides built-in health checks for common dependencies.
//
// Every check is a Prober: it returns nil when the dependency is healthy
// and an error describing the problem otherwise. Guard turns a Prober into
// a health.Checker and runs it through a resilience.Executor, so timeouts,
// retries and circuit breaking are configured per check.
//
// BuildAll creates the guarded checks for a configuration:
//
//	checkers, err := checks.BuildAll(cfg.Checks, checks.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	defer checks.CloseAll(checkers...)
//	registry, err := health.NewRegistry(checkers...)
package checks
