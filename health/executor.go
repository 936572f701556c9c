package health

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/oklog/ulid"
	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/healthops/observe"
	"github.com/jonwraymond/healthops/resilience"
)

// RawOutcome is the unformatted result of running one check.
type RawOutcome struct {
	// Name is the name of the check that produced this outcome.
	Name string

	// ElapsedMicros is the measured run time in microseconds. Never negative.
	ElapsedMicros int64

	// Signal is the classified result. Never nil.
	Signal Signal
}

// Elapsed returns the measured run time as a duration.
func (o RawOutcome) Elapsed() time.Duration {
	return time.Duration(o.ElapsedMicros) * time.Microsecond
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithParallel runs checks concurrently with at most maxConcurrency checks in
// flight. A maxConcurrency of zero or less means no limit.
func WithParallel(maxConcurrency int) ExecutorOption {
	return func(e *Executor) {
		e.parallel = true
		e.maxConcurrency = maxConcurrency
	}
}

// WithCheckTimeout bounds the run time of every check.
// A timed-out check is reported as a Failure; the check itself keeps running
// in the background until it returns.
func WithCheckTimeout(d time.Duration) ExecutorOption {
	return func(e *Executor) {
		if d <= 0 {
			e.timeout = nil
			return
		}
		e.timeout = resilience.NewTimeout(resilience.TimeoutConfig{Timeout: d})
	}
}

// WithMiddleware runs every check through the observability middleware.
func WithMiddleware(m *observe.Middleware) ExecutorOption {
	return func(e *Executor) {
		e.middleware = m
	}
}

// WithLogger sets the logger used for panics and timeouts.
func WithLogger(l observe.Logger) ExecutorOption {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// Executor runs every check of a registry and classifies the results.
//
// Contract:
//   - Every registered check yields exactly one RawOutcome, at its registration index.
//   - A panicking check never affects other checks; it yields Unspecified.
//   - Durations come from the monotonic clock.
//   - The Executor holds no state between calls and never retries.
type Executor struct {
	parallel       bool
	maxConcurrency int
	timeout        *resilience.Timeout
	middleware     *observe.Middleware
	logger         observe.Logger
}

// NewExecutor creates an executor. By default checks run sequentially with no
// timeout.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{logger: observe.NopLogger()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs all checks of registry and returns one outcome per check, in
// registration order.
func (e *Executor) Execute(ctx context.Context, registry *Registry) []RawOutcome {
	checkers := registry.Checkers()
	outcomes := make([]RawOutcome, len(checkers))
	if len(checkers) == 0 {
		return outcomes
	}

	logger := e.logger.With(observe.Field{Key: "cycle_id", Value: newCycleID()})

	if !e.parallel {
		for i, c := range checkers {
			outcomes[i] = e.run(ctx, logger, c)
		}
		return outcomes
	}

	var g errgroup.Group
	if e.maxConcurrency > 0 {
		g.SetLimit(e.maxConcurrency)
	}
	for i, c := range checkers {
		g.Go(func() error {
			outcomes[i] = e.run(ctx, logger, c)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func (e *Executor) run(ctx context.Context, logger observe.Logger, c Checker) RawOutcome {
	name := c.Name()
	start := time.Now()

	var sig Signal
	if e.middleware != nil {
		exec := e.middleware.Wrap(func(ctx context.Context, _ observe.CheckMeta) error {
			sig = e.call(ctx, logger, c)
			return signalError(sig)
		})
		_ = exec(ctx, checkMeta(c))
	} else {
		sig = e.call(ctx, logger, c)
	}

	elapsed := time.Since(start).Microseconds()
	if elapsed < 0 {
		elapsed = 0
	}

	return RawOutcome{
		Name:          name,
		ElapsedMicros: elapsed,
		Signal:        classify(sig),
	}
}

func (e *Executor) call(ctx context.Context, logger observe.Logger, c Checker) Signal {
	if e.timeout == nil {
		return e.invoke(ctx, logger, c)
	}

	result := make(chan Signal, 1)
	err := e.timeout.Execute(ctx, func(ctx context.Context) error {
		result <- e.invoke(ctx, logger, c)
		return nil
	})

	switch {
	case err == nil:
		return <-result
	case errors.Is(err, resilience.ErrTimeout):
		logger.Warn(ctx, "check timed out",
			observe.Field{Key: "check", Value: c.Name()},
			observe.Field{Key: "timeout", Value: e.timeout.Config().Timeout.String()},
		)
		return Failure{Reason: fmt.Errorf("%w after %s", ErrCheckTimeout, e.timeout.Config().Timeout)}
	default:
		return Failure{Reason: err.Error()}
	}
}

// invoke calls the check inside a recover boundary.
func (e *Executor) invoke(ctx context.Context, logger observe.Logger, c Checker) (sig Signal) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx, "check panicked",
				observe.Field{Key: "check", Value: c.Name()},
				observe.Field{Key: "panic", Value: fmt.Sprint(r)},
				observe.Field{Key: "stack", Value: string(debug.Stack())},
			)
			sig = Unspecified{}
		}
	}()
	return c.Check(ctx)
}

// typed is implemented by checkers that report a probe type.
type typed interface {
	Type() string
}

func checkMeta(c Checker) observe.CheckMeta {
	meta := observe.CheckMeta{Name: c.Name()}
	if t, ok := c.(typed); ok {
		meta.Type = t.Type()
	}
	return meta
}

func classify(sig Signal) Signal {
	switch s := deref(sig).(type) {
	case OK:
		return s
	case Failure:
		if !hasReason(s.Reason) {
			return Unspecified{}
		}
		return s
	case Unspecified:
		return s
	default:
		return Unspecified{}
	}
}

// deref unwraps pointer variants so &OK{} and OK{} classify alike.
func deref(sig Signal) Signal {
	switch s := sig.(type) {
	case *OK:
		if s != nil {
			return *s
		}
	case *Failure:
		if s != nil {
			return *s
		}
	case *Unspecified:
		if s != nil {
			return *s
		}
	default:
		return sig
	}
	return nil
}

// signalError converts a signal into an error for telemetry.
func signalError(sig Signal) error {
	switch s := deref(sig).(type) {
	case OK:
		return nil
	case Failure:
		if !hasReason(s.Reason) {
			return ErrUnspecified
		}
		return fmt.Errorf("%v", s.Reason)
	default:
		return ErrUnspecified
	}
}

func newCycleID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}
