package checks

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jonwraymond/healthops/config"
	"github.com/jonwraymond/healthops/health"
	"github.com/jonwraymond/healthops/observe"
	"github.com/jonwraymond/healthops/resilience"
)

// Option configures Build.
type Option func(*buildOptions)

type buildOptions struct {
	logger observe.Logger
	client *http.Client
}

// WithLogger logs retries and circuit state changes.
func WithLogger(l observe.Logger) Option {
	return func(o *buildOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithHTTPClient sets the client used by http checks.
func WithHTTPClient(c *http.Client) Option {
	return func(o *buildOptions) {
		o.client = c
	}
}

// Build creates the guarded check described by cfg.
func Build(cfg config.CheckConfig, opts ...Option) (*Guarded, error) {
	o := buildOptions{logger: observe.NopLogger()}
	for _, opt := range opts {
		opt(&o)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidConfig, cfg.Name, err)
	}

	prober, err := newProber(cfg, o)
	if err != nil {
		return nil, err
	}
	return Guard(prober, guardExecutor(cfg, o.logger)), nil
}

// BuildAll builds every check in order. On error, checks built so far are
// closed.
func BuildAll(cfgs []config.CheckConfig, opts ...Option) ([]health.Checker, error) {
	checkers := make([]health.Checker, 0, len(cfgs))
	for _, cfg := range cfgs {
		c, err := Build(cfg, opts...)
		if err != nil {
			_ = CloseAll(checkers...)
			return nil, err
		}
		checkers = append(checkers, c)
	}
	return checkers, nil
}

func newProber(cfg config.CheckConfig, o buildOptions) (Prober, error) {
	switch cfg.Type {
	case config.CheckHTTP:
		return NewHTTPChecker(HTTPCheckerConfig{
			Name:           cfg.Name,
			URL:            cfg.URL,
			ExpectedStatus: cfg.ExpectedStatus,
			Headers:        cfg.Headers,
			Client:         o.client,
		})
	case config.CheckTCP:
		return NewTCPChecker(TCPCheckerConfig{Name: cfg.Name, Address: cfg.Address})
	case config.CheckMemory:
		return NewMemoryChecker(MemoryCheckerConfig{Name: cfg.Name, MaxRatio: cfg.MaxRatio}), nil
	case config.CheckPostgres:
		return NewPostgresChecker(PostgresCheckerConfig{Name: cfg.Name, DSN: cfg.DSN})
	case config.CheckObjectStore:
		return NewObjectStoreChecker(ObjectStoreCheckerConfig{
			Name:      cfg.Name,
			Endpoint:  cfg.Endpoint,
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			Secure:    cfg.Secure,
		})
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidConfig, cfg.Type)
	}
}

// guardExecutor composes the check's circuit, retry and timeout.
func guardExecutor(cfg config.CheckConfig, logger observe.Logger) *resilience.Executor {
	var opts []resilience.ExecutorOption

	if cfg.Circuit != nil {
		opts = append(opts, resilience.WithCircuitBreaker(resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Name:         cfg.Name,
			MaxFailures:  cfg.Circuit.MaxFailures,
			ResetTimeout: cfg.Circuit.ResetTimeout,
			OnStateChange: func(name string, from, to resilience.State) {
				logger.Warn(context.Background(), "circuit state changed",
					observe.Field{Key: "check", Value: name},
					observe.Field{Key: "from", Value: from.String()},
					observe.Field{Key: "to", Value: to.String()},
				)
			},
		})))
	}

	if cfg.Retry != nil {
		opts = append(opts, resilience.WithRetry(resilience.NewRetry(resilience.RetryConfig{
			MaxAttempts:  cfg.Retry.MaxAttempts,
			InitialDelay: cfg.Retry.InitialDelay,
			MaxDelay:     cfg.Retry.MaxDelay,
			Strategy:     cfg.Retry.Backoff,
			Jitter:       cfg.Retry.Jitter,
			OnRetry: func(attempt int, err error, delay time.Duration) {
				logger.Debug(context.Background(), "retrying check",
					observe.Field{Key: "check", Value: cfg.Name},
					observe.Field{Key: "attempt", Value: attempt},
					observe.Field{Key: "error", Value: err},
					observe.Field{Key: "delay", Value: delay.String()},
				)
			},
		})))
	}

	opts = append(opts, resilience.WithTimeout(cfg.Timeout))
	return resilience.NewExecutor(opts...)
}
