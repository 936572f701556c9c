// Package app assembles the health pipeline from a loaded configuration.
package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/jonwraymond/healthops/auth"
	"github.com/jonwraymond/healthops/cache"
	"github.com/jonwraymond/healthops/checks"
	"github.com/jonwraymond/healthops/config"
	"github.com/jonwraymond/healthops/health"
	"github.com/jonwraymond/healthops/observe"
)

// cacheScope names the cached checks document.
const cacheScope = "checks"

// App is a wired health service: observer, checks, reporting and routes.
type App struct {
	cfg       *config.Config
	observer  observe.Observer
	logger    observe.Logger
	checkers  []health.Checker
	reporter  *health.Reporter
	reporting health.Reporting
	cached    *cache.Reporter
	handler   http.Handler
}

// New builds an App. Close releases what New acquired, including on a
// partial failure inside New.
func New(ctx context.Context, cfg *config.Config, version string) (_ *App, err error) {
	a := &App{cfg: cfg}
	defer func() {
		if err != nil {
			_ = a.Close(context.Background())
		}
	}()

	obsCfg := cfg.Observe
	obsCfg.Version = version
	if a.observer, err = observe.NewObserver(ctx, obsCfg); err != nil {
		return nil, fmt.Errorf("observer: %w", err)
	}
	a.logger = a.observer.Logger()

	middleware, err := observe.MiddlewareFromObserver(a.observer)
	if err != nil {
		return nil, fmt.Errorf("middleware: %w", err)
	}

	if a.checkers, err = checks.BuildAll(cfg.Checks, checks.WithLogger(a.logger)); err != nil {
		return nil, err
	}
	registry, err := health.NewRegistry(a.checkers...)
	if err != nil {
		return nil, err
	}

	encoder, err := health.EncoderByName(cfg.Report.Encoder)
	if err != nil {
		return nil, err
	}

	execOpts := append(cfg.Execution.Options(),
		health.WithMiddleware(middleware),
		health.WithLogger(a.logger),
	)
	a.reporter = health.NewReporter(registry,
		health.WithExecutor(health.NewExecutor(execOpts...)),
		health.WithFormatter(health.Formatter{UnknownReason: cfg.Report.UnknownReason}),
		health.WithEncoder(encoder),
		health.WithEnvironment(environment(cfg, version)),
		health.WithReporterLogger(a.logger),
	)
	a.reporting = a.reporter

	if cfg.Report.CacheTTL > 0 {
		policy := cache.Policy{DefaultTTL: cfg.Report.CacheTTL, MaxTTL: cfg.Report.CacheTTL}
		a.cached, err = cache.NewReporter(a.reporter, cache.NewMemoryCache(policy), policy, nil, cacheScope,
			cache.WithParams(map[string]string{"encoder": cfg.Report.Encoder}),
			cache.WithLogger(a.logger),
		)
		if err != nil {
			return nil, err
		}
		a.reporting = a.cached
	}

	if a.handler, err = a.routes(); err != nil {
		return nil, err
	}

	a.logger.Info(ctx, "health service ready",
		observe.Field{Key: "checks", Value: registry.Names()},
		observe.Field{Key: "base_path", Value: cfg.Server.BasePath},
		observe.Field{Key: "encoder", Value: cfg.Report.Encoder},
	)
	return a, nil
}

func environment(cfg *config.Config, version string) health.EnvironmentCollector {
	rt := health.NewRuntimeEnvironment(cfg.Observe.ServiceName, version)
	if len(cfg.Report.Environment) == 0 {
		return rt
	}
	static := make(health.StaticEnvironment, len(cfg.Report.Environment))
	for k, v := range cfg.Report.Environment {
		static[k] = v
	}
	return health.MergedEnvironment{rt, static}
}

func (a *App) routes() (http.Handler, error) {
	cfg := a.cfg
	opts := []health.HandlerOption{
		health.WithFailureStatus(cfg.Report.FailureStatus),
		health.WithRequestTimeout(cfg.Server.RequestTimeout),
		health.WithHandlerLogger(a.logger),
	}
	if rl := cfg.Report.RateLimit.Limiter(); rl != nil {
		opts = append(opts, health.WithRateLimiter(rl))
	}
	if settings := cfg.Auth.Settings(); settings.Enabled() {
		authn, err := auth.Build(settings)
		if err != nil {
			return nil, fmt.Errorf("auth: %w", err)
		}
		guardOpts := []auth.MiddlewareOption{auth.WithMiddlewareLogger(a.logger)}
		if cfg.Auth.RequiredRole != "" {
			guardOpts = append(guardOpts, auth.WithRequiredRole(cfg.Auth.RequiredRole))
		}
		opts = append(opts, health.WithEnvironmentGuard(auth.Middleware(authn, guardOpts...)))
	}

	h := health.NewHandler(a.reporting, opts...)
	mux := http.NewServeMux()

	base := strings.TrimSuffix(cfg.Server.BasePath, "/")
	if base == "" {
		mux.Handle("/", h)
	} else {
		stripped := http.StripPrefix(base, h)
		mux.Handle(base, stripped)
		mux.Handle(base+"/", stripped)
	}

	if a.MetricsEnabled() {
		mux.Handle(cfg.Server.MetricsPath, promhttp.Handler())
	}
	return mux, nil
}

// MetricsEnabled reports whether Prometheus metrics are served.
func (a *App) MetricsEnabled() bool {
	m := a.cfg.Observe.Metrics
	return a.cfg.Server.MetricsPath != "" && m.Enabled && strings.EqualFold(m.Exporter, "prometheus")
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler { return a.handler }

// Logger returns the configured logger.
func (a *App) Logger() observe.Logger { return a.logger }

// Reporting returns the reporting façade, cached when configured.
func (a *App) Reporting() health.Reporting { return a.reporting }

// Outcomes runs every check once and returns the formatted outcomes,
// bypassing the cache.
func (a *App) Outcomes(ctx context.Context) []health.FormattedOutcome {
	return a.reporter.Outcomes(ctx)
}

// Close releases check resources and flushes telemetry.
func (a *App) Close(ctx context.Context) error {
	var err error
	if len(a.checkers) > 0 {
		err = multierr.Append(err, checks.CloseAll(a.checkers...))
	}
	if a.observer != nil {
		err = multierr.Append(err, a.observer.Shutdown(ctx))
	}
	return err
}
