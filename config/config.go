package config

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"go.uber.org/multierr"

	"github.com/jonwraymond/healthops/auth"
	"github.com/jonwraymond/healthops/health"
	"github.com/jonwraymond/healthops/observe"
	"github.com/jonwraymond/healthops/resilience"
)

// EnvPrefix prefixes every environment override, e.g. HEALTHOPS_SERVER_ADDR.
const EnvPrefix = "HEALTHOPS"

// Check types understood by the checks package.
const (
	CheckHTTP        = "http"
	CheckTCP         = "tcp"
	CheckMemory      = "memory"
	CheckPostgres    = "postgres"
	CheckObjectStore = "objectstore"
)

// CheckTypes lists every supported check type.
var CheckTypes = []string{CheckHTTP, CheckTCP, CheckMemory, CheckPostgres, CheckObjectStore}

// Sentinel errors.
var (
	ErrInvalidConfig = errors.New("config: invalid configuration")
	ErrReadConfig    = errors.New("config: read configuration")
)

// Config is the full healthops configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Execution ExecutionConfig `yaml:"execution" envconfig:"EXECUTION"`
	Report    ReportConfig    `yaml:"report" envconfig:"REPORT"`
	Auth      AuthConfig      `yaml:"auth" envconfig:"AUTH"`
	Observe   observe.Config  `yaml:"observe" envconfig:"OBSERVE"`
	Checks    []CheckConfig   `yaml:"checks" ignored:"true"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr" envconfig:"ADDR"`

	// BasePath is where the health handler is mounted. Default: /health.
	BasePath string `yaml:"base_path" envconfig:"BASE_PATH"`

	// MetricsPath exposes Prometheus metrics when set and the metrics
	// exporter is prometheus.
	MetricsPath string `yaml:"metrics_path" envconfig:"METRICS_PATH"`

	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`

	// RequestTimeout bounds a single checks request. Zero means unbounded.
	RequestTimeout time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
}

// ExecutionConfig configures the check executor.
type ExecutionConfig struct {
	Parallel       bool          `yaml:"parallel" envconfig:"PARALLEL"`
	MaxConcurrency int           `yaml:"max_concurrency" envconfig:"MAX_CONCURRENCY"`
	CheckTimeout   time.Duration `yaml:"check_timeout" envconfig:"CHECK_TIMEOUT"`
}

// Options returns the executor options described by c.
func (c ExecutionConfig) Options() []health.ExecutorOption {
	var opts []health.ExecutorOption
	if c.Parallel {
		opts = append(opts, health.WithParallel(c.MaxConcurrency))
	}
	if c.CheckTimeout > 0 {
		opts = append(opts, health.WithCheckTimeout(c.CheckTimeout))
	}
	return opts
}

// ReportConfig configures document rendering and delivery.
type ReportConfig struct {
	Encoder       string            `yaml:"encoder" envconfig:"ENCODER"`
	UnknownReason string            `yaml:"unknown_reason" envconfig:"UNKNOWN_REASON"`
	FailureStatus int               `yaml:"failure_status" envconfig:"FAILURE_STATUS"`
	CacheTTL      time.Duration     `yaml:"cache_ttl" envconfig:"CACHE_TTL"`
	RateLimit     RateLimitConfig   `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
	Environment   map[string]string `yaml:"environment" envconfig:"ENVIRONMENT"`
}

// RateLimitConfig limits the checks route. Rate zero disables limiting.
type RateLimitConfig struct {
	Rate  float64 `yaml:"rate" envconfig:"RATE"`
	Burst int     `yaml:"burst" envconfig:"BURST"`
}

// Limiter returns the configured limiter, or nil when disabled.
func (c RateLimitConfig) Limiter() *resilience.RateLimiter {
	if c.Rate <= 0 {
		return nil
	}
	return resilience.NewRateLimiter(resilience.RateLimiterConfig{Rate: c.Rate, Burst: c.Burst})
}

// AuthConfig guards the environment route.
type AuthConfig struct {
	APIKeyHeader string        `yaml:"api_key_header" envconfig:"API_KEY_HEADER"`
	APIKeys      []auth.APIKey `yaml:"api_keys" ignored:"true"`
	JWTSecret    string        `yaml:"jwt_secret" envconfig:"JWT_SECRET"`
	JWTIssuer    string        `yaml:"jwt_issuer" envconfig:"JWT_ISSUER"`
	JWTAudience  string        `yaml:"jwt_audience" envconfig:"JWT_AUDIENCE"`
	RequiredRole string        `yaml:"required_role" envconfig:"REQUIRED_ROLE"`
}

// Settings converts c for auth.Build.
func (c AuthConfig) Settings() auth.Settings {
	return auth.Settings{
		APIKeyHeader: c.APIKeyHeader,
		APIKeys:      c.APIKeys,
		JWTSecret:    c.JWTSecret,
		JWT: auth.JWTConfig{
			Issuer:     c.JWTIssuer,
			Audience:   c.JWTAudience,
			RolesClaim: "roles",
		},
	}
}

// CheckConfig describes one built-in check. Fields beyond Name, Type and
// the guards apply to the types noted.
type CheckConfig struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`

	// Timeout bounds one probe. Default: 5s.
	Timeout time.Duration  `yaml:"timeout"`
	Retry   *RetryConfig   `yaml:"retry"`
	Circuit *CircuitConfig `yaml:"circuit"`

	// http
	URL            string            `yaml:"url"`
	ExpectedStatus int               `yaml:"expected_status"`
	Headers        map[string]string `yaml:"headers"`

	// tcp
	Address string `yaml:"address"`

	// memory
	MaxRatio float64 `yaml:"max_ratio"`

	// postgres
	DSN string `yaml:"dsn"`

	// objectstore
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Secure    bool   `yaml:"secure"`
}

// RetryConfig retries a failing probe before reporting it.
type RetryConfig struct {
	MaxAttempts  int                        `yaml:"max_attempts"`
	Backoff      resilience.BackoffStrategy `yaml:"backoff"`
	InitialDelay time.Duration              `yaml:"initial_delay"`
	MaxDelay     time.Duration              `yaml:"max_delay"`
	Jitter       bool                       `yaml:"jitter"`
}

// CircuitConfig stops probing a dependency after repeated failures.
type CircuitConfig struct {
	MaxFailures  int           `yaml:"max_failures"`
	ResetTimeout time.Duration `yaml:"reset_timeout"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	var c Config
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	setDefault(&c.Server.Addr, ":8080")
	setDefault(&c.Server.BasePath, "/health")
	setDefault(&c.Server.ReadTimeout, 5*time.Second)
	setDefault(&c.Server.WriteTimeout, 30*time.Second)
	setDefault(&c.Server.ShutdownTimeout, 10*time.Second)

	setDefault(&c.Report.Encoder, "json")
	setDefault(&c.Report.UnknownReason, health.UnknownReason)
	setDefault(&c.Report.FailureStatus, http.StatusServiceUnavailable)
	if c.Report.RateLimit.Rate > 0 {
		setDefault(&c.Report.RateLimit.Burst, 1)
	}

	setDefault(&c.Observe.ServiceName, "healthops")
	setDefault(&c.Observe.Tracing.Exporter, "none")
	setDefault(&c.Observe.Metrics.Exporter, "none")
	setDefault(&c.Observe.Logging.Level, "info")

	for i := range c.Checks {
		setDefault(&c.Checks[i].Timeout, 5*time.Second)
		if c.Checks[i].Type == CheckHTTP {
			setDefault(&c.Checks[i].ExpectedStatus, http.StatusOK)
		}
		if c.Checks[i].Type == CheckMemory {
			setDefault(&c.Checks[i].MaxRatio, 0.9)
		}
	}
}

func setDefault[T comparable](field *T, value T) {
	var zero T
	if *field == zero {
		*field = value
	}
}

// Validate reports every problem in c.
func (c *Config) Validate() error {
	var err error

	if c.Server.Addr == "" {
		err = multierr.Append(err, errors.New("server.addr is required"))
	}
	if !strings.HasPrefix(c.Server.BasePath, "/") {
		err = multierr.Append(err, fmt.Errorf("server.base_path %q must start with /", c.Server.BasePath))
	}
	if c.Server.MetricsPath != "" && !strings.HasPrefix(c.Server.MetricsPath, "/") {
		err = multierr.Append(err, fmt.Errorf("server.metrics_path %q must start with /", c.Server.MetricsPath))
	}
	for name, d := range map[string]time.Duration{
		"server.read_timeout":     c.Server.ReadTimeout,
		"server.write_timeout":    c.Server.WriteTimeout,
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
		"server.request_timeout":  c.Server.RequestTimeout,
		"execution.check_timeout": c.Execution.CheckTimeout,
		"report.cache_ttl":        c.Report.CacheTTL,
	} {
		if d < 0 {
			err = multierr.Append(err, fmt.Errorf("%s must not be negative", name))
		}
	}

	if c.Execution.MaxConcurrency < 0 {
		err = multierr.Append(err, errors.New("execution.max_concurrency must not be negative"))
	}

	if _, e := health.EncoderByName(c.Report.Encoder); e != nil {
		err = multierr.Append(err, fmt.Errorf("report.encoder: %w", e))
	}
	if c.Report.FailureStatus < 200 || c.Report.FailureStatus > 599 {
		err = multierr.Append(err, fmt.Errorf("report.failure_status %d is not an HTTP status", c.Report.FailureStatus))
	}
	if c.Report.RateLimit.Rate < 0 || c.Report.RateLimit.Burst < 0 {
		err = multierr.Append(err, errors.New("report.rate_limit values must not be negative"))
	}

	if settings := c.Auth.Settings(); settings.Enabled() {
		if _, e := auth.Build(settings); e != nil {
			err = multierr.Append(err, fmt.Errorf("auth: %w", e))
		}
	} else if c.Auth.RequiredRole != "" {
		err = multierr.Append(err, errors.New("auth.required_role needs api_keys or jwt_secret"))
	}

	if e := c.Observe.Validate(); e != nil {
		err = multierr.Append(err, fmt.Errorf("observe: %w", e))
	}

	seen := make(map[string]bool, len(c.Checks))
	for i, chk := range c.Checks {
		if e := chk.Validate(); e != nil {
			err = multierr.Append(err, fmt.Errorf("checks[%d]: %w", i, e))
		}
		if seen[chk.Name] {
			err = multierr.Append(err, fmt.Errorf("checks[%d]: %w: %q", i, health.ErrDuplicateCheck, chk.Name))
		}
		seen[chk.Name] = true
	}

	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Validate reports every problem in a single check description.
func (c CheckConfig) Validate() error {
	var err error

	switch strings.TrimSpace(c.Name) {
	case "":
		err = multierr.Append(err, errors.New("name is required"))
	case health.ReservedName:
		err = multierr.Append(err, fmt.Errorf("%w: %q", health.ErrReservedName, c.Name))
	}
	if c.Timeout < 0 {
		err = multierr.Append(err, errors.New("timeout must not be negative"))
	}

	require := func(field, value string) {
		if strings.TrimSpace(value) == "" {
			err = multierr.Append(err, fmt.Errorf("%s check requires %s", c.Type, field))
		}
	}
	switch c.Type {
	case CheckHTTP:
		require("url", c.URL)
		if c.ExpectedStatus < 100 || c.ExpectedStatus > 599 {
			err = multierr.Append(err, fmt.Errorf("expected_status %d is not an HTTP status", c.ExpectedStatus))
		}
	case CheckTCP:
		require("address", c.Address)
	case CheckMemory:
		if c.MaxRatio <= 0 || c.MaxRatio > 1 {
			err = multierr.Append(err, fmt.Errorf("max_ratio %v must be in (0, 1]", c.MaxRatio))
		}
	case CheckPostgres:
		require("dsn", c.DSN)
	case CheckObjectStore:
		require("endpoint", c.Endpoint)
		require("bucket", c.Bucket)
	default:
		err = multierr.Append(err, fmt.Errorf("unknown type %q, want one of %v", c.Type, CheckTypes))
	}

	if c.Retry != nil && c.Retry.MaxAttempts < 1 {
		err = multierr.Append(err, errors.New("retry.max_attempts must be at least 1"))
	}
	if c.Circuit != nil && c.Circuit.MaxFailures < 1 {
		err = multierr.Append(err, errors.New("circuit.max_failures must be at least 1"))
	}
	return err
}

// HasType reports whether a check of type t is configured.
func (c *Config) HasType(t string) bool {
	return slices.ContainsFunc(c.Checks, func(chk CheckConfig) bool { return chk.Type == t })
}
