package health

import (
	"context"
	"fmt"

	"github.com/jonwraymond/healthops/observe"
)

// Reporting is the surface the HTTP handler serves.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: methods fail only when the document cannot be serialized.
type Reporting interface {
	// Report runs all checks and returns the encoded document.
	Report(ctx context.Context) (Document, error)

	// Liveness returns the encoded liveness document.
	Liveness() ([]byte, error)

	// Environment returns the encoded environment metadata.
	Environment(ctx context.Context) ([]byte, error)

	// ContentType returns the media type of every document.
	ContentType() string
}

// Document is an encoded checks document.
type Document struct {
	// Body is the serialized list of formatted outcomes.
	Body []byte

	// Healthy is true when every check passed.
	Healthy bool
}

// ReporterOption configures a Reporter.
type ReporterOption func(*Reporter)

// WithExecutor sets the executor. Default: sequential NewExecutor().
func WithExecutor(e *Executor) ReporterOption {
	return func(r *Reporter) {
		if e != nil {
			r.executor = e
		}
	}
}

// WithFormatter sets the formatter.
func WithFormatter(f Formatter) ReporterOption {
	return func(r *Reporter) {
		r.formatter = f
	}
}

// WithEncoder sets the document encoder. Default: JSONEncoder.
func WithEncoder(enc Encoder) ReporterOption {
	return func(r *Reporter) {
		if enc != nil {
			r.encoder = enc
		}
	}
}

// WithEnvironment sets the environment collector.
// Default: a RuntimeEnvironment with no service name.
func WithEnvironment(env EnvironmentCollector) ReporterOption {
	return func(r *Reporter) {
		if env != nil {
			r.env = env
		}
	}
}

// WithReporterLogger sets the logger used for encoding failures.
func WithReporterLogger(l observe.Logger) ReporterOption {
	return func(r *Reporter) {
		if l != nil {
			r.logger = l
		}
	}
}

// Reporter runs a registry through the executor and formatter and encodes
// the resulting document.
type Reporter struct {
	registry  *Registry
	executor  *Executor
	formatter Formatter
	encoder   Encoder
	env       EnvironmentCollector
	logger    observe.Logger
}

// NewReporter creates a reporter for registry.
func NewReporter(registry *Registry, opts ...ReporterOption) *Reporter {
	r := &Reporter{
		registry: registry,
		executor: NewExecutor(),
		encoder:  JSONEncoder{},
		env:      NewRuntimeEnvironment("", ""),
		logger:   observe.NopLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Registry returns the registry this reporter runs.
func (r *Reporter) Registry() *Registry {
	return r.registry
}

// Outcomes runs every check and returns the formatted outcomes in
// registration order.
func (r *Reporter) Outcomes(ctx context.Context) []FormattedOutcome {
	raw := r.executor.Execute(ctx, r.registry)
	out := make([]FormattedOutcome, len(raw))
	for i, o := range raw {
		out[i] = r.formatter.Format(o)
	}
	return out
}

// Report runs every check and encodes the document.
func (r *Reporter) Report(ctx context.Context) (Document, error) {
	outcomes := r.Outcomes(ctx)
	body, err := r.encode(ctx, outcomes)
	if err != nil {
		return Document{}, err
	}
	return Document{Body: body, Healthy: Healthy(outcomes)}, nil
}

// Liveness returns the fixed liveness document {"status":"ok"}.
func (r *Reporter) Liveness() ([]byte, error) {
	return r.encode(context.Background(), LivenessDocument())
}

// Environment returns the encoded environment metadata.
func (r *Reporter) Environment(ctx context.Context) ([]byte, error) {
	return r.encode(ctx, r.env.Collect(ctx))
}

// ContentType returns the encoder's media type.
func (r *Reporter) ContentType() string {
	return r.encoder.ContentType()
}

func (r *Reporter) encode(ctx context.Context, v any) ([]byte, error) {
	body, err := r.encoder.Encode(v)
	if err != nil {
		r.logger.Error(ctx, "failed to encode document", observe.Field{Key: "error", Value: err.Error()})
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}
	return body, nil
}

// LivenessDocument returns the liveness payload.
func LivenessDocument() map[string]Status {
	return map[string]Status{"status": StatusOK}
}

// Healthy reports whether every outcome passed.
func Healthy(outcomes []FormattedOutcome) bool {
	for _, o := range outcomes {
		if !o.OK() {
			return false
		}
	}
	return true
}

var _ Reporting = (*Reporter)(nil)
