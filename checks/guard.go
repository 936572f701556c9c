package checks

import (
	"context"
	"errors"
	"io"

	"go.uber.org/multierr"

	"github.com/jonwraymond/healthops/health"
	"github.com/jonwraymond/healthops/resilience"
)

// Prober probes a single dependency.
type Prober interface {
	// Name returns the check name.
	Name() string

	// Type returns the probe type, such as "http" or "postgres".
	Type() string

	// Probe returns nil when the dependency is healthy.
	Probe(ctx context.Context) error
}

// Guarded adapts a Prober to health.Checker.
//
// Contract:
//   - Concurrency: safe for concurrent use if the Prober is.
//   - Errors: a probe error becomes a Failure carrying its message. A probe
//     that panics under a timeout yields Unspecified.
type Guarded struct {
	prober Prober
	exec   *resilience.Executor
}

// Guard wraps p. A nil or empty executor runs the probe directly.
func Guard(p Prober, exec *resilience.Executor) *Guarded {
	if exec != nil && exec.Empty() {
		exec = nil
	}
	return &Guarded{prober: p, exec: exec}
}

// Name returns the wrapped probe's name.
func (g *Guarded) Name() string { return g.prober.Name() }

// Type returns the wrapped probe's type.
func (g *Guarded) Type() string { return g.prober.Type() }

// Prober returns the wrapped probe.
func (g *Guarded) Prober() Prober { return g.prober }

// Check runs the probe and classifies its result.
func (g *Guarded) Check(ctx context.Context) health.Signal {
	if g.exec == nil {
		return health.FromError(g.prober.Probe(ctx))
	}
	err := g.exec.Execute(ctx, g.prober.Probe)
	if errors.Is(err, resilience.ErrPanic) {
		return health.Unspecified{}
	}
	return health.FromError(err)
}

// Close releases the probe's resources, if it holds any.
func (g *Guarded) Close() error {
	if c, ok := g.prober.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// CloseAll closes every checker that implements io.Closer.
func CloseAll(checkers ...health.Checker) error {
	var err error
	for _, c := range checkers {
		if closer, ok := c.(io.Closer); ok {
			err = multierr.Append(err, closer.Close())
		}
	}
	return err
}

var _ health.Checker = (*Guarded)(nil)
