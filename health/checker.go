package health

import (
	"context"
	"errors"
)

// Signal is the classified result of a single check invocation.
//
// The set of variants is closed: OK, Failure and Unspecified are the only
// implementations.
type Signal interface {
	signal()
}

// OK signals that the check passed.
type OK struct{}

// Failure signals that the check failed for a known reason.
// Reason is reported verbatim to callers.
type Failure struct {
	Reason any
}

// Unspecified signals a failure without a usable reason, such as a panic.
type Unspecified struct{}

func (OK) signal()          {}
func (Failure) signal()     {}
func (Unspecified) signal() {}

// Fail returns a Failure carrying reason, or Unspecified when reason is nil or
// an empty string.
func Fail(reason any) Signal {
	if !hasReason(reason) {
		return Unspecified{}
	}
	return Failure{Reason: reason}
}

// FromError maps an error to a Signal.
// A nil error is OK. ErrUnspecified, or an error with an empty message, is
// Unspecified. Any other error is a Failure carrying err.Error().
func FromError(err error) Signal {
	if err == nil {
		return OK{}
	}
	if errors.Is(err, ErrUnspecified) || err.Error() == "" {
		return Unspecified{}
	}
	return Failure{Reason: err.Error()}
}

func hasReason(reason any) bool {
	switch r := reason.(type) {
	case nil:
		return false
	case string:
		return r != ""
	default:
		return true
	}
}

// Checker is the interface for health checks.
type Checker interface {
	// Name returns the unique name of this check.
	Name() string

	// Check performs the health check.
	Check(ctx context.Context) Signal
}

// CheckFunc is the function form of a check.
type CheckFunc func(ctx context.Context) Signal

type funcChecker struct {
	name string
	fn   CheckFunc
}

// NewCheck creates a Checker from a function returning a Signal.
func NewCheck(name string, fn CheckFunc) Checker {
	return &funcChecker{name: name, fn: fn}
}

func (c *funcChecker) Name() string {
	return c.name
}

func (c *funcChecker) Check(ctx context.Context) Signal {
	return c.fn(ctx)
}

// NewErrorCheck creates a Checker from a function returning an error.
// The error is mapped with FromError.
func NewErrorCheck(name string, fn func(ctx context.Context) error) Checker {
	return &funcChecker{
		name: name,
		fn: func(ctx context.Context) Signal {
			return FromError(fn(ctx))
		},
	}
}
