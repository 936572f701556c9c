package resilience

import (
	"context"
	"sync"
	"time"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed means probes run normally.
	StateClosed State = iota
	// StateOpen means probes are short-circuited with ErrCircuitOpen.
	StateOpen
	// StateHalfOpen means a limited number of trial probes may run.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig configures the circuit breaker.
type CircuitBreakerConfig struct {
	// Name identifies the guarded dependency in state change callbacks.
	Name string

	// MaxFailures is the number of consecutive failures that opens the circuit.
	// Default: 5
	MaxFailures int

	// ResetTimeout is how long the circuit stays open before a trial probe.
	// Default: 30 seconds
	ResetTimeout time.Duration

	// HalfOpenMaxRequests is the number of concurrent trial probes allowed
	// while half-open.
	// Default: 1
	HalfOpenMaxRequests int

	// OnStateChange is called after the state changes. It runs without the
	// breaker's lock held, so it may call State.
	OnStateChange func(name string, from, to State)

	// IsFailure reports whether err counts against the circuit.
	// Default: every non-nil error.
	IsFailure func(err error) bool
}

// CircuitBreaker stops probing a dependency after repeated failures.
type CircuitBreaker struct {
	config CircuitBreakerConfig

	mu            sync.Mutex
	state         State
	failures      int
	openedAt      time.Time
	halfOpenCount int
	lastErr       error
}

// NewCircuitBreaker creates a new circuit breaker.
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	if config.MaxFailures <= 0 {
		config.MaxFailures = 5
	}
	if config.ResetTimeout <= 0 {
		config.ResetTimeout = 30 * time.Second
	}
	if config.HalfOpenMaxRequests <= 0 {
		config.HalfOpenMaxRequests = 1
	}
	if config.IsFailure == nil {
		config.IsFailure = func(err error) bool { return err != nil }
	}
	return &CircuitBreaker{config: config}
}

type transition struct {
	from, to State
}

// Execute runs op unless the circuit is open.
func (cb *CircuitBreaker) Execute(ctx context.Context, op func(context.Context) error) error {
	changes, err := cb.before()
	cb.notify(changes)
	if err != nil {
		return err
	}

	err = op(ctx)
	cb.notify(cb.after(err))
	return err
}

// State returns the current circuit state.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	state, changes := cb.currentLocked()
	cb.mu.Unlock()
	cb.notify(changes)
	return state
}

// Reset closes the circuit and clears the failure count.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	var changes []transition
	if cb.state != StateClosed {
		changes = append(changes, transition{cb.state, StateClosed})
	}
	cb.state = StateClosed
	cb.failures = 0
	cb.halfOpenCount = 0
	cb.lastErr = nil
	cb.mu.Unlock()
	cb.notify(changes)
}

// Snapshot returns the current breaker statistics.
func (cb *CircuitBreaker) Snapshot() CircuitSnapshot {
	cb.mu.Lock()
	state, changes := cb.currentLocked()
	snap := CircuitSnapshot{
		Name:     cb.config.Name,
		State:    state,
		Failures: cb.failures,
		OpenedAt: cb.openedAt,
		LastErr:  cb.lastErr,
	}
	cb.mu.Unlock()
	cb.notify(changes)
	return snap
}

func (cb *CircuitBreaker) before() ([]transition, error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	state, changes := cb.currentLocked()
	switch state {
	case StateOpen:
		return changes, ErrCircuitOpen
	case StateHalfOpen:
		if cb.halfOpenCount >= cb.config.HalfOpenMaxRequests {
			return changes, ErrCircuitOpen
		}
		cb.halfOpenCount++
	}
	return changes, nil
}

func (cb *CircuitBreaker) after(err error) []transition {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	failed := cb.config.IsFailure(err)
	if failed {
		cb.lastErr = err
	}

	from := cb.state
	switch cb.state {
	case StateClosed:
		if !failed {
			cb.failures = 0
			return nil
		}
		cb.failures++
		if cb.failures >= cb.config.MaxFailures {
			cb.openLocked()
		}
	case StateHalfOpen:
		cb.halfOpenCount--
		if failed {
			cb.openLocked()
		} else {
			cb.state = StateClosed
			cb.failures = 0
		}
	}

	if from != cb.state {
		return []transition{{from, cb.state}}
	}
	return nil
}

func (cb *CircuitBreaker) openLocked() {
	cb.state = StateOpen
	cb.openedAt = time.Now()
	cb.halfOpenCount = 0
}

// currentLocked moves an open circuit to half-open once the reset timeout
// has elapsed.
func (cb *CircuitBreaker) currentLocked() (State, []transition) {
	if cb.state == StateOpen && time.Since(cb.openedAt) >= cb.config.ResetTimeout {
		cb.state = StateHalfOpen
		cb.halfOpenCount = 0
		return cb.state, []transition{{StateOpen, StateHalfOpen}}
	}
	return cb.state, nil
}

func (cb *CircuitBreaker) notify(changes []transition) {
	if cb.config.OnStateChange == nil {
		return
	}
	for _, c := range changes {
		cb.config.OnStateChange(cb.config.Name, c.from, c.to)
	}
}

// CircuitSnapshot contains circuit breaker statistics.
type CircuitSnapshot struct {
	Name     string
	State    State
	Failures int
	OpenedAt time.Time
	LastErr  error
}
