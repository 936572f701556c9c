package health

import (
	"fmt"
	"strings"
)

// ReservedName is the document key that sits next to every check's entry.
// A check may not use it as its name.
const ReservedName = "time"

// Registry is an ordered, immutable collection of uniquely named checks.
type Registry struct {
	checkers []Checker
	index    map[string]int
}

// NewRegistry creates a registry holding checkers in the given order.
func NewRegistry(checkers ...Checker) (*Registry, error) {
	r := &Registry{
		checkers: make([]Checker, 0, len(checkers)),
		index:    make(map[string]int, len(checkers)),
	}

	for i, c := range checkers {
		if c == nil {
			return nil, fmt.Errorf("%w: checker at position %d is nil", ErrInvalidCheck, i)
		}
		name := c.Name()
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("%w: checker at position %d has no name", ErrInvalidCheck, i)
		}
		if name == ReservedName {
			return nil, fmt.Errorf("%w: %q", ErrReservedName, name)
		}
		if _, exists := r.index[name]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateCheck, name)
		}
		r.index[name] = len(r.checkers)
		r.checkers = append(r.checkers, c)
	}

	return r, nil
}

// MustRegistry is like NewRegistry but panics on invalid input.
// It is intended for static registries built at program start.
func MustRegistry(checkers ...Checker) *Registry {
	r, err := NewRegistry(checkers...)
	if err != nil {
		panic(err)
	}
	return r
}

// Len returns the number of registered checks.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.checkers)
}

// Names returns the check names in registration order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, len(r.checkers))
	for i, c := range r.checkers {
		names[i] = c.Name()
	}
	return names
}

// Checkers returns a copy of the registered checks in registration order.
func (r *Registry) Checkers() []Checker {
	if r == nil {
		return nil
	}
	out := make([]Checker, len(r.checkers))
	copy(out, r.checkers)
	return out
}

// Lookup returns the check registered under name.
func (r *Registry) Lookup(name string) (Checker, bool) {
	if r == nil {
		return nil, false
	}
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.checkers[i], true
}
