package checks

import "errors"

// ErrInvalidConfig is returned when a check cannot be built from its
// configuration.
var ErrInvalidConfig = errors.New("checks: invalid configuration")
