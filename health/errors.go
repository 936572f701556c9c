package health

import "errors"

var (
	// ErrInvalidCheck indicates a nil checker or a checker with an empty name.
	ErrInvalidCheck = errors.New("health: invalid check")

	// ErrDuplicateCheck indicates two checkers share a name.
	ErrDuplicateCheck = errors.New("health: duplicate check name")

	// ErrReservedName indicates a checker uses a name reserved by the wire format.
	ErrReservedName = errors.New("health: reserved check name")

	// ErrCheckTimeout indicates a check did not finish within the executor timeout.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrEncode indicates the report document could not be serialized.
	ErrEncode = errors.New("health: encode report")

	// ErrUnknownEncoder indicates an encoder name that EncoderByName does not know.
	ErrUnknownEncoder = errors.New("health: unknown encoder")

	// ErrUnspecified can be returned by an error-returning check to signal a
	// failure without a usable reason.
	ErrUnspecified = errors.New("health: unspecified failure")
)
