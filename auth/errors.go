package auth

import "errors"

// Sentinel errors for authentication and authorization.
var (
	// Authentication errors
	ErrMissingCredentials = errors.New("auth: missing credentials")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrTokenExpired       = errors.New("auth: token expired")
	ErrTokenMalformed     = errors.New("auth: token malformed")
	ErrNoAuthenticators   = errors.New("auth: no authenticators configured")
	ErrWeakSecret         = errors.New("auth: jwt secret too short")

	// Authorization errors
	ErrForbidden = errors.New("auth: access denied")
)
