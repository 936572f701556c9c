// Package auth guards health routes that expose deployment detail.
//
// It authenticates requests by API key (hashed, in-memory store) or by an
// HMAC-signed JWT, and Middleware turns the result into 401/403 responses
// with the identity placed in the request context. The liveness and checks
// routes are meant to stay open; the environment route is the one to wrap.
package auth
