package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/jonwraymond/healthops/observe"
)

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middleware)

// WithRequiredRole rejects authenticated identities lacking role with 403.
func WithRequiredRole(role string) MiddlewareOption {
	return func(m *middleware) {
		m.role = role
	}
}

// WithRealm sets the realm advertised in WWW-Authenticate. Default: "healthops".
func WithRealm(realm string) MiddlewareOption {
	return func(m *middleware) {
		if realm != "" {
			m.realm = realm
		}
	}
}

// WithMiddlewareLogger logs rejected requests.
func WithMiddlewareLogger(l observe.Logger) MiddlewareOption {
	return func(m *middleware) {
		if l != nil {
			m.logger = l
		}
	}
}

type middleware struct {
	authn  Authenticator
	role   string
	realm  string
	logger observe.Logger
}

// Middleware returns HTTP middleware that authenticates every request with
// authn. Missing or invalid credentials get 401 with a WWW-Authenticate
// challenge; authenticator errors get 500. On success the identity is
// attached to the request context.
//
// Usage:
//
//	health.NewHandler(r, health.WithEnvironmentGuard(auth.Middleware(authn)))
func Middleware(authn Authenticator, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	m := &middleware{authn: authn, realm: "healthops", logger: observe.NopLogger()}
	for _, opt := range opts {
		opt(m)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			req := NewAuthRequest(r)

			if !m.authn.Supports(ctx, req) {
				m.reject(w, r, http.StatusUnauthorized, ErrMissingCredentials)
				return
			}

			result, err := m.authn.Authenticate(ctx, req)
			if err != nil {
				m.logger.Error(ctx, "authentication failed",
					observe.Field{Key: "path", Value: r.URL.Path},
					observe.Field{Key: "error", Value: err},
				)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			if !result.Authenticated {
				m.reject(w, r, http.StatusUnauthorized, result.Error)
				return
			}
			if m.role != "" && !result.Identity.HasRole(m.role) {
				m.reject(w, r, http.StatusForbidden, ErrForbidden)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, result.Identity)))
		})
	}
}

func (m *middleware) reject(w http.ResponseWriter, r *http.Request, status int, reason error) {
	if reason == nil {
		reason = ErrInvalidCredentials
	}
	m.logger.Warn(r.Context(), "request rejected",
		observe.Field{Key: "path", Value: r.URL.Path},
		observe.Field{Key: "status", Value: status},
		observe.Field{Key: "reason", Value: reason},
	)

	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", m.challenge(reason))
	}
	http.Error(w, http.StatusText(status), status)
}

func (m *middleware) challenge(reason error) string {
	var b strings.Builder
	b.WriteString(`Bearer realm="`)
	b.WriteString(m.realm)
	b.WriteString(`"`)
	if !errors.Is(reason, ErrMissingCredentials) {
		b.WriteString(`, error="invalid_token"`)
	}
	return b.String()
}
