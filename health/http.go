package health

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/jonwraymond/healthops/observe"
	"github.com/jonwraymond/healthops/resilience"
)

// Route paths, relative to the handler's mount point.
const (
	PathChecks      = "/"
	PathLiveness    = "/ping"
	PathEnvironment = "/environment"
)

// HandlerOption configures the HTTP handler.
type HandlerOption func(*handler)

// WithEnvironmentGuard wraps the environment route, typically with
// auth.Middleware.
func WithEnvironmentGuard(guard func(http.Handler) http.Handler) HandlerOption {
	return func(h *handler) {
		h.envGuard = guard
	}
}

// WithRateLimiter limits how often the checks route may run the registry.
// Requests over the limit receive 429.
func WithRateLimiter(rl *resilience.RateLimiter) HandlerOption {
	return func(h *handler) {
		h.limiter = rl
	}
}

// WithRequestTimeout bounds the context passed to the checks route.
// Zero means the request context is used as is.
func WithRequestTimeout(d time.Duration) HandlerOption {
	return func(h *handler) {
		h.timeout = d
	}
}

// WithFailureStatus sets the status code returned when any check failed.
// Default: 503.
func WithFailureStatus(code int) HandlerOption {
	return func(h *handler) {
		h.failureStatus = code
	}
}

// WithHandlerLogger sets the request logger.
func WithHandlerLogger(l observe.Logger) HandlerOption {
	return func(h *handler) {
		if l != nil {
			h.logger = l
		}
	}
}

type handler struct {
	reporting     Reporting
	envGuard      func(http.Handler) http.Handler
	limiter       *resilience.RateLimiter
	timeout       time.Duration
	failureStatus int
	logger        observe.Logger

	env http.Handler
}

// NewHandler returns the HTTP handler serving the liveness, environment and
// checks routes. Mount it with http.StripPrefix; paths are matched exactly
// and anything else is a 404.
func NewHandler(reporting Reporting, opts ...HandlerOption) http.Handler {
	h := &handler{
		reporting:     reporting,
		failureStatus: http.StatusServiceUnavailable,
		logger:        observe.NopLogger(),
	}
	for _, opt := range opts {
		opt(h)
	}

	h.env = http.HandlerFunc(h.serveEnvironment)
	if h.envGuard != nil {
		h.env = h.envGuard(h.env)
	}
	return h
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	switch r.URL.Path {
	case "", PathChecks:
		h.serveChecks(w, r)
	case PathLiveness:
		h.serveLiveness(w, r)
	case PathEnvironment:
		h.env.ServeHTTP(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *handler) serveLiveness(w http.ResponseWriter, r *http.Request) {
	body, err := h.reporting.Liveness()
	h.write(w, r, http.StatusOK, body, err)
}

func (h *handler) serveEnvironment(w http.ResponseWriter, r *http.Request) {
	body, err := h.reporting.Environment(r.Context())
	h.write(w, r, http.StatusOK, body, err)
}

func (h *handler) serveChecks(w http.ResponseWriter, r *http.Request) {
	if h.limiter != nil && !h.limiter.Allow() {
		w.Header().Set("Retry-After", strconv.Itoa(h.limiter.RetryAfterSeconds()))
		http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		return
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	doc, err := h.reporting.Report(ctx)
	status := http.StatusOK
	if err == nil && !doc.Healthy {
		status = h.failureStatus
	}
	h.write(w, r, status, doc.Body, err)
}

func (h *handler) write(w http.ResponseWriter, r *http.Request, status int, body []byte, err error) {
	if err != nil {
		h.logger.Error(r.Context(), "health response failed",
			observe.Field{Key: "path", Value: r.URL.Path},
			observe.Field{Key: "error", Value: err.Error()},
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", h.reporting.ContentType())
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(body)
}
