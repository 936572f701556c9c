package checks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// maxDrain bounds how much of a response body is read before closing it.
const maxDrain = 64 << 10

// HTTPCheckerConfig configures an HTTP health check.
type HTTPCheckerConfig struct {
	Name string
	URL  string

	// ExpectedStatus is the status code that counts as healthy. Default: 200.
	ExpectedStatus int

	// Headers are added to every probe request.
	Headers map[string]string

	// Client sends the probe. Default: a client without its own timeout;
	// bound probes with the check timeout instead.
	Client *http.Client
}

// HTTPChecker probes an HTTP endpoint with GET.
type HTTPChecker struct {
	config HTTPCheckerConfig
}

// NewHTTPChecker creates an HTTP health check.
func NewHTTPChecker(config HTTPCheckerConfig) (*HTTPChecker, error) {
	if config.Name == "" || config.URL == "" {
		return nil, fmt.Errorf("%w: http check needs a name and a url", ErrInvalidConfig)
	}
	if config.ExpectedStatus == 0 {
		config.ExpectedStatus = http.StatusOK
	}
	if config.Client == nil {
		config.Client = &http.Client{}
	}
	// Validate the URL once up front.
	if _, err := http.NewRequest(http.MethodGet, config.URL, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return &HTTPChecker{config: config}, nil
}

// Name returns the check name.
func (h *HTTPChecker) Name() string { return h.config.Name }

// Type returns "http".
func (h *HTTPChecker) Type() string { return "http" }

// Probe sends a GET request and compares the response status.
func (h *HTTPChecker) Probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.config.URL, nil)
	if err != nil {
		return err
	}
	for k, v := range h.config.Headers {
		req.Header.Set(k, v)
	}

	resp, err := h.config.Client.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			// Drop the URL, which may carry credentials.
			return fmt.Errorf("request failed: %w", urlErr.Err)
		}
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrain))

	if resp.StatusCode != h.config.ExpectedStatus {
		return fmt.Errorf("unexpected status %d, want %d", resp.StatusCode, h.config.ExpectedStatus)
	}
	return nil
}
