package checks

import (
	"context"
	"fmt"
	"net"
)

// TCPCheckerConfig configures a TCP dial check.
type TCPCheckerConfig struct {
	Name    string
	Address string
}

// TCPChecker passes when a TCP connection to Address can be opened.
type TCPChecker struct {
	config TCPCheckerConfig
	dialer net.Dialer
}

// NewTCPChecker creates a TCP health check.
func NewTCPChecker(config TCPCheckerConfig) (*TCPChecker, error) {
	if config.Name == "" || config.Address == "" {
		return nil, fmt.Errorf("%w: tcp check needs a name and an address", ErrInvalidConfig)
	}
	if _, _, err := net.SplitHostPort(config.Address); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return &TCPChecker{config: config}, nil
}

// Name returns the check name.
func (t *TCPChecker) Name() string { return t.config.Name }

// Type returns "tcp".
func (t *TCPChecker) Type() string { return "tcp" }

// Probe dials the address and closes the connection.
func (t *TCPChecker) Probe(ctx context.Context) error {
	conn, err := t.dialer.DialContext(ctx, "tcp", t.config.Address)
	if err != nil {
		return fmt.Errorf("dial %s: %w", t.config.Address, err)
	}
	return conn.Close()
}
