package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/healthops/secret"
)

// Load reads the YAML file at path and applies environment overrides,
// defaults and secret resolution. An empty path loads from the
// environment alone.
func Load(ctx context.Context, path string) (*Config, error) {
	if path == "" {
		return Parse(ctx, nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadConfig, err)
	}
	return Parse(ctx, data)
}

// Parse is Load for an in-memory document.
func Parse(ctx context.Context, data []byte) (*Config, error) {
	return parse(ctx, data, secret.DefaultResolver())
}

func parse(ctx context.Context, data []byte, resolver *secret.Resolver) (*Config, error) {
	var cfg Config

	if len(bytes.TrimSpace(data)) > 0 {
		expanded, err := secret.ExpandEnvStrict(string(data))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrReadConfig, err)
		}
		dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %w", ErrReadConfig, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("%w: environment: %w", ErrReadConfig, err)
	}

	cfg.applyDefaults()

	if err := cfg.resolveSecrets(ctx, resolver); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// resolveSecrets replaces secretref values in credential fields.
func (c *Config) resolveSecrets(ctx context.Context, resolver *secret.Resolver) error {
	fields := []*string{&c.Auth.JWTSecret}
	for i := range c.Auth.APIKeys {
		fields = append(fields, &c.Auth.APIKeys[i].Key, &c.Auth.APIKeys[i].KeyHash)
	}
	for i := range c.Checks {
		chk := &c.Checks[i]
		fields = append(fields, &chk.URL, &chk.DSN, &chk.AccessKey, &chk.SecretKey)

		if len(chk.Headers) > 0 {
			headers, err := resolver.ResolveMap(ctx, chk.Headers)
			if err != nil {
				return fmt.Errorf("%w: checks[%d].headers: %w", ErrReadConfig, i, err)
			}
			chk.Headers = headers
		}
	}
	if err := resolver.ResolveInPlace(ctx, fields...); err != nil {
		return fmt.Errorf("%w: %w", ErrReadConfig, err)
	}
	return nil
}
