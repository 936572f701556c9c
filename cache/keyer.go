package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Keyer derives deterministic cache keys for a reporting scope.
//
// Contract:
// - Determinism: same inputs must produce same key, regardless of map iteration order.
// - Concurrency: implementations must be safe for concurrent use.
type Keyer interface {
	// Key generates a cache key from a scope and its parameters.
	Key(scope string, params map[string]string) (string, error)
}

// DefaultKeyer generates SHA-256 based cache keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a new default keyer.
func NewDefaultKeyer() *DefaultKeyer {
	return &DefaultKeyer{}
}

// Key generates a deterministic cache key.
// Format: health:<scope>:<hash>
// where hash is the first 16 hex characters of SHA-256 over the params
// encoded as sorted key/value pairs.
func (k *DefaultKeyer) Key(scope string, params map[string]string) (string, error) {
	scope = strings.TrimSpace(scope)
	if scope == "" || strings.ContainsAny(scope, ":\n\r") {
		return "", fmt.Errorf("%w: scope %q", ErrInvalidKey, scope)
	}

	canonical, err := canonicalize(params)
	if err != nil {
		return "", fmt.Errorf("cache: failed to canonicalize params: %w", err)
	}
	sum := sha256.Sum256(canonical)

	key := "health:" + scope + ":" + hex.EncodeToString(sum[:8])
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	return key, nil
}

// canonicalize encodes params as a JSON array of [key, value] pairs sorted
// by key. Nil and empty maps encode identically.
func canonicalize(params map[string]string) ([]byte, error) {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	pairs := make([][2]string, len(keys))
	for i, k := range keys {
		pairs[i] = [2]string{k, params[k]}
	}
	return json.Marshal(pairs)
}

var _ Keyer = (*DefaultKeyer)(nil)
