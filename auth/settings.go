package auth

import (
	"fmt"
	"strings"
)

// MinJWTSecretLength is the shortest accepted HMAC secret, in bytes.
const MinJWTSecretLength = 32

// APIKey is a configured API key. Exactly one of Key and KeyHash is set.
type APIKey struct {
	ID        string   `yaml:"id"`
	Key       string   `yaml:"key"`
	KeyHash   string   `yaml:"key_hash"`
	Principal string   `yaml:"principal"`
	Roles     []string `yaml:"roles"`
}

// Settings describes the authenticators to build.
type Settings struct {
	// APIKeyHeader overrides DefaultAPIKeyHeader.
	APIKeyHeader string
	APIKeys      []APIKey

	JWTSecret string
	JWT       JWTConfig
}

// Enabled reports whether any authenticator is configured.
func (s Settings) Enabled() bool {
	return len(s.APIKeys) > 0 || s.JWTSecret != ""
}

// Build creates the authenticator described by s: API keys first, then JWT.
// A single configured method is returned as is; several are combined with
// CompositeAuthenticator.
func Build(s Settings) (Authenticator, error) {
	var auths []Authenticator

	if len(s.APIKeys) > 0 {
		store := NewMemoryAPIKeyStore()
		for i, k := range s.APIKeys {
			info, err := k.info(i)
			if err != nil {
				return nil, err
			}
			if err := store.Add(info); err != nil {
				return nil, err
			}
		}
		auths = append(auths, NewAPIKeyAuthenticator(APIKeyConfig{HeaderName: s.APIKeyHeader}, store))
	}

	if s.JWTSecret != "" {
		if len(s.JWTSecret) < MinJWTSecretLength {
			return nil, fmt.Errorf("%w: need at least %d bytes", ErrWeakSecret, MinJWTSecretLength)
		}
		auths = append(auths, NewJWTAuthenticator(s.JWT, NewStaticKeyProvider([]byte(s.JWTSecret))))
	}

	switch len(auths) {
	case 0:
		return nil, ErrNoAuthenticators
	case 1:
		return auths[0], nil
	default:
		return NewCompositeAuthenticator(auths...), nil
	}
}

func (k APIKey) info(i int) (*APIKeyInfo, error) {
	id := k.ID
	if id == "" {
		id = fmt.Sprintf("key-%d", i)
	}

	hash := strings.TrimSpace(k.KeyHash)
	switch {
	case k.Key != "" && hash != "":
		return nil, fmt.Errorf("auth: api key %q: set key or key_hash, not both", id)
	case k.Key != "":
		hash = HashAPIKey(k.Key)
	case hash == "":
		return nil, fmt.Errorf("auth: api key %q: %w", id, ErrMissingCredentials)
	}

	principal := k.Principal
	if principal == "" {
		principal = id
	}
	return &APIKeyInfo{ID: id, KeyHash: hash, Principal: principal, Roles: k.Roles}, nil
}
