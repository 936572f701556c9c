package auth

import (
	"context"
	"errors"
	"testing"
)

// mockAuthenticator is a test authenticator with configurable behavior.
type mockAuthenticator struct {
	name     string
	supports bool
	result   *AuthResult
	err      error
	calls    int
}

func (m *mockAuthenticator) Name() string { return m.name }

func (m *mockAuthenticator) Supports(context.Context, *AuthRequest) bool { return m.supports }

func (m *mockAuthenticator) Authenticate(context.Context, *AuthRequest) (*AuthResult, error) {
	m.calls++
	return m.result, m.err
}

func success(principal string) *AuthResult {
	return AuthSuccess(&Identity{Principal: principal, Method: AuthMethodAPIKey})
}

func TestCompositeAuthenticator_Authenticate(t *testing.T) {
	internal := errors.New("store down")

	tests := []struct {
		name          string
		auths         []*mockAuthenticator
		wantPrincipal string
		wantErr       error
		wantFailure   error
	}{
		{
			name:        "empty",
			wantFailure: ErrMissingCredentials,
		},
		{
			name: "none supports",
			auths: []*mockAuthenticator{
				{name: "a", supports: false, result: success("a")},
			},
			wantFailure: ErrMissingCredentials,
		},
		{
			name: "first success wins",
			auths: []*mockAuthenticator{
				{name: "a", supports: true, result: success("a")},
				{name: "b", supports: true, result: success("b")},
			},
			wantPrincipal: "a",
		},
		{
			name: "skips unsupported",
			auths: []*mockAuthenticator{
				{name: "a", supports: false, result: success("a")},
				{name: "b", supports: true, result: success("b")},
			},
			wantPrincipal: "b",
		},
		{
			name: "failure then success",
			auths: []*mockAuthenticator{
				{name: "a", supports: true, result: AuthFailure(ErrInvalidCredentials, "a")},
				{name: "b", supports: true, result: success("b")},
			},
			wantPrincipal: "b",
		},
		{
			name: "all fail returns last",
			auths: []*mockAuthenticator{
				{name: "a", supports: true, result: AuthFailure(ErrInvalidCredentials, "a")},
				{name: "b", supports: true, result: AuthFailure(ErrTokenExpired, "b")},
			},
			wantFailure: ErrTokenExpired,
		},
		{
			name: "internal error propagates",
			auths: []*mockAuthenticator{
				{name: "a", supports: true, err: internal},
				{name: "b", supports: true, result: success("b")},
			},
			wantErr: internal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auths := make([]Authenticator, len(tt.auths))
			for i, a := range tt.auths {
				auths[i] = a
			}
			c := NewCompositeAuthenticator(auths...)

			result, err := c.Authenticate(context.Background(), &AuthRequest{})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Authenticate() error = %v", err)
			}
			if tt.wantFailure != nil {
				if result.Authenticated || !errors.Is(result.Error, tt.wantFailure) {
					t.Errorf("result = %+v, want failure %v", result, tt.wantFailure)
				}
				return
			}
			if !result.Authenticated || result.Identity.Principal != tt.wantPrincipal {
				t.Errorf("result = %+v, want principal %s", result, tt.wantPrincipal)
			}
		})
	}
}

func TestCompositeAuthenticator_StopsAfterSuccess(t *testing.T) {
	first := &mockAuthenticator{name: "a", supports: true, result: success("a")}
	second := &mockAuthenticator{name: "b", supports: true, result: success("b")}

	_, _ = NewCompositeAuthenticator(first, second).Authenticate(context.Background(), &AuthRequest{})
	if second.calls != 0 {
		t.Errorf("second authenticator called %d times, want 0", second.calls)
	}
}

func TestCompositeAuthenticator_Supports(t *testing.T) {
	c := NewCompositeAuthenticator(&mockAuthenticator{supports: false}, &mockAuthenticator{supports: true})
	if !c.Supports(context.Background(), &AuthRequest{}) {
		t.Error("Supports() = false, want true")
	}
	if NewCompositeAuthenticator().Supports(context.Background(), &AuthRequest{}) {
		t.Error("empty composite should support nothing")
	}
	if c.Name() != "composite" {
		t.Errorf("Name() = %q", c.Name())
	}
}
