package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewRetry_Defaults(t *testing.T) {
	r := NewRetry(RetryConfig{})
	cfg := r.Config()

	if cfg.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", cfg.MaxAttempts)
	}
	if cfg.InitialDelay != 100*time.Millisecond {
		t.Errorf("InitialDelay = %v, want 100ms", cfg.InitialDelay)
	}
	if cfg.MaxDelay != 5*time.Second {
		t.Errorf("MaxDelay = %v, want 5s", cfg.MaxDelay)
	}
	if cfg.Multiplier != 2.0 {
		t.Errorf("Multiplier = %v, want 2", cfg.Multiplier)
	}
}

func TestRetry_SucceedsAfterTransientFailures(t *testing.T) {
	r := NewRetry(RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond})

	attempts := 0
	err := r.Execute(context.Background(), func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errProbe
		}
		return nil
	})

	if err != nil {
		t.Errorf("Execute() error = %v, want nil", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestRetry_ReturnsLastErrorVerbatim(t *testing.T) {
	r := NewRetry(RetryConfig{MaxAttempts: 2, InitialDelay: time.Millisecond})

	attempts := 0
	err := r.Execute(context.Background(), func(context.Context) error {
		attempts++
		return errProbe
	})

	if err != errProbe {
		t.Errorf("Execute() error = %v, want %v", err, errProbe)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestRetry_RetryIf(t *testing.T) {
	permanent := errors.New("authentication failed")
	r := NewRetry(RetryConfig{
		MaxAttempts:  5,
		InitialDelay: time.Millisecond,
		RetryIf:      func(err error) bool { return !errors.Is(err, permanent) },
	})

	attempts := 0
	_ = r.Execute(context.Background(), func(context.Context) error {
		attempts++
		return permanent
	})

	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestRetry_DoesNotRetryOpenCircuit(t *testing.T) {
	r := NewRetry(RetryConfig{MaxAttempts: 5, InitialDelay: time.Millisecond})

	attempts := 0
	err := r.Execute(context.Background(), func(context.Context) error {
		attempts++
		return ErrCircuitOpen
	})

	if !errors.Is(err, ErrCircuitOpen) || attempts != 1 {
		t.Errorf("error = %v after %d attempts, want ErrCircuitOpen after 1", err, attempts)
	}
}

func TestRetry_ContextCanceledDuringBackoff(t *testing.T) {
	r := NewRetry(RetryConfig{MaxAttempts: 3, InitialDelay: time.Second})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := r.Execute(ctx, failOp)

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Execute() error = %v, want DeadlineExceeded", err)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("Execute() took %v, want prompt return on cancellation", elapsed)
	}
}

func TestRetry_OnRetry(t *testing.T) {
	var attempts []int
	r := NewRetry(RetryConfig{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		OnRetry: func(attempt int, err error, delay time.Duration) {
			attempts = append(attempts, attempt)
		},
	})

	_ = r.Execute(context.Background(), failOp)

	if len(attempts) != 2 || attempts[0] != 1 || attempts[1] != 2 {
		t.Errorf("OnRetry attempts = %v, want [1 2]", attempts)
	}
}

func TestRetry_Delay(t *testing.T) {
	tests := []struct {
		name     string
		config   RetryConfig
		attempt  int
		expected time.Duration
	}{
		{"exponential 1", RetryConfig{InitialDelay: 100 * time.Millisecond}, 1, 100 * time.Millisecond},
		{"exponential 3", RetryConfig{InitialDelay: 100 * time.Millisecond}, 3, 400 * time.Millisecond},
		{"exponential capped", RetryConfig{InitialDelay: time.Second, MaxDelay: 3 * time.Second}, 5, 3 * time.Second},
		{"linear", RetryConfig{InitialDelay: 100 * time.Millisecond, Strategy: BackoffLinear}, 3, 300 * time.Millisecond},
		{"constant", RetryConfig{InitialDelay: 100 * time.Millisecond, Strategy: BackoffConstant}, 4, 100 * time.Millisecond},
		{"overflow capped", RetryConfig{InitialDelay: time.Second, MaxDelay: time.Minute, Multiplier: 10}, 40, time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewRetry(tt.config).Delay(tt.attempt); got != tt.expected {
				t.Errorf("Delay(%d) = %v, want %v", tt.attempt, got, tt.expected)
			}
		})
	}
}

func TestRetry_DelayJitter(t *testing.T) {
	r := NewRetry(RetryConfig{InitialDelay: 100 * time.Millisecond, Strategy: BackoffConstant, Jitter: true})

	for i := 0; i < 50; i++ {
		d := r.Delay(1)
		if d < 100*time.Millisecond || d >= 125*time.Millisecond {
			t.Fatalf("Delay() = %v, want within [100ms, 125ms)", d)
		}
	}
}

func TestParseBackoff(t *testing.T) {
	tests := []struct {
		in      string
		want    BackoffStrategy
		wantErr bool
	}{
		{"", BackoffExponential, false},
		{"exponential", BackoffExponential, false},
		{"Linear", BackoffLinear, false},
		{" constant ", BackoffConstant, false},
		{"fibonacci", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseBackoff(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseBackoff(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err != nil && !errors.Is(err, ErrUnknownBackoff) {
			t.Errorf("ParseBackoff(%q) error = %v, want ErrUnknownBackoff", tt.in, err)
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseBackoff(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBackoffStrategy_Text(t *testing.T) {
	for _, s := range []BackoffStrategy{BackoffExponential, BackoffLinear, BackoffConstant} {
		text, err := s.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText() error = %v", err)
		}
		var got BackoffStrategy
		if err := got.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%s) error = %v", text, err)
		}
		if got != s {
			t.Errorf("round trip of %v = %v", s, got)
		}
	}

	var s BackoffStrategy
	if err := s.UnmarshalText([]byte("bogus")); !errors.Is(err, ErrUnknownBackoff) {
		t.Errorf("UnmarshalText(bogus) error = %v, want ErrUnknownBackoff", err)
	}
}
