package resilience

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNewTimeout_Default(t *testing.T) {
	if got := NewTimeout(TimeoutConfig{}).Config().Timeout; got != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", got, DefaultTimeout)
	}
}

func TestTimeout_CompletesInTime(t *testing.T) {
	to := NewTimeout(TimeoutConfig{Timeout: time.Second})

	if err := to.Execute(context.Background(), okOp); err != nil {
		t.Errorf("Execute() error = %v", err)
	}
	if err := to.Execute(context.Background(), failOp); !errors.Is(err, errProbe) {
		t.Errorf("Execute() error = %v, want %v", err, errProbe)
	}
}

func TestTimeout_Expires(t *testing.T) {
	to := NewTimeout(TimeoutConfig{Timeout: 20 * time.Millisecond})

	start := time.Now()
	err := to.Execute(context.Background(), func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Execute() error = %v, want ErrTimeout", err)
	}
	if !strings.Contains(err.Error(), "20ms") {
		t.Errorf("error = %q, want the duration", err)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("Execute() took %v", elapsed)
	}
}

func TestTimeout_AbandonsProbeIgnoringContext(t *testing.T) {
	to := NewTimeout(TimeoutConfig{Timeout: 10 * time.Millisecond})

	start := time.Now()
	err := to.Execute(context.Background(), func(context.Context) error {
		time.Sleep(300 * time.Millisecond)
		return nil
	})

	if !errors.Is(err, ErrTimeout) {
		t.Errorf("Execute() error = %v, want ErrTimeout", err)
	}
	if elapsed := time.Since(start); elapsed >= 300*time.Millisecond {
		t.Errorf("Execute() waited %v for a probe that ignores its context", elapsed)
	}
}

func TestTimeout_RecoversPanic(t *testing.T) {
	to := NewTimeout(TimeoutConfig{Timeout: time.Second})

	err := to.Execute(context.Background(), func(context.Context) error {
		panic("kaboom")
	})
	if !errors.Is(err, ErrPanic) {
		t.Fatalf("Execute() error = %v, want ErrPanic", err)
	}
	if !strings.Contains(err.Error(), "kaboom") {
		t.Errorf("Execute() error = %v, want panic value in message", err)
	}
}

func TestTimeout_ParentCanceled(t *testing.T) {
	to := NewTimeout(TimeoutConfig{Timeout: time.Second})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := to.Execute(ctx, func(ctx context.Context) error {
		<-ctx.Done()
		time.Sleep(10 * time.Millisecond)
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Execute() error = %v, want Canceled", err)
	}
}

func TestTimeout_ProbeSeesDeadline(t *testing.T) {
	to := NewTimeout(TimeoutConfig{Timeout: time.Second})

	err := to.Execute(context.Background(), func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); !ok {
			return errors.New("no deadline")
		}
		return nil
	})
	if err != nil {
		t.Errorf("Execute() error = %v", err)
	}
}
