package cache

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newClockedCache(p Policy) (*MemoryCache, *fakeClock) {
	clock := newFakeClock()
	c := NewMemoryCache(p)
	c.now = clock.Now
	return c, clock
}

func TestMemoryCache_GetSetDelete(t *testing.T) {
	c := NewMemoryCache(DefaultPolicy())
	ctx := context.Background()

	if val, ok := c.Get(ctx, "missing"); ok || val != nil {
		t.Errorf("Get(missing) = %q, %v, want nil, false", val, ok)
	}

	if err := c.Set(ctx, "k", []byte("v"), time.Second); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, ok := c.Get(ctx, "k")
	if !ok || !bytes.Equal(got, []byte("v")) {
		t.Errorf("Get(k) = %q, %v, want v, true", got, ok)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("Get after Delete should miss")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete is idempotent, got %v", err)
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c, clock := newClockedCache(DefaultPolicy())
	ctx := context.Background()

	_ = c.Set(ctx, "k", []byte("v"), 5*time.Second)

	clock.Advance(4 * time.Second)
	if _, ok := c.Get(ctx, "k"); !ok {
		t.Error("Get before expiry should hit")
	}

	clock.Advance(time.Second)
	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("Get at expiry should miss")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after lazy eviction", c.Len())
	}
}

func TestMemoryCache_ClampsToMaxTTL(t *testing.T) {
	c, clock := newClockedCache(Policy{DefaultTTL: time.Second, MaxTTL: 2 * time.Second})
	ctx := context.Background()

	_ = c.Set(ctx, "k", []byte("v"), time.Hour)
	clock.Advance(2 * time.Second)
	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("TTL should be clamped to MaxTTL")
	}
}

func TestMemoryCache_ZeroTTL(t *testing.T) {
	c := NewMemoryCache(DefaultPolicy())
	ctx := context.Background()

	for _, ttl := range []time.Duration{0, -time.Second} {
		if err := c.Set(ctx, "k", []byte("v"), ttl); err != nil {
			t.Errorf("Set(ttl=%v) error = %v", ttl, err)
		}
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}

func TestMemoryCache_SetCopiesValue(t *testing.T) {
	c := NewMemoryCache(DefaultPolicy())
	ctx := context.Background()

	value := []byte("original")
	_ = c.Set(ctx, "k", value, time.Second)
	copy(value, "mutated!")

	got, _ := c.Get(ctx, "k")
	if string(got) != "original" {
		t.Errorf("Get() = %q, want original", got)
	}
}

func TestMemoryCache_Purge(t *testing.T) {
	c, clock := newClockedCache(Policy{})
	ctx := context.Background()

	_ = c.Set(ctx, "short", []byte("a"), time.Second)
	_ = c.Set(ctx, "long", []byte("b"), time.Minute)

	clock.Advance(2 * time.Second)
	if removed := c.Purge(); removed != 1 {
		t.Errorf("Purge() = %d, want 1", removed)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
	if _, ok := c.Get(ctx, "long"); !ok {
		t.Error("unexpired entry should survive Purge")
	}
}

func TestMemoryCache_ConcurrentAccess(t *testing.T) {
	c := NewMemoryCache(DefaultPolicy())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				switch j % 3 {
				case 0:
					_ = c.Set(ctx, "k", []byte("v"), time.Minute)
				case 1:
					_, _ = c.Get(ctx, "k")
				case 2:
					_ = c.Delete(ctx, "k")
				}
			}
		}()
	}
	wg.Wait()
}
