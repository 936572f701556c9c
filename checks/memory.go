package checks

import (
	"context"
	"fmt"
	"runtime"
)

// MemoryCheckerConfig configures the memory health check.
type MemoryCheckerConfig struct {
	// Name is the check name. Default: "memory".
	Name string

	// MaxRatio is the share of MaxAlloc above which the check fails.
	// Value should be in (0, 1]. Default: 0.9
	MaxRatio float64

	// MaxAlloc is the maximum expected heap allocation in bytes.
	// If zero, the memory obtained from the OS is used.
	MaxAlloc uint64
}

// MemoryChecker fails when heap allocation crosses a threshold.
type MemoryChecker struct {
	config    MemoryCheckerConfig
	readStats func(*runtime.MemStats)
}

// NewMemoryChecker creates a new memory health check.
func NewMemoryChecker(config MemoryCheckerConfig) *MemoryChecker {
	if config.Name == "" {
		config.Name = "memory"
	}
	if config.MaxRatio <= 0 || config.MaxRatio > 1 {
		config.MaxRatio = 0.9
	}
	return &MemoryChecker{config: config, readStats: runtime.ReadMemStats}
}

// Name returns the check name.
func (m *MemoryChecker) Name() string { return m.config.Name }

// Type returns "memory".
func (m *MemoryChecker) Type() string { return "memory" }

// Probe reads runtime memory statistics and compares heap allocation
// against the configured limit.
func (m *MemoryChecker) Probe(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var stats runtime.MemStats
	m.readStats(&stats)

	maxAlloc := m.config.MaxAlloc
	if maxAlloc == 0 {
		maxAlloc = stats.Sys
	}
	if maxAlloc == 0 {
		// Stats unavailable; nothing to compare against.
		return nil
	}

	ratio := float64(stats.Alloc) / float64(maxAlloc)
	if ratio >= m.config.MaxRatio {
		return fmt.Errorf("memory usage critical: %.1f%% of %d bytes (%d goroutines)",
			ratio*100, maxAlloc, runtime.NumGoroutine())
	}
	return nil
}

// ForceGC triggers a garbage collection.
// This is useful for tests or when you want accurate memory stats.
func (m *MemoryChecker) ForceGC() {
	runtime.GC()
}
