package health

import (
	"context"
	"os"
	"runtime"
	"time"
)

// EnvironmentCollector supplies static metadata about the running process.
type EnvironmentCollector interface {
	Collect(ctx context.Context) map[string]any
}

// StaticEnvironment reports a fixed map.
type StaticEnvironment map[string]any

// Collect returns a copy of the map.
func (s StaticEnvironment) Collect(context.Context) map[string]any {
	out := make(map[string]any, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// RuntimeEnvironment reports Go runtime and host metadata.
type RuntimeEnvironment struct {
	service   string
	version   string
	startedAt time.Time
}

// NewRuntimeEnvironment creates a collector for the given service and version.
func NewRuntimeEnvironment(service, version string) *RuntimeEnvironment {
	return &RuntimeEnvironment{
		service:   service,
		version:   version,
		startedAt: time.Now(),
	}
}

// Collect returns the runtime metadata.
func (e *RuntimeEnvironment) Collect(context.Context) map[string]any {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	env := map[string]any{
		"go_version":     runtime.Version(),
		"goos":           runtime.GOOS,
		"goarch":         runtime.GOARCH,
		"num_cpu":        runtime.NumCPU(),
		"num_goroutine":  runtime.NumGoroutine(),
		"hostname":       hostname,
		"pid":            os.Getpid(),
		"started_at":     e.startedAt.UTC().Format(time.RFC3339),
		"uptime_seconds": int64(time.Since(e.startedAt).Seconds()),
	}
	if e.service != "" {
		env["service"] = e.service
	}
	if e.version != "" {
		env["version"] = e.version
	}
	return env
}

// MergedEnvironment combines collectors. Later collectors win on key
// conflicts.
type MergedEnvironment []EnvironmentCollector

// Collect merges the maps of every collector.
func (m MergedEnvironment) Collect(ctx context.Context) map[string]any {
	out := make(map[string]any)
	for _, c := range m {
		if c == nil {
			continue
		}
		for k, v := range c.Collect(ctx) {
			out[k] = v
		}
	}
	return out
}

var (
	_ EnvironmentCollector = StaticEnvironment(nil)
	_ EnvironmentCollector = (*RuntimeEnvironment)(nil)
	_ EnvironmentCollector = MergedEnvironment(nil)
)
