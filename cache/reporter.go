package cache

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/healthops/health"
	"github.com/jonwraymond/healthops/observe"
)

// Envelope flags prefixed to stored document bodies.
const (
	flagUnhealthy byte = '0'
	flagHealthy   byte = '1'
)

// Option configures a Reporter.
type Option func(*Reporter)

// WithParams adds parameters to the cache key, such as the encoder name.
func WithParams(params map[string]string) Option {
	return func(r *Reporter) {
		r.params = params
	}
}

// WithLogger sets the logger used for cache write failures.
func WithLogger(l observe.Logger) Option {
	return func(r *Reporter) {
		if l != nil {
			r.logger = l
		}
	}
}

// Stats counts cache lookups.
type Stats struct {
	Hits   uint64
	Misses uint64
}

// Reporter is a health.Reporting whose Report is served from a cache.
//
// Within one TTL window at most one check cycle runs per key; concurrent
// callers that miss share its result. Encoding errors are returned to every
// waiting caller and never stored.
type Reporter struct {
	inner  health.Reporting
	cache  Cache
	policy Policy
	keyer  Keyer
	scope  string
	params map[string]string
	logger observe.Logger

	key    string
	group  singleflight.Group
	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewReporter wraps inner with a cache. A nil keyer uses DefaultKeyer.
// The cache may be nil only when the policy disables caching.
func NewReporter(inner health.Reporting, c Cache, p Policy, k Keyer, scope string, opts ...Option) (*Reporter, error) {
	if inner == nil {
		return nil, ErrNilReporting
	}
	if c == nil && p.ShouldCache() {
		return nil, ErrNilCache
	}
	if k == nil {
		k = NewDefaultKeyer()
	}

	r := &Reporter{
		inner:  inner,
		cache:  c,
		policy: p,
		keyer:  k,
		scope:  scope,
		logger: observe.NopLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}

	key, err := k.Key(scope, r.params)
	if err != nil {
		return nil, err
	}
	r.key = key
	return r, nil
}

// Key returns the cache key this reporter reads and writes.
func (r *Reporter) Key() string {
	return r.key
}

// Report returns the cached document, running the inner reporting on a miss.
func (r *Reporter) Report(ctx context.Context) (health.Document, error) {
	if !r.policy.ShouldCache() {
		return r.inner.Report(ctx)
	}

	if raw, ok := r.cache.Get(ctx, r.key); ok {
		if doc, ok := decodeEntry(raw); ok {
			r.hits.Add(1)
			return doc, nil
		}
	}
	r.misses.Add(1)

	// The shared run outlives any one caller, so a canceled request cannot
	// cache failures caused by its own cancellation.
	runCtx := context.WithoutCancel(ctx)
	ch := r.group.DoChan(r.key, func() (any, error) {
		doc, err := r.inner.Report(runCtx)
		if err != nil {
			return health.Document{}, err
		}
		if err := r.cache.Set(runCtx, r.key, encodeEntry(doc), r.policy.EffectiveTTL(0)); err != nil {
			r.logger.Warn(runCtx, "failed to cache health document",
				observe.Field{Key: "key", Value: r.key},
				observe.Field{Key: "error", Value: err},
			)
		}
		return doc, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return health.Document{}, res.Err
		}
		return res.Val.(health.Document), nil
	case <-ctx.Done():
		return health.Document{}, ctx.Err()
	}
}

// Invalidate drops the cached document so the next Report runs the checks.
func (r *Reporter) Invalidate(ctx context.Context) error {
	if r.cache == nil {
		return nil
	}
	return r.cache.Delete(ctx, r.key)
}

// Stats returns the hit and miss counts since construction.
func (r *Reporter) Stats() Stats {
	return Stats{Hits: r.hits.Load(), Misses: r.misses.Load()}
}

// Liveness is never cached.
func (r *Reporter) Liveness() ([]byte, error) {
	return r.inner.Liveness()
}

// Environment is never cached.
func (r *Reporter) Environment(ctx context.Context) ([]byte, error) {
	return r.inner.Environment(ctx)
}

// ContentType returns the inner media type.
func (r *Reporter) ContentType() string {
	return r.inner.ContentType()
}

func encodeEntry(doc health.Document) []byte {
	out := make([]byte, 0, len(doc.Body)+1)
	if doc.Healthy {
		out = append(out, flagHealthy)
	} else {
		out = append(out, flagUnhealthy)
	}
	return append(out, doc.Body...)
}

func decodeEntry(raw []byte) (health.Document, bool) {
	if len(raw) == 0 {
		return health.Document{}, false
	}
	switch raw[0] {
	case flagHealthy:
		return health.Document{Body: raw[1:], Healthy: true}, true
	case flagUnhealthy:
		return health.Document{Body: raw[1:], Healthy: false}, true
	default:
		return health.Document{}, false
	}
}

var _ health.Reporting = (*Reporter)(nil)
