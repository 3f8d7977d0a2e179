// Package validator executes registered schemas against untrusted input,
// producing either a normalized value or a structured, field-addressable
// error report. Results are memoized (successes and failures alike) in a
// TTL-bounded, size-capped cache, and every call feeds a small metrics
// surface. A Validator holds no schema state of its own; it resolves through
// an injected registry.
package validator

import (
	"context"
	"fmt"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	bound "github.com/chanuka/bound"
	"github.com/chanuka/bound/registry"
	"github.com/chanuka/bound/schema"
)

// Options is the per-call option set recognized by Validate.
type Options struct {
	// Preprocess applies trimming and coercion before schema execution.
	Preprocess bool
	// UseCache memoizes the result keyed by (schema, input, options).
	UseCache bool
	// CacheTTL bounds how long a memoized result may be served.
	CacheTTL time.Duration
	// StripUnknown drops input keys the schema does not declare.
	StripUnknown bool
	// FailFast stops at the first violated rule.
	FailFast bool
	// CacheKeyFn overrides content-hash derivation. The schema identity
	// prefix is always applied on top so registry flushes keep working.
	CacheKeyFn func(input any) (string, error)
}

// DefaultOptions returns the documented defaults: preprocessing on, caching
// on with a five-minute TTL.
func DefaultOptions() Options {
	return Options{Preprocess: true, UseCache: true, CacheTTL: 5 * time.Minute}
}

// Result is the outcome of one validation. OK and Errors are mutually
// exclusive; a failed Result always carries at least one issue.
type Result struct {
	OK     bool
	Value  map[string]any
	Errors bound.Issues
}

// Validator applies schemas resolved from a registry.
type Validator struct {
	reg     *registry.Registry
	cache   *resultCache
	metrics *Metrics
	now     func() time.Time
}

// Option configures a Validator at construction.
type Option func(*Validator)

// WithCacheCapacity bounds the number of memoized results. Oldest-inserted
// entries are evicted first when over capacity.
func WithCacheCapacity(n int) Option {
	return func(v *Validator) { v.cache = newResultCache(n) }
}

// WithMetricsSink forwards every counter event to an external sink.
func WithMetricsSink(s Sink) Option {
	return func(v *Validator) { v.metrics.sink = s }
}

// WithClock overrides time for TTL tests.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) { v.now = now }
}

// New builds a Validator over reg and subscribes to its flush hooks so a
// re-registered schema immediately invalidates its cached results.
func New(reg *registry.Registry, opts ...Option) *Validator {
	v := &Validator{
		reg:     reg,
		cache:   newResultCache(defaultCacheCapacity),
		metrics: newMetrics(),
		now:     time.Now,
	}
	for _, o := range opts {
		o(v)
	}
	reg.OnFlush(func(name string) { v.cache.flushPrefix(name + "@") })
	return v
}

// Metrics returns a point-in-time snapshot of the validator's counters.
func (v *Validator) Metrics() MetricsSnapshot { return v.metrics.snapshot() }

// Validate resolves the latest non-deprecated schema for name and applies
// it to input. A validation failure is a value (Result.OK == false); the
// returned error is reserved for programmer errors such as an unknown
// schema name.
func (v *Validator) Validate(ctx context.Context, name string, input any, opt Options) (Result, error) {
	s, err := v.reg.ResolveLatest(name)
	if err != nil {
		return Result{}, err
	}
	return v.run(ctx, s, input, opt)
}

// ValidateVersion is Validate pinned to an exact schema version.
func (v *Validator) ValidateVersion(ctx context.Context, name, version string, input any, opt Options) (Result, error) {
	s, err := v.reg.Resolve(name, version)
	if err != nil {
		return Result{}, err
	}
	return v.run(ctx, s, input, opt)
}

// ValidateSchema applies an already-resolved schema. Used by the pipeline
// so client-side and server-side validation share one resolution.
func (v *Validator) ValidateSchema(ctx context.Context, s *schema.Schema, input any, opt Options) (Result, error) {
	if s == nil {
		return Result{}, fmt.Errorf("validator: nil schema")
	}
	return v.run(ctx, s, input, opt)
}

func (v *Validator) run(ctx context.Context, s *schema.Schema, input any, opt Options) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, &bound.TimeoutError{Stage: "Validate", Cause: err}
	}

	v.metrics.total.Add(1)

	var key string
	if opt.UseCache {
		k, err := v.cacheKey(s, input, opt)
		if err == nil {
			key = k
			if res, ok := v.cache.get(key, v.now()); ok {
				v.metrics.cacheHits.Add(1)
				v.metrics.observe(res)
				v.metrics.emit("cache_hit", s.Name)
				return res, nil
			}
			v.metrics.cacheMisses.Add(1)
			v.metrics.emit("cache_miss", s.Name)
		}
		// A non-hashable input simply skips memoization.
	}

	work := input
	if opt.Preprocess {
		work = Preprocess(work)
	}

	value, iss := s.Eval(work, schema.EvalOpt{StripUnknown: opt.StripUnknown, FailFast: opt.FailFast})
	res := Result{OK: iss == nil, Value: value, Errors: iss}
	v.metrics.observe(res)
	if res.OK {
		v.metrics.emit("success", s.Name)
	} else {
		v.metrics.emit("failure", s.Name)
	}

	if key != "" {
		ttl := opt.CacheTTL
		if ttl <= 0 {
			ttl = DefaultOptions().CacheTTL
		}
		// Failures are memoized exactly like successes.
		v.cache.put(key, res, v.now().Add(ttl))
	}
	return res, nil
}

// cacheKey derives "name@version#revision/<hash>". The identity prefix makes
// registry flushes and revision bumps structurally invalidate stale entries.
func (v *Validator) cacheKey(s *schema.Schema, input any, opt Options) (string, error) {
	prefix := s.Identity() + "#" + strconv.FormatUint(v.reg.Revision(s.Name, s.Version), 10) + "/"
	if opt.CacheKeyFn != nil {
		suffix, err := opt.CacheKeyFn(input)
		if err != nil {
			return "", err
		}
		return prefix + suffix, nil
	}
	payload, err := json.Marshal(struct {
		Input      any  `json:"input"`
		Preprocess bool `json:"preprocess"`
		Strip      bool `json:"strip"`
		FailFast   bool `json:"fail_fast"`
	}{input, opt.Preprocess, opt.StripUnknown, opt.FailFast})
	if err != nil {
		return "", err
	}
	h := fnv.New64a()
	_, _ = h.Write(payload)
	return prefix + strconv.FormatUint(h.Sum64(), 16), nil
}
