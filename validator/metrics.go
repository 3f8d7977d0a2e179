package validator

import (
	"sync"
	"sync/atomic"
)

// Sink receives counter events for export to an external metrics system.
// Implementations must be safe for concurrent use.
type Sink interface {
	Incr(event, schemaName string)
}

// Metrics tracks validation outcomes. Counters are atomics; the per-field
// and per-code tallies are small maps under a mutex since they only grow on
// failures.
type Metrics struct {
	total       atomic.Uint64
	successes   atomic.Uint64
	failures    atomic.Uint64
	cacheHits   atomic.Uint64
	cacheMisses atomic.Uint64

	mu      sync.Mutex
	byField map[string]uint64
	byCode  map[string]uint64

	sink Sink
}

func newMetrics() *Metrics {
	return &Metrics{byField: map[string]uint64{}, byCode: map[string]uint64{}}
}

func (m *Metrics) observe(res Result) {
	if res.OK {
		m.successes.Add(1)
		return
	}
	m.failures.Add(1)
	m.mu.Lock()
	for _, is := range res.Errors {
		m.byField[is.Path]++
		m.byCode[is.Code]++
	}
	m.mu.Unlock()
}

func (m *Metrics) emit(event, schemaName string) {
	if m.sink != nil {
		m.sink.Incr(event, schemaName)
	}
}

// MetricsSnapshot is a point-in-time copy of the counters.
type MetricsSnapshot struct {
	Total       uint64
	Successes   uint64
	Failures    uint64
	CacheHits   uint64
	CacheMisses uint64
	ByField     map[string]uint64
	ByCode      map[string]uint64
}

func (m *Metrics) snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		Total:       m.total.Load(),
		Successes:   m.successes.Load(),
		Failures:    m.failures.Load(),
		CacheHits:   m.cacheHits.Load(),
		CacheMisses: m.cacheMisses.Load(),
		ByField:     map[string]uint64{},
		ByCode:      map[string]uint64{},
	}
	m.mu.Lock()
	for k, v := range m.byField {
		snap.ByField[k] = v
	}
	for k, v := range m.byCode {
		snap.ByCode[k] = v
	}
	m.mu.Unlock()
	return snap
}
