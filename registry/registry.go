// Package registry is the single source of truth for what a valid value of a
// named type looks like, now and in prior versions. A Registry is explicitly
// constructed at the composition root and injected into the validator and
// pipeline; there is no ambient global instance. Reads are lock-free over a
// copy-on-write version map so a concurrent registration never blocks
// resolution for longer than a pointer swap.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Masterminds/semver/v3"

	bound "github.com/chanuka/bound"
	"github.com/chanuka/bound/schema"
)

type entry struct {
	schema  *schema.Schema
	version *semver.Version
	rev     uint64
}

// snapshot is the immutable read view. Writers replace it wholesale.
type snapshot struct {
	byName map[string][]*entry
}

// Registry holds versioned schemas and their migrations.
type Registry struct {
	mu   sync.Mutex // serializes writers
	snap atomic.Pointer[snapshot]

	migMu      sync.RWMutex
	migrations map[string][]Migration

	hookMu sync.RWMutex
	hooks  []func(name string)

	revCounter atomic.Uint64
}

// New returns an empty Registry.
func New() *Registry {
	r := &Registry{migrations: map[string][]Migration{}}
	r.snap.Store(&snapshot{byName: map[string][]*entry{}})
	return r
}

// Register adds or replaces the schema under (name, version). Re-registering
// an existing version replaces it, bumps its revision, and fires flush hooks
// so validator caches holding results for that name drop them.
//
// A nil schema or one without a name is a programmer error and panics, like
// schema.MustBuild: definitions that never went through Build must fail in
// development, not vanish at registration.
func (r *Registry) Register(s *schema.Schema) {
	if s == nil {
		panic("registry: Register called with nil schema")
	}
	if s.Name == "" {
		panic("registry: Register called with unnamed schema")
	}
	v := ParseVersion(s.Version)

	r.mu.Lock()
	old := r.snap.Load()
	next := &snapshot{byName: make(map[string][]*entry, len(old.byName))}
	for k, es := range old.byName {
		next.byName[k] = es
	}
	es := append([]*entry(nil), old.byName[s.Name]...)
	rev := r.revCounter.Add(1)
	replaced := false
	for i, e := range es {
		if e.version.Equal(v) {
			es[i] = &entry{schema: s, version: v, rev: rev}
			replaced = true
			break
		}
	}
	if !replaced {
		es = append(es, &entry{schema: s, version: v, rev: rev})
	}
	next.byName[s.Name] = es
	r.snap.Store(next)
	r.mu.Unlock()

	r.fireFlush(s.Name)
}

// Resolve returns the schema for an exact version.
func (r *Registry) Resolve(name, version string) (*schema.Schema, error) {
	v := ParseVersion(version)
	for _, e := range r.snap.Load().byName[name] {
		if e.version.Equal(v) {
			return e.schema, nil
		}
	}
	return nil, &bound.SchemaNotFoundError{Name: name, Version: version}
}

// ResolveLatest returns the highest-version non-deprecated schema registered
// under name. All-deprecated and unknown names both resolve to not-found.
func (r *Registry) ResolveLatest(name string) (*schema.Schema, error) {
	var best *entry
	for _, e := range r.snap.Load().byName[name] {
		if e.schema.Meta.Deprecated {
			continue
		}
		if best == nil || e.version.GreaterThan(best.version) {
			best = e
		}
	}
	if best == nil {
		return nil, &bound.SchemaNotFoundError{Name: name}
	}
	return best.schema, nil
}

// DeprecationInfo describes the lifecycle state of one schema version.
type DeprecationInfo struct {
	Deprecated     bool
	Message        string
	SupportedUntil time.Time
}

// Deprecation returns the deprecation metadata for an exact version.
func (r *Registry) Deprecation(name, version string) (DeprecationInfo, error) {
	s, err := r.Resolve(name, version)
	if err != nil {
		return DeprecationInfo{}, err
	}
	return DeprecationInfo{
		Deprecated:     s.Meta.Deprecated,
		Message:        s.Meta.DeprecationMessage,
		SupportedUntil: s.Meta.SupportedUntil,
	}, nil
}

// Revision returns the registration revision for (name, version), or 0 when
// absent. Validator cache keys embed the revision, so a replaced schema can
// never serve stale cached results even if a flush hook is missed.
func (r *Registry) Revision(name, version string) uint64 {
	v := ParseVersion(version)
	for _, e := range r.snap.Load().byName[name] {
		if e.version.Equal(v) {
			return e.rev
		}
	}
	return 0
}

// Names returns the registered logical names, for documentation export.
func (r *Registry) Names() []string {
	snap := r.snap.Load()
	out := make([]string, 0, len(snap.byName))
	for k := range snap.byName {
		out = append(out, k)
	}
	return out
}

// Versions returns the version strings registered under name, in
// registration order.
func (r *Registry) Versions(name string) []string {
	var out []string
	for _, e := range r.snap.Load().byName[name] {
		out = append(out, e.schema.Version)
	}
	return out
}

// OnFlush subscribes a hook fired with the schema name after every
// registration. The validator uses this to drop name-prefixed cache entries.
func (r *Registry) OnFlush(fn func(name string)) {
	if fn == nil {
		return
	}
	r.hookMu.Lock()
	r.hooks = append(r.hooks, fn)
	r.hookMu.Unlock()
}

func (r *Registry) fireFlush(name string) {
	r.hookMu.RLock()
	hooks := r.hooks
	r.hookMu.RUnlock()
	for _, fn := range hooks {
		fn(name)
	}
}

// LoadDir registers every *.yaml/*.yml schema definition in dir. Intended
// for process startup; a malformed definition aborts the load.
func (r *Registry) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("registry: reading %s: %w", dir, err)
	}
	for _, de := range entries {
		if de.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(de.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, de.Name()))
		if err != nil {
			return fmt.Errorf("registry: reading %s: %w", de.Name(), err)
		}
		s, err := schema.LoadYAML(data)
		if err != nil {
			return fmt.Errorf("registry: %s: %w", de.Name(), err)
		}
		r.Register(s)
	}
	return nil
}
