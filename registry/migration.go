package registry

import (
	"fmt"
)

// MigrateFunc converts a value conforming to one schema version into a value
// conforming to another. Implementations must be pure.
type MigrateFunc func(value map[string]any) (map[string]any, error)

// Migration describes how to convert between two versions of a named schema.
// When Rollback is set, Forward and Rollback must be mutual inverses for all
// valid values.
type Migration struct {
	From        string
	To          string
	Forward     MigrateFunc
	Rollback    MigrateFunc // optional
	Description string
	Breaking    bool
}

// MigrateOpt adjusts path search.
type MigrateOpt struct {
	// AllowBreaking permits paths that cross a breaking migration.
	AllowBreaking bool
}

// RegisterMigration records a migration for name. Created alongside each new
// schema version that changes shape.
func (r *Registry) RegisterMigration(name string, m Migration) error {
	if m.Forward == nil {
		return fmt.Errorf("registry: migration %s %s->%s has no forward func", name, m.From, m.To)
	}
	r.migMu.Lock()
	r.migrations[name] = append(r.migrations[name], m)
	r.migMu.Unlock()
	return nil
}

// step is one hop of a resolved path: a migration applied in forward or
// rollback direction.
type step struct {
	m       Migration
	reverse bool
}

// MigrationPath returns the migrations composing from -> to, in application
// order. A direct migration wins; otherwise the shortest multi-step path is
// composed, using rollback functions to traverse edges backwards where they
// exist.
func (r *Registry) MigrationPath(name, from, to string, opt MigrateOpt) ([]Migration, error) {
	steps, err := r.findPath(name, from, to, opt)
	if err != nil {
		return nil, err
	}
	out := make([]Migration, len(steps))
	for i, st := range steps {
		out[i] = st.m
	}
	return out, nil
}

// Migrate converts value from one schema version to another by composing
// registered migrations.
func (r *Registry) Migrate(name, from, to string, value map[string]any, opt MigrateOpt) (map[string]any, error) {
	steps, err := r.findPath(name, from, to, opt)
	if err != nil {
		return nil, err
	}
	cur := value
	for _, st := range steps {
		fn := st.m.Forward
		if st.reverse {
			fn = st.m.Rollback
		}
		next, err := fn(cur)
		if err != nil {
			return nil, fmt.Errorf("registry: migrating %s %s->%s: %w", name, st.m.From, st.m.To, err)
		}
		cur = next
	}
	return cur, nil
}

func (r *Registry) findPath(name, from, to string, opt MigrateOpt) ([]step, error) {
	src := CanonicalVersion(from)
	dst := CanonicalVersion(to)
	if src == dst {
		return nil, nil
	}

	r.migMu.RLock()
	migs := append([]Migration(nil), r.migrations[name]...)
	r.migMu.RUnlock()

	type edge struct {
		to string
		st step
	}
	adj := map[string][]edge{}
	for _, m := range migs {
		if m.Breaking && !opt.AllowBreaking {
			continue
		}
		f := CanonicalVersion(m.From)
		t := CanonicalVersion(m.To)
		adj[f] = append(adj[f], edge{to: t, st: step{m: m}})
		if m.Rollback != nil {
			adj[t] = append(adj[t], edge{to: f, st: step{m: m, reverse: true}})
		}
	}

	// BFS: shortest hop count wins; ties resolve by registration order.
	prev := map[string]*struct {
		from string
		st   step
	}{}
	queue := []string{src}
	visited := map[string]bool{src: true}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == dst {
			break
		}
		for _, e := range adj[cur] {
			if visited[e.to] {
				continue
			}
			visited[e.to] = true
			prev[e.to] = &struct {
				from string
				st   step
			}{from: cur, st: e.st}
			queue = append(queue, e.to)
		}
	}
	if !visited[dst] {
		return nil, fmt.Errorf("registry: no migration path for %s from %s to %s", name, src, dst)
	}

	var rev []step
	for cur := dst; cur != src; {
		p := prev[cur]
		rev = append(rev, p.st)
		cur = p.from
	}
	steps := make([]step, len(rev))
	for i := range rev {
		steps[i] = rev[len(rev)-1-i]
	}
	return steps, nil
}
