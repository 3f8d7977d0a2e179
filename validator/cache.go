package validator

import (
	"container/list"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	bound "github.com/chanuka/bound"
)

const (
	defaultCacheCapacity = 1024
	cacheShards          = 16
)

// resultCache memoizes validation results with a TTL and a size cap. It is
// sharded so concurrent validations of different inputs never contend on one
// lock; eviction is oldest-inserted-first per shard.
type resultCache struct {
	shards [cacheShards]*cacheShard
}

type cacheShard struct {
	mu       sync.RWMutex
	entries  map[string]*list.Element
	order    *list.List // front = oldest inserted
	capacity int
}

type cacheEntry struct {
	key       string
	res       Result
	expiresAt time.Time
}

func newResultCache(capacity int) *resultCache {
	if capacity < cacheShards {
		capacity = cacheShards
	}
	c := &resultCache{}
	per := capacity / cacheShards
	for i := range c.shards {
		c.shards[i] = &cacheShard{
			entries:  map[string]*list.Element{},
			order:    list.New(),
			capacity: per,
		}
	}
	return c
}

func (c *resultCache) shard(key string) *cacheShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return c.shards[h.Sum32()%cacheShards]
}

// get returns a live entry. Expired entries are never returned; they are
// lazily removed on the next write pass. The result is a deep copy: callers
// may mutate what they receive without poisoning later hits.
func (c *resultCache) get(key string, now time.Time) (Result, bool) {
	sh := c.shard(key)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	el, ok := sh.entries[key]
	if !ok {
		return Result{}, false
	}
	ent := el.Value.(*cacheEntry)
	if now.After(ent.expiresAt) {
		return Result{}, false
	}
	return cloneResult(ent.res), true
}

// put stores a deep copy of res. The caller that produced the result keeps
// its own value live after the store, so the cache must not alias it.
func (c *resultCache) put(key string, res Result, expiresAt time.Time) {
	res = cloneResult(res)
	sh := c.shard(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if el, ok := sh.entries[key]; ok {
		ent := el.Value.(*cacheEntry)
		ent.res = res
		ent.expiresAt = expiresAt
		return
	}
	el := sh.order.PushBack(&cacheEntry{key: key, res: res, expiresAt: expiresAt})
	sh.entries[key] = el
	for len(sh.entries) > sh.capacity {
		oldest := sh.order.Front()
		if oldest == nil {
			break
		}
		sh.order.Remove(oldest)
		delete(sh.entries, oldest.Value.(*cacheEntry).key)
	}
}

// flushPrefix drops every entry whose key starts with prefix. Registration
// hooks call this with "name@" so all versions of a name flush together.
func (c *resultCache) flushPrefix(prefix string) {
	for _, sh := range c.shards {
		sh.mu.Lock()
		for key, el := range sh.entries {
			if strings.HasPrefix(key, prefix) {
				sh.order.Remove(el)
				delete(sh.entries, key)
			}
		}
		sh.mu.Unlock()
	}
}

// cloneResult copies a Result deeply enough that no map or slice reachable
// from it is shared with the original.
func cloneResult(res Result) Result {
	out := res
	out.Value = cloneValueMap(res.Value)
	if res.Errors != nil {
		out.Errors = make(bound.Issues, len(res.Errors))
		for i, iss := range res.Errors {
			if iss.Params != nil {
				params := make(map[string]any, len(iss.Params))
				for k, pv := range iss.Params {
					params[k] = pv
				}
				iss.Params = params
			}
			out.Errors[i] = iss
		}
	}
	return out
}

func cloneValueMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneValueMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// len reports the total number of live entries (test helper).
func (c *resultCache) len() int {
	n := 0
	for _, sh := range c.shards {
		sh.mu.RLock()
		n += len(sh.entries)
		sh.mu.RUnlock()
	}
	return n
}
