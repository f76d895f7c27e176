package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"financas/internal/log"
)

// Key names one cached query.
type Key string

const (
	KeyCategories   Key = "categories"
	KeyTransactions Key = "transactions"
	KeyDashboard    Key = "dashboard"
)

// Keys to invalidate after each kind of mutation. A category title change
// shows up in the transactions table and in the chart labels, so category
// writes invalidate all three.
var (
	CategoryMutationKeys    = []Key{KeyCategories, KeyTransactions, KeyDashboard}
	TransactionMutationKeys = []Key{KeyTransactions, KeyDashboard}
)

// QueryCache holds the results of read queries against the finance API.
//
// Concurrent reads of a missing key share a single fetch. Invalidate bumps a
// per-key generation, so a fetch that started before an invalidation still
// answers its own callers but never repopulates the cache with stale data.
type QueryCache struct {
	store  *LRUCache[any]
	group  singleflight.Group
	logger *log.Logger

	mu   sync.Mutex
	gens map[Key]uint64
}

// NewQueryCache creates a query cache holding at most maxEntries results for ttl.
func NewQueryCache(maxEntries int, ttl time.Duration, logger *log.Logger) *QueryCache {
	if logger == nil {
		logger = log.Discard()
	}
	return &QueryCache{
		store:  NewLRUCache[any](maxEntries, ttl),
		logger: logger.WithComponent(log.ComponentCache),
		gens:   make(map[Key]uint64),
	}
}

// Store exposes the backing LRU so a Manager can sweep it.
func (q *QueryCache) Store() Cleaner { return q.store }

func (q *QueryCache) generation(key Key) uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.gens[key]
}

// Invalidate drops the given keys; the next Fetch of each refetches.
func (q *QueryCache) Invalidate(keys ...Key) {
	q.mu.Lock()
	for _, k := range keys {
		q.gens[k]++
		q.store.Delete(string(k))
		q.group.Forget(string(k))
	}
	q.mu.Unlock()
	q.logger.Debug("Cache invalidated", "keys", keys)
}

// Len is the number of cached results.
func (q *QueryCache) Len() int { return q.store.Size() }

// put stores v unless key was invalidated since gen was read.
func (q *QueryCache) put(key Key, gen uint64, v any) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.gens[key] != gen {
		return
	}
	q.store.Set(string(key), v)
}

// Fetch returns the cached value for key or runs fn to load it. Errors are
// never cached. Cancelling ctx releases the caller but not the shared fetch.
func Fetch[T any](ctx context.Context, q *QueryCache, key Key, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	if v, ok := q.store.Get(string(key)); ok {
		if typed, ok := v.(T); ok {
			q.logger.DebugContext(ctx, "Cache hit", log.FieldCacheKey, string(key))
			return typed, nil
		}
	}

	gen := q.generation(key)
	ch := q.group.DoChan(string(key), func() (any, error) {
		v, err := fn(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		q.put(key, gen, v)
		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		typed, ok := res.Val.(T)
		if !ok {
			return zero, fmt.Errorf("cache: key %q holds %T", key, res.Val)
		}
		q.logger.DebugContext(ctx, "Cache fill", log.FieldCacheKey, string(key), "shared", res.Shared)
		return typed, nil
	}
}
