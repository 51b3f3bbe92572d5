package cache

import (
	"fmt"
	"iter"
	"sync"

	"github.com/IvanBrykalov/cachemere/policy"
)

// cacheImpl is the single-lock coordinator that mediates lookups,
// admissions, updates, evictions, and statistics across the three
// composed policies.
type cacheImpl[K comparable, V any] struct {
	mu sync.Mutex

	sizeOfKey   func(K) uint64
	sizeOfValue func(V) uint64

	insertion  policy.Insertion[K, V]
	eviction   policy.Eviction[K, V]
	constraint policy.Constraint[K, V]

	data      map[K]*policy.Item[V]
	totalSize uint64

	stats   *rollingStats
	metrics Metrics
}

// New constructs an empty Cache from Options. Panics if any required
// field (SizeOfKey, SizeOfValue, Insertion, Eviction, Constraint) is nil.
func New[K comparable, V any](opt Options[K, V]) Cache[K, V] {
	requireOptions(opt)

	metrics := opt.Metrics
	if metrics == nil {
		metrics = NoopMetrics{}
	}

	return &cacheImpl[K, V]{
		sizeOfKey:   opt.SizeOfKey,
		sizeOfValue: opt.SizeOfValue,
		insertion:   opt.Insertion,
		eviction:    opt.Eviction,
		constraint:  opt.Constraint,
		data:        make(map[K]*policy.Item[V]),
		stats:       newRollingStats(opt.StatisticsWindowSize),
		metrics:     metrics,
	}
}

// NewFrom constructs a Cache and bulk-inserts collection's pairs in
// iteration order, stopping the first time an insert is refused — it does
// not skip a refused pair and continue with the rest, matching
// cachemere::Cache::import's stop-on-first-refusal semantics.
func NewFrom[K comparable, V any, C ~map[K]V](collection C, opt Options[K, V]) Cache[K, V] {
	c := New(opt)
	for k, v := range collection {
		if !c.Insert(k, v) {
			break
		}
	}
	return c
}

func requireOptions[K comparable, V any](opt Options[K, V]) {
	switch {
	case opt.SizeOfKey == nil:
		panic("cachemere: Options.SizeOfKey must not be nil")
	case opt.SizeOfValue == nil:
		panic("cachemere: Options.SizeOfValue must not be nil")
	case opt.Insertion == nil:
		panic("cachemere: Options.Insertion must not be nil")
	case opt.Eviction == nil:
		panic("cachemere: Options.Eviction must not be nil")
	case opt.Constraint == nil:
		panic("cachemere: Options.Constraint must not be nil")
	}
}

// Find looks up k, firing on_cache_hit/on_cache_miss and recording
// statistics.
func (c *cacheImpl[K, V]) Find(k K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.data[k]
	if !ok {
		c.broadcastMiss(k)
		c.stats.record(false, 0)
		c.metrics.Miss()
		var zero V
		return zero, false
	}

	c.broadcastHit(k, *item)
	c.stats.record(true, item.ValueSize)
	c.metrics.Hit()
	return item.Value, true
}

// Contains is a read-only membership test: no events, no statistics.
func (c *cacheImpl[K, V]) Contains(k K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.data[k]
	return ok
}

// Insert admits or updates k -> v, evicting via the speculative eviction
// loop if room must be made. Returns whether the candidate was admitted.
func (c *cacheImpl[K, V]) Insert(k K, v V) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	keySize := c.sizeOfKey(k)
	valueSize := c.sizeOfValue(v)
	candidate := policy.Item[V]{Value: v, ValueSize: valueSize, KeySize: keySize}

	old, exists := c.data[k]
	if exists {
		if c.constraint.CanReplace(k, *old, candidate) {
			c.commitUpdate(k, *old, candidate)
			return true
		}

		victims, ok := c.speculativeEvict(k, candidate, true)
		if !ok {
			return false
		}
		c.evictVictims(victims)

		if cur, stillPresent := c.data[k]; stillPresent {
			c.commitUpdate(k, *cur, candidate)
		} else {
			// The original key was itself chosen as a victim mid-loop: the
			// coordinator now treats this as a fresh insert rather than an
			// update, since the old entry no longer exists to be replaced.
			c.commitInsert(k, candidate)
		}
		return true
	}

	// ShouldAdd gates admission of a never-before-resident key independent
	// of whether there's room: a policy like TinyLFU can refuse a
	// low-value candidate even into an otherwise-empty cache, so this
	// check must short-circuit before any eviction is attempted.
	if !c.insertion.ShouldAdd(k) {
		return false
	}

	if c.constraint.CanAdd(k, candidate) {
		c.commitInsert(k, candidate)
		return true
	}

	victims, ok := c.speculativeEvict(k, candidate, false)
	if !ok {
		return false
	}
	c.evictVictims(victims)
	c.commitInsert(k, candidate)
	return true
}

// speculativeEvict walks the eviction policy's victim iterator against a
// clone of the constraint's state, accumulating candidate victims without
// touching any real state, until the clone reports satisfaction or the
// candidate proves not worth evicting for. No observable mutation happens
// unless the caller goes on to call evictVictims with the returned slice.
func (c *cacheImpl[K, V]) speculativeEvict(k K, candidate policy.Item[V], isReplace bool) ([]K, bool) {
	clone := c.constraint.Clone()
	var victims []K

	// selfEvicted tracks whether k itself has been chosen as a victim
	// during *this* hypothetical walk. The real data map is never mutated
	// during speculation, so it can't tell us that — only the accumulated
	// victim list can.
	selfEvicted := false

	satisfied := func() bool {
		if isReplace && !selfEvicted {
			old := c.data[k]
			return clone.CanReplace(k, *old, candidate)
		}
		// Either this is a fresh insert, or the original key was evicted
		// earlier in this same loop: either way, the remaining question is
		// simply whether there's now room to add the candidate fresh.
		return clone.CanAdd(k, candidate)
	}

	next, stop := iter.Pull(c.eviction.VictimIter())
	defer stop()

	for !satisfied() {
		v, ok := next()
		if !ok {
			return nil, false
		}
		if !c.insertion.ShouldReplace(v, k) {
			return nil, false
		}

		victimItem, ok := c.data[v]
		if !ok {
			panic(fmt.Sprintf("cachemere: eviction policy victim_iter yielded key %v not present in the data map", v))
		}
		clone.OnEvict(v, *victimItem)
		victims = append(victims, v)
		if isReplace && v == k {
			selfEvicted = true
		}
	}
	return victims, true
}

// evictVictims commits the accumulated speculative victims: each fires
// on_evict on all three policies and is removed from the data map.
func (c *cacheImpl[K, V]) evictVictims(victims []K) {
	for _, v := range victims {
		c.removeOne(v, EvictPolicy)
	}
}

func (c *cacheImpl[K, V]) commitInsert(k K, item policy.Item[V]) {
	stored := item
	c.data[k] = &stored
	c.totalSize += item.TotalSize()
	c.broadcastInsert(k, item)
}

func (c *cacheImpl[K, V]) commitUpdate(k K, old, next policy.Item[V]) {
	stored := next
	c.data[k] = &stored
	c.totalSize = c.totalSize - old.TotalSize() + next.TotalSize()
	c.broadcastUpdate(k, old, next)
}

// removeOne fires on_evict across all three policies and erases k from the
// data map. Caller must hold c.mu and must have already confirmed k is
// present.
func (c *cacheImpl[K, V]) removeOne(k K, reason EvictReason) {
	item := c.data[k]
	c.broadcastEvict(k, *item)
	delete(c.data, k)
	c.totalSize -= item.TotalSize()
	c.metrics.Evict(reason)
	c.metrics.Size(len(c.data), c.totalSize)
}

// Remove deletes k if present, firing on_evict on all policies.
func (c *cacheImpl[K, V]) Remove(k K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.data[k]; !ok {
		return false
	}
	c.removeOne(k, EvictRemove)
	return true
}

// Retain keeps exactly the keys for which pred returns true, evicting the
// rest. pred runs under the lock and must not call back into the cache.
func (c *cacheImpl[K, V]) Retain(pred func(K, V) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var toEvict []K
	for k, item := range c.data {
		if !pred(k, item.Value) {
			toEvict = append(toEvict, k)
		}
	}
	for _, k := range toEvict {
		c.removeOne(k, EvictRetain)
	}
}

// ForEach invokes fn for every resident pair under the lock. fn must not
// call back into the cache.
func (c *cacheImpl[K, V]) ForEach(fn func(K, V)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for k, item := range c.data {
		fn(k, item.Value)
	}
}

// Clear drops all items, resets all three policies, and resets the rolling
// statistics accumulators.
func (c *cacheImpl[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for range c.data {
		c.metrics.Evict(EvictClear)
	}
	c.data = make(map[K]*policy.Item[V])
	c.totalSize = 0
	c.insertion.Clear()
	c.eviction.Clear()
	c.constraint.Clear()
	c.stats.reset()
	c.metrics.Size(0, 0)
}

// Swap exchanges the entire state of two caches, locking both in a
// deadlock-avoidant order derived from their addresses (not argument
// position). other must have been constructed by New/NewFrom with the
// same K, V; a foreign Cache implementation is a programming error.
func (c *cacheImpl[K, V]) Swap(other Cache[K, V]) {
	o, ok := other.(*cacheImpl[K, V])
	if !ok {
		panic("cachemere: Swap requires another *cache.cacheImpl[K, V] of the same type")
	}
	if o == c {
		return
	}

	lockTwo(&c.mu, &o.mu)
	defer unlockTwo(&c.mu, &o.mu)

	c.sizeOfKey, o.sizeOfKey = o.sizeOfKey, c.sizeOfKey
	c.sizeOfValue, o.sizeOfValue = o.sizeOfValue, c.sizeOfValue
	c.insertion, o.insertion = o.insertion, c.insertion
	c.eviction, o.eviction = o.eviction, c.eviction
	c.constraint, o.constraint = o.constraint, c.constraint
	c.data, o.data = o.data, c.data
	c.totalSize, o.totalSize = o.totalSize, c.totalSize
	c.stats, o.stats = o.stats, c.stats
	c.metrics, o.metrics = o.metrics, c.metrics
}

// UpdateConstraint forwards args to the constraint, then evicts from the
// victim iterator until the constraint reports satisfaction.
func (c *cacheImpl[K, V]) UpdateConstraint(args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.constraint.Update(args...)

	for !c.constraint.IsSatisfied() {
		next, stop := iter.Pull(c.eviction.VictimIter())
		v, ok := next()
		stop()
		if !ok {
			break
		}
		if _, present := c.data[v]; !present {
			panic(fmt.Sprintf("cachemere: eviction policy victim_iter yielded key %v not present in the data map", v))
		}
		c.removeOne(v, EvictConstraint)
	}
}

// CollectInto walks the data map under the lock and emits (k, value)
// pairs into dst.
func (c *cacheImpl[K, V]) CollectInto(dst map[K]V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for k, item := range c.data {
		dst[k] = item.Value
	}
}

// HitRate returns the rolling-window mean hit rate (0..1).
func (c *cacheImpl[K, V]) HitRate() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats.hitRate()
}

// ByteHitRate returns the rolling-window mean bytes saved per lookup.
func (c *cacheImpl[K, V]) ByteHitRate() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats.byteHitRate()
}

// NumberOfItems reports the current resident count.
func (c *cacheImpl[K, V]) NumberOfItems() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

// StatisticsWindowSize reports the configured rolling-window length.
func (c *cacheImpl[K, V]) StatisticsWindowSize() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats.size
}

// SetStatisticsWindowSize resizes the rolling-window length, discarding
// all previously recorded samples.
func (c *cacheImpl[K, V]) SetStatisticsWindowSize(size uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.resize(size)
}

func (c *cacheImpl[K, V]) broadcastInsert(k K, item policy.Item[V]) {
	if obs, ok := c.insertion.(policy.InsertObserver[K, V]); ok {
		obs.OnInsert(k, item)
	}
	if obs, ok := c.eviction.(policy.InsertObserver[K, V]); ok {
		obs.OnInsert(k, item)
	}
	c.constraint.OnInsert(k, item)
	c.metrics.Size(len(c.data), c.totalSize)
}

func (c *cacheImpl[K, V]) broadcastUpdate(k K, old, next policy.Item[V]) {
	if obs, ok := c.insertion.(policy.UpdateObserver[K, V]); ok {
		obs.OnUpdate(k, old, next)
	}
	if obs, ok := c.eviction.(policy.UpdateObserver[K, V]); ok {
		obs.OnUpdate(k, old, next)
	}
	c.constraint.OnUpdate(k, old, next)
	c.metrics.Size(len(c.data), c.totalSize)
}

func (c *cacheImpl[K, V]) broadcastHit(k K, item policy.Item[V]) {
	if obs, ok := c.insertion.(policy.CacheHitObserver[K, V]); ok {
		obs.OnCacheHit(k, item)
	}
	if obs, ok := c.eviction.(policy.CacheHitObserver[K, V]); ok {
		obs.OnCacheHit(k, item)
	}
}

func (c *cacheImpl[K, V]) broadcastMiss(k K) {
	if obs, ok := c.insertion.(policy.CacheMissObserver[K, V]); ok {
		obs.OnCacheMiss(k)
	}
	if obs, ok := c.eviction.(policy.CacheMissObserver[K, V]); ok {
		obs.OnCacheMiss(k)
	}
}

func (c *cacheImpl[K, V]) broadcastEvict(k K, item policy.Item[V]) {
	if obs, ok := c.insertion.(policy.EvictObserver[K, V]); ok {
		obs.OnEvict(k, item)
	}
	if obs, ok := c.eviction.(policy.EvictObserver[K, V]); ok {
		obs.OnEvict(k, item)
	}
	c.constraint.OnEvict(k, item)
}

var _ Cache[int, int] = (*cacheImpl[int, int])(nil)
