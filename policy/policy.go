// Package policy defines the three policy families a cache composes —
// Insertion, Eviction, and Constraint — plus the optional event
// sub-interfaces each family may implement. The coordinator resolves the
// optional interfaces with a runtime type assertion per policy instance
// instead of requiring every policy to implement every hook; a policy that
// has nothing to do on a given event simply doesn't implement that
// interface.
package policy

import "iter"

// Item is the minimal view of a cached entry a policy needs: its storage
// cost, split between the key and the value so that constraints can track
// memory precisely even though keys are immutable once inserted.
type Item[V any] struct {
	Value     V
	ValueSize uint64
	KeySize   uint64
}

// TotalSize is the combined resident cost of the entry.
func (it Item[V]) TotalSize() uint64 {
	return it.KeySize + it.ValueSize
}

// Insertion decides whether a candidate key is worth admitting at all, and
// whether a candidate is good enough to evict a given victim for.
type Insertion[K comparable, V any] interface {
	// ShouldAdd reports whether k is eligible for admission into a cache
	// that otherwise has room for it.
	ShouldAdd(k K) bool
	// ShouldReplace reports whether candidate is preferable to victim,
	// i.e. whether evicting victim to make room for candidate is a good
	// trade. Called during the speculative eviction loop.
	ShouldReplace(victim, candidate K) bool
	// Clear resets tracked state to zero, e.g. after Cache.Clear.
	Clear()
}

// Eviction orders resident keys from least to most valuable and reacts to
// insert/update/evict notifications to keep that ordering current.
type Eviction[K comparable, V any] interface {
	// VictimIter returns an iterator over resident keys, coldest (least
	// valuable) first. The sequence must be read-only: policies mutate
	// their ordering only in response to OnEvict/OnInsert/OnUpdate/
	// OnCacheHit, never as a side effect of iteration.
	VictimIter() iter.Seq[K]
	// Clear resets tracked state to zero, e.g. after Cache.Clear.
	Clear()
}

// Constraint tracks a resource budget (memory, item count, ...) and
// decides whether a candidate insertion or replacement fits within it.
type Constraint[K comparable, V any] interface {
	// CanAdd reports whether item can be admitted without exceeding the
	// budget, assuming nothing else changes.
	CanAdd(k K, item Item[V]) bool
	// CanReplace reports whether replacing old with next at key k stays
	// within budget.
	CanReplace(k K, old, next Item[V]) bool
	// IsSatisfied reports whether the current resource usage is within
	// budget. Used by UpdateConstraint's eviction loop; the speculative
	// eviction loop in Insert checks CanAdd/CanReplace on a Clone instead.
	IsSatisfied() bool
	// Update adjusts the budget itself (e.g. a new maximum), taking
	// policy-specific arguments.
	Update(args ...any)
	// OnInsert, OnUpdate, and OnEvict are not optional for a constraint
	// the way they are for insertion/eviction policies: a constraint that
	// doesn't update its tracked usage on every mutation event drifts out
	// of sync with the data map and breaks I2/I3.
	OnInsert(k K, item Item[V])
	OnUpdate(k K, old, next Item[V])
	OnEvict(k K, item Item[V])
	// Clear resets tracked usage to zero, e.g. after Cache.Clear.
	Clear()
	// Clone returns a deep copy of the constraint's tracked state, used by
	// the speculative eviction loop to explore candidate evictions without
	// mutating the real constraint until the candidate set is committed.
	// All constraints shipped here have O(1) state, so Clone is cheap; any
	// new constraint must preserve that property for the loop to stay
	// inexpensive.
	Clone() Constraint[K, V]
}

// InsertObserver is implemented by a policy that needs to react to a fresh
// insertion (including the "update that evicted its own key" path, which
// the coordinator also treats as a fresh insert — see Insert in package
// cache).
type InsertObserver[K comparable, V any] interface {
	OnInsert(k K, item Item[V])
}

// UpdateObserver is implemented by a policy that needs to react to an
// in-place value replacement for an already-resident key.
type UpdateObserver[K comparable, V any] interface {
	OnUpdate(k K, old, next Item[V])
}

// CacheHitObserver is implemented by a policy that needs to react to a
// successful Find lookup. Contains fires no events.
type CacheHitObserver[K comparable, V any] interface {
	OnCacheHit(k K, item Item[V])
}

// CacheMissObserver is implemented by a policy that needs to react to a
// failed lookup.
type CacheMissObserver[K comparable, V any] interface {
	OnCacheMiss(k K)
}

// EvictObserver is implemented by a policy that needs to react to a key
// leaving the cache, whether through the eviction loop, UpdateConstraint,
// Retain, or an explicit Remove. Clear does not fire OnEvict; it calls each
// policy's Clear instead.
type EvictObserver[K comparable, V any] interface {
	OnEvict(k K, item Item[V])
}
