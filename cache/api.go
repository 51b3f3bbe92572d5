package cache

// Cache is the public surface every cachemere cache exposes, regardless of
// which Insertion/Eviction/Constraint policies it was built with.
type Cache[K comparable, V any] interface {
	// Find looks k up, reporting a hit or a miss to the composed policies
	// and to the rolling statistics.
	Find(k K) (V, bool)
	// Contains is a read-only membership test: it fires no events and does
	// not affect hit-rate statistics.
	Contains(k K) bool
	// Insert admits or updates k -> v, evicting via the active policies if
	// room must be made first. Reports whether the candidate was admitted;
	// false means the cache's state is unchanged.
	Insert(k K, v V) bool
	// Remove deletes k if present, reporting true iff it was present.
	Remove(k K) bool
	// Retain keeps exactly the entries for which pred returns true,
	// evicting the rest. pred must not call back into the cache.
	Retain(pred func(K, V) bool)
	// ForEach invokes fn for every resident entry. fn must not call back
	// into the cache.
	ForEach(fn func(K, V))
	// Clear removes every entry and resets all composed policies and
	// statistics to their initial state.
	Clear()
	// Swap exchanges the entire state — policies, data, statistics — of
	// this cache with other's. other must be a *cache.cacheImpl[K, V]
	// produced by New/NewFrom with the same type parameters; passing a
	// foreign implementation is a programming error and panics.
	Swap(other Cache[K, V])
	// UpdateConstraint forwards args to the constraint policy's Update and
	// then evicts until the constraint reports satisfaction again.
	UpdateConstraint(args ...any)
	// CollectInto copies every resident (key, value) pair into dst.
	CollectInto(dst map[K]V)
	// HitRate returns the rolling-window hit rate in [0, 1].
	HitRate() float64
	// ByteHitRate returns the rolling-window mean bytes served per lookup.
	ByteHitRate() float64
	// NumberOfItems reports the current resident count.
	NumberOfItems() int
	// StatisticsWindowSize reports the configured rolling-window length.
	StatisticsWindowSize() uint32
	// SetStatisticsWindowSize resizes the rolling window, discarding
	// previously recorded samples.
	SetStatisticsWindowSize(size uint32)
}

// FindBy looks up a cache entry from a view type that is convertible to K
// but not identical to it, without requiring the caller to construct a K
// up front for, e.g., a string cache keyed by a borrowed []byte. It costs
// one call to toKey and one map lookup — the same as calling Find(toKey(
// view)) directly. It exists as the idiomatic alternative to a C++-style
// transparent-comparator heterogeneous lookup (see DESIGN.md): Go's native
// map lookup is already O(1), so there is nothing to gain from a custom
// hash table here, only correctness risk.
func FindBy[K comparable, V any, View any](c Cache[K, V], view View, toKey func(View) K) (V, bool) {
	return c.Find(toKey(view))
}
