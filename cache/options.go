package cache

import "github.com/IvanBrykalov/cachemere/policy"

// EvictReason explains why a key left the cache, mainly for metrics.
type EvictReason int

const (
	// EvictPolicy — chosen as a victim by the active eviction policy to
	// make room for an admitted insert/update.
	EvictPolicy EvictReason = iota
	// EvictRemove — removed explicitly via Remove.
	EvictRemove
	// EvictRetain — removed by Retain because the predicate rejected it.
	EvictRetain
	// EvictClear — removed as part of a Clear.
	EvictClear
	// EvictConstraint — removed by UpdateConstraint tightening the budget.
	EvictConstraint
)

// Metrics exposes cache-level observability hooks. A NoopMetrics
// implementation is provided and used by default; metrics/prom offers a
// Prometheus-backed one.
type Metrics interface {
	Hit()
	Miss()
	Evict(reason EvictReason)
	Size(entries int, totalSize uint64)
}

// NoopMetrics is a drop-in Metrics implementation that does nothing. It is
// safe for concurrent use and is the default when no backend is configured.
type NoopMetrics struct{}

func (NoopMetrics) Hit()                              {}
func (NoopMetrics) Miss()                             {}
func (NoopMetrics) Evict(EvictReason)                 {}
func (NoopMetrics) Size(entries int, totalSize uint64) {}

var _ Metrics = NoopMetrics{}

// Options configures a Cache. SizeOfKey, SizeOfValue, Insertion, Eviction,
// and Constraint are required; New panics if any is nil, since there is no
// sane default for "how big is this value" or "which policy" that wouldn't
// silently mask a caller mistake.
type Options[K comparable, V any] struct {
	// SizeOfKey and SizeOfValue are pure functions measuring the resident
	// cost of a key/value. Supplied by the caller; treated as opaque.
	SizeOfKey   func(K) uint64
	SizeOfValue func(V) uint64

	Insertion  policy.Insertion[K, V]
	Eviction   policy.Eviction[K, V]
	Constraint policy.Constraint[K, V]

	// StatisticsWindowSize is the rolling-window length for hit-rate and
	// byte-hit-rate accumulation. Zero is treated as one: every lookup is
	// still recorded, just against a window that only remembers the most
	// recent sample.
	StatisticsWindowSize uint32

	// Metrics receives Hit/Miss/Evict/Size signals. NoopMetrics by default.
	Metrics Metrics
}
