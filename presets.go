// Package cachemere provides a small set of named convenience
// constructors over package cache's policy composition — zero-cost sugar,
// not a separate implementation. Each one wires together policies from
// the policy/... subpackages exactly as a caller could by hand; pick this
// package when one of the three shapes below fits, and compose
// cache.New/cache.Options directly otherwise.
package cachemere

import (
	"github.com/IvanBrykalov/cachemere/cache"
	"github.com/IvanBrykalov/cachemere/policy/constraint/count"
	"github.com/IvanBrykalov/cachemere/policy/constraint/memory"
	"github.com/IvanBrykalov/cachemere/policy/eviction/gdsf"
	"github.com/IvanBrykalov/cachemere/policy/eviction/lru"
	"github.com/IvanBrykalov/cachemere/policy/eviction/slru"
	"github.com/IvanBrykalov/cachemere/policy/insertion/always"
	"github.com/IvanBrykalov/cachemere/policy/insertion/tinylfu"
)

// LRUCache builds a cache that admits everything and evicts by plain
// least-recently-used order under a fixed memory budget.
func LRUCache[K comparable, V any](maxMemory uint64, sizeOfKey func(K) uint64, sizeOfValue func(V) uint64) cache.Cache[K, V] {
	return cache.New(cache.Options[K, V]{
		SizeOfKey:   sizeOfKey,
		SizeOfValue: sizeOfValue,
		Insertion:   always.New[K, V](),
		Eviction:    lru.New[K, V](),
		Constraint:  memory.New[K, V](maxMemory),
	})
}

// TinyLFUSLRUCache builds a cache that gates admission with TinyLFU and
// evicts from a segmented LRU, under a fixed item-count budget — the
// classic frequency-aware cache shape for workloads with scan pollution.
// cardinality sizes TinyLFU's gatekeeper and frequency sketch;
// protectedCapacity sizes the segmented LRU's protected segment.
func TinyLFUSLRUCache[K comparable, V any](maxCount uint64, cardinality uint32, protectedCapacity int, sizeOfKey func(K) uint64, sizeOfValue func(V) uint64) cache.Cache[K, V] {
	return cache.New(cache.Options[K, V]{
		SizeOfKey:   sizeOfKey,
		SizeOfValue: sizeOfValue,
		Insertion:   tinylfu.New[K, V](cardinality),
		Eviction:    slru.New[K, V](protectedCapacity),
		Constraint:  count.New[K, V](maxCount),
	})
}

// GDSFCache builds a cache that admits everything and evicts by
// Greedy-Dual-Size-Frequency order under a fixed memory budget — suited to
// workloads where entries have meaningfully different reload costs.
// cardinality sizes GDSF's internal frequency sketch; cost estimates an
// entry's reload cost in caller-defined units.
func GDSFCache[K comparable, V any](maxMemory uint64, cardinality uint32, cost gdsf.CostFunc[K, V], sizeOfKey func(K) uint64, sizeOfValue func(V) uint64) cache.Cache[K, V] {
	return cache.New(cache.Options[K, V]{
		SizeOfKey:   sizeOfKey,
		SizeOfValue: sizeOfValue,
		Insertion:   always.New[K, V](),
		Eviction:    gdsf.New[K, V](cardinality, cost),
		Constraint:  memory.New[K, V](maxMemory),
	})
}
