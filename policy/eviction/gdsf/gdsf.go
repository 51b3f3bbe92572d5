// Package gdsf implements the Greedy-Dual-Size-Frequency eviction policy: a
// priority multiset ordered by a coefficient that favors items with a high
// reload cost per byte and a high observed access frequency, aged by a
// monotonic clock so long-lived entries don't stay perpetually favored.
package gdsf

import (
	"container/heap"
	"iter"

	"github.com/IvanBrykalov/cachemere/internal/bloomfilter"
	"github.com/IvanBrykalov/cachemere/policy"
)

// CostFunc estimates the reload cost of (k, item), in caller-defined units
// (e.g. the cost of recomputing or refetching the value). Supplied by the
// caller at construction time; cachemere treats it as a pure function.
type CostFunc[K comparable, V any] func(k K, item policy.Item[V]) float64

type entry[K comparable] struct {
	key K
	h   float64
	idx int
}

type entryHeap[K comparable] []*entry[K]

func (h entryHeap[K]) Len() int            { return len(h) }
func (h entryHeap[K]) Less(i, j int) bool  { return h[i].h < h[j].h }
func (h entryHeap[K]) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].idx = i; h[j].idx = j }
func (h *entryHeap[K]) Push(x any) {
	e := x.(*entry[K])
	e.idx = len(*h)
	*h = append(*h, e)
}
func (h *entryHeap[K]) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// Policy is the GDSF eviction policy. The priority multiset is a binary
// min-heap over h_coefficient (lowest first matches "yield coldest first"),
// with a side index from key to heap entry for O(log n) removal on
// cache-hit re-insertion and on eviction.
type Policy[K comparable, V any] struct {
	cost   CostFunc[K, V]
	clock  float64
	heap   entryHeap[K]
	idx    map[K]*entry[K]
	sketch *bloomfilter.CountingFilter[K]
}

// New constructs an empty GDSF policy. cardinality sizes the internal
// frequency sketch (see internal/bloomfilter); cost estimates reload cost
// per the spec's cost functor contract.
func New[K comparable, V any](cardinality uint32, cost CostFunc[K, V]) *Policy[K, V] {
	return &Policy[K, V]{
		cost:   cost,
		heap:   make(entryHeap[K], 0),
		idx:    make(map[K]*entry[K]),
		sketch: bloomfilter.NewCounting[K](cardinality),
	}
}

func (p *Policy[K, V]) coefficient(k K, item policy.Item[V]) float64 {
	total := float64(item.TotalSize())
	if total <= 0 {
		total = 1
	}
	freq := float64(p.sketch.Estimate(k))
	return p.clock + freq*(p.cost(k, item)/total)
}

// OnInsert registers a frequency observation, computes h, and inserts k
// into the priority set.
func (p *Policy[K, V]) OnInsert(k K, item policy.Item[V]) {
	p.sketch.Add(k)
	e := &entry[K]{key: k, h: p.coefficient(k, item)}
	heap.Push(&p.heap, e)
	p.idx[k] = e
}

// OnCacheHit removes the old entry and re-inserts with a freshly computed
// h, which rises because the sketch now estimates a higher frequency.
func (p *Policy[K, V]) OnCacheHit(k K, item policy.Item[V]) {
	p.removeEntry(k)
	p.OnInsert(k, item)
}

// OnUpdate follows the same re-insertion behavior as a cache hit.
func (p *Policy[K, V]) OnUpdate(k K, _, next policy.Item[V]) {
	p.OnCacheHit(k, next)
}

// OnEvict advances the clock to at least the evicted entry's coefficient
// and removes it from the priority set.
func (p *Policy[K, V]) OnEvict(k K, _ policy.Item[V]) {
	e, ok := p.idx[k]
	if !ok {
		return
	}
	if e.h > p.clock {
		p.clock = e.h
	}
	p.removeEntry(k)
}

func (p *Policy[K, V]) removeEntry(k K) {
	e, ok := p.idx[k]
	if !ok {
		return
	}
	heap.Remove(&p.heap, e.idx)
	delete(p.idx, k)
}

// VictimIter yields keys in ascending coefficient order — lowest h first.
// Iteration is read-only: it snapshots the current heap order rather than
// draining the live heap, since speculative eviction must be able to
// iterate without mutating real state.
func (p *Policy[K, V]) VictimIter() iter.Seq[K] {
	return func(yield func(K) bool) {
		// Clone each entry rather than copying pointers: heap.Pop mutates
		// the idx field in place, and the real entries are shared with
		// p.idx — mutating them here would corrupt the live heap's
		// bookkeeping.
		ordered := make(entryHeap[K], len(p.heap))
		for i, e := range p.heap {
			clone := *e
			ordered[i] = &clone
		}
		for ordered.Len() > 0 {
			e := heap.Pop(&ordered).(*entry[K])
			if !yield(e.key) {
				return
			}
		}
	}
}

// Clear drops all tracked state, including the frequency sketch.
func (p *Policy[K, V]) Clear() {
	p.heap = p.heap[:0]
	p.idx = make(map[K]*entry[K])
	p.sketch.Clear()
}

// Len reports the number of keys currently tracked.
func (p *Policy[K, V]) Len() int {
	return len(p.heap)
}

// Clock reports the current aging clock, mainly for metrics/tests.
func (p *Policy[K, V]) Clock() float64 {
	return p.clock
}

var (
	_ policy.Eviction[int, int]         = (*Policy[int, int])(nil)
	_ policy.InsertObserver[int, int]   = (*Policy[int, int])(nil)
	_ policy.UpdateObserver[int, int]   = (*Policy[int, int])(nil)
	_ policy.EvictObserver[int, int]    = (*Policy[int, int])(nil)
	_ policy.CacheHitObserver[int, int] = (*Policy[int, int])(nil)
)
