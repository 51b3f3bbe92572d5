// Package slru implements the Segmented-LRU eviction policy: a probation
// list for newly admitted keys and a protected list for keys that have
// demonstrated a repeat hit, each an independent LRU ordering.
package slru

import (
	"container/list"
	"iter"

	"github.com/IvanBrykalov/cachemere/policy"
)

// Policy holds two LRU-ordered segments. A key resides in exactly one of
// them at any time.
type Policy[K comparable, V any] struct {
	protectedCap int

	probationList *list.List
	probationIdx  map[K]*list.Element

	protectedList *list.List
	protectedIdx  map[K]*list.Element
}

// New constructs an empty Segmented-LRU policy with the given protected
// segment capacity.
func New[K comparable, V any](protectedCapacity int) *Policy[K, V] {
	if protectedCapacity < 0 {
		protectedCapacity = 0
	}
	return &Policy[K, V]{
		protectedCap:  protectedCapacity,
		probationList: list.New(),
		probationIdx:  make(map[K]*list.Element),
		protectedList: list.New(),
		protectedIdx:  make(map[K]*list.Element),
	}
}

// OnInsert admits k into probation at MRU; every key starts on probation.
func (p *Policy[K, V]) OnInsert(k K, _ policy.Item[V]) {
	p.probationIdx[k] = p.probationList.PushFront(k)
}

// OnCacheHit promotes k to protected-MRU. A key already in protected is
// simply spliced to its front. A key promoted from probation may overflow
// the protected segment; the overflow's LRU is demoted back to
// probation-MRU to keep |protected| <= protectedCap.
func (p *Policy[K, V]) OnCacheHit(k K, _ policy.Item[V]) {
	if el, ok := p.protectedIdx[k]; ok {
		p.protectedList.MoveToFront(el)
		return
	}

	el, ok := p.probationIdx[k]
	if !ok {
		return
	}
	p.probationList.Remove(el)
	delete(p.probationIdx, k)
	p.protectedIdx[k] = p.protectedList.PushFront(k)

	for p.protectedList.Len() > p.protectedCap {
		tail := p.protectedList.Back()
		tailKey := tail.Value.(K)
		p.protectedList.Remove(tail)
		delete(p.protectedIdx, tailKey)
		p.probationIdx[tailKey] = p.probationList.PushFront(tailKey)
	}
}

// OnUpdate counts as recent use, same as a cache hit.
func (p *Policy[K, V]) OnUpdate(k K, _, _ policy.Item[V]) {
	p.OnCacheHit(k, policy.Item[V]{})
}

// OnEvict removes k from whichever segment currently holds it.
func (p *Policy[K, V]) OnEvict(k K, _ policy.Item[V]) {
	if el, ok := p.probationIdx[k]; ok {
		p.probationList.Remove(el)
		delete(p.probationIdx, k)
		return
	}
	if el, ok := p.protectedIdx[k]; ok {
		p.protectedList.Remove(el)
		delete(p.protectedIdx, k)
	}
}

// VictimIter yields probation tail-to-front first (the coldest, unprotected
// keys), then protected tail-to-front.
func (p *Policy[K, V]) VictimIter() iter.Seq[K] {
	return func(yield func(K) bool) {
		for el := p.probationList.Back(); el != nil; el = el.Prev() {
			if !yield(el.Value.(K)) {
				return
			}
		}
		for el := p.protectedList.Back(); el != nil; el = el.Prev() {
			if !yield(el.Value.(K)) {
				return
			}
		}
	}
}

// Clear drops all tracked state in both segments.
func (p *Policy[K, V]) Clear() {
	p.probationList.Init()
	p.probationIdx = make(map[K]*list.Element)
	p.protectedList.Init()
	p.protectedIdx = make(map[K]*list.Element)
}

// Len reports the total number of keys tracked across both segments.
func (p *Policy[K, V]) Len() int {
	return p.probationList.Len() + p.protectedList.Len()
}

// ProtectedLen reports the current size of the protected segment, mainly
// useful for tests and metrics.
func (p *Policy[K, V]) ProtectedLen() int {
	return p.protectedList.Len()
}

var (
	_ policy.Eviction[int, int]         = (*Policy[int, int])(nil)
	_ policy.InsertObserver[int, int]   = (*Policy[int, int])(nil)
	_ policy.UpdateObserver[int, int]   = (*Policy[int, int])(nil)
	_ policy.EvictObserver[int, int]    = (*Policy[int, int])(nil)
	_ policy.CacheHitObserver[int, int] = (*Policy[int, int])(nil)
)
