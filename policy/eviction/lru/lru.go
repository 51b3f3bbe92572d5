// Package lru implements the plain Least-Recently-Used eviction policy: a
// single ordered list of resident keys with a side index for O(1) splice.
package lru

import (
	"container/list"
	"iter"

	"github.com/IvanBrykalov/cachemere/policy"
)

// Policy is a doubly-linked list of key-references ordered MRU (front) to
// LRU (back), plus a side index for O(1) lookup of a key's list element.
// It owns its own list rather than delegating to shard hooks, since the
// coordinator has a single cache-wide lock, not per-shard state.
type Policy[K comparable, V any] struct {
	list *list.List
	idx  map[K]*list.Element
}

// New constructs an empty LRU eviction policy.
func New[K comparable, V any]() *Policy[K, V] {
	return &Policy[K, V]{
		list: list.New(),
		idx:  make(map[K]*list.Element),
	}
}

// OnInsert places k at MRU.
func (p *Policy[K, V]) OnInsert(k K, _ policy.Item[V]) {
	p.idx[k] = p.list.PushFront(k)
}

// OnCacheHit splices k to MRU; a no-op if k is already at the front.
func (p *Policy[K, V]) OnCacheHit(k K, _ policy.Item[V]) {
	p.touch(k)
}

// OnUpdate treats an in-place value replacement as recent use.
func (p *Policy[K, V]) OnUpdate(k K, _, _ policy.Item[V]) {
	p.touch(k)
}

func (p *Policy[K, V]) touch(k K) {
	el, ok := p.idx[k]
	if !ok {
		return
	}
	p.list.MoveToFront(el)
}

// OnEvict removes k wherever it sits in the list — not necessarily the
// tail, since the coordinator may evict a specific key for reasons unrelated
// to this policy's ordering (e.g. Remove, Retain).
func (p *Policy[K, V]) OnEvict(k K, _ policy.Item[V]) {
	el, ok := p.idx[k]
	if !ok {
		return
	}
	p.list.Remove(el)
	delete(p.idx, k)
}

// VictimIter yields keys tail-to-front: coldest (least recently used) first.
func (p *Policy[K, V]) VictimIter() iter.Seq[K] {
	return func(yield func(K) bool) {
		for el := p.list.Back(); el != nil; el = el.Prev() {
			if !yield(el.Value.(K)) {
				return
			}
		}
	}
}

// Clear drops all tracked state.
func (p *Policy[K, V]) Clear() {
	p.list.Init()
	p.idx = make(map[K]*list.Element)
}

// Len reports the number of keys currently tracked.
func (p *Policy[K, V]) Len() int {
	return p.list.Len()
}

var (
	_ policy.Eviction[int, int]         = (*Policy[int, int])(nil)
	_ policy.InsertObserver[int, int]   = (*Policy[int, int])(nil)
	_ policy.UpdateObserver[int, int]   = (*Policy[int, int])(nil)
	_ policy.EvictObserver[int, int]    = (*Policy[int, int])(nil)
	_ policy.CacheHitObserver[int, int] = (*Policy[int, int])(nil)
)
