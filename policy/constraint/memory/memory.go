// Package memory implements the Memory constraint policy: a cache budget
// expressed in total resident bytes (key size plus value size).
package memory

import "github.com/IvanBrykalov/cachemere/policy"

// Policy tracks current and maximum resident byte usage. State is O(1),
// making it cheap to Clone for the speculative eviction loop.
type Policy[K comparable, V any] struct {
	current uint64
	max     uint64
}

// New constructs a Memory constraint with the given maximum byte budget.
func New[K comparable, V any](maxMemory uint64) *Policy[K, V] {
	return &Policy[K, V]{max: maxMemory}
}

// CanAdd reports whether item fits without exceeding the budget.
func (p *Policy[K, V]) CanAdd(_ K, item policy.Item[V]) bool {
	return p.current+item.TotalSize() <= p.max
}

// CanReplace reports whether swapping old for next at k stays within
// budget. Key size is invariant across an update (keys are immutable), so
// only the value-size delta matters.
func (p *Policy[K, V]) CanReplace(_ K, old, next policy.Item[V]) bool {
	return p.current-old.ValueSize+next.ValueSize <= p.max
}

// IsSatisfied reports whether current usage is within budget.
func (p *Policy[K, V]) IsSatisfied() bool {
	return p.current <= p.max
}

// Update replaces the maximum byte budget. Expected args: a single uint64
// (or any integer type convertible to uint64) new maximum.
func (p *Policy[K, V]) Update(args ...any) {
	if len(args) == 0 {
		return
	}
	if v, ok := toUint64(args[0]); ok {
		p.max = v
	}
}

func toUint64(v any) (uint64, bool) {
	switch n := v.(type) {
	case uint64:
		return n, true
	case uint:
		return uint64(n), true
	case int:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case int64:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	default:
		return 0, false
	}
}

// OnInsert adds item's total size to current usage.
func (p *Policy[K, V]) OnInsert(_ K, item policy.Item[V]) {
	p.current += item.TotalSize()
}

// OnUpdate adjusts current usage by the value-size delta.
func (p *Policy[K, V]) OnUpdate(_ K, old, next policy.Item[V]) {
	p.current = p.current - old.ValueSize + next.ValueSize
}

// OnEvict subtracts item's total size from current usage.
func (p *Policy[K, V]) OnEvict(_ K, item policy.Item[V]) {
	p.current -= item.TotalSize()
}

// Clear resets current usage to zero.
func (p *Policy[K, V]) Clear() {
	p.current = 0
}

// Clone returns a deep copy of this constraint's state.
func (p *Policy[K, V]) Clone() policy.Constraint[K, V] {
	clone := *p
	return &clone
}

// CurrentMemory reports current tracked usage, mainly for metrics/tests.
func (p *Policy[K, V]) CurrentMemory() uint64 { return p.current }

// MaxMemory reports the configured budget, mainly for metrics/tests.
func (p *Policy[K, V]) MaxMemory() uint64 { return p.max }

var _ policy.Constraint[int, int] = (*Policy[int, int])(nil)
