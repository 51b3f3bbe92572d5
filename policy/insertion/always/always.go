// Package always implements the trivial insertion policy: every candidate
// is admitted, and every candidate beats every victim.
package always

import "github.com/IvanBrykalov/cachemere/policy"

// Policy holds no state: should_add and should_replace are both constant
// true.
type Policy[K comparable, V any] struct{}

// New constructs the Always insertion policy.
func New[K comparable, V any]() *Policy[K, V] { return &Policy[K, V]{} }

// ShouldAdd always admits.
func (Policy[K, V]) ShouldAdd(K) bool { return true }

// ShouldReplace always prefers the candidate.
func (Policy[K, V]) ShouldReplace(K, K) bool { return true }

// Clear is a no-op: the Always policy holds no state.
func (Policy[K, V]) Clear() {}

var _ policy.Insertion[int, int] = Policy[int, int]{}
