// Package tinylfu implements the TinyLFU insertion policy: a doorkeeper
// bloom filter gates first-time admission, and a decaying frequency sketch
// arbitrates which of two resident candidates deserves to stay.
package tinylfu

import (
	"github.com/IvanBrykalov/cachemere/internal/bloomfilter"
	"github.com/IvanBrykalov/cachemere/policy"
)

// Policy holds a gatekeeper (has this key been observed at least once
// since the last reset?) and a frequency sketch (how many times,
// approximately, has it been observed since the last reset?).
type Policy[K comparable, V any] struct {
	cardinality uint32
	gatekeeper  *bloomfilter.Filter[K]
	sketch      *bloomfilter.CountingFilter[K]
}

// New constructs a TinyLFU policy whose gatekeeper and frequency sketch are
// both sized for the given expected cardinality.
func New[K comparable, V any](cardinality uint32) *Policy[K, V] {
	return &Policy[K, V]{
		cardinality: cardinality,
		gatekeeper:  bloomfilter.New[K](cardinality),
		sketch:      bloomfilter.NewCounting[K](cardinality),
	}
}

// OnCacheHit records an observation of an already-resident key.
func (p *Policy[K, V]) OnCacheHit(k K, _ policy.Item[V]) {
	p.touch(k)
}

// OnCacheMiss records an observation of a key that was not found resident.
// This is the path by which a key earns its way into the gatekeeper, and
// with it into admission eligibility.
func (p *Policy[K, V]) OnCacheMiss(k K) {
	p.touch(k)
}

func (p *Policy[K, V]) touch(k K) {
	if p.gatekeeper.MaybeContains(k) {
		p.sketch.Add(k)
		if p.sketch.Estimate(k) > p.cardinality {
			p.reset()
		}
		return
	}
	p.gatekeeper.Add(k)
}

func (p *Policy[K, V]) reset() {
	p.gatekeeper.Clear()
	p.sketch.Decay()
}

// ShouldAdd admits only keys the gatekeeper has seen before: a key's first
// touch (a hit or miss) sets its gatekeeper bit, so an Insert that comes
// before any observation is refused and one that follows it is admitted.
func (p *Policy[K, V]) ShouldAdd(k K) bool {
	return p.gatekeeper.MaybeContains(k)
}

// ShouldReplace prefers whichever of victim/candidate has the higher
// frequency estimate, with the gatekeeper contributing +1 to break ties in
// the candidate's favor when it alone has been freshly observed.
func (p *Policy[K, V]) ShouldReplace(victim, candidate K) bool {
	return p.estimate(candidate) > p.estimate(victim)
}

func (p *Policy[K, V]) estimate(k K) uint32 {
	est := p.sketch.Estimate(k)
	if p.gatekeeper.MaybeContains(k) {
		est++
	}
	return est
}

// Clear drops all tracked observations.
func (p *Policy[K, V]) Clear() {
	p.gatekeeper.Clear()
	p.sketch.Clear()
}

// GatekeeperSaturation reports the doorkeeper bloom filter's current
// Saturation(), mainly for metrics.
func (p *Policy[K, V]) GatekeeperSaturation() float64 {
	return p.gatekeeper.Saturation()
}

// SketchSaturation reports the frequency sketch's current Saturation(),
// mainly for metrics.
func (p *Policy[K, V]) SketchSaturation() float64 {
	return p.sketch.Saturation()
}

var (
	_ policy.Insertion[int, int]         = (*Policy[int, int])(nil)
	_ policy.CacheHitObserver[int, int]  = (*Policy[int, int])(nil)
	_ policy.CacheMissObserver[int, int] = (*Policy[int, int])(nil)
)
