// Package prom adapts cache.Metrics to Prometheus, and offers a few extra
// gauges for the probabilistic structures (TinyLFU's gatekeeper/sketch,
// GDSF's aging clock) that don't have a home in the Hit/Miss/Evict/Size
// contract since they're internal to specific policies rather than
// properties of the cache itself.
package prom

import (
	"github.com/IvanBrykalov/cachemere/cache"
	"github.com/prometheus/client_golang/prometheus"
)

// Adapter implements cache.Metrics and exports Prometheus counters/gauges.
// Safe for concurrent use; all Prometheus metric types are goroutine-safe.
type Adapter struct {
	hits       prometheus.Counter
	misses     prometheus.Counter
	evicts     *prometheus.CounterVec
	sizeEnt    prometheus.Gauge
	sizeBytes  prometheus.Gauge
	gatekeeper prometheus.Gauge
	sketch     prometheus.Gauge
	gdsfClock  prometheus.Gauge
}

// New constructs a Prometheus metrics adapter.
//   - reg:         registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:     Prometheus namespace and subsystem
//   - constLabels: static labels applied to all metrics (may be nil)
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	a := &Adapter{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "hits_total",
			Help:        "Cache hits",
			ConstLabels: constLabels,
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "misses_total",
			Help:        "Cache misses",
			ConstLabels: constLabels,
		}),
		evicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "evictions_total",
				Help:        "Cache evictions by reason",
				ConstLabels: constLabels,
			},
			[]string{"reason"},
		),
		sizeEnt: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "size_entries",
			Help:        "Number of resident entries",
			ConstLabels: constLabels,
		}),
		sizeBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "size_bytes",
			Help:        "Total resident cost (key size + value size) across all entries",
			ConstLabels: constLabels,
		}),
		gatekeeper: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "tinylfu_gatekeeper_saturation",
			Help:        "Fraction of the TinyLFU doorkeeper bloom filter's bits currently set",
			ConstLabels: constLabels,
		}),
		sketch: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "tinylfu_sketch_saturation",
			Help:        "Fraction of the TinyLFU frequency sketch's counters currently nonzero",
			ConstLabels: constLabels,
		}),
		gdsfClock: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "gdsf_clock",
			Help:        "Current GDSF aging clock value",
			ConstLabels: constLabels,
		}),
	}
	reg.MustRegister(a.hits, a.misses, a.evicts, a.sizeEnt, a.sizeBytes,
		a.gatekeeper, a.sketch, a.gdsfClock)
	return a
}

// Hit increments the hit counter.
func (a *Adapter) Hit() { a.hits.Inc() }

// Miss increments the miss counter.
func (a *Adapter) Miss() { a.misses.Inc() }

// Evict increments the eviction counter with a reason label.
func (a *Adapter) Evict(r cache.EvictReason) {
	a.evicts.WithLabelValues(reason(r)).Inc()
}

// Size updates gauges for the number of entries and total resident bytes.
func (a *Adapter) Size(entries int, totalSize uint64) {
	a.sizeEnt.Set(float64(entries))
	a.sizeBytes.Set(float64(totalSize))
}

// SetGatekeeperSaturation reports the TinyLFU doorkeeper's current
// Saturation(). The caller is responsible for polling it, since the
// policy has no cache.Metrics hook of its own.
func (a *Adapter) SetGatekeeperSaturation(frac float64) { a.gatekeeper.Set(frac) }

// SetSketchSaturation reports the TinyLFU frequency sketch's current
// Saturation().
func (a *Adapter) SetSketchSaturation(frac float64) { a.sketch.Set(frac) }

// SetGDSFClock reports the GDSF eviction policy's current aging clock.
func (a *Adapter) SetGDSFClock(clock float64) { a.gdsfClock.Set(clock) }

// reason maps EvictReason to a stable Prometheus label value.
func reason(r cache.EvictReason) string {
	switch r {
	case cache.EvictRemove:
		return "remove"
	case cache.EvictRetain:
		return "retain"
	case cache.EvictClear:
		return "clear"
	case cache.EvictConstraint:
		return "constraint"
	default:
		return "policy"
	}
}

// Compile-time check: ensure Adapter implements cache.Metrics.
var _ cache.Metrics = (*Adapter)(nil)
