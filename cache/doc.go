// Package cache provides a generic, thread-safe, in-process cache whose
// admission, eviction, and capacity behavior is assembled from three
// independently pluggable policy families.
//
// Design
//
//   - Composition: a Cache is built from an Insertion policy (decides
//     whether a candidate is worth admitting), an Eviction policy (orders
//     resident keys from least to most valuable), and a Constraint policy
//     (tracks a resource budget — memory, item count, ...). The
//     github.com/IvanBrykalov/cachemere/policy/... subpackages provide
//     Always/TinyLFU insertion, LRU/SLRU/GDSF eviction, and Memory/Count
//     constraints; any combination can be mixed.
//
//   - Concurrency: a single sync.Mutex serializes every public operation.
//     There is no sharding — the speculative eviction loop needs a
//     consistent view of all three policies at once, which a sharded
//     design would only complicate for a library whose hot path is
//     already O(1) expected.
//
//   - Storage: a map[K]*policy.Item[V] holds resident entries; ordering and
//     admission bookkeeping live entirely inside the composed policies, not
//     in the coordinator.
//
//   - Admission and eviction: for a key that is not yet resident, Insert
//     first asks Insertion.ShouldAdd and reports false on refusal. It then
//     asks the Constraint whether the candidate fits outright (CanAdd, or
//     CanReplace for an update). If not, it clones the Constraint (O(1)
//     state) and walks the Eviction policy's victim iterator, checking each
//     candidate victim against Insertion.ShouldReplace, without mutating
//     any real state, until the clone is satisfied or a victim isn't worth
//     evicting for — in which case nothing changes and Insert reports
//     false.
//
//   - Metrics: Options.Metrics receives Hit/Miss/Evict/Size signals. The
//     default is NoopMetrics; metrics/prom provides a Prometheus-backed
//     implementation.
//
// Basic usage
//
//	c := cache.New[string, []byte](cache.Options[string, []byte]{
//	    SizeOfKey:   func(k string) uint64 { return uint64(len(k)) },
//	    SizeOfValue: func(v []byte) uint64 { return uint64(len(v)) },
//	    Insertion:   always.New[string, []byte](),
//	    Eviction:    lru.New[string, []byte](),
//	    Constraint:  memory.New[string, []byte](1 << 20),
//	})
//	c.Insert("a", []byte("1"))
//	if v, ok := c.Find("a"); ok {
//	    _ = v // use value
//	}
//	c.Remove("a")
//
// Frequency-aware admission (TinyLFU) over a segmented LRU
//
//	c := cache.New[string, string](cache.Options[string, string]{
//	    SizeOfKey:   func(k string) uint64 { return uint64(len(k)) },
//	    SizeOfValue: func(v string) uint64 { return uint64(len(v)) },
//	    Insertion:   tinylfu.New[string, string](100_000),
//	    Eviction:    slru.New[string, string](8_000),
//	    Constraint:  count.New[string, string](10_000),
//	})
//
// Exporting metrics (Prometheus adapter)
//
//	m := prom.New(nil, "cachemere", "demo", nil) // implements cache.Metrics
//	c := cache.New[string, []byte](cache.Options[string, []byte]{
//	    ...,
//	    Metrics: m,
//	})
//
// Thread-safety & complexity
//
// All methods on Cache are safe for concurrent use. Find, Insert, and
// Remove are O(1) expected plus the cost of the policy events and eviction
// work the operation triggers. With LRU or SLRU that is O(1) per event and
// per evicted item; with GDSF each event costs O(log n), and each walk of
// its victim iterator first copies the whole heap, O(n).
//
// See options.go for the full set of Options fields and package policy for
// the Insertion/Eviction/Constraint interfaces used to implement custom
// strategies.
package cache
