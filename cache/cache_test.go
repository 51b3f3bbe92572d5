package cache

import (
	"fmt"
	"sync/atomic"
	"testing"

	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/cachemere/policy/constraint/count"
	"github.com/IvanBrykalov/cachemere/policy/constraint/memory"
	"github.com/IvanBrykalov/cachemere/policy/eviction/lru"
	"github.com/IvanBrykalov/cachemere/policy/eviction/slru"
	"github.com/IvanBrykalov/cachemere/policy/insertion/always"
	"github.com/IvanBrykalov/cachemere/policy/insertion/tinylfu"
)

func sizeOfInt(int) uint64 { return 8 }

func newLRUMemoryCache(maxBytes uint64) Cache[string, int] {
	return New[string, int](Options[string, int]{
		SizeOfKey:   func(k string) uint64 { return uint64(len(k)) },
		SizeOfValue: sizeOfInt,
		Insertion:   always.New[string, int](),
		Eviction:    lru.New[string, int](),
		Constraint:  memory.New[string, int](maxBytes),
	})
}

// Basic Insert/Find/Remove semantics.
func TestCache_BasicInsertFindRemove(t *testing.T) {
	t.Parallel()

	c := newLRUMemoryCache(1 << 20)

	if !c.Insert("a", 1) {
		t.Fatal("Insert a=1 must succeed")
	}
	if v, ok := c.Find("a"); !ok || v != 1 {
		t.Fatalf("Find a want 1, got %v ok=%v", v, ok)
	}

	if !c.Insert("a", 11) {
		t.Fatal("Insert a=11 (update) must succeed")
	}
	if v, ok := c.Find("a"); !ok || v != 11 {
		t.Fatalf("Find a want 11, got %v ok=%v", v, ok)
	}

	if !c.Remove("a") {
		t.Fatal("Remove a must be true")
	}
	if _, ok := c.Find("a"); ok {
		t.Fatal("a must be absent after Remove")
	}
	if c.Remove("a") {
		t.Fatal("Remove on an already-absent key must be false")
	}
}

// Contains must not register as a hit/miss for statistics purposes.
func TestCache_Contains_DoesNotAffectStats(t *testing.T) {
	t.Parallel()

	c := newLRUMemoryCache(1 << 20)
	c.Insert("a", 1)

	if !c.Contains("a") {
		t.Fatal("a must be present")
	}
	if c.Contains("missing") {
		t.Fatal("missing must be absent")
	}
	if rate := c.HitRate(); rate != 0 {
		t.Fatalf("Contains must not move hit rate, got %v", rate)
	}
}

// Deterministic LRU eviction under a tight memory budget: accessing "a"
// promotes it to the front, so inserting "c" evicts "b" instead.
func TestCache_EvictionLRU_PromotionOnHit(t *testing.T) {
	t.Parallel()

	// Every key is 1 byte, every value 8 bytes: budget for exactly two
	// entries of 9 bytes each.
	c := newLRUMemoryCache(18)

	c.Insert("a", 1) // coldest
	c.Insert("b", 2) // warmest

	if _, ok := c.Find("a"); !ok { // promote a to warmest
		t.Fatal("expected hit for a")
	}
	if !c.Insert("c", 3) { // overflow: evict coldest, which is now b
		t.Fatal("Insert c must succeed by evicting b")
	}

	if _, ok := c.Find("b"); ok {
		t.Fatal("b must have been evicted")
	}
	if _, ok := c.Find("a"); !ok {
		t.Fatal("a must survive (promoted before the overflow)")
	}
	if v, ok := c.Find("c"); !ok || v != 3 {
		t.Fatal("c must be present")
	}
}

// Insert must refuse admission (not evict anything) when even the
// candidate alone can never fit the budget.
func TestCache_Insert_RefusesOversizedCandidate(t *testing.T) {
	t.Parallel()

	c := newLRUMemoryCache(4) // smaller than any single key+value pair
	c.Insert("a", 1)
	c.Insert("already-resident-key-too-big-on-its-own", 99999)

	if c.NumberOfItems() != 0 {
		t.Fatalf("nothing should have been admitted, got %d items", c.NumberOfItems())
	}
}

// Count constraint admits strictly by item count, independent of value
// size.
func TestCache_CountConstraint_EvictsByCount(t *testing.T) {
	t.Parallel()

	c := New[string, int](Options[string, int]{
		SizeOfKey:   func(k string) uint64 { return uint64(len(k)) },
		SizeOfValue: sizeOfInt,
		Insertion:   always.New[string, int](),
		Eviction:    lru.New[string, int](),
		Constraint:  count.New[string, int](2),
	})

	c.Insert("a", 1)
	c.Insert("b", 2)
	c.Insert("c", 3) // evicts a (coldest)

	if c.NumberOfItems() != 2 {
		t.Fatalf("want 2 items, got %d", c.NumberOfItems())
	}
	if _, ok := c.Find("a"); ok {
		t.Fatal("a must have been evicted")
	}
}

// TinyLFU's doorkeeper refuses admission for a key that has never been
// observed, even into a cache with plenty of room, and admits it once a
// prior Find (a miss, in the typical cache-aside pattern) has set its
// gatekeeper bit — matching the worked admission-refusal scenario.
func TestCache_TinyLFU_RefusesUntouchedAdmitsAfterOneTouch(t *testing.T) {
	t.Parallel()

	c := New[string, int](Options[string, int]{
		SizeOfKey:   func(k string) uint64 { return uint64(len(k)) },
		SizeOfValue: sizeOfInt,
		Insertion:   tinylfu.New[string, int](1000),
		Eviction:    slru.New[string, int](500),
		Constraint:  count.New[string, int](1000),
	})

	if c.Insert("never-seen", 1) {
		t.Fatal("a key that has never been observed must lose the admission race, even with room to spare")
	}
	if _, ok := c.Find("never-seen"); ok {
		t.Fatal("never-seen must not have been admitted")
	}

	// The Find above was a miss, which touches the gatekeeper: the key is
	// now admission-eligible.
	if !c.Insert("never-seen", 1) {
		t.Fatal("a key touched once via a prior miss must be admitted")
	}
	if _, ok := c.Find("never-seen"); !ok {
		t.Fatal("never-seen should now be resident")
	}
}

// When an update can't fit without eviction, and the eviction policy's
// victim order happens to pick the very key being updated, the coordinator
// must switch its speculative termination check from can_replace to
// can_add partway through the loop, and must commit the result as a fresh
// insert (not an update) since the old entry no longer exists to replace.
func TestCache_Insert_UpdateEvictsItsOwnKeyMidLoop(t *testing.T) {
	t.Parallel()

	mem := memory.New[string, int](10)
	c := New[string, int](Options[string, int]{
		SizeOfKey:   func(k string) uint64 { return uint64(len(k)) },
		SizeOfValue: func(v int) uint64 { return uint64(v) },
		Insertion:   always.New[string, int](),
		Eviction:    lru.New[string, int](),
		Constraint:  mem,
	})

	c.Insert("a", 3) // total 4: 1-byte key + 3-byte value
	c.Insert("b", 3) // total 4; current = 8. a is coldest, b is warmest.

	// Growing a to value 8 (total 9) alone needs 13 bytes of headroom
	// against a 10-byte budget: evicting a itself (freeing 4) still isn't
	// enough, so the loop must continue on to evict b as well before a's
	// growth fits.
	if !c.Insert("a", 8) {
		t.Fatal("growing a to 8 must succeed once both a and b are evicted")
	}

	if _, ok := c.Find("b"); ok {
		t.Fatal("b must have been evicted to make room for a's growth")
	}
	if v, ok := c.Find("a"); !ok || v != 8 {
		t.Fatalf("a must be resident with its new value 8, got %v ok=%v", v, ok)
	}
	if c.NumberOfItems() != 1 {
		t.Fatalf("want exactly 1 resident item, got %d", c.NumberOfItems())
	}
	if got := mem.CurrentMemory(); got != 9 {
		t.Fatalf("want current memory 9 (1-byte key + 8-byte value, committed as a fresh insert), got %d", got)
	}
}

// Retain keeps only matching entries and evicts the rest.
func TestCache_Retain(t *testing.T) {
	t.Parallel()

	c := newLRUMemoryCache(1 << 20)
	c.Insert("a", 1)
	c.Insert("b", 2)
	c.Insert("c", 3)

	c.Retain(func(_ string, v int) bool { return v%2 == 1 })

	if c.NumberOfItems() != 2 {
		t.Fatalf("want 2 odd-valued items, got %d", c.NumberOfItems())
	}
	if _, ok := c.Find("b"); ok {
		t.Fatal("b (even) must have been evicted by Retain")
	}
}

// ForEach and CollectInto observe every resident entry exactly once.
func TestCache_ForEachAndCollectInto(t *testing.T) {
	t.Parallel()

	c := newLRUMemoryCache(1 << 20)
	want := map[string]int{"a": 1, "b": 2, "c": 3}
	for k, v := range want {
		c.Insert(k, v)
	}

	seen := map[string]int{}
	c.ForEach(func(k string, v int) { seen[k] = v })
	if len(seen) != len(want) {
		t.Fatalf("ForEach saw %d entries, want %d", len(seen), len(want))
	}

	got := map[string]int{}
	c.CollectInto(got)
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("CollectInto[%q] = %v, want %v", k, got[k], v)
		}
	}
}

// Clear drops every entry and resets statistics.
func TestCache_Clear(t *testing.T) {
	t.Parallel()

	c := newLRUMemoryCache(1 << 20)
	c.Insert("a", 1)
	c.Find("a")
	c.Clear()

	if c.NumberOfItems() != 0 {
		t.Fatal("Clear must drop every entry")
	}
	if rate := c.HitRate(); rate != 0 {
		t.Fatalf("Clear must reset statistics, got hit rate %v", rate)
	}
}

// Swap exchanges the entire state of two caches, including their data,
// policies, and statistics.
func TestCache_Swap(t *testing.T) {
	t.Parallel()

	a := newLRUMemoryCache(1 << 20)
	b := newLRUMemoryCache(1 << 20)

	a.Insert("from-a", 1)
	b.Insert("from-b", 2)

	a.Swap(b)

	if _, ok := a.Find("from-b"); !ok {
		t.Fatal("after Swap, a must hold b's former contents")
	}
	if _, ok := b.Find("from-a"); !ok {
		t.Fatal("after Swap, b must hold a's former contents")
	}
}

// UpdateConstraint tightens the budget and evicts until satisfied again.
func TestCache_UpdateConstraint_TightenEvicts(t *testing.T) {
	t.Parallel()

	c := New[string, int](Options[string, int]{
		SizeOfKey:   func(k string) uint64 { return uint64(len(k)) },
		SizeOfValue: sizeOfInt,
		Insertion:   always.New[string, int](),
		Eviction:    lru.New[string, int](),
		Constraint:  count.New[string, int](10),
	})

	for i := 0; i < 5; i++ {
		c.Insert(fmt.Sprintf("k%d", i), i)
	}
	if c.NumberOfItems() != 5 {
		t.Fatalf("want 5 items, got %d", c.NumberOfItems())
	}

	c.UpdateConstraint(uint64(2))
	if c.NumberOfItems() != 2 {
		t.Fatalf("want 2 items after tightening to 2, got %d", c.NumberOfItems())
	}
}

// Rolling hit rate reflects the configured window, not the whole history.
func TestCache_RollingHitRate(t *testing.T) {
	t.Parallel()

	c := newLRUMemoryCache(1 << 20)
	c.SetStatisticsWindowSize(4)
	c.Insert("a", 1)

	c.Find("a")       // hit
	c.Find("missing") // miss
	c.Find("a")       // hit
	c.Find("a")       // hit

	if rate := c.HitRate(); rate != 0.75 {
		t.Fatalf("want hit rate 0.75 over the last 4 lookups, got %v", rate)
	}

	c.Find("missing") // miss, pushes the oldest hit out of the window
	if rate := c.HitRate(); rate != 0.5 {
		t.Fatalf("want hit rate 0.5 after the window rolled, got %v", rate)
	}
}

// New panics when a required Options field is missing.
func TestCache_New_PanicsOnMissingRequiredField(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Fatal("New must panic when Insertion is nil")
		}
	}()
	New[string, int](Options[string, int]{
		SizeOfKey:   func(k string) uint64 { return uint64(len(k)) },
		SizeOfValue: sizeOfInt,
		Eviction:    lru.New[string, int](),
		Constraint:  count.New[string, int](10),
	})
}

// NewFrom stops at the first refused insert rather than skipping it and
// continuing with the rest of the collection. TinyLFU refuses every
// never-touched key, so a bulk import of untouched keys must refuse the
// very first one and admit none of the rest.
func TestCache_NewFrom_StopsOnFirstRefusal(t *testing.T) {
	t.Parallel()

	c := NewFrom(map[string]int{"k1": 1, "k2": 2, "k3": 3}, Options[string, int]{
		SizeOfKey:   func(k string) uint64 { return uint64(len(k)) },
		SizeOfValue: sizeOfInt,
		Insertion:   tinylfu.New[string, int](1000),
		Eviction:    slru.New[string, int](500),
		Constraint:  count.New[string, int](1000),
	})
	if c.NumberOfItems() != 0 {
		t.Fatalf("a bulk import of never-touched keys must refuse the first one and stop, got %d items", c.NumberOfItems())
	}
}

// Concurrent Insert/Find/Remove across many goroutines must never panic
// and must leave the cache in a consistent state, matching the
// single-lock-per-operation requirement.
func TestCache_ConcurrentAccess(t *testing.T) {
	c := New[int, int](Options[int, int]{
		SizeOfKey:   func(int) uint64 { return 8 },
		SizeOfValue: sizeOfInt,
		Insertion:   always.New[int, int](),
		Eviction:    lru.New[int, int](),
		Constraint:  count.New[int, int](100),
	})

	const goroutines = 16
	const perGoroutine = 200

	var g errgroup.Group
	for g_ := 0; g_ < goroutines; g_++ {
		g_ := g_
		g.Go(func() error {
			for i := 0; i < perGoroutine; i++ {
				k := g_*perGoroutine + i
				c.Insert(k, k)
				c.Find(k)
				if i%7 == 0 {
					c.Remove(k)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	if c.NumberOfItems() > 100 {
		t.Fatalf("count constraint violated: %d items resident", c.NumberOfItems())
	}
}

// A metrics implementation sees a Hit/Miss/Evict/Size call for every
// corresponding cache operation.
type countingMetrics struct {
	hits, misses, evicts int64
}

func (m *countingMetrics) Hit()                              { atomic.AddInt64(&m.hits, 1) }
func (m *countingMetrics) Miss()                             { atomic.AddInt64(&m.misses, 1) }
func (m *countingMetrics) Evict(EvictReason)                 { atomic.AddInt64(&m.evicts, 1) }
func (m *countingMetrics) Size(entries int, totalSize uint64) {}

func TestCache_Metrics_HitMissEvict(t *testing.T) {
	t.Parallel()

	var m countingMetrics

	c := New[string, int](Options[string, int]{
		SizeOfKey:   func(k string) uint64 { return uint64(len(k)) },
		SizeOfValue: sizeOfInt,
		Insertion:   always.New[string, int](),
		Eviction:    lru.New[string, int](),
		Constraint:  count.New[string, int](1),
		Metrics:     &m,
	})

	c.Insert("a", 1)
	c.Find("a")       // hit
	c.Find("missing") // miss
	c.Insert("b", 2)  // evicts a

	if atomic.LoadInt64(&m.hits) != 1 {
		t.Fatalf("want 1 hit, got %d", m.hits)
	}
	if atomic.LoadInt64(&m.misses) != 1 {
		t.Fatalf("want 1 miss, got %d", m.misses)
	}
	if atomic.LoadInt64(&m.evicts) != 1 {
		t.Fatalf("want 1 evict, got %d", m.evicts)
	}
}
