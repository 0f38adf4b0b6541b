package records

import (
	"sort"
	"sync"
	"sync/atomic"
)

// Collection owns a volatile set of records. The backing slice can be
// replaced, filtered or resorted at any moment; workers therefore never
// hold records directly but only Refs, which stop resolving the instant
// the collection moves to a new generation.
type Collection struct {
	mu      sync.RWMutex
	gen     uint64
	records []*Record

	fullyLoaded atomic.Bool

	cbMu              sync.Mutex
	onItemReady       func(Ref)
	onDatasetEnriched func()
}

// NewCollection returns an empty collection.
func NewCollection() *Collection {
	return &Collection{gen: 1}
}

// Ref is a non-owning, liveness-checked handle to a record: an index into
// the collection's arena stamped with the generation it was issued for.
// The zero Ref never resolves. Refs are comparable, which the work queues
// rely on for deduplication.
type Ref struct {
	coll *Collection
	gen  uint64
	idx  int
}

// Get resolves the handle. It returns nil once the owning collection has
// been reset, filtered, resorted or discarded since the handle was issued;
// callers must treat that as a normal, frequent outcome.
func (r Ref) Get() *Record {
	if r.coll == nil {
		return nil
	}
	return r.coll.resolve(r.gen, r.idx)
}

// IsZero reports whether the handle was never issued by a collection.
func (r Ref) IsZero() bool { return r.coll == nil }

// Collection returns the owning collection, or nil for the zero Ref.
func (r Ref) Collection() *Collection { return r.coll }

func (c *Collection) resolve(gen uint64, idx int) *Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if gen != c.gen || idx < 0 || idx >= len(c.records) {
		return nil
	}
	return c.records[idx]
}

// Generation returns the current generation counter.
func (c *Collection) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen
}

// Len returns the number of records currently held.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

// At returns the record at index i, or nil when out of range.
func (c *Collection) At(i int) *Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i < 0 || i >= len(c.records) {
		return nil
	}
	return c.records[i]
}

// Ref issues a handle to the record at index i for the current generation.
func (c *Collection) Ref(i int) Ref {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Ref{coll: c, gen: c.gen, idx: i}
}

// Refs issues handles to every record in the current generation.
func (c *Collection) Refs() []Ref {
	c.mu.RLock()
	defer c.mu.RUnlock()
	refs := make([]Ref, len(c.records))
	for i := range c.records {
		refs[i] = Ref{coll: c, gen: c.gen, idx: i}
	}
	return refs
}

// ChildRefs issues handles to every record whose parent path matches.
func (c *Collection) ChildRefs(parentPath string) []Ref {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var refs []Ref
	for i, rec := range c.records {
		if rec.ParentPath == parentPath {
			refs = append(refs, Ref{coll: c, gen: c.gen, idx: i})
		}
	}
	return refs
}

// Reset replaces the backing records and moves to a new generation,
// invalidating every outstanding Ref.
func (c *Collection) Reset(recs []*Record) {
	c.mu.Lock()
	c.gen++
	c.records = recs
	c.mu.Unlock()
	c.fullyLoaded.Store(false)
}

// Discard drops all records and invalidates every outstanding Ref.
func (c *Collection) Discard() {
	c.Reset(nil)
}

// Sort reorders the records in place. Because indices shift, this moves to
// a new generation: outstanding Refs stop resolving and pending work for
// them silently expires.
func (c *Collection) Sort(less func(a, b *Record) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	sort.SliceStable(c.records, func(i, j int) bool {
		return less(c.records[i], c.records[j])
	})
}

// Filter keeps only the records the predicate accepts. Like Sort, this
// moves to a new generation.
func (c *Collection) Filter(keep func(*Record) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	filtered := c.records[:0]
	for _, rec := range c.records {
		if keep(rec) {
			filtered = append(filtered, rec)
		}
	}
	c.records = filtered
}

// FullyLoaded reports whether a background sweep has found nothing left to
// enrich.
func (c *Collection) FullyLoaded() bool { return c.fullyLoaded.Load() }

// SetFullyLoaded marks the collection fully enriched (or not).
func (c *Collection) SetFullyLoaded(v bool) { c.fullyLoaded.Store(v) }

// SetOnItemReady registers the callback invoked when a worker finishes one
// record. The callback runs on the worker's thread; it should hand off to
// the UI thread, not repaint directly.
func (c *Collection) SetOnItemReady(fn func(Ref)) {
	c.cbMu.Lock()
	c.onItemReady = fn
	c.cbMu.Unlock()
}

// NotifyItemReady delivers the item-ready event for a record.
func (c *Collection) NotifyItemReady(ref Ref) {
	c.cbMu.Lock()
	fn := c.onItemReady
	c.cbMu.Unlock()
	if fn != nil {
		fn(ref)
	}
}

// SetOnDatasetEnriched registers the callback invoked after a background
// sweep enriched at least one record.
func (c *Collection) SetOnDatasetEnriched(fn func()) {
	c.cbMu.Lock()
	c.onDatasetEnriched = fn
	c.cbMu.Unlock()
}

// NotifyDatasetEnriched delivers the dataset-enriched event.
func (c *Collection) NotifyDatasetEnriched() {
	c.cbMu.Lock()
	fn := c.onDatasetEnriched
	c.cbMu.Unlock()
	if fn != nil {
		fn()
	}
}
