package queue

import (
	"sync"

	"asset-browser/internal/metrics"
	"asset-browser/internal/records"
)

// Unique is a deduplicating, priority-capable queue of weak record
// references.
//
// Ordering: normal submissions are appended to the cold end and dequeued
// FIFO among themselves. Forced submissions are pushed onto the hot end -
// the end Get pops from - so they are serviced before any normal item that
// was already waiting, and LIFO relative to each other. Once forced items
// drain, FIFO order resumes. This models "the user is looking at this row
// right now" without starving the rest of the queue.
type Unique struct {
	name string

	mu    sync.Mutex
	items []records.Ref
}

// New returns an empty queue. The name labels queue metrics.
func New(name string) *Unique {
	return &Unique{name: name}
}

// Name returns the queue's metric label.
func (q *Unique) Name() string { return q.name }

// Put submits a reference. Without force, callers must not submit a
// reference already present (check Contains first); the queue itself does
// not re-check. With force, the reference is placed so it is dequeued
// ahead of previously queued normal items.
func (q *Unique) Put(ref records.Ref, force bool) {
	q.mu.Lock()
	if force {
		// Hot end: Get pops from the back.
		q.items = append(q.items, ref)
	} else {
		// Cold end.
		q.items = append([]records.Ref{ref}, q.items...)
	}
	depth := len(q.items)
	q.mu.Unlock()

	mode := "normal"
	if force {
		mode = "forced"
	}
	metrics.QueueSubmissionsTotal.WithLabelValues(q.name, mode).Inc()
	metrics.QueueDepth.WithLabelValues(q.name).Set(float64(depth))
}

// Get removes and returns the next reference, non-blocking. The second
// return value is false when the queue is empty.
func (q *Unique) Get() (records.Ref, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return records.Ref{}, false
	}
	ref := q.items[len(q.items)-1]
	q.items = q.items[:len(q.items)-1]
	metrics.QueueDepth.WithLabelValues(q.name).Set(float64(len(q.items)))
	return ref, true
}

// Contains reports whether the reference is currently queued.
func (q *Unique) Contains(ref records.Ref) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, r := range q.items {
		if r == ref {
			return true
		}
	}
	return false
}

// Len returns the current queue depth.
func (q *Unique) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Drain discards all queued entries.
func (q *Unique) Drain() {
	q.mu.Lock()
	q.items = nil
	q.mu.Unlock()
	metrics.QueueResetsTotal.WithLabelValues(q.name).Inc()
	metrics.QueueDepth.WithLabelValues(q.name).Set(0)
}
