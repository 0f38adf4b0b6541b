package worker

import (
	"fmt"
	"sync"
	"time"

	"asset-browser/internal/metrics"
	"asset-browser/internal/queue"
)

// Monitor is a read-only aggregator of pending work across registered
// queues, polled periodically for UI feedback. It never mutates queue or
// record state. Queues are registered explicitly at startup; there is no
// ambient registry.
type Monitor struct {
	interval time.Duration

	mu     sync.Mutex
	queues []*queue.Unique

	onUpdate func(pending int)

	stop      chan struct{}
	done      chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
}

// NewMonitor returns a monitor polling at the given interval.
func NewMonitor(interval time.Duration) *Monitor {
	return &Monitor{
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Register adds a queue to the aggregate.
func (m *Monitor) Register(q *queue.Unique) {
	m.mu.Lock()
	m.queues = append(m.queues, q)
	m.mu.Unlock()
}

// PendingCount sums the current depth of every registered queue.
func (m *Monitor) PendingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, q := range m.queues {
		total += q.Len()
	}
	return total
}

// Text returns the human-readable progress label, or "" when all queues
// are drained.
func (m *Monitor) Text() string {
	n := m.PendingCount()
	if n == 0 {
		return ""
	}
	return fmt.Sprintf("Loading... (%d left)", n)
}

// SetOnUpdate registers a callback invoked with the pending count on every
// poll. It runs on the monitor's goroutine.
func (m *Monitor) SetOnUpdate(fn func(pending int)) {
	m.mu.Lock()
	m.onUpdate = fn
	m.mu.Unlock()
}

// Start begins polling.
func (m *Monitor) Start() {
	m.startOnce.Do(func() {
		go m.run()
	})
}

func (m *Monitor) run() {
	defer close(m.done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n := m.PendingCount()
			metrics.PendingItems.Set(float64(n))

			m.mu.Lock()
			fn := m.onUpdate
			m.mu.Unlock()
			if fn != nil {
				fn(n)
			}
		case <-m.stop:
			return
		}
	}
}

// Stop ends polling and joins the monitor goroutine.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.stop)
		<-m.done
	})
}
