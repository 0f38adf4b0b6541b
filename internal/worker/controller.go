package worker

import (
	"errors"
	"runtime"
	"sync"
	"time"

	"asset-browser/internal/logging"
	"asset-browser/internal/metrics"
	"asset-browser/internal/records"
)

// ErrInvalidRef is returned when Put is handed something that is not a
// collection-issued weak handle. This is a programming error on the
// caller's side, not a runtime condition.
var ErrInvalidRef = errors.New("invalid reference: must be a collection-issued weak handle")

// Controller owns one worker and the dedicated OS thread it runs on. A
// periodic timer drives the worker: one Activate per tick. Controllers are
// created once per worker role at startup and torn down at shutdown.
type Controller struct {
	worker   *Worker
	interval time.Duration

	stop      chan struct{}
	done      chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
}

// NewController returns a controller driving the worker at the given tick
// interval. Fast roles (metadata) use short intervals, slow roles
// (thumbnails) longer ones.
func NewController(w *Worker, interval time.Duration) *Controller {
	return &Controller{
		worker:   w,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Worker returns the controlled worker.
func (c *Controller) Worker() *Worker { return c.worker }

// Start launches the worker thread and its timer.
func (c *Controller) Start() {
	c.startOnce.Do(func() {
		go c.run()
	})
}

func (c *Controller) run() {
	// Every worker role gets its own OS thread; enrichment never runs on
	// the UI thread.
	runtime.LockOSThread()
	defer close(c.done)

	logging.Debug("%s controller started (interval: %v)", c.worker.Name(), c.interval)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.worker.Activate()
		case <-c.stop:
			logging.Debug("%s controller stopped", c.worker.Name())
			return
		}
	}
}

// Put submits a reference to the worker's queue. The interrupt flag is
// cleared first so a reset pulse does not swallow the fresh submission.
// Without force, a reference already queued is not submitted again; with
// force it jumps ahead of previously queued normal items.
func (c *Controller) Put(ref records.Ref, force bool) error {
	if ref.IsZero() {
		return ErrInvalidRef
	}

	c.worker.token.Clear()

	if !force && c.worker.queue.Contains(ref) {
		metrics.QueueSubmissionsTotal.WithLabelValues(c.worker.Name(), "duplicate").Inc()
		return nil
	}
	c.worker.queue.Put(ref, force)
	return nil
}

// RequestReset drains pending work and asks in-flight work to abort at its
// next liveness checkpoint.
func (c *Controller) RequestReset() {
	c.worker.RequestReset()
}

// Stop signals the worker thread to exit and joins it.
func (c *Controller) Stop() {
	c.stopOnce.Do(func() {
		close(c.stop)
		<-c.done
	})
}
