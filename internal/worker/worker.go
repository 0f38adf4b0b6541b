package worker

import (
	"time"

	"asset-browser/internal/logging"
	"asset-browser/internal/metrics"
	"asset-browser/internal/queue"
	"asset-browser/internal/records"
)

// Stepper processes one dequeued reference. Implementations must check the
// shared Token at every point where they would otherwise touch the
// referent, and must treat a reference that no longer resolves as a
// normal outcome: abort and report not-ok, no partial result.
type Stepper interface {
	// Step returns the reference and true when the unit of work completed
	// and an item-ready event should fire. It returns false when there is
	// nothing further to do (stale reference, interrupted, already
	// loaded, terminal failure).
	Step(ref records.Ref) (records.Ref, bool)
}

// Worker is a stateful unit bound to one queue. Each Activate call pulls
// and processes at most one reference. Workers live for the application's
// lifetime; RequestReset raises the interrupt pulse and drains the queue.
type Worker struct {
	name        string
	queue       *queue.Unique
	token       *Token
	step        Stepper
	onItemReady func(records.Ref)

	// The background sweeper variant keeps its queue on reset.
	drainOnReset bool
}

// New returns a worker processing items with the given stepper. The token
// must be the same one the stepper consults. onItemReady may be nil.
func New(name string, token *Token, step Stepper, onItemReady func(records.Ref)) *Worker {
	return &Worker{
		name:         name,
		queue:        queue.New(name),
		token:        token,
		step:         step,
		onItemReady:  onItemReady,
		drainOnReset: true,
	}
}

// Name returns the worker's role name.
func (w *Worker) Name() string { return w.name }

// Queue returns the worker's queue.
func (w *Worker) Queue() *queue.Unique { return w.queue }

// Token returns the worker's cancellation token.
func (w *Worker) Token() *Token { return w.token }

// Activate dequeues and processes at most one reference, non-blocking.
// A panic in the step is caught here: it is logged, the item is dropped
// and subsequent items keep flowing. The interrupt flag is cleared once
// the cycle completes, whatever the outcome.
func (w *Worker) Activate() {
	ref, ok := w.queue.Get()
	if !ok {
		return
	}
	defer w.token.Clear()

	start := time.Now()
	result, ok := w.safeStep(ref)
	metrics.WorkerStepDuration.WithLabelValues(w.name).Observe(time.Since(start).Seconds())

	if !ok {
		metrics.WorkerItemsTotal.WithLabelValues(w.name, "dropped").Inc()
		return
	}

	metrics.WorkerItemsTotal.WithLabelValues(w.name, "ready").Inc()
	if w.onItemReady != nil {
		w.onItemReady(result)
	}
}

func (w *Worker) safeStep(ref records.Ref) (result records.Ref, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("%s worker: panic whilst processing item: %v", w.name, r)
			metrics.WorkerPanicsTotal.WithLabelValues(w.name).Inc()
			result, ok = records.Ref{}, false
		}
	}()
	return w.step.Step(ref)
}

// RequestReset raises the interrupt pulse and drains pending work.
// In-flight work aborts at its next liveness checkpoint.
func (w *Worker) RequestReset() {
	w.token.Set()
	if w.drainOnReset {
		w.queue.Drain()
	}
}
