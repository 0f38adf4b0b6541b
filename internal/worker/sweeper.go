package worker

import (
	"runtime"
	"sync"
	"time"

	"asset-browser/internal/logging"
	"asset-browser/internal/metrics"
	"asset-browser/internal/records"
)

// Sweeper is the background metadata reconciliation loop. Unlike the
// queue-driven workers it is level-triggered: every interval it sweeps all
// records currently held by the collection and enriches any that are not
// yet loaded, using the same per-item logic as the metadata worker.
//
// It does not participate in the dedup queues at all. A reset only raises
// the interrupt pulse; the next sweep picks up whatever is still
// unenriched.
type Sweeper struct {
	coll     *records.Collection
	info     *InfoWorker
	token    *Token
	interval time.Duration

	onFullyLoaded func()

	stop      chan struct{}
	done      chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
}

// NewSweeper returns a sweeper over the collection using the given
// metadata stepper. The token must be the one the stepper consults.
func NewSweeper(coll *records.Collection, token *Token, info *InfoWorker, interval time.Duration) *Sweeper {
	return &Sweeper{
		coll:     coll,
		info:     info,
		token:    token,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// SetOnFullyLoaded registers a callback invoked once a full sweep finds
// nothing left to enrich - typically the collection's re-sort.
func (s *Sweeper) SetOnFullyLoaded(fn func()) {
	s.onFullyLoaded = fn
}

// Start launches the sweep loop on its own OS thread.
func (s *Sweeper) Start() {
	s.startOnce.Do(func() {
		go s.run()
	})
}

func (s *Sweeper) run() {
	runtime.LockOSThread()
	defer close(s.done)

	logging.Debug("background sweeper started (interval: %v)", s.interval)

	for {
		select {
		case <-s.stop:
			logging.Debug("background sweeper stopped")
			return
		case <-time.After(s.interval):
		}
		s.sweep()
	}
}

// sweep runs one full pass over the collection.
func (s *Sweeper) sweep() {
	if s.coll.FullyLoaded() {
		return
	}
	// A reset pulse raised between sweeps has served its purpose.
	s.token.Clear()

	metrics.SweepsTotal.Inc()

	enriched := 0
	for _, ref := range s.coll.Refs() {
		if s.token.Interrupted() {
			s.token.Clear()
			return
		}
		rec := ref.Get()
		if rec == nil {
			// The collection moved on mid-sweep; the next pass will see
			// the new generation.
			return
		}
		if rec.InfoLoaded() {
			continue
		}
		if !s.info.Enrich(ref) {
			return
		}
		enriched++
	}

	if enriched > 0 {
		metrics.SweepItemsEnriched.Add(float64(enriched))
		logging.Debug("background sweep enriched %d records", enriched)
		s.coll.NotifyDatasetEnriched()
		return
	}

	// Nothing left to do: the dataset is fully enriched and can be
	// resorted on its final values.
	s.coll.SetFullyLoaded(true)
	if s.onFullyLoaded != nil {
		s.onFullyLoaded()
	}
}

// RequestReset asks an in-flight sweep to abort at its next checkpoint.
// Pending work is implicit in the collection, so there is no queue to
// drain.
func (s *Sweeper) RequestReset() {
	s.token.Set()
}

// Stop terminates the sweep loop and joins it.
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
		<-s.done
	})
}
