package worker

import (
	"testing"
	"time"

	"asset-browser/internal/records"
)

// stepFunc adapts a function to the Stepper interface for tests.
type stepFunc func(ref records.Ref) (records.Ref, bool)

func (f stepFunc) Step(ref records.Ref) (records.Ref, bool) { return f(ref) }

// newTestCollection returns a collection holding n blank file records.
func newTestCollection(n int) *records.Collection {
	coll := records.NewCollection()
	recs := make([]*records.Record, n)
	for i := range recs {
		recs[i] = &records.Record{Path: string(rune('a' + i))}
	}
	coll.Reset(recs)
	return coll
}

func TestActivateEmptyQueue(t *testing.T) {
	called := false
	w := New("test", NewToken(), stepFunc(func(ref records.Ref) (records.Ref, bool) {
		called = true
		return records.Ref{}, false
	}), nil)

	w.Activate()

	if called {
		t.Error("stepper ran with an empty queue")
	}
}

func TestActivateFiresItemReady(t *testing.T) {
	coll := newTestCollection(1)
	ref := coll.Ref(0)

	var got records.Ref
	w := New("test", NewToken(), stepFunc(func(r records.Ref) (records.Ref, bool) {
		return r, true
	}), func(r records.Ref) { got = r })

	w.Queue().Put(ref, false)
	w.Activate()

	if got != ref {
		t.Error("item-ready callback did not fire with the processed ref")
	}
}

func TestActivateDropsStaleRef(t *testing.T) {
	coll := newTestCollection(1)
	ref := coll.Ref(0)

	fired := false
	w := New("test", NewToken(), stepFunc(func(r records.Ref) (records.Ref, bool) {
		if r.Get() == nil {
			return records.Ref{}, false
		}
		return r, true
	}), func(records.Ref) { fired = true })

	w.Queue().Put(ref, false)
	coll.Discard()
	w.Activate()

	if fired {
		t.Error("item-ready fired for a stale ref")
	}
}

func TestActivateRecoversFromPanic(t *testing.T) {
	coll := newTestCollection(2)

	processed := 0
	w := New("test", NewToken(), stepFunc(func(r records.Ref) (records.Ref, bool) {
		processed++
		if processed == 1 {
			panic("boom")
		}
		return r, true
	}), nil)

	w.Queue().Put(coll.Ref(0), false)
	w.Queue().Put(coll.Ref(1), false)

	w.Activate() // must not propagate the panic
	w.Activate()

	if processed != 2 {
		t.Errorf("processed %d items, want 2 (queue kept flowing after panic)", processed)
	}
}

func TestActivateClearsInterruptPulse(t *testing.T) {
	coll := newTestCollection(1)
	token := NewToken()

	w := New("test", token, stepFunc(func(r records.Ref) (records.Ref, bool) {
		if token.Interrupted() {
			return records.Ref{}, false
		}
		return r, true
	}), nil)

	w.Queue().Put(coll.Ref(0), false)
	token.Set()
	w.Activate()

	// The pulse serves exactly one activation cycle.
	if token.Interrupted() {
		t.Error("interrupt pulse survived the activation cycle")
	}
}

func TestRequestResetDrainsQueue(t *testing.T) {
	coll := newTestCollection(3)
	w := New("test", NewToken(), stepFunc(func(r records.Ref) (records.Ref, bool) {
		return r, true
	}), nil)

	for i := 0; i < 3; i++ {
		w.Queue().Put(coll.Ref(i), false)
	}

	w.RequestReset()

	if w.Queue().Len() != 0 {
		t.Errorf("queue depth = %d after reset, want 0", w.Queue().Len())
	}
	if !w.Token().Interrupted() {
		t.Error("reset did not raise the interrupt pulse")
	}
}

func TestControllerPutRejectsZeroRef(t *testing.T) {
	w := New("test", NewToken(), stepFunc(func(r records.Ref) (records.Ref, bool) {
		return r, true
	}), nil)
	c := NewController(w, time.Minute)

	if err := c.Put(records.Ref{}, false); err != ErrInvalidRef {
		t.Errorf("Put(zero ref) = %v, want ErrInvalidRef", err)
	}
}

func TestControllerPutDeduplicates(t *testing.T) {
	coll := newTestCollection(1)
	ref := coll.Ref(0)
	w := New("test", NewToken(), stepFunc(func(r records.Ref) (records.Ref, bool) {
		return r, true
	}), nil)
	c := NewController(w, time.Minute)

	if err := c.Put(ref, false); err != nil {
		t.Fatal(err)
	}
	if err := c.Put(ref, false); err != nil {
		t.Fatal(err)
	}

	if w.Queue().Len() != 1 {
		t.Errorf("queue depth = %d after duplicate Put, want 1", w.Queue().Len())
	}

	// Force bypasses the duplicate check.
	if err := c.Put(ref, true); err != nil {
		t.Fatal(err)
	}
	if w.Queue().Len() != 2 {
		t.Errorf("queue depth = %d after forced Put, want 2", w.Queue().Len())
	}
}

func TestControllerPutClearsInterrupt(t *testing.T) {
	coll := newTestCollection(1)
	w := New("test", NewToken(), stepFunc(func(r records.Ref) (records.Ref, bool) {
		return r, true
	}), nil)
	c := NewController(w, time.Minute)

	w.Token().Set()
	if err := c.Put(coll.Ref(0), false); err != nil {
		t.Fatal(err)
	}

	if w.Token().Interrupted() {
		t.Error("Put did not clear a stale interrupt pulse")
	}
}

func TestControllerProcessesOneItemPerTick(t *testing.T) {
	coll := newTestCollection(3)

	done := make(chan records.Ref, 3)
	w := New("test", NewToken(), stepFunc(func(r records.Ref) (records.Ref, bool) {
		return r, true
	}), func(r records.Ref) { done <- r })

	c := NewController(w, 2*time.Millisecond)
	for i := 0; i < 3; i++ {
		if err := c.Put(coll.Ref(i), false); err != nil {
			t.Fatal(err)
		}
	}

	c.Start()
	defer c.Stop()

	for i := 0; i < 3; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatalf("item %d never processed", i)
		}
	}
	if w.Queue().Len() != 0 {
		t.Errorf("queue depth = %d after all ticks, want 0", w.Queue().Len())
	}
}

func TestTokenPulse(t *testing.T) {
	token := NewToken()

	if token.Interrupted() {
		t.Error("fresh token reports interrupted")
	}
	token.Set()
	if !token.Interrupted() {
		t.Error("Set() did not raise the flag")
	}
	token.Clear()
	if token.Interrupted() {
		t.Error("Clear() did not lower the flag")
	}
}

func TestMonitorAggregatesQueues(t *testing.T) {
	coll := newTestCollection(3)
	a := New("a", NewToken(), stepFunc(func(r records.Ref) (records.Ref, bool) { return r, true }), nil)
	b := New("b", NewToken(), stepFunc(func(r records.Ref) (records.Ref, bool) { return r, true }), nil)

	m := NewMonitor(time.Minute)
	m.Register(a.Queue())
	m.Register(b.Queue())

	if m.PendingCount() != 0 {
		t.Errorf("PendingCount() = %d for empty queues", m.PendingCount())
	}
	if m.Text() != "" {
		t.Errorf("Text() = %q for empty queues, want \"\"", m.Text())
	}

	a.Queue().Put(coll.Ref(0), false)
	a.Queue().Put(coll.Ref(1), false)
	b.Queue().Put(coll.Ref(2), false)

	if m.PendingCount() != 3 {
		t.Errorf("PendingCount() = %d, want 3", m.PendingCount())
	}
	if got, want := m.Text(), "Loading... (3 left)"; got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
}

func TestMonitorOnUpdate(t *testing.T) {
	m := NewMonitor(2 * time.Millisecond)

	updates := make(chan int, 1)
	m.SetOnUpdate(func(pending int) {
		select {
		case updates <- pending:
		default:
		}
	})

	m.Start()
	defer m.Stop()

	select {
	case <-updates:
	case <-time.After(2 * time.Second):
		t.Fatal("monitor never delivered an update")
	}
}
