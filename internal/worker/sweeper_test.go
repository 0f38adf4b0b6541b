package worker

import (
	"testing"
	"time"

	"asset-browser/internal/records"
)

func newSweepFixture(t *testing.T) (*records.Collection, *Sweeper, *Token) {
	t.Helper()
	store := newTestStore(t)

	recs := make([]*records.Record, 3)
	for i := range recs {
		recs[i] = &records.Record{Path: string(rune('a' + i)), Type: records.FileItem}
		recs[i].SetEntries([]records.Entry{{Path: recs[i].Path, Size: 1, ModTime: time.Now()}})
	}
	coll := records.NewCollection()
	coll.Reset(recs)

	token := NewToken()
	info := NewInfoWorker(token, store, "/cache")
	return coll, NewSweeper(coll, token, info, time.Minute), token
}

func TestSweepEnrichesRemainingRecords(t *testing.T) {
	coll, s, _ := newSweepFixture(t)

	// One record is already done; the sweep must pick up the rest.
	coll.At(0).SetInfoLoaded(true)

	enrichedEvents := 0
	coll.SetOnDatasetEnriched(func() { enrichedEvents++ })

	s.sweep()

	for i := 0; i < coll.Len(); i++ {
		if !coll.At(i).InfoLoaded() {
			t.Errorf("record %d not enriched by sweep", i)
		}
	}
	if enrichedEvents != 1 {
		t.Errorf("dataset-enriched fired %d times, want 1", enrichedEvents)
	}
	// Work remained this pass, so the collection is not yet final.
	if coll.FullyLoaded() {
		t.Error("collection marked fully loaded on an enriching pass")
	}
}

func TestSweepMarksFullyLoadedWhenIdle(t *testing.T) {
	coll, s, _ := newSweepFixture(t)

	for i := 0; i < coll.Len(); i++ {
		coll.At(i).SetInfoLoaded(true)
	}

	done := false
	s.SetOnFullyLoaded(func() { done = true })

	s.sweep()

	if !coll.FullyLoaded() {
		t.Error("idle sweep did not mark the collection fully loaded")
	}
	if !done {
		t.Error("fully-loaded callback did not fire")
	}
}

func TestSweepSkipsFullyLoadedCollection(t *testing.T) {
	coll, s, _ := newSweepFixture(t)
	coll.SetFullyLoaded(true)

	s.sweep()

	if coll.At(0).InfoLoaded() {
		t.Error("sweep touched records despite the fully-loaded latch")
	}
}

func TestSweepConsumesStalePulse(t *testing.T) {
	coll, s, token := newSweepFixture(t)

	// A pulse raised between sweeps has served its purpose; a fresh sweep
	// clears it on entry rather than aborting immediately.
	token.Set()
	s.sweep()

	for i := 0; i < coll.Len(); i++ {
		if !coll.At(i).InfoLoaded() {
			t.Errorf("record %d not enriched; a stale pulse must not cancel a fresh sweep", i)
		}
	}
}

func TestSweepStopsWhenGenerationMoves(t *testing.T) {
	coll, s, _ := newSweepFixture(t)

	old := coll.Refs()
	coll.Reset([]*records.Record{{Path: "z", Type: records.FileItem}})

	s.sweep()

	for _, ref := range old {
		if ref.Get() != nil {
			t.Fatal("old refs survived the reset")
		}
	}
	// The sweep ran against the current generation.
	if !coll.At(0).InfoLoaded() {
		t.Error("current-generation record not enriched")
	}
}

func TestSweeperRequestResetRaisesPulse(t *testing.T) {
	_, s, token := newSweepFixture(t)

	s.RequestReset()

	if !token.Interrupted() {
		t.Error("RequestReset did not raise the interrupt pulse")
	}
}
