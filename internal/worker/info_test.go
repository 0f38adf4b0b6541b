package worker

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"asset-browser/internal/records"
	"asset-browser/internal/sidecar"
	"asset-browser/internal/thumbs"
)

func newTestStore(t *testing.T) *sidecar.Store {
	t.Helper()
	s, err := sidecar.New(context.Background(), filepath.Join(t.TempDir(), "sidecar.db"))
	if err != nil {
		t.Fatalf("sidecar.New() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInfoStepEnrichesFile(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mtime := time.Date(2025, time.June, 1, 9, 30, 0, 0, time.UTC)
	rec := &records.Record{Path: "/assets/comp.png", Type: records.FileItem, Extension: "png"}
	rec.SetEntries([]records.Entry{{Path: "/assets/comp.png", Size: 2048, ModTime: mtime}})

	if err := store.SetDescription(ctx, "/assets/comp.png", "final comp"); err != nil {
		t.Fatal(err)
	}
	if err := store.SetNotes(ctx, "/assets/comp.png", []sidecar.Note{
		{Text: "check edges"},
		{Text: "approved", Checked: true},
	}); err != nil {
		t.Fatal(err)
	}
	if err := store.SetFlags(ctx, "/assets/comp.png", records.FlagFavourite); err != nil {
		t.Fatal(err)
	}

	coll := records.NewCollection()
	coll.Reset([]*records.Record{rec})
	ref := coll.Ref(0)

	w := NewInfoWorker(NewToken(), store, "/cache/thumbnails")
	got, ok := w.Step(ref)
	if !ok {
		t.Fatal("Step() reported not-ok for a live, unloaded record")
	}
	if got != ref {
		t.Error("Step() returned a different ref")
	}

	if !rec.InfoLoaded() {
		t.Error("record not marked info-loaded")
	}
	if rec.Description() != "final comp" {
		t.Errorf("Description() = %q", rec.Description())
	}
	if rec.TodoCount() != 1 {
		t.Errorf("TodoCount() = %d, want 1 open note", rec.TodoCount())
	}
	if !rec.HasFlag(records.FlagEditable) || !rec.HasFlag(records.FlagDraggable) {
		t.Error("enriched record missing editable/draggable flags")
	}
	if !rec.HasFlag(records.FlagFavourite) {
		t.Error("stored flags not merged in")
	}
	if rec.Size() != 2048 {
		t.Errorf("Size() = %d, want 2048", rec.Size())
	}
	if got, want := rec.Details(), "01/06/2025 09:30;2.0KB"; got != want {
		t.Errorf("Details() = %q, want %q", got, want)
	}
	if got, want := rec.ThumbnailPath(), thumbs.CachePath("/cache/thumbnails", "/assets/comp.png"); got != want {
		t.Errorf("ThumbnailPath() = %q, want %q", got, want)
	}
	if rec.Entries() != nil {
		t.Error("entries not released after enrichment")
	}
}

func TestInfoStepEnrichesSequence(t *testing.T) {
	store := newTestStore(t)

	seq := &records.Sequence{Prefix: "/assets/shot.", Ext: "exr", Padding: 4}
	t1 := time.Date(2025, time.June, 1, 8, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, time.June, 2, 8, 0, 0, 0, time.UTC)

	rec := &records.Record{
		Path:      seq.FirstFrameKey(),
		Type:      records.SequenceItem,
		Extension: "exr",
		Frames:    []string{"0001", "0002", "0003", "0005"},
		Seq:       seq,
	}
	rec.SetEntries([]records.Entry{
		{Path: seq.FramePath(1), Size: 100, ModTime: t1},
		{Path: seq.FramePath(2), Size: 100, ModTime: t2},
		{Path: seq.FramePath(3), Size: 100, ModTime: t1},
		{Path: seq.FramePath(5), Size: 100, ModTime: t1},
	})

	coll := records.NewCollection()
	coll.Reset([]*records.Record{rec})

	w := NewInfoWorker(NewToken(), store, "/cache/thumbnails")
	if _, ok := w.Step(coll.Ref(0)); !ok {
		t.Fatal("Step() reported not-ok")
	}

	if got, want := rec.StartPath(), "/assets/shot.0001.exr"; got != want {
		t.Errorf("StartPath() = %q, want %q", got, want)
	}
	if got, want := rec.EndPath(), "/assets/shot.0005.exr"; got != want {
		t.Errorf("EndPath() = %q, want %q", got, want)
	}
	if got, want := rec.DisplayName(), "shot.[0001-0003,0005].exr"; got != want {
		t.Errorf("DisplayName() = %q, want %q", got, want)
	}
	if rec.Size() != 400 {
		t.Errorf("Size() = %d, want aggregate 400", rec.Size())
	}
	if !rec.ModTime().Equal(t2) {
		t.Errorf("ModTime() = %v, want latest %v", rec.ModTime(), t2)
	}
	if got, want := rec.Details(), "4f;02/06/2025 08:00;400.0B"; got != want {
		t.Errorf("Details() = %q, want %q", got, want)
	}
	// Sequences key their thumbnail to the first-frame marker.
	if got, want := rec.ThumbnailPath(), thumbs.CachePath("/cache/thumbnails", seq.FirstFrameKey()); got != want {
		t.Errorf("ThumbnailPath() = %q, want %q", got, want)
	}
}

func TestInfoStepSkipsLoadedRecord(t *testing.T) {
	store := newTestStore(t)

	rec := &records.Record{Path: "/a", Type: records.FileItem}
	rec.SetInfoLoaded(true)

	coll := records.NewCollection()
	coll.Reset([]*records.Record{rec})

	w := NewInfoWorker(NewToken(), store, "/cache")
	if _, ok := w.Step(coll.Ref(0)); ok {
		t.Error("Step() reported ok for an already loaded record")
	}
}

func TestInfoStepDropsStaleRef(t *testing.T) {
	store := newTestStore(t)

	coll := records.NewCollection()
	coll.Reset([]*records.Record{{Path: "/a", Type: records.FileItem}})
	ref := coll.Ref(0)
	coll.Discard()

	w := NewInfoWorker(NewToken(), store, "/cache")
	if _, ok := w.Step(ref); ok {
		t.Error("Step() reported ok for a stale ref")
	}
}

func TestInfoStepHonoursInterrupt(t *testing.T) {
	store := newTestStore(t)
	token := NewToken()

	rec := &records.Record{Path: "/a", Type: records.FileItem}
	coll := records.NewCollection()
	coll.Reset([]*records.Record{rec})

	token.Set()
	w := NewInfoWorker(token, store, "/cache")
	if _, ok := w.Step(coll.Ref(0)); ok {
		t.Error("Step() reported ok while interrupted")
	}
	if rec.InfoLoaded() {
		t.Error("interrupted step still completed enrichment")
	}
}

func TestEnrichIsIdempotent(t *testing.T) {
	store := newTestStore(t)

	rec := &records.Record{Path: "/a", Type: records.FileItem}
	rec.SetEntries([]records.Entry{{Path: "/a", Size: 1, ModTime: time.Now()}})

	coll := records.NewCollection()
	coll.Reset([]*records.Record{rec})
	ref := coll.Ref(0)

	w := NewInfoWorker(NewToken(), store, "/cache")
	if !w.Enrich(ref) {
		t.Fatal("first Enrich() failed")
	}
	if !w.Enrich(ref) {
		t.Error("Enrich() on a loaded record should succeed as a no-op")
	}
}
