package worker

import (
	"context"
	"path/filepath"
	"strconv"

	"asset-browser/internal/logging"
	"asset-browser/internal/records"
	"asset-browser/internal/sidecar"
	"asset-browser/internal/thumbs"
)

// InfoWorker populates file metadata onto records: sidecar description,
// open-note count, merged flags, aggregated size and modification time,
// the formatted detail string and the resolved thumbnail cache path.
//
// Any of the external reads can block long enough for the referent to be
// discarded, so liveness is re-checked before and after each of them.
type InfoWorker struct {
	token    *Token
	store    *sidecar.Store
	cacheDir string
}

// NewInfoWorker returns a metadata stepper reading from the given sidecar
// store and resolving thumbnail paths under cacheDir.
func NewInfoWorker(token *Token, store *sidecar.Store, cacheDir string) *InfoWorker {
	return &InfoWorker{token: token, store: store, cacheDir: cacheDir}
}

// Step implements Stepper for single-item metadata enrichment.
func (w *InfoWorker) Step(ref records.Ref) (records.Ref, bool) {
	rec := ref.Get()
	if rec == nil || w.token.Interrupted() {
		return records.Ref{}, false
	}
	if rec.InfoLoaded() {
		return records.Ref{}, false
	}
	if !w.Enrich(ref) {
		return records.Ref{}, false
	}
	if ref.Get() == nil {
		return records.Ref{}, false
	}
	return ref, true
}

// Enrich populates all metadata onto the referenced record. It returns
// false when liveness was lost or the interrupt was raised at any
// checkpoint; fields already written stay written (partial visibility is
// tolerated by the UI).
func (w *InfoWorker) Enrich(ref records.Ref) bool {
	rec := ref.Get()
	if rec == nil {
		return false
	}
	if rec.InfoLoaded() {
		return true
	}

	ctx := context.Background()
	key := rec.Path

	// Description
	desc, err := w.store.Description(ctx, key)
	if err != nil {
		logging.Warn("could not read description for %s: %v", key, err)
	}
	if rec = ref.Get(); rec == nil || w.token.Interrupted() {
		return false
	}
	if desc != "" {
		rec.SetDescription(desc)
	}

	// Open-note count
	notes, err := w.store.Notes(ctx, key)
	if err != nil {
		logging.Warn("could not read notes for %s: %v", key, err)
	}
	if rec = ref.Get(); rec == nil || w.token.Interrupted() {
		return false
	}
	rec.SetTodoCount(sidecar.CountOpenNotes(notes))

	// Flags: every enriched item becomes editable and draggable, plus
	// whatever the sidecar store persisted.
	flags := rec.Flags() | records.FlagEditable | records.FlagDraggable
	stored, err := w.store.Flags(ctx, key)
	if err != nil {
		logging.Warn("could not read flags for %s: %v", key, err)
	}
	if rec = ref.Get(); rec == nil || w.token.Interrupted() {
		return false
	}
	rec.SetFlags(flags | stored)

	switch rec.Type {
	case records.SequenceItem:
		if !w.enrichSequence(ref) {
			return false
		}
	case records.FileItem:
		if !w.enrichFile(ref) {
			return false
		}
	}

	rec = ref.Get()
	if rec == nil {
		return false
	}

	// Resolve where this record's thumbnail lives on disk.
	thumbKey := rec.Path
	if rec.Type == records.SequenceItem && rec.Seq != nil {
		thumbKey = rec.Seq.FirstFrameKey()
	}
	rec.SetThumbnailPath(thumbs.CachePath(w.cacheDir, thumbKey))

	if rec = ref.Get(); rec == nil {
		return false
	}
	rec.SetInfoLoaded(true)

	// The raw entries were only retained for this pass.
	rec.ReleaseEntries()
	return true
}

// enrichSequence derives the frame range, start/end paths, display name
// and aggregate size/mtime of a collapsed sequence.
func (w *InfoWorker) enrichSequence(ref records.Ref) bool {
	rec := ref.Get()
	if rec == nil {
		return false
	}
	if len(rec.Frames) == 0 || rec.Seq == nil {
		return true
	}

	frames := make([]int, 0, len(rec.Frames))
	for _, f := range rec.Frames {
		n, err := strconv.Atoi(f)
		if err != nil {
			logging.Warn("bad frame number %q in %s", f, rec.Path)
			continue
		}
		frames = append(frames, n)
	}
	if len(frames) == 0 {
		return true
	}

	padding := len(rec.Frames[0])
	ranges := records.FrameRanges(frames, padding)

	minFrame, maxFrame := frames[0], frames[0]
	for _, n := range frames[1:] {
		if n < minFrame {
			minFrame = n
		}
		if n > maxFrame {
			maxFrame = n
		}
	}

	seqPath := rec.Seq.RangePath(ranges)

	if rec = ref.Get(); rec == nil || w.token.Interrupted() {
		return false
	}
	rec.SetStartPath(rec.Seq.FramePath(minFrame))
	rec.SetEndPath(rec.Seq.FramePath(maxFrame))
	rec.SetDisplayName(filepath.Base(seqPath))

	// Aggregate size and latest mtime across all constituent entries.
	entries := rec.Entries()
	if len(entries) > 0 {
		var size int64
		mtime := entries[0].ModTime
		for _, e := range entries {
			size += e.Size
			if e.ModTime.After(mtime) {
				mtime = e.ModTime
			}
		}

		if rec = ref.Get(); rec == nil || w.token.Interrupted() {
			return false
		}
		rec.SetSize(size)
		rec.SetModTime(mtime)
		rec.SetDetails(records.DetailString(len(frames), mtime, size))
	}
	return true
}

// enrichFile reads the single backing entry of a plain file record.
func (w *InfoWorker) enrichFile(ref records.Ref) bool {
	rec := ref.Get()
	if rec == nil {
		return false
	}

	entries := rec.Entries()
	if len(entries) == 0 {
		return true
	}
	e := entries[0]

	if rec = ref.Get(); rec == nil || w.token.Interrupted() {
		return false
	}
	rec.SetSize(e.Size)
	rec.SetModTime(e.ModTime)
	rec.SetDetails(records.DetailString(0, e.ModTime, e.Size))
	return true
}
