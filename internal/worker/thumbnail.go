package worker

import (
	"os"
	"time"

	"asset-browser/internal/logging"
	"asset-browser/internal/metrics"
	"asset-browser/internal/records"
	"asset-browser/internal/thumbs"
)

const (
	// thumbnailImageSize is the size cached thumbnails are rendered at.
	thumbnailImageSize = 512

	// defaultMaxSourceBytes is the hard ceiling above which a source is
	// never handed to the generator. A correctness guard, not an
	// optimization.
	defaultMaxSourceBytes = 2 << 30 // 2 GiB

	// defaultRowHeight is used when a record carries no row height.
	defaultRowHeight = 128
)

// ThumbnailWorker acquires thumbnails: it loads the cached image when one
// exists, otherwise generates one through the external generator, falling
// back to the record's placeholder on any failure. Failure is terminal for
// an item; it is not retried automatically.
type ThumbnailWorker struct {
	token *Token
	cache *thumbs.ImageCache
	gen   thumbs.Generator

	// MaxSourceBytes is the generation size ceiling; oversized sources
	// are refused outright.
	MaxSourceBytes int64

	// PollInterval and MaxPolls bound the wait for InfoLoaded: metadata
	// normally lands first because its thread ticks faster.
	PollInterval time.Duration
	MaxPolls     int
}

// NewThumbnailWorker returns a thumbnail stepper with default limits.
func NewThumbnailWorker(token *Token, cache *thumbs.ImageCache, gen thumbs.Generator) *ThumbnailWorker {
	return &ThumbnailWorker{
		token:          token,
		cache:          cache,
		gen:            gen,
		MaxSourceBytes: defaultMaxSourceBytes,
		PollInterval:   100 * time.Millisecond,
		MaxPolls:       20,
	}
}

// Step implements Stepper for thumbnail acquisition.
func (w *ThumbnailWorker) Step(ref records.Ref) (records.Ref, bool) {
	rec := ref.Get()
	if rec == nil || w.token.Interrupted() {
		return records.Ref{}, false
	}

	// Archived items are never thumbnailed.
	if rec.HasFlag(records.FlagArchived) {
		return records.Ref{}, false
	}

	// Wait for the metadata worker to resolve the thumbnail path, bounded.
	for n := 0; ; n++ {
		rec = ref.Get()
		if rec == nil || w.token.Interrupted() {
			return records.Ref{}, false
		}
		if rec.InfoLoaded() {
			break
		}
		if n >= w.MaxPolls {
			return records.Ref{}, false
		}
		time.Sleep(w.PollInterval)
	}

	if rec.ThumbnailLoaded() {
		return records.Ref{}, false
	}

	thumbPath := rec.ThumbnailPath()
	height := rec.RowHeight
	if height <= 0 {
		height = defaultRowHeight
	}

	// A cached thumbnail on disk just needs decoding at the row height.
	if _, err := os.Stat(thumbPath); err == nil {
		img, bg, err := w.cache.Get(thumbPath, height, true)
		if err != nil {
			logging.Warn("failed to decode cached thumbnail %s: %v", thumbPath, err)
			return records.Ref{}, false
		}

		if rec = ref.Get(); rec == nil || w.token.Interrupted() {
			return records.Ref{}, false
		}
		rec.SetThumbnail(img, bg)
		rec.SetThumbnailLoaded(true)
		metrics.ThumbnailCacheHits.Inc()
		return ref, true
	}

	// No cached image; only attempt generation for decodable content.
	if !thumbs.CanDecode(rec.Extension) {
		return records.Ref{}, false
	}

	if rec = ref.Get(); rec == nil || w.token.Interrupted() {
		return records.Ref{}, false
	}

	if !w.generate(ref, height) {
		return records.Ref{}, false
	}

	if rec = ref.Get(); rec == nil || w.token.Interrupted() {
		return records.Ref{}, false
	}
	rec.SetThumbnailLoaded(true)
	return ref, true
}

// generate runs the external generator and decodes its output onto the
// record. On failure of any kind the record falls back to its placeholder
// image, is still marked loaded, and any transient decode-cache entries
// for the source and destination paths are released.
func (w *ThumbnailWorker) generate(ref records.Ref, height int) bool {
	rec := ref.Get()
	if rec == nil {
		return false
	}

	source := rec.Path
	if rec.Type == records.SequenceItem {
		// Generate from the sequence's first frame.
		if sp := rec.StartPath(); sp != "" {
			source = sp
		}
	}
	dest := rec.ThumbnailPath()

	defer func() {
		w.cache.Invalidate(source)
		w.cache.Invalidate(dest)
	}()

	// Refuse enormous sources outright.
	fi, err := os.Stat(source)
	if err != nil {
		logging.Debug("cannot stat thumbnail source %s: %v", source, err)
		return w.fallback(ref)
	}
	if fi.Size() >= w.MaxSourceBytes {
		logging.Debug("thumbnail source %s exceeds size ceiling (%d bytes)", source, fi.Size())
		metrics.ThumbnailsOversized.Inc()
		return w.fallback(ref)
	}

	if err := w.gen.Generate(source, dest, thumbnailImageSize); err != nil {
		logging.Warn("thumbnail generation failed for %s: %v", source, err)
		return w.fallback(ref)
	}

	if ref.Get() == nil {
		return false
	}

	img, bg, err := w.cache.Get(dest, height, true)
	if err != nil {
		logging.Warn("failed to decode generated thumbnail %s: %v", dest, err)
		return w.fallback(ref)
	}

	rec = ref.Get()
	if rec == nil {
		return false
	}
	rec.SetThumbnail(img, bg)
	metrics.ThumbnailsGenerated.Inc()
	return true
}

// fallback applies the placeholder image and marks the item loaded so it
// is not retried. It always reports false: no item-ready event fires for
// a failed thumbnail.
func (w *ThumbnailWorker) fallback(ref records.Ref) bool {
	rec := ref.Get()
	if rec == nil {
		return false
	}
	rec.SetThumbnail(rec.DefaultThumbnail, rec.DefaultThumbnailBackground)
	rec.SetThumbnailLoaded(true)
	metrics.ThumbnailsFailed.Inc()
	return false
}
