package records

import (
	"image"
	"image/color"
	"sync"
	"sync/atomic"
	"time"
)

// Type classifies a record.
type Type int

const (
	// FileItem is a single file entry
	FileItem Type = iota
	// SequenceItem is a collapsed frame-sequence entry
	SequenceItem
	// FolderItem is a folder entry containing sub-records
	FolderItem
)

// String returns the string representation of a record type.
func (t Type) String() string {
	switch t {
	case FileItem:
		return "file"
	case SequenceItem:
		return "sequence"
	case FolderItem:
		return "folder"
	default:
		return "unknown"
	}
}

// Entry is a point-in-time snapshot of one filesystem entry backing a
// record. Entries are captured during the directory scan and retained only
// until metadata enrichment has read them; the metadata worker releases
// them afterwards to bound memory.
type Entry struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// Record is one enrichable entry (file, sequence or folder) in a browsable
// collection. Records are owned exclusively by their Collection: workers
// never construct or destroy them, they only mutate fields in place.
//
// A record is shared between the UI thread and at most one worker at a
// time. The two loaded flags are atomic; every other mutable field is
// guarded by the record's mutex so the UI can tolerate reading a partially
// enriched record at any moment.
type Record struct {
	// Immutable after construction.
	Path       string // sequences use the collapsed pattern path
	Name       string
	ParentPath string
	Extension  string // lower case, without the dot
	Type       Type
	Frames     []string // zero-padded frame numbers, sequence records only
	Seq        *Sequence
	RowHeight  int

	// Fallbacks used when thumbnail generation fails or is not attempted.
	DefaultThumbnail           image.Image
	DefaultThumbnailBackground color.NRGBA

	infoLoaded  atomic.Bool
	thumbLoaded atomic.Bool
	flags       atomic.Uint32

	mu                  sync.Mutex
	entries             []Entry
	description         string
	todoCount           int
	size                int64
	modTime             time.Time
	details             string
	startPath           string
	endPath             string
	displayName         string
	thumbnailPath       string
	thumbnail           image.Image
	thumbnailBackground color.NRGBA
}

// InfoLoaded reports whether metadata enrichment has completed.
func (r *Record) InfoLoaded() bool { return r.infoLoaded.Load() }

// SetInfoLoaded marks metadata enrichment complete (or not).
func (r *Record) SetInfoLoaded(v bool) { r.infoLoaded.Store(v) }

// ThumbnailLoaded reports whether a thumbnail (or the placeholder) is set.
func (r *Record) ThumbnailLoaded() bool { return r.thumbLoaded.Load() }

// SetThumbnailLoaded marks thumbnail acquisition complete (or not).
func (r *Record) SetThumbnailLoaded(v bool) { r.thumbLoaded.Store(v) }

// Flags returns the current flags bitmask.
func (r *Record) Flags() uint32 { return r.flags.Load() }

// SetFlags replaces the flags bitmask.
func (r *Record) SetFlags(f uint32) { r.flags.Store(f) }

// AddFlags merges the given bits into the flags bitmask.
func (r *Record) AddFlags(f uint32) {
	for {
		old := r.flags.Load()
		if r.flags.CompareAndSwap(old, old|f) {
			return
		}
	}
}

// HasFlag reports whether all given bits are set.
func (r *Record) HasFlag(f uint32) bool { return r.flags.Load()&f == f }

// SetEntries stores the raw filesystem entries captured for enrichment.
func (r *Record) SetEntries(entries []Entry) {
	r.mu.Lock()
	r.entries = entries
	r.mu.Unlock()
}

// Entries returns the retained filesystem entries, or nil once released.
func (r *Record) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries
}

// ReleaseEntries drops the retained filesystem entries. They are only
// needed during metadata enrichment and must not be kept past it.
func (r *Record) ReleaseEntries() {
	r.mu.Lock()
	r.entries = nil
	r.mu.Unlock()
}

// Description returns the sidecar description.
func (r *Record) Description() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.description
}

// SetDescription stores the sidecar description.
func (r *Record) SetDescription(s string) {
	r.mu.Lock()
	r.description = s
	r.mu.Unlock()
}

// TodoCount returns the number of open notes, or the folder entry count for
// records counted by the folder worker.
func (r *Record) TodoCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.todoCount
}

// SetTodoCount stores the note/entry count.
func (r *Record) SetTodoCount(n int) {
	r.mu.Lock()
	r.todoCount = n
	r.mu.Unlock()
}

// Size returns the aggregated byte size.
func (r *Record) Size() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size
}

// SetSize stores the aggregated byte size.
func (r *Record) SetSize(n int64) {
	r.mu.Lock()
	r.size = n
	r.mu.Unlock()
}

// ModTime returns the latest modification time.
func (r *Record) ModTime() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.modTime
}

// SetModTime stores the latest modification time.
func (r *Record) SetModTime(t time.Time) {
	r.mu.Lock()
	r.modTime = t
	r.mu.Unlock()
}

// Details returns the formatted detail string.
func (r *Record) Details() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.details
}

// SetDetails stores the formatted detail string.
func (r *Record) SetDetails(s string) {
	r.mu.Lock()
	r.details = s
	r.mu.Unlock()
}

// StartPath returns the first-frame path of a sequence record.
func (r *Record) StartPath() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.startPath
}

// SetStartPath stores the first-frame path.
func (r *Record) SetStartPath(s string) {
	r.mu.Lock()
	r.startPath = s
	r.mu.Unlock()
}

// EndPath returns the last-frame path of a sequence record.
func (r *Record) EndPath() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.endPath
}

// SetEndPath stores the last-frame path.
func (r *Record) SetEndPath(s string) {
	r.mu.Lock()
	r.endPath = s
	r.mu.Unlock()
}

// DisplayName returns the enriched display name (sequence records derive it
// from the frame range).
func (r *Record) DisplayName() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.displayName == "" {
		return r.Name
	}
	return r.displayName
}

// SetDisplayName stores the enriched display name.
func (r *Record) SetDisplayName(s string) {
	r.mu.Lock()
	r.displayName = s
	r.mu.Unlock()
}

// ThumbnailPath returns the resolved thumbnail cache path.
func (r *Record) ThumbnailPath() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.thumbnailPath
}

// SetThumbnailPath stores the resolved thumbnail cache path.
func (r *Record) SetThumbnailPath(s string) {
	r.mu.Lock()
	r.thumbnailPath = s
	r.mu.Unlock()
}

// Thumbnail returns the decoded thumbnail image, if any.
func (r *Record) Thumbnail() image.Image {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.thumbnail
}

// SetThumbnail stores the decoded thumbnail image and its background color.
func (r *Record) SetThumbnail(img image.Image, bg color.NRGBA) {
	r.mu.Lock()
	r.thumbnail = img
	r.thumbnailBackground = bg
	r.mu.Unlock()
}

// ThumbnailBackground returns the thumbnail's background color.
func (r *Record) ThumbnailBackground() color.NRGBA {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.thumbnailBackground
}
