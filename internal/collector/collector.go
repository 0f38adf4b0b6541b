package collector

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"asset-browser/internal/logging"
	"asset-browser/internal/metrics"
	"asset-browser/internal/records"
)

// seqPattern splits a file name (extension already removed) into prefix,
// frame digits and suffix. The digit run closest to the extension wins, so
// "v002_shot.0010" collapses on 0010, not 002.
var seqPattern = regexp.MustCompile(`^(.*?)(\d+)([^\d]*)$`)

// Options tune record construction during a scan.
type Options struct {
	// RowHeight is stamped onto every record; the thumbnail worker decodes
	// at this height.
	RowHeight int

	// Placeholder and PlaceholderBackground are the fallback thumbnail
	// applied when generation fails or is never attempted.
	Placeholder           image.Image
	PlaceholderBackground color.NRGBA
}

// Collector builds record sets from directory listings. It owns no state
// beyond its options and is safe to reuse across scans.
type Collector struct {
	opts Options
}

// New returns a collector with the given options.
func New(opts Options) *Collector {
	return &Collector{opts: opts}
}

// seqKey groups files that belong to the same frame sequence.
type seqKey struct {
	prefix  string
	suffix  string
	ext     string
	padding int
}

// seqGroup accumulates the frames of one candidate sequence during a scan.
type seqGroup struct {
	frames  []string
	entries []records.Entry
}

// Scan lists the immediate entries of dir and returns the records for one
// browsable view: a folder record for dir itself, one folder record per
// visible subdirectory, and file records with multi-frame runs collapsed
// into sequence records. Hidden entries (dot-prefixed) are skipped.
//
// The returned slice is ready to be handed to Collection.Reset.
func (c *Collector) Scan(ctx context.Context, dir string) ([]*records.Record, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot list %s: %w", dir, err)
	}

	recs := []*records.Record{c.folderRecord(dir, filepath.Dir(dir))}
	groups := make(map[seqKey]*seqGroup)
	var order []seqKey

	for _, de := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := de.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		path := filepath.Join(dir, name)

		if de.IsDir() {
			recs = append(recs, c.folderRecord(path, dir))
			continue
		}

		info, err := de.Info()
		if err != nil {
			logging.Debug("skipping %s: %v", path, err)
			continue
		}
		entry := records.Entry{Path: path, Size: info.Size(), ModTime: info.ModTime()}

		key, frame, ok := splitSequenceName(name)
		if !ok {
			recs = append(recs, c.fileRecord(path, name, dir, entry))
			continue
		}
		g, seen := groups[key]
		if !seen {
			g = &seqGroup{}
			groups[key] = g
			order = append(order, key)
		}
		g.frames = append(g.frames, frame)
		g.entries = append(g.entries, entry)
	}

	for _, key := range order {
		g := groups[key]
		if len(g.frames) < 2 {
			// A single numbered file is still just a file.
			e := g.entries[0]
			recs = append(recs, c.fileRecord(e.Path, filepath.Base(e.Path), dir, e))
			continue
		}
		recs = append(recs, c.sequenceRecord(dir, key, g))
	}

	metrics.CollectorRunsTotal.Inc()
	counts := make(map[records.Type]int)
	for _, rec := range recs {
		counts[rec.Type]++
	}
	for typ, n := range counts {
		metrics.CollectorRecords.WithLabelValues(typ.String()).Set(float64(n))
	}
	logging.Debug("scanned %s: %d records (%d sequences)", dir, len(recs), len(order))
	return recs, nil
}

// splitSequenceName decides whether a file name can belong to a frame
// sequence and, if so, under which grouping key.
func splitSequenceName(name string) (seqKey, string, bool) {
	ext := filepath.Ext(name)
	if ext == "" {
		return seqKey{}, "", false
	}
	base := strings.TrimSuffix(name, ext)
	m := seqPattern.FindStringSubmatch(base)
	if m == nil {
		return seqKey{}, "", false
	}
	frame := m[2]
	key := seqKey{
		prefix:  m[1],
		suffix:  m[3],
		ext:     strings.ToLower(strings.TrimPrefix(ext, ".")),
		padding: len(frame),
	}
	return key, frame, true
}

func (c *Collector) folderRecord(path, parent string) *records.Record {
	rec := &records.Record{
		Path:       path,
		Name:       filepath.Base(path),
		ParentPath: parent,
		Type:       records.FolderItem,
		RowHeight:  c.opts.RowHeight,

		DefaultThumbnail:           c.opts.Placeholder,
		DefaultThumbnailBackground: c.opts.PlaceholderBackground,
	}
	return rec
}

func (c *Collector) fileRecord(path, name, parent string, entry records.Entry) *records.Record {
	rec := &records.Record{
		Path:       path,
		Name:       name,
		ParentPath: parent,
		Extension:  strings.ToLower(strings.TrimPrefix(filepath.Ext(name), ".")),
		Type:       records.FileItem,
		RowHeight:  c.opts.RowHeight,

		DefaultThumbnail:           c.opts.Placeholder,
		DefaultThumbnailBackground: c.opts.PlaceholderBackground,
	}
	rec.SetEntries([]records.Entry{entry})
	return rec
}

func (c *Collector) sequenceRecord(dir string, key seqKey, g *seqGroup) *records.Record {
	seq := &records.Sequence{
		Prefix:  filepath.Join(dir, key.prefix),
		Suffix:  key.suffix,
		Ext:     key.ext,
		Padding: key.padding,
	}
	if key.prefix == "" {
		seq.Prefix = dir + string(filepath.Separator)
	}

	frames := make([]string, len(g.frames))
	copy(frames, g.frames)
	sort.Strings(frames)

	// The sequence is addressed by its first-frame key so sidecar data and
	// the cached thumbnail survive frames being added or removed.
	path := seq.FirstFrameKey()
	rec := &records.Record{
		Path:       path,
		Name:       filepath.Base(path),
		ParentPath: dir,
		Extension:  key.ext,
		Type:       records.SequenceItem,
		Frames:     frames,
		Seq:        seq,
		RowHeight:  c.opts.RowHeight,

		DefaultThumbnail:           c.opts.Placeholder,
		DefaultThumbnailBackground: c.opts.PlaceholderBackground,
	}
	rec.SetEntries(g.entries)
	return rec
}
