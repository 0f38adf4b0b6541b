package records

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Sequence describes the naming pattern of a collapsed frame sequence:
// prefix + padded frame number + suffix + "." + ext.
type Sequence struct {
	Prefix  string
	Suffix  string
	Ext     string
	Padding int
}

// FramePath returns the path of a single frame.
func (s *Sequence) FramePath(frame int) string {
	return s.Prefix + fmt.Sprintf("%0*d", s.Padding, frame) + s.Suffix + "." + s.Ext
}

// RangePath returns the collapsed sequence path for a range expression,
// e.g. "shot.[0001-0005].exr".
func (s *Sequence) RangePath(ranges string) string {
	return s.Prefix + "[" + ranges + "]" + s.Suffix + "." + s.Ext
}

// FirstFrameKey returns the content key used to resolve the sequence's
// thumbnail. The "[0]" marker keys the whole sequence to one cached image
// regardless of which frames currently exist.
func (s *Sequence) FirstFrameKey() string {
	return s.Prefix + "[0]" + s.Suffix + "." + s.Ext
}

// FrameRanges returns a compact range expression for a set of frame
// numbers, zero-padded to the given width. Consecutive runs collapse to
// "first-last" and runs are joined with commas:
//
//	FrameRanges([]int{1, 2, 3, 5}, 4) == "0001-0003,0005"
func FrameRanges(frames []int, padding int) string {
	if len(frames) == 0 {
		return ""
	}

	uniq := make(map[int]struct{}, len(frames))
	for _, f := range frames {
		uniq[f] = struct{}{}
	}
	sorted := make([]int, 0, len(uniq))
	for f := range uniq {
		sorted = append(sorted, f)
	}
	sort.Ints(sorted)

	pad := func(n int) string { return fmt.Sprintf("%0*d", padding, n) }

	var blocks []string
	start := sorted[0]
	prev := sorted[0]
	flush := func(first, last int) {
		if first == last {
			blocks = append(blocks, pad(first))
			return
		}
		blocks = append(blocks, pad(first)+"-"+pad(last))
	}
	for _, n := range sorted[1:] {
		if n != prev+1 {
			flush(start, prev)
			start = n
		}
		prev = n
	}
	flush(start, prev)

	return strings.Join(blocks, ",")
}

// FormatBytes converts a byte count to a human readable string.
func FormatBytes(n int64) string {
	num := float64(n)
	for _, unit := range []string{"", "K", "M", "G", "T", "P", "E", "Z"} {
		if num < 1024.0 && num > -1024.0 {
			return fmt.Sprintf("%3.1f%sB", num, unit)
		}
		num /= 1024.0
	}
	return fmt.Sprintf("%.1fYiB", num)
}

// DetailString formats the human-readable detail line shown next to an
// item: frame count (sequences only), modification date and size, e.g.
// "4f;23/08/2026 14:05;1.2MB".
func DetailString(frameCount int, mtime time.Time, size int64) string {
	var b strings.Builder
	if frameCount > 0 {
		fmt.Fprintf(&b, "%df;", frameCount)
	}
	b.WriteString(mtime.Format("02/01/2006 15:04"))
	b.WriteString(";")
	b.WriteString(FormatBytes(size))
	return b.String()
}
