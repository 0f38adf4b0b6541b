package worker

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"asset-browser/internal/logging"
	"asset-browser/internal/records"
)

// folderCountCap is where the walk stops: the count is a display figure,
// not a precise total beyond this threshold.
const folderCountCap = 999

// errWalkAborted signals the walk was cut short by a liveness loss or an
// interrupt, as opposed to hitting the display cap.
var errWalkAborted = errors.New("folder walk aborted")

// FolderCountWorker counts the filesystem entries under each sub-record of
// a folder record, capped for display. Every sub-record gets its own
// item-ready event as its count lands; the parent gets none.
type FolderCountWorker struct {
	token       *Token
	onItemReady func(records.Ref)
}

// NewFolderCountWorker returns a folder-count stepper. onItemReady fires
// once per completed sub-record.
func NewFolderCountWorker(token *Token, onItemReady func(records.Ref)) *FolderCountWorker {
	return &FolderCountWorker{token: token, onItemReady: onItemReady}
}

// Step implements Stepper. It never reports a result for the parent
// reference itself.
func (w *FolderCountWorker) Step(ref records.Ref) (records.Ref, bool) {
	parent := ref.Get()
	if parent == nil || w.token.Interrupted() {
		return records.Ref{}, false
	}

	for _, childRef := range ref.Collection().ChildRefs(parent.Path) {
		if ref.Get() == nil || w.token.Interrupted() {
			return records.Ref{}, false
		}
		child := childRef.Get()
		if child == nil {
			return records.Ref{}, false
		}

		count, err := w.countEntries(child.Path, ref, childRef)
		if err != nil {
			return records.Ref{}, false
		}

		if ref.Get() == nil || w.token.Interrupted() {
			return records.Ref{}, false
		}
		child = childRef.Get()
		if child == nil {
			return records.Ref{}, false
		}
		child.SetTodoCount(count)

		if w.onItemReady != nil {
			w.onItemReady(childRef)
		}
	}

	return records.Ref{}, false
}

// countEntries walks the subtree under root counting visible entries,
// stopping past the display cap. The walk aborts as soon as either
// reference dies or the interrupt is raised.
func (w *FolderCountWorker) countEntries(root string, parentRef, childRef records.Ref) (int, error) {
	count := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if parentRef.Get() == nil || childRef.Get() == nil || w.token.Interrupted() {
			return errWalkAborted
		}
		if err != nil {
			logging.Debug("error accessing %s: %v", path, err)
			return nil
		}
		if path == root {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		count++
		if count > folderCountCap {
			return fs.SkipAll
		}
		return nil
	})
	if errors.Is(err, errWalkAborted) {
		return 0, err
	}
	return count, nil
}
