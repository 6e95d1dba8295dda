// Package watcher follows the annotation document on disk so that edits made by
// another tool (or another annotator instance) show up in the running session.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/ritzau/annotator/pkg/logging"
)

// ChangeType represents the type of file change detected
type ChangeType int

const (
	ChangeTypeWrite  ChangeType = iota // Created, written or renamed into place
	ChangeTypeRemove                   // Removed or renamed away
)

func (t ChangeType) String() string {
	switch t {
	case ChangeTypeWrite:
		return "write"
	case ChangeTypeRemove:
		return "remove"
	}
	return fmt.Sprintf("ChangeType(%d)", int(t))
}

// ChangeEvent represents a batch of file system changes
type ChangeEvent struct {
	Type      ChangeType
	Paths     []string
	Timestamp time.Time
}

// batchWindow groups the burst of events a single save produces
const batchWindow = 50 * time.Millisecond

// FileWatcher watches one file. It watches the parent directory because editors
// and FileStore replace the file by renaming, which drops a watch on the file itself.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	path    string
	events  chan ChangeEvent
	stop    sync.Once
}

// NewFileWatcher creates a new file system watcher for path
func NewFileWatcher(path string) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &FileWatcher{
		watcher: watcher,
		path:    abs,
		events:  make(chan ChangeEvent, 100),
	}, nil
}

// Path returns the absolute path being watched
func (fw *FileWatcher) Path() string {
	return fw.path
}

// Start begins watching. Events stop and the channel closes when ctx is done.
func (fw *FileWatcher) Start(ctx context.Context) error {
	dir := filepath.Dir(fw.path)
	if err := fw.watcher.Add(dir); err != nil {
		fw.watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	logging.Info("watching document", "path", fw.path)

	go fw.processEvents(ctx)
	return nil
}

// classify maps an fsnotify event on the document to a change type
func classify(op fsnotify.Op) (ChangeType, bool) {
	switch {
	case op.Has(fsnotify.Create), op.Has(fsnotify.Write):
		return ChangeTypeWrite, true
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		return ChangeTypeRemove, true
	}
	return 0, false // Chmod
}

// processEvents filters directory events to the document and batches them
func (fw *FileWatcher) processEvents(ctx context.Context) {
	defer close(fw.events)
	defer fw.Stop()

	var (
		pending  []string
		lastType ChangeType
	)

	flushTimer := time.NewTimer(batchWindow)
	flushTimer.Stop()

	flush := func() {
		if len(pending) == 0 {
			return
		}
		event := ChangeEvent{Type: lastType, Paths: pending, Timestamp: time.Now()}
		pending = nil

		select {
		case fw.events <- event:
		case <-ctx.Done():
		}
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				flush()
				return
			}
			if filepath.Clean(event.Name) != fw.path {
				continue
			}

			changeType, relevant := classify(event.Op)
			if !relevant {
				continue
			}
			logging.Trace("document event", "op", event.Op.String(), "path", event.Name)

			// The last operation in a burst wins: remove+create is a replace
			lastType = changeType
			pending = append(pending, event.Name)
			flushTimer.Reset(batchWindow)

		case <-flushTimer.C:
			flush()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logging.Error("watcher error", "error", err)
		}
	}
}

// Events returns the channel of change events
func (fw *FileWatcher) Events() <-chan ChangeEvent {
	return fw.events
}

// Stop stops the file watcher. Safe to call more than once.
func (fw *FileWatcher) Stop() error {
	var err error
	fw.stop.Do(func() {
		err = fw.watcher.Close()
	})
	return err
}
