package watcher

import (
	"context"
	"time"

	"github.com/ritzau/annotator/pkg/logging"
	"github.com/ritzau/annotator/pkg/model"
)

// Default debounce timings for Follow
const (
	DefaultQuietPeriod = 200 * time.Millisecond
	DefaultMaxWait     = 2 * time.Second
)

// Source is the document store being followed
type Source interface {
	Load(ctx context.Context) (model.Snapshot, error)
	// WroteLast reports whether the file holds exactly what we last saved
	WroteLast() bool
}

// Target receives reloaded graphs
type Target interface {
	Snapshot() model.Snapshot
	Reload(s model.Snapshot)
}

// Follow watches path and reloads src into dst after external edits.
// It blocks until ctx is done.
func Follow(ctx context.Context, path string, src Source, dst Target, quietPeriod, maxWait time.Duration) error {
	fw, err := NewFileWatcher(path)
	if err != nil {
		return err
	}
	if err := fw.Start(ctx); err != nil {
		return err
	}
	defer fw.Stop()

	debouncer := NewDebouncer(fw.Events(), quietPeriod, maxWait)
	debouncer.Start(ctx)

	for event := range debouncer.Output() {
		analysis := AnalyzeChanges(event, src.WroteLast())

		switch {
		case analysis.OwnWrite:
			logging.Trace("ignoring our own write", "path", fw.Path())

		case analysis.Removed:
			logging.Warn("document removed, keeping the graph in memory", "path", fw.Path())

		case analysis.NeedReload:
			snap, err := src.Load(ctx)
			if err != nil {
				// Probably a partial write by another tool; the next event retries
				logging.Warn("failed to reload document", "path", fw.Path(), "error", err)
				continue
			}
			diff := model.Compare(dst.Snapshot(), snap)
			if diff.IsEmpty() {
				logging.Debug("document rewritten without changes", "path", fw.Path())
				continue
			}
			logging.Info("document changed on disk, reloading", "path", fw.Path(),
				"addedPoints", len(diff.AddedPoints), "removedPoints", len(diff.RemovedPoints),
				"modifiedPoints", len(diff.ModifiedPoints),
				"addedLines", len(diff.AddedEdges), "removedLines", len(diff.RemovedEdges))
			dst.Reload(snap)
		}
	}

	return ctx.Err()
}
