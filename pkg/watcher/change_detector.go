package watcher

// ChangeAnalysis describes what a batch of document changes means for the session
type ChangeAnalysis struct {
	NeedReload   bool // The file holds content the session has not seen
	OwnWrite     bool // The file holds exactly what we last saved
	Removed      bool // The document is gone; the session keeps its graph
	ChangedFiles []string
}

// AnalyzeChanges decides whether a change batch should be reloaded into the session.
// ownWrite reports whether the file still holds our last save.
func AnalyzeChanges(event ChangeEvent, ownWrite bool) *ChangeAnalysis {
	analysis := &ChangeAnalysis{
		ChangedFiles: event.Paths,
	}

	switch event.Type {
	case ChangeTypeRemove:
		// Keep the in-memory graph; the next mutation writes it back
		analysis.Removed = true

	case ChangeTypeWrite:
		if ownWrite {
			analysis.OwnWrite = true
		} else {
			analysis.NeedReload = true
		}
	}

	return analysis
}
