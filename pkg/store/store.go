// Package store persists annotation graphs. A FileStore keeps the JSON document
// on disk where other tools (and the watcher) can see it; a BadgerStore keeps it
// in an embedded key-value database.
package store

import (
	"context"
	"fmt"

	"github.com/ritzau/annotator/pkg/model"
)

// Store loads and saves one graph
type Store interface {
	// Load returns the stored graph, or an empty graph if nothing was saved yet
	Load(ctx context.Context) (model.Snapshot, error)
	Save(ctx context.Context, s model.Snapshot) error
	// Location describes where the graph lives, for logs and the API
	Location() string
	Close() error
}

// Kind selects a Store implementation
type Kind string

const (
	KindFile   Kind = "file"
	KindBadger Kind = "badger"
)

// Open creates the store named by kind. document is the JSON path for file
// stores, dataDir the database directory for badger stores.
func Open(kind Kind, document, dataDir string) (Store, error) {
	switch kind {
	case KindFile, "":
		return NewFileStore(document), nil
	case KindBadger:
		return OpenBadger(BadgerConfig{Path: dataDir, SyncWrites: true})
	}
	return nil, fmt.Errorf("unknown store %q", kind)
}
