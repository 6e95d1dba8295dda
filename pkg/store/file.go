package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/ritzau/annotator/pkg/document"
	"github.com/ritzau/annotator/pkg/logging"
	"github.com/ritzau/annotator/pkg/model"
)

// FileStore keeps the graph as an exported JSON document
type FileStore struct {
	path string

	mu          sync.Mutex
	lastWritten uint64 // xxhash of the bytes of the last Save
	hasWritten  bool
}

// NewFileStore creates a store for the document at path. The file does not need to exist.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the document path
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Location() string {
	return s.path
}

// Load reads the document. A missing file is an empty graph.
func (s *FileStore) Load(ctx context.Context) (model.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return model.Snapshot{}, err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		logging.DebugContext(ctx, "document does not exist, starting empty", "path", s.path)
		return model.NewSnapshot(), nil
	}
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("read %s: %w", s.path, err)
	}

	snap, err := document.Unmarshal(data)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("load %s: %w", s.path, err)
	}
	return snap, nil
}

// Save writes the document atomically: a temp file in the same directory is renamed over the old one
func (s *FileStore) Save(ctx context.Context, snap model.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := document.Encode(&buf, snap); err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("save %s: %w", s.path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // No-op after a successful rename

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("save %s: %w", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save %s: %w", s.path, err)
	}

	// Record before the rename so a watcher never sees an unrecorded write
	s.mu.Lock()
	s.lastWritten = xxhash.Sum64(buf.Bytes())
	s.hasWritten = true
	s.mu.Unlock()

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("save %s: %w", s.path, err)
	}

	logging.DebugContext(ctx, "saved document", "path", s.path,
		"points", len(snap.Points), "lines", len(snap.Edges), "bytes", buf.Len())
	return nil
}

// WroteLast returns true if the file currently holds exactly what the last Save wrote.
// The watcher uses it to ignore our own writes.
func (s *FileStore) WroteLast() bool {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasWritten && xxhash.Sum64(data) == s.lastWritten
}

func (s *FileStore) Close() error {
	return nil
}
