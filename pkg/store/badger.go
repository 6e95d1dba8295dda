package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/ritzau/annotator/pkg/document"
	"github.com/ritzau/annotator/pkg/logging"
	"github.com/ritzau/annotator/pkg/model"
)

// graphKey holds the document, in the same JSON format as a FileStore
var graphKey = []byte("graphData")

// BadgerConfig configures a BadgerStore
type BadgerConfig struct {
	Path       string // Database directory, ignored when InMemory
	InMemory   bool   // For tests
	SyncWrites bool
}

// BadgerStore keeps the graph in an embedded badger database
type BadgerStore struct {
	db       *badger.DB
	location string
}

// badgerLogger forwards badger's own logging to slog, one level down so it stays quiet at info
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...), "component", "badger")
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...), "component", "badger")
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...), "component", "badger")
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Log(context.Background(), logging.LevelTrace, fmt.Sprintf(format, args...), "component", "badger")
}

// OpenBadger opens (creating if needed) the database
func OpenBadger(cfg BadgerConfig) (*BadgerStore, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("badger store: path is required for a persistent database")
	}

	var opts badger.Options
	location := cfg.Path
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
		location = "memory"
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	opts = opts.WithSyncWrites(cfg.SyncWrites).
		WithNumVersionsToKeep(1).
		WithLogger(&badgerLogger{logger: logging.Logger()})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}

	logging.Debug("opened badger store", "location", location)
	return &BadgerStore{db: db, location: "badger:" + location}, nil
}

func (s *BadgerStore) Location() string {
	return s.location
}

// Load returns the stored graph, or an empty graph if none was saved
func (s *BadgerStore) Load(ctx context.Context) (model.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return model.Snapshot{}, err
	}

	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(graphKey)
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return model.NewSnapshot(), nil
	}
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("load from %s: %w", s.location, err)
	}

	snap, err := document.Unmarshal(data)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("load from %s: %w", s.location, err)
	}
	return snap, nil
}

// Save replaces the stored graph
func (s *BadgerStore) Save(ctx context.Context, snap model.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := document.Marshal(snap)
	if err != nil {
		return err
	}

	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(graphKey, data)
	}); err != nil {
		return fmt.Errorf("save to %s: %w", s.location, err)
	}

	logging.DebugContext(ctx, "saved graph", "location", s.location,
		"points", len(snap.Points), "lines", len(snap.Edges))
	return nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
