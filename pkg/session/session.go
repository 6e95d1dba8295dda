// Package session holds the editable annotation graph and turns editing gestures
// (place a point, label it, draw a line, delete) into graph mutations.
//
// A Session is safe for concurrent use. Readers get copies: nothing returned by a
// Session aliases its internal state.
package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/ritzau/annotator/pkg/logging"
	"github.com/ritzau/annotator/pkg/model"
)

var (
	ErrUnknownPoint  = errors.New("unknown point")
	ErrUnknownEdge   = errors.New("unknown line")
	ErrSelfLoop      = errors.New("line must join two different points")
	ErrNothingToUndo = errors.New("nothing to undo")
)

// Action names a mutation
type Action string

const (
	ActionAddPoint    Action = "add_point"
	ActionLabelPoint  Action = "label_point"
	ActionMovePoint   Action = "move_point"
	ActionDeletePoint Action = "delete_point"
	ActionConnect     Action = "connect"
	ActionDeleteEdge  Action = "delete_line"
	ActionImport      Action = "import"
	ActionClear       Action = "clear"
	ActionUndo        Action = "undo"
	ActionReload      Action = "reload" // Replaced from storage; not undoable
)

// Change is delivered to listeners after every successful mutation
type Change struct {
	Action   Action
	Version  int
	Snapshot model.Snapshot
}

// Listener is called synchronously, outside the session lock
type Listener func(Change)

// DefaultUndoDepth bounds the undo history
const DefaultUndoDepth = 100

type undoEntry struct {
	action Action
	before model.Snapshot
}

// Session is the editable graph of one document
type Session struct {
	mu        sync.RWMutex
	snap      model.Snapshot
	undo      []undoEntry
	undoDepth int
	version   int
	listeners []Listener
	newID     func() string
}

// New creates a session starting from a copy of initial
func New(initial model.Snapshot) *Session {
	return &Session{
		snap:      initial.Clone(),
		undoDepth: DefaultUndoDepth,
		newID:     uuid.NewString,
	}
}

// SetUndoDepth changes how many mutations can be undone. 0 disables undo.
func (s *Session) SetUndoDepth(depth int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.undoDepth = depth
	s.trimUndo()
}

// SetIDGenerator replaces the uuid generator, for deterministic ids in tests
func (s *Session) SetIDGenerator(gen func() string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.newID = gen
}

// OnChange registers a listener
func (s *Session) OnChange(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Snapshot returns a copy of the current graph
func (s *Session) Snapshot() model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Clone()
}

// Version increases by one with every mutation
func (s *Session) Version() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// CanUndo returns true if there is a mutation to undo
func (s *Session) CanUndo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.undo) > 0
}

// AddPoint places a new point and returns it
func (s *Session) AddPoint(x, y float64, kind string) model.Point {
	var p model.Point
	_ = s.mutate(ActionAddPoint, func(snap *model.Snapshot) error {
		p = model.Point{ID: s.newID(), X: x, Y: y, Kind: kind}
		snap.Points = append(snap.Points, p)
		return nil
	})
	return p
}

// SetLabel sets the label ("position") of a point. An empty label clears it.
func (s *Session) SetLabel(pointID, label string) (model.Point, error) {
	var p model.Point
	err := s.mutate(ActionLabelPoint, func(snap *model.Snapshot) error {
		i := snap.PointIndex(pointID)
		if i < 0 {
			return fmt.Errorf("%w %q", ErrUnknownPoint, pointID)
		}
		snap.Points[i].Label = label
		p = snap.Points[i]
		return nil
	})
	return p, err
}

// MovePoint changes the coordinates of a point
func (s *Session) MovePoint(pointID string, x, y float64) (model.Point, error) {
	var p model.Point
	err := s.mutate(ActionMovePoint, func(snap *model.Snapshot) error {
		i := snap.PointIndex(pointID)
		if i < 0 {
			return fmt.Errorf("%w %q", ErrUnknownPoint, pointID)
		}
		snap.Points[i].X, snap.Points[i].Y = x, y
		p = snap.Points[i]
		return nil
	})
	return p, err
}

// DeletePoint removes a point together with every line touching it
func (s *Session) DeletePoint(pointID string) error {
	return s.mutate(ActionDeletePoint, func(snap *model.Snapshot) error {
		i := snap.PointIndex(pointID)
		if i < 0 {
			return fmt.Errorf("%w %q", ErrUnknownPoint, pointID)
		}
		snap.Points = append(snap.Points[:i], snap.Points[i+1:]...)

		kept := snap.Edges[:0]
		for _, e := range snap.Edges {
			if !e.Touches(pointID) {
				kept = append(kept, e)
			}
		}
		snap.Edges = kept
		return nil
	})
}

// Connect draws a line from one existing point to another
func (s *Session) Connect(fromID, toID string) (model.Edge, error) {
	var e model.Edge
	err := s.mutate(ActionConnect, func(snap *model.Snapshot) error {
		if fromID == toID {
			return ErrSelfLoop
		}
		for _, id := range []string{fromID, toID} {
			if snap.PointIndex(id) < 0 {
				return fmt.Errorf("%w %q", ErrUnknownPoint, id)
			}
		}
		e = model.Edge{ID: s.newID(), FromID: fromID, ToID: toID}
		snap.Edges = append(snap.Edges, e)
		return nil
	})
	return e, err
}

// DeleteEdge removes a line
func (s *Session) DeleteEdge(edgeID string) error {
	return s.mutate(ActionDeleteEdge, func(snap *model.Snapshot) error {
		i := snap.EdgeIndex(edgeID)
		if i < 0 {
			return fmt.Errorf("%w %q", ErrUnknownEdge, edgeID)
		}
		snap.Edges = append(snap.Edges[:i], snap.Edges[i+1:]...)
		return nil
	})
}

// Import replaces the whole graph; it can be undone
func (s *Session) Import(next model.Snapshot) {
	_ = s.mutate(ActionImport, func(snap *model.Snapshot) error {
		*snap = next.Clone()
		return nil
	})
}

// Clear removes all points and lines; it can be undone
func (s *Session) Clear() {
	_ = s.mutate(ActionClear, func(snap *model.Snapshot) error {
		*snap = model.NewSnapshot()
		return nil
	})
}

// Reload replaces the graph with what storage holds and drops the undo history
func (s *Session) Reload(next model.Snapshot) {
	s.mu.Lock()
	s.snap = next.Clone()
	s.undo = nil
	change := s.commitLocked(ActionReload)
	listeners := s.listeners
	s.mu.Unlock()

	notify(listeners, change)
}

// Undo reverts the most recent mutation
func (s *Session) Undo() (Action, error) {
	s.mu.Lock()
	if len(s.undo) == 0 {
		s.mu.Unlock()
		return "", ErrNothingToUndo
	}

	last := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.snap = last.before
	change := s.commitLocked(ActionUndo)
	listeners := s.listeners
	s.mu.Unlock()

	logging.Debug("undid mutation", "action", string(last.action), "version", change.Version)
	notify(listeners, change)
	return last.action, nil
}

// mutate applies fn to a working copy and commits it if fn succeeds
func (s *Session) mutate(action Action, fn func(*model.Snapshot) error) error {
	s.mu.Lock()
	working := s.snap.Clone()
	if err := fn(&working); err != nil {
		s.mu.Unlock()
		return err
	}

	if s.undoDepth > 0 {
		s.undo = append(s.undo, undoEntry{action: action, before: s.snap})
		s.trimUndo()
	}
	s.snap = working
	change := s.commitLocked(action)
	listeners := s.listeners
	s.mu.Unlock()

	logging.Trace("session mutated", "action", string(action), "version", change.Version,
		"points", len(change.Snapshot.Points), "lines", len(change.Snapshot.Edges))
	notify(listeners, change)
	return nil
}

// commitLocked bumps the version and builds the change record. Caller holds mu.
func (s *Session) commitLocked(action Action) Change {
	s.version++
	return Change{Action: action, Version: s.version, Snapshot: s.snap.Clone()}
}

// trimUndo drops the oldest entries beyond the depth. Caller holds mu.
func (s *Session) trimUndo() {
	if len(s.undo) > s.undoDepth {
		s.undo = append([]undoEntry(nil), s.undo[len(s.undo)-s.undoDepth:]...)
	}
}

func notify(listeners []Listener, change Change) {
	for _, l := range listeners {
		l(change)
	}
}
