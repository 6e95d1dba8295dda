package model

import (
	"errors"
	"fmt"
)

// Point is a labeled, positioned node placed on the canvas
type Point struct {
	ID    string  `json:"id"`
	Label string  `json:"label,omitempty"` // User-assigned "position"; not unique, may be empty
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Kind  string  `json:"kind,omitempty"` // e.g. "circle", "rect"; opaque to path search
}

// Edge is a connection drawn between two points.
// FromID/ToID record the drawing direction only; the graph is undirected unless a caller says otherwise.
type Edge struct {
	ID     string `json:"id"`
	FromID string `json:"fromId"`
	ToID   string `json:"toId"`
}

// Touches returns true if the edge has pointID as either endpoint
func (e Edge) Touches(pointID string) bool {
	return e.FromID == pointID || e.ToID == pointID
}

// Joins returns true if the edge connects a and b.
// With directed set, only a -> b counts.
func (e Edge) Joins(a, b string, directed bool) bool {
	if e.FromID == a && e.ToID == b {
		return true
	}
	return !directed && e.FromID == b && e.ToID == a
}

// Snapshot is a point-in-time copy of the annotation graph.
// Order of Points and Edges is significant: label lookup and neighbour order follow it.
type Snapshot struct {
	Points []Point `json:"points"`
	Edges  []Edge  `json:"edges"`
}

// NewSnapshot creates an empty snapshot
func NewSnapshot() Snapshot {
	return Snapshot{
		Points: make([]Point, 0),
		Edges:  make([]Edge, 0),
	}
}

// Clone returns a copy that shares no backing arrays with s
func (s Snapshot) Clone() Snapshot {
	c := Snapshot{
		Points: make([]Point, len(s.Points)),
		Edges:  make([]Edge, len(s.Edges)),
	}
	copy(c.Points, s.Points)
	copy(c.Edges, s.Edges)
	return c
}

// IsEmpty returns true if there are no points and no edges
func (s Snapshot) IsEmpty() bool {
	return len(s.Points) == 0 && len(s.Edges) == 0
}

// PointIndex returns the position of the point with the given id, or -1
func (s Snapshot) PointIndex(id string) int {
	for i := range s.Points {
		if s.Points[i].ID == id {
			return i
		}
	}
	return -1
}

// EdgeIndex returns the position of the edge with the given id, or -1
func (s Snapshot) EdgeIndex(id string) int {
	for i := range s.Edges {
		if s.Edges[i].ID == id {
			return i
		}
	}
	return -1
}

// FindPoint returns the point with the given id
func (s Snapshot) FindPoint(id string) (Point, bool) {
	if i := s.PointIndex(id); i >= 0 {
		return s.Points[i], true
	}
	return Point{}, false
}

// FindByLabel returns the first point, in iteration order, whose label equals label exactly
func (s Snapshot) FindByLabel(label string) (Point, bool) {
	for _, p := range s.Points {
		if p.Label == label {
			return p, true
		}
	}
	return Point{}, false
}

// PointIDs returns the set of point ids
func (s Snapshot) PointIDs() map[string]bool {
	ids := make(map[string]bool, len(s.Points))
	for _, p := range s.Points {
		ids[p.ID] = true
	}
	return ids
}

// DanglingEdges returns edges with at least one endpoint missing from the point set
func (s Snapshot) DanglingEdges() []Edge {
	ids := s.PointIDs()
	var dangling []Edge
	for _, e := range s.Edges {
		if !ids[e.FromID] || !ids[e.ToID] {
			dangling = append(dangling, e)
		}
	}
	return dangling
}

// ErrInvalidSnapshot is returned by Validate
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// Validate checks the uniqueness invariants and referential integrity.
// All problems are reported in one joined error.
func (s Snapshot) Validate() error {
	var errs []error

	seenPoints := make(map[string]bool, len(s.Points))
	for _, p := range s.Points {
		if p.ID == "" {
			errs = append(errs, fmt.Errorf("%w: point with empty id", ErrInvalidSnapshot))
			continue
		}
		if seenPoints[p.ID] {
			errs = append(errs, fmt.Errorf("%w: duplicate point id %q", ErrInvalidSnapshot, p.ID))
		}
		seenPoints[p.ID] = true
	}

	seenEdges := make(map[string]bool, len(s.Edges))
	for _, e := range s.Edges {
		if e.ID != "" {
			if seenEdges[e.ID] {
				errs = append(errs, fmt.Errorf("%w: duplicate edge id %q", ErrInvalidSnapshot, e.ID))
			}
			seenEdges[e.ID] = true
		}
		if !seenPoints[e.FromID] || !seenPoints[e.ToID] {
			errs = append(errs, fmt.Errorf("%w: edge %q references missing point (%q -> %q)",
				ErrInvalidSnapshot, e.ID, e.FromID, e.ToID))
		}
	}

	return errors.Join(errs...)
}
