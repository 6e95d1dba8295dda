package graph

import (
	"errors"
	"testing"

	"github.com/ritzau/annotator/pkg/model"
)

func TestNewPointGraph(t *testing.T) {
	pg := New(false)
	if pg == nil {
		t.Fatal("New() returned nil")
	}

	if len(pg.Points()) != 0 {
		t.Errorf("New graph should have 0 points, got %d", len(pg.Points()))
	}
	if pg.IsDirected() {
		t.Error("Expected undirected graph")
	}
}

func TestAddPoint(t *testing.T) {
	pg := New(false)

	pg.AddPoint(model.Point{ID: "p1", Label: "Door"})
	pg.AddPoint(model.Point{ID: "p1", Label: "Front door"})

	if len(pg.Points()) != 1 {
		t.Errorf("Expected 1 point, got %d", len(pg.Points()))
	}

	p, exists := pg.Point("p1")
	if !exists {
		t.Fatal("Point not found in graph")
	}
	if p.Label != "Front door" {
		t.Errorf("Expected replaced label 'Front door', got %q", p.Label)
	}

	nodeID, ok := pg.NodeID("p1")
	if !ok {
		t.Fatal("No node id for p1")
	}
	if back, _ := pg.PointID(nodeID); back != "p1" {
		t.Errorf("Expected node %d to map back to p1, got %q", nodeID, back)
	}
}

func TestConnect(t *testing.T) {
	pg := New(false)
	pg.AddPoint(model.Point{ID: "a"})
	pg.AddPoint(model.Point{ID: "b"})

	if err := pg.Connect(model.Edge{ID: "e1", FromID: "b", ToID: "a"}); err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	// Parallel edge collapses
	if err := pg.Connect(model.Edge{ID: "e2", FromID: "a", ToID: "b"}); err != nil {
		t.Fatalf("Failed to connect parallel edge: %v", err)
	}

	edges := pg.Edges()
	if len(edges) != 1 {
		t.Fatalf("Expected 1 edge, got %d", len(edges))
	}
	if edges[0] != [2]string{"a", "b"} {
		t.Errorf("Expected edge a-b, got %v", edges[0])
	}

	if err := pg.Connect(model.Edge{ID: "e3", FromID: "a", ToID: "zz"}); !errors.Is(err, ErrUnknownPoint) {
		t.Errorf("Expected ErrUnknownPoint, got %v", err)
	}
	if err := pg.Connect(model.Edge{ID: "e4", FromID: "a", ToID: "a"}); !errors.Is(err, ErrSelfLoop) {
		t.Errorf("Expected ErrSelfLoop, got %v", err)
	}
}

func TestNeighbours(t *testing.T) {
	s := model.Snapshot{
		Points: []model.Point{{ID: "hub"}, {ID: "x"}, {ID: "y"}, {ID: "z"}},
		Edges: []model.Edge{
			{ID: "1", FromID: "hub", ToID: "y"},
			{ID: "2", FromID: "x", ToID: "hub"},
			{ID: "3", FromID: "z", ToID: "x"},
		},
	}

	undirected := Build(s, false)
	neighbours := undirected.Neighbours("hub")
	if len(neighbours) != 2 || neighbours[0] != "x" || neighbours[1] != "y" {
		t.Errorf("Expected neighbours [x y], got %v", neighbours)
	}
	if undirected.Degree("x") != 2 {
		t.Errorf("Expected degree 2 for x, got %d", undirected.Degree("x"))
	}

	directed := Build(s, true)
	successors := directed.Neighbours("hub")
	if len(successors) != 1 || successors[0] != "y" {
		t.Errorf("Expected successors [y], got %v", successors)
	}
	if directed.Degree("hub") != 2 {
		t.Errorf("Expected in+out degree 2 for hub, got %d", directed.Degree("hub"))
	}

	if got := undirected.Neighbours("missing"); got != nil {
		t.Errorf("Expected nil neighbours for missing point, got %v", got)
	}
}

func TestBuildSkipsBadEdges(t *testing.T) {
	s := model.Snapshot{
		Points: []model.Point{{ID: "a"}, {ID: "b"}},
		Edges: []model.Edge{
			{ID: "good", FromID: "a", ToID: "b"},
			{ID: "dangling", FromID: "a", ToID: "gone"},
			{ID: "loop", FromID: "b", ToID: "b"},
		},
	}

	pg := Build(s, false)

	if len(pg.Edges()) != 1 {
		t.Errorf("Expected 1 edge, got %d", len(pg.Edges()))
	}

	skipped := pg.Skipped()
	if len(skipped) != 2 || skipped[0].ID != "dangling" || skipped[1].ID != "loop" {
		t.Errorf("Expected dangling and loop to be skipped, got %v", skipped)
	}

	points := pg.Points()
	if len(points) != 2 || points[0].ID != "a" || points[1].ID != "b" {
		t.Errorf("Expected points in insertion order, got %v", points)
	}
}
