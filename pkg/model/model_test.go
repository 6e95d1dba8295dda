package model

import (
	"errors"
	"testing"
)

func TestCloneDoesNotAlias(t *testing.T) {
	s := Snapshot{
		Points: []Point{{ID: "1", Label: "A"}},
		Edges:  []Edge{{ID: "e1", FromID: "1", ToID: "1"}},
	}

	c := s.Clone()
	c.Points[0].Label = "changed"
	c.Edges[0].ToID = "2"

	if s.Points[0].Label != "A" {
		t.Errorf("Clone shares points with original: label is %q", s.Points[0].Label)
	}
	if s.Edges[0].ToID != "1" {
		t.Errorf("Clone shares edges with original: toId is %q", s.Edges[0].ToID)
	}
}

func TestFindByLabelPicksFirst(t *testing.T) {
	s := Snapshot{Points: []Point{
		{ID: "1", Label: "gate"},
		{ID: "2", Label: "gate"},
		{ID: "3", Label: "Gate"},
	}}

	p, ok := s.FindByLabel("gate")
	if !ok || p.ID != "1" {
		t.Errorf("Expected first match with id 1, got %+v (found=%v)", p, ok)
	}

	p, ok = s.FindByLabel("Gate")
	if !ok || p.ID != "3" {
		t.Errorf("Expected case-sensitive match with id 3, got %+v (found=%v)", p, ok)
	}

	if _, ok := s.FindByLabel(" gate"); ok {
		t.Error("Expected no match for untrimmed query")
	}
}

func TestEdgeJoins(t *testing.T) {
	e := Edge{ID: "e", FromID: "a", ToID: "b"}

	if !e.Joins("a", "b", true) {
		t.Error("Expected a -> b to join in directed mode")
	}
	if e.Joins("b", "a", true) {
		t.Error("Expected b -> a not to join in directed mode")
	}
	if !e.Joins("b", "a", false) {
		t.Error("Expected b - a to join in undirected mode")
	}
	if !e.Touches("b") || e.Touches("c") {
		t.Error("Touches reported wrong endpoints")
	}
}

func TestDanglingEdges(t *testing.T) {
	s := Snapshot{
		Points: []Point{{ID: "1"}, {ID: "2"}},
		Edges: []Edge{
			{ID: "ok", FromID: "1", ToID: "2"},
			{ID: "bad", FromID: "2", ToID: "9"},
		},
	}

	dangling := s.DanglingEdges()
	if len(dangling) != 1 || dangling[0].ID != "bad" {
		t.Errorf("Expected only edge 'bad' to dangle, got %v", dangling)
	}
}

func TestValidate(t *testing.T) {
	valid := Snapshot{
		Points: []Point{{ID: "1"}, {ID: "2"}},
		Edges:  []Edge{{ID: "e1", FromID: "1", ToID: "2"}},
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("Expected valid snapshot, got %v", err)
	}

	invalid := Snapshot{
		Points: []Point{{ID: "1"}, {ID: "1"}},
		Edges: []Edge{
			{ID: "e1", FromID: "1", ToID: "7"},
			{ID: "e1", FromID: "1", ToID: "1"},
		},
	}
	err := invalid.Validate()
	if err == nil {
		t.Fatal("Expected validation error")
	}
	if !errors.Is(err, ErrInvalidSnapshot) {
		t.Errorf("Expected ErrInvalidSnapshot, got %v", err)
	}
}

func TestCompare(t *testing.T) {
	old := Snapshot{
		Points: []Point{{ID: "1", Label: "A"}, {ID: "2", Label: "B"}, {ID: "3"}},
		Edges:  []Edge{{ID: "a", FromID: "1", ToID: "2"}, {ID: "b", FromID: "2", ToID: "3"}},
	}
	updated := Snapshot{
		Points: []Point{{ID: "1", Label: "A"}, {ID: "2", Label: "B", X: 5}, {ID: "4", Label: "D"}},
		Edges:  []Edge{{ID: "a", FromID: "1", ToID: "2"}, {ID: "b", FromID: "2", ToID: "4"}},
	}

	diff := Compare(old, updated)

	if len(diff.AddedPoints) != 1 || diff.AddedPoints[0].ID != "4" {
		t.Errorf("Expected point 4 added, got %v", diff.AddedPoints)
	}
	if len(diff.RemovedPoints) != 1 || diff.RemovedPoints[0] != "3" {
		t.Errorf("Expected point 3 removed, got %v", diff.RemovedPoints)
	}
	if len(diff.ModifiedPoints) != 1 || diff.ModifiedPoints[0].X != 5 {
		t.Errorf("Expected point 2 moved, got %v", diff.ModifiedPoints)
	}
	if len(diff.AddedEdges) != 1 || len(diff.RemovedEdges) != 1 || diff.RemovedEdges[0] != "b" {
		t.Errorf("Expected rewired edge b as remove+add, got +%v -%v", diff.AddedEdges, diff.RemovedEdges)
	}
	if diff.IsEmpty() {
		t.Error("Expected non-empty diff")
	}

	if !Compare(old, old.Clone()).IsEmpty() {
		t.Error("Expected identical snapshots to compare equal")
	}
}
