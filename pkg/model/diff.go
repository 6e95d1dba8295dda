package model

// Diff is the difference between two snapshots. Lists follow snapshot order.
type Diff struct {
	AddedPoints    []Point  `json:"addedPoints"`
	RemovedPoints  []string `json:"removedPoints"`  // Point ids
	ModifiedPoints []Point  `json:"modifiedPoints"` // New state of points whose label, kind or position changed
	AddedEdges     []Edge   `json:"addedEdges"`
	RemovedEdges   []string `json:"removedEdges"` // Edge ids
}

// IsEmpty returns true if the snapshots hold the same points and edges
func (d Diff) IsEmpty() bool {
	return len(d.AddedPoints) == 0 && len(d.RemovedPoints) == 0 && len(d.ModifiedPoints) == 0 &&
		len(d.AddedEdges) == 0 && len(d.RemovedEdges) == 0
}

// Compare computes what changed from old to updated. Points and edges are matched
// by id; an edge whose endpoints changed counts as removed and added.
func Compare(old, updated Snapshot) Diff {
	diff := Diff{
		AddedPoints:    make([]Point, 0),
		RemovedPoints:  make([]string, 0),
		ModifiedPoints: make([]Point, 0),
		AddedEdges:     make([]Edge, 0),
		RemovedEdges:   make([]string, 0),
	}

	oldPoints := make(map[string]Point, len(old.Points))
	for _, p := range old.Points {
		oldPoints[p.ID] = p
	}
	newPoints := make(map[string]bool, len(updated.Points))
	for _, p := range updated.Points {
		newPoints[p.ID] = true
		if before, exists := oldPoints[p.ID]; !exists {
			diff.AddedPoints = append(diff.AddedPoints, p)
		} else if before != p {
			diff.ModifiedPoints = append(diff.ModifiedPoints, p)
		}
	}
	for _, p := range old.Points {
		if !newPoints[p.ID] {
			diff.RemovedPoints = append(diff.RemovedPoints, p.ID)
		}
	}

	oldEdges := make(map[string]Edge, len(old.Edges))
	for _, e := range old.Edges {
		oldEdges[e.ID] = e
	}
	newEdges := make(map[string]Edge, len(updated.Edges))
	for _, e := range updated.Edges {
		newEdges[e.ID] = e
		if before, exists := oldEdges[e.ID]; !exists || before != e {
			diff.AddedEdges = append(diff.AddedEdges, e)
		}
	}
	for _, e := range old.Edges {
		if after, exists := newEdges[e.ID]; !exists || after != e {
			diff.RemovedEdges = append(diff.RemovedEdges, e.ID)
		}
	}

	return diff
}
