// Package cycles finds loops among one-way annotations.
// In an undirected annotation graph every edge can be walked back, so only directed graphs are checked.
package cycles

import (
	"sort"

	"github.com/ritzau/annotator/pkg/graph"
)

// Cycle is a set of points that can all reach each other along one-way edges
type Cycle struct {
	Points []string `json:"points"` // Sorted point ids
}

// FindCycles returns the loops of a directed point graph, sorted by their first point id.
// An undirected graph has none by definition here.
func FindCycles(pg *graph.PointGraph) []Cycle {
	cycles := make([]Cycle, 0)
	if !pg.IsDirected() {
		return cycles
	}

	for _, scc := range newSCCFinder(pg.Directed()).find() {
		points := make([]string, 0, len(scc))
		for _, nodeID := range scc {
			if id, ok := pg.PointID(nodeID); ok {
				points = append(points, id)
			}
		}
		sort.Strings(points)

		if len(points) > 1 {
			cycles = append(cycles, Cycle{Points: points})
		}
	}

	sort.Slice(cycles, func(i, j int) bool {
		return cycles[i].Points[0] < cycles[j].Points[0]
	})
	return cycles
}
