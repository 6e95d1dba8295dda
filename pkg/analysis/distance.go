package analysis

import (
	"fmt"
	"math"

	"github.com/ritzau/annotator/pkg/graph"
	"github.com/ritzau/annotator/pkg/model"
	"gonum.org/v1/gonum/graph/path"
)

// Distances holds hop counts from one point
type Distances struct {
	From        string         `json:"from"`
	Hops        map[string]int `json:"hops"`        // Reachable point id -> number of edges
	Unreachable []string       `json:"unreachable"` // In snapshot order
}

// HopDistances computes the fewest number of edges from fromID to every other point.
// Every edge costs one hop; dangling edges and self loops are ignored.
func HopDistances(s model.Snapshot, fromID string, directed bool) (Distances, error) {
	pg := graph.Build(s, directed)

	nodeID, ok := pg.NodeID(fromID)
	if !ok {
		return Distances{}, fmt.Errorf("distances from %q: %w", fromID, graph.ErrUnknownPoint)
	}

	g := pg.Graph()
	shortest := path.DijkstraFrom(g.Node(nodeID), g)

	result := Distances{
		From:        fromID,
		Hops:        make(map[string]int),
		Unreachable: make([]string, 0),
	}
	for _, p := range pg.Points() {
		id, _ := pg.NodeID(p.ID)
		weight := shortest.WeightTo(id)
		if math.IsInf(weight, 1) {
			result.Unreachable = append(result.Unreachable, p.ID)
			continue
		}
		result.Hops[p.ID] = int(weight)
	}

	return result, nil
}
