package pathfind

import "github.com/ritzau/annotator/pkg/model"

// EdgesAlong returns the ids of every edge joining two consecutive ids of path,
// in edge order. These are the lines a viewer re-styles to show the route.
// Parallel edges between the same pair are all returned.
func EdgesAlong(path []string, edges []model.Edge, directed bool) []string {
	if len(path) < 2 {
		return []string{}
	}

	seen := make(map[int]bool)
	ids := make([]string, 0, len(path)-1)
	for i := 0; i+1 < len(path); i++ {
		from, to := path[i], path[i+1]
		for j, edge := range edges {
			if seen[j] || !edge.Joins(from, to, directed) {
				continue
			}
			seen[j] = true
			ids = append(ids, edge.ID)
		}
	}
	return ids
}
