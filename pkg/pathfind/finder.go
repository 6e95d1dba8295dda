// Package pathfind finds a connecting path between two points of an annotation graph.
//
// A search works on caller-owned slices of points and edges and never modifies them.
// All state (adjacency, visited set, path stack) is local to one call, so independent
// calls may run concurrently over the same read-only inputs.
package pathfind

import (
	"errors"
	"fmt"

	"github.com/ritzau/annotator/pkg/model"
)

// FindPath resolves startLabel and endLabel to the first points carrying those labels
// and returns the ids of a path between them, start and end included.
//
// Errors are ErrLabelNotFound (wrapped in *ResolveError) and ErrNoPathExists.
func FindPath(startLabel, endLabel string, points []model.Point, edges []model.Edge) ([]string, error) {
	return Find(startLabel, endLabel, points, edges, DefaultOptions())
}

// Find is FindPath with explicit options
func Find(start, end string, points []model.Point, edges []model.Edge, opts Options) ([]string, error) {
	if opts.Strict {
		snap := model.Snapshot{Points: points, Edges: edges}
		if err := snap.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedGraph, err)
		}
	}

	startID, startErr := resolve(start, points, opts.Resolve, "start")
	endID, endErr := resolve(end, points, opts.Resolve, "end")
	if err := errors.Join(startErr, endErr); err != nil {
		return nil, err
	}

	if startID == endID {
		return []string{startID}, nil
	}

	adjacency := buildAdjacency(points, edges, opts.Directed)

	switch opts.Strategy {
	case "", StrategyDepthFirst:
		return depthFirst(adjacency, startID, endID, opts.MaxSteps)
	case StrategyShortest:
		return breadthFirst(adjacency, startID, endID, opts.MaxSteps)
	default:
		return nil, fmt.Errorf("unknown path strategy %q", opts.Strategy)
	}
}

// resolve maps a query to a point id
func resolve(query string, points []model.Point, how Resolution, role string) (string, error) {
	for _, p := range points {
		switch how {
		case ResolveID:
			if p.ID == query {
				return p.ID, nil
			}
		default:
			if p.Label == query {
				return p.ID, nil
			}
		}
	}
	return "", &ResolveError{Query: query, Resolve: how, Role: role}
}

// buildAdjacency maps each point id to its neighbours in edge insertion order.
// Undirected graphs get both directions of every edge. Ids that appear on no edge are absent.
// Edges with an endpoint outside points are skipped, so a missing point is never a stepping stone.
func buildAdjacency(points []model.Point, edges []model.Edge, directed bool) map[string][]string {
	known := make(map[string]bool, len(points))
	for _, p := range points {
		known[p.ID] = true
	}

	adjacency := make(map[string][]string)
	for _, edge := range edges {
		if !known[edge.FromID] || !known[edge.ToID] {
			continue
		}
		adjacency[edge.FromID] = append(adjacency[edge.FromID], edge.ToID)
		if !directed {
			adjacency[edge.ToID] = append(adjacency[edge.ToID], edge.FromID)
		}
	}

	return adjacency
}

// frame is one level of the explicit DFS stack
type frame struct {
	node string
	next int // index of the next neighbour to try
}

// depthFirst walks neighbours in adjacency order and returns the first path that reaches end.
// A node is marked visited when first entered and stays marked after backtracking.
func depthFirst(adjacency map[string][]string, start, end string, maxSteps int) ([]string, error) {
	visited := map[string]bool{start: true}
	path := []string{start}
	stack := []frame{{node: start}}
	steps := 0

	for len(stack) > 0 {
		top := len(stack) - 1
		neighbours := adjacency[stack[top].node]

		if stack[top].next >= len(neighbours) {
			stack = stack[:top]
			path = path[:len(path)-1]
			continue
		}

		neighbour := neighbours[stack[top].next]
		stack[top].next++

		steps++
		if maxSteps > 0 && steps > maxSteps {
			return nil, fmt.Errorf("%w after %d steps", ErrSearchBudgetExceeded, maxSteps)
		}

		if neighbour == end {
			result := make([]string, len(path), len(path)+1)
			copy(result, path)
			return append(result, end), nil
		}
		if visited[neighbour] {
			continue
		}

		visited[neighbour] = true
		path = append(path, neighbour)
		stack = append(stack, frame{node: neighbour})
	}

	return nil, ErrNoPathExists
}

// breadthFirst returns a path with the fewest edges.
// Ties are broken by adjacency order, so the result is stable for fixed input.
func breadthFirst(adjacency map[string][]string, start, end string, maxSteps int) ([]string, error) {
	parent := map[string]string{start: start}
	queue := []string{start}
	steps := 0

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, neighbour := range adjacency[current] {
			steps++
			if maxSteps > 0 && steps > maxSteps {
				return nil, fmt.Errorf("%w after %d steps", ErrSearchBudgetExceeded, maxSteps)
			}

			if _, seen := parent[neighbour]; seen {
				continue
			}
			parent[neighbour] = current

			if neighbour == end {
				return unwind(parent, start, end), nil
			}
			queue = append(queue, neighbour)
		}
	}

	return nil, ErrNoPathExists
}

// unwind follows parent links from end back to start and returns the path in forward order
func unwind(parent map[string]string, start, end string) []string {
	var reversed []string
	for node := end; node != start; node = parent[node] {
		reversed = append(reversed, node)
	}
	reversed = append(reversed, start)

	path := make([]string, len(reversed))
	for i, node := range reversed {
		path[len(reversed)-1-i] = node
	}
	return path
}
