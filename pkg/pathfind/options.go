package pathfind

import (
	"fmt"
	"strings"
)

// Strategy selects the search algorithm
type Strategy string

const (
	// StrategyDepthFirst finds some simple path; neighbours are tried in edge insertion order
	StrategyDepthFirst Strategy = "depth-first"
	// StrategyShortest finds a path with the fewest edges (breadth-first)
	StrategyShortest Strategy = "shortest"
)

// ParseStrategy converts a config or query value into a Strategy.
// The empty string selects depth-first.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "dfs", "depth-first", "any":
		return StrategyDepthFirst, nil
	case "bfs", "shortest":
		return StrategyShortest, nil
	default:
		return "", fmt.Errorf("unknown path strategy %q (want depth-first or shortest)", s)
	}
}

// Resolution selects how the start and end queries are matched to points
type Resolution int

const (
	// ResolveLabel matches queries against Point.Label, first match wins
	ResolveLabel Resolution = iota
	// ResolveID matches queries against Point.ID
	ResolveID
)

func (r Resolution) String() string {
	if r == ResolveID {
		return "id"
	}
	return "label"
}

// ParseResolution converts "label" or "id" into a Resolution
func ParseResolution(s string) (Resolution, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "label", "position":
		return ResolveLabel, nil
	case "id", "name":
		return ResolveID, nil
	default:
		return ResolveLabel, fmt.Errorf("unknown resolution %q (want label or id)", s)
	}
}

// Options parameterises a search. The zero value is the default behaviour:
// undirected, label lookup, dangling edges ignored, depth-first, no budget.
type Options struct {
	Directed bool       // Only follow edges from FromID to ToID
	Resolve  Resolution // How queries map to points
	Strict   bool       // Reject dangling edges and duplicate ids with ErrMalformedGraph
	Strategy Strategy   // Empty means depth-first
	MaxSteps int        // Upper bound on neighbour expansions; 0 is unbounded
}

// DefaultOptions returns the behaviour of FindPath
func DefaultOptions() Options {
	return Options{Strategy: StrategyDepthFirst}
}
