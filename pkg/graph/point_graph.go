package graph

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ritzau/annotator/pkg/model"
	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

var (
	// ErrUnknownPoint means an edge references a point that is not in the graph
	ErrUnknownPoint = errors.New("unknown point")
	// ErrSelfLoop means an edge starts and ends at the same point
	ErrSelfLoop = errors.New("self loop")
)

// PointGraph is the annotation graph backed by a gonum simple graph.
// Point ids are strings; gonum nodes are int64, so the two are mapped both ways.
// Parallel edges between the same pair collapse into one gonum edge.
type PointGraph struct {
	directed   *simple.DirectedGraph   // set when built directed
	undirected *simple.UndirectedGraph // set when built undirected
	points     map[string]model.Point
	order      []string         // Point ids in insertion order
	ids        map[string]int64 // Point id -> graph id
	keys       map[int64]string // Graph id -> point id
	skipped    []model.Edge     // Edges that could not be added
	nextID     int64
}

// New creates an empty graph
func New(directed bool) *PointGraph {
	pg := &PointGraph{
		points: make(map[string]model.Point),
		ids:    make(map[string]int64),
		keys:   make(map[int64]string),
	}
	if directed {
		pg.directed = simple.NewDirectedGraph()
	} else {
		pg.undirected = simple.NewUndirectedGraph()
	}
	return pg
}

// Build creates a graph from a snapshot.
// Dangling edges and self loops are not added; Skipped lists them.
func Build(s model.Snapshot, directed bool) *PointGraph {
	pg := New(directed)

	for _, p := range s.Points {
		pg.AddPoint(p)
	}
	for _, e := range s.Edges {
		if err := pg.Connect(e); err != nil {
			pg.skipped = append(pg.skipped, e)
		}
	}

	return pg
}

// IsDirected reports whether edges are one-way
func (pg *PointGraph) IsDirected() bool {
	return pg.directed != nil
}

// AddPoint adds a point to the graph. A point with a known id replaces the stored copy.
func (pg *PointGraph) AddPoint(p model.Point) {
	if _, exists := pg.points[p.ID]; exists {
		pg.points[p.ID] = p
		return
	}

	pg.points[p.ID] = p
	pg.order = append(pg.order, p.ID)
	pg.ids[p.ID] = pg.nextID
	pg.keys[pg.nextID] = p.ID

	if pg.directed != nil {
		pg.directed.AddNode(simple.Node(pg.nextID))
	} else {
		pg.undirected.AddNode(simple.Node(pg.nextID))
	}

	pg.nextID++
}

// Connect adds an edge between two existing points
func (pg *PointGraph) Connect(e model.Edge) error {
	fromID, ok := pg.ids[e.FromID]
	if !ok {
		return fmt.Errorf("edge %q: %w %q", e.ID, ErrUnknownPoint, e.FromID)
	}
	toID, ok := pg.ids[e.ToID]
	if !ok {
		return fmt.Errorf("edge %q: %w %q", e.ID, ErrUnknownPoint, e.ToID)
	}
	if fromID == toID {
		return fmt.Errorf("edge %q: %w at %q", e.ID, ErrSelfLoop, e.FromID)
	}

	if pg.directed != nil {
		if !pg.directed.HasEdgeFromTo(fromID, toID) {
			pg.directed.SetEdge(pg.directed.NewEdge(pg.directed.Node(fromID), pg.directed.Node(toID)))
		}
		return nil
	}

	if !pg.undirected.HasEdgeBetween(fromID, toID) {
		pg.undirected.SetEdge(pg.undirected.NewEdge(pg.undirected.Node(fromID), pg.undirected.Node(toID)))
	}
	return nil
}

// Graph returns the underlying gonum graph
func (pg *PointGraph) Graph() gonum.Graph {
	if pg.directed != nil {
		return pg.directed
	}
	return pg.undirected
}

// Directed returns the underlying directed graph, or nil for an undirected PointGraph
func (pg *PointGraph) Directed() *simple.DirectedGraph {
	return pg.directed
}

// Undirected returns the underlying undirected graph, or nil for a directed PointGraph
func (pg *PointGraph) Undirected() *simple.UndirectedGraph {
	return pg.undirected
}

// NodeID returns the gonum node id for a point id
func (pg *PointGraph) NodeID(pointID string) (int64, bool) {
	id, ok := pg.ids[pointID]
	return id, ok
}

// PointID returns the point id for a gonum node id
func (pg *PointGraph) PointID(nodeID int64) (string, bool) {
	key, ok := pg.keys[nodeID]
	return key, ok
}

// Point returns a point by id
func (pg *PointGraph) Point(pointID string) (model.Point, bool) {
	p, ok := pg.points[pointID]
	return p, ok
}

// Points returns all points in insertion order
func (pg *PointGraph) Points() []model.Point {
	points := make([]model.Point, 0, len(pg.order))
	for _, id := range pg.order {
		points = append(points, pg.points[id])
	}
	return points
}

// Edges returns all distinct connections as [from, to] point id pairs, sorted.
// Undirected pairs are ordered so that from < to.
func (pg *PointGraph) Edges() [][2]string {
	var iter gonum.Edges
	if pg.directed != nil {
		iter = pg.directed.Edges()
	} else {
		iter = pg.undirected.Edges()
	}

	edges := make([][2]string, 0)
	for iter.Next() {
		edge := iter.Edge()
		from, to := pg.keys[edge.From().ID()], pg.keys[edge.To().ID()]
		if pg.directed == nil && to < from {
			from, to = to, from
		}
		edges = append(edges, [2]string{from, to})
	}

	sort.Slice(edges, func(i, j int) bool {
		if edges[i][0] != edges[j][0] {
			return edges[i][0] < edges[j][0]
		}
		return edges[i][1] < edges[j][1]
	})
	return edges
}

// Neighbours returns the sorted ids of points reachable over one edge.
// For a directed graph these are the successors.
func (pg *PointGraph) Neighbours(pointID string) []string {
	id, exists := pg.ids[pointID]
	if !exists {
		return nil
	}

	var neighbours []string
	iter := pg.Graph().From(id)
	for iter.Next() {
		neighbours = append(neighbours, pg.keys[iter.Node().ID()])
	}

	sort.Strings(neighbours)
	return neighbours
}

// Degree returns the number of distinct neighbours, counting both directions for directed graphs
func (pg *PointGraph) Degree(pointID string) int {
	id, exists := pg.ids[pointID]
	if !exists {
		return 0
	}
	if pg.directed != nil {
		return count(pg.directed.From(id)) + count(pg.directed.To(id))
	}
	return count(pg.undirected.From(id))
}

func count(nodes gonum.Nodes) int {
	n := 0
	for nodes.Next() {
		n++
	}
	return n
}

// Skipped returns the edges Build could not add (dangling endpoints or self loops)
func (pg *PointGraph) Skipped() []model.Edge {
	return pg.skipped
}
