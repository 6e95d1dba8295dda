// Package analysis summarises the health of an annotation graph:
// connectivity, unlabeled or ambiguous points, dangling lines and one-way loops.
package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ritzau/annotator/pkg/cycles"
	"github.com/ritzau/annotator/pkg/graph"
	"github.com/ritzau/annotator/pkg/model"
	"gonum.org/v1/gonum/graph/topo"
)

// Component is a set of points connected to each other, ignoring edge direction
type Component struct {
	Points []string `json:"points"` // Point ids in snapshot order
}

// Report describes a snapshot
type Report struct {
	Points          int                 `json:"points"`
	Edges           int                 `json:"edges"`
	Directed        bool                `json:"directed"`
	Components      []Component         `json:"components"`      // Largest first
	Isolated        []string            `json:"isolated"`        // Points with no usable edge
	Unlabeled       []string            `json:"unlabeled"`       // Points a label query can never reach
	DuplicateLabels map[string][]string `json:"duplicateLabels"` // Label -> ids; queries resolve to the first
	Dangling        []model.Edge        `json:"dangling"`        // Edges with a missing endpoint
	SelfLoops       []model.Edge        `json:"selfLoops"`
	Cycles          []cycles.Cycle      `json:"cycles"` // Only for directed graphs
	Problems        []string            `json:"problems"`
}

// HasProblems returns true if the snapshot breaks an invariant (duplicate ids or dangling edges).
// Ambiguous labels and isolated points are reported but are not problems.
func (r Report) HasProblems() bool {
	return len(r.Problems) > 0
}

// RequireUniqueLabels records every ambiguous label as a problem
func (r *Report) RequireUniqueLabels() {
	labels := make([]string, 0, len(r.DuplicateLabels))
	for label := range r.DuplicateLabels {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	for _, label := range labels {
		ids := r.DuplicateLabels[label]
		r.Problems = append(r.Problems, fmt.Sprintf("label %q is shared by points %s", label, strings.Join(ids, ", ")))
	}
}

// Analyze builds a report for s
func Analyze(s model.Snapshot, directed bool) Report {
	report := Report{
		Points:          len(s.Points),
		Edges:           len(s.Edges),
		Directed:        directed,
		Components:      make([]Component, 0),
		Isolated:        make([]string, 0),
		Unlabeled:       make([]string, 0),
		DuplicateLabels: make(map[string][]string),
		Dangling:        s.DanglingEdges(),
		SelfLoops:       make([]model.Edge, 0),
		Problems:        make([]string, 0),
	}
	if report.Dangling == nil {
		report.Dangling = make([]model.Edge, 0)
	}

	if err := s.Validate(); err != nil {
		report.Problems = append(report.Problems, splitErrors(err)...)
	}

	// Labels
	byLabel := make(map[string][]string)
	for _, p := range s.Points {
		if p.Label == "" {
			report.Unlabeled = append(report.Unlabeled, p.ID)
			continue
		}
		byLabel[p.Label] = append(byLabel[p.Label], p.ID)
	}
	for label, ids := range byLabel {
		if len(ids) > 1 {
			report.DuplicateLabels[label] = ids
		}
	}

	for _, e := range s.Edges {
		if e.FromID == e.ToID {
			report.SelfLoops = append(report.SelfLoops, e)
		}
	}

	// Connectivity ignores direction
	undirected := graph.Build(s, false)
	order := make(map[string]int, len(s.Points))
	for i, p := range s.Points {
		if _, seen := order[p.ID]; !seen {
			order[p.ID] = i
		}
	}

	for _, nodes := range topo.ConnectedComponents(undirected.Undirected()) {
		component := Component{Points: make([]string, 0, len(nodes))}
		for _, node := range nodes {
			if id, ok := undirected.PointID(node.ID()); ok {
				component.Points = append(component.Points, id)
			}
		}
		sort.Slice(component.Points, func(i, j int) bool {
			return order[component.Points[i]] < order[component.Points[j]]
		})

		if len(component.Points) == 1 {
			report.Isolated = append(report.Isolated, component.Points[0])
		}
		report.Components = append(report.Components, component)
	}

	sort.Slice(report.Components, func(i, j int) bool {
		a, b := report.Components[i].Points, report.Components[j].Points
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return order[a[0]] < order[b[0]]
	})
	sort.Slice(report.Isolated, func(i, j int) bool {
		return order[report.Isolated[i]] < order[report.Isolated[j]]
	})

	if directed {
		report.Cycles = cycles.FindCycles(graph.Build(s, true))
	} else {
		report.Cycles = make([]cycles.Cycle, 0)
	}

	return report
}

// splitErrors flattens an errors.Join result into messages
func splitErrors(err error) []string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		messages := make([]string, 0)
		for _, e := range joined.Unwrap() {
			messages = append(messages, e.Error())
		}
		return messages
	}
	return []string{err.Error()}
}
