package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/ritzau/annotator/pkg/analysis"
	"github.com/ritzau/annotator/pkg/model"
)

// PathResult is what the path command found
type PathResult struct {
	From  string // Query as typed
	To    string
	Path  []string // Point ids, empty when no path exists
	Lines []string // Line ids along the path
	Err   error    // Resolution or search failure
}

// describe renders a point as "Label (id)", or just the id when unlabeled
func describe(s model.Snapshot, id string) string {
	p, ok := s.FindPoint(id)
	if !ok || p.Label == "" {
		return id
	}
	return fmt.Sprintf("%s (%s)", p.Label, id)
}

// PrintPathReport prints the outcome of a path query with colors
func PrintPathReport(w io.Writer, s model.Snapshot, r PathResult) {
	bold := color.New(color.Bold)
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	bold.Fprintf(w, "Path %s -> %s\n", r.From, r.To)

	switch {
	case r.Err != nil:
		red.Fprintf(w, "Error: %v\n", r.Err)
		return
	case len(r.Path) == 0:
		yellow.Fprintln(w, "No path exists")
		return
	}

	green.Fprintf(w, "Found %d point(s), %d line(s)\n", len(r.Path), len(r.Lines))
	for i, id := range r.Path {
		marker := "  "
		if i == 0 || i == len(r.Path)-1 {
			marker = "* "
		}
		fmt.Fprintf(w, "%s%d. ", marker, i+1)
		cyan.Fprintln(w, describe(s, id))
	}
	if len(r.Lines) > 0 {
		fmt.Fprintf(w, "Lines: %s\n", strings.Join(r.Lines, ", "))
	}
}

// PrintAnalysisReport prints a graph health report with colors
func PrintAnalysisReport(w io.Writer, location string, s model.Snapshot, r analysis.Report) {
	bold := color.New(color.Bold)
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	// Header
	bold.Fprintln(w, "Annotator - Graph Report")
	bold.Fprintln(w, "========================")
	fmt.Fprintf(w, "Document: %s\n", location)
	mode := "undirected"
	if r.Directed {
		mode = "directed"
	}
	fmt.Fprintf(w, "Points: %d  Lines: %d  (%s)\n", r.Points, r.Edges, mode)
	fmt.Fprintf(w, "Components: %d\n", len(r.Components))
	fmt.Fprintln(w)

	if len(r.Isolated) > 0 {
		yellow.Fprintf(w, "Isolated points: %d\n", len(r.Isolated))
		for _, id := range r.Isolated {
			cyan.Fprintf(w, "  %s\n", describe(s, id))
		}
	}
	if len(r.Unlabeled) > 0 {
		yellow.Fprintf(w, "Unlabeled points: %d\n", len(r.Unlabeled))
	}
	if len(r.DuplicateLabels) > 0 {
		labels := make([]string, 0, len(r.DuplicateLabels))
		for label := range r.DuplicateLabels {
			labels = append(labels, label)
		}
		sort.Strings(labels)

		yellow.Fprintln(w, "Ambiguous labels (queries use the first):")
		for _, label := range labels {
			cyan.Fprintf(w, "  %q: %s\n", label, strings.Join(r.DuplicateLabels[label], ", "))
		}
	}
	if len(r.SelfLoops) > 0 {
		yellow.Fprintf(w, "Self loops: %d\n", len(r.SelfLoops))
	}
	for _, c := range r.Cycles {
		yellow.Fprintf(w, "One-way loop: %s\n", strings.Join(c.Points, " -> "))
	}
	if len(r.Dangling) > 0 {
		red.Fprintln(w, "DANGLING LINES:")
		for _, e := range r.Dangling {
			fmt.Fprintf(w, "  %s: %s -> %s\n", e.ID, e.FromID, e.ToID)
		}
	}
	fmt.Fprintln(w)

	if r.HasProblems() {
		red.Fprintf(w, "Problems: %d\n", len(r.Problems))
		for _, p := range r.Problems {
			red.Fprintf(w, "  %s\n", p)
		}
		return
	}
	green.Fprintln(w, "✓ Graph is well formed")
}
