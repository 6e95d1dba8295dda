package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/ritzau/annotator/pkg/analysis"
	"github.com/ritzau/annotator/pkg/model"
	"github.com/ritzau/annotator/pkg/pathfind"
)

func init() {
	color.NoColor = true
}

func snapshot() model.Snapshot {
	return model.Snapshot{
		Points: []model.Point{{ID: "1", Label: "A"}, {ID: "2"}, {ID: "3", Label: "C"}, {ID: "4", Label: "C"}},
		Edges: []model.Edge{
			{ID: "l1", FromID: "1", ToID: "2"},
			{ID: "l2", FromID: "2", ToID: "3"},
			{ID: "l3", FromID: "3", ToID: "missing"},
		},
	}
}

func TestPrintPathReport(t *testing.T) {
	var buf bytes.Buffer
	PrintPathReport(&buf, snapshot(), PathResult{
		From: "A", To: "C",
		Path:  []string{"1", "2", "3"},
		Lines: []string{"l1", "l2"},
	})

	out := buf.String()
	for _, want := range []string{"Path A -> C", "Found 3 point(s), 2 line(s)", "* 1. A (1)", "  2. 2", "* 3. C (3)", "Lines: l1, l2"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
}

func TestPrintPathReportFailures(t *testing.T) {
	var buf bytes.Buffer
	PrintPathReport(&buf, snapshot(), PathResult{From: "A", To: "4"})
	if !strings.Contains(buf.String(), "No path exists") {
		t.Errorf("Expected no-path message, got:\n%s", buf.String())
	}

	buf.Reset()
	err := &pathfind.ResolveError{Query: "Z", Resolve: pathfind.ResolveLabel, Role: "end"}
	PrintPathReport(&buf, snapshot(), PathResult{From: "A", To: "Z", Err: err})
	if !strings.Contains(buf.String(), "Error: ") || !strings.Contains(buf.String(), `"Z"`) {
		t.Errorf("Expected resolve error, got:\n%s", buf.String())
	}
}

func TestPrintAnalysisReport(t *testing.T) {
	s := snapshot()
	var buf bytes.Buffer
	PrintAnalysisReport(&buf, "plan.json", s, analysis.Analyze(s, false))

	out := buf.String()
	for _, want := range []string{"Document: plan.json", "Points: 4  Lines: 3  (undirected)", "Isolated points: 1", "C (4)",
		"Unlabeled points: 1", `"C": 3, 4`, "DANGLING LINES:", "l3: 3 -> missing", "Problems: 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
}

func TestPrintAnalysisReportClean(t *testing.T) {
	s := model.Snapshot{
		Points: []model.Point{{ID: "1", Label: "A"}, {ID: "2", Label: "B"}},
		Edges:  []model.Edge{{ID: "l1", FromID: "1", ToID: "2"}},
	}
	var buf bytes.Buffer
	PrintAnalysisReport(&buf, "plan.json", s, analysis.Analyze(s, true))

	if !strings.Contains(buf.String(), "✓ Graph is well formed") {
		t.Errorf("Expected success line, got:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "(directed)") {
		t.Errorf("Expected directed mode, got:\n%s", buf.String())
	}
}
