package main

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const plan = `{
  "positionPoints": [
    {"position": "Entrance", "name": "1", "x": 0, "y": 0},
    {"position": "Hall", "name": "2", "x": 100, "y": 0},
    {"position": "Lab", "name": "3", "x": 100, "y": 100},
    {"position": "Roof", "name": "4", "x": 300, "y": 300}
  ],
  "positionLines": [
    {"fromName": "1", "toName": "2", "lineId": "a"},
    {"fromName": "2", "toName": "3", "lineId": "b"}
  ]
}`

func writePlan(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.json")
	require.NoError(t, os.WriteFile(path, []byte(plan), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--log-level", "error"))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestPathCommand(t *testing.T) {
	doc := writePlan(t)

	out, err := execute(t, "path", "Entrance", "Lab", "--document", doc)
	require.NoError(t, err)
	assert.Contains(t, out, "Found 3 point(s), 2 line(s)")
	assert.Contains(t, out, "Lines: a, b")

	out, err = execute(t, "path", "Entrance", "Roof", "--document", doc)
	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, out, "No path exists")

	out, err = execute(t, "path", "Entrance", "Attic", "--document", doc)
	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, out, "Error: ")
}

func TestCheckCommand(t *testing.T) {
	doc := writePlan(t)

	out, err := execute(t, "check", "--document", doc)
	require.NoError(t, err)
	assert.Contains(t, out, "Isolated points: 1")
	assert.Contains(t, out, "Graph is well formed")

	broken := strings.Replace(plan, `"toName": "3"`, `"toName": "9"`, 1)
	require.NoError(t, os.WriteFile(doc, []byte(broken), 0o644))
	out, err = execute(t, "check", "--document", doc)
	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, out, "DANGLING LINES:")

	ambiguous := strings.Replace(plan, `"position": "Lab"`, `"position": "Hall"`, 1)
	require.NoError(t, os.WriteFile(doc, []byte(ambiguous), 0o644))
	out, err = execute(t, "check", "--document", doc)
	require.NoError(t, err)
	assert.Contains(t, out, "Ambiguous labels")

	out, err = execute(t, "check", "--document", doc, "--strict")
	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, out, `label "Hall" is shared by points 2, 3`)
}

func TestRenderCommand(t *testing.T) {
	doc := writePlan(t)
	target := filepath.Join(t.TempDir(), "plan.png")

	_, err := execute(t, "render", target, "--document", doc, "--from", "Entrance", "--to", "Lab")
	require.NoError(t, err)

	f, err := os.Open(target)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 380, img.Bounds().Dx())
}

func TestImportIntoBadger(t *testing.T) {
	doc := writePlan(t)
	dataDir := filepath.Join(t.TempDir(), "db")

	_, err := execute(t, "import", doc, "--store", "badger", "--data-dir", dataDir)
	require.NoError(t, err)

	out, err := execute(t, "path", "Entrance", "Lab", "--store", "badger", "--data-dir", dataDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Found 3 point(s)")

	_, err = execute(t, "import", filepath.Join(t.TempDir(), "missing.json"), "--store", "badger", "--data-dir", dataDir)
	assert.Error(t, err)
}
