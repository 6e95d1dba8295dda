package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritzau/annotator/pkg/model"
)

// sequentialIDs returns a generator yielding id-1, id-2, ...
func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func pointIDs(snap model.Snapshot) []string {
	ids := make([]string, 0, len(snap.Points))
	for _, p := range snap.Points {
		ids = append(ids, p.ID)
	}
	return ids
}

func newSession(t *testing.T) *Session {
	t.Helper()
	s := New(model.NewSnapshot())
	s.SetIDGenerator(sequentialIDs())
	return s
}

func TestPlaceLabelConnect(t *testing.T) {
	s := newSession(t)

	a := s.AddPoint(10, 20, "door")
	b := s.AddPoint(30, 40, "")
	assert.Equal(t, "id-1", a.ID)
	assert.Equal(t, "door", a.Kind)

	labeled, err := s.SetLabel(a.ID, "A")
	require.NoError(t, err)
	assert.Equal(t, "A", labeled.Label)

	e, err := s.Connect(a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Edge{ID: "id-3", FromID: "id-1", ToID: "id-2"}, e)

	snap := s.Snapshot()
	require.Len(t, snap.Points, 2)
	require.Len(t, snap.Edges, 1)
	assert.Equal(t, "A", snap.Points[0].Label)
	assert.Equal(t, 4, s.Version())
}

func TestConnectRejectsBadEndpoints(t *testing.T) {
	s := newSession(t)
	a := s.AddPoint(0, 0, "")

	_, err := s.Connect(a.ID, a.ID)
	assert.ErrorIs(t, err, ErrSelfLoop)

	_, err = s.Connect(a.ID, "ghost")
	assert.ErrorIs(t, err, ErrUnknownPoint)

	assert.Empty(t, s.Snapshot().Edges)
	assert.Equal(t, 1, s.Version(), "failed mutations do not bump the version")
}

func TestDeletePointCascades(t *testing.T) {
	s := newSession(t)
	a := s.AddPoint(0, 0, "")
	b := s.AddPoint(1, 0, "")
	c := s.AddPoint(2, 0, "")
	_, _ = s.Connect(a.ID, b.ID)
	bc, _ := s.Connect(b.ID, c.ID)
	_, _ = s.Connect(c.ID, a.ID)

	require.NoError(t, s.DeletePoint(a.ID))

	snap := s.Snapshot()
	assert.Equal(t, []string{b.ID, c.ID}, pointIDs(snap))
	require.Len(t, snap.Edges, 1)
	assert.Equal(t, bc.ID, snap.Edges[0].ID)

	assert.ErrorIs(t, s.DeletePoint(a.ID), ErrUnknownPoint)
}

func TestDeleteEdgeAndMove(t *testing.T) {
	s := newSession(t)
	a := s.AddPoint(0, 0, "")
	b := s.AddPoint(1, 0, "")
	e, _ := s.Connect(a.ID, b.ID)

	require.NoError(t, s.DeleteEdge(e.ID))
	assert.Empty(t, s.Snapshot().Edges)
	assert.ErrorIs(t, s.DeleteEdge(e.ID), ErrUnknownEdge)

	moved, err := s.MovePoint(b.ID, 5, 6)
	require.NoError(t, err)
	assert.Equal(t, 5.0, moved.X)
	assert.Equal(t, 6.0, moved.Y)

	_, err = s.MovePoint("ghost", 0, 0)
	assert.ErrorIs(t, err, ErrUnknownPoint)
	_, err = s.SetLabel("ghost", "X")
	assert.ErrorIs(t, err, ErrUnknownPoint)
}

func TestUndo(t *testing.T) {
	s := newSession(t)
	a := s.AddPoint(0, 0, "")
	b := s.AddPoint(1, 0, "")
	_, _ = s.Connect(a.ID, b.ID)
	require.NoError(t, s.DeletePoint(a.ID))

	action, err := s.Undo()
	require.NoError(t, err)
	assert.Equal(t, ActionDeletePoint, action)
	snap := s.Snapshot()
	assert.Len(t, snap.Points, 2)
	assert.Len(t, snap.Edges, 1, "undoing a delete restores its lines")

	for k := 0; k < 3; k++ {
		_, err = s.Undo()
		require.NoError(t, err)
	}
	assert.True(t, s.Snapshot().IsEmpty())

	_, err = s.Undo()
	assert.ErrorIs(t, err, ErrNothingToUndo)
	assert.False(t, s.CanUndo())
}

func TestUndoDepth(t *testing.T) {
	s := newSession(t)
	s.SetUndoDepth(2)

	for i := 0; i < 5; i++ {
		s.AddPoint(float64(i), 0, "")
	}

	_, err := s.Undo()
	require.NoError(t, err)
	_, err = s.Undo()
	require.NoError(t, err)
	_, err = s.Undo()
	assert.ErrorIs(t, err, ErrNothingToUndo)
	assert.Len(t, s.Snapshot().Points, 3)
}

func TestImportClearAndReload(t *testing.T) {
	s := newSession(t)
	s.AddPoint(0, 0, "")

	imported := model.Snapshot{
		Points: []model.Point{{ID: "x", Label: "X"}, {ID: "y", Label: "Y"}},
		Edges:  []model.Edge{{ID: "xy", FromID: "x", ToID: "y"}},
	}
	s.Import(imported)
	assert.Equal(t, []string{"x", "y"}, pointIDs(s.Snapshot()))

	s.Clear()
	assert.True(t, s.Snapshot().IsEmpty())

	_, err := s.Undo()
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, pointIDs(s.Snapshot()))

	s.Reload(model.NewSnapshot())
	assert.True(t, s.Snapshot().IsEmpty())
	assert.False(t, s.CanUndo(), "reload drops history")
}

func TestSnapshotDoesNotAlias(t *testing.T) {
	s := newSession(t)
	a := s.AddPoint(0, 0, "")

	snap := s.Snapshot()
	snap.Points[0].Label = "changed"
	snap.Points = append(snap.Points, model.Point{ID: "extra"})

	got := s.Snapshot()
	assert.Len(t, got.Points, 1)
	assert.Equal(t, a, got.Points[0])

	input := model.Snapshot{Points: []model.Point{{ID: "p"}}}
	s.Import(input)
	input.Points[0].ID = "mutated"
	assert.Equal(t, []string{"p"}, pointIDs(s.Snapshot()))
}

func TestListeners(t *testing.T) {
	s := newSession(t)

	var changes []Change
	s.OnChange(func(c Change) {
		changes = append(changes, c)
		// Listeners may read the session
		_ = s.Snapshot()
	})

	a := s.AddPoint(0, 0, "")
	_, _ = s.SetLabel(a.ID, "A")
	_, _ = s.SetLabel("ghost", "B")
	_, _ = s.Undo()

	require.Len(t, changes, 3)
	assert.Equal(t, ActionAddPoint, changes[0].Action)
	assert.Equal(t, ActionLabelPoint, changes[1].Action)
	assert.Equal(t, "A", changes[1].Snapshot.Points[0].Label)
	assert.Equal(t, ActionUndo, changes[2].Action)
	assert.Equal(t, "", changes[2].Snapshot.Points[0].Label)
	assert.Equal(t, []int{1, 2, 3}, []int{changes[0].Version, changes[1].Version, changes[2].Version})
}

func TestConcurrentEdits(t *testing.T) {
	s := New(model.NewSnapshot())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				p := s.AddPoint(float64(i), float64(j), "")
				_, _ = s.SetLabel(p.ID, fmt.Sprintf("%d-%d", i, j))
				_ = s.Snapshot()
			}
		}()
	}
	wg.Wait()

	snap := s.Snapshot()
	assert.Len(t, snap.Points, 200)
	assert.NoError(t, snap.Validate())
	assert.Equal(t, 400, s.Version())
}
