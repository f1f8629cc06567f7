package dendrogram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizdeck/internal/fieldstore"
	"github.com/abhisek/quizdeck/internal/layout"
)

func newEngine(leaves int) (*Engine, *UIState) {
	return New("dendo", leaves, fieldstore.New()), &UIState{}
}

func merge(t *testing.T, e *Engine, ui *UIState, a, b NodeRef) {
	t.Helper()
	require.True(t, e.CreateMerge(ui, a, b), "merge %v %v: %s", a, b, ui.Message)
}

func TestParseRef(t *testing.T) {
	ref, err := ParseRef("L:3")
	require.NoError(t, err)
	assert.Equal(t, Leaf(3), ref)

	ref, err = ParseRef("M:12")
	require.NoError(t, err)
	assert.Equal(t, MergeRef(12), ref)

	for _, bad := range []string{"", "L", "X:1", "L:-1", "M:a"} {
		_, err := ParseRef(bad)
		assert.Error(t, err, bad)
	}
}

func TestCreateMergeWritesKeys(t *testing.T) {
	e, ui := newEngine(4)
	merge(t, e, ui, Leaf(1), Leaf(0))

	assert.Equal(t, "L:0|L:1", e.Store.String("dendo:merge:0:children"))
	assert.True(t, e.Store.Has("dendo:merge_dist:0"))
	assert.Equal(t, "", e.Height(0))

	merge(t, e, ui, Leaf(2), MergeRef(0))
	assert.Equal(t, "L:2|M:0", e.Store.String("dendo:merge:1:children"))
}

func TestCreateMergeKeepsExistingHeight(t *testing.T) {
	e, ui := newEngine(3)
	e.Store.SetString(HeightKey("dendo", 0), "1.5")
	merge(t, e, ui, Leaf(0), Leaf(1))
	assert.Equal(t, "1.5", e.Height(0))
}

func TestCreateMergeValidation(t *testing.T) {
	e, ui := newEngine(3)
	merge(t, e, ui, Leaf(0), Leaf(1))
	before := e.Store.Snapshot()

	assert.False(t, e.CreateMerge(ui, Leaf(2), Leaf(2)))
	assert.Equal(t, MsgSameNode, ui.Message)

	assert.False(t, e.CreateMerge(ui, Leaf(0), Leaf(2)))
	assert.Equal(t, MsgNotRoot, ui.Message)

	assert.False(t, e.CreateMerge(ui, MergeRef(5), Leaf(2)))
	assert.Equal(t, MsgNotRoot, ui.Message)

	assert.Equal(t, before, e.Store.Snapshot(), "failed merges must not write")

	merge(t, e, ui, Leaf(2), MergeRef(0))
	assert.Empty(t, ui.Message)
	assert.True(t, e.Graph().Complete())

	assert.False(t, e.CreateMerge(ui, MergeRef(1), Leaf(0)))
	assert.Equal(t, MsgComplete, ui.Message)
	assert.Len(t, e.Graph().Merges, 2)
}

func TestSelectOrMerge(t *testing.T) {
	e, ui := newEngine(3)

	e.SelectOrMerge(ui, Leaf(0))
	require.NotNil(t, ui.Selected)
	assert.True(t, ui.IsSelected(Leaf(0)))

	e.SelectOrMerge(ui, Leaf(0))
	assert.Nil(t, ui.Selected, "second click deselects")

	e.SelectOrMerge(ui, Leaf(0))
	e.SelectOrMerge(ui, Leaf(2))
	assert.Nil(t, ui.Selected)
	assert.Equal(t, "L:0|L:2", e.Store.String(ChildrenKey("dendo", 0)))

	// Leaf 0 is now a child; clicking it does nothing.
	e.SelectOrMerge(ui, Leaf(0))
	assert.Nil(t, ui.Selected)
	assert.Len(t, e.Graph().Merges, 1)
}

// Leaves {A,B,C,D}: merge0=(A,B), merge1=(C,D), merge2=(merge0,merge1).
func TestRemoveMergeCascadeExample(t *testing.T) {
	e, ui := newEngine(4)
	merge(t, e, ui, Leaf(0), Leaf(1))
	merge(t, e, ui, Leaf(2), Leaf(3))
	merge(t, e, ui, MergeRef(0), MergeRef(1))
	e.SetHeight(0, "1")
	e.SetHeight(1, "2")
	e.SetHeight(2, "3")

	sel := Leaf(0)
	ui.Selected = &sel
	ui.Message = "stale"

	removed := e.RemoveMergeCascade(ui, 0)
	assert.Equal(t, []int{0, 2}, removed)
	assert.Nil(t, ui.Selected)
	assert.Empty(t, ui.Message)

	g := e.Graph()
	require.Len(t, g.Merges, 1)
	assert.Equal(t, Merge{ID: 0, A: Leaf(2), B: Leaf(3)}, g.Merges[0])
	assert.Equal(t, "2", e.Height(0), "height follows the renumbered merge")
	assert.False(t, e.Store.Has(ChildrenKey("dendo", 1)))
	assert.False(t, e.Store.Has(HeightKey("dendo", 1)))
	assert.False(t, e.Store.Has(ChildrenKey("dendo", 2)))
}

func TestRemoveMergeCascadeRewritesReferences(t *testing.T) {
	e, ui := newEngine(5)
	merge(t, e, ui, Leaf(0), Leaf(1))     // 0
	merge(t, e, ui, Leaf(2), Leaf(3))     // 1
	merge(t, e, ui, MergeRef(1), Leaf(4)) // 2
	e.SetHeight(2, "7")

	e.RemoveMergeCascade(ui, 0)

	g := e.Graph()
	require.Len(t, g.Merges, 2)
	assert.Equal(t, Merge{ID: 0, A: Leaf(2), B: Leaf(3)}, g.Merges[0])
	assert.Equal(t, Merge{ID: 1, A: Leaf(4), B: MergeRef(0)}, g.Merges[1])
	assert.Equal(t, "7", e.Height(1))
}

// Survivors below the deleted id keep their numbers; later ones shift
// down by the count of removed ids beneath them.
func TestRemoveMergeCascadeIdStability(t *testing.T) {
	e, ui := newEngine(6)
	merge(t, e, ui, Leaf(0), Leaf(1)) // 0
	merge(t, e, ui, Leaf(2), Leaf(3)) // 1
	merge(t, e, ui, Leaf(4), Leaf(5)) // 2

	e.RemoveMergeCascade(ui, 2)
	g := e.Graph()
	require.Len(t, g.Merges, 2)
	assert.Equal(t, Merge{ID: 0, A: Leaf(0), B: Leaf(1)}, g.Merges[0])
	assert.Equal(t, Merge{ID: 1, A: Leaf(2), B: Leaf(3)}, g.Merges[1])

	merge(t, e, ui, Leaf(4), Leaf(5)) // 2 again
	e.RemoveMergeCascade(ui, 1)
	g = e.Graph()
	require.Len(t, g.Merges, 2)
	assert.Equal(t, Merge{ID: 0, A: Leaf(0), B: Leaf(1)}, g.Merges[0])
	assert.Equal(t, Merge{ID: 1, A: Leaf(4), B: Leaf(5)}, g.Merges[1])
}

func TestRemoveMissingMergeIsNoop(t *testing.T) {
	e, ui := newEngine(3)
	merge(t, e, ui, Leaf(0), Leaf(1))
	assert.Nil(t, e.RemoveMergeCascade(ui, 4))
	assert.Len(t, e.Graph().Merges, 1)
}

func TestClearAll(t *testing.T) {
	e, ui := newEngine(3)
	e.Store.SetString("other", "x")
	merge(t, e, ui, Leaf(0), Leaf(1))
	merge(t, e, ui, MergeRef(0), Leaf(2))

	Reduce(e, ui, ClearAll{})
	assert.Empty(t, e.Graph().Merges)
	assert.Equal(t, 1, e.Store.Len(), "only the builder's keys are removed")
}

func TestReduceDispatch(t *testing.T) {
	e, ui := newEngine(3)
	Reduce(e, ui, Select{Ref: Leaf(1)})
	Reduce(e, ui, Select{Ref: Leaf(2)})
	require.Len(t, e.Graph().Merges, 1)

	Reduce(e, ui, SetHeight{K: 0, Value: "0.5"})
	assert.Equal(t, "0.5", e.Height(0))

	Reduce(e, ui, SetHeight{K: 3, Value: "9"})
	assert.False(t, e.Store.Has(HeightKey("dendo", 3)), "height of a missing merge is ignored")

	Reduce(e, ui, CreateMerge{A: Leaf(1), B: Leaf(0)})
	assert.Equal(t, MsgNotRoot, ui.Message)
	Reduce(e, ui, Dismiss{})
	assert.Empty(t, ui.Message)

	Reduce(e, ui, DeleteMergeCascade{K: 0})
	assert.Empty(t, e.Graph().Merges)
}

func TestRootsAndCompletion(t *testing.T) {
	e, ui := newEngine(1)
	assert.True(t, e.Graph().Complete(), "a single leaf is already complete")
	assert.Equal(t, []NodeRef{Leaf(0)}, e.Graph().Roots())

	e, ui = newEngine(3)
	merge(t, e, ui, Leaf(0), Leaf(2))
	assert.Equal(t, []NodeRef{Leaf(1), MergeRef(0)}, e.Graph().Roots())
	assert.False(t, e.Graph().IsRoot(Leaf(0)))
	assert.False(t, e.Graph().IsRoot(Leaf(3)), "out of range leaf")
}

func TestLoadSkipsMalformedEntries(t *testing.T) {
	s := fieldstore.New()
	s.SetString("dendo:merge:0:children", "L:0|L:1")
	s.SetString("dendo:merge:1:children", "garbage")
	s.SetString("dendo:merge:x:children", "L:2|L:3")
	s.SetString("dendo:merge_dist:0", "1")
	s.SetString("dendox:merge:0:children", "L:2|L:3")

	g := Load(s, "dendo", 4)
	require.Len(t, g.Merges, 1)
	assert.Equal(t, Merge{ID: 0, A: Leaf(0), B: Leaf(1)}, g.Merges[0])
}

func TestLayout(t *testing.T) {
	e, ui := newEngine(3)
	merge(t, e, ui, Leaf(0), Leaf(1))
	merge(t, e, ui, MergeRef(0), Leaf(2))

	geom := DefaultGeometry()
	d := e.Graph().Layout(geom)

	require.Len(t, d.Leaves, 3)
	assert.Equal(t, Point{X: 40, Y: 280}, d.Leaves[0])
	assert.Equal(t, Point{X: 300, Y: 280}, d.Leaves[1])
	assert.Equal(t, Point{X: 560, Y: 280}, d.Leaves[2])

	assert.Equal(t, Point{X: 170, Y: 250}, d.Merges[0])
	assert.Equal(t, Point{X: 365, Y: 220}, d.Merges[1])
	assert.Len(t, d.Segments, 6)
}

func TestLayoutSingleLeafAndLevelsFit(t *testing.T) {
	d := Graph{Leaves: 1}.Layout(DefaultGeometry())
	assert.Equal(t, Point{X: 300, Y: 280}, d.Leaves[0])

	g := Graph{Leaves: 3, Merges: []Merge{
		{ID: 0, A: Leaf(0), B: Leaf(1)},
		{ID: 1, A: MergeRef(0), B: Leaf(2)},
	}}
	geom := DefaultGeometry()
	geom.Height = 100 // baseline 60, first level 30, top 20: only 10 left
	d = g.Layout(geom)
	assert.InDelta(t, 20, d.Merges[1].Y, 1e-9)
}

func TestGeometryOverrides(t *testing.T) {
	g := DefaultGeometry().WithOverrides(layout.Geometry{Width: 800, LevelStep: -1})
	assert.Equal(t, 800.0, g.Width)
	assert.Equal(t, 30.0, g.LevelStep)
	assert.Equal(t, 320.0, g.Height)
}

func TestCursor(t *testing.T) {
	e, ui := newEngine(3)
	merge(t, e, ui, Leaf(0), Leaf(1))
	g := e.Graph()

	ui.MoveCursor(g, -1)
	ref, ok := ui.CursorRef(g)
	require.True(t, ok)
	assert.Equal(t, MergeRef(0), ref)

	ui.MoveCursor(g, 1)
	ref, _ = ui.CursorRef(g)
	assert.Equal(t, Leaf(0), ref)

	ui.Cursor = 10
	ref, _ = ui.CursorRef(g)
	assert.Equal(t, MergeRef(0), ref)
	assert.Equal(t, 3, ui.Cursor)
}
