package draw

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"

	"github.com/abhisek/quizdeck/internal/dendrogram"
	"github.com/abhisek/quizdeck/internal/fieldstore"
	"github.com/abhisek/quizdeck/internal/interp"
	"github.com/abhisek/quizdeck/internal/layout"
	"github.com/abhisek/quizdeck/internal/preview"
)

func plain(root *interp.Node, width int) string {
	return ansi.Strip(Render(root, Options{Width: width}))
}

func TestRenderFieldsAndFeedback(t *testing.T) {
	root := &interp.Node{Kind: interp.KindGroup, Text: "Question 1", Children: []*interp.Node{
		{Kind: interp.KindText, Text: "Solve it"},
		{Kind: interp.KindField, ID: "a", Field: &interp.Field{ID: "a", Label: "x =", Value: "4",
			Feedback: &interp.Feedback{Correct: true}}},
		{Kind: interp.KindField, ID: "b", Field: &interp.Field{ID: "b", Label: "y =", Value: "2",
			Feedback: &interp.Feedback{Expected: "3"}}},
		{Kind: interp.KindNotice, Text: "Unknown element type: widget"},
	}}
	out := plain(root, 80)

	assert.Contains(t, out, "Question 1")
	assert.Contains(t, out, "Solve it")
	assert.Contains(t, out, "x = [4] ✓")
	assert.Contains(t, out, "y = [2] ✗ expected: 3")
	assert.Contains(t, out, "Unknown element type: widget")
}

func TestRenderControls(t *testing.T) {
	root := &interp.Node{Kind: interp.KindGroup, Children: []*interp.Node{
		{Kind: interp.KindField, Field: &interp.Field{Control: interp.ControlCheckbox, Label: "r1", Checked: true}},
		{Kind: interp.KindField, Field: &interp.Field{Control: interp.ControlSelect, Placeholder: "pick one"}},
		{Kind: interp.KindField, Field: &interp.Field{Control: interp.ControlRadio, Options: []string{"A", "B"}, Value: "B"}},
	}}
	out := plain(root, 80)

	assert.Contains(t, out, "[x] r1")
	assert.Contains(t, out, "‹ pick one ›")
	assert.Contains(t, out, "( ) A")
	assert.Contains(t, out, "(•) B")
}

func TestEditorOverridesFocusedField(t *testing.T) {
	root := &interp.Node{Kind: interp.KindField, ID: "a", Focused: true, Field: &interp.Field{ID: "a", Value: "old"}}
	out := Render(root, Options{Width: 60, Editor: func(id string) (string, bool) {
		return "EDITING " + id, true
	}})
	assert.Contains(t, out, "EDITING a")
	assert.NotContains(t, out, "old")
}

func TestClosedDropdownHidesChildren(t *testing.T) {
	dd := &interp.Node{Kind: interp.KindDropdown, Text: "Hint", Children: []*interp.Node{
		{Kind: interp.KindText, Text: "secret"},
	}}
	assert.Contains(t, plain(dd, 60), "▸ Hint")
	assert.NotContains(t, plain(dd, 60), "secret")

	dd.Open = true
	out := plain(dd, 60)
	assert.Contains(t, out, "▾ Hint")
	assert.Contains(t, out, "secret")
}

func TestTableAndReactive(t *testing.T) {
	tbl := &interp.Node{Kind: interp.KindTable, Text: "Scores", Columns: []string{"name", "score"},
		Cells: [][]*interp.Node{{{Kind: interp.KindText, Text: "ada"}, {Kind: interp.KindText, Text: "9"}}}}
	out := plain(tbl, 80)
	assert.Contains(t, out, "Scores")
	assert.Contains(t, out, "name")
	assert.Contains(t, out, "ada")

	rt := &interp.Node{Kind: interp.KindReactiveTable, Text: "Result", Preview: &preview.Result{
		Status: preview.StatusReady, Columns: []string{"id"}, Rows: [][]string{{"42"}},
	}}
	assert.Contains(t, plain(rt, 80), "42")

	failed := &interp.Node{Kind: interp.KindReactiveTable, Preview: &preview.Result{
		Status: preview.StatusError, Error: "syntax error near FROM",
	}}
	assert.Contains(t, plain(failed, 80), "syntax error near FROM")

	tree := &interp.Node{Kind: interp.KindReactiveTree, Preview: &preview.Result{
		Status: preview.StatusReady,
		Tree:   &preview.TreeNode{Name: "Project", Children: []*preview.TreeNode{{Name: "Scan"}}},
	}}
	out = plain(tree, 80)
	assert.Contains(t, out, "Project")
	assert.Contains(t, out, "Scan")
}

func TestPlot(t *testing.T) {
	n := &interp.Node{Kind: interp.KindPlot, Plot: &layout.CoordinatePlot{
		Title: "Clusters",
		Series: []layout.Series{
			{Name: "blue", Color: "blue", Symbol: "●", Points: []layout.Point{{Label: "p", X: 0, Y: 0}, {X: 4, Y: 2}}},
			{Name: "green", Color: "green", Symbol: "▲", Points: []layout.Point{{X: 2, Y: 1}}},
		},
	}}
	out := plain(n, 80)
	assert.Contains(t, out, "Clusters")
	assert.Equal(t, 2, strings.Count(out, "●")-1, "two blue points plus one legend mark")
	assert.Contains(t, out, "▲ green")
	assert.Contains(t, out, "x 0..4")

	empty := &interp.Node{Kind: interp.KindPlot, Plot: &layout.CoordinatePlot{}}
	assert.Contains(t, plain(empty, 80), "no points")
}

func TestDendrogram(t *testing.T) {
	store := fieldstore.New()
	e := dendrogram.New("d", 3, store)
	ui := &dendrogram.UIState{}
	e.CreateMerge(ui, dendrogram.Leaf(0), dendrogram.Leaf(1))
	store.SetString(dendrogram.HeightKey("d", 0), "1.5")

	l := &layout.Layout{Views: map[string][]layout.Element{
		"view1": {layout.DendrogramBuilder{ID: "d", Title: "Build it", Points: []string{"A", "B", "C"}}},
	}}
	root := interp.Render(l, "view1", interp.Env{Store: store})
	out := plain(root, 100)

	assert.Contains(t, out, "Build it")
	assert.Contains(t, out, "1/2 merges")
	assert.Contains(t, out, "M:0 = L:0|L:1")
	assert.Contains(t, out, "[1.5]")
	assert.Contains(t, out, "M:1 not built")
	for _, label := range []string{"A", "B", "C"} {
		assert.Contains(t, out, label)
	}

	e.CreateMerge(ui, dendrogram.MergeRef(0), dendrogram.Leaf(2))
	root = interp.Render(l, "view1", interp.Env{Store: store})
	assert.Contains(t, plain(root, 100), "Complete: 2/2 merges")
}

func TestNarrowWidthIsClamped(t *testing.T) {
	root := &interp.Node{Kind: interp.KindText, Text: strings.Repeat("word ", 20)}
	out := plain(root, 5)
	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, len([]rune(line)), MinWidth)
	}
}
