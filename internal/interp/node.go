// Package interp turns a layout view into a tree of renderable nodes,
// wiring field store values and evaluation feedback into every input.
package interp

import (
	"github.com/abhisek/quizdeck/internal/dendrogram"
	"github.com/abhisek/quizdeck/internal/layout"
	"github.com/abhisek/quizdeck/internal/preview"
)

// Kind identifies what a node draws.
type Kind int

const (
	KindGroup Kind = iota
	KindText
	KindNotice
	KindTable
	KindField
	KindMatrix
	KindPlot
	KindDropdown
	KindGrid
	KindSchemaGrid
	KindReactiveTable
	KindReactiveTree
	KindDendrogram
)

// Control is the widget used for a field.
type Control int

const (
	ControlText Control = iota
	ControlTextArea
	ControlSelect
	ControlRadio
	ControlCheckbox
)

// Feedback is the evaluation verdict shown next to a field.
type Feedback struct {
	Correct bool
	// Expected is set only when the expected value should be displayed.
	Expected string
}

// CellRef addresses a matrix cell field.
type CellRef struct {
	MatrixID string
	R, C     int
}

// StrikeRef addresses a matrix strike checkbox.
type StrikeRef struct {
	StrikeID string
	Row      bool
	Index    int
}

// Field is one input bound to a field-id.
type Field struct {
	ID          string
	Label       string
	Control     Control
	Value       string
	Checked     bool
	Options     []string
	Placeholder string
	// Transform marks controls whose edits go through the operator
	// escape transform.
	Transform bool
	ReadOnly  bool
	Struck    bool
	Feedback  *Feedback

	Cell   *CellRef
	Strike *StrikeRef
}

// MatrixData is the rendered matrix grid.
type MatrixData struct {
	Title      string
	Rows, Cols []string
	Cells      [][]*Node
	RowStrikes []*Node
	ColStrikes []*Node
}

// MergeRow is one line of the dendrogram merge list.
type MergeRow struct {
	K        int
	Children string
	Present  bool
	Feedback *Feedback
	Height   *Node
}

// DendrogramData is the rendered builder.
type DendrogramData struct {
	ID       string
	Title    string
	Labels   []string
	Graph    dendrogram.Graph
	Drawing  dendrogram.Drawing
	Geometry dendrogram.Geometry
	UI       dendrogram.UIState
	Cursor   *dendrogram.NodeRef
	Complete bool
	Merges   []MergeRow
	ReadOnly bool
}

// Node is one element of the render tree. Which payload fields are set
// depends on Kind.
type Node struct {
	Kind Kind
	// ID is the focus identity of interactive nodes: the field-id of a
	// field, the builder id of a dendrogram, a path key for dropdowns.
	ID      string
	Text    string
	Focused bool
	Open    bool

	Field      *Field
	Columns    []string
	Cells      [][]*Node
	Matrix     *MatrixData
	Plot       *layout.CoordinatePlot
	Preview    *preview.Result
	Dendrogram *DendrogramData
	Children   []*Node
}

// Walk visits n and its descendants depth-first in render order. Returning
// false from fn skips the node's descendants.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, row := range n.Cells {
		for _, c := range row {
			Walk(c, fn)
		}
	}
	if m := n.Matrix; m != nil {
		for _, c := range m.ColStrikes {
			Walk(c, fn)
		}
		for r, row := range m.Cells {
			for _, c := range row {
				Walk(c, fn)
			}
			if r < len(m.RowStrikes) {
				Walk(m.RowStrikes[r], fn)
			}
		}
	}
	if d := n.Dendrogram; d != nil {
		for _, row := range d.Merges {
			Walk(row.Height, fn)
		}
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}

// Focusables lists the interactive nodes in render order. Children of
// closed dropdowns are skipped.
func Focusables(root *Node) []*Node {
	var out []*Node
	Walk(root, func(n *Node) bool {
		switch n.Kind {
		case KindField:
			if !n.Field.ReadOnly {
				out = append(out, n)
			}
		case KindDendrogram:
			if !n.Dendrogram.ReadOnly {
				out = append(out, n)
			}
		case KindDropdown:
			out = append(out, n)
			return n.Open
		}
		return true
	})
	return out
}

// Find returns the node with the given focus id.
func Find(root *Node, id string) *Node {
	var found *Node
	Walk(root, func(n *Node) bool {
		if found != nil {
			return false
		}
		if n.ID == id && id != "" {
			found = n
			return false
		}
		return true
	})
	return found
}
