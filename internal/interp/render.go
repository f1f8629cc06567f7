package interp

import (
	"fmt"
	"log"
	"strconv"

	"github.com/abhisek/quizdeck/internal/dendrogram"
	"github.com/abhisek/quizdeck/internal/fieldstore"
	"github.com/abhisek/quizdeck/internal/layout"
	"github.com/abhisek/quizdeck/internal/matrix"
	"github.com/abhisek/quizdeck/internal/preview"
)

// Env is everything a render reads besides the layout. Store is required;
// every other field may be left zero.
type Env struct {
	Store   *fieldstore.Store
	Overlay fieldstore.Overlay
	// ShowExpected displays expected values next to wrong answers.
	ShowExpected bool
	// ReadOnly renders every input inert (the finished last view).
	ReadOnly bool
	// Register is called with every field-id the render produces.
	Register func(id string)
	// Preview returns the current result of a reactive listener.
	Preview func(key string) preview.Result
	// Dendrogram returns the UI state of a builder.
	Dendrogram func(id string) *dendrogram.UIState
	// Open reports whether a dropdown is expanded; def is its declared
	// state.
	Open func(key string, def bool) bool
	// Focus is the focus id of the focused node.
	Focus string
}

type renderer struct {
	env  Env
	view string
}

// Render builds the node tree of one view. A missing view renders as an
// empty group. The header, if any, becomes the root's Text. Render never
// writes to the store.
func Render(l *layout.Layout, view string, env Env) *Node {
	r := &renderer{env: env, view: view}
	root := &Node{Kind: KindGroup}
	if l != nil && l.Header != nil {
		root.Text = l.Header.Value
	}
	root.Children = r.elements(l.View(view), "")
	return root
}

func (r *renderer) elements(els []layout.Element, path string) []*Node {
	out := make([]*Node, 0, len(els))
	for i, el := range els {
		out = append(out, r.element(el, joinPath(path, strconv.Itoa(i))))
	}
	return out
}

func joinPath(parent, part string) string {
	if parent == "" {
		return part
	}
	return parent + "/" + part
}

// element dispatches one element. A panic inside a handler is contained
// to a notice node for that element.
func (r *renderer) element(el layout.Element, path string) (n *Node) {
	defer func() {
		if p := recover(); p != nil {
			log.Printf("interp: rendering %T at %s/%s: %v", el, r.view, path, p)
			n = notice(fmt.Sprintf("Could not render %s element", kindName(el)))
		}
	}()

	switch e := el.(type) {
	case layout.Text:
		return &Node{Kind: KindText, Text: e.Value}
	case layout.Table:
		return r.table(e)
	case layout.TableInput:
		return r.tableInput(e)
	case layout.MatrixInput:
		return r.matrix(e)
	case layout.MultipleChoice:
		f := r.input(e.ID, e.Label, ControlRadio, "")
		f.Options = e.Options
		return r.field(f)
	case layout.TextInput:
		return r.field(r.input(e.ID, e.Label, ControlText, e.Default))
	case layout.DropdownInput:
		f := r.input(e.ID, e.Label, ControlSelect, "")
		f.Options = e.Options
		f.Placeholder = e.Placeholder
		return r.field(f)
	case layout.ExpressionInput:
		f := r.input(e.ID, e.Label, ControlTextArea, "")
		f.Placeholder = e.Placeholder
		return r.field(f)
	case layout.CoordinatePlot:
		plot := e
		return &Node{Kind: KindPlot, Text: e.Title, Plot: &plot}
	case layout.Dropdown:
		key := "dropdown:" + r.view + ":" + path
		open := e.Open
		if r.env.Open != nil {
			open = r.env.Open(key, e.Open)
		}
		return &Node{
			Kind:     KindDropdown,
			ID:       key,
			Text:     e.Label,
			Open:     open,
			Focused:  key == r.env.Focus,
			Children: r.elements(e.Children, path),
		}
	case layout.LayoutTable:
		grid := &Node{Kind: KindGrid, Text: e.Title}
		for i, row := range e.Cells {
			grid.Cells = append(grid.Cells, r.elements(row, joinPath(path, strconv.Itoa(i))))
		}
		return grid
	case layout.SchemaGrid:
		sg := &Node{Kind: KindSchemaGrid, Text: e.Title}
		for _, t := range e.Tables {
			sg.Children = append(sg.Children, r.table(t))
		}
		return sg
	case layout.ReactiveTable:
		return r.reactive(KindReactiveTable, e.Label, e.ListenTo)
	case layout.ReactiveTree:
		return r.reactive(KindReactiveTree, e.Label, e.ListenTo)
	case layout.DendrogramBuilder:
		return r.dendrogram(e)
	case layout.Unknown:
		return notice("Unknown element type: " + e.Type)
	}
	return notice(fmt.Sprintf("Unknown element type: %T", el))
}

func notice(text string) *Node {
	return &Node{Kind: KindNotice, Text: text}
}

func kindName(el layout.Element) string {
	if u, ok := el.(layout.Unknown); ok {
		return u.Type
	}
	return fmt.Sprintf("%T", el)
}

func (r *renderer) field(f *Field) *Node {
	return r.focus(&Node{Kind: KindField, ID: f.ID, Field: f})
}

// input is the single path for every evaluated input: it registers the
// id, reads the live value with its default, and attaches feedback.
func (r *renderer) input(id, label string, control Control, def string) *Field {
	if r.env.Register != nil {
		r.env.Register(id)
	}
	f := &Field{
		ID:        id,
		Label:     label,
		Control:   control,
		Value:     r.env.Store.StringOr(id, def),
		Transform: control == ControlText || control == ControlTextArea,
		ReadOnly:  r.env.ReadOnly,
	}
	if control == ControlCheckbox {
		f.Checked = r.env.Store.Bool(id)
	}
	f.Feedback = r.feedback(id)
	return f
}

func (r *renderer) feedback(id string) *Feedback {
	res, ok := r.env.Overlay.Lookup(id)
	if !ok {
		return nil
	}
	fb := &Feedback{Correct: res.Correct}
	if r.env.ShowExpected && !res.Correct && res.HasExpected {
		fb.Expected = res.Expected
	}
	return fb
}

func (r *renderer) focus(n *Node) *Node {
	n.Focused = n.ID != "" && n.ID == r.env.Focus
	return n
}

func (r *renderer) table(t layout.Table) *Node {
	title := t.Title
	if title == "" {
		title = "Table"
	}
	n := &Node{Kind: KindTable, Text: title, Columns: t.Columns}
	for _, row := range t.Rows {
		cells := make([]*Node, len(row))
		for i, v := range row {
			cells[i] = &Node{Kind: KindText, Text: v}
		}
		n.Cells = append(n.Cells, cells)
	}
	return n
}

// tableInput renders field 0 of each row as its label and every other
// field as an input with id {rowId}_{index}.
func (r *renderer) tableInput(t layout.TableInput) *Node {
	n := &Node{Kind: KindTable, Text: t.Label, Columns: t.Columns}
	for _, row := range t.Rows {
		cells := make([]*Node, 0, len(row.Fields))
		for i, def := range row.Fields {
			if i == 0 {
				cells = append(cells, &Node{Kind: KindText, Text: def})
				continue
			}
			id := fmt.Sprintf("%s_%d", row.ID, i)
			cells = append(cells, r.field(r.input(id, "", ControlText, def)))
		}
		n.Cells = append(n.Cells, cells)
	}
	return n
}

func (r *renderer) matrix(m layout.MatrixInput) *Node {
	strikeID := m.StrikeID()
	data := &MatrixData{Title: m.Title, Rows: m.Rows, Cols: m.Cols}

	for c := range m.Cols {
		f := r.input(matrix.ColKey(strikeID, c), m.Cols[c], ControlCheckbox, "")
		f.Strike = &StrikeRef{StrikeID: strikeID, Index: c}
		data.ColStrikes = append(data.ColStrikes, r.field(f))
	}
	for row := range m.Rows {
		cells := make([]*Node, len(m.Cols))
		for c := range m.Cols {
			f := r.input(matrix.CellKey(m.ID, row, c), "", ControlText, matrix.Placeholder(m, row, c))
			f.Transform = false
			f.Struck = matrix.Struck(r.env.Store, strikeID, row, c)
			f.Cell = &CellRef{MatrixID: m.ID, R: row, C: c}
			cells[c] = r.field(f)
		}
		data.Cells = append(data.Cells, cells)

		f := r.input(matrix.RowKey(strikeID, row), m.Rows[row], ControlCheckbox, "")
		f.Strike = &StrikeRef{StrikeID: strikeID, Row: true, Index: row}
		data.RowStrikes = append(data.RowStrikes, r.field(f))
	}
	return &Node{Kind: KindMatrix, Text: m.Title, Matrix: data}
}

func (r *renderer) reactive(kind Kind, label, listenTo string) *Node {
	var res preview.Result
	if r.env.Preview != nil {
		res = r.env.Preview(listenTo)
	}
	return &Node{Kind: kind, Text: label, Preview: &res}
}

// dendrogram renders the builder. Ids are registered for every merge a
// complete tree would have, so feedback on merges the learner has not
// built yet is kept.
func (r *renderer) dendrogram(d layout.DendrogramBuilder) *Node {
	n := len(d.Points)
	g := dendrogram.Load(r.env.Store, d.ID, n)
	geom := dendrogram.DefaultGeometry().WithOverrides(d.Geometry)

	var ui dendrogram.UIState
	if r.env.Dendrogram != nil {
		if st := r.env.Dendrogram(d.ID); st != nil {
			ui = *st
		}
	}
	data := &DendrogramData{
		ID:       d.ID,
		Title:    d.Title,
		Labels:   d.Points,
		Graph:    g,
		Drawing:  g.Layout(geom),
		Geometry: geom,
		UI:       ui,
		Complete: g.Complete(),
		ReadOnly: r.env.ReadOnly,
	}
	if ref, ok := ui.CursorRef(g); ok {
		data.Cursor = &ref
	}

	for k := 0; k < max(n-1, len(g.Merges)); k++ {
		childKey := dendrogram.ChildrenKey(d.ID, k)
		if r.env.Register != nil {
			r.env.Register(childKey)
		}
		row := MergeRow{K: k, Feedback: r.feedback(childKey)}
		if m, ok := g.Find(k); ok {
			row.Present = true
			row.Children = m.Children()
			f := r.input(dendrogram.HeightKey(d.ID, k), fmt.Sprintf("height M:%d", k), ControlText, "")
			f.Transform = false
			row.Height = r.field(f)
		} else if r.env.Register != nil {
			r.env.Register(dendrogram.HeightKey(d.ID, k))
		}
		data.Merges = append(data.Merges, row)
	}

	node := &Node{Kind: KindDendrogram, ID: d.ID, Text: d.Title, Dendrogram: data}
	return r.focus(node)
}
