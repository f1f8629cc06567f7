// Package layout defines the declarative element schema served by the
// question backend and decodes it into a closed set of Go types.
package layout

// Element is one renderable unit of a view. The set of implementations is
// closed; consumers switch over the concrete types.
type Element interface {
	element()
}

// Text is a paragraph of static text.
type Text struct {
	Value string
}

// Table is a static table.
type Table struct {
	Title   string
	Columns []string
	Rows    [][]string
}

// TableRow is one row of a TableInput. Fields[0] is the row label, every
// other entry is the default value of an editable cell.
type TableRow struct {
	ID     string
	Fields []string
}

// TableInput is a table with editable cells addressed by row id.
type TableInput struct {
	Label   string
	Columns []string
	Rows    []TableRow
}

// MatrixInput is a grid of editable cells with per-row and per-column
// strike checkboxes.
type MatrixInput struct {
	ID         string
	CheckboxID string
	Title      string
	Rows       []string
	Cols       []string
	Values     [][]string
}

// StrikeID returns the id namespace of the strike checkboxes.
func (m MatrixInput) StrikeID() string {
	if m.CheckboxID != "" {
		return m.CheckboxID
	}
	return m.ID
}

// MultipleChoice is a radio group.
type MultipleChoice struct {
	ID      string
	Label   string
	Options []string
}

// TextInput is a single-line free text field.
type TextInput struct {
	ID      string
	Label   string
	Default string
}

// DropdownInput is a select field.
type DropdownInput struct {
	ID          string
	Label       string
	Placeholder string
	Options     []string
}

// ExpressionInput is a multi-line field for relational algebra
// expressions.
type ExpressionInput struct {
	ID          string
	Label       string
	Placeholder string
}

// Point is one labelled coordinate.
type Point struct {
	Label string
	X, Y  float64
}

// Series is a named group of points drawn with one marker.
type Series struct {
	Name   string
	Color  string
	Symbol string
	Points []Point
}

// CoordinatePlot is a scatter plot. Variable is set for plots that carry
// an arbitrary list of series (var_coordinates_plot).
type CoordinatePlot struct {
	Title    string
	Variable bool
	Series   []Series
}

// Dropdown is a collapsible container of nested elements.
type Dropdown struct {
	Label    string
	Open     bool
	Children []Element
}

// LayoutTable is a grid of nested elements.
type LayoutTable struct {
	Title string
	Rows  int
	Cols  int
	Cells [][]Element
}

// SchemaGrid shows several static tables side by side.
type SchemaGrid struct {
	Title  string
	Tables []Table
}

// ReactiveTable displays the tabular result of the preview channel for
// the field named by ListenTo.
type ReactiveTable struct {
	ID       string
	Label    string
	ListenTo string
}

// ReactiveTree displays the operator tree of the preview channel result.
type ReactiveTree struct {
	ID       string
	Label    string
	ListenTo string
}

// Geometry overrides for DendrogramBuilder. Zero fields use defaults.
type Geometry struct {
	Width            float64
	Height           float64
	PadX             float64
	BottomPad        float64
	TopPad           float64
	LevelStep        float64
	FirstLevelOffset float64
}

// DendrogramBuilder is the interactive hierarchical clustering builder.
type DendrogramBuilder struct {
	ID       string
	Title    string
	Points   []string
	Geometry Geometry
}

// Unknown stands in for an element whose tag is not recognised or whose
// payload failed to decode.
type Unknown struct {
	Type string
	Err  error
}

func (Text) element()              {}
func (Table) element()             {}
func (TableInput) element()        {}
func (MatrixInput) element()       {}
func (MultipleChoice) element()    {}
func (TextInput) element()         {}
func (DropdownInput) element()     {}
func (ExpressionInput) element()   {}
func (CoordinatePlot) element()    {}
func (Dropdown) element()          {}
func (LayoutTable) element()       {}
func (SchemaGrid) element()        {}
func (ReactiveTable) element()     {}
func (ReactiveTree) element()      {}
func (DendrogramBuilder) element() {}
func (Unknown) element()           {}
