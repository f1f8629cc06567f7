package layout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
)

// Kind is the normalised element tag.
type Kind string

const (
	KindText              Kind = "text"
	KindTable             Kind = "table"
	KindTableInput        Kind = "tableinput"
	KindMatrixInput       Kind = "matrixinput"
	KindMultipleChoice    Kind = "multiplechoice"
	KindTextInput         Kind = "textinput"
	KindDropdownInput     Kind = "dropdowninput"
	KindExpressionInput   Kind = "expressioninput"
	KindCoordinatePlot    Kind = "coordinateplot"
	KindVarCoordinatePlot Kind = "varcoordinateplot"
	KindDropdown          Kind = "dropdown"
	KindLayoutTable       Kind = "layouttable"
	KindSchemaGrid        Kind = "schemagrid"
	KindReactiveTable     Kind = "reactivetable"
	KindReactiveTree      Kind = "reactivetree"
	KindDendrogramBuilder Kind = "dendrogrambuilder"
)

// aliases covers spellings the generators use besides the canonical
// PascalCase/snake_case pair.
var aliases = map[string]Kind{
	"coordinatesplot":    KindCoordinatePlot,
	"varcoordinatesplot": KindVarCoordinatePlot,
}

var known = map[Kind]bool{
	KindText: true, KindTable: true, KindTableInput: true, KindMatrixInput: true,
	KindMultipleChoice: true, KindTextInput: true, KindDropdownInput: true,
	KindExpressionInput: true, KindCoordinatePlot: true, KindVarCoordinatePlot: true,
	KindDropdown: true, KindLayoutTable: true, KindSchemaGrid: true,
	KindReactiveTable: true, KindReactiveTree: true, KindDendrogramBuilder: true,
}

// NormalizeKind folds a type tag: case-insensitive, underscores and
// dashes ignored. The second result is false for unrecognised tags.
func NormalizeKind(tag string) (Kind, bool) {
	folded := strings.ToLower(tag)
	folded = strings.NewReplacer("_", "", "-", "", " ", "").Replace(folded)
	if k, ok := aliases[folded]; ok {
		return k, true
	}
	k := Kind(folded)
	return k, known[k]
}

// flexString accepts any JSON scalar, or an array of scalars joined by a
// space (matrix labels arrive as single-element lists).
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || string(data) == "null":
		*f = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
	case data[0] == '[':
		var parts []flexString
		if err := json.Unmarshal(data, &parts); err != nil {
			return err
		}
		strs := make([]string, len(parts))
		for i, p := range parts {
			strs[i] = string(p)
		}
		*f = flexString(strings.Join(strs, " "))
	case data[0] == '{':
		return fmt.Errorf("expected scalar, got object")
	default:
		*f = flexString(data)
	}
	return nil
}

func strs(in []flexString) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = string(s)
	}
	return out
}

func grid(in [][]flexString) [][]string {
	out := make([][]string, len(in))
	for i, row := range in {
		out[i] = strs(row)
	}
	return out
}

func firstNonEmpty(vals ...flexString) string {
	for _, v := range vals {
		if v != "" {
			return string(v)
		}
	}
	return ""
}

type rawElement struct {
	Type        string              `json:"type"`
	ID          flexString          `json:"id"`
	Value       flexString          `json:"value"`
	Content     flexString          `json:"content"`
	Title       flexString          `json:"title"`
	Label       flexString          `json:"label"`
	Placeholder flexString          `json:"placeholder"`
	Default     flexString          `json:"default"`
	ListenTo    flexString          `json:"listenTo"`
	CheckboxID  flexString          `json:"checkboxId"`
	Open        bool                `json:"open"`
	Columns     []flexString        `json:"columns"`
	Options     []flexString        `json:"options"`
	Rows        json.RawMessage     `json:"rows"`
	Cols        json.RawMessage     `json:"cols"`
	Values      [][]flexString      `json:"values"`
	Cells       [][]json.RawMessage `json:"cells"`
	Children    []json.RawMessage   `json:"children"`
	Elements    []json.RawMessage   `json:"elements"`
	Tables      []json.RawMessage   `json:"tables"`
	Points      json.RawMessage     `json:"points"`
	PointsBlue  json.RawMessage     `json:"points_blue"`
	PointsGreen json.RawMessage     `json:"points_green"`
	Series      []rawSeries         `json:"series"`

	Width            float64 `json:"width"`
	Height           float64 `json:"height"`
	PadX             float64 `json:"padX"`
	BottomPad        float64 `json:"bottomPad"`
	TopPad           float64 `json:"topPad"`
	LevelStep        float64 `json:"levelStep"`
	FirstLevelOffset float64 `json:"firstLevelOffset"`
}

type rawSeries struct {
	Name   string          `json:"name"`
	Color  string          `json:"color"`
	Symbol string          `json:"symbol"`
	Points json.RawMessage `json:"points"`
}

type rawTableRow struct {
	ID     flexString   `json:"id"`
	Fields []flexString `json:"fields"`
}

// DecodeElement decodes one element. It never fails: unrecognised tags
// and malformed payloads come back as Unknown so the damage stays local.
func DecodeElement(data []byte) Element {
	var raw rawElement
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Printf("layout: undecodable element: %v", err)
		return Unknown{Type: peekType(data), Err: err}
	}
	kind, ok := NormalizeKind(raw.Type)
	if !ok {
		log.Printf("layout: unknown element type %q", raw.Type)
		return Unknown{Type: raw.Type}
	}
	el, err := build(kind, &raw)
	if err != nil {
		log.Printf("layout: malformed %s element: %v", raw.Type, err)
		return Unknown{Type: raw.Type, Err: err}
	}
	return el
}

func peekType(data []byte) string {
	var probe struct {
		Type any `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil || probe.Type == nil {
		return ""
	}
	return fmt.Sprint(probe.Type)
}

func build(kind Kind, raw *rawElement) (Element, error) {
	switch kind {
	case KindText:
		return Text{Value: firstNonEmpty(raw.Value, raw.Content)}, nil

	case KindTable:
		rows, err := decodeGrid(raw.Rows)
		if err != nil {
			return nil, fmt.Errorf("rows: %w", err)
		}
		return Table{
			Title:   firstNonEmpty(raw.Title, raw.Label),
			Columns: strs(raw.Columns),
			Rows:    rows,
		}, nil

	case KindTableInput:
		var rows []rawTableRow
		if len(raw.Rows) > 0 {
			if err := json.Unmarshal(raw.Rows, &rows); err != nil {
				return nil, fmt.Errorf("rows: %w", err)
			}
		}
		ti := TableInput{Label: firstNonEmpty(raw.Label, raw.Title), Columns: strs(raw.Columns)}
		for _, r := range rows {
			ti.Rows = append(ti.Rows, TableRow{ID: string(r.ID), Fields: strs(r.Fields)})
		}
		return ti, nil

	case KindMatrixInput:
		rows, err := decodeLabels(raw.Rows)
		if err != nil {
			return nil, fmt.Errorf("rows: %w", err)
		}
		cols, err := decodeLabels(raw.Cols)
		if err != nil {
			return nil, fmt.Errorf("cols: %w", err)
		}
		return MatrixInput{
			ID:         string(raw.ID),
			CheckboxID: string(raw.CheckboxID),
			Title:      firstNonEmpty(raw.Title, raw.Label),
			Rows:       rows,
			Cols:       cols,
			Values:     grid(raw.Values),
		}, nil

	case KindMultipleChoice:
		return MultipleChoice{ID: string(raw.ID), Label: string(raw.Label), Options: strs(raw.Options)}, nil

	case KindTextInput:
		return TextInput{ID: string(raw.ID), Label: string(raw.Label), Default: firstNonEmpty(raw.Default, raw.Value)}, nil

	case KindDropdownInput:
		return DropdownInput{
			ID:          string(raw.ID),
			Label:       string(raw.Label),
			Placeholder: string(raw.Placeholder),
			Options:     strs(raw.Options),
		}, nil

	case KindExpressionInput:
		return ExpressionInput{ID: string(raw.ID), Label: string(raw.Label), Placeholder: string(raw.Placeholder)}, nil

	case KindCoordinatePlot, KindVarCoordinatePlot:
		return buildPlot(kind, raw), nil

	case KindDropdown:
		children := raw.Children
		if len(children) == 0 {
			children = raw.Elements
		}
		return Dropdown{
			Label:    firstNonEmpty(raw.Label, raw.Title),
			Open:     raw.Open,
			Children: DecodeElements(children),
		}, nil

	case KindLayoutTable:
		lt := LayoutTable{Title: string(raw.Title)}
		for _, row := range raw.Cells {
			lt.Cells = append(lt.Cells, DecodeElements(row))
		}
		lt.Rows, lt.Cols = dims(raw.Rows, raw.Cols, lt.Cells)
		return lt, nil

	case KindSchemaGrid:
		sg := SchemaGrid{Title: string(raw.Title)}
		for _, t := range raw.Tables {
			if tbl, ok := DecodeElement(t).(Table); ok {
				sg.Tables = append(sg.Tables, tbl)
				continue
			}
			// Tables may omit their type tag inside a schema grid.
			var tr rawElement
			if err := json.Unmarshal(t, &tr); err != nil {
				return nil, fmt.Errorf("tables: %w", err)
			}
			rows, err := decodeGrid(tr.Rows)
			if err != nil {
				return nil, fmt.Errorf("tables: %w", err)
			}
			sg.Tables = append(sg.Tables, Table{
				Title:   firstNonEmpty(tr.Title, tr.Label),
				Columns: strs(tr.Columns),
				Rows:    rows,
			})
		}
		return sg, nil

	case KindReactiveTable:
		return ReactiveTable{ID: string(raw.ID), Label: string(raw.Label), ListenTo: string(raw.ListenTo)}, nil

	case KindReactiveTree:
		return ReactiveTree{ID: string(raw.ID), Label: string(raw.Label), ListenTo: string(raw.ListenTo)}, nil

	case KindDendrogramBuilder:
		var points []flexString
		if len(raw.Points) > 0 {
			if err := json.Unmarshal(raw.Points, &points); err != nil {
				return nil, fmt.Errorf("points: %w", err)
			}
		}
		return DendrogramBuilder{
			ID:     string(raw.ID),
			Title:  firstNonEmpty(raw.Title, raw.Label),
			Points: strs(points),
			Geometry: Geometry{
				Width:            raw.Width,
				Height:           raw.Height,
				PadX:             raw.PadX,
				BottomPad:        raw.BottomPad,
				TopPad:           raw.TopPad,
				LevelStep:        raw.LevelStep,
				FirstLevelOffset: raw.FirstLevelOffset,
			},
		}, nil
	}
	return nil, fmt.Errorf("no decoder for %s", kind)
}

// DecodeElements decodes a sequence, keeping Unknown placeholders in place.
func DecodeElements(raws []json.RawMessage) []Element {
	out := make([]Element, 0, len(raws))
	for _, r := range raws {
		out = append(out, DecodeElement(r))
	}
	return out
}

func decodeGrid(data json.RawMessage) ([][]string, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var rows [][]flexString
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	return grid(rows), nil
}

func decodeLabels(data json.RawMessage) ([]string, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var labels []flexString
	if err := json.Unmarshal(data, &labels); err != nil {
		return nil, err
	}
	return strs(labels), nil
}

// dims prefers the declared row/column counts and falls back to the
// shape of the cell grid.
func dims(rowsRaw, colsRaw json.RawMessage, cells [][]Element) (int, int) {
	rows, cols := len(cells), 0
	for _, r := range cells {
		if len(r) > cols {
			cols = len(r)
		}
	}
	if n, err := strconv.Atoi(strings.TrimSpace(string(rowsRaw))); err == nil && n > 0 {
		rows = n
	}
	if n, err := strconv.Atoi(strings.TrimSpace(string(colsRaw))); err == nil && n > 0 {
		cols = n
	}
	return rows, cols
}

func buildPlot(kind Kind, raw *rawElement) CoordinatePlot {
	plot := CoordinatePlot{Title: firstNonEmpty(raw.Title, raw.Label), Variable: kind == KindVarCoordinatePlot}
	if plot.Variable {
		for i, s := range raw.Series {
			name := s.Name
			if name == "" {
				name = fmt.Sprintf("series %d", i+1)
			}
			plot.Series = append(plot.Series, Series{
				Name:   name,
				Color:  s.Color,
				Symbol: s.Symbol,
				Points: decodePoints(s.Points),
			})
		}
		return plot
	}
	if len(raw.Points) > 0 {
		plot.Series = append(plot.Series, Series{Name: "points", Color: "blue", Symbol: "●", Points: decodePoints(raw.Points)})
	}
	if len(raw.PointsBlue) > 0 {
		plot.Series = append(plot.Series, Series{Name: "blue", Color: "blue", Symbol: "●", Points: decodePoints(raw.PointsBlue)})
	}
	if len(raw.PointsGreen) > 0 {
		plot.Series = append(plot.Series, Series{Name: "green", Color: "green", Symbol: "▲", Points: decodePoints(raw.PointsGreen)})
	}
	return plot
}

// decodePoints accepts [label, x, y] triples and {label, x, y} objects.
// Malformed entries are dropped.
func decodePoints(data json.RawMessage) []Point {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		log.Printf("layout: points is not a list: %v", err)
		return nil
	}
	points := make([]Point, 0, len(items))
	for i, item := range items {
		p, err := decodePoint(item)
		if err != nil {
			log.Printf("layout: dropping point %d: %v", i, err)
			continue
		}
		points = append(points, p)
	}
	return points
}

func decodePoint(data json.RawMessage) (Point, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Point{}, fmt.Errorf("empty")
	}
	switch data[0] {
	case '[':
		var parts []json.RawMessage
		if err := json.Unmarshal(data, &parts); err != nil {
			return Point{}, err
		}
		if len(parts) < 3 {
			return Point{}, fmt.Errorf("want [label, x, y], got %d items", len(parts))
		}
		return pointFrom(parts[0], parts[1], parts[2])
	case '{':
		var obj struct {
			Label json.RawMessage `json:"label"`
			Name  json.RawMessage `json:"name"`
			X     json.RawMessage `json:"x"`
			Y     json.RawMessage `json:"y"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return Point{}, err
		}
		label := obj.Label
		if len(label) == 0 {
			label = obj.Name
		}
		return pointFrom(label, obj.X, obj.Y)
	}
	return Point{}, fmt.Errorf("unexpected point %s", data)
}

func pointFrom(label, x, y json.RawMessage) (Point, error) {
	var l flexString
	if len(label) > 0 {
		if err := json.Unmarshal(label, &l); err != nil {
			return Point{}, fmt.Errorf("label: %w", err)
		}
	}
	px, err := coord(x)
	if err != nil {
		return Point{}, fmt.Errorf("x: %w", err)
	}
	py, err := coord(y)
	if err != nil {
		return Point{}, fmt.Errorf("y: %w", err)
	}
	return Point{Label: string(l), X: px, Y: py}, nil
}

// coord parses a number that may arrive quoted.
func coord(data json.RawMessage) (float64, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("missing")
	}
	var f flexString
	if err := json.Unmarshal(data, &f); err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(string(f)), 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", string(f))
	}
	return v, nil
}
