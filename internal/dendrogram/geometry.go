package dendrogram

import "github.com/abhisek/quizdeck/internal/layout"

// Geometry sizes the drawing. Coordinates grow rightwards and downwards;
// leaves sit on the baseline at Height-BottomPad.
type Geometry struct {
	Width            float64
	Height           float64
	PadX             float64
	BottomPad        float64
	TopPad           float64
	LevelStep        float64
	FirstLevelOffset float64
}

// DefaultGeometry is used for every field an element leaves unset.
func DefaultGeometry() Geometry {
	return Geometry{
		Width:            600,
		Height:           320,
		PadX:             40,
		BottomPad:        40,
		TopPad:           20,
		LevelStep:        30,
		FirstLevelOffset: 30,
	}
}

// WithOverrides replaces every positive field of o.
func (g Geometry) WithOverrides(o layout.Geometry) Geometry {
	set := func(dst *float64, v float64) {
		if v > 0 {
			*dst = v
		}
	}
	set(&g.Width, o.Width)
	set(&g.Height, o.Height)
	set(&g.PadX, o.PadX)
	set(&g.BottomPad, o.BottomPad)
	set(&g.TopPad, o.TopPad)
	set(&g.LevelStep, o.LevelStep)
	set(&g.FirstLevelOffset, o.FirstLevelOffset)
	return g
}

// Baseline is the y of the leaves.
func (g Geometry) Baseline() float64 {
	return g.Height - g.BottomPad
}

// Point is a position in drawing coordinates.
type Point struct {
	X, Y float64
}

// Segment is one straight line of an elbow connector.
type Segment struct {
	From, To Point
}

// Drawing is the derived picture of a graph.
type Drawing struct {
	Leaves   []Point
	Merges   map[int]Point
	Segments []Segment
}

// Position returns where ref is drawn.
func (d Drawing) Position(ref NodeRef) (Point, bool) {
	if ref.Kind == KindLeaf {
		if ref.Index < 0 || ref.Index >= len(d.Leaves) {
			return Point{}, false
		}
		return d.Leaves[ref.Index], true
	}
	p, ok := d.Merges[ref.Index]
	return p, ok
}

// Layout places leaves evenly across the padded width on the baseline
// and each merge above the midpoint of its children, one level per merge
// in id order. Levels shrink to fit when they would pass TopPad.
func (g Graph) Layout(geom Geometry) Drawing {
	d := Drawing{Merges: make(map[int]Point, len(g.Merges))}
	base := geom.Baseline()

	span := geom.Width - 2*geom.PadX
	for i := 0; i < g.Leaves; i++ {
		x := geom.Width / 2
		if g.Leaves > 1 {
			x = geom.PadX + span*float64(i)/float64(g.Leaves-1)
		}
		d.Leaves = append(d.Leaves, Point{X: x, Y: base})
	}

	step := geom.LevelStep
	if n := len(g.Merges); n > 1 {
		room := base - geom.FirstLevelOffset - geom.TopPad
		if fit := room / float64(n-1); fit < step && fit > 0 {
			step = fit
		}
	}

	for level, m := range g.Merges {
		a, okA := d.Position(m.A)
		b, okB := d.Position(m.B)
		y := base - geom.FirstLevelOffset - float64(level)*step
		var x float64
		switch {
		case okA && okB:
			x = (a.X + b.X) / 2
		case okA:
			x = a.X
		case okB:
			x = b.X
		default:
			x = geom.Width / 2
		}
		d.Merges[m.ID] = Point{X: x, Y: y}
		if okA {
			d.Segments = append(d.Segments, Segment{From: a, To: Point{X: a.X, Y: y}})
		}
		if okB {
			d.Segments = append(d.Segments, Segment{From: b, To: Point{X: b.X, Y: y}})
		}
		if okA && okB {
			d.Segments = append(d.Segments, Segment{From: Point{X: a.X, Y: y}, To: Point{X: b.X, Y: y}})
		}
	}
	return d
}
