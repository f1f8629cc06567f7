package draw

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"

	"github.com/abhisek/quizdeck/internal/dendrogram"
	"github.com/abhisek/quizdeck/internal/interp"
	"github.com/abhisek/quizdeck/internal/ui/theme"
)

// canvas is a fixed grid of cells, each holding one rune and its style.
type canvas struct {
	w, h   int
	cells  [][]rune
	styles [][]*lipgloss.Style
}

func newCanvas(w, h int) *canvas {
	c := &canvas{w: w, h: h}
	c.cells = make([][]rune, h)
	c.styles = make([][]*lipgloss.Style, h)
	for y := range c.cells {
		c.cells[y] = []rune(strings.Repeat(" ", w))
		c.styles[y] = make([]*lipgloss.Style, w)
	}
	return c
}

func (c *canvas) set(x, y int, r rune, style *lipgloss.Style) {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return
	}
	c.cells[y][x] = r
	c.styles[y][x] = style
}

func (c *canvas) get(x, y int) rune {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return 0
	}
	return c.cells[y][x]
}

// text writes s starting at x, one cell per display column.
func (c *canvas) text(x, y int, s string, style *lipgloss.Style) {
	for _, r := range s {
		c.set(x, y, r, style)
		x += max(runewidth.RuneWidth(r), 1)
	}
}

func (c *canvas) String() string {
	lines := make([]string, c.h)
	for y := range c.cells {
		var b strings.Builder
		for x, r := range c.cells[y] {
			if s := c.styles[y][x]; s != nil {
				b.WriteString(s.Render(string(r)))
			} else {
				b.WriteRune(r)
			}
		}
		lines[y] = strings.TrimRight(b.String(), " ")
	}
	return strings.Join(lines, "\n")
}

const (
	plotHeight = 14
	plotWidth  = 56
)

var seriesStyles = []lipgloss.Style{
	lipgloss.NewStyle().Foreground(theme.SeriesA).Bold(true),
	lipgloss.NewStyle().Foreground(theme.SeriesB).Bold(true),
	lipgloss.NewStyle().Foreground(theme.Accent).Bold(true),
	lipgloss.NewStyle().Foreground(theme.Error).Bold(true),
}

var seriesMarks = []rune{'●', '▲', '■', '◆'}

var namedColors = map[string]color.Color{
	"blue":  theme.SeriesA,
	"green": theme.SeriesB,
	"amber": theme.Accent,
	"red":   theme.Error,
}

// plot draws a scatter plot on a character grid with axes and a legend.
func plot(n *interp.Node, width int) string {
	p := n.Plot
	w := max(min(plotWidth, width-8), 10)
	c := newCanvas(w, plotHeight)

	minX, maxX, minY, maxY := math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)
	for _, s := range p.Series {
		for _, pt := range s.Points {
			minX, maxX = math.Min(minX, pt.X), math.Max(maxX, pt.X)
			minY, maxY = math.Min(minY, pt.Y), math.Max(maxY, pt.Y)
		}
	}
	if math.IsInf(minX, 1) {
		return theme.Title.Render(orDefault(p.Title, "Plot")) + "\n" + theme.Hint.Render("no points")
	}
	if maxX == minX {
		minX, maxX = minX-1, maxX+1
	}
	if maxY == minY {
		minY, maxY = minY-1, maxY+1
	}
	scaleX := func(v float64) int { return int(math.Round((v - minX) / (maxX - minX) * float64(w-1))) }
	scaleY := func(v float64) int { return plotHeight - 1 - int(math.Round((v-minY)/(maxY-minY)*float64(plotHeight-1))) }

	axis := lipgloss.NewStyle().Foreground(theme.Border)
	for y := 0; y < plotHeight; y++ {
		c.set(0, y, '│', &axis)
	}
	for x := 0; x < w; x++ {
		c.set(x, plotHeight-1, '─', &axis)
	}
	c.set(0, plotHeight-1, '└', &axis)

	legend := make([]string, 0, len(p.Series))
	label := lipgloss.NewStyle().Foreground(theme.TextDim)
	for i, s := range p.Series {
		style := seriesStyles[i%len(seriesStyles)]
		if c, ok := namedColors[s.Color]; ok {
			style = lipgloss.NewStyle().Foreground(c).Bold(true)
		} else if strings.HasPrefix(s.Color, "#") {
			style = lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color)).Bold(true)
		}
		mark := seriesMarks[i%len(seriesMarks)]
		if r := []rune(s.Symbol); len(r) > 0 {
			mark = r[0]
		}
		for _, pt := range s.Points {
			x, y := scaleX(pt.X), scaleY(pt.Y)
			c.set(x, y, mark, &style)
			if pt.Label != "" {
				c.text(x+1, y, pt.Label, &label)
			}
		}
		legend = append(legend, style.Render(string(mark))+" "+s.Name)
	}

	out := c.String()
	axisLabels := theme.Hint.Render(fmt.Sprintf("x %s..%s  y %s..%s",
		num(minX), num(maxX), num(minY), num(maxY)))
	title := theme.Title.Render(orDefault(p.Title, "Plot"))
	return title + "\n" + out + "\n" + strings.Join(legend, "   ") + "   " + axisLabels
}

func num(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}

const dendroRows = 12

// dendrogram draws the merge tree scaled from its geometry onto a
// character grid, followed by the status line and the merge list.
func (d drawer) dendrogram(n *interp.Node, width int) string {
	data := n.Dendrogram
	g := data.Geometry
	w := min(int(g.Width/8), width-2)
	w = max(w, 2*len(data.Labels)+2)
	c := newCanvas(w, dendroRows+1)

	col := func(x float64) int { return int(math.Round(x / g.Width * float64(w-1))) }
	row := func(y float64) int { return int(math.Round(y / g.Height * float64(dendroRows-1))) }

	line := lipgloss.NewStyle().Foreground(theme.Secondary)
	for _, s := range data.Drawing.Segments {
		x1, y1, x2, y2 := col(s.From.X), row(s.From.Y), col(s.To.X), row(s.To.Y)
		if x1 == x2 {
			for y := min(y1, y2); y <= max(y1, y2); y++ {
				if c.get(x1, y) == ' ' {
					c.set(x1, y, '│', &line)
				}
			}
			continue
		}
		for x := min(x1, x2); x <= max(x1, x2); x++ {
			c.set(x, y1, '─', &line)
		}
		c.set(min(x1, x2), y1, '┌', &line)
		c.set(max(x1, x2), y1, '┐', &line)
	}

	roots := map[dendrogram.NodeRef]bool{}
	for _, r := range data.Graph.Roots() {
		roots[r] = true
	}
	nodeStyle := func(ref dendrogram.NodeRef) (*lipgloss.Style, rune) {
		s := theme.Unselected
		mark := '○'
		switch {
		case data.UI.IsSelected(ref):
			s, mark = theme.Selected, '◉'
		case roots[ref]:
			s = lipgloss.NewStyle().Foreground(theme.Text)
		default:
			s, mark = lipgloss.NewStyle().Foreground(theme.TextDim), '•'
		}
		if n.Focused && data.Cursor != nil && *data.Cursor == ref {
			s = theme.Focused
		}
		return &s, mark
	}

	for i, p := range data.Drawing.Leaves {
		ref := dendrogram.Leaf(i)
		s, mark := nodeStyle(ref)
		x, y := col(p.X), row(p.Y)
		c.set(x, y, mark, s)
		if i < len(data.Labels) {
			lbl := truncate(data.Labels[i], max(w/len(data.Labels)-1, 1))
			c.text(x-runewidth.StringWidth(lbl)/2, y+1, lbl, s)
		}
	}
	for _, m := range data.Graph.Merges {
		p, ok := data.Drawing.Merges[m.ID]
		if !ok {
			continue
		}
		ref := dendrogram.MergeRef(m.ID)
		s, mark := nodeStyle(ref)
		c.set(col(p.X), row(p.Y), mark, s)
		c.text(col(p.X)+1, row(p.Y), fmt.Sprintf("%d", m.ID), s)
	}

	var b strings.Builder
	box := theme.Card
	if n.Focused {
		box = theme.FocusedCard
	}
	if data.Title != "" {
		b.WriteString(theme.Title.Render(data.Title) + "\n")
	}
	b.WriteString(box.Render(c.String()))
	b.WriteString("\n")

	merges, need := len(data.Graph.Merges), max(len(data.Labels)-1, 0)
	if data.Complete {
		b.WriteString(theme.Correct.Render(fmt.Sprintf("Complete: %d/%d merges", merges, need)))
	} else {
		b.WriteString(theme.Subtitle.Render(fmt.Sprintf("%d/%d merges", merges, need)))
	}
	if data.UI.Selected != nil {
		b.WriteString(theme.Hint.Render("  selected " + data.UI.Selected.String()))
	}
	if data.UI.Message != "" {
		b.WriteString("\n" + theme.Incorrect.Render(data.UI.Message))
	}

	for _, r := range data.Merges {
		b.WriteString("\n")
		name := fmt.Sprintf("M:%d ", r.K)
		if !r.Present {
			b.WriteString(theme.Hint.Render(name + "not built") + feedback(r.Feedback))
			continue
		}
		b.WriteString(theme.Body.Render(name+"= "+r.Children) + feedback(r.Feedback))
		if r.Height != nil {
			b.WriteString("  " + d.node(r.Height, width))
		}
	}
	return b.String()
}
