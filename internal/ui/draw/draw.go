// Package draw turns an interpreter node tree into terminal text.
package draw

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"

	"github.com/abhisek/quizdeck/internal/interp"
	"github.com/abhisek/quizdeck/internal/ui/theme"
)

// MinWidth is the narrowest width the drawer lays out for.
const MinWidth = 40

// Options controls a draw.
type Options struct {
	Width int
	// Editor returns the live editor of the field being edited, if any.
	Editor func(id string) (string, bool)
}

type drawer struct {
	opts Options
}

// Render draws the whole tree.
func Render(root *interp.Node, opts Options) string {
	if opts.Width < MinWidth {
		opts.Width = MinWidth
	}
	d := drawer{opts: opts}
	return d.node(root, opts.Width)
}

func (d drawer) node(n *interp.Node, width int) string {
	if n == nil {
		return ""
	}
	switch n.Kind {
	case interp.KindGroup:
		return d.group(n, width)
	case interp.KindText:
		return theme.Body.Width(width).Render(n.Text)
	case interp.KindNotice:
		return theme.Notice.Render("⚠ " + n.Text)
	case interp.KindField:
		return d.field(n)
	case interp.KindTable:
		return d.table(n, width)
	case interp.KindMatrix:
		return d.matrix(n)
	case interp.KindPlot:
		return plot(n, width)
	case interp.KindDropdown:
		return d.dropdown(n, width)
	case interp.KindGrid:
		return d.grid(n, width)
	case interp.KindSchemaGrid:
		return d.schemaGrid(n, width)
	case interp.KindReactiveTable:
		return d.reactiveTable(n, width)
	case interp.KindReactiveTree:
		return reactiveTree(n)
	case interp.KindDendrogram:
		return d.dendrogram(n, width)
	}
	return theme.Notice.Render(fmt.Sprintf("⚠ cannot draw node kind %d", n.Kind))
}

func (d drawer) group(n *interp.Node, width int) string {
	parts := make([]string, 0, len(n.Children)+1)
	if n.Text != "" {
		parts = append(parts, theme.Title.Width(width).Render(n.Text))
	}
	for _, c := range n.Children {
		parts = append(parts, d.node(c, width))
	}
	return strings.Join(parts, "\n\n")
}

func (d drawer) dropdown(n *interp.Node, width int) string {
	marker := "▸ "
	if n.Open {
		marker = "▾ "
	}
	label := n.Text
	if label == "" {
		label = "Details"
	}
	head := theme.Selected.Render(marker + label)
	if n.Focused {
		head = theme.Focused.Render(marker + label)
	}
	if !n.Open {
		return head
	}
	inner := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		inner = append(inner, d.node(c, width-2))
	}
	body := lipgloss.NewStyle().PaddingLeft(2).Render(strings.Join(inner, "\n\n"))
	return head + "\n" + body
}

func (d drawer) grid(n *interp.Node, width int) string {
	cols := 0
	for _, row := range n.Cells {
		cols = max(cols, len(row))
	}
	if cols == 0 {
		return ""
	}
	cellWidth := max((width-2*(cols-1))/cols, 10)
	rows := make([]string, 0, len(n.Cells)+1)
	if n.Text != "" {
		rows = append(rows, theme.Title.Render(n.Text))
	}
	for _, row := range n.Cells {
		cells := make([]string, 0, len(row)*2)
		for i, c := range row {
			if i > 0 {
				cells = append(cells, "  ")
			}
			cells = append(cells, lipgloss.NewStyle().Width(cellWidth).Render(d.node(c, cellWidth)))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (d drawer) schemaGrid(n *interp.Node, width int) string {
	tables := make([]string, 0, len(n.Children)*2)
	for i, c := range n.Children {
		if i > 0 {
			tables = append(tables, "  ")
		}
		tables = append(tables, d.node(c, width))
	}
	out := lipgloss.JoinHorizontal(lipgloss.Top, tables...)
	if lipgloss.Width(out) > width {
		// Too wide to sit side by side.
		parts := make([]string, 0, len(n.Children))
		for _, c := range n.Children {
			parts = append(parts, d.node(c, width))
		}
		out = strings.Join(parts, "\n")
	}
	if n.Text != "" {
		out = theme.Title.Render(n.Text) + "\n" + out
	}
	return out
}

// truncate shortens s to w display cells.
func truncate(s string, w int) string {
	if w <= 0 {
		return ""
	}
	return runewidth.Truncate(s, w, "…")
}
