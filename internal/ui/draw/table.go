package draw

import (
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"charm.land/lipgloss/v2/tree"

	"github.com/abhisek/quizdeck/internal/interp"
	"github.com/abhisek/quizdeck/internal/preview"
	"github.com/abhisek/quizdeck/internal/ui/theme"
)

// maxCell caps the width of static cell text.
const maxCell = 24

func newTable() *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.Border)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

// cell draws a table cell: static text is truncated, fields are drawn
// inline.
func (d drawer) cell(n *interp.Node) string {
	if n == nil {
		return ""
	}
	if n.Kind == interp.KindText {
		return truncate(n.Text, maxCell)
	}
	return d.node(n, maxCell)
}

func (d drawer) table(n *interp.Node, width int) string {
	t := newTable()
	if len(n.Columns) > 0 {
		headers := make([]string, len(n.Columns))
		for i, c := range n.Columns {
			headers[i] = truncate(c, maxCell)
		}
		t.Headers(headers...)
	}
	for _, row := range n.Cells {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = d.cell(c)
		}
		t.Row(cells...)
	}
	out := t.Render()
	if lipgloss.Width(out) > width {
		t.Width(width)
		out = t.Render()
	}
	if n.Text != "" {
		out = theme.Title.Render(n.Text) + "\n" + out
	}
	return out
}

// matrix draws column strikes in the header, the row strike at the end of
// each row and struck cells dimmed.
func (d drawer) matrix(n *interp.Node) string {
	m := n.Matrix
	t := newTable()

	headers := make([]string, 0, len(m.Cols)+2)
	headers = append(headers, "")
	for _, c := range m.ColStrikes {
		headers = append(headers, d.node(c, maxCell))
	}
	headers = append(headers, "")
	t.Headers(headers...)

	for r, row := range m.Cells {
		cells := make([]string, 0, len(row)+2)
		label := ""
		if r < len(m.Rows) {
			label = truncate(m.Rows[r], maxCell)
		}
		cells = append(cells, label)
		for _, c := range row {
			cells = append(cells, d.node(c, maxCell))
		}
		strike := ""
		if r < len(m.RowStrikes) {
			strike = d.node(m.RowStrikes[r], maxCell)
		}
		cells = append(cells, strike)
		t.Row(cells...)
	}

	out := t.Render()
	if m.Title != "" {
		out = theme.Title.Render(m.Title) + "\n" + out
	}
	return out
}

func (d drawer) reactiveTable(n *interp.Node, width int) string {
	res := n.Preview
	label := orDefault(n.Text, "Result")
	head := theme.Title.Render(label)
	if body, ok := previewStatus(res); ok {
		return head + "\n" + body
	}
	t := newTable().Headers(res.Columns...)
	for _, row := range res.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = truncate(v, maxCell)
		}
		t.Row(cells...)
	}
	out := t.Render()
	if lipgloss.Width(out) > width {
		t.Width(width)
		out = t.Render()
	}
	return head + "\n" + out
}

func reactiveTree(n *interp.Node) string {
	res := n.Preview
	head := theme.Title.Render(orDefault(n.Text, "Operator tree"))
	if body, ok := previewStatus(res); ok {
		return head + "\n" + body
	}
	if res.Tree == nil {
		return head + "\n" + theme.Hint.Render("no tree")
	}
	t := buildTree(res.Tree).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(lipgloss.NewStyle().Foreground(theme.Border)).
		RootStyle(theme.Selected)
	return head + "\n" + t.String()
}

func buildTree(node *preview.TreeNode) *tree.Tree {
	t := tree.Root(node.Name)
	for _, c := range node.Children {
		if c == nil {
			continue
		}
		if len(c.Children) == 0 {
			t.Child(c.Name)
			continue
		}
		t.Child(buildTree(c))
	}
	return t
}

// previewStatus returns the body for every state but a ready result.
func previewStatus(res *preview.Result) (string, bool) {
	if res == nil {
		return theme.Hint.Render("waiting for input"), true
	}
	switch res.Status {
	case preview.StatusIdle:
		return theme.Hint.Render("type an expression to see a preview"), true
	case preview.StatusLoading:
		if len(res.Columns) == 0 && res.Tree == nil {
			return theme.Hint.Render("evaluating…"), true
		}
	case preview.StatusError:
		return theme.Incorrect.Render(strings.TrimSpace(res.Error)), true
	}
	return "", false
}
