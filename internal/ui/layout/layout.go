package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/abhisek/quizdeck/internal/ui/theme"
)

// The smallest terminal the frame is drawn in. Question views need at
// least the drawer's minimum width plus the frame borders.
const (
	MinWidth  = 60
	MinHeight = 20
)

const brand = "  quizdeck"

// KeyHint represents a key binding hint shown in the footer.
type KeyHint struct {
	Key         string
	Description string
}

// IsTooSmall returns true if the terminal is below minimum size.
func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// RenderMinSizeMessage renders the "terminal too small" message.
func RenderMinSizeMessage(width, height int) string {
	return lipgloss.NewStyle().
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Width(width).
		Height(height).
		Render(fmt.Sprintf(
			"Terminal too small\n\nquizdeck needs at least %d x %d\n\nCurrent: %d x %d",
			MinWidth, MinHeight, width, height,
		))
}

func bar(content string, width int) string {
	return lipgloss.NewStyle().
		Width(width).
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Render(content)
}

// RenderHeader renders the header bar: brand on the left, the screen title
// centered and the screen status on the right. A title that would run into
// the status is truncated.
func RenderHeader(title, status string, width int) string {
	inner := max(width-4, 0)
	left := theme.Title.Render(brand)
	right := lipgloss.NewStyle().Foreground(theme.Accent).Render(status)
	lw, rw := lipgloss.Width(left), lipgloss.Width(right)

	room := max(inner-lw-rw-2, 0)
	title = ansi.Truncate(title, room, "…")
	center := lipgloss.NewStyle().Foreground(theme.Text).Render(title)
	cw := lipgloss.Width(center)

	leftGap := max((inner-cw)/2-lw, 1)
	rightGap := max(inner-lw-leftGap-cw-rw, 1)

	return bar(left+strings.Repeat(" ", leftGap)+center+strings.Repeat(" ", rightGap)+right, width)
}

// RenderFooter renders the key hints, wrapping onto more lines when they
// do not fit the width.
func RenderFooter(hints []KeyHint, width int) string {
	inner := max(width-4, 1)
	var lines []string
	line := ""
	for _, h := range hints {
		part := lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(h.Key) +
			" " +
			lipgloss.NewStyle().Foreground(theme.TextDim).Render(h.Description)
		switch {
		case line == "":
			line = "  " + part
		case lipgloss.Width(line)+3+lipgloss.Width(part) > inner:
			lines = append(lines, line)
			line = "  " + part
		default:
			line += "   " + part
		}
	}
	lines = append(lines, line)
	return bar(strings.Join(lines, "\n"), width)
}

// RenderFrame stacks header, content and footer, padding or clipping the
// content to the height left between them.
func RenderFrame(header, content, footer string, width, height int) string {
	contentHeight := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	body := lipgloss.NewStyle().
		Width(width).
		Height(contentHeight).
		MaxHeight(contentHeight).
		Render(content)
	return header + "\n" + body + "\n" + footer
}
