package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizdeck/internal/ui/theme"
)

// ScoreBar displays a correct/total score as a horizontal bar.
type ScoreBar struct {
	Label   string
	Correct int
	Total   int
	Width   int
}

// NewScoreBar creates a new score bar.
func NewScoreBar(label string, correct, total, width int) ScoreBar {
	return ScoreBar{Label: label, Correct: correct, Total: total, Width: width}
}

// Percent returns the fraction correct, 0 when nothing was graded.
func (p ScoreBar) Percent() float64 {
	if p.Total <= 0 {
		return 0
	}
	return float64(p.Correct) / float64(p.Total)
}

// View renders the score bar.
func (p ScoreBar) View() string {
	var result string

	if p.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}

	score := fmt.Sprintf("  %d/%d", p.Correct, p.Total)
	labelWidth := lipgloss.Width(result)

	barWidth := p.Width - labelWidth - len(score)
	if barWidth < 4 {
		barWidth = 4
	}

	filled := min(max(int(float64(barWidth)*p.Percent()), 0), barWidth)
	empty := barWidth - filled

	fill := theme.Success
	if p.Percent() < 0.5 {
		fill = theme.Error
	}
	result += lipgloss.NewStyle().Background(fill).Render(strings.Repeat(" ", filled)) +
		lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", empty))

	result += lipgloss.NewStyle().Foreground(theme.TextDim).Render(score)
	return result
}
