package home

import (
	"fmt"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizdeck/internal/ui/theme"
)

const bannerFull = ` ___  _   _ ___ ____  ____  _____ ____ _  __
/ _ \| | | |_ _|_  / |  _ \| ____/ ___| |/ /
| | | | | | || |  / /  | | | |  _|| |   | ' /
| |_| | |_| || | / /_  | |_| | |__| |___| . \
 \__\_\\___/|___/____| |____/|_____\____|_|\_\`

const bannerCompact = "Q · U · I · Z · D · E · C · K"

// contentWidth returns the uniform inner width used for all sections.
func contentWidth(frameWidth int) int {
	// Leave room for cabinet border (2) + inner padding (4)
	return min(max(frameWidth-6, 20), 64)
}

func renderTitle(cw int, compact bool) string {
	art := bannerFull
	if compact {
		art = bannerCompact
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(theme.Title.Render(art))
}

// renderStatsBar shows the practice totals and the settings the next
// question will be generated with.
func renderStatsBar(s summary, difficulty, seed string, cw int) string {
	accent := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	teal := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)

	if seed == "" {
		seed = "random"
	}
	accuracy := dim.Render("no answers yet")
	if s.total > 0 {
		accuracy = accent.Render(fmt.Sprintf("%.0f%% correct", 100*float64(s.correct)/float64(s.total)))
	}
	stats := fmt.Sprintf("%s  %s  %s  %s",
		teal.Render(fmt.Sprintf("%d SUBMITTED", s.submissions)),
		accuracy,
		accent.Render("◆ "+difficulty),
		dim.Render("seed "+seed),
	)

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Secondary).
		Width(cw - 2). // account for border chars
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(stats)
}

func renderMenuBox(menu string, cw int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(cw - 2).
		Padding(0, 1).
		Render(menu)
}

func renderNote(text string, cw int) string {
	return lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Width(cw).
		Align(lipgloss.Center).
		Render(text)
}

// renderCabinetFrame wraps content in a double-border frame, centering it
// within the given dimensions.
func renderCabinetFrame(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(width - 2).   // account for border chars
		Height(height - 2). // account for border chars
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}
