package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizdeck/internal/screen"
	"github.com/abhisek/quizdeck/internal/store"
	"github.com/abhisek/quizdeck/internal/ui/components"
	"github.com/abhisek/quizdeck/internal/ui/layout"
	"github.com/abhisek/quizdeck/internal/ui/theme"
)

// recentLimit caps how many submissions are listed.
const recentLimit = 50

type historyLoadedMsg struct {
	Stats       []store.TypeStats
	Submissions []store.SubmissionEvent
	Err         error
}

// attempt groups the submissions of one question attempt.
type attempt struct {
	id          string
	kind        string
	difficulty  string
	seed        string
	submissions []store.SubmissionEvent
}

// HistoryScreen displays accuracy per question type and recent attempts.
type HistoryScreen struct {
	eventRepo store.EventRepo
	stats     []store.TypeStats
	attempts  []attempt
	selected  int
	expanded  map[int]bool
	loaded    bool
	errMsg    string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(eventRepo store.EventRepo) *HistoryScreen {
	return &HistoryScreen{
		eventRepo: eventRepo,
		expanded:  make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	repo := s.eventRepo
	return func() tea.Msg {
		ctx := context.Background()

		stats, err := repo.SubmissionStats(ctx)
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		subs, err := repo.RecentSubmissions(ctx, store.QueryOpts{Limit: recentLimit})
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		return historyLoadedMsg{Stats: stats, Submissions: subs}
	}
}

// groupAttempts folds newest-first submissions into attempts, keeping the
// order in which each attempt was last active.
func groupAttempts(subs []store.SubmissionEvent) []attempt {
	var out []attempt
	index := map[string]int{}
	for _, sub := range subs {
		i, ok := index[sub.AttemptID]
		if !ok {
			i = len(out)
			index[sub.AttemptID] = i
			out = append(out, attempt{
				id:         sub.AttemptID,
				kind:       sub.QuestionType,
				difficulty: sub.Difficulty,
				seed:       sub.Seed,
			})
		}
		out[i].submissions = append(out[i].submissions, sub)
	}
	return out
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.stats = msg.Stats
			s.attempts = groupAttempts(msg.Submissions)
		}
		s.loaded = true
		return s, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.attempts)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
			return s, nil
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.attempts) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No submissions yet. Pick a question from the library!")
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.Title.Render("  Accuracy by type"))
	b.WriteString("\n\n")
	barWidth := min(max(width-50, 10), 40)
	for _, ts := range s.stats {
		label := fmt.Sprintf("%-20s", strings.ReplaceAll(ts.QuestionType, "_", " "))
		b.WriteString("  ")
		b.WriteString(components.NewScoreBar(label, ts.Correct, ts.Total, barWidth).View())
		b.WriteString(theme.Hint.Render(fmt.Sprintf("  %d submitted", ts.Submissions)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(theme.Title.Render("  Recent attempts"))
	b.WriteString("\n\n")
	for i, a := range s.attempts {
		latest := a.submissions[0]
		correct, total := 0, 0
		for _, sub := range latestPerView(a.submissions) {
			correct += sub.Correct
			total += sub.Total
		}

		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}
		line := fmt.Sprintf("%s%s  %-20s %-6s seed %-7s %d/%d correct",
			prefix, latest.Timestamp.Format("Jan 02 15:04"),
			strings.ReplaceAll(a.kind, "_", " "), a.difficulty, a.seed, correct, total)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")

		if s.expanded[i] {
			for _, sub := range a.submissions {
				detail := fmt.Sprintf("      %s  %s  %d/%d",
					sub.Timestamp.Format("15:04:05"), sub.View, sub.Correct, sub.Total)
				b.WriteString(theme.Hint.Render(detail))
				b.WriteString("\n")
			}
		}
	}

	lines := strings.Split(b.String(), "\n")
	if len(lines) > height && height > 0 {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

// latestPerView keeps the newest submission of every view.
func latestPerView(subs []store.SubmissionEvent) []store.SubmissionEvent {
	seen := map[string]bool{}
	var out []store.SubmissionEvent
	for _, sub := range subs {
		if seen[sub.View] {
			continue
		}
		seen[sub.View] = true
		out = append(out, sub)
	}
	return out
}
