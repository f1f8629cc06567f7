// Package home is the question library: pick a question type and the
// difficulty to generate it at.
package home

import (
	"context"
	"math/rand/v2"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizdeck/internal/backend"
	"github.com/abhisek/quizdeck/internal/config"
	"github.com/abhisek/quizdeck/internal/router"
	"github.com/abhisek/quizdeck/internal/screen"
	"github.com/abhisek/quizdeck/internal/screens/history"
	"github.com/abhisek/quizdeck/internal/store"
	"github.com/abhisek/quizdeck/internal/ui/components"
	"github.com/abhisek/quizdeck/internal/ui/layout"
)

// maxSeed bounds the random seed picked when none is pinned.
const maxSeed = 1_000_000

// Starter builds the screen for one question.
type Starter func(kind string, settings backend.Settings) screen.Screen

type summary struct {
	submissions, correct, total int
}

type statsLoadedMsg struct {
	Summary summary
	Err     error
}

// HomeScreen lists the configured question types.
type HomeScreen struct {
	types      []config.QuestionType
	start      Starter
	eventRepo  store.EventRepo
	base       backend.Settings
	difficulty string
	hintsOn    bool
	menu       components.Menu
	stats      summary
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)

// Options tune the home screen.
type Options struct {
	// Base settings sent with every question; a seed here pins it.
	Base backend.Settings
	// HintsEnabled shows that an LLM provider is configured.
	HintsEnabled bool
}

// New creates a home screen. eventRepo may be nil, which disables history.
func New(cfg config.Config, start Starter, eventRepo store.EventRepo, opts Options) *HomeScreen {
	h := &HomeScreen{
		types:      cfg.Types,
		start:      start,
		eventRepo:  eventRepo,
		base:       opts.Base,
		difficulty: cfg.Difficulty,
		hintsOn:    opts.HintsEnabled,
	}
	if d := opts.Base.Difficulty(); d != "" {
		h.difficulty = d
	}
	if h.difficulty == "" {
		h.difficulty = config.Difficulties[1]
	}

	var items []components.MenuItem
	for _, t := range cfg.Types {
		kind := t.ID
		title := t.Title
		if title == "" {
			title = t.ID
		}
		items = append(items, components.MenuItem{
			Label:  strings.ToUpper(title),
			Detail: t.Description,
			Action: func() tea.Cmd { return h.play(kind) },
		})
	}
	items = append(items,
		components.MenuItem{
			Label:    "HISTORY",
			Detail:   "Past submissions and accuracy per type.",
			Disabled: eventRepo == nil,
			Action: func() tea.Cmd {
				return func() tea.Msg {
					return router.PushScreenMsg{Screen: history.New(eventRepo)}
				}
			},
		},
		components.MenuItem{Label: "QUIT", Action: func() tea.Cmd { return tea.Quit }},
	)
	h.menu = components.NewMenu(items)
	return h
}

// Settings returns the settings the next question of the selected
// difficulty is requested with. A missing seed is picked at random.
func (h *HomeScreen) Settings() backend.Settings {
	s := h.base.With("difficulty", h.difficulty)
	if s.Seed() == "" {
		s = s.With("seed", strconv.Itoa(rand.IntN(maxSeed)))
	}
	return s
}

func (h *HomeScreen) play(kind string) tea.Cmd {
	settings := h.Settings()
	return func() tea.Msg {
		return router.PushScreenMsg{Screen: h.start(kind, settings)}
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.loadStats()
}

func (h *HomeScreen) loadStats() tea.Cmd {
	if h.eventRepo == nil {
		return nil
	}
	repo := h.eventRepo
	return func() tea.Msg {
		stats, err := repo.SubmissionStats(context.Background())
		if err != nil {
			return statsLoadedMsg{Err: err}
		}
		var s summary
		for _, ts := range stats {
			s.submissions += ts.Submissions
			s.correct += ts.Correct
			s.total += ts.Total
		}
		return statsLoadedMsg{Summary: s}
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case statsLoadedMsg:
		if msg.Err == nil {
			h.stats = msg.Summary
		}
		return h, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "d", "tab":
			h.difficulty = config.NextDifficulty(h.difficulty)
			return h, nil
		case "r":
			return h, h.loadStats()
		}
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	// height is the content area; estimate full terminal height
	// by adding back header (3) + footer (3) + frame gaps
	compact := height+8 < 34 || width < 100
	cw := contentWidth(width)

	sections := []string{
		renderTitle(cw, compact),
		renderStatsBar(h.stats, h.difficulty, h.base.Seed(), cw),
		renderMenuBox(h.menu.View(), cw),
	}
	if !h.hintsOn {
		sections = append(sections, renderNote("Set QUIZDECK_LLM_PROVIDER to get hints on wrong answers.", cw))
	}

	gap := "\n\n"
	if compact {
		gap = "\n"
	}
	return renderCabinetFrame(strings.Join(sections, gap), width, height)
}

func (h *HomeScreen) Title() string {
	return "Library"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Play"},
		{Key: "d", Description: "Difficulty"},
		{Key: "r", Description: "Refresh stats"},
	}
}
