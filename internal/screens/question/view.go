package question

import (
	"fmt"
	"slices"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizdeck/internal/interp"
	"github.com/abhisek/quizdeck/internal/layout"
	"github.com/abhisek/quizdeck/internal/ui/components"
	"github.com/abhisek/quizdeck/internal/ui/draw"
	"github.com/abhisek/quizdeck/internal/ui/theme"
)

// section is one block of the page and the line it starts on.
type section struct {
	name  string
	start int
	lines int
}

func (s *QuestionScreen) View(width, height int) string {
	if s.question == nil {
		if s.loadErr != "" {
			return lipgloss.NewStyle().Padding(1, 2).Render(
				theme.Incorrect.Render(s.loadErr) + "\n\n" + theme.Hint.Render("Press r to retry."))
		}
		return lipgloss.NewStyle().Padding(1, 2).Render(theme.Hint.Render("Loading question..."))
	}

	cardWidth := max(width-2, draw.MinWidth+4)
	var blocks []string
	var sections []section
	line := 0
	add := func(name, block string) {
		h := lipgloss.Height(block)
		sections = append(sections, section{name: name, start: line, lines: h})
		blocks = append(blocks, block)
		line += h
	}

	for i, name := range s.visible {
		add(name, s.viewCard(name, i == len(s.visible)-1, cardWidth))
	}
	if s.finished {
		add(layout.LastView, s.finalSection(cardWidth))
	}
	if extra := s.messages(cardWidth); extra != "" {
		add("", extra)
	}

	page := strings.Split(strings.Join(blocks, "\n"), "\n")
	s.follow(sections, height)
	s.scroll = min(s.scroll, max(len(page)-height, 0))
	end := min(s.scroll+height, len(page))
	return strings.Join(page[s.scroll:end], "\n")
}

// follow moves the scroll window to a section that just gained focus, and
// keeps the estimated line of the focused node inside the window.
func (s *QuestionScreen) follow(sections []section, height int) {
	if s.followView != "" {
		for _, sec := range sections {
			if sec.name == s.followView {
				s.scroll = sec.start
			}
		}
		s.followView = ""
		return
	}

	view := s.viewOf(s.focus)
	if view == "" {
		return
	}
	i := slices.IndexFunc(sections, func(sec section) bool { return sec.name == view })
	if i < 0 {
		return
	}
	focusables := interp.Focusables(s.views[view].tree)
	pos := slices.IndexFunc(focusables, func(n *interp.Node) bool { return n.ID == s.focus })
	if pos < 0 {
		return
	}
	sec := sections[i]
	est := sec.start + 1 + (sec.lines-2)*pos/max(len(focusables), 1)
	switch {
	case est < s.scroll:
		s.scroll = max(est-1, 0)
	case est >= s.scroll+height:
		s.scroll = est - height + 2
	}
}

func (s *QuestionScreen) editorView(id string) (string, bool) {
	if s.editor == nil || s.editor.FieldID != id {
		return "", false
	}
	return theme.Focused.Render(s.editor.View()), true
}

func (s *QuestionScreen) viewCard(name string, last bool, width int) string {
	vs := s.views[name]
	body := draw.Render(vs.tree, draw.Options{Width: width - 4, Editor: s.editorView})

	nextLabel := "Next step"
	if !s.question.Layout.Has(layout.NextView(len(s.visible) + 1)) {
		nextLabel = "Finish"
	}
	buttons := []components.Button{
		components.NewButton("^S", "Submit", true),
		components.NewButton("^R", "Show results", vs.status == statusEvaluated),
	}
	if last && !s.finished {
		buttons = append(buttons, components.NewButton("^N", nextLabel, vs.status == statusShowingResults))
	}

	content := body + "\n\n" + s.statusLine(vs) + "\n" + components.ButtonBar(buttons...)
	style := theme.Card
	if s.viewOf(s.focus) == name {
		style = theme.FocusedCard
	}
	return style.Width(width).Render(content)
}

func (s *QuestionScreen) statusLine(vs *viewState) string {
	switch vs.status {
	case statusEvaluated:
		correct, total := vs.overlay.Score()
		return theme.Notice.Render(fmt.Sprintf("Graded: %d/%d correct. Press ^R to see the answers.", correct, total))
	case statusShowingResults:
		correct, total := vs.overlay.Score()
		return theme.Notice.Render(fmt.Sprintf("Results shown: %d/%d correct.", correct, total))
	}
	return theme.Hint.Render("Not submitted yet.")
}

// finalSection is the read-only last view, or a per-view score summary
// when the layout has none.
func (s *QuestionScreen) finalSection(width int) string {
	if s.lastTree != nil {
		body := draw.Render(s.lastTree, draw.Options{Width: width - 4})
		return theme.Card.Width(width).Render(body)
	}

	var b strings.Builder
	b.WriteString(theme.Title.Render("Final results"))
	b.WriteString("\n\n")
	for _, name := range s.visible {
		vs := s.views[name]
		correct, total := vs.overlay.Score()
		b.WriteString(components.NewScoreBar(name, correct, total, min(width-30, 40)).View())
		b.WriteString("\n")

		var wrong []string
		for id, res := range vs.overlay {
			if !res.Correct {
				wrong = append(wrong, id)
			}
		}
		if len(wrong) > 0 {
			slices.Sort(wrong)
			b.WriteString(theme.Hint.Render("  wrong: " + strings.Join(wrong, ", ")))
			b.WriteString("\n")
		}
	}
	correct, total := s.score()
	b.WriteString("\n")
	b.WriteString(components.NewScoreBar("total", correct, total, min(width-30, 40)).View())
	return theme.Card.Width(width).Render(b.String())
}

func (s *QuestionScreen) messages(width int) string {
	var parts []string
	switch {
	case s.hintPending:
		parts = append(parts, theme.Hint.Render("Asking for a hint on "+s.hintFor+"..."))
	case s.hint != nil:
		text := theme.Body.Render(s.hint.Explanation)
		if s.hint.NextStep != "" {
			text += "\n" + theme.Notice.Render("Next: "+s.hint.NextStep)
		}
		box := theme.Card.Width(width).Render(theme.Subtitle.Render("Hint for "+s.hintFor) + "\n" + text)
		parts = append(parts, box)
	case s.hintErr != "":
		parts = append(parts, theme.Incorrect.Render("Hint failed: "+s.hintErr))
	}
	if s.errMsg != "" {
		parts = append(parts, theme.Incorrect.Render(s.errMsg))
	}
	if s.notice != "" {
		parts = append(parts, theme.Notice.Render(s.notice))
	}
	return strings.Join(parts, "\n")
}
