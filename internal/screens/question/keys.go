package question

import (
	"unicode/utf8"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizdeck/internal/dendrogram"
	"github.com/abhisek/quizdeck/internal/interp"
	"github.com/abhisek/quizdeck/internal/screen"
	"github.com/abhisek/quizdeck/internal/ui/components"
	"github.com/abhisek/quizdeck/internal/ui/layout"
)

const (
	editorWidth = 40
	scrollStep  = 10
)

func (s *QuestionScreen) KeyHints() []layout.KeyHint {
	if s.question == nil {
		if s.loadErr != "" {
			return []layout.KeyHint{{Key: "r", Description: "Retry"}, {Key: "Esc", Description: "Back"}}
		}
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	}
	if s.editor != nil {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Done"},
			{Key: "Tab", Description: "Next field"},
			{Key: "Esc", Description: "Stop editing"},
		}
	}

	hints := []layout.KeyHint{{Key: "Tab", Description: "Next"}}
	if n := s.focused(); n != nil {
		switch n.Kind {
		case interp.KindDendrogram:
			hints = append(hints,
				layout.KeyHint{Key: "←→", Description: "Cursor"},
				layout.KeyHint{Key: "Space", Description: "Select/merge"},
				layout.KeyHint{Key: "d", Description: "Delete merge"},
				layout.KeyHint{Key: "h", Description: "Height"},
				layout.KeyHint{Key: "c", Description: "Clear"},
			)
		case interp.KindDropdown:
			hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Expand"})
		case interp.KindField:
			switch n.Field.Control {
			case interp.ControlSelect, interp.ControlRadio:
				hints = append(hints, layout.KeyHint{Key: "←→", Description: "Choose"})
			case interp.ControlCheckbox:
				hints = append(hints, layout.KeyHint{Key: "Space", Description: "Toggle"})
			default:
				hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Edit"})
			}
		}
	}
	hints = append(hints,
		layout.KeyHint{Key: "^S", Description: "Submit"},
		layout.KeyHint{Key: "^R", Description: "Results"},
		layout.KeyHint{Key: "^N", Description: "Next step"},
	)
	if s.deps.Hints.Enabled() {
		hints = append(hints, layout.KeyHint{Key: "^E", Description: "Explain"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
}

func (s *QuestionScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	if s.question == nil {
		if msg.String() == "r" && s.loadErr != "" {
			s.loadErr = ""
			return s, s.load()
		}
		return s, nil
	}
	if s.editor != nil {
		return s.updateEditor(msg)
	}

	switch msg.String() {
	case "ctrl+s":
		return s, s.submit()
	case "ctrl+r":
		s.showResults()
		return s, nil
	case "ctrl+n":
		s.nextStep()
		return s, nil
	case "ctrl+e":
		return s, s.requestHint()
	case "tab", "down":
		s.moveFocus(1)
		return s, nil
	case "shift+tab", "up":
		s.moveFocus(-1)
		return s, nil
	case "pgdown":
		s.scroll += scrollStep
		s.followView = ""
		return s, nil
	case "pgup":
		s.scroll = max(s.scroll-scrollStep, 0)
		s.followView = ""
		return s, nil
	}

	n := s.focused()
	if n == nil {
		return s, nil
	}
	switch n.Kind {
	case interp.KindDropdown:
		return s.dropdownKey(n, msg)
	case interp.KindDendrogram:
		return s.dendrogramKey(n, msg)
	case interp.KindField:
		return s.fieldKey(n, msg)
	}
	return s, nil
}

func (s *QuestionScreen) dropdownKey(n *interp.Node, msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "enter", "space", "right", "left":
		open := !n.Open
		if k := msg.String(); k == "right" || k == "left" {
			open = k == "right"
		}
		s.open[n.ID] = open
		s.rebuild()
	}
	return s, nil
}

func (s *QuestionScreen) fieldKey(n *interp.Node, msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	f := n.Field
	key := msg.String()

	switch f.Control {
	case interp.ControlCheckbox:
		if key == "space" || key == "enter" {
			interp.Toggle(s.store, n)
			s.rebuild()
		}
		return s, nil

	case interp.ControlSelect, interp.ControlRadio:
		delta := 0
		switch key {
		case "right", "space", "enter":
			delta = 1
		case "left":
			delta = -1
		}
		if delta == 0 {
			return s, nil
		}
		interp.Cycle(s.store, n, delta)
		return s, s.changed(f.ID, s.store.String(f.ID))
	}

	if key == "enter" {
		s.openEditor(n)
		return s, nil
	}
	if utf8.RuneCountInString(msg.Text) == 1 && msg.Mod&^tea.ModShift == 0 {
		s.openEditor(n)
		return s.updateEditor(msg)
	}
	return s, nil
}

func (s *QuestionScreen) openEditor(n *interp.Node) {
	f := n.Field
	ed := components.NewTextInput(f.ID, f.Value, f.Placeholder, editorWidth)
	ed.Transform = f.Transform
	_, ed.NumericOnly = s.heights[f.ID]
	s.editor = &ed
}

func (s *QuestionScreen) closeEditor() {
	s.editor = nil
	s.rebuild()
}

func (s *QuestionScreen) updateEditor(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if key, ok := msg.(tea.KeyPressMsg); ok {
		switch key.String() {
		case "esc", "enter":
			s.closeEditor()
			return s, nil
		case "tab":
			s.closeEditor()
			s.moveFocus(1)
			return s, nil
		case "shift+tab":
			s.closeEditor()
			s.moveFocus(-1)
			return s, nil
		}
	}

	// Cursor blink commands are dropped; the editor draws a steady cursor.
	ed, _, changed := s.editor.Update(msg)
	s.editor = &ed
	if !changed {
		return s, nil
	}
	n := s.find(ed.FieldID)
	if n == nil {
		s.editor = nil
		return s, nil
	}
	return s, s.setField(n, ed.Value())
}

// find looks a focus id up across every visible view.
func (s *QuestionScreen) find(id string) *interp.Node {
	for _, name := range s.visible {
		if n := interp.Find(s.views[name].tree, id); n != nil {
			return n
		}
	}
	return nil
}

func (s *QuestionScreen) dendrogramKey(n *interp.Node, msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	d := n.Dendrogram
	ui := s.dendroState(n.ID)
	e := s.engine(n.ID)

	switch msg.String() {
	case "left":
		ui.MoveCursor(d.Graph, -1)
	case "right":
		ui.MoveCursor(d.Graph, 1)
	case "space", "enter":
		if ref, ok := ui.CursorRef(d.Graph); ok {
			dendrogram.Reduce(e, ui, dendrogram.Select{Ref: ref})
		}
	case "d", "delete", "backspace":
		if ref, ok := ui.CursorRef(d.Graph); ok && ref.Kind == dendrogram.KindMerge {
			dendrogram.Reduce(e, ui, dendrogram.DeleteMergeCascade{K: ref.Index})
		}
	case "c":
		dendrogram.Reduce(e, ui, dendrogram.ClearAll{})
	case "h":
		ref, ok := ui.CursorRef(d.Graph)
		if !ok || ref.Kind != dendrogram.KindMerge {
			ui.Message = "Move the cursor onto a merge to set its height."
			break
		}
		id := dendrogram.HeightKey(n.ID, ref.Index)
		s.rebuild()
		if s.find(id) != nil {
			s.setFocus(id)
			s.openEditor(s.find(id))
		}
		return s, nil
	case "esc":
		dendrogram.Reduce(e, ui, dendrogram.Dismiss{})
		ui.Selected = nil
	default:
		return s, nil
	}
	s.rebuild()
	return s, nil
}
