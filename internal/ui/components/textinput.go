package components

import (
	"strings"
	"unicode/utf8"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizdeck/internal/escapes"
)

// TextInput wraps bubbles/textinput as the inline editor of one field.
// With Transform set, operator escapes are rewritten as the learner types.
type TextInput struct {
	Model       textinput.Model
	FieldID     string
	NumericOnly bool
	Transform   bool
}

// NewTextInput creates a focused editor holding value.
func NewTextInput(fieldID, value, placeholder string, width int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = ""
	ti.SetValue(value)
	ti.CursorEnd()
	if width > 0 {
		ti.SetWidth(width)
	}
	ti.Focus()

	return TextInput{Model: ti, FieldID: fieldID}
}

// Init returns the initial command.
func (t TextInput) Init() tea.Cmd {
	return t.Model.Focus()
}

// Update handles messages. It reports whether the value changed.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd, bool) {
	if t.NumericOnly {
		if kmsg, ok := msg.(tea.KeyMsg); ok {
			key := kmsg.String()
			if len(key) == 1 && !strings.ContainsAny(key, "0123456789.-") {
				return t, nil, false
			}
		}
	}

	before := t.Model.Value()
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)

	if t.Transform {
		v := t.Model.Value()
		if out := escapes.Transform(v, escapes.Options{}); out != v {
			pos := t.Model.Position() + utf8.RuneCountInString(out) - utf8.RuneCountInString(v)
			t.Model.SetValue(out)
			t.Model.SetCursor(pos)
		}
	}
	return t, cmd, t.Model.Value() != before
}

// View renders the text input.
func (t TextInput) View() string {
	return t.Model.View()
}

// Value returns the current input value.
func (t TextInput) Value() string {
	return t.Model.Value()
}
