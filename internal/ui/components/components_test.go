package components

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
)

func key(text string) tea.KeyPressMsg {
	r := []rune(text)
	return tea.KeyPressMsg{Code: r[0], Text: text}
}

func TestMenuSkipsDisabled(t *testing.T) {
	picked := ""
	m := NewMenu([]MenuItem{
		{Label: "a", Disabled: true},
		{Label: "b", Action: func() tea.Cmd { picked = "b"; return nil }},
		{Label: "c", Disabled: true},
		{Label: "d", Detail: "the last one", Action: func() tea.Cmd { picked = "d"; return nil }},
	})
	assert.Equal(t, 1, m.Selected)

	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	assert.Equal(t, 3, m.Selected)
	assert.Contains(t, ansi.Strip(m.View()), "▸ d")
	assert.Contains(t, ansi.Strip(m.View()), "the last one")

	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Equal(t, "d", picked)
}

func TestTextInputTransform(t *testing.T) {
	in := NewTextInput("q1", `R \join`, "", 40)
	in.Transform = true

	in, _, changed := in.Update(key(" "))
	assert.True(t, changed)
	assert.Equal(t, "R ⋈{} ", in.Value())
}

func TestTextInputNumericOnly(t *testing.T) {
	in := NewTextInput("h", "1", "", 10)
	in.NumericOnly = true

	in, _, changed := in.Update(key("x"))
	assert.False(t, changed)
	in, _, changed = in.Update(key("."))
	assert.True(t, changed)
	in, _, _ = in.Update(key("5"))
	assert.Equal(t, "1.5", in.Value())
}

func TestScoreBar(t *testing.T) {
	bar := NewScoreBar("view1", 3, 4, 30)
	assert.InDelta(t, 0.75, bar.Percent(), 1e-9)
	assert.Contains(t, ansi.Strip(bar.View()), "3/4")
	assert.Zero(t, NewScoreBar("", 0, 0, 10).Percent())
}

func TestButtonBar(t *testing.T) {
	out := ansi.Strip(ButtonBar(NewButton("^S", "Submit", true), NewButton("^N", "Next", false)))
	assert.Contains(t, out, "^S Submit")
	assert.Contains(t, out, "^N Next")
}
