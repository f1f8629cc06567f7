package draw

import (
	"strings"

	"github.com/abhisek/quizdeck/internal/interp"
	"github.com/abhisek/quizdeck/internal/ui/theme"
)

// field draws a labelled control followed by its feedback mark.
func (d drawer) field(n *interp.Node) string {
	f := n.Field
	var b strings.Builder
	if f.Label != "" && f.Control != interp.ControlCheckbox {
		b.WriteString(theme.Subtitle.Render(f.Label))
		if f.Control == interp.ControlTextArea || f.Control == interp.ControlRadio {
			b.WriteString("\n")
		} else {
			b.WriteString(" ")
		}
	}
	b.WriteString(d.control(n))
	b.WriteString(feedback(f.Feedback))
	return b.String()
}

func (d drawer) control(n *interp.Node) string {
	f := n.Field
	if n.Focused && d.opts.Editor != nil {
		if view, ok := d.opts.Editor(f.ID); ok {
			return view
		}
	}

	style := theme.Unselected
	switch {
	case n.Focused:
		style = theme.Focused
	case f.Struck:
		style = theme.Struck
	}

	switch f.Control {
	case interp.ControlCheckbox:
		box := "[ ]"
		if f.Checked {
			box = "[x]"
		}
		if f.Label != "" {
			box += " " + f.Label
		}
		return style.Render(box)

	case interp.ControlSelect:
		if f.Value == "" {
			placeholder := f.Placeholder
			if placeholder == "" {
				placeholder = "choose"
			}
			return style.Render("‹ ") + theme.Placeholder.Render(placeholder) + style.Render(" ›")
		}
		return style.Render("‹ " + f.Value + " ›")

	case interp.ControlRadio:
		opts := make([]string, len(f.Options))
		for i, o := range f.Options {
			mark := "( ) "
			s := theme.Unselected
			if o == f.Value {
				mark = "(•) "
				s = theme.Selected
			}
			opts[i] = s.Render(mark + o)
		}
		line := strings.Join(opts, "  ")
		if n.Focused {
			return theme.Focused.Render("›") + " " + line
		}
		return "  " + line

	case interp.ControlTextArea:
		value := f.Value
		if value == "" {
			value = theme.Placeholder.Render(orDefault(f.Placeholder, "type an expression"))
		}
		card := theme.Card
		if n.Focused {
			card = theme.FocusedCard
		}
		return card.Render(value)
	}

	value := f.Value
	if value == "" {
		if f.Placeholder != "" {
			return style.Render("[") + theme.Placeholder.Render(f.Placeholder) + style.Render("]")
		}
		value = "   "
	}
	return style.Render("[" + value + "]")
}

func feedback(fb *interp.Feedback) string {
	if fb == nil {
		return ""
	}
	if fb.Correct {
		return " " + theme.Correct.Render("✓")
	}
	out := " " + theme.Incorrect.Render("✗")
	if fb.Expected != "" {
		out += " " + theme.Hint.Render("expected: "+fb.Expected)
	}
	return out
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
