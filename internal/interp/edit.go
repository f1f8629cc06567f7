package interp

import (
	"github.com/abhisek/quizdeck/internal/escapes"
	"github.com/abhisek/quizdeck/internal/fieldstore"
	"github.com/abhisek/quizdeck/internal/matrix"
)

// ApplyEdit writes raw text typed into a field. Free-text and expression
// controls go through the operator escape transform; matrix cells go
// through the matrix reducer. It returns the stored value.
func ApplyEdit(store *fieldstore.Store, n *Node, raw string, opts escapes.Options) string {
	f := n.Field
	if f == nil || f.ReadOnly {
		return ""
	}
	value := raw
	if f.Transform {
		value = escapes.Transform(raw, opts)
	}
	if f.Cell != nil {
		matrix.Apply(store, matrix.SetCell{ID: f.Cell.MatrixID, R: f.Cell.R, C: f.Cell.C, Value: value})
	} else {
		store.SetString(f.ID, value)
	}
	return value
}

// Toggle flips a checkbox field.
func Toggle(store *fieldstore.Store, n *Node) {
	f := n.Field
	if f == nil || f.ReadOnly || f.Control != ControlCheckbox {
		return
	}
	switch s := f.Strike; {
	case s != nil && s.Row:
		matrix.Apply(store, matrix.ToggleRowStrike{StrikeID: s.StrikeID, R: s.Index})
	case s != nil:
		matrix.Apply(store, matrix.ToggleColStrike{StrikeID: s.StrikeID, C: s.Index})
	default:
		store.SetBool(f.ID, !store.Bool(f.ID))
	}
}

// Cycle moves a select or radio field to the next (delta > 0) or previous
// option. An unset field starts at the first or last option.
func Cycle(store *fieldstore.Store, n *Node, delta int) {
	f := n.Field
	if f == nil || f.ReadOnly || len(f.Options) == 0 {
		return
	}
	if f.Control != ControlSelect && f.Control != ControlRadio {
		return
	}
	idx := -1
	for i, o := range f.Options {
		if o == f.Value {
			idx = i
			break
		}
	}
	switch {
	case idx < 0 && delta >= 0:
		idx = 0
	case idx < 0:
		idx = len(f.Options) - 1
	default:
		idx = ((idx+delta)%len(f.Options) + len(f.Options)) % len(f.Options)
	}
	store.SetString(f.ID, f.Options[idx])
}
