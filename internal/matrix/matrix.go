// Package matrix holds the state rules of the matrix input grid: field-id
// layout, one-shot placeholder seeding and the row/column strike reducer.
package matrix

import (
	"fmt"

	"github.com/abhisek/quizdeck/internal/fieldstore"
	"github.com/abhisek/quizdeck/internal/layout"
)

// CellKey is the field-id of cell (r, c).
func CellKey(id string, r, c int) string {
	return fmt.Sprintf("%s:cell:%d,%d", id, r, c)
}

// RowKey is the field-id of the strike checkbox of row r.
func RowKey(strikeID string, r int) string {
	return fmt.Sprintf("%s:row:%d", strikeID, r)
}

// ColKey is the field-id of the strike checkbox of column c.
func ColKey(strikeID string, c int) string {
	return fmt.Sprintf("%s:col:%d", strikeID, c)
}

// Identity is what makes two mounts of a grid "the same" grid.
type Identity struct {
	ID   string
	Rows int
	Cols int
}

// IdentityOf returns the seeding identity of a matrix element.
func IdentityOf(m layout.MatrixInput) Identity {
	return Identity{ID: m.ID, Rows: len(m.Rows), Cols: len(m.Cols)}
}

// Seeder writes placeholder values into the store once per identity.
// A zero Seeder is ready to use.
type Seeder struct {
	seen map[Identity]bool
}

// Seed fills every missing cell of m with its placeholder. It does
// nothing when the identity was already seeded, and never overwrites a
// cell that has a value. It reports whether this call seeded.
func (s *Seeder) Seed(store *fieldstore.Store, m layout.MatrixInput) bool {
	id := IdentityOf(m)
	if s.seen[id] {
		return false
	}
	if s.seen == nil {
		s.seen = make(map[Identity]bool)
	}
	s.seen[id] = true

	for r := range m.Rows {
		for c := range m.Cols {
			key := CellKey(m.ID, r, c)
			if store.Has(key) {
				continue
			}
			store.SetString(key, Placeholder(m, r, c))
		}
	}
	return true
}

// Seeded reports whether the identity has been seeded.
func (s *Seeder) Seeded(id Identity) bool {
	return s.seen[id]
}

// Placeholder returns the seeded value of cell (r, c), or "" when the
// placeholder grid is short.
func Placeholder(m layout.MatrixInput, r, c int) string {
	if r < len(m.Values) && c < len(m.Values[r]) {
		return m.Values[r][c]
	}
	return ""
}

// Msg is a matrix edit.
type Msg interface {
	matrixMsg()
}

// SetCell replaces the text of one cell.
type SetCell struct {
	ID    string
	R, C  int
	Value string
}

// ToggleRowStrike flips the strike flag of one row.
type ToggleRowStrike struct {
	StrikeID string
	R        int
}

// ToggleColStrike flips the strike flag of one column.
type ToggleColStrike struct {
	StrikeID string
	C        int
}

func (SetCell) matrixMsg()         {}
func (ToggleRowStrike) matrixMsg() {}
func (ToggleColStrike) matrixMsg() {}

// Apply reduces one edit into the store. Each message touches exactly one
// key.
func Apply(store *fieldstore.Store, msg Msg) {
	switch m := msg.(type) {
	case SetCell:
		store.SetString(CellKey(m.ID, m.R, m.C), m.Value)
	case ToggleRowStrike:
		key := RowKey(m.StrikeID, m.R)
		store.SetBool(key, !store.Bool(key))
	case ToggleColStrike:
		key := ColKey(m.StrikeID, m.C)
		store.SetBool(key, !store.Bool(key))
	}
}

// Struck reports whether cell (r, c) is shown struck through.
func Struck(store *fieldstore.Store, strikeID string, r, c int) bool {
	return store.Bool(RowKey(strikeID, r)) || store.Bool(ColKey(strikeID, c))
}
