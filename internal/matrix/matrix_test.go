package matrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizdeck/internal/fieldstore"
	"github.com/abhisek/quizdeck/internal/layout"
)

func grid() layout.MatrixInput {
	return layout.MatrixInput{
		ID:     "hm_step1",
		Rows:   []string{"a", "b"},
		Cols:   []string{"x", "y", "z"},
		Values: [][]string{{"1", "2", "3"}, {"4", "5"}},
	}
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "m:cell:1,2", CellKey("m", 1, 2))
	assert.Equal(t, "cb:row:0", RowKey("cb", 0))
	assert.Equal(t, "cb:col:3", ColKey("cb", 3))
}

func TestSeedWritesPlaceholdersOnce(t *testing.T) {
	store := fieldstore.New()
	var s Seeder
	m := grid()

	require.True(t, s.Seed(store, m))
	assert.Equal(t, 6, store.Len())
	assert.Equal(t, "2", store.String(CellKey(m.ID, 0, 1)))
	assert.Equal(t, "", store.String(CellKey(m.ID, 1, 2)), "short placeholder row seeds empty")

	// The user edits a cell, then the grid is mounted again.
	Apply(store, SetCell{ID: m.ID, R: 0, C: 1, Value: "9"})
	assert.False(t, s.Seed(store, m))
	assert.Equal(t, "9", store.String(CellKey(m.ID, 0, 1)))
}

func TestSeedKeepsExistingValues(t *testing.T) {
	store := fieldstore.New()
	store.SetString(CellKey("hm_step1", 1, 0), "kept")

	var s Seeder
	s.Seed(store, grid())
	assert.Equal(t, "kept", store.String(CellKey("hm_step1", 1, 0)))
}

func TestSeedNewIdentity(t *testing.T) {
	store := fieldstore.New()
	var s Seeder
	m := grid()
	s.Seed(store, m)

	m.Rows = append(m.Rows, "c")
	require.True(t, s.Seed(store, m), "a different row count is a new identity")
	assert.Equal(t, 9, store.Len())
	assert.True(t, s.Seeded(IdentityOf(m)))
}

func TestStrikeIsRowOrCol(t *testing.T) {
	store := fieldstore.New()
	Apply(store, ToggleRowStrike{StrikeID: "cb", R: 1})
	Apply(store, ToggleColStrike{StrikeID: "cb", C: 0})

	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			want := r == 1 || c == 0
			assert.Equal(t, want, Struck(store, "cb", r, c), "cell %d,%d", r, c)
		}
	}

	Apply(store, ToggleRowStrike{StrikeID: "cb", R: 2})
	assert.True(t, Struck(store, "cb", 1, 2), "toggling row 2 leaves row 1 alone")

	Apply(store, ToggleRowStrike{StrikeID: "cb", R: 1})
	assert.False(t, Struck(store, "cb", 1, 2))
	assert.True(t, Struck(store, "cb", 1, 0), "column strike still applies")
}

func TestApplyTouchesOneKey(t *testing.T) {
	store := fieldstore.New()
	Apply(store, SetCell{ID: "m", R: 0, C: 0, Value: "x"})
	Apply(store, ToggleColStrike{StrikeID: "m", C: 1})
	assert.Equal(t, []string{"m:cell:0,0", "m:col:1"}, store.KeysWithPrefix("m:"))
}
