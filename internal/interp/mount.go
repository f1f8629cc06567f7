package interp

import (
	"github.com/abhisek/quizdeck/internal/fieldstore"
	"github.com/abhisek/quizdeck/internal/layout"
	"github.com/abhisek/quizdeck/internal/matrix"
)

// Mount performs the first-mount side effects of a view: every matrix in
// it, including nested ones, is seeded through seeder. It is safe to call
// on every view change; the seeder makes repeat mounts no-ops.
func Mount(l *layout.Layout, view string, store *fieldstore.Store, seeder *matrix.Seeder) {
	mountAll(l.View(view), store, seeder)
}

func mountAll(els []layout.Element, store *fieldstore.Store, seeder *matrix.Seeder) {
	for _, el := range els {
		switch e := el.(type) {
		case layout.MatrixInput:
			seeder.Seed(store, e)
		case layout.Dropdown:
			mountAll(e.Children, store, seeder)
		case layout.LayoutTable:
			for _, row := range e.Cells {
				mountAll(row, store, seeder)
			}
		}
	}
}
