package question

import (
	"github.com/abhisek/quizdeck/internal/layout"
)

// scan collects the reactive listeners and dendrogram builders of the
// visible views.
type scan struct {
	listeners map[string]struct{}
	builders  map[string]int
}

func newScan() *scan {
	return &scan{listeners: map[string]struct{}{}, builders: map[string]int{}}
}

// add walks els, descending into containers.
func (sc *scan) add(els []layout.Element) {
	for _, el := range els {
		switch e := el.(type) {
		case layout.ReactiveTable:
			if e.ListenTo != "" {
				sc.listeners[e.ListenTo] = struct{}{}
			}
		case layout.ReactiveTree:
			if e.ListenTo != "" {
				sc.listeners[e.ListenTo] = struct{}{}
			}
		case layout.DendrogramBuilder:
			sc.builders[e.ID] = len(e.Points)
		case layout.Dropdown:
			sc.add(e.Children)
		case layout.LayoutTable:
			for _, row := range e.Cells {
				sc.add(row)
			}
		}
	}
}
