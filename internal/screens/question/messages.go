package question

import (
	"github.com/abhisek/quizdeck/internal/fieldstore"
	"github.com/abhisek/quizdeck/internal/layout"
)

// questionLoadedMsg is sent when the question request completes.
type questionLoadedMsg struct {
	Question *layout.Question
	Err      error
}

// evaluatedMsg is sent when a view submission has been graded. Overlay is
// already filtered to the view's fields.
type evaluatedMsg struct {
	View    string
	Overlay fieldstore.Overlay
	Err     error
}
