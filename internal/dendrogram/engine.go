package dendrogram

import (
	"github.com/abhisek/quizdeck/internal/fieldstore"
)

// User-facing validation messages.
const (
	MsgSameNode = "Pick two different nodes to merge."
	MsgNotRoot  = "Only top-level nodes can be merged."
	MsgComplete = "The dendrogram is already complete."
)

// UIState is the transient, unpersisted state of one builder. Cursor
// indexes Graph.Nodes and is only used for keyboard navigation.
type UIState struct {
	Selected *NodeRef
	Message  string
	Cursor   int
}

// CursorRef returns the node under the cursor, clamping a cursor left
// out of range by a deletion.
func (u *UIState) CursorRef(g Graph) (NodeRef, bool) {
	nodes := g.Nodes()
	if len(nodes) == 0 {
		return NodeRef{}, false
	}
	u.Cursor = min(max(u.Cursor, 0), len(nodes)-1)
	return nodes[u.Cursor], true
}

// MoveCursor steps the cursor by delta, wrapping around.
func (u *UIState) MoveCursor(g Graph, delta int) {
	n := len(g.Nodes())
	if n == 0 {
		u.Cursor = 0
		return
	}
	u.Cursor = ((u.Cursor+delta)%n + n) % n
}

// IsSelected reports whether ref is the current selection.
func (u *UIState) IsSelected(ref NodeRef) bool {
	return u.Selected != nil && *u.Selected == ref
}

// Engine edits the merges of one builder. The store is the only durable
// state; the engine holds nothing between calls.
type Engine struct {
	ID     string
	Leaves int
	Store  *fieldstore.Store
}

// New binds an engine to builder id over n leaves.
func New(id string, leaves int, store *fieldstore.Store) *Engine {
	return &Engine{ID: id, Leaves: leaves, Store: store}
}

// Graph loads the current merge arena.
func (e *Engine) Graph() Graph {
	return Load(e.Store, e.ID, e.Leaves)
}

// Height returns the stored height of merge k.
func (e *Engine) Height(k int) string {
	return e.Store.String(HeightKey(e.ID, k))
}

// SelectOrMerge handles a click on ref. Non-roots are ignored. Clicking
// the selection again deselects it; clicking a second root merges the
// two and clears the selection.
func (e *Engine) SelectOrMerge(ui *UIState, ref NodeRef) {
	g := e.Graph()
	if !g.IsRoot(ref) {
		return
	}
	switch {
	case ui.Selected == nil:
		sel := ref
		ui.Selected = &sel
	case *ui.Selected == ref:
		ui.Selected = nil
	default:
		a := *ui.Selected
		ui.Selected = nil
		e.createMerge(ui, g, a, ref)
	}
}

// CreateMerge joins roots a and b under a new merge. On a validation
// failure it sets ui.Message and leaves the store untouched.
func (e *Engine) CreateMerge(ui *UIState, a, b NodeRef) bool {
	return e.createMerge(ui, e.Graph(), a, b)
}

func (e *Engine) createMerge(ui *UIState, g Graph, a, b NodeRef) bool {
	switch {
	case a == b:
		ui.Message = MsgSameNode
		return false
	case g.Complete():
		ui.Message = MsgComplete
		return false
	case !g.IsRoot(a) || !g.IsRoot(b):
		ui.Message = MsgNotRoot
		return false
	}
	a, b = ordered(a, b)
	k := g.NextID()
	e.Store.SetString(ChildrenKey(e.ID, k), Merge{ID: k, A: a, B: b}.Children())
	if hk := HeightKey(e.ID, k); !e.Store.Has(hk) {
		e.Store.SetString(hk, "")
	}
	ui.Message = ""
	return true
}

// ordered puts the pair in the string order of their stored spelling so
// the same merge always serialises the same way.
func ordered(a, b NodeRef) (NodeRef, NodeRef) {
	if b.String() < a.String() {
		return b, a
	}
	return a, b
}

// RemoveMergeCascade deletes k0 and every merge depending on it, then
// renumbers the survivors densely in ascending old-id order, rewriting
// child references and carrying heights to their new keys. It returns the
// removed old ids.
func (e *Engine) RemoveMergeCascade(ui *UIState, k0 int) []int {
	ui.Selected = nil
	ui.Message = ""

	g := e.Graph()
	removed := g.Dependents(k0)
	if len(removed) == 0 {
		return nil
	}
	drop := make(map[int]bool, len(removed))
	for _, k := range removed {
		drop[k] = true
	}

	type survivor struct {
		merge     Merge
		height    string
		hasHeight bool
	}
	var survivors []survivor
	remap := make(map[int]int)
	for _, m := range g.Merges {
		if drop[m.ID] {
			continue
		}
		h, ok := e.Store.Get(HeightKey(e.ID, m.ID))
		remap[m.ID] = len(survivors)
		survivors = append(survivors, survivor{merge: m, height: h.String(), hasHeight: ok})
	}

	// Clear every old key before writing the compacted ones so a new id
	// never collides with a stale entry.
	for _, m := range g.Merges {
		e.Store.Delete(ChildrenKey(e.ID, m.ID))
		e.Store.Delete(HeightKey(e.ID, m.ID))
	}
	for newID, s := range survivors {
		m := Merge{ID: newID, A: rewrite(s.merge.A, remap), B: rewrite(s.merge.B, remap)}
		e.Store.SetString(ChildrenKey(e.ID, newID), m.Children())
		if s.hasHeight {
			e.Store.SetString(HeightKey(e.ID, newID), s.height)
		}
	}
	return removed
}

func rewrite(ref NodeRef, remap map[int]int) NodeRef {
	if ref.Kind != KindMerge {
		return ref
	}
	if k, ok := remap[ref.Index]; ok {
		return MergeRef(k)
	}
	return ref
}

// ClearAll removes every merge and its height.
func (e *Engine) ClearAll(ui *UIState) {
	ui.Selected = nil
	ui.Message = ""
	for _, m := range e.Graph().Merges {
		e.Store.Delete(ChildrenKey(e.ID, m.ID))
		e.Store.Delete(HeightKey(e.ID, m.ID))
	}
}

// SetHeight stores the height of an existing merge.
func (e *Engine) SetHeight(k int, value string) bool {
	if _, ok := e.Graph().Find(k); !ok {
		return false
	}
	e.Store.SetString(HeightKey(e.ID, k), value)
	return true
}

// Msg is a builder action.
type Msg interface {
	dendrogramMsg()
}

type (
	// Select is a click on a node.
	Select struct{ Ref NodeRef }
	// CreateMerge joins two roots directly.
	CreateMerge struct{ A, B NodeRef }
	// DeleteMergeCascade removes a merge and its dependents.
	DeleteMergeCascade struct{ K int }
	// ClearAll removes every merge.
	ClearAll struct{}
	// SetHeight edits the height of merge K.
	SetHeight struct {
		K     int
		Value string
	}
	// Dismiss clears the validation message.
	Dismiss struct{}
)

func (Select) dendrogramMsg()             {}
func (CreateMerge) dendrogramMsg()        {}
func (DeleteMergeCascade) dendrogramMsg() {}
func (ClearAll) dendrogramMsg()           {}
func (SetHeight) dendrogramMsg()          {}
func (Dismiss) dendrogramMsg()            {}

// Reduce applies one action.
func Reduce(e *Engine, ui *UIState, msg Msg) {
	switch m := msg.(type) {
	case Select:
		e.SelectOrMerge(ui, m.Ref)
	case CreateMerge:
		e.CreateMerge(ui, m.A, m.B)
	case DeleteMergeCascade:
		e.RemoveMergeCascade(ui, m.K)
	case ClearAll:
		e.ClearAll(ui)
	case SetHeight:
		e.SetHeight(m.K, m.Value)
	case Dismiss:
		ui.Message = ""
	}
}
