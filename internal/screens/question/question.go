// Package question is the page-level controller of one question: it owns
// the field store, the per-view evaluation state and every interactive
// widget of the visible views.
package question

import (
	"context"
	"errors"
	"fmt"
	"log"
	"maps"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/google/uuid"

	"github.com/abhisek/quizdeck/internal/backend"
	"github.com/abhisek/quizdeck/internal/dendrogram"
	"github.com/abhisek/quizdeck/internal/escapes"
	"github.com/abhisek/quizdeck/internal/fieldstore"
	"github.com/abhisek/quizdeck/internal/hints"
	"github.com/abhisek/quizdeck/internal/interp"
	"github.com/abhisek/quizdeck/internal/layout"
	"github.com/abhisek/quizdeck/internal/layoutfile"
	"github.com/abhisek/quizdeck/internal/matrix"
	"github.com/abhisek/quizdeck/internal/preview"
	"github.com/abhisek/quizdeck/internal/screen"
	"github.com/abhisek/quizdeck/internal/store"
	"github.com/abhisek/quizdeck/internal/ui/components"
)

// Deps are the services a question screen uses. Only Client is required.
type Deps struct {
	Client backend.Client
	Events store.EventRepo
	Hints  *hints.Service
	// Debounce delays preview requests; zero uses preview.DefaultDebounce.
	Debounce time.Duration
	// Watcher, when set, reloads the layout on file changes.
	Watcher *layoutfile.Watcher
}

type viewStatus int

const (
	statusIdle viewStatus = iota
	statusEvaluated
	statusShowingResults
)

// viewState is the evaluation state of one visible view. ids and tree are
// rebuilt on every render.
type viewState struct {
	status  viewStatus
	overlay fieldstore.Overlay
	ids     map[string]struct{}
	tree    *interp.Node
}

type heightRef struct {
	builder string
	k       int
}

// QuestionScreen implements screen.Screen for a question page.
type QuestionScreen struct {
	deps     Deps
	kind     string
	settings backend.Settings
	ctx      context.Context
	cancel   context.CancelFunc

	question *layout.Question
	loadErr  string
	errMsg   string
	notice   string

	store     *fieldstore.Store
	visible   []string
	views     map[string]*viewState
	finished  bool
	lastTree  *interp.Node
	attemptID string

	preview   *preview.Channel
	listeners map[string]struct{}
	builders  map[string]int
	dendro    map[string]*dendrogram.UIState
	heights   map[string]heightRef
	open      map[string]bool
	seeder    matrix.Seeder

	focusables []*interp.Node
	focus      string
	editor     *components.TextInput

	hintFor     string
	hint        *hints.Hint
	hintErr     string
	hintPending bool

	scroll     int
	followView string
}

var _ screen.Screen = (*QuestionScreen)(nil)
var _ screen.KeyHintProvider = (*QuestionScreen)(nil)
var _ screen.StatusProvider = (*QuestionScreen)(nil)
var _ screen.EscapeCapturer = (*QuestionScreen)(nil)
var _ screen.Closer = (*QuestionScreen)(nil)

// New creates a question screen for the given type and settings.
func New(kind string, settings backend.Settings, deps Deps) *QuestionScreen {
	ctx, cancel := context.WithCancel(context.Background())
	s := &QuestionScreen{
		deps:     deps,
		kind:     kind,
		settings: settings,
		ctx:      ctx,
		cancel:   cancel,
		store:    fieldstore.New(),
		views:    map[string]*viewState{},
		dendro:   map[string]*dendrogram.UIState{},
		open:     map[string]bool{},
	}
	s.preview = preview.NewChannel(s.fetchPreview, deps.Debounce)
	return s
}

func (s *QuestionScreen) Init() tea.Cmd {
	cmds := []tea.Cmd{s.load()}
	if s.deps.Watcher != nil {
		cmds = append(cmds, s.deps.Watcher.Next())
	}
	return tea.Batch(cmds...)
}

func (s *QuestionScreen) Title() string {
	title := strings.ReplaceAll(s.kind, "_", " ")
	difficulty := s.settings.Difficulty()
	if difficulty == "" && s.question != nil {
		difficulty = s.question.Difficulty
	}
	if difficulty != "" {
		title += " (" + difficulty + ")"
	}
	return title
}

// Status summarises the graded fields of every view.
func (s *QuestionScreen) Status() string {
	if s.question == nil {
		return ""
	}
	correct, total := s.score()
	step := fmt.Sprintf("step %d/%d", len(s.visible), max(s.question.Layout.StepCount(), 1))
	if s.finished {
		step = "finished"
	}
	if total == 0 {
		return step
	}
	return fmt.Sprintf("%s  ✓ %d/%d", step, correct, total)
}

func (s *QuestionScreen) score() (correct, total int) {
	for _, name := range s.visible {
		c, t := s.views[name].overlay.Score()
		correct += c
		total += t
	}
	return correct, total
}

// CapturesEscape reports whether Esc has a local meaning right now.
func (s *QuestionScreen) CapturesEscape() bool {
	if s.editor != nil {
		return true
	}
	if n := s.focused(); n != nil && n.Kind == interp.KindDendrogram {
		ui := s.dendroState(n.ID)
		return ui.Message != "" || ui.Selected != nil
	}
	return false
}

// Close cancels outstanding requests and stops the file watcher.
func (s *QuestionScreen) Close() {
	s.cancel()
	s.preview.Close()
	if s.deps.Watcher != nil {
		if err := s.deps.Watcher.Close(); err != nil {
			log.Printf("question: closing layout watcher: %v", err)
		}
	}
}

func (s *QuestionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case questionLoadedMsg:
		return s.handleLoaded(msg)

	case evaluatedMsg:
		return s.handleEvaluated(msg)

	case preview.FireMsg:
		return s, s.preview.Fire(msg)

	case preview.ResultMsg:
		if s.preview.Apply(msg) {
			s.rebuild()
		}
		return s, nil

	case hints.HintMsg:
		return s.handleHint(msg)

	case layoutfile.ReloadMsg:
		return s.handleReload(msg)

	case tea.PasteMsg:
		if s.editor != nil {
			return s.updateEditor(msg)
		}

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *QuestionScreen) load() tea.Cmd {
	client, kind, settings, ctx := s.deps.Client, s.kind, s.settings, s.ctx
	return func() tea.Msg {
		q, err := client.Question(ctx, kind, settings)
		return questionLoadedMsg{Question: q, Err: err}
	}
}

func (s *QuestionScreen) fetchPreview(ctx context.Context, statement string) (preview.Result, error) {
	return s.deps.Client.Preview(ctx, s.kind, s.settings, statement)
}

func (s *QuestionScreen) handleLoaded(msg questionLoadedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		if errors.Is(msg.Err, context.Canceled) {
			return s, nil
		}
		s.loadErr = describeErr(msg.Err)
		return s, nil
	}

	q := msg.Question
	// Evaluation regenerates the question from the seed, so a seed the
	// service picked must be sent back with every later request.
	if s.settings.Seed() == "" && q.Seed != "" {
		s.settings = s.settings.With("seed", q.Seed)
	}
	if s.settings.Difficulty() == "" && q.Difficulty != "" {
		s.settings = s.settings.With("difficulty", q.Difficulty)
	}

	s.question = q
	s.loadErr = ""
	s.store.Reset()
	s.seeder = matrix.Seeder{}
	s.dendro = map[string]*dendrogram.UIState{}
	s.open = map[string]bool{}
	s.visible = []string{layout.NextView(1)}
	s.views = map[string]*viewState{layout.NextView(1): {}}
	s.finished = false
	s.lastTree = nil
	s.attemptID = uuid.New().String()
	s.focus = ""
	s.rebuild()
	return s, nil
}

func (s *QuestionScreen) handleReload(msg layoutfile.ReloadMsg) (screen.Screen, tea.Cmd) {
	var next tea.Cmd
	if s.deps.Watcher != nil {
		next = s.deps.Watcher.Next()
	}
	if msg.Err != nil {
		s.errMsg = "Reload failed: " + msg.Err.Error()
		return s, next
	}
	if fc, ok := s.deps.Client.(*backend.FileClient); ok {
		fc.Replace(msg.Question)
	}
	if s.question == nil {
		return s.handleLoaded(questionLoadedMsg{Question: msg.Question})
	}
	s.question = msg.Question
	s.errMsg = ""
	s.notice = "Layout reloaded."
	s.rebuild()
	return s, next
}

// rebuild renders every visible view against the current state,
// re-registering field ids, seeding matrices and collecting focusables.
// It runs after every state change; View only draws the cached trees.
func (s *QuestionScreen) rebuild() {
	if s.question == nil {
		return
	}
	l := s.question.Layout

	sc := newScan()
	for _, name := range s.visible {
		interp.Mount(l, name, s.store, &s.seeder)
		sc.add(l.View(name))
	}
	s.listeners = sc.listeners
	s.builders = sc.builders

	s.renderViews()
	if !s.hasFocusable(s.focus) {
		s.focus = ""
		if len(s.focusables) > 0 {
			s.focus = s.focusables[0].ID
		}
		s.renderViews()
	}

	s.lastTree = nil
	if s.finished && l.Has(layout.LastView) {
		s.lastTree = interp.Render(l, layout.LastView, interp.Env{
			Store:        fieldstore.New(),
			ShowExpected: true,
			ReadOnly:     true,
		})
	}
}

func (s *QuestionScreen) renderViews() {
	s.focusables = nil
	s.heights = map[string]heightRef{}
	for i, name := range s.visible {
		vs := s.view(name)
		ids := map[string]struct{}{}
		tree := interp.Render(s.question.Layout, name, interp.Env{
			Store:        s.store,
			Overlay:      vs.overlay,
			ShowExpected: vs.status == statusShowingResults,
			Register:     func(id string) { ids[id] = struct{}{} },
			Preview:      s.preview.Result,
			Dendrogram:   s.dendroState,
			Open:         s.isOpen,
			Focus:        s.focus,
		})
		if i > 0 {
			tree.Text = ""
		}
		vs.ids = ids
		vs.tree = tree
		s.focusables = append(s.focusables, interp.Focusables(tree)...)

		interp.Walk(tree, func(n *interp.Node) bool {
			if n.Kind != interp.KindDendrogram {
				return true
			}
			for _, row := range n.Dendrogram.Merges {
				if row.Height != nil {
					s.heights[row.Height.ID] = heightRef{builder: n.ID, k: row.K}
				}
			}
			return false
		})
	}
}

func (s *QuestionScreen) view(name string) *viewState {
	vs, ok := s.views[name]
	if !ok {
		vs = &viewState{}
		s.views[name] = vs
	}
	return vs
}

func (s *QuestionScreen) dendroState(id string) *dendrogram.UIState {
	ui, ok := s.dendro[id]
	if !ok {
		ui = &dendrogram.UIState{}
		s.dendro[id] = ui
	}
	return ui
}

func (s *QuestionScreen) engine(id string) *dendrogram.Engine {
	return dendrogram.New(id, s.builders[id], s.store)
}

func (s *QuestionScreen) isOpen(key string, def bool) bool {
	if v, ok := s.open[key]; ok {
		return v
	}
	return def
}

func (s *QuestionScreen) hasFocusable(id string) bool {
	if id == "" {
		return false
	}
	for _, n := range s.focusables {
		if n.ID == id {
			return true
		}
	}
	return false
}

func (s *QuestionScreen) focused() *interp.Node {
	for _, n := range s.focusables {
		if n.ID == s.focus {
			return n
		}
	}
	return nil
}

// viewOf returns the visible view rendering the node with focus id.
func (s *QuestionScreen) viewOf(id string) string {
	if id != "" {
		for _, name := range s.visible {
			if interp.Find(s.views[name].tree, id) != nil {
				return name
			}
		}
	}
	return ""
}

// activeView is the view actions apply to: the one holding focus, or the
// newest visible view.
func (s *QuestionScreen) activeView() string {
	if name := s.viewOf(s.focus); name != "" {
		return name
	}
	return s.visible[len(s.visible)-1]
}

// submit posts the full answer snapshot and grades the active view.
func (s *QuestionScreen) submit() tea.Cmd {
	view := s.activeView()
	ids := maps.Clone(s.views[view].ids)

	answers := fieldstore.New()
	if data, err := s.store.MarshalJSON(); err == nil {
		if err := answers.UnmarshalJSON(data); err != nil {
			log.Printf("question: copying answers: %v", err)
		}
	}

	s.notice = "Submitting " + view + "..."
	client, events, kind, settings, ctx, attempt := s.deps.Client, s.deps.Events, s.kind, s.settings, s.ctx, s.attemptID
	return func() tea.Msg {
		overlay, err := client.Evaluate(ctx, kind, settings, answers)
		if err != nil {
			return evaluatedMsg{View: view, Err: err}
		}
		filtered := overlay.Filter(ids)
		if events != nil {
			correct, total := filtered.Score()
			if err := events.AppendSubmission(context.WithoutCancel(ctx), store.SubmissionEventData{
				AttemptID:    attempt,
				QuestionType: kind,
				Difficulty:   settings.Difficulty(),
				Seed:         settings.Seed(),
				View:         view,
				Correct:      correct,
				Total:        total,
			}); err != nil {
				log.Printf("question: recording submission: %v", err)
			}
		}
		return evaluatedMsg{View: view, Overlay: filtered}
	}
}

func (s *QuestionScreen) handleEvaluated(msg evaluatedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		if errors.Is(msg.Err, context.Canceled) {
			return s, nil
		}
		s.notice = ""
		s.errMsg = describeErr(msg.Err)
		return s, nil
	}
	vs := s.view(msg.View)
	vs.overlay = msg.Overlay
	vs.status = statusEvaluated
	s.errMsg = ""
	correct, total := msg.Overlay.Score()
	s.notice = fmt.Sprintf("%s graded: %d/%d correct.", msg.View, correct, total)
	s.rebuild()
	return s, nil
}

func (s *QuestionScreen) showResults() {
	vs := s.views[s.activeView()]
	if vs.status != statusEvaluated {
		if vs.status == statusIdle {
			s.notice = "Submit this step first."
		}
		return
	}
	vs.status = statusShowingResults
	s.rebuild()
}

// nextStep reveals the next view, or finishes once there is none.
func (s *QuestionScreen) nextStep() {
	if s.finished {
		return
	}
	last := s.visible[len(s.visible)-1]
	if s.views[last].status != statusShowingResults {
		s.notice = "Show the results of " + last + " before moving on."
		return
	}
	next := layout.NextView(len(s.visible) + 1)
	if s.question.Layout.Has(next) {
		s.visible = append(s.visible, next)
		s.views[next] = &viewState{}
		s.rebuild()
		if first := s.firstFocusableIn(next); first != "" {
			s.setFocus(first)
		}
		s.followView = next
		return
	}
	s.finished = true
	s.followView = layout.LastView
	s.rebuild()
}

func (s *QuestionScreen) firstFocusableIn(view string) string {
	if fs := interp.Focusables(s.views[view].tree); len(fs) > 0 {
		return fs[0].ID
	}
	return ""
}

func (s *QuestionScreen) setFocus(id string) {
	if id == s.focus {
		return
	}
	prev := s.viewOf(s.focus)
	s.focus = id
	s.rebuild()
	if v := s.viewOf(id); v != prev {
		s.followView = v
	}
}

func (s *QuestionScreen) moveFocus(delta int) {
	n := len(s.focusables)
	if n == 0 {
		return
	}
	i := 0
	for j, f := range s.focusables {
		if f.ID == s.focus {
			i = j
			break
		}
	}
	s.setFocus(s.focusables[((i+delta)%n+n)%n].ID)
}

// setField writes an edited value through the widget that owns the field
// and schedules a preview when a reactive element listens to it.
func (s *QuestionScreen) setField(n *interp.Node, value string) tea.Cmd {
	if h, ok := s.heights[n.ID]; ok {
		dendrogram.Reduce(s.engine(h.builder), s.dendroState(h.builder), dendrogram.SetHeight{K: h.k, Value: value})
	} else {
		value = interp.ApplyEdit(s.store, n, value, escapes.Options{})
	}
	return s.changed(n.ID, value)
}

// changed re-renders after a store write to id.
func (s *QuestionScreen) changed(id, value string) tea.Cmd {
	var cmd tea.Cmd
	if _, ok := s.listeners[id]; ok {
		cmd = s.preview.Watch(id, value)
	}
	s.rebuild()
	return cmd
}

func (s *QuestionScreen) requestHint() tea.Cmd {
	n := s.focused()
	if n == nil || n.Kind != interp.KindField {
		s.notice = "Focus an answer marked wrong to ask for a hint."
		return nil
	}
	res, ok := s.views[s.viewOf(n.ID)].overlay.Lookup(n.ID)
	if !ok || res.Correct {
		s.notice = "Hints are available for answers marked wrong."
		return nil
	}
	if !s.deps.Hints.Enabled() {
		s.notice = "Hints need an LLM provider; set QUIZDECK_LLM_PROVIDER."
		return nil
	}

	f := n.Field
	answer := f.Value
	if f.Control == interp.ControlCheckbox {
		answer = fmt.Sprint(f.Checked)
	}
	in := hints.Input{
		QuestionType: s.kind,
		Difficulty:   s.settings.Difficulty(),
		Context:      plainText(s.views[s.viewOf(n.ID)].tree),
		FieldID:      f.ID,
		Label:        f.Label,
		Answer:       answer,
	}
	if res.HasExpected {
		in.Expected = res.Expected
	}
	s.hintFor = f.ID
	s.hint = nil
	s.hintErr = ""
	s.hintPending = true
	return s.deps.Hints.Request(s.ctx, in)
}

func (s *QuestionScreen) handleHint(msg hints.HintMsg) (screen.Screen, tea.Cmd) {
	if msg.FieldID != s.hintFor || !s.hintPending {
		return s, nil
	}
	s.hintPending = false
	if msg.Err != nil {
		if errors.Is(msg.Err, context.Canceled) {
			return s, nil
		}
		s.hintErr = msg.Err.Error()
		return s, nil
	}
	h := msg.Hint
	s.hint = &h
	return s, nil
}

// plainText collects the prose and labels of a rendered view.
func plainText(root *interp.Node) string {
	var parts []string
	interp.Walk(root, func(n *interp.Node) bool {
		switch {
		case n.Kind == interp.KindText || n.Kind == interp.KindGroup:
			if n.Text != "" {
				parts = append(parts, n.Text)
			}
		case n.Kind == interp.KindField && n.Field.Label != "":
			parts = append(parts, n.Field.Label)
		case n.Text != "":
			parts = append(parts, n.Text)
		}
		return true
	})
	return strings.Join(parts, "\n")
}

// describeErr turns a backend failure into a page-level message.
func describeErr(err error) string {
	var httpErr *backend.HTTPError
	var apiErr *backend.APIError
	var schemaErr *backend.SchemaError
	switch {
	case errors.Is(err, backend.ErrUnavailable):
		return "Not available for local layout files."
	case errors.As(err, &apiErr):
		return "The question service reported: " + apiErr.Message
	case errors.As(err, &httpErr):
		return fmt.Sprintf("The question service returned HTTP %d.", httpErr.Status)
	case errors.As(err, &schemaErr):
		return "The question service sent a malformed response: " + schemaErr.Err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return "The question service did not respond in time."
	}
	return "Could not reach the question service: " + err.Error()
}
