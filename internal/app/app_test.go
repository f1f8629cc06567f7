package app

import (
	"fmt"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizdeck/internal/router"
	"github.com/abhisek/quizdeck/internal/screen"
)

type testScreen struct {
	title    string
	captures bool
	keys     []string
	closed   bool
}

func (s *testScreen) Init() tea.Cmd { return nil }
func (s *testScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if k, ok := msg.(tea.KeyPressMsg); ok {
		s.keys = append(s.keys, k.String())
	}
	return s, nil
}
func (s *testScreen) View(int, int) string { return "body of " + s.title }
func (s *testScreen) Title() string        { return s.title }
func (s *testScreen) Status() string       { return "3/4" }
func (s *testScreen) CapturesEscape() bool { return s.captures }
func (s *testScreen) Close()               { s.closed = true }

func update(t *testing.T, m AppModel, msg tea.Msg) AppModel {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(AppModel)
	if cmd != nil {
		if pop, ok := cmd().(router.PopScreenMsg); ok {
			next, _ = m.Update(pop)
			m = next.(AppModel)
		}
	}
	return m
}

func TestEscapePopsUnlessCaptured(t *testing.T) {
	root := &testScreen{title: "root"}
	child := &testScreen{title: "child", captures: true}
	m := New(root)
	m.router.Push(child)

	esc := tea.KeyPressMsg{Code: tea.KeyEscape}
	m = update(t, m, esc)
	if m.router.Active() != child || len(child.keys) != 1 {
		t.Fatalf("captured escape should reach the screen, keys=%v", child.keys)
	}

	child.captures = false
	m = update(t, m, esc)
	if m.router.Active() != root {
		t.Fatal("escape should pop the child")
	}
	if !child.closed {
		t.Error("popped screen should be closed")
	}

	m = update(t, m, esc)
	if m.router.Depth() != 1 {
		t.Error("root must never be popped")
	}
}

func TestCtrlCClosesEverything(t *testing.T) {
	root := &testScreen{title: "root"}
	m := New(root)
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	if cmd == nil {
		t.Fatal("expected quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
	if !root.closed {
		t.Error("screens should be closed on quit")
	}
}

func TestViewShowsTitleAndStatus(t *testing.T) {
	m := New(&testScreen{title: "kmeans (easy)"})
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	out := fmt.Sprint(m.View().Content)
	for _, want := range []string{"quizdeck", "kmeans (easy)", "3/4", "body of kmeans", "Quit"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
