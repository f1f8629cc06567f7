package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func parsePlay(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "play"}
	addPlayFlags(c)
	if err := c.Flags().Parse(args); err != nil {
		t.Fatalf("parse %v: %v", args, err)
	}
	return c
}

func TestPlaySettings(t *testing.T) {
	c := parsePlay(t, "--set", "schema=university", "--set", "seed=1", "--seed", "42", "-d", "hard")
	s, err := playSettings(c)
	if err != nil {
		t.Fatalf("playSettings: %v", err)
	}
	if s.Seed() != "42" {
		t.Errorf("seed = %q, want 42", s.Seed())
	}
	if s.Difficulty() != "hard" {
		t.Errorf("difficulty = %q, want hard", s.Difficulty())
	}
	if s.Get("schema") != "university" {
		t.Errorf("schema = %q", s.Get("schema"))
	}
}

func TestPlaySettingsRejectsBadInput(t *testing.T) {
	tests := [][]string{
		{"--set", "novalue"},
		{"--difficulty", "impossible"},
		{"--seed", "-3"},
	}
	for _, args := range tests {
		if _, err := playSettings(parsePlay(t, args...)); err == nil {
			t.Errorf("playSettings(%v) succeeded, want error", args)
		}
	}
}

func writeLayout(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kmeans.json")
	doc := `{
		"header": "Cluster the points",
		"view1": [{"type": "Text", "value": "Assign each point"}, {"type": "TextInput", "id": "a", "label": "First"}],
		"view2": [{"type": "Text", "value": "Recompute the centroids"}]
	}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRenderPlainAllViews(t *testing.T) {
	var buf bytes.Buffer
	if err := renderPlain(&buf, writeLayout(t), "", 80); err != nil {
		t.Fatalf("renderPlain: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"── view1 ──", "── view2 ──", "Assign each point", "Recompute the centroids"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Count(out, "Cluster the points") != 1 {
		t.Errorf("header should appear once:\n%s", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("plain output contains escape sequences")
	}
}

func TestRenderPlainSingleView(t *testing.T) {
	var buf bytes.Buffer
	if err := renderPlain(&buf, writeLayout(t), "view2", 80); err != nil {
		t.Fatalf("renderPlain: %v", err)
	}
	if strings.Contains(buf.String(), "── view1 ──") {
		t.Error("only view2 should be printed")
	}
	if err := renderPlain(&buf, writeLayout(t), "view9", 80); err == nil {
		t.Error("unknown view should fail")
	}
}
