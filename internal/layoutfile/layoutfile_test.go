package layoutfile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/abhisek/quizdeck/internal/layout"
)

const bare = `{"header": "K-Means", "view1": [{"type": "Text", "value": "hello"}]}`

func TestParseBareLayout(t *testing.T) {
	q, err := Parse([]byte(bare), "kmeans")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if q.Type != "kmeans" {
		t.Errorf("type = %q, want kmeans", q.Type)
	}
	if q.Layout.Header == nil || q.Layout.Header.Value != "K-Means" {
		t.Errorf("header = %+v", q.Layout.Header)
	}
	if len(q.Layout.View("view1")) != 1 {
		t.Errorf("view1 = %+v", q.Layout.View("view1"))
	}
}

func TestParseEnvelope(t *testing.T) {
	doc := `{"type": "agnes", "seed": 7, "difficulty": "hard", "layout": ` + bare + `}`
	q, err := Parse([]byte(doc), "fallback")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if q.Type != "agnes" || q.Seed != "7" || q.Difficulty != "hard" {
		t.Errorf("question = %+v", q)
	}
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse([]byte(`{"view1": "not an array of objects"}`), "x")
	var invalid *layout.InvalidError
	if !errors.As(err, &invalid) {
		t.Fatalf("err = %v, want *layout.InvalidError", err)
	}
}

func TestTypeName(t *testing.T) {
	if got := TypeName("/tmp/q/relational_algebra.json"); got != "relational_algebra" {
		t.Errorf("TypeName = %q", got)
	}
}

func TestWatchReloadsAfterWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kmeans.json")
	if err := os.WriteFile(path, []byte(bare), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := Watch(path, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer w.Close()

	updated := `{"header": "Updated", "view1": []}`
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		t.Fatal(err)
	}

	done := make(chan ReloadMsg, 1)
	go func() {
		if msg, ok := w.Next()().(ReloadMsg); ok {
			done <- msg
		}
	}()

	select {
	case msg := <-done:
		if msg.Err != nil {
			t.Fatalf("reload: %v", msg.Err)
		}
		if msg.Question.Layout.Header.Value != "Updated" {
			t.Errorf("header = %q, want Updated", msg.Question.Layout.Header.Value)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after write")
	}
}

func TestNextAfterCloseYieldsNil(t *testing.T) {
	path := filepath.Join(t.TempDir(), "q.json")
	os.WriteFile(path, []byte(bare), 0o644)
	w, err := Watch(path, 0)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	w.Close()
	if msg := w.Next()(); msg != nil {
		t.Errorf("msg = %#v, want nil", msg)
	}
}
