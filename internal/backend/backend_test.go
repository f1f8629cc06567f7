package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/abhisek/quizdeck/internal/fieldstore"
	"github.com/abhisek/quizdeck/internal/layout"
	"github.com/abhisek/quizdeck/internal/store"
)

const questionBody = `{
	"type": "kmeans",
	"seed": 17,
	"difficulty": "easy",
	"metadata": {"title": "K-Means"},
	"layout": {
		"header": "K-Means",
		"view1": [{"type": "text_input", "id": "c1", "label": "Centroid 1"}]
	}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewHTTPClient(server.URL+"/", 0)
}

func TestSettingsSeedSanitation(t *testing.T) {
	tests := []struct {
		query string
		seed  string
	}{
		{"seed=42&difficulty=hard", "42"},
		{"?seed=abc&difficulty=hard", ""},
		{"seed=-3", ""},
		{"seed=", ""},
		{"difficulty=easy", ""},
	}
	for _, tt := range tests {
		s := ParseSettings(tt.query)
		if s.Seed() != tt.seed {
			t.Errorf("ParseSettings(%q).Seed() = %q, want %q", tt.query, s.Seed(), tt.seed)
		}
	}
	if got := ParseSettings("seed=x&difficulty=hard").Difficulty(); got != "hard" {
		t.Errorf("difficulty = %q, other settings must survive", got)
	}
	if got := ParseSettings("%zz").Encode(); got != "" {
		t.Errorf("malformed query encoded as %q", got)
	}
}

func TestSettingsWithCopies(t *testing.T) {
	base := FromMap(map[string]string{"difficulty": "easy"})
	next := base.With("seed", "9")
	if base.Seed() != "" {
		t.Error("With mutated the receiver")
	}
	if next.Seed() != "9" || next.Difficulty() != "easy" {
		t.Errorf("next = %q", next.Encode())
	}
	if got := next.With("seed", "").Seed(); got != "" {
		t.Errorf("empty value kept seed %q", got)
	}
	if got := next.With("seed", "nine").Seed(); got != "" {
		t.Errorf("invalid seed kept: %q", got)
	}
	if got := next.Keys(); len(got) != 2 || got[0] != "difficulty" || got[1] != "seed" {
		t.Errorf("keys = %v", got)
	}
}

func TestQuestion(t *testing.T) {
	var gotPath, gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotQuery = r.URL.Path, r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, questionBody)
	})

	q, err := c.Question(context.Background(), "kmeans", ParseSettings("seed=17&difficulty=easy"))
	if err != nil {
		t.Fatalf("question: %v", err)
	}
	if gotPath != "/question/kmeans" {
		t.Errorf("path = %q", gotPath)
	}
	if gotQuery != "difficulty=easy&seed=17" {
		t.Errorf("query = %q", gotQuery)
	}
	if q.Seed != "17" || q.Difficulty != "easy" || q.Type != "kmeans" {
		t.Errorf("question = %+v", q)
	}
	if _, ok := q.Layout.View("view1")[0].(layout.TextInput); !ok {
		t.Errorf("view1[0] = %T, want layout.TextInput", q.Layout.View("view1")[0])
	}
}

func TestQuestionEnvelopeError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"error": "Question type not found."}`)
	})
	_, err := c.Question(context.Background(), "nope", Settings{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Message != "Question type not found." {
		t.Errorf("message = %q", apiErr.Message)
	}
	if StatusCode(err) != 200 {
		t.Errorf("status = %d", StatusCode(err))
	}
}

func TestQuestionSchemaError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"type": "kmeans", "layout": {"view1": {"type": "Text"}}}`)
	})
	_, err := c.Question(context.Background(), "kmeans", Settings{})
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("err = %v, want *SchemaError", err)
	}
	var invalid *layout.InvalidError
	if !errors.As(err, &invalid) {
		t.Errorf("schema error should wrap the layout validation error: %v", err)
	}
}

func TestHTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	_, err := c.Question(context.Background(), "kmeans", Settings{})
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("err = %v, want *HTTPError", err)
	}
	if httpErr.Status != 500 || httpErr.Body != "boom" {
		t.Errorf("httpErr = %+v", httpErr)
	}
	if StatusCode(err) != 500 {
		t.Errorf("status = %d", StatusCode(err))
	}
}

func TestEvaluate(t *testing.T) {
	var body map[string]any
	var method string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		if r.URL.Path != "/question/kmeans/evaluate" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&body)
		io.WriteString(w, `{"seed": 1, "results": {
			"c1": {"correct": true, "expected": "3"},
			"c2": {"correct": false, "expected": [1, 2]},
			"bad": "not an object"
		}}`)
	})

	answers := fieldstore.New()
	answers.SetString("c1", "3")
	answers.SetBool("m:row:0", true)

	overlay, err := c.Evaluate(context.Background(), "kmeans", ParseSettings("seed=1"), answers)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if method != http.MethodPost {
		t.Errorf("method = %s", method)
	}
	if body["c1"] != "3" || body["m:row:0"] != true {
		t.Errorf("body = %v, want the full snapshot", body)
	}
	if r, ok := overlay.Lookup("c1"); !ok || !r.Correct {
		t.Errorf("c1 = %+v", r)
	}
	if r, _ := overlay.Lookup("c2"); r.Correct || r.Expected != "[1,2]" {
		t.Errorf("c2 = %+v", r)
	}
	if _, ok := overlay.Lookup("bad"); ok {
		t.Error("malformed result should be dropped")
	}
}

func TestEvaluateMissingResults(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"seed": 1}`)
	})
	_, err := c.Evaluate(context.Background(), "kmeans", Settings{}, fieldstore.New())
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("err = %v, want *SchemaError", err)
	}
}

func TestPreview(t *testing.T) {
	var statement string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Statement string `json:"statement"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		statement = req.Statement
		io.WriteString(w, `{
			"columns": ["id", "name"],
			"rows": [[1, "ada"], [2, null]],
			"tree": {"name": "π", "children": [{"name": "Student"}]},
			"error": null
		}`)
	})

	res, err := c.Preview(context.Background(), "relational_algebra", Settings{}, "π{id}(Student)")
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if statement != "π{id}(Student)" {
		t.Errorf("statement = %q", statement)
	}
	if len(res.Columns) != 2 || res.Rows[0][0] != "1" || res.Rows[1][1] != "NULL" {
		t.Errorf("result = %+v", res)
	}
	if res.Tree == nil || res.Tree.Name != "π" || res.Tree.Children[0].Name != "Student" {
		t.Errorf("tree = %+v", res.Tree)
	}
	if res.Error != "" {
		t.Errorf("error = %q", res.Error)
	}
}

func TestPreviewReportsStatementError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"columns": [], "rows": [], "tree": null, "error": "unknown relation X"}`)
	})
	res, err := c.Preview(context.Background(), "relational_algebra", Settings{}, "X")
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if res.Error != "unknown relation X" || res.Tree != nil {
		t.Errorf("result = %+v", res)
	}
}

func TestPreviewCancelled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Preview(ctx, "relational_algebra", Settings{}, "X")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestFileClient(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kmeans.json")
	if err := os.WriteFile(path, []byte(questionBody), 0o644); err != nil {
		t.Fatal(err)
	}
	c := NewFileClient(path)

	q, err := c.Question(context.Background(), "", Settings{})
	if err != nil {
		t.Fatalf("question: %v", err)
	}
	if q.Type != "kmeans" || q.Layout.Header.Value != "K-Means" {
		t.Errorf("question = %+v", q)
	}

	if _, err := c.Evaluate(context.Background(), "kmeans", Settings{}, fieldstore.New()); !errors.Is(err, ErrUnavailable) {
		t.Errorf("evaluate err = %v, want ErrUnavailable", err)
	}
	if _, err := c.Preview(context.Background(), "kmeans", Settings{}, "x"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("preview err = %v, want ErrUnavailable", err)
	}

	replaced := &layout.Question{Type: "override", Layout: &layout.Layout{}}
	c.Replace(replaced)
	if q, _ := c.Question(context.Background(), "", Settings{}); q != replaced {
		t.Errorf("Replace not honoured: %+v", q)
	}
}

type fakeEventRepo struct {
	store.EventRepo
	mu       sync.Mutex
	requests []store.RequestEventData
}

func (f *fakeEventRepo) AppendRequest(_ context.Context, data store.RequestEventData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, data)
	return nil
}

func TestWithLogging(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/question/kmeans/evaluate" {
			http.Error(w, "bad seed", http.StatusUnprocessableEntity)
			return
		}
		io.WriteString(w, questionBody)
	})
	repo := &fakeEventRepo{}
	logged := WithLogging(c, repo)

	if _, err := logged.Question(context.Background(), "kmeans", Settings{}); err != nil {
		t.Fatalf("question: %v", err)
	}
	if _, err := logged.Evaluate(context.Background(), "kmeans", Settings{}, fieldstore.New()); err == nil {
		t.Fatal("expected evaluate error")
	}

	if len(repo.requests) != 2 {
		t.Fatalf("events = %d, want 2", len(repo.requests))
	}
	first, second := repo.requests[0], repo.requests[1]
	if first.Method != "GET" || first.Endpoint != "/question/kmeans" || !first.Success || first.StatusCode != 200 {
		t.Errorf("first = %+v", first)
	}
	if second.Method != "POST" || second.Success || second.StatusCode != 422 || second.ErrorMessage == "" {
		t.Errorf("second = %+v", second)
	}
}

func TestWithLoggingNilRepo(t *testing.T) {
	c := NewFileClient("x.json")
	if WithLogging(c, nil) != Client(c) {
		t.Error("nil repo should return the client unchanged")
	}
}
