package backend

import (
	"context"
	"fmt"
	"sync"

	"github.com/abhisek/quizdeck/internal/fieldstore"
	"github.com/abhisek/quizdeck/internal/layout"
	"github.com/abhisek/quizdeck/internal/layoutfile"
	"github.com/abhisek/quizdeck/internal/preview"
)

// FileClient serves a question from a local layout file. It cannot grade
// or preview, so those calls report ErrUnavailable.
type FileClient struct {
	path string

	mu       sync.Mutex
	override *layout.Question
}

// NewFileClient creates a client reading path on every Question call.
func NewFileClient(path string) *FileClient {
	return &FileClient{path: path}
}

// Replace makes subsequent Question calls return q instead of re-reading
// the file. A watcher uses it to hand over a freshly reloaded question.
func (c *FileClient) Replace(q *layout.Question) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.override = q
}

func (c *FileClient) Question(_ context.Context, kind string, _ Settings) (*layout.Question, error) {
	c.mu.Lock()
	q := c.override
	c.mu.Unlock()
	if q != nil {
		return q, nil
	}
	q, err := layoutfile.Load(c.path)
	if err != nil {
		return nil, &SchemaError{Path: c.path, Err: err}
	}
	if kind != "" && q.Type == "" {
		q.Type = kind
	}
	return q, nil
}

func (c *FileClient) Evaluate(context.Context, string, Settings, *fieldstore.Store) (fieldstore.Overlay, error) {
	return nil, fmt.Errorf("evaluate %s: %w", c.path, ErrUnavailable)
}

func (c *FileClient) Preview(context.Context, string, Settings, string) (preview.Result, error) {
	return preview.Result{}, fmt.Errorf("preview %s: %w", c.path, ErrUnavailable)
}
