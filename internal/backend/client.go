// Package backend talks to the question service: fetching layouts,
// evaluating answers and previewing statements.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/abhisek/quizdeck/internal/fieldstore"
	"github.com/abhisek/quizdeck/internal/layout"
	"github.com/abhisek/quizdeck/internal/preview"
)

// Client is the question service contract.
type Client interface {
	// Question fetches a question of the given type.
	Question(ctx context.Context, kind string, s Settings) (*layout.Question, error)
	// Evaluate submits the full answer snapshot and returns the verdicts.
	Evaluate(ctx context.Context, kind string, s Settings, answers *fieldstore.Store) (fieldstore.Overlay, error)
	// Preview evaluates a statement without grading it.
	Preview(ctx context.Context, kind string, s Settings, statement string) (preview.Result, error)
}

// DefaultTimeout bounds a single request.
const DefaultTimeout = 15 * time.Second

// maxBody caps how much of a response is read.
const maxBody = 8 << 20

// HTTPClient implements Client over HTTP.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient creates a client for the service at baseURL.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// QuestionPath is the endpoint path of a question type, with an optional
// action suffix ("evaluate", "preview").
func QuestionPath(kind, action string) string {
	p := "/question/" + url.PathEscape(kind)
	if action != "" {
		p += "/" + action
	}
	return p
}

func (c *HTTPClient) Question(ctx context.Context, kind string, s Settings) (*layout.Question, error) {
	path := QuestionPath(kind, "")
	body, err := c.do(ctx, http.MethodGet, path, s, nil)
	if err != nil {
		return nil, err
	}
	if err := envelopeError(path, body); err != nil {
		return nil, err
	}
	q, err := layout.DecodeQuestion(body)
	if err != nil {
		return nil, &SchemaError{Path: path, Err: err}
	}
	if q.Type == "" {
		q.Type = kind
	}
	return q, nil
}

func (c *HTTPClient) Evaluate(ctx context.Context, kind string, s Settings, answers *fieldstore.Store) (fieldstore.Overlay, error) {
	path := QuestionPath(kind, "evaluate")
	payload, err := json.Marshal(answers)
	if err != nil {
		return nil, fmt.Errorf("encode answers: %w", err)
	}
	body, err := c.do(ctx, http.MethodPost, path, s, payload)
	if err != nil {
		return nil, err
	}
	if err := envelopeError(path, body); err != nil {
		return nil, err
	}
	results := gjson.GetBytes(body, "results")
	if !results.IsObject() {
		return nil, &SchemaError{Path: path, Err: errors.New(`"results" is not an object`)}
	}
	overlay := make(fieldstore.Overlay)
	results.ForEach(func(id, v gjson.Result) bool {
		var r fieldstore.Result
		if err := json.Unmarshal([]byte(v.Raw), &r); err != nil {
			log.Printf("backend: %s: dropping result for %q: %v", path, id.String(), err)
			return true
		}
		overlay[id.String()] = r
		return true
	})
	return overlay, nil
}

func (c *HTTPClient) Preview(ctx context.Context, kind string, s Settings, statement string) (preview.Result, error) {
	path := QuestionPath(kind, "preview")
	payload, err := json.Marshal(map[string]string{"statement": statement})
	if err != nil {
		return preview.Result{}, fmt.Errorf("encode statement: %w", err)
	}
	body, err := c.do(ctx, http.MethodPost, path, s, payload)
	if err != nil {
		return preview.Result{}, err
	}
	if !gjson.ValidBytes(body) {
		return preview.Result{}, &SchemaError{Path: path, Err: errors.New("invalid JSON")}
	}
	return decodePreview(body), nil
}

// decodePreview reads {columns, rows, tree, error}. Cells of any JSON type
// are shown as text.
func decodePreview(body []byte) preview.Result {
	doc := gjson.ParseBytes(body)
	var res preview.Result
	for _, col := range doc.Get("columns").Array() {
		res.Columns = append(res.Columns, col.String())
	}
	for _, row := range doc.Get("rows").Array() {
		cells := make([]string, 0, len(row.Array()))
		for _, cell := range row.Array() {
			if cell.Type == gjson.Null {
				cells = append(cells, "NULL")
				continue
			}
			cells = append(cells, cell.String())
		}
		res.Rows = append(res.Rows, cells)
	}
	if tree := doc.Get("tree"); tree.IsObject() {
		var node preview.TreeNode
		if err := json.Unmarshal([]byte(tree.Raw), &node); err == nil {
			res.Tree = &node
		}
	}
	if e := doc.Get("error"); e.Exists() && e.Type != gjson.Null {
		res.Error = e.String()
	}
	return res
}

// envelopeError reports an "error" member of a 2xx response body.
func envelopeError(path string, body []byte) error {
	if !gjson.ValidBytes(body) {
		return &SchemaError{Path: path, Err: errors.New("invalid JSON")}
	}
	if e := gjson.GetBytes(body, "error"); e.Exists() && e.Type != gjson.Null && e.String() != "" {
		return &APIError{Path: path, Message: e.String()}
	}
	return nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, s Settings, payload []byte) ([]byte, error) {
	u := c.baseURL + path
	if q := s.Encode(); q != "" {
		u += "?" + q
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{Method: method, Path: path, Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}
