// Package preview runs the debounced live preview of one watched field:
// each edit supersedes the previous task for that field, and results of
// superseded tasks are dropped.
package preview

import (
	"context"
	"errors"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
)

// DefaultDebounce is the quiet period before a preview request is sent.
const DefaultDebounce = 600 * time.Millisecond

// Status is the lifecycle of one listener's result.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	}
	return "idle"
}

// TreeNode is one operator of the expression tree.
type TreeNode struct {
	Name     string      `json:"name"`
	Children []*TreeNode `json:"children,omitempty"`
}

// Result is what a listener displays.
type Result struct {
	Columns []string
	Rows    [][]string
	Tree    *TreeNode
	Error   string
	Status  Status
}

// Fetcher issues one preview request for a statement.
type Fetcher func(ctx context.Context, statement string) (Result, error)

// FireMsg arrives when a debounce window elapses uncancelled.
type FireMsg struct {
	Key string
	Seq uint64
}

// ResultMsg carries the outcome of a fired request.
type ResultMsg struct {
	Key    string
	Seq    uint64
	Result Result
	Err    error
}

type task struct {
	seq    uint64
	value  string
	ctx    context.Context
	cancel context.CancelFunc
}

// Channel tracks one task and one result per watched key. It is used from
// the Bubble Tea update loop only; commands it returns run elsewhere but
// never touch its fields.
type Channel struct {
	fetch    Fetcher
	debounce time.Duration
	seq      uint64
	tasks    map[string]*task
	results  map[string]Result
}

// NewChannel creates a channel. A non-positive debounce uses
// DefaultDebounce.
func NewChannel(fetch Fetcher, debounce time.Duration) *Channel {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Channel{
		fetch:    fetch,
		debounce: debounce,
		tasks:    make(map[string]*task),
		results:  make(map[string]Result),
	}
}

// Watch records a new value for key. Any pending or in-flight task for
// the key is cancelled. An empty value resets the result to idle without
// a request; otherwise the returned command waits out the debounce window
// and yields a FireMsg, or nothing if superseded first.
func (c *Channel) Watch(key, value string) tea.Cmd {
	c.cancel(key)
	c.seq++
	if strings.TrimSpace(value) == "" {
		c.results[key] = Result{Status: StatusIdle}
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	t := &task{seq: c.seq, value: value, ctx: ctx, cancel: cancel}
	c.tasks[key] = t

	wait := c.debounce
	return func() tea.Msg {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-timer.C:
			return FireMsg{Key: key, Seq: t.seq}
		case <-ctx.Done():
			return nil
		}
	}
}

// Fire starts the request for a FireMsg that is still current.
func (c *Channel) Fire(msg FireMsg) tea.Cmd {
	t, ok := c.tasks[msg.Key]
	if !ok || t.seq != msg.Seq || t.ctx.Err() != nil || c.fetch == nil {
		return nil
	}
	prev := c.results[msg.Key]
	prev.Status = StatusLoading
	c.results[msg.Key] = prev

	fetch, ctx, value := c.fetch, t.ctx, t.value
	return func() tea.Msg {
		res, err := fetch(ctx, value)
		return ResultMsg{Key: msg.Key, Seq: msg.Seq, Result: res, Err: err}
	}
}

// Apply stores a result if it belongs to the current task of its key and
// reports whether it did.
func (c *Channel) Apply(msg ResultMsg) bool {
	t, ok := c.tasks[msg.Key]
	if !ok || t.seq != msg.Seq {
		return false
	}
	if errors.Is(msg.Err, context.Canceled) {
		return false
	}
	delete(c.tasks, msg.Key)
	t.cancel()

	res := msg.Result
	switch {
	case msg.Err != nil:
		res = Result{Status: StatusError, Error: msg.Err.Error()}
	case res.Error != "":
		res.Status = StatusError
	default:
		res.Status = StatusReady
	}
	c.results[msg.Key] = res
	return true
}

// Result returns the current result for key.
func (c *Channel) Result(key string) Result {
	return c.results[key]
}

// Pending reports whether key has a task that has not resolved.
func (c *Channel) Pending(key string) bool {
	_, ok := c.tasks[key]
	return ok
}

// Close cancels every task.
func (c *Channel) Close() {
	for key := range c.tasks {
		c.cancel(key)
	}
}

func (c *Channel) cancel(key string) {
	if t, ok := c.tasks[key]; ok {
		t.cancel()
		delete(c.tasks, key)
	}
}
