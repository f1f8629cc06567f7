// Package layoutfile loads question layouts from local JSON files and
// watches them for edits.
package layoutfile

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/fsnotify/fsnotify"
	"github.com/tidwall/gjson"

	"github.com/abhisek/quizdeck/internal/layout"
)

// DefaultDebounce is the quiet period after the last write before a file
// is reloaded.
const DefaultDebounce = 200 * time.Millisecond

// Load reads a question from path. The file may hold a full question
// envelope ({"layout": ...}) or a bare layout.
func Load(path string) (*layout.Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout file: %w", err)
	}
	return Parse(data, TypeName(path))
}

// Parse decodes an envelope or a bare layout. kind names the question
// when the document does not.
func Parse(data []byte, kind string) (*layout.Question, error) {
	if gjson.GetBytes(data, "layout").IsObject() {
		q, err := layout.DecodeQuestion(data)
		if err != nil {
			return nil, err
		}
		if q.Type == "" {
			q.Type = kind
		}
		return q, nil
	}
	l, err := layout.Decode(data)
	if err != nil {
		return nil, err
	}
	return &layout.Question{Type: kind, Layout: l}, nil
}

// TypeName derives a question type from a file name: "kmeans.json"
// becomes "kmeans".
func TypeName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ReloadMsg carries the result of reloading a watched file.
type ReloadMsg struct {
	Path     string
	Question *layout.Question
	Err      error
}

// Watcher reloads one file whenever it changes. The containing directory
// is watched so editors that replace the file on save are followed.
type Watcher struct {
	path     string
	debounce time.Duration
	fs       *fsnotify.Watcher
	changes  chan struct{}
	ctx      context.Context
	cancel   context.CancelFunc
	once     sync.Once
}

// Watch starts watching path. A non-positive debounce uses
// DefaultDebounce.
func Watch(path string, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		path:     abs,
		debounce: debounce,
		fs:       fw,
		changes:  make(chan struct{}, 1),
		ctx:      ctx,
		cancel:   cancel,
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-w.ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			select {
			case w.changes <- struct{}{}:
			default:
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.Printf("layoutfile: watch %s: %v", w.path, err)
		}
	}
}

// Changes delivers one value per settled burst of writes.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Next returns a command that waits for the next change and reloads the
// file. It yields nil once the watcher is closed.
func (w *Watcher) Next() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-w.ctx.Done():
			return nil
		case <-w.changes:
		}
		q, err := Load(w.path)
		return ReloadMsg{Path: w.path, Question: q, Err: err}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		w.cancel()
		err = w.fs.Close()
	})
	return err
}
