package backend

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/abhisek/quizdeck/internal/fieldstore"
	"github.com/abhisek/quizdeck/internal/layout"
	"github.com/abhisek/quizdeck/internal/preview"
	"github.com/abhisek/quizdeck/internal/store"
)

// LoggingClient is a decorator that records every call as a request event.
type LoggingClient struct {
	inner     Client
	eventRepo store.EventRepo
}

// WithLogging wraps a Client with request event logging. A nil repo
// returns c unchanged.
func WithLogging(c Client, repo store.EventRepo) Client {
	if repo == nil {
		return c
	}
	return &LoggingClient{inner: c, eventRepo: repo}
}

func (l *LoggingClient) Question(ctx context.Context, kind string, s Settings) (*layout.Question, error) {
	start := time.Now()
	q, err := l.inner.Question(ctx, kind, s)
	l.record(ctx, http.MethodGet, QuestionPath(kind, ""), kind, start, err)
	return q, err
}

func (l *LoggingClient) Evaluate(ctx context.Context, kind string, s Settings, answers *fieldstore.Store) (fieldstore.Overlay, error) {
	start := time.Now()
	o, err := l.inner.Evaluate(ctx, kind, s, answers)
	l.record(ctx, http.MethodPost, QuestionPath(kind, "evaluate"), kind, start, err)
	return o, err
}

func (l *LoggingClient) Preview(ctx context.Context, kind string, s Settings, statement string) (preview.Result, error) {
	start := time.Now()
	r, err := l.inner.Preview(ctx, kind, s, statement)
	l.record(ctx, http.MethodPost, QuestionPath(kind, "preview"), kind, start, err)
	return r, err
}

func (l *LoggingClient) record(ctx context.Context, method, path, kind string, start time.Time, err error) {
	data := store.RequestEventData{
		Method:       method,
		Endpoint:     path,
		QuestionType: kind,
		StatusCode:   StatusCode(err),
		LatencyMs:    time.Since(start).Milliseconds(),
		Success:      err == nil,
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	}
	// Superseded previews arrive with a cancelled ctx and are still logged.
	if logErr := l.eventRepo.AppendRequest(context.WithoutCancel(ctx), data); logErr != nil {
		log.Printf("backend: failed to log request event: %v", logErr)
	}
}
