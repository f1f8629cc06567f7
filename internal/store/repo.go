package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries.
type QueryOpts struct {
	Limit int    // max results (0 = unlimited)
	Type  string // question type filter ("" = all)
}

// RequestEventData describes one backend call.
type RequestEventData struct {
	Method       string
	Endpoint     string
	QuestionType string
	StatusCode   int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// RequestEvent is a stored backend call.
type RequestEvent struct {
	Sequence  int64
	Timestamp time.Time
	RequestEventData
}

// SubmissionEventData describes one evaluated view.
type SubmissionEventData struct {
	AttemptID    string
	QuestionType string
	Difficulty   string
	Seed         string
	View         string
	Correct      int
	Total        int
}

// SubmissionEvent is a stored submission.
type SubmissionEvent struct {
	Sequence  int64
	Timestamp time.Time
	SubmissionEventData
}

// Score is the fraction of correct fields, 0 when nothing was evaluated.
func (e SubmissionEventData) Score() float64 {
	if e.Total == 0 {
		return 0
	}
	return float64(e.Correct) / float64(e.Total)
}

// LLMRequestEventData describes one LLM API call.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// LLMRequestEvent is a stored LLM call.
type LLMRequestEvent struct {
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// TypeStats aggregates the submissions of one question type.
type TypeStats struct {
	QuestionType string
	Submissions  int
	Correct      int
	Total        int
}

// Accuracy is Correct/Total, 0 when Total is 0.
func (s TypeStats) Accuracy() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Total)
}

// EventRepo provides append and query access to events.
type EventRepo interface {
	AppendRequest(ctx context.Context, data RequestEventData) error
	AppendSubmission(ctx context.Context, data SubmissionEventData) error
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// RecentRequests returns backend calls, newest first.
	RecentRequests(ctx context.Context, opts QueryOpts) ([]RequestEvent, error)
	// RecentSubmissions returns submissions, newest first.
	RecentSubmissions(ctx context.Context, opts QueryOpts) ([]SubmissionEvent, error)
	// RecentLLMRequests returns LLM calls, newest first.
	RecentLLMRequests(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)
	// SubmissionStats aggregates submissions per question type.
	SubmissionStats(ctx context.Context) ([]TypeStats, error)
}
