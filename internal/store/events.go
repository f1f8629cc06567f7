package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// eventRepo implements EventRepo with the ent SQL builder and the global
// sequence counter.
type eventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

// insert assigns the next sequence number and writes one event row.
func (r *eventRepo) insert(ctx context.Context, table string, cols []string, vals []any) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}
	query, args := builder().Insert(table).
		Columns(append([]string{"sequence", "timestamp"}, cols...)...).
		Values(append([]any{seqNum, time.Now().UTC()}, vals...)...).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

func (r *eventRepo) AppendRequest(ctx context.Context, data RequestEventData) error {
	return r.insert(ctx, requestEventsTable,
		[]string{"method", "endpoint", "question_type", "status_code", "latency_ms", "success", "error_message"},
		[]any{data.Method, data.Endpoint, data.QuestionType, data.StatusCode, data.LatencyMs, data.Success, data.ErrorMessage},
	)
}

func (r *eventRepo) AppendSubmission(ctx context.Context, data SubmissionEventData) error {
	return r.insert(ctx, submissionEventsTable,
		[]string{"attempt_id", "question_type", "difficulty", "seed", "view", "correct", "total"},
		[]any{data.AttemptID, data.QuestionType, data.Difficulty, data.Seed, data.View, data.Correct, data.Total},
	)
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	return r.insert(ctx, llmRequestEventsTable,
		[]string{"provider", "model", "purpose", "input_tokens", "output_tokens", "latency_ms", "success", "error_message"},
		[]any{data.Provider, data.Model, data.Purpose, data.InputTokens, data.OutputTokens, data.LatencyMs, data.Success, data.ErrorMessage},
	)
}

// recent builds the newest-first selection of cols from table.
func recent(table string, opts QueryOpts, cols ...string) (string, []any) {
	sel := builder().Select(append([]string{"sequence", "timestamp"}, cols...)...).
		From(entsql.Table(table)).
		OrderBy(entsql.Desc("sequence"))
	if opts.Type != "" {
		sel.Where(entsql.EQ("question_type", opts.Type))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	return sel.Query()
}

// scanAll runs query and calls scan once per row.
func (r *eventRepo) scanAll(ctx context.Context, query string, args []any, scan func(*sql.Rows) error) error {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (r *eventRepo) RecentRequests(ctx context.Context, opts QueryOpts) ([]RequestEvent, error) {
	query, args := recent(requestEventsTable, opts,
		"method", "endpoint", "question_type", "status_code", "latency_ms", "success", "error_message")
	var out []RequestEvent
	err := r.scanAll(ctx, query, args, func(rows *sql.Rows) error {
		var e RequestEvent
		if err := rows.Scan(&e.Sequence, &e.Timestamp, &e.Method, &e.Endpoint, &e.QuestionType,
			&e.StatusCode, &e.LatencyMs, &e.Success, &e.ErrorMessage); err != nil {
			return err
		}
		out = append(out, e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query request events: %w", err)
	}
	return out, nil
}

func (r *eventRepo) RecentSubmissions(ctx context.Context, opts QueryOpts) ([]SubmissionEvent, error) {
	query, args := recent(submissionEventsTable, opts,
		"attempt_id", "question_type", "difficulty", "seed", "view", "correct", "total")
	var out []SubmissionEvent
	err := r.scanAll(ctx, query, args, func(rows *sql.Rows) error {
		var e SubmissionEvent
		if err := rows.Scan(&e.Sequence, &e.Timestamp, &e.AttemptID, &e.QuestionType,
			&e.Difficulty, &e.Seed, &e.View, &e.Correct, &e.Total); err != nil {
			return err
		}
		out = append(out, e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query submission events: %w", err)
	}
	return out, nil
}

func (r *eventRepo) RecentLLMRequests(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error) {
	query, args := recent(llmRequestEventsTable, QueryOpts{Limit: opts.Limit},
		"provider", "model", "purpose", "input_tokens", "output_tokens", "latency_ms", "success", "error_message")
	var out []LLMRequestEvent
	err := r.scanAll(ctx, query, args, func(rows *sql.Rows) error {
		var e LLMRequestEvent
		if err := rows.Scan(&e.Sequence, &e.Timestamp, &e.Provider, &e.Model, &e.Purpose,
			&e.InputTokens, &e.OutputTokens, &e.LatencyMs, &e.Success, &e.ErrorMessage); err != nil {
			return err
		}
		out = append(out, e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query LLM request events: %w", err)
	}
	return out, nil
}

func (r *eventRepo) SubmissionStats(ctx context.Context) ([]TypeStats, error) {
	query, args := builder().
		Select("question_type", entsql.Count("*"), entsql.Sum("correct"), entsql.Sum("total")).
		From(entsql.Table(submissionEventsTable)).
		GroupBy("question_type").
		OrderBy("question_type").
		Query()
	var out []TypeStats
	err := r.scanAll(ctx, query, args, func(rows *sql.Rows) error {
		var s TypeStats
		if err := rows.Scan(&s.QuestionType, &s.Submissions, &s.Correct, &s.Total); err != nil {
			return err
		}
		out = append(out, s)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query submission stats: %w", err)
	}
	return out, nil
}
