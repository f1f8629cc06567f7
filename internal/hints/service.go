// Package hints asks a language model to explain a wrong answer.
package hints

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizdeck/internal/llm"
)

// ErrDisabled is returned when no provider is configured.
var ErrDisabled = errors.New("hints are not configured")

// Input describes the field a hint is requested for.
type Input struct {
	QuestionType string
	Difficulty   string
	// Context is the plain text of the view the field sits in.
	Context  string
	FieldID  string
	Label    string
	Answer   string
	Expected string
}

// Hint is the model's explanation.
type Hint struct {
	Explanation string
	NextStep    string
}

// HintMsg delivers the result of Request.
type HintMsg struct {
	FieldID string
	Hint    Hint
	Err     error
}

// Service generates hints. A Service with a nil provider is disabled.
type Service struct {
	provider llm.Provider
	cfg      Config
}

// NewService creates a hint service.
func NewService(provider llm.Provider, cfg Config) *Service {
	return &Service{provider: provider, cfg: cfg}
}

// Enabled reports whether hints can be generated.
func (s *Service) Enabled() bool {
	return s != nil && s.provider != nil
}

type hintOutput struct {
	Explanation string `json:"explanation"`
	NextStep    string `json:"next_step"`
}

// Explain generates a hint for in.
func (s *Service) Explain(ctx context.Context, in Input) (Hint, error) {
	if !s.Enabled() {
		return Hint{}, ErrDisabled
	}
	ctx = llm.WithPurpose(ctx, "hint")

	resp, err := s.provider.Generate(ctx, llm.Request{
		System:      hintSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildHintUserMessage(in)}},
		Schema:      HintSchema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return Hint{}, fmt.Errorf("hint generation: %w", err)
	}

	var out hintOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return Hint{}, fmt.Errorf("parse hint response: %w", err)
	}
	return Hint{Explanation: out.Explanation, NextStep: out.NextStep}, nil
}

// Request runs Explain in the background and delivers a HintMsg.
func (s *Service) Request(ctx context.Context, in Input) tea.Cmd {
	return func() tea.Msg {
		if s.cfg.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
			defer cancel()
		}
		h, err := s.Explain(ctx, in)
		return HintMsg{FieldID: in.FieldID, Hint: h, Err: err}
	}
}
