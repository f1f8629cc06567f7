package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/abhisek/quizdeck/internal/store"
)

var answerSchema = &Schema{
	Name: "test-answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"answer": map[string]any{"type": "string"},
		},
		"required":             []string{"answer"},
		"additionalProperties": false,
	},
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		schema  *Schema
		content string
		wantErr bool
	}{
		{"nil schema accepts anything", nil, `not json`, false},
		{"valid", answerSchema, `{"answer":"5"}`, false},
		{"missing field", answerSchema, `{}`, true},
		{"wrong type", answerSchema, `{"answer":5}`, true},
		{"extra field", answerSchema, `{"answer":"5","x":1}`, true},
		{"not json", answerSchema, `{answer`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(tt.schema, json.RawMessage(tt.content))
			if tt.wantErr {
				var invalid *ErrInvalidResponse
				if !errors.As(err, &invalid) {
					t.Fatalf("expected ErrInvalidResponse, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestMockProvider(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{"answer":"5"}`), Usage: Usage{InputTokens: 3}})
	req := Request{Schema: answerSchema, Messages: []Message{{Role: RoleUser, Content: "hi"}}}

	resp, err := mock.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Model != "mock" || resp.Usage.InputTokens != 3 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if calls := mock.Calls(); len(calls) != 1 || calls[0].Messages[0].Content != "hi" {
		t.Fatalf("unexpected calls: %+v", calls)
	}

	_, err = mock.Generate(context.Background(), req)
	var unavailable *ErrProviderUnavailable
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected ErrProviderUnavailable on empty queue, got %v", err)
	}

	mock.AddResponse(MockResponse{Content: json.RawMessage(`{"nope":1}`)})
	_, err = mock.Generate(context.Background(), req)
	var invalid *ErrInvalidResponse
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
}

func TestPurpose(t *testing.T) {
	if got := PurposeFrom(context.Background()); got != "unknown" {
		t.Fatalf("expected unknown, got %q", got)
	}
	ctx := WithPurpose(context.Background(), "hint")
	if got := PurposeFrom(ctx); got != "hint" {
		t.Fatalf("expected hint, got %q", got)
	}
}

func TestResolveModel(t *testing.T) {
	if got := resolveModel("claude-haiku", anthropicModels); got == "claude-haiku" {
		t.Fatal("alias should resolve")
	}
	if got := resolveModel("custom-model", anthropicModels); got != "custom-model" {
		t.Fatalf("unknown names pass through, got %q", got)
	}
}

type fakeEventRepo struct {
	store.EventRepo
	events []store.LLMRequestEventData
	err    error
}

func (f *fakeEventRepo) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	f.events = append(f.events, data)
	return f.err
}

func TestLoggingProvider(t *testing.T) {
	repo := &fakeEventRepo{}
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{}`), Usage: Usage{InputTokens: 10, OutputTokens: 4}},
		MockResponse{Err: errors.New("boom")},
	)
	p := WithLogging(mock, repo)
	ctx := WithPurpose(context.Background(), "hint")

	if _, err := p.Generate(ctx, Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.Generate(ctx, Request{}); err == nil {
		t.Fatal("expected error")
	}

	if len(repo.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(repo.events))
	}
	ok, failed := repo.events[0], repo.events[1]
	if !ok.Success || ok.Purpose != "hint" || ok.InputTokens != 10 || ok.OutputTokens != 4 || ok.Model != "mock" {
		t.Fatalf("unexpected success event: %+v", ok)
	}
	if failed.Success || failed.ErrorMessage != "boom" {
		t.Fatalf("unexpected failure event: %+v", failed)
	}
}

func TestLoggingProvider_RepoErrorIgnored(t *testing.T) {
	repo := &fakeEventRepo{err: errors.New("disk full")}
	p := WithLogging(NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)}), repo)
	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("logging failure must not fail the call: %v", err)
	}
}

func TestWithLogging_NilRepo(t *testing.T) {
	mock := NewMockProvider()
	if p := WithLogging(mock, nil); p != Provider(mock) {
		t.Fatal("nil repo should return the provider unchanged")
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("no provider is valid: %v", err)
	}
	if cfg.Enabled() {
		t.Fatal("default config should be disabled")
	}

	cfg.Provider = "anthropic"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "QUIZDECK_ANTHROPIC_API_KEY") {
		t.Fatalf("expected missing key error, got %v", err)
	}
	cfg.Anthropic.APIKey = "k"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg.Provider = "bogus"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected unknown provider error")
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("QUIZDECK_LLM_PROVIDER", "openai")
	t.Setenv("QUIZDECK_OPENAI_API_KEY", "sk-test")
	t.Setenv("QUIZDECK_OPENAI_MODEL", "gpt-test")

	cfg := ConfigFromEnv()
	if cfg.Provider != "openai" || cfg.OpenAI.APIKey != "sk-test" || cfg.OpenAI.Model != "gpt-test" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Retry.MaxAttempts != 3 {
		t.Fatalf("defaults should survive, got %+v", cfg.Retry)
	}
}

func TestConfig_Discover(t *testing.T) {
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}
	cfg := DefaultConfig()
	if cfg.Discover() {
		t.Fatal("nothing to discover")
	}

	t.Setenv("ANTHROPIC_API_KEY", "a-key")
	t.Setenv("OPENROUTER_API_KEY", "r-key")
	if !cfg.Discover() {
		t.Fatal("expected discovery")
	}
	if cfg.Provider != "anthropic" || cfg.Anthropic.APIKey != "a-key" {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	explicit := DefaultConfig()
	explicit.Provider = "mock"
	explicit.Discover()
	if explicit.Provider != "mock" {
		t.Fatal("explicit provider must win")
	}
}

func TestNewProvider(t *testing.T) {
	cfg := DefaultConfig()
	if _, err := NewProvider(context.Background(), cfg, nil); err == nil {
		t.Fatal("expected error with no provider")
	}

	cfg.Provider = "mock"
	p, err := NewProvider(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "mock" {
		t.Fatalf("unexpected model %q", p.ModelID())
	}

	cfg.Provider = "openrouter"
	cfg.OpenRouter.APIKey = "k"
	p, err = NewProvider(context.Background(), cfg, &fakeEventRepo{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := p.(*RetryProvider); !ok {
		t.Fatalf("expected retry wrapper, got %T", p)
	}
	if p.ModelID() != cfg.OpenRouter.Model {
		t.Fatalf("unexpected model %q", p.ModelID())
	}
}

func TestDiscoverConfig(t *testing.T) {
	t.Setenv("QUIZDECK_LLM_PROVIDER", "")
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}
	t.Setenv("GEMINI_API_KEY", "g-key")

	cfg, ok := DiscoverConfig()
	if !ok || cfg.Provider != "gemini" || cfg.Gemini.APIKey != "g-key" {
		t.Fatalf("unexpected discovery: %v %+v", ok, cfg)
	}
}
