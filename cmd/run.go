package cmd

import (
	"fmt"
	"io"
	"log"
	"os"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/quizdeck/internal/app"
	"github.com/abhisek/quizdeck/internal/backend"
	"github.com/abhisek/quizdeck/internal/hints"
	"github.com/abhisek/quizdeck/internal/llm"
	"github.com/abhisek/quizdeck/internal/screen"
	"github.com/abhisek/quizdeck/internal/screens/home"
	"github.com/abhisek/quizdeck/internal/screens/question"
	"github.com/abhisek/quizdeck/internal/store"
)

// setupLogging sends the log package to QUIZDECK_DEBUG (a file path) while
// the TUI owns the terminal, and discards it otherwise.
func setupLogging() (func(), error) {
	path := os.Getenv("QUIZDECK_DEBUG")
	if path == "" {
		log.SetOutput(io.Discard)
		return func() {}, nil
	}
	f, err := tea.LogToFile(path, "quizdeck")
	if err != nil {
		return nil, fmt.Errorf("open debug log: %w", err)
	}
	return func() { f.Close() }, nil
}

// runApp opens the store, builds dependencies, and launches the TUI. An
// empty kind starts at the home menu.
func runApp(cmd *cobra.Command, kind string, base *backend.Settings) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	closeLog, err := setupLogging()
	if err != nil {
		return err
	}
	defer closeLog()

	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()
	eventRepo := st.EventRepo()

	// The LLM provider is optional; without one hints are disabled.
	var provider llm.Provider
	llmCfg := cfg.LLM
	if llmCfg.Discover() {
		provider, err = llm.NewProvider(ctx, llmCfg, eventRepo)
		if err != nil {
			fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
			fmt.Fprintln(os.Stderr, "Hints will be unavailable.")
			provider = nil
		}
	}
	hintService := hints.NewService(provider, hints.DefaultConfig())

	client := backend.WithLogging(backend.NewHTTPClient(cfg.BackendURL, cfg.Timeout), eventRepo)
	deps := question.Deps{
		Client:   client,
		Events:   eventRepo,
		Hints:    hintService,
		Debounce: cfg.Debounce,
	}
	start := func(kind string, settings backend.Settings) screen.Screen {
		return question.New(kind, settings, deps)
	}

	var settings backend.Settings
	if base != nil {
		settings = *base
	}

	var initial screen.Screen
	if kind == "" {
		initial = home.New(cfg, start, eventRepo, home.Options{
			Base:         settings,
			HintsEnabled: hintService.Enabled(),
		})
	} else {
		if settings.Difficulty() == "" && cfg.Difficulty != "" {
			settings = settings.With("difficulty", cfg.Difficulty)
		}
		initial = start(kind, settings)
	}
	return app.Run(ctx, initial)
}
