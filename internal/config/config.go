// Package config loads quizdeck settings from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/quizdeck/internal/llm"
)

// Difficulties are the levels the backend generators accept.
var Difficulties = []string{"easy", "medium", "hard"}

// QuestionType is one entry of the home menu.
type QuestionType struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// Config is the full application configuration.
type Config struct {
	BackendURL string        `yaml:"backend_url"`
	Timeout    time.Duration `yaml:"timeout"`
	DBPath     string        `yaml:"db"`
	// Debounce delays preview requests after the last keystroke.
	Debounce   time.Duration  `yaml:"debounce"`
	Difficulty string         `yaml:"difficulty"`
	Types      []QuestionType `yaml:"question_types"`
	LLM        llm.Config     `yaml:"llm"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		BackendURL: "http://localhost:8000",
		Timeout:    15 * time.Second,
		Debounce:   300 * time.Millisecond,
		Difficulty: "medium",
		Types: []QuestionType{
			{ID: "kmeans", Title: "K-Means Clustering", Description: "Cluster data points into groups."},
			{ID: "dbscan", Title: "DBSCAN", Description: "Find core, border and noise points."},
			{ID: "agnes", Title: "Hierarchical Clustering", Description: "Build a dendrogram by agglomerative merging."},
			{ID: "hungarian_method", Title: "Hungarian Method", Description: "Solve an assignment problem on a cost matrix."},
			{ID: "stable_marriage", Title: "Stable Marriage", Description: "Run Gale-Shapley to a stable matching."},
			{ID: "relational_algebra", Title: "Relational Algebra", Description: "Write queries against a small schema."},
			{ID: "addition", Title: "Simple Addition", Description: "Practice simple arithmetic."},
		},
		LLM: llm.DefaultConfig(),
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/quizdeck/config.yaml.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml"
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "quizdeck", "config.yaml")
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from QUIZDECK_* environment variables,
// including the LLM ones.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("QUIZDECK_BACKEND_URL"); v != "" {
		c.BackendURL = v
	}
	if v := os.Getenv("QUIZDECK_DB"); v != "" {
		c.DBPath = v
	}
	for name, dst := range map[string]*time.Duration{
		"QUIZDECK_DEBOUNCE": &c.Debounce,
		"QUIZDECK_TIMEOUT":  &c.Timeout,
	} {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*dst = d
	}
	c.LLM.ApplyEnv()
	return nil
}

// Validate checks the configuration for values that cannot work.
func (c Config) Validate() error {
	var errs []error
	if c.BackendURL != "" {
		u, err := url.Parse(c.BackendURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("backend_url %q must be an http(s) URL", c.BackendURL))
		}
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout must not be negative"))
	}
	if c.Debounce < 0 {
		errs = append(errs, fmt.Errorf("debounce must not be negative"))
	}
	if c.Difficulty != "" && !slices.Contains(Difficulties, c.Difficulty) {
		errs = append(errs, fmt.Errorf("difficulty %q is not one of %v", c.Difficulty, Difficulties))
	}
	seen := map[string]bool{}
	for i, t := range c.Types {
		if t.ID == "" {
			errs = append(errs, fmt.Errorf("question_types[%d]: id is required", i))
			continue
		}
		if seen[t.ID] {
			errs = append(errs, fmt.Errorf("question_types[%d]: duplicate id %q", i, t.ID))
		}
		seen[t.ID] = true
	}
	if err := c.LLM.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("llm: %w", err))
	}
	return errors.Join(errs...)
}

// Type returns the question type with the given id. Unknown ids get a
// bare entry so any backend type can be played.
func (c Config) Type(id string) QuestionType {
	for _, t := range c.Types {
		if t.ID == id {
			if t.Title == "" {
				t.Title = t.ID
			}
			return t
		}
	}
	return QuestionType{ID: id, Title: id}
}

// NextDifficulty cycles through Difficulties.
func NextDifficulty(d string) string {
	i := slices.Index(Difficulties, d)
	return Difficulties[(i+1)%len(Difficulties)]
}
