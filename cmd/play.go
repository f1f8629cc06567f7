package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizdeck/internal/backend"
	"github.com/abhisek/quizdeck/internal/config"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a question, or open the library when no type is given",
	Example: `  quizdeck play --type kmeans --difficulty hard --seed 42
  quizdeck play --type relational_algebra --set schema=university`,
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, _ := cmd.Flags().GetString("type")
		settings, err := playSettings(cmd)
		if err != nil {
			return err
		}
		return runApp(cmd, kind, &settings)
	},
}

func init() {
	addPlayFlags(playCmd)
}

func addPlayFlags(c *cobra.Command) {
	c.Flags().StringP("type", "t", "", "Question type, e.g. kmeans, dbscan, agnes")
	c.Flags().StringP("difficulty", "d", "", "Difficulty: easy, medium or hard")
	c.Flags().String("seed", "", "Seed for a reproducible question")
	c.Flags().StringArray("set", nil, "Extra backend setting as key=value (repeatable)")
}

// playSettings builds the backend settings from the play flags. --seed
// and --difficulty win over the same keys given through --set.
func playSettings(cmd *cobra.Command) (backend.Settings, error) {
	var s backend.Settings
	extras, _ := cmd.Flags().GetStringArray("set")
	for _, kv := range extras {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return s, fmt.Errorf("invalid --set %q: want key=value", kv)
		}
		s = s.With(k, v)
	}

	if d, _ := cmd.Flags().GetString("difficulty"); d != "" {
		if !slices.Contains(config.Difficulties, d) {
			return s, fmt.Errorf("invalid difficulty %q: must be one of %s", d, strings.Join(config.Difficulties, ", "))
		}
		s = s.With("difficulty", d)
	}
	if seed, _ := cmd.Flags().GetString("seed"); seed != "" {
		s = s.With("seed", seed)
		if s.Seed() == "" {
			return s, fmt.Errorf("invalid seed %q: must be a non-negative integer", seed)
		}
	}
	return s, nil
}
