package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizdeck/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent submissions",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		kind, _ := cmd.Flags().GetString("type")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().RecentSubmissions(cmd.Context(), store.QueryOpts{Limit: limit, Type: kind})
		if err != nil {
			return fmt.Errorf("query submissions: %w", err)
		}
		if len(events) == 0 {
			fmt.Println("No submissions found.")
			return nil
		}

		fmt.Printf("%-6s  %-19s  %-20s  %-6s  %-8s  %-8s  %s\n",
			"Seq", "Timestamp", "Type", "Level", "Seed", "View", "Score")
		fmt.Println(strings.Repeat("─", 90))
		for _, e := range events {
			fmt.Printf("%-6d  %-19s  %-20s  %-6s  %-8s  %-8s  %d/%d\n",
				e.Sequence,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				truncate(e.QuestionType, 20),
				e.Difficulty,
				e.Seed,
				e.View,
				e.Correct, e.Total,
			)
		}
		return nil
	},
}

var requestsCmd = &cobra.Command{
	Use:   "requests",
	Short: "List recent backend calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().RecentRequests(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query requests: %w", err)
		}
		if len(events) == 0 {
			fmt.Println("No backend requests found.")
			return nil
		}

		fmt.Printf("%-6s  %-19s  %-6s  %-36s  %-6s  %-7s  %s\n",
			"Seq", "Timestamp", "Method", "Endpoint", "Status", "Ms", "OK")
		fmt.Println(strings.Repeat("─", 100))
		for _, e := range events {
			ok := "✓"
			if !e.Success {
				ok = "✗ " + e.ErrorMessage
			}
			fmt.Printf("%-6d  %-19s  %-6s  %-36s  %-6d  %-7d  %s\n",
				e.Sequence,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				e.Method,
				truncate(e.Endpoint, 36),
				e.StatusCode,
				e.LatencyMs,
				ok,
			)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of submissions to show")
	historyCmd.Flags().StringP("type", "t", "", "Filter by question type")
	requestsCmd.Flags().IntP("limit", "n", 20, "Number of requests to show")
}
