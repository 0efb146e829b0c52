package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently answered questions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var result struct {
			History []struct {
				Question  string    `json:"question"`
				Answer    string    `json:"answer"`
				NumChunks int       `json:"num_chunks"`
				CreatedAt time.Time `json:"created_at"`
			} `json:"history"`
		}
		if err := apiGet(fmt.Sprintf("/api/v1/history?limit=%d", historyLimit), &result); err != nil {
			return err
		}

		if len(result.History) == 0 {
			fmt.Println("No questions answered yet.")
			return nil
		}
		for _, rec := range result.History {
			fmt.Printf("[%s] %s\n  %s\n", rec.CreatedAt.Format(time.RFC3339), rec.Question, rec.Answer)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum records to show")
	rootCmd.AddCommand(historyCmd)
}
