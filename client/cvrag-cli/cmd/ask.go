package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the CV",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.Join(args, " ")

		var result struct {
			Answer    string   `json:"answer"`
			Sources   []string `json:"sources"`
			NumChunks int      `json:"num_chunks"`
			ElapsedMs int64    `json:"elapsed_ms"`
			Cached    bool     `json:"cached"`
		}
		if err := apiPost("/api/v1/ask", map[string]string{"question": question}, &result); err != nil {
			return err
		}

		fmt.Println(result.Answer)
		if len(result.Sources) > 0 {
			fmt.Printf("\nSources: %s\n", strings.Join(result.Sources, ", "))
		}
		fmt.Printf("(%d chunks, %d ms", result.NumChunks, result.ElapsedMs)
		if result.Cached {
			fmt.Print(", cached")
		}
		fmt.Println(")")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}
