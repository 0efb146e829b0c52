package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the documents in the knowledge base",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var result struct {
			Sources []string `json:"sources"`
			Count   int      `json:"count"`
		}
		if err := apiGet("/api/v1/sources", &result); err != nil {
			return err
		}

		if result.Count == 0 {
			fmt.Println("No documents ingested yet.")
			return nil
		}
		for _, source := range result.Sources {
			fmt.Println(source)
		}
		return nil
	},
}

var deleteSourceCmd = &cobra.Command{
	Use:   "delete [source]",
	Short: "Delete all chunks of one source",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var result struct {
			Source  string `json:"source"`
			Deleted int64  `json:"deleted"`
		}
		if err := apiDelete("/api/v1/admin/sources/"+args[0], &result); err != nil {
			return err
		}
		fmt.Printf("Deleted %d chunks of %s\n", result.Deleted, result.Source)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
	sourcesCmd.AddCommand(deleteSourceCmd)
}
