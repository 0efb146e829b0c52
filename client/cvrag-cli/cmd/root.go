package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	baseURL    string
	adminToken string
)

var rootCmd = &cobra.Command{
	Use:   "cvrag-cli",
	Short: "A CLI client for the CV question answering service",
	Long:  `A command-line interface for asking questions, ingesting documents, and inspecting the CV knowledge base over its HTTP API.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "http://localhost:8000", "base URL of the service")
	rootCmd.PersistentFlags().StringVar(&adminToken, "admin-token", os.Getenv("ADMIN_TOKEN"), "bearer token for admin commands")
}
