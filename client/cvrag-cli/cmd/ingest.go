package cmd

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"github.com/spf13/cobra"
)

var ingestDir string

var ingestCmd = &cobra.Command{
	Use:   "ingest [pattern]...",
	Short: "Ingest local documents matching glob patterns",
	Long: `Walks the documents directory and asks the service to ingest every file
matching one of the glob patterns, e.g. "*.pdf" or "**/*.md". URLs are
passed through unchanged.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var paths []string
		var globs []glob.Glob

		for _, arg := range args {
			if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
				paths = append(paths, arg)
				continue
			}
			g, err := glob.Compile(arg, '/')
			if err != nil {
				return fmt.Errorf("invalid pattern %q: %w", arg, err)
			}
			globs = append(globs, g)
		}

		if len(globs) > 0 {
			err := filepath.WalkDir(ingestDir, func(path string, d fs.DirEntry, err error) error {
				if err != nil || d.IsDir() {
					return err
				}
				rel, err := filepath.Rel(ingestDir, path)
				if err != nil {
					return err
				}
				rel = filepath.ToSlash(rel)
				for _, g := range globs {
					if g.Match(rel) {
						paths = append(paths, path)
						break
					}
				}
				return nil
			})
			if err != nil {
				return err
			}
		}

		if len(paths) == 0 {
			return fmt.Errorf("no files matched under %s", ingestDir)
		}

		for _, path := range paths {
			var report struct {
				Source   string `json:"source"`
				Chunks   int    `json:"chunks"`
				Replaced int64  `json:"replaced"`
			}
			if err := apiPost("/api/v1/admin/ingest", map[string]string{"path": path}, &report); err != nil {
				return fmt.Errorf("failed to ingest %s: %w", path, err)
			}
			fmt.Printf("%s: %d chunks (%d replaced)\n", report.Source, report.Chunks, report.Replaced)
		}
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestDir, "dir", "documents", "directory to resolve glob patterns against")
	rootCmd.AddCommand(ingestCmd)
}
