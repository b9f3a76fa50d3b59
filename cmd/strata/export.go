package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/strata"
)

var exportRoot string

var exportCmd = &cobra.Command{
	Use:   "export [dir]",
	Short: "Export a subtree to Markdown files",
	Long: `Export mirrors a server subtree into a directory of Markdown files
with frontmatter. The directory defaults to the current workspace.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		wsDir, cfg := workspace()

		dir := wsDir
		if len(args) == 1 {
			dir = args[0]
		}
		if dir == "" {
			cwd, err := os.Getwd()
			if err != nil {
				fatal("Failed to get CWD", err)
			}
			dir = cwd
		}

		noteID := exportRoot
		if noteID == "" && cfg != nil {
			noteID = cfg.Root
		}

		count, err := strata.Export(ctx, resolveServer(cfg), noteID, dir, connectOpts(cfg)...)
		if err != nil {
			fatal("Export failed", err)
		}
		fmt.Printf("Exported %d notes to %s\n", count, dir)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportRoot, "root", "", "Note ID of the subtree to export (defaults to the workspace root)")
}
