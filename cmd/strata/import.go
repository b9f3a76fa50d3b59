package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/strata"
)

var importParent string

var importCmd = &cobra.Command{
	Use:   "import [dir]",
	Short: "Import Markdown files into the server",
	Long: `Import reads a directory of Markdown files and commits the resulting
notes, labels and relations to the server in one flush. Files carrying
a note ID in their frontmatter update the existing note; the rest
create new notes under the parent.`,
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

		parentID := importParent
		if parentID == "" && cfg != nil {
			parentID = cfg.Root
		}

		count, err := strata.Import(ctx, resolveServer(cfg), dir, parentID, connectOpts(cfg)...)
		if err != nil {
			fatal("Import failed", err)
		}
		fmt.Printf("Imported %d files from %s\n", count, dir)
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringVar(&importParent, "parent", "", "Parent note ID for new notes (defaults to the workspace root)")
}
