package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/strata"
	"github.com/aretw0/strata/pkg/core"
)

var (
	writeID      string
	writeParent  string
	writeTitle   string
	writeContent string
)

// writeCmd represents the write command
var writeCmd = &cobra.Command{
	Use:   "write",
	Short: "Create or update a note",
	Long: `Create or update a note and flush the change to the server.
With --id, the existing note is updated. Without it, a new note is
created under --parent. Content comes from --content, or stdin when
--content is "-".`,
	Run: func(cmd *cobra.Command, args []string) {
		if writeID == "" && writeTitle == "" {
			fmt.Println("Error: --id or --title is required")
			cmd.Usage()
			os.Exit(1)
		}

		ctx := context.Background()
		_, cfg := workspace()

		session, err := strata.Connect(ctx, resolveServer(cfg), connectOpts(cfg)...)
		if err != nil {
			fatal("Failed to connect", err)
		}
		defer session.Close()

		content := writeContent
		if content == "-" {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				fatal("Failed to read stdin", err)
			}
			content = string(data)
		}

		var note *strata.Note
		if writeID != "" {
			note, err = session.Note(ctx, writeID)
			if errors.Is(err, core.ErrNotFound) {
				fatal("Failed to fetch note", fmt.Errorf("note %q does not exist; omit --id to create one", writeID))
			}
			if err != nil {
				fatal("Failed to fetch note", err)
			}
			if writeTitle != "" {
				note.SetTitle(writeTitle)
			}
		} else {
			parent, err := session.Note(ctx, writeParent)
			if err != nil {
				fatal("Failed to fetch parent note", err)
			}
			note = parent.NewChildNote(writeTitle)
		}

		if cmd.Flags().Changed("content") {
			note.SetContent([]byte(content))
		}

		if err := session.Flush(ctx); err != nil {
			fatal("Failed to flush", err)
		}

		fmt.Printf("Note '%s' saved.\n", note.ID())
	},
}

func init() {
	rootCmd.AddCommand(writeCmd)
	writeCmd.Flags().StringVar(&writeID, "id", "", "Note ID to update (omit to create)")
	writeCmd.Flags().StringVar(&writeParent, "parent", "root", "Parent note ID for new notes")
	writeCmd.Flags().StringVar(&writeTitle, "title", "", "Note title")
	writeCmd.Flags().StringVar(&writeContent, "content", "", "Note content ('-' reads stdin)")
}
