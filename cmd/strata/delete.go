package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/strata"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [noteID]",
	Short: "Delete a note",
	Long:  `Delete permanently removes a note, its attributes and its subtree from the server.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		_, cfg := workspace()

		session, err := strata.Connect(ctx, resolveServer(cfg), connectOpts(cfg)...)
		if err != nil {
			fatal("Failed to connect", err)
		}
		defer session.Close()

		note, err := session.Note(ctx, args[0])
		if err != nil {
			fatal("Failed to fetch note", err)
		}

		note.Delete()
		if err := session.Flush(ctx); err != nil {
			fatal("Failed to flush", err)
		}

		fmt.Printf("Note deleted: %s\n", args[0])
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
