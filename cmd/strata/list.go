package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/strata"
)

var listJSON bool

type listedChild struct {
	NoteID   string `json:"noteId"`
	Title    string `json:"title"`
	Prefix   string `json:"prefix,omitempty"`
	Position int    `json:"position"`
}

var listCmd = &cobra.Command{
	Use:   "list [noteID]",
	Short: "List child notes",
	Long:  `List the direct children of a note. Defaults to the tree root.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		_, cfg := workspace()

		session, err := strata.Connect(ctx, resolveServer(cfg), connectOpts(cfg)...)
		if err != nil {
			fatal("Failed to connect", err)
		}
		defer session.Close()

		noteID := "root"
		if len(args) == 1 {
			noteID = args[0]
		}
		note, err := session.Note(ctx, noteID)
		if err != nil {
			fatal("Failed to fetch note", err)
		}

		branches, err := session.ChildBranches(ctx, note)
		if err != nil {
			fatal("Failed to list children", err)
		}

		children := make([]listedChild, 0, len(branches))
		for _, b := range branches {
			children = append(children, listedChild{
				NoteID:   b.Child().ID(),
				Title:    b.Child().Title(),
				Prefix:   b.Prefix(),
				Position: b.Position(),
			})
		}

		if listJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(children); err != nil {
				fatal("Failed to encode JSON", err)
			}
			return
		}

		for _, c := range children {
			if c.Prefix != "" {
				fmt.Printf("%s  %s - %s\n", c.NoteID, c.Prefix, c.Title)
				continue
			}
			fmt.Printf("%s  %s\n", c.NoteID, c.Title)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
}
