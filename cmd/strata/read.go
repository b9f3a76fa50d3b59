package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/strata"
	"github.com/aretw0/strata/pkg/core"
)

var readJSON bool

type readNote struct {
	NoteID  string            `json:"noteId"`
	Title   string            `json:"title"`
	Type    string            `json:"type"`
	Mime    string            `json:"mime"`
	Labels  map[string]string `json:"labels,omitempty"`
	Content string            `json:"content"`
}

var readCmd = &cobra.Command{
	Use:   "read [noteID]",
	Short: "Read a note",
	Long:  `Read a note by its ID. Outputs raw content by default, or a JSON object with --json.`,
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
		content, err := note.Content(ctx)
		if err != nil {
			fatal("Failed to fetch content", err)
		}

		if readJSON {
			labels := map[string]string{}
			attrs, err := session.OwnedAttributes(ctx, note)
			if err != nil {
				fatal("Failed to fetch attributes", err)
			}
			for _, a := range attrs {
				if a.AttributeType() == core.AttributeLabel {
					labels[a.Name()] = a.Value()
				}
			}

			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(readNote{
				NoteID:  note.ID(),
				Title:   note.Title(),
				Type:    note.Type(),
				Mime:    note.Mime(),
				Labels:  labels,
				Content: string(content),
			}); err != nil {
				fatal("Failed to encode JSON", err)
			}
			return
		}

		os.Stdout.Write(content)
	},
}

func init() {
	rootCmd.AddCommand(readCmd)
	readCmd.Flags().BoolVar(&readJSON, "json", false, "Output in JSON format")
}
