package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/aretw0/strata/pkg/etapi"
)

var backupCmd = &cobra.Command{
	Use:   "backup [name]",
	Short: "Trigger a server-side backup",
	Long:  `Ask the server to write a named database backup.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		_, cfg := workspace()

		server := resolveServer(cfg)
		if server == "" {
			fatal("Backup failed", fmt.Errorf("a server URL is required (--server, $STRATA_SERVER, or a workspace config)"))
		}

		clientOpts := []etapi.Option{etapi.WithLogger(slog.Default())}
		if t := resolveToken(); t != "" {
			clientOpts = append(clientOpts, etapi.WithToken(t))
		}
		client := etapi.NewClient(server, clientOpts...)

		if err := client.Backup(ctx, args[0]); err != nil {
			fatal("Backup failed", err)
		}
		fmt.Printf("Backup '%s' created.\n", args[0])
	},
}

func init() {
	rootCmd.AddCommand(backupCmd)
}
