package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/strata"
)

var initRoot string

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init [server-url]",
	Short: "Initialize a strata workspace",
	Long: `Initialize the current directory as a strata workspace by writing
a strata.yaml marker holding the server URL and the mirrored subtree root.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cwd, err := os.Getwd()
		if err != nil {
			fatal("Failed to get CWD", err)
		}

		server := resolveServer(nil)
		if len(args) == 1 {
			server = args[0]
		}
		if server == "" {
			fatal("Failed to initialize workspace", fmt.Errorf("a server URL is required (argument, --server, or $STRATA_SERVER)"))
		}

		cfg := &strata.WorkspaceConfig{
			Server: server,
			Root:   initRoot,
		}
		if err := strata.SaveWorkspaceConfig(cwd, cfg); err != nil {
			fatal("Failed to write workspace config", err)
		}

		fmt.Println("Initialized strata workspace in", cwd)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initRoot, "root", "root", "Note ID of the subtree this workspace mirrors")
}
