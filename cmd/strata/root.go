package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/strata"
)

var (
	verbose   bool
	serverURL string
	token     string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "strata",
	Short: "A unit-of-work client for hierarchical note servers",
	Long: `Strata tracks notes, attributes and branches in a local session
and commits accumulated changes to the server in one dependency-ordered
flush. It can also mirror a subtree to a directory of Markdown files.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Server URL (defaults to $STRATA_SERVER or the workspace config)")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "API token (defaults to $STRATA_TOKEN)")
}

// workspace resolves the enclosing workspace, if any.
func workspace() (string, *strata.WorkspaceConfig) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", nil
	}
	root, err := strata.FindWorkspaceRoot(cwd)
	if err != nil {
		return "", nil
	}
	cfg, err := strata.LoadWorkspaceConfig(root)
	if err != nil {
		slog.Warn("ignoring unreadable workspace config", "dir", root, "error", err)
		return "", nil
	}
	return root, cfg
}

// resolveServer picks the server URL from flag, environment, or the
// workspace config, in that order.
func resolveServer(cfg *strata.WorkspaceConfig) string {
	if serverURL != "" {
		return serverURL
	}
	if env := os.Getenv("STRATA_SERVER"); env != "" {
		return env
	}
	if cfg != nil {
		return cfg.Server
	}
	return ""
}

func resolveToken() string {
	if token != "" {
		return token
	}
	return os.Getenv("STRATA_TOKEN")
}

func connectOpts(cfg *strata.WorkspaceConfig) []strata.Option {
	opts := []strata.Option{
		strata.WithLogger(slog.Default()),
	}
	if t := resolveToken(); t != "" {
		opts = append(opts, strata.WithToken(t))
	}
	if cfg != nil && len(cfg.Ignore) > 0 {
		opts = append(opts, strata.WithIgnore(cfg.Ignore...))
	}
	return opts
}
