package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/lifecycle/pkg/core/supervisor"
	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/spf13/cobra"

	"github.com/aretw0/strata"
	lifecycleadapter "github.com/aretw0/strata/pkg/adapters/lifecycle"
	"github.com/aretw0/strata/pkg/core"
)

var syncWatch bool

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync [dir]",
	Short: "Synchronize a workspace with the server",
	Long: `Synchronize imports local file changes into the server, then
re-exports the subtree so files pick up server-assigned note IDs.
With --watch, it keeps running and syncs on every file change.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		wsDir, cfg := workspace()

		dir := wsDir
		if len(args) == 1 {
			dir = args[0]
		}
		if dir == "" {
			fatal("Sync failed", fmt.Errorf("no workspace found; run 'strata init' or pass a directory"))
		}

		session, err := strata.Connect(ctx, resolveServer(cfg), connectOpts(cfg)...)
		if err != nil {
			fatal("Failed to connect", err)
		}
		defer session.Close()

		rootID := "root"
		if cfg != nil {
			rootID = cfg.Root
		}
		parent, err := session.Note(ctx, rootID)
		if err != nil {
			fatal("Failed to fetch workspace root note", err)
		}

		tree := strata.OpenTree(session, dir, connectOpts(cfg)...)
		if err := syncOnce(ctx, session, tree, parent); err != nil {
			fatal("Sync failed", err)
		}
		fmt.Println("Sync completed successfully.")

		if !syncWatch {
			return
		}
		watchLoop(ctx, session, tree, parent)
	},
}

func syncOnce(ctx context.Context, session *strata.Session, tree *strata.Tree, parent *strata.Note) error {
	if _, err := tree.Import(ctx, parent); err != nil {
		return err
	}
	if err := session.Flush(ctx); err != nil {
		return err
	}
	_, err := tree.Export(ctx, parent)
	return err
}

// watchLoop keeps the watcher alive under a supervisor and re-syncs on
// every debounced file event until interrupted.
func watchLoop(ctx context.Context, session *strata.Session, tree *strata.Tree, parent *strata.Note) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan core.Event, 16)
	spec := supervisor.Spec{
		Name: "tree-watcher",
		Type: string(worker.TypeGoroutine),
		Factory: func() (worker.Worker, error) {
			return strata.NewWatchWorker(tree, events), nil
		},
		Backoff: supervisor.Backoff{
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     10 * time.Second,
			Multiplier:      2,
			ResetDuration:   time.Minute,
		},
		RestartPolicy: supervisor.RestartOnFailure,
	}
	sup := supervisor.New("strata-sync", supervisor.StrategyOneForOne, spec)
	if err := sup.Start(runCtx); err != nil {
		fatal("Failed to start watcher", err)
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer stopCancel()
		if err := sup.Stop(stopCtx); err != nil {
			slog.Error("watcher shutdown failed", "error", err)
		}
	}()

	source := lifecycleadapter.NewSource(events)
	if err := source.Start(runCtx); err != nil {
		fatal("Failed to start event source", err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	fmt.Println("Watching for changes. Press Ctrl+C to stop.")
	for {
		select {
		case <-sig:
			fmt.Println("Stopping.")
			return
		case e, ok := <-source.Events():
			if !ok {
				return
			}
			slog.Debug("file change", "event", e)
			if err := syncOnce(runCtx, session, tree, parent); err != nil {
				slog.Error("sync failed", "error", err)
			}
		}
	}
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().BoolVar(&syncWatch, "watch", false, "Keep running and sync on file changes")
}
