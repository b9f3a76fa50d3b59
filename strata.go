package strata

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aretw0/strata/internal/platform"
	"github.com/aretw0/strata/pkg/adapters/fs"
	"github.com/aretw0/strata/pkg/core"
	engine "github.com/aretw0/strata/pkg/strata"
)

// --- Types ---

// Session is the unit of work tracking entities against one backend.
type Session = engine.Session

// Note is a tracked note entity.
type Note = engine.Note

// Attribute is a tracked label or relation.
type Attribute = engine.Attribute

// Branch is a tracked parent-child placement.
type Branch = engine.Branch

// Tree mirrors a note subtree to a directory of Markdown files.
type Tree = fs.Tree

// WatchWorker is a lifecycle worker emitting debounced tree events.
type WatchWorker = fs.WatchWorker

// NewWatchWorker builds a watcher for a tree, delivering events on the
// given channel.
func NewWatchWorker(tree *Tree, events chan<- core.Event) *WatchWorker {
	return fs.NewWatchWorker(tree, events)
}

// --- Configuration ---

// Option defines a functional option for configuring the service.
type Option = platform.Option

// WithToken sets the API token sent on every request.
func WithToken(token string) Option {
	return platform.WithToken(token)
}

// WithPassword configures password login, used when no token is set.
func WithPassword(password string) Option {
	return platform.WithPassword(password)
}

// WithHTTPClient overrides the HTTP client used for server requests.
func WithHTTPClient(client *http.Client) Option {
	return platform.WithHTTPClient(client)
}

// WithLogger sets the logger for the session and adapters.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithDriver allows injecting a custom backend driver.
func WithDriver(driver core.Driver) Option {
	return platform.WithDriver(driver)
}

// WithIgnore sets glob patterns for files the tree adapter skips.
func WithIgnore(patterns ...string) Option {
	return platform.WithIgnore(patterns...)
}

// --- Factory ---

// Connect builds a session against the given server URL.
func Connect(ctx context.Context, serverURL string, opts ...Option) (*Session, error) {
	return platform.Connect(ctx, serverURL, opts...)
}

// OpenTree builds a directory mirror for a session.
func OpenTree(session *Session, dir string, opts ...Option) *Tree {
	return platform.OpenTree(session, dir, opts...)
}

// --- Operations ---

// Export mirrors a server subtree into a local directory and returns
// the number of notes written.
func Export(ctx context.Context, serverURL, noteID, dir string, opts ...Option) (int, error) {
	return platform.Export(ctx, serverURL, noteID, dir, opts...)
}

// Import reads a local directory into the server under the given
// parent note, flushes, and returns the number of files read.
func Import(ctx context.Context, serverURL, dir, parentID string, opts ...Option) (int, error) {
	return platform.Import(ctx, serverURL, dir, parentID, opts...)
}

// --- Workspace ---

// WorkspaceConfig describes a mirrored workspace directory.
type WorkspaceConfig = platform.Config

// FindWorkspaceRoot recursively looks upwards for a workspace marker.
func FindWorkspaceRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}

// LoadWorkspaceConfig reads the workspace configuration from dir.
func LoadWorkspaceConfig(dir string) (*WorkspaceConfig, error) {
	return platform.LoadConfig(dir)
}

// SaveWorkspaceConfig writes the workspace configuration into dir.
func SaveWorkspaceConfig(dir string, cfg *WorkspaceConfig) error {
	return platform.SaveConfig(dir, cfg)
}
