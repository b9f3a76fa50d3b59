package platform

import (
	"context"
	"fmt"

	"github.com/aretw0/strata/pkg/strata"
)

// Export mirrors a server subtree into a local directory.
// It returns the number of notes written.
func Export(ctx context.Context, serverURL, noteID, dir string, opts ...Option) (int, error) {
	session, err := Connect(ctx, serverURL, opts...)
	if err != nil {
		return 0, err
	}
	defer session.Close()

	root, err := fetchRoot(ctx, session, noteID)
	if err != nil {
		return 0, err
	}

	tree := OpenTree(session, dir, opts...)
	return tree.Export(ctx, root)
}

// Import reads a local directory into the server under the given
// parent note and flushes the resulting changes.
// It returns the number of files read.
func Import(ctx context.Context, serverURL, dir, parentID string, opts ...Option) (int, error) {
	session, err := Connect(ctx, serverURL, opts...)
	if err != nil {
		return 0, err
	}
	defer session.Close()

	parent, err := fetchRoot(ctx, session, parentID)
	if err != nil {
		return 0, err
	}

	tree := OpenTree(session, dir, opts...)
	count, err := tree.Import(ctx, parent)
	if err != nil {
		return count, err
	}
	if err := session.Flush(ctx); err != nil {
		return count, fmt.Errorf("flush imported changes: %w", err)
	}
	return count, nil
}

func fetchRoot(ctx context.Context, session *strata.Session, noteID string) (*strata.Note, error) {
	if noteID == "" || noteID == "root" {
		return session.Root(ctx)
	}
	return session.Note(ctx, noteID)
}
