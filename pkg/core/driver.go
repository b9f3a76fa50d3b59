package core

import "context"

// Driver is the per-kind adapter translating entity commits into remote
// calls. Adhering to this interface keeps the session engine independent
// of the transport (HTTP ETAPI, in-memory fake, future backends).
//
// Create calls return the server-confirmed record, including the assigned
// id when the submitted one was a placeholder. Patch calls receive only
// the changed fields. Fetch-style calls return ErrNotFound when the
// entity does not exist; a driver may retry those, but must never retry
// Create/Patch/Delete on its own.
type Driver interface {
	GetNote(ctx context.Context, noteID string) (*NoteRecord, error)
	CreateNote(ctx context.Context, rec *NoteRecord) (*NoteRecord, error)
	PatchNote(ctx context.Context, noteID string, fields map[string]any) (*NoteRecord, error)
	DeleteNote(ctx context.Context, noteID string) error

	GetAttribute(ctx context.Context, attributeID string) (*AttributeRecord, error)
	CreateAttribute(ctx context.Context, rec *AttributeRecord) (*AttributeRecord, error)
	PatchAttribute(ctx context.Context, attributeID string, fields map[string]any) (*AttributeRecord, error)
	DeleteAttribute(ctx context.Context, attributeID string) error

	GetBranch(ctx context.Context, branchID string) (*BranchRecord, error)
	CreateBranch(ctx context.Context, rec *BranchRecord) (*BranchRecord, error)
	PatchBranch(ctx context.Context, branchID string, fields map[string]any) (*BranchRecord, error)
	DeleteBranch(ctx context.Context, branchID string) error

	// GetContent and PutContent move the note body, which is flushed as an
	// extension after the note's primary fields.
	GetContent(ctx context.Context, noteID string) ([]byte, error)
	PutContent(ctx context.Context, noteID string, data []byte) error

	// RefreshNoteOrdering asks the remote to re-read child branch positions
	// of the given parent note. Best-effort; invoked after a flush that
	// changed positions.
	RefreshNoteOrdering(ctx context.Context, parentNoteID string) error
}

// TreeLister is an optional Driver upgrade for backends that can
// enumerate a note's surroundings. Subtree walks (export, recursive
// fetch) need it; plain commit traffic does not.
type TreeLister interface {
	ListChildBranches(ctx context.Context, parentNoteID string) ([]*BranchRecord, error)
	ListNoteAttributes(ctx context.Context, noteID string) ([]*AttributeRecord, error)
}
