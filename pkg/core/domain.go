// Package core defines the domain types and ports of strata.
// It is storage- and transport-agnostic: the session engine in pkg/strata
// and the adapters (etapi, fs) meet only through the types declared here.
package core

// Kind identifies the entity kind of a tracked object.
type Kind string

const (
	KindNote      Kind = "note"
	KindAttribute Kind = "attribute"
	KindBranch    Kind = "branch"
)

// State is the lifecycle state of a tracked entity.
type State string

const (
	// StateClean means no pending changes; the entity mirrors the remote.
	StateClean State = "clean"
	// StateCreate means the entity is new and not yet on the remote.
	StateCreate State = "create"
	// StateUpdate means the entity exists remotely and has local changes.
	StateUpdate State = "update"
	// StateDelete means the entity is marked for removal.
	StateDelete State = "delete"
)

// AttributeType distinguishes the two attribute flavors.
type AttributeType string

const (
	AttributeLabel    AttributeType = "label"
	AttributeRelation AttributeType = "relation"
)

// NoteRecord is the wire-agnostic representation of a note's scalar fields.
type NoteRecord struct {
	NoteID          string `json:"noteId" yaml:"id"`
	Title           string `json:"title" yaml:"title"`
	Type            string `json:"type" yaml:"type"`
	Mime            string `json:"mime" yaml:"mime"`
	UTCDateModified string `json:"utcDateModified,omitempty" yaml:"-"`
}

// AttributeRecord represents a label or relation owned by a note.
// For relations, Value holds the target note id.
type AttributeRecord struct {
	AttributeID   string        `json:"attributeId" yaml:"id"`
	NoteID        string        `json:"noteId" yaml:"-"`
	Type          AttributeType `json:"type" yaml:"type"`
	Name          string        `json:"name" yaml:"name"`
	Value         string        `json:"value" yaml:"value,omitempty"`
	IsInheritable bool          `json:"isInheritable" yaml:"inheritable,omitempty"`
	Position      int           `json:"position" yaml:"position,omitempty"`
}

// BranchRecord represents a parent/child edge in the note tree.
// NoteID is the child; ParentNoteID the parent.
type BranchRecord struct {
	BranchID     string `json:"branchId" yaml:"id"`
	NoteID       string `json:"noteId" yaml:"-"`
	ParentNoteID string `json:"parentNoteId" yaml:"-"`
	Prefix       string `json:"prefix" yaml:"prefix,omitempty"`
	IsExpanded   bool   `json:"isExpanded" yaml:"expanded,omitempty"`
	NotePosition int    `json:"notePosition" yaml:"position,omitempty"`
}

// EventType represents the type of change observed in a watched tree.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change in a watched export tree.
type Event struct {
	Type      EventType
	ID        string
	Timestamp int64 // Unix timestamp
}

// String implements lifecycle.Event so events can feed a supervisor.
func (e Event) String() string {
	return string(e.Type) + " " + e.ID
}
