package strata

import (
	"context"
	"fmt"

	"github.com/aretw0/strata/pkg/core"
)

var (
	noteFields   = []string{"title", "type", "mime"}
	noteDefaults = map[string]any{
		"title": "new note",
		"type":  "text",
		"mime":  "text/html",
	}
)

// Note is a node in the hierarchical note graph. It owns its attributes
// and is linked to parents and children through branches.
type Note struct {
	entity

	ownedAttributes []*Attribute
	parentBranches  []*Branch
	childBranches   []*Branch

	content *contentExtension
}

func newNote(s *Session, id string, placeholder bool) *Note {
	n := &Note{}
	n.entity = entity{
		session:     s,
		kind:        core.KindNote,
		id:          id,
		state:       core.StateClean,
		model:       newModel(noteFields, noteDefaults),
		placeholder: placeholder,
	}
	n.content = &contentExtension{note: n}
	n.extensions = []extension{n.content}
	return n
}

// Title returns the note title.
func (n *Note) Title() string { return n.model.get("title").(string) }

// SetTitle stages a new title. No remote call is made until flush.
func (n *Note) SetTitle(title string) {
	n.setField("title", title)
}

// Type returns the note type (e.g. "text", "code", "book").
func (n *Note) Type() string { return n.model.get("type").(string) }

func (n *Note) SetType(noteType string) {
	n.setField("type", noteType)
}

// Mime returns the content MIME type.
func (n *Note) Mime() string { return n.model.get("mime").(string) }

func (n *Note) SetMime(mime string) {
	n.setField("mime", mime)
}

func (n *Note) setField(field string, value any) {
	if n.state == core.StateDelete {
		return
	}
	n.model.set(field, value)
	n.checkState(n)
}

// Content returns the note body, fetching it from the remote on first
// access for a clean note.
func (n *Note) Content(ctx context.Context) ([]byte, error) {
	return n.content.get(ctx)
}

// SetContent stages a new note body. Content is an extension payload: it
// is flushed after the note's primary fields, since a new note only has
// a confirmed id after its CREATE succeeded.
func (n *Note) SetContent(data []byte) {
	if n.state == core.StateDelete {
		return
	}
	n.content.set(data)
	n.checkState(n)
}

// Attributes returns the attributes owned by this note, in position order.
func (n *Note) Attributes() []*Attribute {
	out := make([]*Attribute, len(n.ownedAttributes))
	copy(out, n.ownedAttributes)
	return out
}

// ParentBranches returns the branches linking this note to its parents.
func (n *Note) ParentBranches() []*Branch {
	out := make([]*Branch, len(n.parentBranches))
	copy(out, n.parentBranches)
	return out
}

// ChildBranches returns the branches linking this note to its children.
func (n *Note) ChildBranches() []*Branch {
	out := make([]*Branch, len(n.childBranches))
	copy(out, n.childBranches)
	return out
}

// NewLabel creates a label attribute owned by this note, pending CREATE.
func (n *Note) NewLabel(name, value string) *Attribute {
	a := n.session.newAttribute(n, core.AttributeLabel, name)
	a.model.set("value", value)
	a.model.set("position", n.nextAttributePosition())
	n.ownedAttributes = append(n.ownedAttributes, a)
	return a
}

// NewRelation creates a relation attribute owned by this note and
// targeting another note, pending CREATE.
func (n *Note) NewRelation(name string, target *Note) *Attribute {
	a := n.session.newAttribute(n, core.AttributeRelation, name)
	a.target = target
	a.model.set("position", n.nextAttributePosition())
	n.ownedAttributes = append(n.ownedAttributes, a)
	return a
}

// AddChild links an existing note as a child of this note with a new
// branch, pending CREATE.
func (n *Note) AddChild(child *Note) *Branch {
	b := n.session.newBranch(n, child)
	b.model.set("note_position", n.nextChildPosition())
	n.childBranches = append(n.childBranches, b)
	child.parentBranches = append(child.parentBranches, b)
	return b
}

// NewChildNote creates a new note and a branch placing it under this
// note, both pending CREATE.
func (n *Note) NewChildNote(title string) *Note {
	child := n.session.NewNote(title)
	n.AddChild(child)
	return child
}

// Delete marks the note for pending delete, cascading to its owned
// attributes and incident branches so that they are removed in the same
// flush, in dependency order.
func (n *Note) Delete() {
	if n.state == core.StateDelete {
		return
	}
	for _, a := range n.ownedAttributes {
		a.Delete()
	}
	for _, b := range n.parentBranches {
		b.Delete()
	}
	for _, b := range n.childBranches {
		b.Delete()
	}
	n.markDelete(n)
}

func (n *Note) nextAttributePosition() int {
	return (len(n.ownedAttributes) + 1) * 10
}

func (n *Note) nextChildPosition() int {
	return (len(n.childBranches) + 1) * 10
}

func (n *Note) dependencies() []Entity {
	var deps []Entity
	if n.state == core.StateDelete {
		// Owned attributes and incident branches must be deleted first.
		for _, a := range n.ownedAttributes {
			if a.state == core.StateDelete {
				deps = append(deps, a)
			}
		}
		for _, b := range n.parentBranches {
			if b.state == core.StateDelete {
				deps = append(deps, b)
			}
		}
		for _, b := range n.childBranches {
			if b.state == core.StateDelete {
				deps = append(deps, b)
			}
		}
		return deps
	}
	// A note must come after the parents anchoring it.
	for _, b := range n.parentBranches {
		if b.parent != nil {
			deps = append(deps, b.parent)
		}
	}
	return deps
}

func (n *Note) flushCheck() []string {
	var problems []string
	switch n.state {
	case core.StateCreate:
		if n.id != RootID && len(n.parentBranches) == 0 {
			problems = append(problems, fmt.Sprintf("%s has no parent branch; new notes must be anchored to the tree", describe(n)))
		}
	case core.StateDelete:
		if n.id == RootID {
			problems = append(problems, "root note cannot be deleted")
		}
	}
	return problems
}

func (n *Note) flushPrimary(ctx context.Context) error {
	driver := n.session.driver
	switch n.state {
	case core.StateCreate:
		rec := &core.NoteRecord{
			Title: n.Title(),
			Type:  n.Type(),
			Mime:  n.Mime(),
		}
		if !n.placeholder {
			rec.NoteID = n.id
		}
		confirmed, err := driver.CreateNote(ctx, rec)
		if err != nil {
			return n.commitError(core.OpCreate, err)
		}
		n.setID(n, confirmed.NoteID)
		n.model.setupBacking(noteRecordFields(confirmed))
	case core.StateUpdate:
		if !n.model.fieldsChanged() {
			// Only extensions changed; nothing to patch.
			return nil
		}
		confirmed, err := driver.PatchNote(ctx, n.id, n.model.diff(false))
		if err != nil {
			return n.commitError(core.OpUpdate, err)
		}
		n.model.setupBacking(noteRecordFields(confirmed))
	case core.StateDelete:
		if err := driver.DeleteNote(ctx, n.id); err != nil {
			return n.commitError(core.OpDelete, err)
		}
	}
	return nil
}

func (n *Note) associated() []Entity {
	var out []Entity
	for _, a := range n.ownedAttributes {
		out = append(out, a)
	}
	for _, b := range n.parentBranches {
		out = append(out, b)
	}
	for _, b := range n.childBranches {
		out = append(out, b)
	}
	return out
}

func noteRecordFields(rec *core.NoteRecord) map[string]any {
	return map[string]any{
		"title": rec.Title,
		"type":  rec.Type,
		"mime":  rec.Mime,
	}
}

// contentExtension dirty-tracks the note body independently of the
// note's scalar fields.
type contentExtension struct {
	note    *Note
	data    []byte
	dirty   bool
	fetched bool
}

func (c *contentExtension) get(ctx context.Context) ([]byte, error) {
	if c.dirty || c.fetched {
		return c.data, nil
	}
	if c.note.state == core.StateCreate {
		return nil, nil
	}
	data, err := c.note.session.driver.GetContent(ctx, c.note.id)
	if err != nil {
		return nil, fmt.Errorf("fetch content of note %q: %w", c.note.id, err)
	}
	c.data = data
	c.fetched = true
	return c.data, nil
}

func (c *contentExtension) set(data []byte) {
	c.data = data
	c.dirty = true
}

func (c *contentExtension) changed() bool { return c.dirty }

func (c *contentExtension) flush(ctx context.Context) error {
	if err := c.note.session.driver.PutContent(ctx, c.note.id, c.data); err != nil {
		return err
	}
	c.dirty = false
	c.fetched = true
	return nil
}
