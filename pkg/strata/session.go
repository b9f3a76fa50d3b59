package strata

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/strata/pkg/core"
)

// RootID is the id of the root note, which always exists on the remote
// and can be neither created nor deleted.
const RootID = "root"

// Session tracks in-memory changes to a note graph and commits them to a
// remote store through a core.Driver. Entities are exclusively owned by
// the session that created or fetched them; there is deliberately no
// process-global default session, the owning session is always explicit.
type Session struct {
	driver core.Driver
	log    *slog.Logger
	cache  *Cache
	newID  func() string

	// flushMu makes Flush single-flight; a session never runs two
	// flushes concurrently.
	flushMu sync.Mutex

	seq    int
	closed bool
}

// NewSession creates a session bound to the given driver.
func NewSession(driver core.Driver, opts ...Option) *Session {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	s := &Session{
		driver: driver,
		log:    o.logger,
		newID:  o.idFunc,
	}
	if s.newID == nil {
		s.newID = newEntityID
	}
	s.cache = newCache(s)
	return s
}

func (s *Session) logger() *slog.Logger {
	if s.log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.log
}

// Close bars further use of the session. Pending changes that were not
// flushed are discarded.
func (s *Session) Close() error {
	if s.closed {
		return core.ErrSessionClosed
	}
	s.closed = true
	s.logger().Debug("session closed", "entities", len(s.cache.entities), "dirty", len(s.cache.dirty))
	return nil
}

// Flush commits the given entities and their dirty dependencies, or the
// whole pending set when called without arguments.
//
// Validation and dependency analysis run before any network call; the
// commit loop is strictly sequential and aborts on the first failure,
// leaving already-committed entities in their new state and the rest
// untouched. Because the remote API has no multi-object transactions, a
// partial failure is surfaced, not rolled back: fix the cause, inspect
// entity states and flush again.
func (s *Session) Flush(ctx context.Context, entities ...Entity) error {
	if s.closed {
		return core.ErrSessionClosed
	}
	if !s.flushMu.TryLock() {
		return core.ErrFlushInProgress
	}
	defer s.flushMu.Unlock()

	if len(entities) == 0 {
		return s.cache.flush(ctx, nil)
	}
	return s.cache.flush(ctx, entities)
}

// Dirty returns the entities with pending changes, in insertion order.
func (s *Session) Dirty() []Entity {
	return s.cache.dirtyEntities()
}

// NewNote creates a note pending CREATE with a placeholder id. The note
// must be anchored under a parent (AddChild) before it can be flushed.
func (s *Session) NewNote(title string) *Note {
	return s.createNote(s.newID(), true, title)
}

// NewNoteWithID creates a note pending CREATE under a deterministic,
// user-supplied id.
func (s *Session) NewNoteWithID(id, title string) *Note {
	return s.createNote(id, false, title)
}

func (s *Session) createNote(id string, placeholder bool, title string) *Note {
	n := newNote(s, id, placeholder)
	n.model.setupCreate()
	if title != "" {
		n.model.set("title", title)
	}
	s.track(n, core.StateCreate)
	return n
}

func (s *Session) newAttribute(owner *Note, attrType core.AttributeType, name string) *Attribute {
	a := newAttribute(s, owner, attrType, name, s.newID(), true)
	a.model.setupCreate()
	s.track(a, core.StateCreate)
	return a
}

func (s *Session) newBranch(parent, child *Note) *Branch {
	b := newBranch(s, parent, child, s.newID(), true)
	b.model.setupCreate()
	s.track(b, core.StateCreate)
	return b
}

// track registers a new entity with the cache and the dirty set.
func (s *Session) track(e Entity, state core.State) {
	base := e.base()
	s.seq++
	base.seq = s.seq
	base.state = state
	s.cache.add(e)
	if state != core.StateClean {
		s.cache.markDirty(e)
	}
}

// Root fetches the root note.
func (s *Session) Root(ctx context.Context) (*Note, error) {
	return s.Note(ctx, RootID)
}

// Note returns the tracked note with the given id, fetching it from the
// remote when not yet cached. Fetched entities start clean.
func (s *Session) Note(ctx context.Context, id string) (*Note, error) {
	if s.closed {
		return nil, core.ErrSessionClosed
	}
	if e := s.cache.get(id); e != nil {
		n, ok := e.(*Note)
		if !ok {
			return nil, fmt.Errorf("entity %q is a %s, not a note", id, e.Kind())
		}
		return n, nil
	}
	rec, err := s.driver.GetNote(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch note %q: %w", id, err)
	}
	n := newNote(s, rec.NoteID, false)
	n.model.setupBacking(noteRecordFields(rec))
	s.track(n, core.StateClean)
	return n, nil
}

// Attribute returns the tracked attribute with the given id, fetching it
// (and its owning note) from the remote when not yet cached.
func (s *Session) Attribute(ctx context.Context, id string) (*Attribute, error) {
	if s.closed {
		return nil, core.ErrSessionClosed
	}
	if e := s.cache.get(id); e != nil {
		a, ok := e.(*Attribute)
		if !ok {
			return nil, fmt.Errorf("entity %q is a %s, not an attribute", id, e.Kind())
		}
		return a, nil
	}
	rec, err := s.driver.GetAttribute(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch attribute %q: %w", id, err)
	}
	owner, err := s.Note(ctx, rec.NoteID)
	if err != nil {
		return nil, err
	}
	a := newAttribute(s, owner, rec.Type, rec.Name, rec.AttributeID, false)
	a.model.setupBacking(attributeRecordFields(rec))
	if rec.Type == core.AttributeRelation && rec.Value != "" {
		target, err := s.Note(ctx, rec.Value)
		if err != nil {
			return nil, err
		}
		a.target = target
	}
	owner.ownedAttributes = append(owner.ownedAttributes, a)
	s.track(a, core.StateClean)
	return a, nil
}

// Branch returns the tracked branch with the given id, fetching it (and
// its endpoint notes) from the remote when not yet cached.
func (s *Session) Branch(ctx context.Context, id string) (*Branch, error) {
	if s.closed {
		return nil, core.ErrSessionClosed
	}
	if e := s.cache.get(id); e != nil {
		b, ok := e.(*Branch)
		if !ok {
			return nil, fmt.Errorf("entity %q is a %s, not a branch", id, e.Kind())
		}
		return b, nil
	}
	rec, err := s.driver.GetBranch(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch branch %q: %w", id, err)
	}
	parent, err := s.Note(ctx, rec.ParentNoteID)
	if err != nil {
		return nil, err
	}
	child, err := s.Note(ctx, rec.NoteID)
	if err != nil {
		return nil, err
	}
	b := newBranch(s, parent, child, rec.BranchID, false)
	b.model.setupBacking(branchRecordFields(rec))
	parent.childBranches = append(parent.childBranches, b)
	child.parentBranches = append(child.parentBranches, b)
	s.track(b, core.StateClean)
	return b, nil
}
