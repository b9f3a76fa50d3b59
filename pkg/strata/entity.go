package strata

import (
	"context"
	"fmt"

	"github.com/aretw0/strata/pkg/core"
)

// Entity is a trackable domain object: a *Note, *Attribute or *Branch.
// Every entity is exclusively owned by one session; an entity not bound
// to a session cannot be flushed.
type Entity interface {
	// ID returns the entity id. Before the first commit of a new entity
	// this is a locally assigned placeholder (or a user-supplied
	// deterministic id); after CREATE it is the server-confirmed id.
	ID() string
	Kind() core.Kind
	State() core.State
	Session() *Session

	// Delete marks the entity for pending delete, overriding prior
	// pending changes. A never-flushed CREATE is discarded locally
	// without a network call.
	Delete()

	base() *entity
	// dependencies returns entities that must be committed before this
	// one, given its current state.
	dependencies() []Entity
	// flushCheck reports validation problems that must block the flush.
	flushCheck() []string
	// flushPrimary dispatches the primary commit to the session driver.
	flushPrimary(ctx context.Context) error
	// associated returns entities evicted from tracking together with
	// this one when it is deleted.
	associated() []Entity
}

// entity is the embedded base carrying lifecycle state shared by all
// entity kinds.
type entity struct {
	session *Session
	kind    core.Kind
	id      string
	state   core.State
	model   *Model

	// seq is the insertion order within the session, used by the
	// scheduler to break ties deterministically.
	seq int

	// placeholder is true while the id is locally assigned and not yet
	// confirmed by the remote.
	placeholder bool

	extensions []extension
}

func (e *entity) base() *entity { return e }

func (e *entity) ID() string { return e.id }

func (e *entity) Kind() core.Kind { return e.kind }

func (e *entity) State() core.State { return e.state }

func (e *entity) Session() *Session { return e.session }

func (e *entity) isDirty() bool { return e.state != core.StateClean }

// checkState reconciles the entity state with the model after a field
// mutation. Clean entities with changes become UPDATE; UPDATE entities
// whose changes were reverted become clean again. CREATE stays CREATE.
func (e *entity) checkState(self Entity) {
	switch e.state {
	case core.StateClean:
		if e.model.fieldsChanged() || e.extensionChanged() {
			e.setDirty(self, core.StateUpdate)
		}
	case core.StateUpdate:
		if !e.model.fieldsChanged() && !e.extensionChanged() {
			e.setClean(self)
		}
	case core.StateCreate:
		// already pending creation
	case core.StateDelete:
		// setters reject writes on deleted entities before this point
	}
}

func (e *entity) extensionChanged() bool {
	for _, ext := range e.extensions {
		if ext.changed() {
			return true
		}
	}
	return false
}

func (e *entity) setDirty(self Entity, state core.State) {
	if e.state == state {
		return
	}
	if e.state == core.StateClean {
		e.session.cache.markDirty(self)
	}
	e.state = state
}

func (e *entity) setClean(self Entity) {
	e.state = core.StateClean
	e.session.cache.unmarkDirty(self)
}

// markDelete implements the shared part of Delete. A CREATE entity that
// never reached the remote is evicted immediately, together with any
// dependents that can no longer exist.
func (e *entity) markDelete(self Entity) {
	if e.state == core.StateDelete {
		return
	}
	if e.state == core.StateCreate {
		e.state = core.StateDelete
		e.session.cache.evict(self)
		return
	}
	e.setDirty(self, core.StateDelete)
}

// commitError wraps a driver failure for this entity.
func (e *entity) commitError(op core.Op, err error) error {
	return &core.CommitError{Kind: e.kind, ID: e.id, Op: op, Err: err}
}

// setID installs the server-confirmed id, re-keying the session cache if
// it differs from the local placeholder.
func (e *entity) setID(self Entity, id string) {
	if id == "" || id == e.id {
		e.placeholder = false
		return
	}
	old := e.id
	e.id = id
	e.placeholder = false
	e.session.cache.rekey(old, self)
}

func describe(e Entity) string {
	return fmt.Sprintf("%s %q (%s)", e.Kind(), e.ID(), e.State())
}
