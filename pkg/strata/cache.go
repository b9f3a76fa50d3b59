package strata

import (
	"context"
	"fmt"
	"sort"

	"github.com/aretw0/strata/pkg/core"
)

// Cache combines the session-scoped entity registry with the unit-of-work
// collection. It maintains the changes made by the user and synchronizes
// them with the remote upon flush.
type Cache struct {
	session  *Session
	entities map[string]Entity
	dirty    map[Entity]struct{}
}

func newCache(s *Session) *Cache {
	return &Cache{
		session:  s,
		entities: make(map[string]Entity),
		dirty:    make(map[Entity]struct{}),
	}
}

// add registers an entity under its id. Invoked as soon as the id is set.
func (c *Cache) add(e Entity) {
	c.entities[e.ID()] = e
}

// get returns the tracked entity with the given id, or nil.
func (c *Cache) get(id string) Entity {
	return c.entities[id]
}

// tracked reports whether e is still registered in this cache. An entity
// evicted after a delete (or an abandoned create) is no longer tracked.
func (c *Cache) tracked(e Entity) bool {
	return c.entities[e.ID()] == e
}

// rekey moves an entity from its placeholder id to the server-assigned
// one.
func (c *Cache) rekey(oldID string, e Entity) {
	if c.entities[oldID] == e {
		delete(c.entities, oldID)
	}
	c.entities[e.ID()] = e
}

func (c *Cache) markDirty(e Entity) {
	c.dirty[e] = struct{}{}
}

func (c *Cache) unmarkDirty(e Entity) {
	delete(c.dirty, e)
}

// evict removes an entity from tracking entirely, together with its
// associated entities. Terminal: used after a committed delete and for
// abandoned creates.
func (c *Cache) evict(e Entity) {
	remove := func(x Entity) {
		if c.entities[x.ID()] == x {
			delete(c.entities, x.ID())
		}
		delete(c.dirty, x)
	}
	remove(e)
	for _, assoc := range e.associated() {
		remove(assoc)
	}
}

// dirtyEntities returns the current dirty set in insertion order.
func (c *Cache) dirtyEntities() []Entity {
	out := make([]Entity, 0, len(c.dirty))
	for e := range c.dirty {
		out = append(out, e)
	}
	sortBySeq(out)
	return out
}

func sortBySeq(entities []Entity) {
	sort.Slice(entities, func(i, j int) bool {
		return entities[i].base().seq < entities[j].base().seq
	})
}

// flush validates the pending set, resolves commit order and dispatches
// each entity to the driver. See Session.Flush for the public contract.
func (c *Cache) flush(ctx context.Context, entities []Entity) error {
	var pending []Entity
	if entities == nil {
		pending = c.dirtyEntities()
	} else {
		for _, e := range entities {
			// An abandoned create is already evicted; a stale reference
			// to it is not flushable.
			if e.base().isDirty() && c.tracked(e) {
				pending = append(pending, e)
			}
		}
	}

	set := make(map[Entity]struct{}, len(pending))
	for _, e := range pending {
		set[e] = struct{}{}
	}

	// First pass validation of the entities provided by the user.
	if err := c.validate(pending); err != nil {
		return err
	}

	// Recursively merge in all dirty dependencies, then validate the
	// newly discovered ones.
	before := len(pending)
	for _, e := range pending[:before] {
		pending = c.gather(e, set, pending)
	}
	if err := c.validate(pending[before:]); err != nil {
		return err
	}

	if len(pending) == 0 {
		c.session.logger().Debug("no dirty entities to flush")
		return nil
	}
	sortBySeq(pending)

	c.session.logger().Debug("flushing entities", "count", len(pending), "summary", flushSummary(pending))

	graph, err := buildGraph(pending)
	if err != nil {
		return err
	}

	// Notes whose child ordering changes need a refresh call afterwards.
	refresh := orderingRefreshNotes(pending)

	if err := c.runSchedule(ctx, graph); err != nil {
		return err
	}

	for _, note := range refresh {
		if err := c.session.driver.RefreshNoteOrdering(ctx, note.ID()); err != nil {
			c.session.logger().Warn("refresh note ordering failed", "note", note.ID(), "error", err)
		}
	}
	return nil
}

// runSchedule drains the graph, committing entities as their
// dependencies resolve. A schedule that stalls with entities remaining
// reports a SchedulerError rather than looping forever.
func (c *Cache) runSchedule(ctx context.Context, graph *depGraph) error {
	sched := newScheduler(graph)
	for sched.Active() {
		ready := sched.Ready()
		if len(ready) == 0 {
			return &core.SchedulerError{Remaining: sched.Remaining()}
		}
		for _, e := range ready {
			// A committed delete evicts its associated entities; skip any
			// that were scheduled before the eviction.
			if e.base().isDirty() && c.tracked(e) {
				if err := c.commit(ctx, e); err != nil {
					return err
				}
			}
			sched.Done(e)
		}
	}
	return nil
}

// commit dispatches a single entity's state transition to the driver and
// settles its local state on success.
func (c *Cache) commit(ctx context.Context, e Entity) error {
	base := e.base()
	c.session.logger().Debug("committing", "entity", describe(e))

	isDelete := base.state == core.StateDelete

	if err := e.flushPrimary(ctx); err != nil {
		return err
	}

	if isDelete {
		c.evict(e)
		return nil
	}

	base.setClean(e)

	// Extensions flush only after the primary commit, since they may need
	// an id that exists only after CREATE. An extension failure does not
	// roll back the primary commit; the extension stays dirty.
	for _, ext := range base.extensions {
		if !ext.changed() {
			continue
		}
		if err := ext.flush(ctx); err != nil {
			// The primary commit stands; keep the entity pending so a
			// later flush retries the extension.
			base.setDirty(e, core.StateUpdate)
			return base.commitError(core.OpContent, err)
		}
	}
	return nil
}

// validate runs flushCheck on every entity and aggregates problems into
// a single ValidationError. Raised before any network call.
func (c *Cache) validate(entities []Entity) error {
	var problems []string
	for _, e := range entities {
		if e.Session() != c.session {
			problems = append(problems, fmt.Sprintf("%s belongs to a different session", describe(e)))
			continue
		}
		problems = append(problems, e.flushCheck()...)
	}
	if len(problems) > 0 {
		return &core.ValidationError{Problems: problems}
	}
	return nil
}

// gather recursively adds an entity's dirty dependencies to the pending
// set.
func (c *Cache) gather(e Entity, set map[Entity]struct{}, pending []Entity) []Entity {
	for _, dep := range e.dependencies() {
		if _, ok := set[dep]; ok {
			continue
		}
		// Evicted entities (abandoned creates) stay DELETE forever but
		// must never reach the remote.
		if !dep.base().isDirty() || !c.tracked(dep) {
			continue
		}
		set[dep] = struct{}{}
		pending = append(pending, dep)
		pending = c.gather(dep, set, pending)
	}
	return pending
}

// orderingRefreshNotes returns parents whose child branch positions are
// changing in this flush.
func orderingRefreshNotes(pending []Entity) []*Note {
	seen := make(map[*Note]struct{})
	var notes []*Note
	for _, e := range pending {
		b, ok := e.(*Branch)
		if !ok || b.state == core.StateDelete || b.parent == nil {
			continue
		}
		if !b.model.isFieldChanged("note_position") {
			continue
		}
		if b.parent.state == core.StateDelete {
			continue
		}
		if _, dup := seen[b.parent]; !dup {
			seen[b.parent] = struct{}{}
			notes = append(notes, b.parent)
		}
	}
	return notes
}

// flushSummary renders create/update/delete counts per entity kind.
func flushSummary(pending []Entity) string {
	type counts struct{ create, update, del int }
	index := map[core.Kind]*counts{
		core.KindNote:      {},
		core.KindAttribute: {},
		core.KindBranch:    {},
	}
	for _, e := range pending {
		c := index[e.Kind()]
		switch e.State() {
		case core.StateCreate:
			c.create++
		case core.StateUpdate:
			c.update++
		case core.StateDelete:
			c.del++
		}
	}
	fmtKind := func(k core.Kind) string {
		c := index[k]
		return fmt.Sprintf("%d/%d/%d %ss", c.create, c.update, c.del, k)
	}
	return fmt.Sprintf("(create/update/delete) %s, %s, %s",
		fmtKind(core.KindNote), fmtKind(core.KindAttribute), fmtKind(core.KindBranch))
}
