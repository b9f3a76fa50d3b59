package strata

import (
	"context"
	"fmt"
)

// Model is the field-level staging area for one entity. It tracks which
// scalar fields changed since the last successful commit, keeping the
// last known remote values (backing) separate from local modifications
// (working). The entity state flag and the model dirty state are related
// but distinct: an UPDATE entity whose fields are reverted to the backing
// values becomes clean again.
type Model struct {
	fields   []string
	defaults map[string]any

	// backing holds the last values confirmed by the remote, nil if the
	// entity has never been fetched or created.
	backing map[string]any
	// working holds locally modified values, nil if no local changes.
	working map[string]any

	exists bool
}

func newModel(fields []string, defaults map[string]any) *Model {
	return &Model{
		fields:   fields,
		defaults: defaults,
	}
}

// setupCreate initializes working values for a brand-new entity.
func (m *Model) setupCreate() {
	m.exists = false
	m.working = make(map[string]any, len(m.fields))
	for _, f := range m.fields {
		m.working[f] = m.defaults[f]
	}
}

// setupBacking installs values confirmed by the remote and clears any
// local modifications. Used both when fetching and after a successful
// commit.
func (m *Model) setupBacking(values map[string]any) {
	m.backing = make(map[string]any, len(m.fields))
	for _, f := range m.fields {
		m.backing[f] = values[f]
	}
	m.working = nil
	m.exists = true
}

// get returns the field value, with working state taking precedence over
// the backing state.
func (m *Model) get(field string) any {
	if m.working != nil {
		if v, ok := m.working[field]; ok {
			return v
		}
	}
	if m.backing != nil {
		return m.backing[field]
	}
	return nil
}

// set stores a value and marks the field dirty. It is a no-op on the
// remote until flush.
func (m *Model) set(field string, value any) {
	if m.working == nil {
		// Lazily branch off a copy of the backing values.
		m.working = make(map[string]any, len(m.fields))
		for _, f := range m.fields {
			m.working[f] = m.backing[f]
		}
	}
	m.working[field] = value
}

// fieldsChanged reports whether any field differs from the backing state.
// A never-committed entity always counts as changed.
func (m *Model) fieldsChanged() bool {
	if m.working == nil {
		return false
	}
	if m.backing == nil {
		return true
	}
	for _, f := range m.fields {
		if m.working[f] != m.backing[f] {
			return true
		}
	}
	return false
}

func (m *Model) isFieldChanged(field string) bool {
	if m.working == nil || m.backing == nil {
		return false
	}
	return m.working[field] != m.backing[field]
}

// diff returns the minimal set of changed field/value pairs for an UPDATE
// payload, or the full field set for a CREATE payload.
func (m *Model) diff(create bool) map[string]any {
	out := make(map[string]any)
	for _, f := range m.fields {
		if create {
			out[f] = m.get(f)
			continue
		}
		if m.working != nil && m.working[f] != m.backing[f] {
			out[f] = m.working[f]
		}
	}
	return out
}

func (m *Model) String() string {
	if m.working == nil {
		return fmt.Sprintf("%v", m.backing)
	}
	return fmt.Sprintf("%v -> %v", m.backing, m.working)
}

// extension is an auxiliary payload flushed independently after the
// entity's primary fields (e.g. note content). Each extension is
// dirty-tracked on its own, since it may require an id that only exists
// after the primary CREATE succeeded.
type extension interface {
	changed() bool
	flush(ctx context.Context) error
}
