package strata

import (
	"context"
	"fmt"

	"github.com/aretw0/strata/pkg/core"
)

var (
	attributeFields   = []string{"value", "is_inheritable", "position"}
	attributeDefaults = map[string]any{
		"value":          "",
		"is_inheritable": false,
		"position":       0,
	}
)

// Attribute is a label or relation owned by exactly one note. The owning
// note reference is a weak one for graph purposes: the note owns its
// attribute list, the attribute merely points back.
type Attribute struct {
	entity

	note     *Note
	attrType core.AttributeType
	name     string

	// target is set for relations; its id becomes the attribute value at
	// flush time, after the target's own CREATE confirmed the id.
	target *Note
}

func newAttribute(s *Session, owner *Note, attrType core.AttributeType, name, id string, placeholder bool) *Attribute {
	a := &Attribute{
		note:     owner,
		attrType: attrType,
		name:     name,
	}
	a.entity = entity{
		session:     s,
		kind:        core.KindAttribute,
		id:          id,
		state:       core.StateClean,
		model:       newModel(attributeFields, attributeDefaults),
		placeholder: placeholder,
	}
	return a
}

// Name returns the attribute name. Names are fixed at creation.
func (a *Attribute) Name() string { return a.name }

// AttributeType returns label or relation.
func (a *Attribute) AttributeType() core.AttributeType { return a.attrType }

// Note returns the owning note.
func (a *Attribute) Note() *Note { return a.note }

// Target returns the target note of a relation, nil for labels.
func (a *Attribute) Target() *Note { return a.target }

// Value returns the attribute value. For relations this is the target
// note id as last staged or confirmed.
func (a *Attribute) Value() string {
	v, _ := a.model.get("value").(string)
	return v
}

// SetValue stages a new value for a label.
func (a *Attribute) SetValue(value string) {
	a.setField("value", value)
}

// SetTarget stages a new target note for a relation.
func (a *Attribute) SetTarget(target *Note) {
	if a.state == core.StateDelete {
		return
	}
	a.target = target
	// The concrete id is resolved at flush time; stage the current one so
	// the model counts the field as changed.
	a.setField("value", target.ID())
}

// IsInheritable reports whether the attribute is inherited by descendants.
func (a *Attribute) IsInheritable() bool {
	v, _ := a.model.get("is_inheritable").(bool)
	return v
}

func (a *Attribute) SetInheritable(inheritable bool) {
	a.setField("is_inheritable", inheritable)
}

// Position returns the attribute position within the owning note.
func (a *Attribute) Position() int {
	v, _ := a.model.get("position").(int)
	return v
}

func (a *Attribute) SetPosition(position int) {
	a.setField("position", position)
}

func (a *Attribute) setField(field string, value any) {
	if a.state == core.StateDelete {
		return
	}
	a.model.set(field, value)
	a.checkState(a)
}

// Delete marks the attribute for pending delete.
func (a *Attribute) Delete() {
	a.markDelete(a)
}

func (a *Attribute) dependencies() []Entity {
	if a.state == core.StateDelete {
		// Deletions commit independently.
		return nil
	}
	deps := []Entity{}
	if a.note != nil {
		deps = append(deps, a.note)
	}
	if a.attrType == core.AttributeRelation && a.target != nil {
		deps = append(deps, a.target)
	}
	return deps
}

func (a *Attribute) flushCheck() []string {
	var problems []string
	if a.note == nil {
		problems = append(problems, fmt.Sprintf("%s is not assigned to a note", describe(a)))
	} else if !a.session.cache.tracked(a.note) {
		problems = append(problems, fmt.Sprintf("%s owner %s was discarded before flush", describe(a), describe(a.note)))
	}
	if a.state == core.StateDelete {
		return problems
	}
	if a.attrType == core.AttributeRelation {
		if a.target == nil {
			problems = append(problems, fmt.Sprintf("%s has no target note", describe(a)))
		} else if !a.session.cache.tracked(a.target) {
			problems = append(problems, fmt.Sprintf("%s target %s was discarded before flush", describe(a), describe(a.target)))
		}
	}
	return problems
}

func (a *Attribute) flushPrimary(ctx context.Context) error {
	driver := a.session.driver
	switch a.state {
	case core.StateCreate:
		rec := &core.AttributeRecord{
			NoteID:        a.note.ID(),
			Type:          a.attrType,
			Name:          a.name,
			Value:         a.resolveValue(),
			IsInheritable: a.IsInheritable(),
			Position:      a.Position(),
		}
		if !a.placeholder {
			rec.AttributeID = a.id
		}
		confirmed, err := driver.CreateAttribute(ctx, rec)
		if err != nil {
			return a.commitError(core.OpCreate, err)
		}
		a.setID(a, confirmed.AttributeID)
		a.model.setupBacking(attributeRecordFields(confirmed))
	case core.StateUpdate:
		// Re-resolve the relation target: its id may have changed when its
		// own CREATE was committed earlier in this flush.
		if a.attrType == core.AttributeRelation && a.target != nil {
			a.model.set("value", a.target.ID())
		}
		confirmed, err := driver.PatchAttribute(ctx, a.id, a.model.diff(false))
		if err != nil {
			return a.commitError(core.OpUpdate, err)
		}
		a.model.setupBacking(attributeRecordFields(confirmed))
	case core.StateDelete:
		if err := driver.DeleteAttribute(ctx, a.id); err != nil {
			return a.commitError(core.OpDelete, err)
		}
	}
	return nil
}

func (a *Attribute) resolveValue() string {
	if a.attrType == core.AttributeRelation && a.target != nil {
		return a.target.ID()
	}
	return a.Value()
}

func (a *Attribute) associated() []Entity { return nil }

func attributeRecordFields(rec *core.AttributeRecord) map[string]any {
	return map[string]any{
		"value":          rec.Value,
		"is_inheritable": rec.IsInheritable,
		"position":       rec.Position,
	}
}
