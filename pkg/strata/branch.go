package strata

import (
	"context"
	"fmt"

	"github.com/aretw0/strata/pkg/core"
)

var (
	branchFields   = []string{"prefix", "is_expanded", "note_position"}
	branchDefaults = map[string]any{
		"prefix":        "",
		"is_expanded":   false,
		"note_position": 0,
	}
)

// Branch is a parent/child edge in the note tree, carrying ordering and
// display metadata.
type Branch struct {
	entity

	parent *Note
	child  *Note
}

func newBranch(s *Session, parent, child *Note, id string, placeholder bool) *Branch {
	b := &Branch{
		parent: parent,
		child:  child,
	}
	b.entity = entity{
		session:     s,
		kind:        core.KindBranch,
		id:          id,
		state:       core.StateClean,
		model:       newModel(branchFields, branchDefaults),
		placeholder: placeholder,
	}
	return b
}

// Parent returns the parent note of this branch.
func (b *Branch) Parent() *Note { return b.parent }

// Child returns the child note of this branch.
func (b *Branch) Child() *Note { return b.child }

// Prefix returns the display prefix shown before the child note title.
func (b *Branch) Prefix() string {
	v, _ := b.model.get("prefix").(string)
	return v
}

func (b *Branch) SetPrefix(prefix string) {
	b.setField("prefix", prefix)
}

// IsExpanded reports whether the branch is expanded in the tree view.
func (b *Branch) IsExpanded() bool {
	v, _ := b.model.get("is_expanded").(bool)
	return v
}

func (b *Branch) SetExpanded(expanded bool) {
	b.setField("is_expanded", expanded)
}

// Position returns the ordering position among the parent's children.
func (b *Branch) Position() int {
	v, _ := b.model.get("note_position").(int)
	return v
}

func (b *Branch) SetPosition(position int) {
	b.setField("note_position", position)
}

func (b *Branch) setField(field string, value any) {
	if b.state == core.StateDelete {
		return
	}
	b.model.set(field, value)
	b.checkState(b)
}

// Delete marks the branch for pending delete. The branch commits before
// either endpoint note when those are deleted in the same flush.
func (b *Branch) Delete() {
	b.markDelete(b)
}

func (b *Branch) dependencies() []Entity {
	if b.state == core.StateDelete {
		return nil
	}
	deps := []Entity{}
	if b.parent != nil {
		deps = append(deps, b.parent)
	}
	if b.child != nil {
		deps = append(deps, b.child)
	}
	return deps
}

func (b *Branch) flushCheck() []string {
	var problems []string
	if b.parent == nil && (b.child == nil || b.child.ID() != RootID) {
		problems = append(problems, fmt.Sprintf("%s has no parent note", describe(b)))
	}
	if b.child == nil {
		problems = append(problems, fmt.Sprintf("%s has no child note", describe(b)))
	}
	if b.state == core.StateDelete {
		return problems
	}
	if b.parent != nil && !b.session.cache.tracked(b.parent) {
		problems = append(problems, fmt.Sprintf("%s parent %s was discarded before flush", describe(b), describe(b.parent)))
	}
	if b.child != nil && !b.session.cache.tracked(b.child) {
		problems = append(problems, fmt.Sprintf("%s child %s was discarded before flush", describe(b), describe(b.child)))
	}
	return problems
}

func (b *Branch) flushPrimary(ctx context.Context) error {
	driver := b.session.driver
	switch b.state {
	case core.StateCreate:
		rec := &core.BranchRecord{
			NoteID:       b.child.ID(),
			ParentNoteID: b.parent.ID(),
			Prefix:       b.Prefix(),
			IsExpanded:   b.IsExpanded(),
			NotePosition: b.Position(),
		}
		if !b.placeholder {
			rec.BranchID = b.id
		}
		confirmed, err := driver.CreateBranch(ctx, rec)
		if err != nil {
			return b.commitError(core.OpCreate, err)
		}
		b.setID(b, confirmed.BranchID)
		b.model.setupBacking(branchRecordFields(confirmed))
	case core.StateUpdate:
		confirmed, err := driver.PatchBranch(ctx, b.id, b.model.diff(false))
		if err != nil {
			return b.commitError(core.OpUpdate, err)
		}
		b.model.setupBacking(branchRecordFields(confirmed))
	case core.StateDelete:
		if err := driver.DeleteBranch(ctx, b.id); err != nil {
			return b.commitError(core.OpDelete, err)
		}
	}
	return nil
}

func (b *Branch) associated() []Entity { return nil }

func branchRecordFields(rec *core.BranchRecord) map[string]any {
	return map[string]any{
		"prefix":        rec.Prefix,
		"is_expanded":   rec.IsExpanded,
		"note_position": rec.NotePosition,
	}
}
