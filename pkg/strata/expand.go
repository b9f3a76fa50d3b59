package strata

import (
	"context"
	"fmt"

	"github.com/aretw0/strata/pkg/core"
)

// ChildBranches returns the parent's child branches, pulling the remote
// list first when the driver supports enumeration. Locally created
// branches not yet flushed are included either way.
func (s *Session) ChildBranches(ctx context.Context, parent *Note) ([]*Branch, error) {
	if s.closed {
		return nil, core.ErrSessionClosed
	}
	lister, ok := s.driver.(core.TreeLister)
	if !ok || parent.state == core.StateCreate {
		return parent.ChildBranches(), nil
	}
	recs, err := lister.ListChildBranches(ctx, parent.ID())
	if err != nil {
		return nil, fmt.Errorf("list children of %q: %w", parent.ID(), err)
	}
	for _, rec := range recs {
		if s.cache.get(rec.BranchID) != nil {
			continue
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
	}
	return parent.ChildBranches(), nil
}

// OwnedAttributes returns the note's attributes, pulling the remote list
// first when the driver supports enumeration.
func (s *Session) OwnedAttributes(ctx context.Context, n *Note) ([]*Attribute, error) {
	if s.closed {
		return nil, core.ErrSessionClosed
	}
	lister, ok := s.driver.(core.TreeLister)
	if !ok || n.state == core.StateCreate {
		return n.Attributes(), nil
	}
	recs, err := lister.ListNoteAttributes(ctx, n.ID())
	if err != nil {
		return nil, fmt.Errorf("list attributes of %q: %w", n.ID(), err)
	}
	for _, rec := range recs {
		if s.cache.get(rec.AttributeID) != nil {
			continue
		}
		a := newAttribute(s, n, rec.Type, rec.Name, rec.AttributeID, false)
		a.model.setupBacking(attributeRecordFields(rec))
		if rec.Type == core.AttributeRelation && rec.Value != "" {
			target, err := s.Note(ctx, rec.Value)
			if err != nil {
				return nil, err
			}
			a.target = target
		}
		n.ownedAttributes = append(n.ownedAttributes, a)
		s.track(a, core.StateClean)
	}
	return n.Attributes(), nil
}
