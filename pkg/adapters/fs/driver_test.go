package fs

import (
	"context"
	"fmt"
	"sort"

	"github.com/aretw0/strata/pkg/core"
)

// memDriver is an in-memory core.Driver backing the adapter tests.
type memDriver struct {
	seq        int
	notes      map[string]*core.NoteRecord
	attributes map[string]*core.AttributeRecord
	branches   map[string]*core.BranchRecord
	content    map[string][]byte
}

func newMemDriver() *memDriver {
	d := &memDriver{
		notes:      make(map[string]*core.NoteRecord),
		attributes: make(map[string]*core.AttributeRecord),
		branches:   make(map[string]*core.BranchRecord),
		content:    make(map[string][]byte),
	}
	d.notes["root"] = &core.NoteRecord{NoteID: "root", Title: "root", Type: "text", Mime: "text/html"}
	return d
}

func (d *memDriver) nextID(prefix string) string {
	d.seq++
	return fmt.Sprintf("%s%03d", prefix, d.seq)
}

func (d *memDriver) seedNote(noteID, parentID, title string) string {
	d.notes[noteID] = &core.NoteRecord{NoteID: noteID, Title: title, Type: "text", Mime: "text/html"}
	branchID := "b_" + parentID + "_" + noteID
	d.branches[branchID] = &core.BranchRecord{BranchID: branchID, NoteID: noteID, ParentNoteID: parentID, NotePosition: 10}
	return branchID
}

func (d *memDriver) GetNote(ctx context.Context, noteID string) (*core.NoteRecord, error) {
	rec, ok := d.notes[noteID]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (d *memDriver) CreateNote(ctx context.Context, rec *core.NoteRecord) (*core.NoteRecord, error) {
	cp := *rec
	if cp.NoteID == "" {
		cp.NoteID = d.nextID("note")
	}
	d.notes[cp.NoteID] = &cp
	out := cp
	return &out, nil
}

func (d *memDriver) PatchNote(ctx context.Context, noteID string, fields map[string]any) (*core.NoteRecord, error) {
	rec, ok := d.notes[noteID]
	if !ok {
		return nil, core.ErrNotFound
	}
	if v, ok := fields["title"]; ok {
		rec.Title = v.(string)
	}
	if v, ok := fields["type"]; ok {
		rec.Type = v.(string)
	}
	if v, ok := fields["mime"]; ok {
		rec.Mime = v.(string)
	}
	cp := *rec
	return &cp, nil
}

func (d *memDriver) DeleteNote(ctx context.Context, noteID string) error {
	delete(d.notes, noteID)
	delete(d.content, noteID)
	return nil
}

func (d *memDriver) GetAttribute(ctx context.Context, attributeID string) (*core.AttributeRecord, error) {
	rec, ok := d.attributes[attributeID]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (d *memDriver) CreateAttribute(ctx context.Context, rec *core.AttributeRecord) (*core.AttributeRecord, error) {
	cp := *rec
	if cp.AttributeID == "" {
		cp.AttributeID = d.nextID("attr")
	}
	d.attributes[cp.AttributeID] = &cp
	out := cp
	return &out, nil
}

func (d *memDriver) PatchAttribute(ctx context.Context, attributeID string, fields map[string]any) (*core.AttributeRecord, error) {
	rec, ok := d.attributes[attributeID]
	if !ok {
		return nil, core.ErrNotFound
	}
	if v, ok := fields["value"]; ok {
		rec.Value = v.(string)
	}
	if v, ok := fields["is_inheritable"]; ok {
		rec.IsInheritable = v.(bool)
	}
	if v, ok := fields["position"]; ok {
		rec.Position = v.(int)
	}
	cp := *rec
	return &cp, nil
}

func (d *memDriver) DeleteAttribute(ctx context.Context, attributeID string) error {
	delete(d.attributes, attributeID)
	return nil
}

func (d *memDriver) GetBranch(ctx context.Context, branchID string) (*core.BranchRecord, error) {
	rec, ok := d.branches[branchID]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (d *memDriver) CreateBranch(ctx context.Context, rec *core.BranchRecord) (*core.BranchRecord, error) {
	cp := *rec
	if cp.BranchID == "" {
		cp.BranchID = d.nextID("branch")
	}
	d.branches[cp.BranchID] = &cp
	out := cp
	return &out, nil
}

func (d *memDriver) PatchBranch(ctx context.Context, branchID string, fields map[string]any) (*core.BranchRecord, error) {
	rec, ok := d.branches[branchID]
	if !ok {
		return nil, core.ErrNotFound
	}
	if v, ok := fields["prefix"]; ok {
		rec.Prefix = v.(string)
	}
	if v, ok := fields["is_expanded"]; ok {
		rec.IsExpanded = v.(bool)
	}
	if v, ok := fields["note_position"]; ok {
		rec.NotePosition = v.(int)
	}
	cp := *rec
	return &cp, nil
}

func (d *memDriver) DeleteBranch(ctx context.Context, branchID string) error {
	delete(d.branches, branchID)
	return nil
}

func (d *memDriver) GetContent(ctx context.Context, noteID string) ([]byte, error) {
	return d.content[noteID], nil
}

func (d *memDriver) PutContent(ctx context.Context, noteID string, data []byte) error {
	d.content[noteID] = data
	return nil
}

func (d *memDriver) RefreshNoteOrdering(ctx context.Context, parentNoteID string) error {
	return nil
}

func (d *memDriver) ListChildBranches(ctx context.Context, parentNoteID string) ([]*core.BranchRecord, error) {
	var out []*core.BranchRecord
	for _, rec := range d.branches {
		if rec.ParentNoteID == parentNoteID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BranchID < out[j].BranchID })
	return out, nil
}

func (d *memDriver) ListNoteAttributes(ctx context.Context, noteID string) ([]*core.AttributeRecord, error) {
	var out []*core.AttributeRecord
	for _, rec := range d.attributes {
		if rec.NoteID == noteID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AttributeID < out[j].AttributeID })
	return out, nil
}

var (
	_ core.Driver     = (*memDriver)(nil)
	_ core.TreeLister = (*memDriver)(nil)
)
