package strata

import (
	"context"
	"fmt"
	"sort"

	"github.com/aretw0/strata/pkg/core"
)

// driverCall records one remote call for order assertions.
type driverCall struct {
	op   core.Op
	kind core.Kind
	id   string
}

func (c driverCall) String() string {
	return fmt.Sprintf("%s %s %s", c.op, c.kind, c.id)
}

// fakeDriver is an in-memory core.Driver recording call order. Create
// calls assign sequential server ids unless the submitted record already
// carries one.
type fakeDriver struct {
	seq   int
	calls []driverCall

	notes      map[string]*core.NoteRecord
	attributes map[string]*core.AttributeRecord
	branches   map[string]*core.BranchRecord
	content    map[string][]byte

	// failCreateNote maps note titles to errors returned by CreateNote.
	failCreateNote map[string]error
	// failPutContent maps note ids to errors returned by PutContent.
	failPutContent map[string]error

	// onCreateNote, when set, runs before every CreateNote.
	onCreateNote func()
}

func newFakeDriver() *fakeDriver {
	f := &fakeDriver{
		notes:          make(map[string]*core.NoteRecord),
		attributes:     make(map[string]*core.AttributeRecord),
		branches:       make(map[string]*core.BranchRecord),
		content:        make(map[string][]byte),
		failCreateNote: make(map[string]error),
		failPutContent: make(map[string]error),
	}
	f.notes[RootID] = &core.NoteRecord{NoteID: RootID, Title: "root", Type: "text", Mime: "text/html"}
	return f
}

func (f *fakeDriver) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s%03d", prefix, f.seq)
}

func (f *fakeDriver) record(op core.Op, kind core.Kind, id string) {
	f.calls = append(f.calls, driverCall{op: op, kind: kind, id: id})
}

// mutations returns all recorded calls; fetches are not recorded, so
// this is the write traffic a flush produced.
func (f *fakeDriver) mutations() []driverCall {
	return f.calls
}

func (f *fakeDriver) GetNote(ctx context.Context, noteID string) (*core.NoteRecord, error) {
	rec, ok := f.notes[noteID]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeDriver) CreateNote(ctx context.Context, rec *core.NoteRecord) (*core.NoteRecord, error) {
	if f.onCreateNote != nil {
		f.onCreateNote()
	}
	if err := f.failCreateNote[rec.Title]; err != nil {
		return nil, err
	}
	cp := *rec
	if cp.NoteID == "" {
		cp.NoteID = f.nextID("note")
	}
	f.notes[cp.NoteID] = &cp
	f.record(core.OpCreate, core.KindNote, cp.NoteID)
	out := cp
	return &out, nil
}

func (f *fakeDriver) PatchNote(ctx context.Context, noteID string, fields map[string]any) (*core.NoteRecord, error) {
	rec, ok := f.notes[noteID]
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
	f.record(core.OpUpdate, core.KindNote, noteID)
	cp := *rec
	return &cp, nil
}

func (f *fakeDriver) DeleteNote(ctx context.Context, noteID string) error {
	if _, ok := f.notes[noteID]; !ok {
		return core.ErrNotFound
	}
	delete(f.notes, noteID)
	f.record(core.OpDelete, core.KindNote, noteID)
	return nil
}

func (f *fakeDriver) GetAttribute(ctx context.Context, attributeID string) (*core.AttributeRecord, error) {
	rec, ok := f.attributes[attributeID]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeDriver) CreateAttribute(ctx context.Context, rec *core.AttributeRecord) (*core.AttributeRecord, error) {
	cp := *rec
	if cp.AttributeID == "" {
		cp.AttributeID = f.nextID("attr")
	}
	f.attributes[cp.AttributeID] = &cp
	f.record(core.OpCreate, core.KindAttribute, cp.AttributeID)
	out := cp
	return &out, nil
}

func (f *fakeDriver) PatchAttribute(ctx context.Context, attributeID string, fields map[string]any) (*core.AttributeRecord, error) {
	rec, ok := f.attributes[attributeID]
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
	f.record(core.OpUpdate, core.KindAttribute, attributeID)
	cp := *rec
	return &cp, nil
}

func (f *fakeDriver) DeleteAttribute(ctx context.Context, attributeID string) error {
	if _, ok := f.attributes[attributeID]; !ok {
		return core.ErrNotFound
	}
	delete(f.attributes, attributeID)
	f.record(core.OpDelete, core.KindAttribute, attributeID)
	return nil
}

func (f *fakeDriver) GetBranch(ctx context.Context, branchID string) (*core.BranchRecord, error) {
	rec, ok := f.branches[branchID]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeDriver) CreateBranch(ctx context.Context, rec *core.BranchRecord) (*core.BranchRecord, error) {
	cp := *rec
	if cp.BranchID == "" {
		cp.BranchID = f.nextID("branch")
	}
	f.branches[cp.BranchID] = &cp
	f.record(core.OpCreate, core.KindBranch, cp.BranchID)
	out := cp
	return &out, nil
}

func (f *fakeDriver) PatchBranch(ctx context.Context, branchID string, fields map[string]any) (*core.BranchRecord, error) {
	rec, ok := f.branches[branchID]
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
	f.record(core.OpUpdate, core.KindBranch, branchID)
	cp := *rec
	return &cp, nil
}

func (f *fakeDriver) DeleteBranch(ctx context.Context, branchID string) error {
	if _, ok := f.branches[branchID]; !ok {
		return core.ErrNotFound
	}
	delete(f.branches, branchID)
	f.record(core.OpDelete, core.KindBranch, branchID)
	return nil
}

func (f *fakeDriver) GetContent(ctx context.Context, noteID string) ([]byte, error) {
	if _, ok := f.notes[noteID]; !ok {
		return nil, core.ErrNotFound
	}
	return f.content[noteID], nil
}

func (f *fakeDriver) PutContent(ctx context.Context, noteID string, data []byte) error {
	if err := f.failPutContent[noteID]; err != nil {
		return err
	}
	if _, ok := f.notes[noteID]; !ok {
		return core.ErrNotFound
	}
	f.content[noteID] = data
	f.record(core.OpContent, core.KindNote, noteID)
	return nil
}

func (f *fakeDriver) RefreshNoteOrdering(ctx context.Context, parentNoteID string) error {
	return nil
}

func (f *fakeDriver) ListChildBranches(ctx context.Context, parentNoteID string) ([]*core.BranchRecord, error) {
	var out []*core.BranchRecord
	for _, rec := range f.branches {
		if rec.ParentNoteID == parentNoteID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BranchID < out[j].BranchID })
	return out, nil
}

func (f *fakeDriver) ListNoteAttributes(ctx context.Context, noteID string) ([]*core.AttributeRecord, error) {
	var out []*core.AttributeRecord
	for _, rec := range f.attributes {
		if rec.NoteID == noteID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AttributeID < out[j].AttributeID })
	return out, nil
}

var _ core.Driver = (*fakeDriver)(nil)
var _ core.TreeLister = (*fakeDriver)(nil)

// seedNote installs a remote note under the given parent, returning the
// branch id.
func (f *fakeDriver) seedNote(noteID, parentID, title string) string {
	f.notes[noteID] = &core.NoteRecord{NoteID: noteID, Title: title, Type: "text", Mime: "text/html"}
	branchID := "b_" + parentID + "_" + noteID
	f.branches[branchID] = &core.BranchRecord{
		BranchID:     branchID,
		NoteID:       noteID,
		ParentNoteID: parentID,
		NotePosition: 10,
	}
	return branchID
}

// seedAttribute installs a remote attribute on the given note.
func (f *fakeDriver) seedAttribute(attributeID, noteID string, attrType core.AttributeType, name, value string) {
	f.attributes[attributeID] = &core.AttributeRecord{
		AttributeID: attributeID,
		NoteID:      noteID,
		Type:        attrType,
		Name:        name,
		Value:       value,
		Position:    10,
	}
}
