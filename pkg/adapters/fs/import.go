package fs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/strata/pkg/core"
	"github.com/aretw0/strata/pkg/strata"
)

// Import reads the tree's directory back into session entities. Files
// carrying a known note id update that note; files without one (or with
// an unknown id) become new notes anchored under parent. The session is
// left dirty; the caller decides when to flush.
//
// Relations can point at notes that appear later in the walk, so they
// are resolved in a second pass once every file is read.
func (t *Tree) Import(ctx context.Context, parent *strata.Note) (int, error) {
	run := &importRun{tree: t}
	if err := run.importDir(ctx, t.dir, parent); err != nil {
		return run.count, err
	}
	if err := run.resolveRelations(ctx); err != nil {
		return run.count, err
	}

	t.mu.Lock()
	t.imported += run.count
	t.mu.Unlock()

	t.log.Info("imported tree", "dir", t.dir, "notes", run.count, "dirty", t.session.DirtyCount())
	return run.count, nil
}

type importRun struct {
	tree  *Tree
	count int

	// deferred relations: owner note plus the raw attribute metadata.
	relations []deferredRelation
}

type deferredRelation struct {
	owner *strata.Note
	meta  attrMeta
}

func (r *importRun) importDir(ctx context.Context, dir string, parent *strata.Note) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		rel, err := filepath.Rel(r.tree.dir, path)
		if err != nil {
			return err
		}
		if r.tree.shouldIgnore(rel) {
			r.tree.log.Debug("ignoring file", "path", rel)
			continue
		}

		note, err := r.importFile(ctx, path, rel, parent)
		if err != nil {
			return err
		}

		// A sibling directory of the same base name holds the children.
		childDir := strings.TrimSuffix(path, ".md")
		if info, err := os.Stat(childDir); err == nil && info.IsDir() {
			if err := r.importDir(ctx, childDir, note); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *importRun) importFile(ctx context.Context, path, rel string, parent *strata.Note) (*strata.Note, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := decodeNote(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", rel, err)
	}

	title := doc.Meta.Title
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), ".md")
	}

	note, fresh, err := r.upsertNote(ctx, doc.Meta, title, parent)
	if err != nil {
		return nil, err
	}

	if doc.Meta.Type != "" {
		note.SetType(doc.Meta.Type)
	}
	if doc.Meta.Mime != "" {
		note.SetMime(doc.Meta.Mime)
	}
	if !fresh {
		note.SetTitle(title)
	}
	if err := r.applyContent(ctx, note, fresh, []byte(doc.Content)); err != nil {
		return nil, err
	}
	if err := r.applyAttributes(ctx, note, doc.Meta.Attributes); err != nil {
		return nil, err
	}

	r.tree.rememberID(rel, note.ID())
	r.count++
	return note, nil
}

// upsertNote finds the note named in the frontmatter or creates it.
// fresh reports a create, in which case title and anchoring are already
// set.
func (r *importRun) upsertNote(ctx context.Context, meta noteMeta, title string, parent *strata.Note) (*strata.Note, bool, error) {
	session := r.tree.session
	if meta.ID != "" {
		note, err := session.Note(ctx, meta.ID)
		if err == nil {
			return note, false, nil
		}
		if !errors.Is(err, core.ErrNotFound) {
			return nil, false, err
		}
		note = session.NewNoteWithID(meta.ID, title)
		r.anchor(note, meta, parent)
		return note, true, nil
	}
	note := session.NewNote(title)
	r.anchor(note, meta, parent)
	return note, true, nil
}

func (r *importRun) anchor(note *strata.Note, meta noteMeta, parent *strata.Note) {
	b := parent.AddChild(note)
	if meta.Prefix != "" {
		b.SetPrefix(meta.Prefix)
	}
	if meta.Expanded {
		b.SetExpanded(true)
	}
	if meta.Position != 0 {
		b.SetPosition(meta.Position)
	}
}

// applyContent stages the file body, skipping the write when an
// existing note already has identical content.
func (r *importRun) applyContent(ctx context.Context, note *strata.Note, fresh bool, content []byte) error {
	if fresh {
		if len(content) > 0 {
			note.SetContent(content)
		}
		return nil
	}
	current, err := note.Content(ctx)
	if err != nil {
		return err
	}
	if !bytes.Equal(current, content) {
		note.SetContent(content)
	}
	return nil
}

func (r *importRun) applyAttributes(ctx context.Context, note *strata.Note, attrs []attrMeta) error {
	for _, meta := range attrs {
		if meta.Type == core.AttributeRelation {
			// Target may not be imported yet.
			r.relations = append(r.relations, deferredRelation{owner: note, meta: meta})
			continue
		}
		if err := r.applyLabel(ctx, note, meta); err != nil {
			return err
		}
	}
	return nil
}

func (r *importRun) applyLabel(ctx context.Context, note *strata.Note, meta attrMeta) error {
	session := r.tree.session
	if meta.ID != "" {
		a, err := session.Attribute(ctx, meta.ID)
		if err == nil {
			a.SetValue(meta.Value)
			a.SetInheritable(meta.Inheritable)
			if meta.Position != 0 {
				a.SetPosition(meta.Position)
			}
			return nil
		}
		if !errors.Is(err, core.ErrNotFound) {
			return err
		}
	}
	a := note.NewLabel(meta.Name, meta.Value)
	if meta.Inheritable {
		a.SetInheritable(true)
	}
	if meta.Position != 0 {
		a.SetPosition(meta.Position)
	}
	return nil
}

// resolveRelations runs after every file was read, so forward
// references between imported notes resolve.
func (r *importRun) resolveRelations(ctx context.Context) error {
	session := r.tree.session
	for _, dr := range r.relations {
		meta := dr.meta
		if meta.ID != "" {
			a, err := session.Attribute(ctx, meta.ID)
			if err == nil {
				target, terr := session.Note(ctx, meta.Value)
				if terr != nil {
					r.tree.log.Warn("relation target missing, leaving attribute untouched", "attribute", meta.ID, "target", meta.Value)
					continue
				}
				a.SetTarget(target)
				a.SetInheritable(meta.Inheritable)
				continue
			}
			if !errors.Is(err, core.ErrNotFound) {
				return err
			}
		}
		target, err := session.Note(ctx, meta.Value)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				r.tree.log.Warn("relation target missing, skipping", "owner", dr.owner.ID(), "name", meta.Name, "target", meta.Value)
				continue
			}
			return err
		}
		a := dr.owner.NewRelation(meta.Name, target)
		if meta.Inheritable {
			a.SetInheritable(true)
		}
		if meta.Position != 0 {
			a.SetPosition(meta.Position)
		}
	}
	return nil
}
