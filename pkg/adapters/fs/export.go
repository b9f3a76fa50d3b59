package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/strata/pkg/strata"
)

// Export writes the subtree rooted at the given note to the tree's
// directory. The root note itself becomes <slug>.md at the top level;
// every note with children gets a sibling directory of the same name.
// Returns the number of notes written.
func (t *Tree) Export(ctx context.Context, root *strata.Note) (int, error) {
	if err := os.MkdirAll(t.dir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create export directory: %w", err)
	}

	w := &exportWalk{used: map[string]map[string]bool{}, visited: map[string]bool{}}
	count := 0
	if err := t.exportNote(ctx, w, root, nil, t.dir, &count); err != nil {
		return count, err
	}

	t.mu.Lock()
	t.exported += count
	t.mu.Unlock()

	t.log.Info("exported subtree", "root", root.ID(), "notes", count, "dir", t.dir)
	return count, nil
}

// exportWalk tracks filename collisions per directory and visited note
// ids, since clone branches can reach the same note twice.
type exportWalk struct {
	used    map[string]map[string]bool
	visited map[string]bool
}

// claim reserves a unique filename in dir, suffixing the note id on
// title collisions.
func (w *exportWalk) claim(dir, name, id string) string {
	names := w.used[dir]
	if names == nil {
		names = make(map[string]bool)
		w.used[dir] = names
	}
	if names[name] {
		name = name + "-" + id
	}
	names[name] = true
	return name
}

func (t *Tree) exportNote(ctx context.Context, w *exportWalk, note *strata.Note, branch *strata.Branch, dir string, count *int) error {
	if w.visited[note.ID()] {
		t.log.Debug("skipping already exported clone", "note", note.ID())
		return nil
	}
	w.visited[note.ID()] = true

	attrs, err := t.session.OwnedAttributes(ctx, note)
	if err != nil {
		return err
	}
	content, err := note.Content(ctx)
	if err != nil {
		return err
	}

	meta := noteMeta{
		ID:    note.ID(),
		Title: note.Title(),
		Type:  note.Type(),
		Mime:  note.Mime(),
	}
	if branch != nil {
		meta.Prefix = branch.Prefix()
		meta.Expanded = branch.IsExpanded()
		meta.Position = branch.Position()
	}
	for _, a := range attrs {
		meta.Attributes = append(meta.Attributes, attrMeta{
			ID:          a.ID(),
			Type:        a.AttributeType(),
			Name:        a.Name(),
			Value:       a.Value(),
			Inheritable: a.IsInheritable(),
			Position:    a.Position(),
		})
	}

	name := w.claim(dir, slugify(note.Title()), note.ID())

	data, err := encodeNote(noteDoc{Meta: meta, Content: string(content)})
	if err != nil {
		return fmt.Errorf("failed to serialize note %q: %w", note.ID(), err)
	}

	path := filepath.Join(dir, name+".md")
	if err := writeNoteFile(path, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if rel, err := filepath.Rel(t.dir, path); err == nil {
		t.rememberID(rel, note.ID())
	}
	*count++

	children, err := t.session.ChildBranches(ctx, note)
	if err != nil {
		return err
	}
	if len(children) == 0 {
		return nil
	}

	childDir := filepath.Join(dir, name)
	if err := os.MkdirAll(childDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", childDir, err)
	}
	for _, b := range children {
		if err := t.exportNote(ctx, w, b.Child(), b, childDir, count); err != nil {
			return err
		}
	}
	return nil
}
