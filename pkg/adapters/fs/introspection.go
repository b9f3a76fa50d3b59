package fs

import (
	"github.com/aretw0/introspection"
)

// TreeState exposes internal state for observability.
type TreeState struct {
	Dir           string   `json:"dir"`
	Ignore        []string `json:"ignore,omitempty"`
	IndexedFiles  int      `json:"indexed_files"`
	Exported      int      `json:"exported"`
	Imported      int      `json:"imported"`
	WatcherActive bool     `json:"watcher_active"`
}

// State implements introspection.Introspectable.
func (t *Tree) State() any {
	t.mu.Lock()
	defer t.mu.Unlock()
	return TreeState{
		Dir:           t.dir,
		Ignore:        t.ignore,
		IndexedFiles:  len(t.ids),
		Exported:      t.exported,
		Imported:      t.imported,
		WatcherActive: t.watcherActive,
	}
}

// ComponentType implements introspection.Component.
func (t *Tree) ComponentType() string {
	return "tree"
}

var _ introspection.Introspectable = (*Tree)(nil)
var _ introspection.Component = (*Tree)(nil)
