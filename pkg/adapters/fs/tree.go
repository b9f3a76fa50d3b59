// Package fs mirrors a note subtree to a directory of Markdown files
// with YAML frontmatter, and back. Each note becomes one file; notes
// with children additionally get a directory of the same name holding
// the child files.
package fs

import (
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/strata/pkg/strata"
)

// Tree binds one session to one export directory.
type Tree struct {
	session *strata.Session
	dir     string
	ignore  []string
	log     *slog.Logger

	mu sync.Mutex
	// ids maps relative file paths to note ids, maintained by export and
	// import so the watcher can attribute delete events.
	ids map[string]string

	watcherActive bool
	exported      int
	imported      int
}

// Option configures a Tree.
type Option func(*Tree)

// WithIgnore sets doublestar glob patterns matched against relative
// paths; matching files are skipped by import and watch.
func WithIgnore(patterns ...string) Option {
	return func(t *Tree) { t.ignore = append(t.ignore, patterns...) }
}

// WithLogger attaches a structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(t *Tree) { t.log = log }
}

// NewTree creates a tree rooted at dir for the given session.
func NewTree(session *strata.Session, dir string, opts ...Option) *Tree {
	t := &Tree{
		session: session,
		dir:     dir,
		ids:     make(map[string]string),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.log == nil {
		t.log = slog.New(slog.DiscardHandler)
	}
	return t
}

// Dir returns the directory this tree reads and writes.
func (t *Tree) Dir() string { return t.dir }

func (t *Tree) shouldIgnore(relPath string) bool {
	relPath = filepath.ToSlash(relPath)
	for _, pattern := range t.ignore {
		if ok, err := doublestar.Match(pattern, relPath); err == nil && ok {
			return true
		}
	}
	return false
}

func (t *Tree) rememberID(relPath, noteID string) {
	t.mu.Lock()
	t.ids[filepath.ToSlash(relPath)] = noteID
	t.mu.Unlock()
}

func (t *Tree) lookupID(relPath string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id, ok := t.ids[filepath.ToSlash(relPath)]
	return id, ok
}

func (t *Tree) forgetID(relPath string) {
	t.mu.Lock()
	delete(t.ids, filepath.ToSlash(relPath))
	t.mu.Unlock()
}

func (t *Tree) setWatcherActive(active bool) {
	t.mu.Lock()
	t.watcherActive = active
	t.mu.Unlock()
}

// slugify derives a filesystem-safe name from a note title.
func slugify(title string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	out := strings.TrimRight(b.String(), "-")
	if out == "" {
		return "untitled"
	}
	return out
}
