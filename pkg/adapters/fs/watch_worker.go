package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/strata/pkg/core"
)

const debounceWindow = 50 * time.Millisecond

// WatchWorker observes the export directory and emits a core.Event per
// changed note file, debounced per file. It implements the lifecycle
// worker contract so a supervisor can manage it.
type WatchWorker struct {
	*worker.BaseWorker
	tree      *Tree
	events    chan<- core.Event
	watcher   *fsnotify.Watcher
	debouncer *debouncer
	cancel    context.CancelFunc
}

// NewWatchWorker creates a watcher for the tree delivering to events.
// The worker is the only sender on events and never closes it; run waits
// for all pending deliveries before returning, so callers that own the
// channel may close it once the worker has stopped.
func NewWatchWorker(tree *Tree, events chan<- core.Event) *WatchWorker {
	return &WatchWorker{
		BaseWorker: worker.NewBaseWorker("tree-watcher"),
		tree:       tree,
		events:     events,
	}
}

func (w *WatchWorker) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	status := w.State().Status
	if status != worker.StatusCreated && status != worker.StatusPending {
		return fmt.Errorf("watcher already started (status: %s)", status)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.addRecursive(watcher, w.tree.dir); err != nil {
		_ = watcher.Close()
		return err
	}

	w.watcher = watcher
	w.debouncer = newDebouncer(debounceWindow)
	w.tree.setWatcherActive(true)

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.SetStatus(worker.StatusRunning)
	return w.StartFunc(runCtx, w.run)
}

func (w *WatchWorker) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.StopRequested = true
		w.cancel()
	}
	return w.BaseWorker.Stop(ctx)
}

func (w *WatchWorker) State() worker.State {
	return w.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
		}
	})
}

func (w *WatchWorker) addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}

func (w *WatchWorker) run(ctx context.Context) error {
	defer w.tree.setWatcherActive(false)
	defer w.watcher.Close()

	err := w.eventLoop(ctx)
	w.debouncer.stopAndWait(5 * time.Second)
	return err
}

func (w *WatchWorker) eventLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			w.handleEvent(ctx, event)

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.tree.log.Error("fsnotify error", "error", wErr)
		}
	}
}

func (w *WatchWorker) handleEvent(ctx context.Context, event fsnotify.Event) {
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, tempFilePrefix) {
		return
	}

	// New directories must be watched for the files that follow.
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.watcher.Add(event.Name); err != nil {
				w.tree.log.Error("failed to watch new directory", "path", event.Name, "error", err)
			}
			return
		}
	}

	if !strings.HasSuffix(base, ".md") {
		return
	}
	rel, err := filepath.Rel(w.tree.dir, event.Name)
	if err != nil || w.tree.shouldIgnore(rel) {
		return
	}

	eType := mapEventType(event)
	if eType == "" {
		return
	}

	id := w.resolveID(rel, event.Name, eType)
	if id == "" {
		return
	}
	if eType == core.EventDelete {
		w.tree.forgetID(rel)
	}

	w.tree.log.Debug("tree change", "type", eType, "id", id, "path", rel)
	w.send(ctx, core.Event{Type: eType, ID: id, Timestamp: time.Now().Unix()})
}

// resolveID maps a changed file to a note id: frontmatter first, then
// the path index for files that no longer exist.
func (w *WatchWorker) resolveID(rel, path string, eType core.EventType) string {
	if eType != core.EventDelete {
		if data, err := os.ReadFile(path); err == nil {
			if doc, err := decodeNote(data); err == nil && doc.Meta.ID != "" {
				w.tree.rememberID(rel, doc.Meta.ID)
				return doc.Meta.ID
			}
		}
	}
	if id, ok := w.tree.lookupID(rel); ok {
		return id
	}
	return filepath.ToSlash(rel)
}

func mapEventType(event fsnotify.Event) core.EventType {
	switch {
	case event.Has(fsnotify.Create):
		return core.EventCreate
	case event.Has(fsnotify.Write):
		return core.EventModify
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return core.EventDelete
	default:
		return ""
	}
}

func (w *WatchWorker) send(ctx context.Context, event core.Event) {
	w.debouncer.add(event, func(e core.Event) {
		select {
		case w.events <- e:
		case <-ctx.Done():
		}
	})
}
