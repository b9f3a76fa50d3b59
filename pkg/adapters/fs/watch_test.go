package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/lifecycle/pkg/core/supervisor"
	"github.com/aretw0/lifecycle/pkg/core/worker"

	"github.com/aretw0/strata/pkg/core"
	"github.com/aretw0/strata/pkg/strata"
)

func TestWatcherEmitsEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	driver := newMemDriver()
	s := strata.NewSession(driver)
	dir := t.TempDir()
	tree := NewTree(s, dir)

	events := make(chan core.Event, 16)
	w := NewWatchWorker(tree, events)
	if err := w.Start(ctx); err != nil {
		t.Fatalf("failed to start watcher: %v", err)
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer stopCancel()
		_ = w.Stop(stopCtx)
	}()

	data, err := encodeNote(noteDoc{Meta: noteMeta{ID: "n1", Title: "Watched"}, Content: "x\n"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "watched.md"), data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	e := waitForEvent(t, events)
	if e.ID != "n1" {
		t.Errorf("event id = %q, want the frontmatter id", e.ID)
	}
	if e.Type != core.EventCreate && e.Type != core.EventModify {
		t.Errorf("event type = %s", e.Type)
	}

	if err := os.Remove(filepath.Join(dir, "watched.md")); err != nil {
		t.Fatalf("remove: %v", err)
	}
	e = waitForEvent(t, events)
	if e.Type != core.EventDelete {
		t.Errorf("event type = %s, want delete", e.Type)
	}
	if e.ID != "n1" {
		t.Errorf("delete event id = %q, want the indexed note id", e.ID)
	}
}

func TestWatcherIgnoresTempAndFilteredFiles(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	driver := newMemDriver()
	s := strata.NewSession(driver)
	dir := t.TempDir()
	tree := NewTree(s, dir, WithIgnore("*.draft.md"))

	events := make(chan core.Event, 16)
	w := NewWatchWorker(tree, events)
	if err := w.Start(ctx); err != nil {
		t.Fatalf("failed to start watcher: %v", err)
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer stopCancel()
		_ = w.Stop(stopCtx)
	}()

	if err := os.WriteFile(filepath.Join(dir, tempFilePrefix+"123"), []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.draft.md"), []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case e := <-events:
		t.Fatalf("unexpected event: %v", e)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherStopHaltsDeliveries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	driver := newMemDriver()
	s := strata.NewSession(driver)
	dir := t.TempDir()
	tree := NewTree(s, dir)

	events := make(chan core.Event, 16)
	w := NewWatchWorker(tree, events)
	if err := w.Start(ctx); err != nil {
		t.Fatalf("failed to start watcher: %v", err)
	}

	// Leave an event inside the debounce window, then stop immediately.
	if err := os.WriteFile(filepath.Join(dir, "late.md"), []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	if err := w.Stop(stopCtx); err != nil {
		t.Fatalf("failed to stop watcher: %v", err)
	}

	// The worker is the sole sender, so once Stop returns the owner may
	// close the channel. A stray late delivery would panic here.
	close(events)
	time.Sleep(2 * debounceWindow)
	for range events {
	}
}

func TestWatcherSupervisorRestarts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	driver := newMemDriver()
	s := strata.NewSession(driver)
	tree := NewTree(s, t.TempDir())

	events := make(chan core.Event)
	created := make(chan *WatchWorker, 2)

	spec := supervisor.Spec{
		Name: "tree-watcher",
		Type: string(worker.TypeGoroutine),
		Factory: func() (worker.Worker, error) {
			w := NewWatchWorker(tree, events)
			created <- w
			return w, nil
		},
		Backoff: supervisor.Backoff{
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     50 * time.Millisecond,
			Multiplier:      1,
			ResetDuration:   50 * time.Millisecond,
			MaxRestarts:     2,
			MaxDuration:     200 * time.Millisecond,
		},
		RestartPolicy: supervisor.RestartOnFailure,
	}

	sup := supervisor.New("test-watcher", supervisor.StrategyOneForOne, spec)
	if err := sup.Start(ctx); err != nil {
		t.Fatalf("failed to start supervisor: %v", err)
	}

	first := waitForWorker(t, created, "first")
	waitForWatcherState(t, tree, true)
	_ = first.watcher.Close()

	second := waitForWorker(t, created, "second")
	if first == second {
		t.Fatalf("expected supervisor to restart watcher with a new instance")
	}
	waitForWatcherState(t, tree, true)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	if err := sup.Stop(stopCtx); err != nil {
		t.Fatalf("failed to stop supervisor: %v", err)
	}
}

func waitForEvent(t *testing.T, ch <-chan core.Event) core.Event {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for event")
		return core.Event{}
	}
}

func waitForWorker(t *testing.T, ch <-chan *WatchWorker, label string) *WatchWorker {
	t.Helper()
	select {
	case w := <-ch:
		return w
	case <-time.After(2 * time.Second):
		t.Fatalf("timeout waiting for %s worker", label)
		return nil
	}
}

func waitForWatcherState(t *testing.T, tree *Tree, expected bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		state, ok := tree.State().(TreeState)
		if ok && state.WatcherActive == expected {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("timeout waiting for watcher state = %v", expected)
		case <-time.After(10 * time.Millisecond):
		}
	}
}
