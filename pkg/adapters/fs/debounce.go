package fs

import (
	"sync"
	"time"

	"github.com/aretw0/strata/pkg/core"
)

// debouncer coalesces bursts of events per id. Editors commonly produce
// several writes for one save; only the last event within the window is
// delivered.
type debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	timers  map[string]*time.Timer
	pending map[string]core.Event
	wg      sync.WaitGroup
	stopped bool
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:   delay,
		timers:  make(map[string]*time.Timer),
		pending: make(map[string]core.Event),
	}
}

// add schedules delivery of the event after the quiet window. A newer
// event for the same id replaces the pending one and restarts the timer.
func (d *debouncer) add(event core.Event, deliver func(core.Event)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	d.pending[event.ID] = event
	if timer, ok := d.timers[event.ID]; ok {
		timer.Reset(d.delay)
		return
	}

	d.wg.Add(1)
	d.timers[event.ID] = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()
		d.mu.Lock()
		e := d.pending[event.ID]
		delete(d.pending, event.ID)
		delete(d.timers, event.ID)
		stopped := d.stopped
		d.mu.Unlock()
		if !stopped {
			deliver(e)
		}
	})
}

// stopAndWait blocks new events and waits for in-flight timers, up to
// the given timeout.
func (d *debouncer) stopAndWait(timeout time.Duration) {
	d.mu.Lock()
	d.stopped = true
	for id, timer := range d.timers {
		if timer.Stop() {
			d.wg.Done()
			delete(d.timers, id)
			delete(d.pending, id)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
	}
}
