package lifecycle

import (
	"context"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/strata/pkg/core"
)

// Watch events arrive in bursts when an editor rewrites a whole subtree;
// a small buffer keeps the watcher from blocking on a slow consumer.
const sourceBuffer = 16

type treeSource struct {
	events <-chan core.Event
	out    chan lifecycle.Event
}

// NewSource bridges a typed note event channel to a lifecycle.Source.
// core.Event satisfies lifecycle.Event (it has String()), so the bridge
// only forwards values until either side shuts down.
func NewSource(events <-chan core.Event) lifecycle.Source {
	return &treeSource{
		events: events,
		out:    make(chan lifecycle.Event, sourceBuffer),
	}
}

func (s *treeSource) Events() <-chan lifecycle.Event {
	return s.out
}

func (s *treeSource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, s.forward)
	return nil
}

func (s *treeSource) forward(ctx context.Context) error {
	defer close(s.out)
	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-s.events:
			if !ok {
				return nil
			}
			select {
			case s.out <- e:
			case <-ctx.Done():
				return nil
			}
		}
	}
}
