package strata

import (
	"github.com/aretw0/introspection"
)

// SessionState exposes internal state for observability.
type SessionState struct {
	Entities int            `json:"entities"`
	Dirty    int            `json:"dirty"`
	ByState  map[string]int `json:"by_state,omitempty"`
	Closed   bool           `json:"closed"`
}

// State implements introspection.Introspectable.
func (s *Session) State() any {
	byState := make(map[string]int)
	for e := range s.cache.dirty {
		byState[string(e.State())]++
	}
	return SessionState{
		Entities: len(s.cache.entities),
		Dirty:    len(s.cache.dirty),
		ByState:  byState,
		Closed:   s.closed,
	}
}

// ComponentType implements introspection.Component.
func (s *Session) ComponentType() string {
	return "session"
}

var _ introspection.Introspectable = (*Session)(nil)
var _ introspection.Component = (*Session)(nil)

// DirtyCount returns the number of entities with pending changes.
func (s *Session) DirtyCount() int {
	return len(s.cache.dirty)
}

// TrackedCount returns the number of entities registered in the session.
func (s *Session) TrackedCount() int {
	return len(s.cache.entities)
}
