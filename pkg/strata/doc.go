// Package strata implements the session and flush engine: a unit of work
// over a hierarchical note graph.
//
// A Session tracks notes, attributes and branches fetched from or
// destined for a remote note store. Mutations stay local until Flush,
// which validates the pending set, derives commit order from entity
// dependencies (a note before its attributes and branches, deletions of
// branches before deletions of their endpoint notes) and dispatches each
// entity to a core.Driver in topological order.
//
// The remote API offers no multi-object transactions, so Flush is not
// atomic: on failure it stops, keeps what was committed and reports a
// typed error identifying the entity that failed.
package strata
