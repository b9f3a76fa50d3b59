// Package strata is the composition root for the strata toolkit.
//
// It connects the session engine (change tracking and flush
// scheduling) with the infrastructure adapters (HTTP backend driver,
// directory mirror) behind a small factory API.
//
// Philosophy:
//
// Strata treats a hierarchical note server as a database with a unit
// of work in front of it. Entities fetched through a session are
// tracked in memory; edits accumulate locally and commit in one
// dependency-ordered flush. The default backend speaks a REST-style
// note API over HTTP, but the engine is agnostic, allowing other
// drivers via core.Driver.
//
// Features:
//
//   - **Unit of Work**: notes, attributes and branches tracked with
//     create/update/delete states and committed in dependency order.
//   - **Placeholder IDs**: new entities get local ids that are swapped
//     for server-assigned ones at flush time.
//   - **Directory Mirror**: export a subtree to Markdown files with
//     frontmatter, edit, and import the changes back.
//   - **Watching**: a lifecycle-managed worker turns file changes into
//     debounced events.
//   - **Typed Labels**: generic helpers bind a note's labels to plain
//     structs.
//
// Usage:
//
//	session, err := strata.Connect(ctx, "http://localhost:8080",
//		strata.WithToken(token),
//	)
//
//	note := session.NewNote("meeting notes")
//	root.AddChild(note)
//	err = session.Flush(ctx)
package strata
