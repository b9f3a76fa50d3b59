package strata

import (
	"fmt"

	"github.com/aretw0/strata/pkg/core"
)

// depGraph is the dependency graph for one flush. A node's deps are the
// entities that must be committed before it; dependents are the reverse
// edges used by the scheduler to unblock work.
type depGraph struct {
	nodes map[Entity]*depNode
}

type depNode struct {
	entity     Entity
	deps       map[Entity]*depNode
	dependents map[Entity]*depNode
}

// buildGraph derives ordering constraints for the pending set. Only
// entities inside the set become nodes; dependencies that are already
// clean need no edge. The graph must be acyclic: a cycle means there is
// no valid single-item commit order, reported before any network call.
func buildGraph(pending []Entity) (*depGraph, error) {
	g := &depGraph{nodes: make(map[Entity]*depNode, len(pending))}

	for _, e := range pending {
		g.addNode(e)
	}
	for _, e := range pending {
		for _, dep := range e.dependencies() {
			g.addEdge(e, dep)
		}
	}

	// Deleted branches wait for created branches. When a subtree is being
	// re-anchored in one flush, this keeps an ancestor deletion from
	// cascading over notes whose new clone branch does not exist yet.
	var created, deleted []*Branch
	for _, e := range pending {
		b, ok := e.(*Branch)
		if !ok {
			continue
		}
		switch b.state {
		case core.StateCreate:
			created = append(created, b)
		case core.StateDelete:
			deleted = append(deleted, b)
		}
	}
	for _, del := range deleted {
		for _, cre := range created {
			g.addEdge(del, cre)
		}
	}

	if err := g.detectCycles(); err != nil {
		return nil, &core.ValidationError{Problems: []string{err.Error()}}
	}
	return g, nil
}

func (g *depGraph) addNode(e Entity) {
	if _, ok := g.nodes[e]; ok {
		return
	}
	g.nodes[e] = &depNode{
		entity:     e,
		deps:       make(map[Entity]*depNode),
		dependents: make(map[Entity]*depNode),
	}
}

// addEdge records that dep must be committed before e. Edges to entities
// outside the pending set are dropped.
func (g *depGraph) addEdge(e, dep Entity) {
	if e == dep {
		return
	}
	from, ok := g.nodes[e]
	if !ok {
		return
	}
	to, ok := g.nodes[dep]
	if !ok {
		return
	}
	from.deps[dep] = to
	to.dependents[e] = from
}

// detectCycles runs a depth-first search with the classic three node
// sets: permanently visited, on the current recursion stack, and
// unvisited.
func (g *depGraph) detectCycles() error {
	permanent := make(map[Entity]bool, len(g.nodes))
	temporary := make(map[Entity]bool)

	var visit func(n *depNode) error
	visit = func(n *depNode) error {
		if permanent[n.entity] {
			return nil
		}
		if temporary[n.entity] {
			return fmt.Errorf("dependency cycle involving %s", describe(n.entity))
		}
		temporary[n.entity] = true
		for _, dep := range n.deps {
			if err := visit(dep); err != nil {
				return err
			}
		}
		delete(temporary, n.entity)
		permanent[n.entity] = true
		return nil
	}

	// Deterministic traversal order keeps the reported cycle stable.
	ordered := make([]Entity, 0, len(g.nodes))
	for e := range g.nodes {
		ordered = append(ordered, e)
	}
	sortBySeq(ordered)

	for _, e := range ordered {
		if !permanent[e] {
			if err := visit(g.nodes[e]); err != nil {
				return err
			}
		}
	}
	return nil
}
