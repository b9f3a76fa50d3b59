package strata

// scheduler consumes a dependency graph and yields entities in
// dependency-respecting rounds. Entities returned together by Ready are
// mutually independent; the flush coordinator dispatches them
// sequentially, which is the safe choice under a non-transactional
// remote API.
type scheduler struct {
	graph *depGraph

	// indegree counts unresolved dependencies per entity.
	indegree map[Entity]int
	// waiting holds entities not yet handed out.
	waiting map[Entity]struct{}
	// outstanding holds entities handed out but not yet marked done.
	outstanding map[Entity]struct{}
}

func newScheduler(g *depGraph) *scheduler {
	s := &scheduler{
		graph:       g,
		indegree:    make(map[Entity]int, len(g.nodes)),
		waiting:     make(map[Entity]struct{}, len(g.nodes)),
		outstanding: make(map[Entity]struct{}),
	}
	for e, n := range g.nodes {
		s.indegree[e] = len(n.deps)
		s.waiting[e] = struct{}{}
	}
	return s
}

// Active reports whether entities remain unprocessed.
func (s *scheduler) Active() bool {
	return len(s.waiting) > 0 || len(s.outstanding) > 0
}

// Remaining returns the number of unprocessed entities, for diagnostics.
func (s *scheduler) Remaining() int {
	return len(s.waiting) + len(s.outstanding)
}

// Ready returns all waiting entities whose dependencies are satisfied,
// removing them from the waiting set. Ties are broken by insertion order
// so the schedule is deterministic.
func (s *scheduler) Ready() []Entity {
	var ready []Entity
	for e := range s.waiting {
		if s.indegree[e] == 0 {
			ready = append(ready, e)
		}
	}
	for _, e := range ready {
		delete(s.waiting, e)
		s.outstanding[e] = struct{}{}
	}
	sortBySeq(ready)
	return ready
}

// Done marks an entity committed, unblocking its dependents.
func (s *scheduler) Done(e Entity) {
	if _, ok := s.outstanding[e]; !ok {
		return
	}
	delete(s.outstanding, e)
	for dependent := range s.graph.nodes[e].dependents {
		s.indegree[dependent]--
	}
}
