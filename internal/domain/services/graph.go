package services

import (
	"sort"

	"github.com/ersonp/chronicle-core/internal/domain/entities"
)

// referenceEdge is a single relative-date dependency: the owning event's
// position is the referenced event's position plus a signed year offset.
type referenceEdge struct {
	RefEventID  string
	OffsetYears int64
}

// referenceGraph tracks "event depends on reference event" edges built from
// relative temporal values. Each event has at most one outgoing edge, so the
// structure is a functional graph: cycle detection is a walk along the
// dependency chain of the proposed reference, bounded by chain length rather
// than graph size.
type referenceGraph struct {
	edges      map[string]referenceEdge
	dependents map[string]map[string]bool // reference -> direct dependents
}

func newReferenceGraph() *referenceGraph {
	return &referenceGraph{
		edges:      make(map[string]referenceEdge),
		dependents: make(map[string]map[string]bool),
	}
}

// AddOrUpdate inserts or replaces the outgoing edge of eventID. It rejects
// self-references and edges that would close a cycle with
// *entities.CyclicReferenceError, leaving the graph unchanged.
func (g *referenceGraph) AddOrUpdate(eventID, refEventID string, offsetYears int64) error {
	if eventID == refEventID {
		return &entities.CyclicReferenceError{EventID: eventID, ReferenceID: refEventID}
	}
	if g.wouldCycle(eventID, refEventID) {
		return &entities.CyclicReferenceError{EventID: eventID, ReferenceID: refEventID}
	}

	g.Remove(eventID)
	g.edges[eventID] = referenceEdge{RefEventID: refEventID, OffsetYears: offsetYears}
	if g.dependents[refEventID] == nil {
		g.dependents[refEventID] = make(map[string]bool)
	}
	g.dependents[refEventID][eventID] = true
	return nil
}

// wouldCycle reports whether an edge eventID -> refEventID would close a
// cycle, i.e. whether eventID is reachable by following refEventID's own
// dependency chain.
func (g *referenceGraph) wouldCycle(eventID, refEventID string) bool {
	cur := refEventID
	for {
		if cur == eventID {
			return true
		}
		edge, ok := g.edges[cur]
		if !ok {
			return false
		}
		cur = edge.RefEventID
	}
}

// Remove drops the outgoing edge of eventID, if any. Called when an event's
// temporal value changes away from relative or the event is deleted. Incoming
// edges are left in place: dependents of a deleted event keep their reference
// and resolve as unknown.
func (g *referenceGraph) Remove(eventID string) {
	edge, ok := g.edges[eventID]
	if !ok {
		return
	}
	delete(g.edges, eventID)
	if deps := g.dependents[edge.RefEventID]; deps != nil {
		delete(deps, eventID)
		if len(deps) == 0 {
			delete(g.dependents, edge.RefEventID)
		}
	}
}

// ReferenceOf returns the outgoing edge of eventID, if it has one.
func (g *referenceGraph) ReferenceOf(eventID string) (referenceEdge, bool) {
	edge, ok := g.edges[eventID]
	return edge, ok
}

// DependentsOf returns every event whose resolved position transitively
// depends on eventID, in deterministic (sorted) order. Used to scope
// recomputation to the affected subgraph.
func (g *referenceGraph) DependentsOf(eventID string) []string {
	seen := make(map[string]bool)
	queue := []string{eventID}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for dep := range g.dependents[cur] {
			if !seen[dep] {
				seen[dep] = true
				queue = append(queue, dep)
			}
		}
	}

	result := make([]string, 0, len(seen))
	for id := range seen {
		result = append(result, id)
	}
	sort.Strings(result)
	return result
}
