package entities

import "fmt"

// The error types below form the mutation-boundary taxonomy. Every invalid
// edit is rejected synchronously with one of these before any state changes;
// all of them are caller-recoverable.

// CyclicReferenceError reports a relative-date edit that would make the
// reference graph cyclic, including an event referencing itself.
type CyclicReferenceError struct {
	EventID     string
	ReferenceID string
}

func (e *CyclicReferenceError) Error() string {
	if e.EventID == e.ReferenceID {
		return fmt.Sprintf("event %s cannot reference itself", e.EventID)
	}
	return fmt.Sprintf("relative date on event %s would create a cycle through %s", e.EventID, e.ReferenceID)
}

// CyclicParentError reports a reparent that would make a location its own
// ancestor.
type CyclicParentError struct {
	LocationID string
	ParentID   string
}

func (e *CyclicParentError) Error() string {
	if e.LocationID == e.ParentID {
		return fmt.Sprintf("location %s cannot be its own parent", e.LocationID)
	}
	return fmt.Sprintf("location %s cannot be parented under its descendant %s", e.LocationID, e.ParentID)
}

// DanglingReferenceError reports a reference to an entity that does not exist
// in the universe being edited.
type DanglingReferenceError struct {
	Kind string // "event", "location", "figure", "organization", "participant", "timeline", "universe"
	ID   string
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// RestrictedDeleteError reports a location delete under the restrict policy
// while children still exist.
type RestrictedDeleteError struct {
	LocationID string
	Children   int
}

func (e *RestrictedDeleteError) Error() string {
	return fmt.Sprintf("location %s has %d children; delete with cascade or reparent policy", e.LocationID, e.Children)
}
