package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ersonp/chronicle-core/internal/domain/entities"
	"github.com/ersonp/chronicle-core/internal/domain/ports"
)

// ChronologyService owns the event catalog of each universe and resolves
// every event to a comparable anchor. Relative dates form a dependency graph
// (see referenceGraph); edits invalidate and recompute only the dependents of
// the changed event, so the cost of an edit is bounded by the affected
// subgraph rather than the whole dataset.
//
// All state is scoped per universe and loaded on first use. Mutations on a
// service are serialized; sequences handed to callers are snapshots and can
// be consumed without holding any lock.
type ChronologyService struct {
	repo ports.RelationalDB

	mu        sync.Mutex
	universes map[string]*chronologyIndex
}

// chronologyIndex is the in-memory model of one universe's events.
// The anchors map is kept complete: every event has a resolved (possibly
// unknown) anchor after load and after every mutation.
type chronologyIndex struct {
	events  map[string]*entities.Event
	graph   *referenceGraph
	anchors map[string]entities.Anchor
}

// NewChronologyService creates a new ChronologyService.
func NewChronologyService(repo ports.RelationalDB) *ChronologyService {
	return &ChronologyService{
		repo:      repo,
		universes: make(map[string]*chronologyIndex),
	}
}

// EventDraft carries the caller-supplied fields for a new event.
type EventDraft struct {
	Name         string
	Type         entities.EventType
	Importance   entities.EventImportance
	Description  string
	Start        entities.TemporalValue
	End          *entities.TemporalValue
	LocationID   string
	Participants []string
}

// EventUpdate carries optional non-temporal field updates for an event.
// Nil pointers leave the field unchanged. Date changes go through
// SetTemporalValue so the reference graph stays consistent.
type EventUpdate struct {
	Name         *string
	Type         *entities.EventType
	Importance   *entities.EventImportance
	Description  *string
	LocationID   *string // empty string clears the reference
	Participants []string
	End          *entities.TemporalValue
	ClearEnd     bool
}

// Load builds (or rebuilds) the in-memory index for a universe from storage.
func (s *ChronologyService) Load(ctx context.Context, universeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.loadLocked(ctx, universeID)
	return err
}

// CreateEvent validates and persists a new event, then indexes it.
func (s *ChronologyService) CreateEvent(ctx context.Context, universeID string, draft EventDraft) (*entities.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ix, err := s.indexLocked(ctx, universeID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(draft.Name)
	if name == "" {
		return nil, errors.New("event name cannot be empty")
	}
	if draft.Type == "" {
		draft.Type = entities.EventOther
	}
	if draft.Importance == "" {
		draft.Importance = entities.ImportanceModerate
	}
	if err := draft.Start.Validate(); err != nil {
		return nil, fmt.Errorf("invalid start date: %w", err)
	}
	if err := validateEndValue(draft.End); err != nil {
		return nil, err
	}
	if draft.Start.Precision == entities.PrecisionRelative {
		if _, ok := ix.events[draft.Start.RefEventID]; !ok {
			return nil, &entities.DanglingReferenceError{Kind: "event", ID: draft.Start.RefEventID}
		}
	}
	if err := s.validateLocationRef(ctx, universeID, draft.LocationID); err != nil {
		return nil, err
	}
	if err := s.validateParticipants(ctx, universeID, draft.Participants); err != nil {
		return nil, err
	}

	now := time.Now()
	ev := &entities.Event{
		ID:            uuid.New().String(),
		UniverseID:    universeID,
		Name:          name,
		Type:          draft.Type,
		Importance:    draft.Importance,
		Description:   draft.Description,
		Start:         draft.Start,
		End:           draft.End,
		Instantaneous: draft.End == nil,
		LocationID:    draft.LocationID,
		Participants:  draft.Participants,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.SaveEvent(ctx, ev); err != nil {
		return nil, fmt.Errorf("saving event: %w", err)
	}

	ix.events[ev.ID] = ev
	if ev.Start.Precision == entities.PrecisionRelative {
		// A brand new event cannot be referenced by anything yet, so the
		// edge can never close a cycle.
		if err := ix.graph.AddOrUpdate(ev.ID, ev.Start.RefEventID, ev.Start.SignedOffset()); err != nil {
			return nil, err
		}
	}
	ix.resolve(ev.ID)

	out := *ev
	return &out, nil
}

// SetTemporalValue changes an event's start date, maintaining the reference
// graph and recomputing exactly the anchors of the event and its transitive
// dependents. It returns the IDs of events whose order became unknown as a
// non-fatal warning list.
func (s *ChronologyService) SetTemporalValue(ctx context.Context, universeID, eventID string, tv entities.TemporalValue) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ix, err := s.indexLocked(ctx, universeID)
	if err != nil {
		return nil, err
	}
	ev, ok := ix.events[eventID]
	if !ok {
		return nil, &entities.DanglingReferenceError{Kind: "event", ID: eventID}
	}
	if err := tv.Validate(); err != nil {
		return nil, fmt.Errorf("invalid date: %w", err)
	}

	prevEdge, hadEdge := ix.graph.ReferenceOf(eventID)

	if tv.Precision == entities.PrecisionRelative {
		if tv.RefEventID == eventID {
			return nil, &entities.CyclicReferenceError{EventID: eventID, ReferenceID: eventID}
		}
		if _, ok := ix.events[tv.RefEventID]; !ok {
			return nil, &entities.DanglingReferenceError{Kind: "event", ID: tv.RefEventID}
		}
		// Rejects cycles before anything is persisted.
		if err := ix.graph.AddOrUpdate(eventID, tv.RefEventID, tv.SignedOffset()); err != nil {
			return nil, err
		}
	} else {
		ix.graph.Remove(eventID)
	}

	upd := *ev
	upd.Start = tv
	upd.UpdatedAt = time.Now()
	if err := s.repo.SaveEvent(ctx, &upd); err != nil {
		// Restore the previous graph state so the failed edit is not
		// partially applied.
		if hadEdge {
			_ = ix.graph.AddOrUpdate(eventID, prevEdge.RefEventID, prevEdge.OffsetYears)
		} else {
			ix.graph.Remove(eventID)
		}
		return nil, fmt.Errorf("saving event: %w", err)
	}
	ix.events[eventID] = &upd

	affected := append([]string{eventID}, ix.graph.DependentsOf(eventID)...)
	return ix.recompute(affected), nil
}

// UpdateEvent applies non-temporal field updates to an event.
func (s *ChronologyService) UpdateEvent(ctx context.Context, universeID, eventID string, update EventUpdate) (*entities.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ix, err := s.indexLocked(ctx, universeID)
	if err != nil {
		return nil, err
	}
	ev, ok := ix.events[eventID]
	if !ok {
		return nil, &entities.DanglingReferenceError{Kind: "event", ID: eventID}
	}

	upd := *ev
	if update.Name != nil && strings.TrimSpace(*update.Name) != "" {
		upd.Name = strings.TrimSpace(*update.Name)
	}
	if update.Type != nil {
		upd.Type = *update.Type
	}
	if update.Importance != nil {
		upd.Importance = *update.Importance
	}
	if update.Description != nil {
		upd.Description = *update.Description
	}
	if update.LocationID != nil {
		if err := s.validateLocationRef(ctx, universeID, *update.LocationID); err != nil {
			return nil, err
		}
		upd.LocationID = *update.LocationID
	}
	if update.Participants != nil {
		if err := s.validateParticipants(ctx, universeID, update.Participants); err != nil {
			return nil, err
		}
		upd.Participants = update.Participants
	}
	if update.ClearEnd {
		upd.End = nil
		upd.Instantaneous = true
	} else if update.End != nil {
		if err := validateEndValue(update.End); err != nil {
			return nil, err
		}
		upd.End = update.End
		upd.Instantaneous = false
	}
	upd.UpdatedAt = time.Now()

	if err := s.repo.SaveEvent(ctx, &upd); err != nil {
		return nil, fmt.Errorf("saving event: %w", err)
	}
	ix.events[eventID] = &upd

	out := upd
	return &out, nil
}

// DeleteEvent removes an event and its timeline memberships. Events whose
// dates reference it are not deleted; they transition to unknown anchors and
// are returned as a warning list so the caller can surface them.
func (s *ChronologyService) DeleteEvent(ctx context.Context, universeID, eventID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ix, err := s.indexLocked(ctx, universeID)
	if err != nil {
		return nil, err
	}
	if _, ok := ix.events[eventID]; !ok {
		return nil, &entities.DanglingReferenceError{Kind: "event", ID: eventID}
	}

	dependents := ix.graph.DependentsOf(eventID)

	if err := s.repo.RemoveEventMemberships(ctx, eventID); err != nil {
		return nil, fmt.Errorf("removing timeline memberships: %w", err)
	}
	if err := s.repo.DeleteEvent(ctx, eventID); err != nil {
		return nil, fmt.Errorf("deleting event: %w", err)
	}

	delete(ix.events, eventID)
	delete(ix.anchors, eventID)
	// Dependents keep their (now dangling) references and resolve as unknown.
	ix.graph.Remove(eventID)

	return ix.recompute(dependents), nil
}

// Event returns a copy of an event.
func (s *ChronologyService) Event(ctx context.Context, universeID, eventID string) (*entities.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ix, err := s.indexLocked(ctx, universeID)
	if err != nil {
		return nil, err
	}
	ev, ok := ix.events[eventID]
	if !ok {
		return nil, &entities.DanglingReferenceError{Kind: "event", ID: eventID}
	}
	out := *ev
	return &out, nil
}

// ResolvedAnchor returns the resolved anchor for an event.
func (s *ChronologyService) ResolvedAnchor(ctx context.Context, universeID, eventID string) (entities.Anchor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ix, err := s.indexLocked(ctx, universeID)
	if err != nil {
		return entities.Anchor{}, err
	}
	if _, ok := ix.events[eventID]; !ok {
		return entities.Anchor{}, &entities.DanglingReferenceError{Kind: "event", ID: eventID}
	}
	return ix.resolve(eventID), nil
}

// DependentsOf returns the events whose resolved order transitively depends
// on the given event, in deterministic order.
func (s *ChronologyService) DependentsOf(ctx context.Context, universeID, eventID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ix, err := s.indexLocked(ctx, universeID)
	if err != nil {
		return nil, err
	}
	if _, ok := ix.events[eventID]; !ok {
		return nil, &entities.DanglingReferenceError{Kind: "event", ID: eventID}
	}
	return ix.graph.DependentsOf(eventID), nil
}

// OrderedEvents returns a lazy, restartable sequence of all events in the
// universe in resolved chronological order. The sequence iterates a snapshot
// taken at call time; later edits do not affect it.
func (s *ChronologyService) OrderedEvents(ctx context.Context, universeID string) (iter.Seq[*entities.Event], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ix, err := s.indexLocked(ctx, universeID)
	if err != nil {
		return nil, err
	}

	snapshot := make([]*entities.Event, 0, len(ix.events))
	for _, ev := range ix.events {
		snapshot = append(snapshot, ev)
	}
	sortEventsByAnchor(snapshot, ix.anchors)

	return func(yield func(*entities.Event) bool) {
		for _, ev := range snapshot {
			if !yield(ev) {
				return
			}
		}
	}, nil
}

// EventsByIDs returns the events and resolved anchors for the given IDs.
// IDs with no matching event are skipped.
func (s *ChronologyService) EventsByIDs(ctx context.Context, universeID string, ids []string) ([]*entities.Event, map[string]entities.Anchor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ix, err := s.indexLocked(ctx, universeID)
	if err != nil {
		return nil, nil, err
	}

	events := make([]*entities.Event, 0, len(ids))
	anchors := make(map[string]entities.Anchor, len(ids))
	for _, id := range ids {
		ev, ok := ix.events[id]
		if !ok {
			continue
		}
		events = append(events, ev)
		anchors[id] = ix.resolve(id)
	}
	return events, anchors, nil
}

// Search finds events by case-insensitive name substring.
func (s *ChronologyService) Search(ctx context.Context, universeID, query string, limit int) ([]*entities.Event, error) {
	return s.repo.SearchEvents(ctx, universeID, query, limit)
}

// ClearLocationRefs drops in-memory location references to the given
// locations. The persistent side is handled by the hierarchy delete; this
// keeps an already-loaded index consistent without a full reload.
func (s *ChronologyService) ClearLocationRefs(universeID string, locationIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ix, ok := s.universes[universeID]
	if !ok {
		return
	}
	cleared := make(map[string]bool, len(locationIDs))
	for _, id := range locationIDs {
		cleared[id] = true
	}
	for id, ev := range ix.events {
		if ev.LocationID != "" && cleared[ev.LocationID] {
			upd := *ev
			upd.LocationID = ""
			ix.events[id] = &upd
		}
	}
}

// indexLocked returns the index for a universe, loading it if needed.
// Caller must hold s.mu.
func (s *ChronologyService) indexLocked(ctx context.Context, universeID string) (*chronologyIndex, error) {
	if ix, ok := s.universes[universeID]; ok {
		return ix, nil
	}
	return s.loadLocked(ctx, universeID)
}

// loadLocked rebuilds the index for a universe from storage.
// Caller must hold s.mu.
func (s *ChronologyService) loadLocked(ctx context.Context, universeID string) (*chronologyIndex, error) {
	u, err := s.repo.FindUniverseByID(ctx, universeID)
	if err != nil {
		return nil, fmt.Errorf("finding universe: %w", err)
	}
	if u == nil {
		return nil, &entities.DanglingReferenceError{Kind: "universe", ID: universeID}
	}

	events, err := s.repo.ListEvents(ctx, universeID)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}

	ix := &chronologyIndex{
		events:  make(map[string]*entities.Event, len(events)),
		graph:   newReferenceGraph(),
		anchors: make(map[string]entities.Anchor, len(events)),
	}
	for _, ev := range events {
		ix.events[ev.ID] = ev
	}
	for _, ev := range events {
		if ev.Start.Precision != entities.PrecisionRelative {
			continue
		}
		// Stored data satisfies the acyclic invariant; a cycle here means
		// the store was edited out of band, and the edge is skipped so the
		// event resolves as unknown instead of wedging the load.
		_ = ix.graph.AddOrUpdate(ev.ID, ev.Start.RefEventID, ev.Start.SignedOffset())
	}
	for _, ev := range events {
		ix.resolve(ev.ID)
	}

	s.universes[universeID] = ix
	return ix, nil
}

// resolve returns the memoized anchor for an event, computing it if needed.
func (ix *chronologyIndex) resolve(eventID string) entities.Anchor {
	return ix.resolveGuarded(eventID, make(map[string]bool))
}

func (ix *chronologyIndex) resolveGuarded(eventID string, visiting map[string]bool) entities.Anchor {
	if a, ok := ix.anchors[eventID]; ok {
		return a
	}
	ev, ok := ix.events[eventID]
	if !ok {
		// Dangling reference target; nothing to cache under this ID.
		return entities.UnknownAnchor(0)
	}
	if visiting[eventID] {
		// Cycles are rejected at the edge-insertion boundary; this guard
		// only fires on corrupted stored data.
		return entities.UnknownAnchor(ev.CreatedSeq)
	}
	visiting[eventID] = true

	a := ix.computeAnchor(ev, visiting)
	ix.anchors[eventID] = a
	return a
}

func (ix *chronologyIndex) computeAnchor(ev *entities.Event, visiting map[string]bool) entities.Anchor {
	tv := ev.Start
	switch tv.Precision {
	case entities.PrecisionExact:
		return entities.Anchor{
			Known: true,
			Year:  tv.Year,
			Sub:   int32(tv.Month*100 + tv.Day),
			Rank:  entities.RankExact,
			Seq:   ev.CreatedSeq,
		}
	case entities.PrecisionYearOnly:
		return entities.Anchor{Known: true, Year: tv.Year, Rank: entities.RankYearOnly, Seq: ev.CreatedSeq}
	case entities.PrecisionApproximate:
		if tv.AnchorYear == nil {
			return entities.UnknownAnchor(ev.CreatedSeq)
		}
		// The anchor year is the start of the implied period.
		return entities.Anchor{Known: true, Year: *tv.AnchorYear, Rank: entities.RankApproximate, Seq: ev.CreatedSeq}
	case entities.PrecisionRelative:
		ref := ix.resolveGuarded(tv.RefEventID, visiting)
		if !ref.Known {
			return entities.UnknownAnchor(ev.CreatedSeq)
		}
		return entities.Anchor{
			Known: true,
			Year:  ref.Year + tv.SignedOffset(),
			Sub:   ref.Sub,
			Rank:  entities.RankRelative,
			Seq:   ev.CreatedSeq,
		}
	default:
		return entities.UnknownAnchor(ev.CreatedSeq)
	}
}

// recompute invalidates and re-resolves the given events, returning the
// sorted IDs of those whose anchor flipped from known to unknown.
func (ix *chronologyIndex) recompute(ids []string) []string {
	wasKnown := make(map[string]bool, len(ids))
	for _, id := range ids {
		if a, ok := ix.anchors[id]; ok {
			wasKnown[id] = a.Known
		}
		delete(ix.anchors, id)
	}

	var becameUnknown []string
	for _, id := range ids {
		if _, ok := ix.events[id]; !ok {
			continue
		}
		a := ix.resolve(id)
		if !a.Known && wasKnown[id] {
			becameUnknown = append(becameUnknown, id)
		}
	}
	sort.Strings(becameUnknown)
	return becameUnknown
}

// validateLocationRef checks that a non-empty location reference points at an
// existing location in the same universe.
func (s *ChronologyService) validateLocationRef(ctx context.Context, universeID, locationID string) error {
	if locationID == "" {
		return nil
	}
	loc, err := s.repo.FindLocationByID(ctx, locationID)
	if err != nil {
		return fmt.Errorf("finding location: %w", err)
	}
	if loc == nil || loc.UniverseID != universeID {
		return &entities.DanglingReferenceError{Kind: "location", ID: locationID}
	}
	return nil
}

// validateParticipants checks that every participant is an existing figure or
// organization in the same universe.
func (s *ChronologyService) validateParticipants(ctx context.Context, universeID string, participants []string) error {
	for _, id := range participants {
		f, err := s.repo.FindFigureByID(ctx, id)
		if err != nil {
			return fmt.Errorf("finding figure: %w", err)
		}
		if f != nil && f.UniverseID == universeID {
			continue
		}
		o, err := s.repo.FindOrganizationByID(ctx, id)
		if err != nil {
			return fmt.Errorf("finding organization: %w", err)
		}
		if o != nil && o.UniverseID == universeID {
			continue
		}
		return &entities.DanglingReferenceError{Kind: "participant", ID: id}
	}
	return nil
}

// validateEndValue rejects invalid end dates. End dates never join the
// reference graph, so the relative variant is not allowed there.
func validateEndValue(end *entities.TemporalValue) error {
	if end == nil {
		return nil
	}
	if err := end.Validate(); err != nil {
		return fmt.Errorf("invalid end date: %w", err)
	}
	if end.Precision == entities.PrecisionRelative {
		return errors.New("end dates may not be relative to another event")
	}
	return nil
}

// sortEventsByAnchor orders events by resolved anchor, breaking exact ties by
// event ID for determinism.
func sortEventsByAnchor(events []*entities.Event, anchors map[string]entities.Anchor) {
	sort.SliceStable(events, func(i, j int) bool {
		c := anchors[events[i].ID].Compare(anchors[events[j].ID])
		if c != 0 {
			return c < 0
		}
		return events[i].ID < events[j].ID
	})
}
