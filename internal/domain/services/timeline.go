package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ersonp/chronicle-core/internal/domain/entities"
	"github.com/ersonp/chronicle-core/internal/domain/ports"
)

// TimelineService manages named timelines and their event memberships. An
// event can belong to any number of timelines; membership never affects how
// the event resolves, only which views it appears in. Ordering is always
// delegated to the chronology so every view agrees on event positions.
type TimelineService struct {
	repo  ports.RelationalDB
	chron *ChronologyService
}

// NewTimelineService creates a new TimelineService.
func NewTimelineService(repo ports.RelationalDB, chron *ChronologyService) *TimelineService {
	return &TimelineService{repo: repo, chron: chron}
}

// MergedEvent is one entry of a merge view: an event plus the timelines (of
// those being merged) it belongs to.
type MergedEvent struct {
	Event       *entities.Event
	TimelineIDs []string
}

// CreateTimeline creates a timeline. Marking it main demotes any previous
// main timeline of the universe; there is at most one at a time.
func (s *TimelineService) CreateTimeline(ctx context.Context, universeID, name, description string, isMain bool) (*entities.Timeline, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("timeline name cannot be empty")
	}
	u, err := s.repo.FindUniverseByID(ctx, universeID)
	if err != nil {
		return nil, fmt.Errorf("finding universe: %w", err)
	}
	if u == nil {
		return nil, &entities.DanglingReferenceError{Kind: "universe", ID: universeID}
	}

	tl := &entities.Timeline{
		ID:          uuid.New().String(),
		UniverseID:  universeID,
		Name:        name,
		Description: description,
		IsMain:      isMain,
		CreatedAt:   time.Now(),
	}
	if isMain {
		if err := s.demoteMain(ctx, universeID); err != nil {
			return nil, err
		}
	}
	if err := s.repo.SaveTimeline(ctx, tl); err != nil {
		return nil, fmt.Errorf("saving timeline: %w", err)
	}
	out := *tl
	return &out, nil
}

// SetMain makes a timeline the universe's main timeline, demoting the
// previous one.
func (s *TimelineService) SetMain(ctx context.Context, timelineID string) error {
	tl, err := s.timeline(ctx, timelineID)
	if err != nil {
		return err
	}
	if tl.IsMain {
		return nil
	}
	if err := s.demoteMain(ctx, tl.UniverseID); err != nil {
		return err
	}
	tl.IsMain = true
	if err := s.repo.SaveTimeline(ctx, tl); err != nil {
		return fmt.Errorf("saving timeline: %w", err)
	}
	return nil
}

// Timeline returns a timeline by ID.
func (s *TimelineService) Timeline(ctx context.Context, timelineID string) (*entities.Timeline, error) {
	return s.timeline(ctx, timelineID)
}

// List returns a universe's timelines ordered by name.
func (s *TimelineService) List(ctx context.Context, universeID string) ([]entities.Timeline, error) {
	return s.repo.ListTimelines(ctx, universeID)
}

// Delete removes a timeline and its membership rows. Member events are not
// touched.
func (s *TimelineService) Delete(ctx context.Context, timelineID string) error {
	if _, err := s.timeline(ctx, timelineID); err != nil {
		return err
	}
	if err := s.repo.DeleteTimeline(ctx, timelineID); err != nil {
		return fmt.Errorf("deleting timeline: %w", err)
	}
	return nil
}

// Assign adds an event to a timeline. Assigning an existing member again is
// a no-op.
func (s *TimelineService) Assign(ctx context.Context, timelineID, eventID string) error {
	tl, err := s.timeline(ctx, timelineID)
	if err != nil {
		return err
	}
	ev, err := s.repo.FindEventByID(ctx, eventID)
	if err != nil {
		return fmt.Errorf("finding event: %w", err)
	}
	if ev == nil || ev.UniverseID != tl.UniverseID {
		return &entities.DanglingReferenceError{Kind: "event", ID: eventID}
	}
	if err := s.repo.AddTimelineMember(ctx, timelineID, eventID); err != nil {
		return fmt.Errorf("adding member: %w", err)
	}
	return nil
}

// Unassign removes an event from a timeline. Removing a non-member is a
// no-op.
func (s *TimelineService) Unassign(ctx context.Context, timelineID, eventID string) error {
	if _, err := s.timeline(ctx, timelineID); err != nil {
		return err
	}
	if err := s.repo.RemoveTimelineMember(ctx, timelineID, eventID); err != nil {
		return fmt.Errorf("removing member: %w", err)
	}
	return nil
}

// OrderedMembers returns a lazy, restartable sequence of a timeline's events
// in resolved chronological order.
func (s *TimelineService) OrderedMembers(ctx context.Context, timelineID string) (iter.Seq[*entities.Event], error) {
	tl, err := s.timeline(ctx, timelineID)
	if err != nil {
		return nil, err
	}
	events, anchors, err := s.memberEvents(ctx, tl)
	if err != nil {
		return nil, err
	}
	sortEventsByAnchor(events, anchors)

	return func(yield func(*entities.Event) bool) {
		for _, ev := range events {
			if !yield(ev) {
				return
			}
		}
	}, nil
}

// MembersInRange returns a timeline's events whose resolved year falls in
// [lower, upper], in chronological order. Nil bounds leave that side open.
// Events with unknown anchors never match a range.
func (s *TimelineService) MembersInRange(ctx context.Context, timelineID string, lower, upper *int64) ([]*entities.Event, error) {
	tl, err := s.timeline(ctx, timelineID)
	if err != nil {
		return nil, err
	}
	events, anchors, err := s.memberEvents(ctx, tl)
	if err != nil {
		return nil, err
	}

	filtered := events[:0]
	for _, ev := range events {
		if anchors[ev.ID].InYearRange(lower, upper) {
			filtered = append(filtered, ev)
		}
	}
	sortEventsByAnchor(filtered, anchors)
	return filtered, nil
}

// MergeView combines several timelines of one universe into a single
// chronological view. Each entry carries the subset of merged timelines the
// event belongs to; events in more than one appear once.
func (s *TimelineService) MergeView(ctx context.Context, timelineIDs []string) ([]MergedEvent, error) {
	if len(timelineIDs) == 0 {
		return nil, errors.New("merge view needs at least one timeline")
	}

	universeID := ""
	sources := make(map[string][]string) // eventID -> timeline IDs
	for _, tlID := range timelineIDs {
		tl, err := s.timeline(ctx, tlID)
		if err != nil {
			return nil, err
		}
		if universeID == "" {
			universeID = tl.UniverseID
		} else if tl.UniverseID != universeID {
			return nil, fmt.Errorf("timeline %s belongs to a different universe", tlID)
		}
		members, err := s.repo.ListTimelineMembers(ctx, tlID)
		if err != nil {
			return nil, fmt.Errorf("listing members: %w", err)
		}
		for _, evID := range members {
			sources[evID] = append(sources[evID], tlID)
		}
	}

	ids := make([]string, 0, len(sources))
	for id := range sources {
		ids = append(ids, id)
	}
	events, anchors, err := s.chron.EventsByIDs(ctx, universeID, ids)
	if err != nil {
		return nil, err
	}
	sortEventsByAnchor(events, anchors)

	out := make([]MergedEvent, 0, len(events))
	for _, ev := range events {
		tls := sources[ev.ID]
		sort.Strings(tls)
		out = append(out, MergedEvent{Event: ev, TimelineIDs: tls})
	}
	return out, nil
}

func (s *TimelineService) timeline(ctx context.Context, timelineID string) (*entities.Timeline, error) {
	tl, err := s.repo.FindTimelineByID(ctx, timelineID)
	if err != nil {
		return nil, fmt.Errorf("finding timeline: %w", err)
	}
	if tl == nil {
		return nil, &entities.DanglingReferenceError{Kind: "timeline", ID: timelineID}
	}
	return tl, nil
}

func (s *TimelineService) memberEvents(ctx context.Context, tl *entities.Timeline) ([]*entities.Event, map[string]entities.Anchor, error) {
	members, err := s.repo.ListTimelineMembers(ctx, tl.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("listing members: %w", err)
	}
	return s.chron.EventsByIDs(ctx, tl.UniverseID, members)
}

func (s *TimelineService) demoteMain(ctx context.Context, universeID string) error {
	prev, err := s.repo.FindMainTimeline(ctx, universeID)
	if err != nil {
		return fmt.Errorf("finding main timeline: %w", err)
	}
	if prev == nil {
		return nil
	}
	prev.IsMain = false
	if err := s.repo.SaveTimeline(ctx, prev); err != nil {
		return fmt.Errorf("demoting main timeline: %w", err)
	}
	return nil
}
