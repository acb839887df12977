package handlers

import (
	"context"
	"iter"

	"github.com/ersonp/chronicle-core/internal/domain/entities"
	"github.com/ersonp/chronicle-core/internal/domain/services"
)

// TimelineHandler handles timeline operations.
type TimelineHandler struct {
	timelines *services.TimelineService
}

// NewTimelineHandler creates a new TimelineHandler.
func NewTimelineHandler(timelines *services.TimelineService) *TimelineHandler {
	return &TimelineHandler{timelines: timelines}
}

// HandleCreate creates a timeline.
func (h *TimelineHandler) HandleCreate(ctx context.Context, universeID, name, description string, isMain bool) (*entities.Timeline, error) {
	return h.timelines.CreateTimeline(ctx, universeID, name, description, isMain)
}

// HandleSetMain promotes a timeline to the universe's main timeline.
func (h *TimelineHandler) HandleSetMain(ctx context.Context, timelineID string) error {
	return h.timelines.SetMain(ctx, timelineID)
}

// HandleList lists a universe's timelines.
func (h *TimelineHandler) HandleList(ctx context.Context, universeID string) ([]entities.Timeline, error) {
	return h.timelines.List(ctx, universeID)
}

// HandleDelete removes a timeline, leaving its member events in place.
func (h *TimelineHandler) HandleDelete(ctx context.Context, timelineID string) error {
	return h.timelines.Delete(ctx, timelineID)
}

// HandleAssign adds an event to a timeline.
func (h *TimelineHandler) HandleAssign(ctx context.Context, timelineID, eventID string) error {
	return h.timelines.Assign(ctx, timelineID, eventID)
}

// HandleUnassign removes an event from a timeline.
func (h *TimelineHandler) HandleUnassign(ctx context.Context, timelineID, eventID string) error {
	return h.timelines.Unassign(ctx, timelineID, eventID)
}

// HandleShow returns a timeline and its members in chronological order.
func (h *TimelineHandler) HandleShow(ctx context.Context, timelineID string) (*entities.Timeline, iter.Seq[*entities.Event], error) {
	tl, err := h.timelines.Timeline(ctx, timelineID)
	if err != nil {
		return nil, nil, err
	}
	members, err := h.timelines.OrderedMembers(ctx, timelineID)
	if err != nil {
		return nil, nil, err
	}
	return tl, members, nil
}

// HandleRange returns a timeline's members within the given year bounds;
// empty bound strings leave that side open.
func (h *TimelineHandler) HandleRange(ctx context.Context, timelineID, from, to string) ([]*entities.Event, error) {
	lower, err := ParseYearBound(from)
	if err != nil {
		return nil, err
	}
	upper, err := ParseYearBound(to)
	if err != nil {
		return nil, err
	}
	return h.timelines.MembersInRange(ctx, timelineID, lower, upper)
}

// HandleMerge combines several timelines into one chronological view.
func (h *TimelineHandler) HandleMerge(ctx context.Context, timelineIDs []string) ([]services.MergedEvent, error) {
	return h.timelines.MergeView(ctx, timelineIDs)
}
