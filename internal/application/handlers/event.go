package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/ersonp/chronicle-core/internal/domain/entities"
	"github.com/ersonp/chronicle-core/internal/domain/services"
)

// EventHandler handles event operations.
type EventHandler struct {
	chron *services.ChronologyService
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(chron *services.ChronologyService) *EventHandler {
	return &EventHandler{chron: chron}
}

// CreateParams carries the raw CLI inputs for creating an event.
type CreateParams struct {
	Name         string
	Type         string
	Importance   string
	Description  string
	Start        string // ParseTemporalValue syntax
	End          string // optional, same syntax
	LocationID   string
	Participants []string
}

// EventRow pairs an event with its resolved anchor for display.
type EventRow struct {
	Event  *entities.Event
	Anchor entities.Anchor
}

// HandleCreate parses and creates an event.
func (h *EventHandler) HandleCreate(ctx context.Context, universeID string, params CreateParams) (*entities.Event, error) {
	start, err := ParseTemporalValue(params.Start)
	if err != nil {
		return nil, fmt.Errorf("start date: %w", err)
	}

	draft := services.EventDraft{
		Name:         params.Name,
		Description:  params.Description,
		Start:        start,
		LocationID:   params.LocationID,
		Participants: params.Participants,
	}
	if params.Type != "" {
		et, err := parseEventType(params.Type)
		if err != nil {
			return nil, err
		}
		draft.Type = et
	}
	if params.Importance != "" {
		imp, err := parseImportance(params.Importance)
		if err != nil {
			return nil, err
		}
		draft.Importance = imp
	}
	if params.End != "" {
		end, err := ParseTemporalValue(params.End)
		if err != nil {
			return nil, fmt.Errorf("end date: %w", err)
		}
		draft.End = &end
	}

	return h.chron.CreateEvent(ctx, universeID, draft)
}

// HandleSetDate changes an event's start date. The returned IDs name events
// whose chronological position became unknown because of the change.
func (h *EventHandler) HandleSetDate(ctx context.Context, universeID, eventID, dateSpec string) ([]string, error) {
	tv, err := ParseTemporalValue(dateSpec)
	if err != nil {
		return nil, err
	}
	return h.chron.SetTemporalValue(ctx, universeID, eventID, tv)
}

// HandleUpdate applies non-date field updates from raw CLI inputs. Empty
// strings mean "leave unchanged".
func (h *EventHandler) HandleUpdate(ctx context.Context, universeID, eventID string, name, typeStr, importanceStr, description string) (*entities.Event, error) {
	update := services.EventUpdate{}
	if name != "" {
		update.Name = &name
	}
	if typeStr != "" {
		et, err := parseEventType(typeStr)
		if err != nil {
			return nil, err
		}
		update.Type = &et
	}
	if importanceStr != "" {
		imp, err := parseImportance(importanceStr)
		if err != nil {
			return nil, err
		}
		update.Importance = &imp
	}
	if description != "" {
		update.Description = &description
	}
	return h.chron.UpdateEvent(ctx, universeID, eventID, update)
}

// HandleDelete removes an event and reports dependents left without a
// resolvable date.
func (h *EventHandler) HandleDelete(ctx context.Context, universeID, eventID string) ([]string, error) {
	return h.chron.DeleteEvent(ctx, universeID, eventID)
}

// HandleShow returns an event with its resolved anchor.
func (h *EventHandler) HandleShow(ctx context.Context, universeID, eventID string) (*EventRow, error) {
	ev, err := h.chron.Event(ctx, universeID, eventID)
	if err != nil {
		return nil, err
	}
	anchor, err := h.chron.ResolvedAnchor(ctx, universeID, eventID)
	if err != nil {
		return nil, err
	}
	return &EventRow{Event: ev, Anchor: anchor}, nil
}

// HandleList returns all events of a universe in chronological order.
func (h *EventHandler) HandleList(ctx context.Context, universeID string) ([]EventRow, error) {
	seq, err := h.chron.OrderedEvents(ctx, universeID)
	if err != nil {
		return nil, err
	}
	var rows []EventRow
	for ev := range seq {
		anchor, err := h.chron.ResolvedAnchor(ctx, universeID, ev.ID)
		if err != nil {
			return nil, err
		}
		rows = append(rows, EventRow{Event: ev, Anchor: anchor})
	}
	return rows, nil
}

// HandleSearch finds events by name substring, each with its resolved anchor.
func (h *EventHandler) HandleSearch(ctx context.Context, universeID, query string, limit int) ([]EventRow, error) {
	events, err := h.chron.Search(ctx, universeID, query, limit)
	if err != nil {
		return nil, err
	}
	rows := make([]EventRow, 0, len(events))
	for _, ev := range events {
		anchor, err := h.chron.ResolvedAnchor(ctx, universeID, ev.ID)
		if err != nil {
			return nil, err
		}
		rows = append(rows, EventRow{Event: ev, Anchor: anchor})
	}
	return rows, nil
}

// HandleDependents lists the events whose dates depend on the given event.
func (h *EventHandler) HandleDependents(ctx context.Context, universeID, eventID string) ([]string, error) {
	return h.chron.DependentsOf(ctx, universeID, eventID)
}

// parseEventType validates and converts a string to EventType.
func parseEventType(s string) (entities.EventType, error) {
	if entities.IsValidEventType(s) {
		return entities.EventType(s), nil
	}
	return "", fmt.Errorf("invalid event type: %s (valid: %s)", s, joinEventTypes())
}

// parseImportance validates and converts a string to EventImportance.
func parseImportance(s string) (entities.EventImportance, error) {
	if entities.IsValidImportance(s) {
		return entities.EventImportance(s), nil
	}
	valid := make([]string, len(entities.ImportanceLevels))
	for i, l := range entities.ImportanceLevels {
		valid[i] = string(l)
	}
	return "", fmt.Errorf("invalid importance: %s (valid: %s)", s, strings.Join(valid, ", "))
}

func joinEventTypes() string {
	names := make([]string, len(entities.EventTypes))
	for i, t := range entities.EventTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
