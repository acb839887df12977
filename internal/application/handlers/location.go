package handlers

import (
	"context"
	"fmt"
	"iter"

	"github.com/ersonp/chronicle-core/internal/domain/entities"
	"github.com/ersonp/chronicle-core/internal/domain/services"
)

// LocationHandler handles location hierarchy operations. Deletes that remove
// locations also clear the in-memory event references held by the chronology.
type LocationHandler struct {
	locations *services.LocationService
	chron     *services.ChronologyService
}

// NewLocationHandler creates a new LocationHandler.
func NewLocationHandler(locations *services.LocationService, chron *services.ChronologyService) *LocationHandler {
	return &LocationHandler{locations: locations, chron: chron}
}

// HandleCreate creates a location from raw CLI inputs.
func (h *LocationHandler) HandleCreate(ctx context.Context, universeID, name, typeStr, description, parentID string) (*entities.Location, error) {
	draft := services.LocationDraft{
		Name:        name,
		Description: description,
		ParentID:    parentID,
	}
	if typeStr != "" {
		lt, err := parseLocationType(typeStr)
		if err != nil {
			return nil, err
		}
		draft.Type = lt
	}
	return h.locations.CreateLocation(ctx, universeID, draft)
}

// HandleMove reparents a location; empty parentID makes it a root.
func (h *LocationHandler) HandleMove(ctx context.Context, universeID, locationID, parentID string) error {
	return h.locations.SetParent(ctx, universeID, locationID, parentID)
}

// HandleDelete deletes a location under a named policy and returns the IDs
// actually removed.
func (h *LocationHandler) HandleDelete(ctx context.Context, universeID, locationID, policyStr string) ([]string, error) {
	policy, err := parseDeletePolicy(policyStr)
	if err != nil {
		return nil, err
	}
	deleted, err := h.locations.Delete(ctx, universeID, locationID, policy)
	if err != nil {
		return nil, err
	}
	h.chron.ClearLocationRefs(universeID, deleted)
	return deleted, nil
}

// HandleShow returns a location with its ancestor path, nearest parent first.
func (h *LocationHandler) HandleShow(ctx context.Context, universeID, locationID string) (*entities.Location, []*entities.Location, error) {
	loc, err := h.locations.Location(ctx, universeID, locationID)
	if err != nil {
		return nil, nil, err
	}
	ancestors, err := h.locations.AncestorsOf(ctx, universeID, locationID)
	if err != nil {
		return nil, nil, err
	}
	return loc, ancestors, nil
}

// HandleRoots lists root locations of a universe.
func (h *LocationHandler) HandleRoots(ctx context.Context, universeID string) ([]*entities.Location, error) {
	return h.locations.Roots(ctx, universeID)
}

// HandleChildren lists a location's direct children.
func (h *LocationHandler) HandleChildren(ctx context.Context, universeID, locationID string) ([]*entities.Location, error) {
	return h.locations.ChildrenOf(ctx, universeID, locationID)
}

// HandleSearch finds locations by name substring.
func (h *LocationHandler) HandleSearch(ctx context.Context, universeID, query string, limit int) ([]*entities.Location, error) {
	return h.locations.Search(ctx, universeID, query, limit)
}

// HandleSubtree returns a depth-first walk of a location's descendants.
func (h *LocationHandler) HandleSubtree(ctx context.Context, universeID, locationID string) (iter.Seq[*entities.Location], error) {
	return h.locations.DescendantsOf(ctx, universeID, locationID)
}

// parseLocationType validates and converts a string to LocationType.
func parseLocationType(s string) (entities.LocationType, error) {
	if entities.IsValidLocationType(s) {
		return entities.LocationType(s), nil
	}
	return "", fmt.Errorf("invalid location type: %s (valid: continent, region, city, town, village, building, landmark, realm, other)", s)
}

// parseDeletePolicy validates and converts a string to DeletePolicy.
func parseDeletePolicy(s string) (entities.DeletePolicy, error) {
	switch s {
	case "restrict", "":
		return entities.DeleteRestrict, nil
	case "cascade":
		return entities.DeleteCascade, nil
	case "reparent":
		return entities.DeleteReparent, nil
	default:
		return "", fmt.Errorf("invalid delete policy: %s (valid: restrict, cascade, reparent)", s)
	}
}
