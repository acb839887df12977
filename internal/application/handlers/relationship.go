package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/ersonp/chronicle-core/internal/domain/entities"
	"github.com/ersonp/chronicle-core/internal/domain/services"
)

// RelationshipHandler handles relationship operations.
type RelationshipHandler struct {
	service *services.RelationshipService
	figures *services.FigureService
}

// NewRelationshipHandler creates a new RelationshipHandler.
func NewRelationshipHandler(service *services.RelationshipService, figures *services.FigureService) *RelationshipHandler {
	return &RelationshipHandler{service: service, figures: figures}
}

// RelationshipInfo pairs a relationship with the resolved figures.
type RelationshipInfo struct {
	Relationship entities.Relationship
	Source       *entities.Figure
	Target       *entities.Figure
}

// HandleCreate creates a new relationship between two figures.
func (h *RelationshipHandler) HandleCreate(
	ctx context.Context,
	sourceID string,
	relType string,
	targetID string,
	strength int,
	bidirectional bool,
) (*entities.Relationship, error) {
	rt, err := parseRelationType(relType)
	if err != nil {
		return nil, err
	}
	return h.service.Create(ctx, sourceID, rt, targetID, strength, bidirectional)
}

// HandleDelete removes a relationship by ID.
func (h *RelationshipHandler) HandleDelete(ctx context.Context, id string) error {
	return h.service.Delete(ctx, id)
}

// HandleList returns a figure's relationships with both endpoints resolved,
// optionally filtered by type.
func (h *RelationshipHandler) HandleList(ctx context.Context, figureID, typeFilter string) ([]RelationshipInfo, error) {
	relationships, err := h.service.List(ctx, figureID)
	if err != nil {
		return nil, fmt.Errorf("listing relationships: %w", err)
	}

	result := make([]RelationshipInfo, 0, len(relationships))
	for i := range relationships {
		rel := relationships[i]
		if typeFilter != "" && string(rel.Type) != typeFilter {
			continue
		}
		source, err := h.figures.Get(ctx, rel.SourceFigureID)
		if err != nil {
			return nil, err
		}
		target, err := h.figures.Get(ctx, rel.TargetFigureID)
		if err != nil {
			return nil, err
		}
		result = append(result, RelationshipInfo{Relationship: rel, Source: source, Target: target})
	}
	return result, nil
}

// HandleFindBetween finds a direct relationship between two figures.
func (h *RelationshipHandler) HandleFindBetween(ctx context.Context, sourceID, targetID string) (*entities.Relationship, error) {
	return h.service.FindBetween(ctx, sourceID, targetID)
}

// HandleCount returns the number of relationships in a universe.
func (h *RelationshipHandler) HandleCount(ctx context.Context, universeID string) (int, error) {
	return h.service.Count(ctx, universeID)
}

// parseRelationType validates and converts a string to RelationType.
func parseRelationType(s string) (entities.RelationType, error) {
	if entities.IsValidRelationType(s) {
		return entities.RelationType(s), nil
	}
	valid := make([]string, len(entities.RelationTypes))
	for i, t := range entities.RelationTypes {
		valid[i] = string(t)
	}
	return "", fmt.Errorf("invalid relationship type: %s (valid: %s)", s, strings.Join(valid, ", "))
}
