package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ersonp/chronicle-core/internal/domain/entities"
	"github.com/ersonp/chronicle-core/internal/domain/ports"
)

// RelationshipService manages relationships between figures.
type RelationshipService struct {
	repo ports.RelationalDB
}

// NewRelationshipService creates a new RelationshipService.
func NewRelationshipService(repo ports.RelationalDB) *RelationshipService {
	return &RelationshipService{repo: repo}
}

// Create creates a new relationship between two figures.
// It validates both figures exist in the same universe, rejects self-loops
// and duplicates, and bounds strength to the 1..5 scale.
func (s *RelationshipService) Create(
	ctx context.Context,
	sourceFigureID string,
	relType entities.RelationType,
	targetFigureID string,
	strength int,
	bidirectional bool,
) (*entities.Relationship, error) {
	if sourceFigureID == targetFigureID {
		return nil, fmt.Errorf("figure cannot relate to itself: %s", sourceFigureID)
	}
	if !entities.IsValidRelationType(string(relType)) {
		return nil, fmt.Errorf("invalid relation type: %s", relType)
	}
	if strength < entities.StrengthMin || strength > entities.StrengthMax {
		return nil, fmt.Errorf("strength must be between %d and %d", entities.StrengthMin, entities.StrengthMax)
	}

	source, err := s.repo.FindFigureByID(ctx, sourceFigureID)
	if err != nil {
		return nil, fmt.Errorf("finding source figure: %w", err)
	}
	if source == nil {
		return nil, &entities.DanglingReferenceError{Kind: "figure", ID: sourceFigureID}
	}
	target, err := s.repo.FindFigureByID(ctx, targetFigureID)
	if err != nil {
		return nil, fmt.Errorf("finding target figure: %w", err)
	}
	if target == nil {
		return nil, &entities.DanglingReferenceError{Kind: "figure", ID: targetFigureID}
	}
	if source.UniverseID != target.UniverseID {
		return nil, fmt.Errorf("figures belong to different universes")
	}

	existing, err := s.repo.FindRelationshipBetween(ctx, sourceFigureID, targetFigureID)
	if err != nil {
		return nil, fmt.Errorf("checking existing relationship: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("relationship already exists between these figures (id: %s)", existing.ID)
	}

	rel := &entities.Relationship{
		ID:             uuid.New().String(),
		UniverseID:     source.UniverseID,
		SourceFigureID: sourceFigureID,
		TargetFigureID: targetFigureID,
		Type:           relType,
		Strength:       strength,
		Bidirectional:  bidirectional,
		CreatedAt:      time.Now(),
	}
	if err := s.repo.SaveRelationship(ctx, rel); err != nil {
		return nil, fmt.Errorf("saving relationship: %w", err)
	}
	return rel, nil
}

// Delete removes a relationship.
func (s *RelationshipService) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteRelationship(ctx, id); err != nil {
		return fmt.Errorf("deleting relationship: %w", err)
	}
	return nil
}

// List returns all relationships involving a figure.
func (s *RelationshipService) List(ctx context.Context, figureID string) ([]entities.Relationship, error) {
	return s.repo.FindRelationshipsByFigure(ctx, figureID)
}

// FindBetween finds a direct relationship between two figures.
func (s *RelationshipService) FindBetween(ctx context.Context, sourceID, targetID string) (*entities.Relationship, error) {
	return s.repo.FindRelationshipBetween(ctx, sourceID, targetID)
}

// Count returns the number of relationships in a universe.
func (s *RelationshipService) Count(ctx context.Context, universeID string) (int, error) {
	return s.repo.CountRelationships(ctx, universeID)
}
