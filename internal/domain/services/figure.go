package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ersonp/chronicle-core/internal/domain/entities"
	"github.com/ersonp/chronicle-core/internal/domain/ports"
)

// FigureService manages the notable figures of a universe. Figures are
// referenced by event participant lists and by relationships; deleting one
// removes its relationships but leaves events intact.
type FigureService struct {
	repo ports.RelationalDB
}

// NewFigureService creates a new FigureService.
func NewFigureService(repo ports.RelationalDB) *FigureService {
	return &FigureService{repo: repo}
}

// Create creates a figure, optionally tied to a home location.
func (s *FigureService) Create(ctx context.Context, universeID, name, description, locationID string) (*entities.Figure, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("figure name cannot be empty")
	}
	u, err := s.repo.FindUniverseByID(ctx, universeID)
	if err != nil {
		return nil, fmt.Errorf("finding universe: %w", err)
	}
	if u == nil {
		return nil, &entities.DanglingReferenceError{Kind: "universe", ID: universeID}
	}
	if locationID != "" {
		loc, err := s.repo.FindLocationByID(ctx, locationID)
		if err != nil {
			return nil, fmt.Errorf("finding location: %w", err)
		}
		if loc == nil || loc.UniverseID != universeID {
			return nil, &entities.DanglingReferenceError{Kind: "location", ID: locationID}
		}
	}

	f := &entities.Figure{
		ID:          uuid.New().String(),
		UniverseID:  universeID,
		Name:        name,
		Description: description,
		LocationID:  locationID,
		CreatedAt:   time.Now(),
	}
	if err := s.repo.SaveFigure(ctx, f); err != nil {
		return nil, fmt.Errorf("saving figure: %w", err)
	}
	out := *f
	return &out, nil
}

// Get returns a figure by ID.
func (s *FigureService) Get(ctx context.Context, id string) (*entities.Figure, error) {
	f, err := s.repo.FindFigureByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding figure: %w", err)
	}
	if f == nil {
		return nil, &entities.DanglingReferenceError{Kind: "figure", ID: id}
	}
	return f, nil
}

// List returns a universe's figures ordered by name.
func (s *FigureService) List(ctx context.Context, universeID string) ([]*entities.Figure, error) {
	return s.repo.ListFigures(ctx, universeID)
}

// Search finds figures by case-insensitive name substring.
func (s *FigureService) Search(ctx context.Context, universeID, query string, limit int) ([]*entities.Figure, error) {
	return s.repo.SearchFigures(ctx, universeID, query, limit)
}

// Delete removes a figure and every relationship involving it. Events keep
// their participant entries; callers can treat unknown participant IDs as
// departed figures.
func (s *FigureService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteRelationshipsByFigure(ctx, id); err != nil {
		return fmt.Errorf("deleting relationships: %w", err)
	}
	if err := s.repo.DeleteFigure(ctx, id); err != nil {
		return fmt.Errorf("deleting figure: %w", err)
	}
	return nil
}
