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

// UniverseService manages the universes that partition everything else.
// Names are unique so they can double as CLI handles.
type UniverseService struct {
	repo ports.RelationalDB
}

// NewUniverseService creates a new UniverseService.
func NewUniverseService(repo ports.RelationalDB) *UniverseService {
	return &UniverseService{repo: repo}
}

// Create creates a universe with a unique name.
func (s *UniverseService) Create(ctx context.Context, name, description string) (*entities.Universe, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("universe name cannot be empty")
	}
	existing, err := s.repo.FindUniverseByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("finding universe: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("universe already exists: %s", name)
	}

	u := &entities.Universe{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		CreatedAt:   time.Now(),
	}
	if err := s.repo.SaveUniverse(ctx, u); err != nil {
		return nil, fmt.Errorf("saving universe: %w", err)
	}
	out := *u
	return &out, nil
}

// Get returns a universe by ID.
func (s *UniverseService) Get(ctx context.Context, id string) (*entities.Universe, error) {
	u, err := s.repo.FindUniverseByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding universe: %w", err)
	}
	if u == nil {
		return nil, &entities.DanglingReferenceError{Kind: "universe", ID: id}
	}
	return u, nil
}

// Resolve finds a universe by ID or, failing that, by exact name. CLI
// commands accept either.
func (s *UniverseService) Resolve(ctx context.Context, ref string) (*entities.Universe, error) {
	u, err := s.repo.FindUniverseByID(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("finding universe: %w", err)
	}
	if u == nil {
		u, err = s.repo.FindUniverseByName(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("finding universe: %w", err)
		}
	}
	if u == nil {
		return nil, &entities.DanglingReferenceError{Kind: "universe", ID: ref}
	}
	return u, nil
}

// List returns all universes ordered by name.
func (s *UniverseService) List(ctx context.Context) ([]entities.Universe, error) {
	return s.repo.ListUniverses(ctx)
}

// Update changes a universe's name or description.
func (s *UniverseService) Update(ctx context.Context, id string, name, description *string) (*entities.Universe, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if name != nil && strings.TrimSpace(*name) != "" {
		trimmed := strings.TrimSpace(*name)
		existing, err := s.repo.FindUniverseByName(ctx, trimmed)
		if err != nil {
			return nil, fmt.Errorf("finding universe: %w", err)
		}
		if existing != nil && existing.ID != id {
			return nil, fmt.Errorf("universe already exists: %s", trimmed)
		}
		u.Name = trimmed
	}
	if description != nil {
		u.Description = *description
	}
	if err := s.repo.SaveUniverse(ctx, u); err != nil {
		return nil, fmt.Errorf("saving universe: %w", err)
	}
	return u, nil
}

// Delete removes a universe and everything it owns.
func (s *UniverseService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteUniverse(ctx, id); err != nil {
		return fmt.Errorf("deleting universe: %w", err)
	}
	return nil
}
