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

// OrganizationService manages the collective actors of a universe.
// Organizations appear in event participant lists alongside figures.
type OrganizationService struct {
	repo ports.RelationalDB
}

// NewOrganizationService creates a new OrganizationService.
func NewOrganizationService(repo ports.RelationalDB) *OrganizationService {
	return &OrganizationService{repo: repo}
}

// Create creates an organization, optionally seated at a location.
func (s *OrganizationService) Create(ctx context.Context, universeID, name string, orgType entities.OrganizationType, description, locationID string) (*entities.Organization, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("organization name cannot be empty")
	}
	if orgType == "" {
		orgType = entities.OrganizationOther
	}
	if !entities.IsValidOrganizationType(string(orgType)) {
		return nil, fmt.Errorf("invalid organization type: %s", orgType)
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

	o := &entities.Organization{
		ID:          uuid.New().String(),
		UniverseID:  universeID,
		Name:        name,
		Type:        orgType,
		Description: description,
		LocationID:  locationID,
		CreatedAt:   time.Now(),
	}
	if err := s.repo.SaveOrganization(ctx, o); err != nil {
		return nil, fmt.Errorf("saving organization: %w", err)
	}
	out := *o
	return &out, nil
}

// Get returns an organization by ID.
func (s *OrganizationService) Get(ctx context.Context, id string) (*entities.Organization, error) {
	o, err := s.repo.FindOrganizationByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding organization: %w", err)
	}
	if o == nil {
		return nil, &entities.DanglingReferenceError{Kind: "organization", ID: id}
	}
	return o, nil
}

// List returns a universe's organizations ordered by name.
func (s *OrganizationService) List(ctx context.Context, universeID string) ([]*entities.Organization, error) {
	return s.repo.ListOrganizations(ctx, universeID)
}

// Search finds organizations by case-insensitive name substring.
func (s *OrganizationService) Search(ctx context.Context, universeID, query string, limit int) ([]*entities.Organization, error) {
	return s.repo.SearchOrganizations(ctx, universeID, query, limit)
}

// Delete removes an organization. Events keep their participant entries;
// callers can treat unknown participant IDs as disbanded organizations.
func (s *OrganizationService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteOrganization(ctx, id); err != nil {
		return fmt.Errorf("deleting organization: %w", err)
	}
	return nil
}
