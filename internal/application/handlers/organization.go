package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/ersonp/chronicle-core/internal/domain/entities"
	"github.com/ersonp/chronicle-core/internal/domain/services"
)

// OrganizationHandler handles organization operations.
type OrganizationHandler struct {
	organizations *services.OrganizationService
}

// NewOrganizationHandler creates a new OrganizationHandler.
func NewOrganizationHandler(organizations *services.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{organizations: organizations}
}

// HandleCreate creates an organization from raw CLI inputs.
func (h *OrganizationHandler) HandleCreate(ctx context.Context, universeID, name, typeStr, description, locationID string) (*entities.Organization, error) {
	var orgType entities.OrganizationType
	if typeStr != "" {
		var err error
		orgType, err = parseOrganizationType(typeStr)
		if err != nil {
			return nil, err
		}
	}
	return h.organizations.Create(ctx, universeID, name, orgType, description, locationID)
}

// HandleShow returns an organization by ID.
func (h *OrganizationHandler) HandleShow(ctx context.Context, id string) (*entities.Organization, error) {
	return h.organizations.Get(ctx, id)
}

// HandleList lists a universe's organizations.
func (h *OrganizationHandler) HandleList(ctx context.Context, universeID string) ([]*entities.Organization, error) {
	return h.organizations.List(ctx, universeID)
}

// HandleSearch finds organizations by name substring.
func (h *OrganizationHandler) HandleSearch(ctx context.Context, universeID, query string, limit int) ([]*entities.Organization, error) {
	return h.organizations.Search(ctx, universeID, query, limit)
}

// HandleDelete removes an organization.
func (h *OrganizationHandler) HandleDelete(ctx context.Context, id string) error {
	return h.organizations.Delete(ctx, id)
}

// parseOrganizationType validates and converts a string to OrganizationType.
func parseOrganizationType(s string) (entities.OrganizationType, error) {
	if entities.IsValidOrganizationType(s) {
		return entities.OrganizationType(s), nil
	}
	valid := make([]string, len(entities.OrganizationTypes))
	for i, t := range entities.OrganizationTypes {
		valid[i] = string(t)
	}
	return "", fmt.Errorf("invalid organization type: %s (valid: %s)", s, strings.Join(valid, ", "))
}
