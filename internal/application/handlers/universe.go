package handlers

import (
	"context"

	"github.com/ersonp/chronicle-core/internal/domain/entities"
	"github.com/ersonp/chronicle-core/internal/domain/services"
)

// UniverseHandler handles universe operations.
type UniverseHandler struct {
	universes *services.UniverseService
}

// NewUniverseHandler creates a new UniverseHandler.
func NewUniverseHandler(universes *services.UniverseService) *UniverseHandler {
	return &UniverseHandler{universes: universes}
}

// HandleCreate creates a universe.
func (h *UniverseHandler) HandleCreate(ctx context.Context, name, description string) (*entities.Universe, error) {
	return h.universes.Create(ctx, name, description)
}

// HandleResolve finds a universe by ID or name.
func (h *UniverseHandler) HandleResolve(ctx context.Context, ref string) (*entities.Universe, error) {
	return h.universes.Resolve(ctx, ref)
}

// HandleList lists all universes.
func (h *UniverseHandler) HandleList(ctx context.Context) ([]entities.Universe, error) {
	return h.universes.List(ctx)
}

// HandleRename changes a universe's name or description.
func (h *UniverseHandler) HandleRename(ctx context.Context, id, name, description string) (*entities.Universe, error) {
	var namePtr, descPtr *string
	if name != "" {
		namePtr = &name
	}
	if description != "" {
		descPtr = &description
	}
	return h.universes.Update(ctx, id, namePtr, descPtr)
}

// HandleDelete removes a universe and everything it owns.
func (h *UniverseHandler) HandleDelete(ctx context.Context, id string) error {
	return h.universes.Delete(ctx, id)
}
