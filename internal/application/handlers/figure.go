package handlers

import (
	"context"

	"github.com/ersonp/chronicle-core/internal/domain/entities"
	"github.com/ersonp/chronicle-core/internal/domain/services"
)

// FigureHandler handles figure operations.
type FigureHandler struct {
	figures *services.FigureService
}

// NewFigureHandler creates a new FigureHandler.
func NewFigureHandler(figures *services.FigureService) *FigureHandler {
	return &FigureHandler{figures: figures}
}

// HandleCreate creates a figure.
func (h *FigureHandler) HandleCreate(ctx context.Context, universeID, name, description, locationID string) (*entities.Figure, error) {
	return h.figures.Create(ctx, universeID, name, description, locationID)
}

// HandleShow returns a figure by ID.
func (h *FigureHandler) HandleShow(ctx context.Context, id string) (*entities.Figure, error) {
	return h.figures.Get(ctx, id)
}

// HandleList lists a universe's figures.
func (h *FigureHandler) HandleList(ctx context.Context, universeID string) ([]*entities.Figure, error) {
	return h.figures.List(ctx, universeID)
}

// HandleSearch finds figures by name substring.
func (h *FigureHandler) HandleSearch(ctx context.Context, universeID, query string, limit int) ([]*entities.Figure, error) {
	return h.figures.Search(ctx, universeID, query, limit)
}

// HandleDelete removes a figure and its relationships.
func (h *FigureHandler) HandleDelete(ctx context.Context, id string) error {
	return h.figures.Delete(ctx, id)
}
