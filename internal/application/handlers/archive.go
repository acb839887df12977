package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/ersonp/chronicle-core/internal/domain/entities"
	"github.com/ersonp/chronicle-core/internal/domain/services"
)

// ArchiveHandler handles universe export and import against files.
type ArchiveHandler struct {
	archive *services.ArchiveService
}

// NewArchiveHandler creates a new ArchiveHandler.
func NewArchiveHandler(archive *services.ArchiveService) *ArchiveHandler {
	return &ArchiveHandler{archive: archive}
}

// HandleExport writes a universe to a JSON file.
func (h *ArchiveHandler) HandleExport(ctx context.Context, universeID, path string) error {
	a, err := h.archive.Export(ctx, universeID)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	if err := h.archive.WriteJSON(f, a); err != nil {
		return err
	}
	return f.Close()
}

// HandleImport reads a JSON archive file into a new universe. An empty name
// keeps the archived universe's name.
func (h *ArchiveHandler) HandleImport(ctx context.Context, path, name string) (*entities.Universe, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	a, err := h.archive.ReadJSON(f)
	if err != nil {
		return nil, err
	}
	return h.archive.Import(ctx, a, name)
}
