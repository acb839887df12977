package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ersonp/chronicle-core/internal/application/handlers"
	"github.com/ersonp/chronicle-core/internal/domain/entities"
	"github.com/ersonp/chronicle-core/internal/domain/services"
	"github.com/ersonp/chronicle-core/internal/infrastructure/config"
	"github.com/ersonp/chronicle-core/internal/infrastructure/relationaldb/sqlite"
)

// Deps holds high-level dependencies for commands.
// Only handlers are exposed - services and repositories are internal.
type Deps struct {
	Config    *config.Config
	Universes *config.UniversesConfig
	BasePath  string

	UniverseHandler     *handlers.UniverseHandler
	EventHandler        *handlers.EventHandler
	LocationHandler     *handlers.LocationHandler
	TimelineHandler     *handlers.TimelineHandler
	FigureHandler       *handlers.FigureHandler
	OrganizationHandler *handlers.OrganizationHandler
	RelationshipHandler *handlers.RelationshipHandler
	ArchiveHandler      *handlers.ArchiveHandler
}

// withDeps loads config and builds dependencies, then calls the provided
// function. It handles cleanup automatically.
func withDeps(fn func(*Deps) error) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	universes, err := config.LoadUniverses(cwd)
	if err != nil {
		return fmt.Errorf("loading universe registry: %w", err)
	}

	dbPath := cfg.DatabasePath(cwd)
	if err := config.EnsureDatabaseDir(dbPath); err != nil {
		return err
	}

	repo, err := sqlite.NewRepository(config.SQLiteConfig{Path: dbPath})
	if err != nil {
		return fmt.Errorf("creating sqlite repository: %w", err)
	}
	defer repo.Close()

	if err := repo.EnsureSchema(context.Background()); err != nil {
		return fmt.Errorf("ensuring sqlite schema: %w", err)
	}

	chronService := services.NewChronologyService(repo)
	locationService := services.NewLocationService(repo)
	timelineService := services.NewTimelineService(repo, chronService)
	universeService := services.NewUniverseService(repo)
	figureService := services.NewFigureService(repo)
	organizationService := services.NewOrganizationService(repo)
	relationshipService := services.NewRelationshipService(repo)
	archiveService := services.NewArchiveService(repo)

	deps := &Deps{
		Config:    cfg,
		Universes: universes,
		BasePath:  cwd,

		UniverseHandler:     handlers.NewUniverseHandler(universeService),
		EventHandler:        handlers.NewEventHandler(chronService),
		LocationHandler:     handlers.NewLocationHandler(locationService, chronService),
		TimelineHandler:     handlers.NewTimelineHandler(timelineService),
		FigureHandler:       handlers.NewFigureHandler(figureService),
		OrganizationHandler: handlers.NewOrganizationHandler(organizationService),
		RelationshipHandler: handlers.NewRelationshipHandler(relationshipService, figureService),
		ArchiveHandler:      handlers.NewArchiveHandler(archiveService),
	}

	return fn(deps)
}

// resolveUniverse resolves the universe commands act on: the --universe flag
// when given (by ID or name), otherwise the current universe from the
// registry. The resolved universe is promoted to current.
func (d *Deps) resolveUniverse(ctx context.Context) (*entities.Universe, error) {
	ref := globalUniverse
	if ref == "" {
		ref = d.Universes.Current
	}
	if ref == "" {
		return nil, errors.New("no universe selected (use --universe or create one with 'chronicle universes create')")
	}

	u, err := d.UniverseHandler.HandleResolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	d.Universes.Touch(u.Name)
	if err := d.Universes.Save(d.BasePath); err != nil {
		return nil, fmt.Errorf("saving universe registry: %w", err)
	}
	return u, nil
}
