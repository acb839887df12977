// Package integration exercises the services against a real SQLite file.
package integration

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ersonp/chronicle-core/internal/domain/entities"
	"github.com/ersonp/chronicle-core/internal/domain/services"
	"github.com/ersonp/chronicle-core/internal/infrastructure/config"
	"github.com/ersonp/chronicle-core/internal/infrastructure/relationaldb/sqlite"
)

// testEnv wires the full service stack over a file-backed database.
type testEnv struct {
	// rootT is the top-level test; repo cleanups are registered on it so a
	// repo opened by reopen inside a subtest outlives that subtest.
	rootT     *testing.T
	repo      *sqlite.Repository
	dbPath    string
	universes *services.UniverseService
	chron     *services.ChronologyService
	locations *services.LocationService
	timelines *services.TimelineService
	figures   *services.FigureService
	archive   *services.ArchiveService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	dbPath := filepath.Join(t.TempDir(), "chronicle.db")
	repo, err := sqlite.NewRepository(config.SQLiteConfig{Path: dbPath})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	require.NoError(t, repo.EnsureSchema(context.Background()))

	chron := services.NewChronologyService(repo)
	return &testEnv{
		rootT:     t,
		repo:      repo,
		dbPath:    dbPath,
		universes: services.NewUniverseService(repo),
		chron:     chron,
		locations: services.NewLocationService(repo),
		timelines: services.NewTimelineService(repo, chron),
		figures:   services.NewFigureService(repo),
		archive:   services.NewArchiveService(repo),
	}
}

// reopen closes the database and builds a fresh stack over the same file,
// simulating a process restart.
func (env *testEnv) reopen(t *testing.T) *testEnv {
	t.Helper()
	require.NoError(t, env.repo.Close())

	repo, err := sqlite.NewRepository(config.SQLiteConfig{Path: env.dbPath})
	require.NoError(t, err)
	env.rootT.Cleanup(func() { repo.Close() })

	chron := services.NewChronologyService(repo)
	return &testEnv{
		rootT:     env.rootT,
		repo:      repo,
		dbPath:    env.dbPath,
		universes: services.NewUniverseService(repo),
		chron:     chron,
		locations: services.NewLocationService(repo),
		timelines: services.NewTimelineService(repo, chron),
		figures:   services.NewFigureService(repo),
		archive:   services.NewArchiveService(repo),
	}
}

func (env *testEnv) createUniverse(t *testing.T, name string) *entities.Universe {
	t.Helper()
	u, err := env.universes.Create(context.Background(), name, "")
	require.NoError(t, err)
	return u
}
