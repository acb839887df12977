package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/chronicle-core/internal/domain/entities"
	"github.com/ersonp/chronicle-core/internal/infrastructure/config"
)

// setupTestRepo creates an in-memory SQLite repository for testing.
func setupTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(config.SQLiteConfig{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	err = repo.EnsureSchema(context.Background())
	require.NoError(t, err)

	return repo
}

// seedUniverse inserts a universe row so foreign keys hold.
func seedUniverse(t *testing.T, repo *Repository, id, name string) {
	t.Helper()
	err := repo.SaveUniverse(context.Background(), &entities.Universe{
		ID:        id,
		Name:      name,
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)
}

func TestNewRepository(t *testing.T) {
	t.Run("success with memory database", func(t *testing.T) {
		repo, err := NewRepository(config.SQLiteConfig{Path: ":memory:"})
		require.NoError(t, err)
		defer repo.Close()
		assert.NotNil(t, repo)
	})

	t.Run("error with empty path", func(t *testing.T) {
		_, err := NewRepository(config.SQLiteConfig{Path: ""})
		require.Error(t, err)
	})
}

func TestRepository_EnsureSchema(t *testing.T) {
	repo := setupTestRepo(t)

	// Verify tables exist
	tables := []string{"universes", "locations", "events", "timelines", "timeline_events", "figures", "organizations", "relationships"}
	for _, table := range tables {
		var count int
		err := repo.db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "table %s should exist", table)
	}
}

func TestRepository_EnsureSchema_Idempotent(t *testing.T) {
	repo := setupTestRepo(t)

	// Should not error when called again
	err := repo.EnsureSchema(context.Background())
	require.NoError(t, err)
}

func TestRepository_Universes(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	t.Run("save and find by id and name", func(t *testing.T) {
		seedUniverse(t, repo, "uni-1", "Aldera")

		found, err := repo.FindUniverseByID(ctx, "uni-1")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "Aldera", found.Name)

		found, err = repo.FindUniverseByName(ctx, "Aldera")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "uni-1", found.ID)
	})

	t.Run("not found returns nil", func(t *testing.T) {
		found, err := repo.FindUniverseByID(ctx, "nonexistent")
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("list ordered by name", func(t *testing.T) {
		seedUniverse(t, repo, "uni-2", "Mistlands")

		list, err := repo.ListUniverses(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "Aldera", list[0].Name)
		assert.Equal(t, "Mistlands", list[1].Name)
	})

	t.Run("update via upsert", func(t *testing.T) {
		u, err := repo.FindUniverseByID(ctx, "uni-2")
		require.NoError(t, err)
		u.Description = "fog and ruin"
		require.NoError(t, repo.SaveUniverse(ctx, u))

		found, err := repo.FindUniverseByID(ctx, "uni-2")
		require.NoError(t, err)
		assert.Equal(t, "fog and ruin", found.Description)
	})

	t.Run("delete nonexistent fails", func(t *testing.T) {
		err := repo.DeleteUniverse(ctx, "nonexistent")
		require.Error(t, err)
	})
}

func TestRepository_Events(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	seedUniverse(t, repo, "uni-1", "Aldera")

	t.Run("save assigns creation sequence", func(t *testing.T) {
		first := &entities.Event{
			ID:            "ev-1",
			UniverseID:    "uni-1",
			Name:          "Founding of Aldera",
			Type:          entities.EventFounding,
			Importance:    entities.ImportanceMajor,
			Start:         entities.NewExact(100, 6, 1),
			Instantaneous: true,
			CreatedAt:     time.Now(),
			UpdatedAt:     time.Now(),
		}
		require.NoError(t, repo.SaveEvent(ctx, first))
		assert.Equal(t, int64(1), first.CreatedSeq)

		second := &entities.Event{
			ID:            "ev-2",
			UniverseID:    "uni-1",
			Name:          "Silver Jubilee",
			Type:          entities.EventCultural,
			Importance:    entities.ImportanceMinor,
			Start:         entities.NewRelative("ev-1", 25, entities.DirectionAfter),
			Instantaneous: true,
			Participants:  []string{"fig-1", "fig-2"},
			CreatedAt:     time.Now(),
			UpdatedAt:     time.Now(),
		}
		require.NoError(t, repo.SaveEvent(ctx, second))
		assert.Equal(t, int64(2), second.CreatedSeq)
	})

	t.Run("round trips temporal values and participants", func(t *testing.T) {
		found, err := repo.FindEventByID(ctx, "ev-2")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, entities.PrecisionRelative, found.Start.Precision)
		assert.Equal(t, "ev-1", found.Start.RefEventID)
		assert.Equal(t, int64(25), found.Start.OffsetYears)
		assert.Equal(t, []string{"fig-1", "fig-2"}, found.Participants)
		assert.Nil(t, found.End)
	})

	t.Run("update keeps sequence", func(t *testing.T) {
		ev, err := repo.FindEventByID(ctx, "ev-1")
		require.NoError(t, err)
		end := entities.NewExact(101, 0, 0)
		ev.End = &end
		ev.Instantaneous = false
		require.NoError(t, repo.SaveEvent(ctx, ev))
		assert.Equal(t, int64(1), ev.CreatedSeq)

		found, err := repo.FindEventByID(ctx, "ev-1")
		require.NoError(t, err)
		require.NotNil(t, found.End)
		assert.Equal(t, int64(101), found.End.Year)
		assert.False(t, found.Instantaneous)
	})

	t.Run("list in creation order", func(t *testing.T) {
		list, err := repo.ListEvents(ctx, "uni-1")
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "ev-1", list[0].ID)
		assert.Equal(t, "ev-2", list[1].ID)
	})

	t.Run("search by name", func(t *testing.T) {
		found, err := repo.SearchEvents(ctx, "uni-1", "jubilee", 10)
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "ev-2", found[0].ID)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.DeleteEvent(ctx, "ev-2"))

		found, err := repo.FindEventByID(ctx, "ev-2")
		require.NoError(t, err)
		assert.Nil(t, found)

		err = repo.DeleteEvent(ctx, "ev-2")
		require.Error(t, err)
	})
}

func TestRepository_Locations(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	seedUniverse(t, repo, "uni-1", "Aldera")

	saveLocation := func(id, name, parentID string) {
		t.Helper()
		err := repo.SaveLocation(ctx, &entities.Location{
			ID:         id,
			UniverseID: "uni-1",
			Name:       name,
			Type:       entities.LocationCity,
			ParentID:   parentID,
			CreatedAt:  time.Now(),
		})
		require.NoError(t, err)
	}

	t.Run("save and find with parent", func(t *testing.T) {
		saveLocation("loc-1", "Westmark", "")
		saveLocation("loc-2", "Harrowgate", "loc-1")

		found, err := repo.FindLocationByID(ctx, "loc-2")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "loc-1", found.ParentID)

		root, err := repo.FindLocationByID(ctx, "loc-1")
		require.NoError(t, err)
		assert.Empty(t, root.ParentID)
	})

	t.Run("update parent", func(t *testing.T) {
		require.NoError(t, repo.UpdateLocationParent(ctx, "loc-2", ""))

		found, err := repo.FindLocationByID(ctx, "loc-2")
		require.NoError(t, err)
		assert.Empty(t, found.ParentID)

		require.NoError(t, repo.UpdateLocationParent(ctx, "loc-2", "loc-1"))
	})

	t.Run("clear location refs", func(t *testing.T) {
		ev := &entities.Event{
			ID:            "ev-1",
			UniverseID:    "uni-1",
			Name:          "Sack of Harrowgate",
			Type:          entities.EventBattle,
			Importance:    entities.ImportanceMajor,
			Start:         entities.NewYearOnly(200),
			Instantaneous: true,
			LocationID:    "loc-2",
			CreatedAt:     time.Now(),
			UpdatedAt:     time.Now(),
		}
		require.NoError(t, repo.SaveEvent(ctx, ev))
		fig := &entities.Figure{
			ID:         "fig-1",
			UniverseID: "uni-1",
			Name:       "Queen Maris",
			LocationID: "loc-2",
			CreatedAt:  time.Now(),
		}
		require.NoError(t, repo.SaveFigure(ctx, fig))
		org := &entities.Organization{
			ID:         "org-1",
			UniverseID: "uni-1",
			Name:       "Harrowgate Watch",
			Type:       entities.OrganizationMilitary,
			LocationID: "loc-2",
			CreatedAt:  time.Now(),
		}
		require.NoError(t, repo.SaveOrganization(ctx, org))

		require.NoError(t, repo.ClearLocationRefs(ctx, []string{"loc-2"}))

		foundEv, err := repo.FindEventByID(ctx, "ev-1")
		require.NoError(t, err)
		assert.Empty(t, foundEv.LocationID)
		foundFig, err := repo.FindFigureByID(ctx, "fig-1")
		require.NoError(t, err)
		assert.Empty(t, foundFig.LocationID)
		foundOrg, err := repo.FindOrganizationByID(ctx, "org-1")
		require.NoError(t, err)
		assert.Empty(t, foundOrg.LocationID)
	})

	t.Run("delete multiple", func(t *testing.T) {
		require.NoError(t, repo.DeleteLocations(ctx, []string{"loc-1", "loc-2"}))

		list, err := repo.ListLocations(ctx, "uni-1")
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

func TestRepository_Timelines(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	seedUniverse(t, repo, "uni-1", "Aldera")

	require.NoError(t, repo.SaveTimeline(ctx, &entities.Timeline{
		ID:         "tl-1",
		UniverseID: "uni-1",
		Name:       "Age of Kings",
		IsMain:     true,
		CreatedAt:  time.Now(),
	}))
	require.NoError(t, repo.SaveEvent(ctx, &entities.Event{
		ID:            "ev-1",
		UniverseID:    "uni-1",
		Name:          "Coronation",
		Type:          entities.EventCoronation,
		Importance:    entities.ImportanceMajor,
		Start:         entities.NewYearOnly(100),
		Instantaneous: true,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}))

	t.Run("find main timeline", func(t *testing.T) {
		main, err := repo.FindMainTimeline(ctx, "uni-1")
		require.NoError(t, err)
		require.NotNil(t, main)
		assert.Equal(t, "tl-1", main.ID)
	})

	t.Run("membership is idempotent", func(t *testing.T) {
		require.NoError(t, repo.AddTimelineMember(ctx, "tl-1", "ev-1"))
		require.NoError(t, repo.AddTimelineMember(ctx, "tl-1", "ev-1"))

		members, err := repo.ListTimelineMembers(ctx, "tl-1")
		require.NoError(t, err)
		assert.Equal(t, []string{"ev-1"}, members)
	})

	t.Run("deleting event removes membership rows", func(t *testing.T) {
		require.NoError(t, repo.RemoveEventMemberships(ctx, "ev-1"))

		members, err := repo.ListTimelineMembers(ctx, "tl-1")
		require.NoError(t, err)
		assert.Empty(t, members)
	})

	t.Run("delete timeline leaves events", func(t *testing.T) {
		require.NoError(t, repo.AddTimelineMember(ctx, "tl-1", "ev-1"))
		require.NoError(t, repo.DeleteTimeline(ctx, "tl-1"))

		ev, err := repo.FindEventByID(ctx, "ev-1")
		require.NoError(t, err)
		assert.NotNil(t, ev)
	})
}

func TestRepository_Relationships(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	seedUniverse(t, repo, "uni-1", "Aldera")

	rel := &entities.Relationship{
		ID:             "rel-1",
		UniverseID:     "uni-1",
		SourceFigureID: "fig-1",
		TargetFigureID: "fig-2",
		Type:           entities.RelationAlly,
		Strength:       4,
		Bidirectional:  true,
		CreatedAt:      time.Now(),
	}
	require.NoError(t, repo.SaveRelationship(ctx, rel))

	t.Run("bidirectional visible from both sides", func(t *testing.T) {
		found, err := repo.FindRelationshipsByFigure(ctx, "fig-2")
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "rel-1", found[0].ID)

		between, err := repo.FindRelationshipBetween(ctx, "fig-2", "fig-1")
		require.NoError(t, err)
		require.NotNil(t, between)
		assert.Equal(t, 4, between.Strength)
	})

	t.Run("count per universe", func(t *testing.T) {
		count, err := repo.CountRelationships(ctx, "uni-1")
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("delete by figure", func(t *testing.T) {
		require.NoError(t, repo.DeleteRelationshipsByFigure(ctx, "fig-1"))

		found, err := repo.FindRelationshipsByFigure(ctx, "fig-2")
		require.NoError(t, err)
		assert.Empty(t, found)
	})
}

func TestRepository_Organizations(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	seedUniverse(t, repo, "uni-1", "Aldera")

	saveOrganization := func(id, name string, orgType entities.OrganizationType) {
		t.Helper()
		err := repo.SaveOrganization(ctx, &entities.Organization{
			ID:         id,
			UniverseID: "uni-1",
			Name:       name,
			Type:       orgType,
			CreatedAt:  time.Now(),
		})
		require.NoError(t, err)
	}

	t.Run("save and find", func(t *testing.T) {
		saveOrganization("org-1", "Merchant Guild", entities.OrganizationGuild)

		found, err := repo.FindOrganizationByID(ctx, "org-1")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "Merchant Guild", found.Name)
		assert.Equal(t, entities.OrganizationGuild, found.Type)
		assert.Empty(t, found.LocationID)
	})

	t.Run("not found returns nil", func(t *testing.T) {
		found, err := repo.FindOrganizationByID(ctx, "nonexistent")
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("update via upsert", func(t *testing.T) {
		o, err := repo.FindOrganizationByID(ctx, "org-1")
		require.NoError(t, err)
		o.Description = "coin and contract"
		require.NoError(t, repo.SaveOrganization(ctx, o))

		found, err := repo.FindOrganizationByID(ctx, "org-1")
		require.NoError(t, err)
		assert.Equal(t, "coin and contract", found.Description)
	})

	t.Run("list ordered by name", func(t *testing.T) {
		saveOrganization("org-2", "Ashen Order", entities.OrganizationOrder)

		list, err := repo.ListOrganizations(ctx, "uni-1")
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "Ashen Order", list[0].Name)
		assert.Equal(t, "Merchant Guild", list[1].Name)
	})

	t.Run("search by name", func(t *testing.T) {
		found, err := repo.SearchOrganizations(ctx, "uni-1", "guild", 10)
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "org-1", found[0].ID)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.DeleteOrganization(ctx, "org-2"))

		found, err := repo.FindOrganizationByID(ctx, "org-2")
		require.NoError(t, err)
		assert.Nil(t, found)

		err = repo.DeleteOrganization(ctx, "org-2")
		require.Error(t, err)
	})
}

func TestRepository_DeleteUniverse_Cascades(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	seedUniverse(t, repo, "uni-1", "Aldera")

	require.NoError(t, repo.SaveLocation(ctx, &entities.Location{
		ID: "loc-1", UniverseID: "uni-1", Name: "Westmark",
		Type: entities.LocationRegion, CreatedAt: time.Now(),
	}))
	require.NoError(t, repo.SaveEvent(ctx, &entities.Event{
		ID: "ev-1", UniverseID: "uni-1", Name: "Founding",
		Type: entities.EventFounding, Importance: entities.ImportanceMajor,
		Start: entities.NewYearOnly(100), Instantaneous: true,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}))
	require.NoError(t, repo.SaveTimeline(ctx, &entities.Timeline{
		ID: "tl-1", UniverseID: "uni-1", Name: "Main", IsMain: true, CreatedAt: time.Now(),
	}))
	require.NoError(t, repo.AddTimelineMember(ctx, "tl-1", "ev-1"))
	require.NoError(t, repo.SaveFigure(ctx, &entities.Figure{
		ID: "fig-1", UniverseID: "uni-1", Name: "Queen Maris", CreatedAt: time.Now(),
	}))
	require.NoError(t, repo.SaveOrganization(ctx, &entities.Organization{
		ID: "org-1", UniverseID: "uni-1", Name: "Merchant Guild",
		Type: entities.OrganizationGuild, CreatedAt: time.Now(),
	}))

	require.NoError(t, repo.DeleteUniverse(ctx, "uni-1"))

	for _, table := range []string{"locations", "events", "timelines", "timeline_events", "figures", "organizations"} {
		var count int
		err := repo.db.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&count)
		require.NoError(t, err)
		assert.Zero(t, count, "table %s should be empty", table)
	}
}
