package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/chronicle-core/internal/domain/entities"
	"github.com/ersonp/chronicle-core/internal/domain/mocks"
)

func newChronologyFixture(t *testing.T) (context.Context, *mocks.RelationalDB, *ChronologyService, string) {
	t.Helper()
	ctx := context.Background()
	repo := mocks.NewRelationalDB()
	u := &entities.Universe{ID: "u-1", Name: "Aldera", CreatedAt: time.Now()}
	require.NoError(t, repo.SaveUniverse(ctx, u))
	return ctx, repo, NewChronologyService(repo), u.ID
}

func orderedNames(t *testing.T, svc *ChronologyService, ctx context.Context, universeID string) []string {
	t.Helper()
	seq, err := svc.OrderedEvents(ctx, universeID)
	require.NoError(t, err)
	var names []string
	for ev := range seq {
		names = append(names, ev.Name)
	}
	return names
}

func TestChronologyService_CreateEvent(t *testing.T) {
	t.Run("creates an exact event and resolves its anchor", func(t *testing.T) {
		ctx, _, svc, uid := newChronologyFixture(t)

		ev, err := svc.CreateEvent(ctx, uid, EventDraft{
			Name:  "Fall of the Old Keep",
			Type:  entities.EventBattle,
			Start: entities.NewExact(1042, 3, 12),
		})
		require.NoError(t, err)
		assert.NotEmpty(t, ev.ID)
		assert.Equal(t, int64(1), ev.CreatedSeq)
		assert.True(t, ev.Instantaneous)

		a, err := svc.ResolvedAnchor(ctx, uid, ev.ID)
		require.NoError(t, err)
		assert.True(t, a.Known)
		assert.Equal(t, int64(1042), a.Year)
		assert.Equal(t, int32(312), a.Sub)
	})

	t.Run("resolves a relative event against its reference", func(t *testing.T) {
		ctx, _, svc, uid := newChronologyFixture(t)

		ref, err := svc.CreateEvent(ctx, uid, EventDraft{Name: "Coronation", Start: entities.NewYearOnly(100)})
		require.NoError(t, err)
		ev, err := svc.CreateEvent(ctx, uid, EventDraft{
			Name:  "Jubilee",
			Start: entities.NewRelative(ref.ID, 50, entities.DirectionAfter),
		})
		require.NoError(t, err)

		a, err := svc.ResolvedAnchor(ctx, uid, ev.ID)
		require.NoError(t, err)
		assert.True(t, a.Known)
		assert.Equal(t, int64(150), a.Year)
	})

	t.Run("rejects a relative date against a missing event", func(t *testing.T) {
		ctx, _, svc, uid := newChronologyFixture(t)

		_, err := svc.CreateEvent(ctx, uid, EventDraft{
			Name:  "Orphan",
			Start: entities.NewRelative("no-such-event", 5, entities.DirectionAfter),
		})

		var dangling *entities.DanglingReferenceError
		require.ErrorAs(t, err, &dangling)
		assert.Equal(t, "event", dangling.Kind)
	})

	t.Run("rejects an empty name", func(t *testing.T) {
		ctx, _, svc, uid := newChronologyFixture(t)

		_, err := svc.CreateEvent(ctx, uid, EventDraft{Name: "  ", Start: entities.NewYearOnly(1)})
		require.Error(t, err)
	})

	t.Run("rejects a location from another universe", func(t *testing.T) {
		ctx, repo, svc, uid := newChronologyFixture(t)
		require.NoError(t, repo.SaveUniverse(ctx, &entities.Universe{ID: "u-2", Name: "Other"}))
		require.NoError(t, repo.SaveLocation(ctx, &entities.Location{ID: "loc-1", UniverseID: "u-2", Name: "Elsewhere", Type: entities.LocationCity}))

		_, err := svc.CreateEvent(ctx, uid, EventDraft{
			Name:       "Misplaced",
			Start:      entities.NewYearOnly(1),
			LocationID: "loc-1",
		})

		var dangling *entities.DanglingReferenceError
		require.ErrorAs(t, err, &dangling)
		assert.Equal(t, "location", dangling.Kind)
	})

	t.Run("accepts figures and organizations as participants", func(t *testing.T) {
		ctx, repo, svc, uid := newChronologyFixture(t)
		require.NoError(t, repo.SaveFigure(ctx, &entities.Figure{ID: "fig-1", UniverseID: uid, Name: "Queen Maris"}))
		require.NoError(t, repo.SaveOrganization(ctx, &entities.Organization{ID: "org-1", UniverseID: uid, Name: "Merchant Guild", Type: entities.OrganizationGuild}))

		ev, err := svc.CreateEvent(ctx, uid, EventDraft{
			Name:         "Charter Signing",
			Start:        entities.NewYearOnly(12),
			Participants: []string{"fig-1", "org-1"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"fig-1", "org-1"}, ev.Participants)
	})

	t.Run("rejects an unknown participant", func(t *testing.T) {
		ctx, _, svc, uid := newChronologyFixture(t)

		_, err := svc.CreateEvent(ctx, uid, EventDraft{
			Name:         "Charter Signing",
			Start:        entities.NewYearOnly(12),
			Participants: []string{"ghost"},
		})

		var dangling *entities.DanglingReferenceError
		require.ErrorAs(t, err, &dangling)
		assert.Equal(t, "participant", dangling.Kind)
	})

	t.Run("rejects a relative end date", func(t *testing.T) {
		ctx, _, svc, uid := newChronologyFixture(t)
		end := entities.NewRelative("whatever", 1, entities.DirectionAfter)

		_, err := svc.CreateEvent(ctx, uid, EventDraft{Name: "War", Start: entities.NewYearOnly(1), End: &end})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "may not be relative")
	})

	t.Run("fails for an unknown universe", func(t *testing.T) {
		ctx, _, svc, _ := newChronologyFixture(t)

		_, err := svc.CreateEvent(ctx, "no-universe", EventDraft{Name: "X", Start: entities.NewYearOnly(1)})

		var dangling *entities.DanglingReferenceError
		require.ErrorAs(t, err, &dangling)
		assert.Equal(t, "universe", dangling.Kind)
	})
}

func TestChronologyService_SetTemporalValue(t *testing.T) {
	t.Run("moving an anchor reorders its dependents", func(t *testing.T) {
		ctx, _, svc, uid := newChronologyFixture(t)

		e1, err := svc.CreateEvent(ctx, uid, EventDraft{Name: "E1", Start: entities.NewExact(100, 0, 0)})
		require.NoError(t, err)
		_, err = svc.CreateEvent(ctx, uid, EventDraft{Name: "E2", Start: entities.NewRelative(e1.ID, 50, entities.DirectionAfter)})
		require.NoError(t, err)
		_, err = svc.CreateEvent(ctx, uid, EventDraft{Name: "E3", Start: entities.NewYearOnly(200)})
		require.NoError(t, err)

		assert.Equal(t, []string{"E1", "E2", "E3"}, orderedNames(t, svc, ctx, uid))

		warnings, err := svc.SetTemporalValue(ctx, uid, e1.ID, entities.NewYearOnly(300))
		require.NoError(t, err)
		assert.Empty(t, warnings)
		assert.Equal(t, []string{"E3", "E1", "E2"}, orderedNames(t, svc, ctx, uid))
	})

	t.Run("rejects a cycle before persisting anything", func(t *testing.T) {
		ctx, repo, svc, uid := newChronologyFixture(t)

		a, err := svc.CreateEvent(ctx, uid, EventDraft{Name: "A", Start: entities.NewYearOnly(10)})
		require.NoError(t, err)
		b, err := svc.CreateEvent(ctx, uid, EventDraft{Name: "B", Start: entities.NewRelative(a.ID, 5, entities.DirectionAfter)})
		require.NoError(t, err)

		_, err = svc.SetTemporalValue(ctx, uid, a.ID, entities.NewRelative(b.ID, 1, entities.DirectionAfter))

		var cyc *entities.CyclicReferenceError
		require.ErrorAs(t, err, &cyc)

		stored, err := repo.FindEventByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, entities.PrecisionYearOnly, stored.Start.Precision)
		anchor, err := svc.ResolvedAnchor(ctx, uid, b.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(15), anchor.Year)
	})

	t.Run("rejects a self reference", func(t *testing.T) {
		ctx, _, svc, uid := newChronologyFixture(t)
		a, err := svc.CreateEvent(ctx, uid, EventDraft{Name: "A", Start: entities.NewYearOnly(10)})
		require.NoError(t, err)

		_, err = svc.SetTemporalValue(ctx, uid, a.ID, entities.NewRelative(a.ID, 1, entities.DirectionAfter))

		var cyc *entities.CyclicReferenceError
		require.ErrorAs(t, err, &cyc)
	})

	t.Run("reports dependents whose order became unknown", func(t *testing.T) {
		ctx, _, svc, uid := newChronologyFixture(t)

		a, err := svc.CreateEvent(ctx, uid, EventDraft{Name: "A", Start: entities.NewYearOnly(10)})
		require.NoError(t, err)
		b, err := svc.CreateEvent(ctx, uid, EventDraft{Name: "B", Start: entities.NewRelative(a.ID, 5, entities.DirectionAfter)})
		require.NoError(t, err)
		c, err := svc.CreateEvent(ctx, uid, EventDraft{Name: "C", Start: entities.NewRelative(b.ID, 5, entities.DirectionAfter)})
		require.NoError(t, err)

		// An approximate date with no anchor year cannot be placed.
		warnings, err := svc.SetTemporalValue(ctx, uid, a.ID, entities.NewApproximate("The Long Dark", nil))
		require.NoError(t, err)

		want := []string{a.ID, b.ID, c.ID}
		for _, id := range want {
			anchor, err := svc.ResolvedAnchor(ctx, uid, id)
			require.NoError(t, err)
			assert.False(t, anchor.Known)
		}
		assert.ElementsMatch(t, want, warnings)
	})

	t.Run("restores the graph when persistence fails", func(t *testing.T) {
		ctx, repo, svc, uid := newChronologyFixture(t)

		a, err := svc.CreateEvent(ctx, uid, EventDraft{Name: "A", Start: entities.NewYearOnly(10)})
		require.NoError(t, err)
		b, err := svc.CreateEvent(ctx, uid, EventDraft{Name: "B", Start: entities.NewRelative(a.ID, 5, entities.DirectionAfter)})
		require.NoError(t, err)

		repo.SaveEventErr = assert.AnError
		_, err = svc.SetTemporalValue(ctx, uid, b.ID, entities.NewYearOnly(99))
		require.Error(t, err)
		repo.SaveEventErr = nil

		// B still depends on A, so moving A still moves B.
		_, err = svc.SetTemporalValue(ctx, uid, a.ID, entities.NewYearOnly(100))
		require.NoError(t, err)
		anchor, err := svc.ResolvedAnchor(ctx, uid, b.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(105), anchor.Year)
	})
}

func TestChronologyService_DeleteEvent(t *testing.T) {
	t.Run("dependents survive and become unknown", func(t *testing.T) {
		ctx, _, svc, uid := newChronologyFixture(t)

		a, err := svc.CreateEvent(ctx, uid, EventDraft{Name: "A", Start: entities.NewYearOnly(10)})
		require.NoError(t, err)
		b, err := svc.CreateEvent(ctx, uid, EventDraft{Name: "B", Start: entities.NewRelative(a.ID, 5, entities.DirectionAfter)})
		require.NoError(t, err)

		orphaned, err := svc.DeleteEvent(ctx, uid, a.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{b.ID}, orphaned)

		_, err = svc.Event(ctx, uid, a.ID)
		var dangling *entities.DanglingReferenceError
		require.ErrorAs(t, err, &dangling)

		kept, err := svc.Event(ctx, uid, b.ID)
		require.NoError(t, err)
		assert.Equal(t, entities.PrecisionRelative, kept.Start.Precision)
		anchor, err := svc.ResolvedAnchor(ctx, uid, b.ID)
		require.NoError(t, err)
		assert.False(t, anchor.Known)
	})

	t.Run("memberships go with the event", func(t *testing.T) {
		ctx, repo, svc, uid := newChronologyFixture(t)
		a, err := svc.CreateEvent(ctx, uid, EventDraft{Name: "A", Start: entities.NewYearOnly(10)})
		require.NoError(t, err)
		require.NoError(t, repo.SaveTimeline(ctx, &entities.Timeline{ID: "tl-1", UniverseID: uid, Name: "Main"}))
		require.NoError(t, repo.AddTimelineMember(ctx, "tl-1", a.ID))

		_, err = svc.DeleteEvent(ctx, uid, a.ID)
		require.NoError(t, err)

		members, err := repo.ListTimelineMembers(ctx, "tl-1")
		require.NoError(t, err)
		assert.Empty(t, members)
	})

	t.Run("deleting an unreferenced event reports nothing", func(t *testing.T) {
		ctx, _, svc, uid := newChronologyFixture(t)
		a, err := svc.CreateEvent(ctx, uid, EventDraft{Name: "A", Start: entities.NewYearOnly(10)})
		require.NoError(t, err)

		orphaned, err := svc.DeleteEvent(ctx, uid, a.ID)
		require.NoError(t, err)
		assert.Empty(t, orphaned)
	})
}

func TestChronologyService_OrderedEvents(t *testing.T) {
	t.Run("unknown events group after known ones in creation order", func(t *testing.T) {
		ctx, _, svc, uid := newChronologyFixture(t)

		_, err := svc.CreateEvent(ctx, uid, EventDraft{Name: "Mist1", Start: entities.NewApproximate("Mist Age", nil)})
		require.NoError(t, err)
		_, err = svc.CreateEvent(ctx, uid, EventDraft{Name: "Known", Start: entities.NewYearOnly(500)})
		require.NoError(t, err)
		_, err = svc.CreateEvent(ctx, uid, EventDraft{Name: "Mist2", Start: entities.NewApproximate("Mist Age", nil)})
		require.NoError(t, err)

		assert.Equal(t, []string{"Known", "Mist1", "Mist2"}, orderedNames(t, svc, ctx, uid))
	})

	t.Run("same year orders exact before year_only before approximate", func(t *testing.T) {
		ctx, _, svc, uid := newChronologyFixture(t)
		anchor := int64(700)

		_, err := svc.CreateEvent(ctx, uid, EventDraft{Name: "Approx", Start: entities.NewApproximate("Early era", &anchor)})
		require.NoError(t, err)
		_, err = svc.CreateEvent(ctx, uid, EventDraft{Name: "Year", Start: entities.NewYearOnly(700)})
		require.NoError(t, err)
		_, err = svc.CreateEvent(ctx, uid, EventDraft{Name: "Exact", Start: entities.NewExact(700, 0, 0)})
		require.NoError(t, err)

		assert.Equal(t, []string{"Exact", "Year", "Approx"}, orderedNames(t, svc, ctx, uid))
	})

	t.Run("the sequence is a restartable snapshot", func(t *testing.T) {
		ctx, _, svc, uid := newChronologyFixture(t)
		e1, err := svc.CreateEvent(ctx, uid, EventDraft{Name: "E1", Start: entities.NewYearOnly(100)})
		require.NoError(t, err)
		_, err = svc.CreateEvent(ctx, uid, EventDraft{Name: "E2", Start: entities.NewYearOnly(200)})
		require.NoError(t, err)

		seq, err := svc.OrderedEvents(ctx, uid)
		require.NoError(t, err)

		// Mutate after taking the sequence; the snapshot is unaffected.
		_, err = svc.SetTemporalValue(ctx, uid, e1.ID, entities.NewYearOnly(900))
		require.NoError(t, err)

		for range 2 {
			var names []string
			for ev := range seq {
				names = append(names, ev.Name)
			}
			assert.Equal(t, []string{"E1", "E2"}, names)
		}
	})
}

func TestChronologyService_Search(t *testing.T) {
	ctx, _, svc, uid := newChronologyFixture(t)

	_, err := svc.CreateEvent(ctx, uid, EventDraft{Name: "Siege of Redport", Start: entities.NewYearOnly(40)})
	require.NoError(t, err)
	_, err = svc.CreateEvent(ctx, uid, EventDraft{Name: "Redport Accords", Start: entities.NewYearOnly(45)})
	require.NoError(t, err)
	_, err = svc.CreateEvent(ctx, uid, EventDraft{Name: "Coronation", Start: entities.NewYearOnly(50)})
	require.NoError(t, err)

	found, err := svc.Search(ctx, uid, "redport", 10)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Redport Accords", found[0].Name)
	assert.Equal(t, "Siege of Redport", found[1].Name)

	found, err = svc.Search(ctx, uid, "redport", 1)
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestChronologyService_DependentsOf(t *testing.T) {
	ctx, _, svc, uid := newChronologyFixture(t)

	a, err := svc.CreateEvent(ctx, uid, EventDraft{Name: "A", Start: entities.NewYearOnly(10)})
	require.NoError(t, err)
	b, err := svc.CreateEvent(ctx, uid, EventDraft{Name: "B", Start: entities.NewRelative(a.ID, 1, entities.DirectionAfter)})
	require.NoError(t, err)
	c, err := svc.CreateEvent(ctx, uid, EventDraft{Name: "C", Start: entities.NewRelative(b.ID, 1, entities.DirectionBefore)})
	require.NoError(t, err)

	deps, err := svc.DependentsOf(ctx, uid, a.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{b.ID, c.ID}, deps)

	deps, err = svc.DependentsOf(ctx, uid, c.ID)
	require.NoError(t, err)
	assert.Empty(t, deps)
}

func TestChronologyService_UpdateEvent(t *testing.T) {
	ctx, repo, svc, uid := newChronologyFixture(t)
	require.NoError(t, repo.SaveLocation(ctx, &entities.Location{ID: "loc-1", UniverseID: uid, Name: "Keep", Type: entities.LocationBuilding}))

	ev, err := svc.CreateEvent(ctx, uid, EventDraft{Name: "Siege", Start: entities.NewYearOnly(40)})
	require.NoError(t, err)

	name := "Siege of the Keep"
	imp := entities.ImportanceMajor
	loc := "loc-1"
	got, err := svc.UpdateEvent(ctx, uid, ev.ID, EventUpdate{Name: &name, Importance: &imp, LocationID: &loc})
	require.NoError(t, err)
	assert.Equal(t, "Siege of the Keep", got.Name)
	assert.Equal(t, entities.ImportanceMajor, got.Importance)
	assert.Equal(t, "loc-1", got.LocationID)

	// Date untouched by field updates.
	anchor, err := svc.ResolvedAnchor(ctx, uid, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(40), anchor.Year)
}

func TestChronologyService_ClearLocationRefs(t *testing.T) {
	ctx, repo, svc, uid := newChronologyFixture(t)
	require.NoError(t, repo.SaveLocation(ctx, &entities.Location{ID: "loc-1", UniverseID: uid, Name: "Keep", Type: entities.LocationBuilding}))

	ev, err := svc.CreateEvent(ctx, uid, EventDraft{Name: "Siege", Start: entities.NewYearOnly(40), LocationID: "loc-1"})
	require.NoError(t, err)

	svc.ClearLocationRefs(uid, []string{"loc-1"})

	got, err := svc.Event(ctx, uid, ev.ID)
	require.NoError(t, err)
	assert.Empty(t, got.LocationID)
}
