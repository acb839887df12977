package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/chronicle-core/internal/domain/entities"
	"github.com/ersonp/chronicle-core/internal/domain/services"
)

func TestChronology_RelativeDatesAcrossRestart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.createUniverse(t, "Aldera")

	e1, err := env.chron.CreateEvent(ctx, u.ID, services.EventDraft{
		Name:  "Founding of Aldera",
		Type:  entities.EventFounding,
		Start: entities.NewExact(100, 0, 0),
	})
	require.NoError(t, err)

	e2, err := env.chron.CreateEvent(ctx, u.ID, services.EventDraft{
		Name:  "Silver Jubilee",
		Type:  entities.EventCultural,
		Start: entities.NewRelative(e1.ID, 50, entities.DirectionAfter),
	})
	require.NoError(t, err)

	e3, err := env.chron.CreateEvent(ctx, u.ID, services.EventDraft{
		Name:  "Fall of the Old Wall",
		Type:  entities.EventDestruction,
		Start: entities.NewYearOnly(200),
	})
	require.NoError(t, err)

	t.Run("initial order resolves relative dates", func(t *testing.T) {
		assert.Equal(t, []string{e1.ID, e2.ID, e3.ID}, orderedIDs(t, env, u.ID))

		anchor, err := env.chron.ResolvedAnchor(ctx, u.ID, e2.ID)
		require.NoError(t, err)
		assert.True(t, anchor.Known)
		assert.Equal(t, int64(150), anchor.Year)
	})

	t.Run("moving the referenced event reorders dependents", func(t *testing.T) {
		warnings, err := env.chron.SetTemporalValue(ctx, u.ID, e1.ID, entities.NewYearOnly(300))
		require.NoError(t, err)
		assert.Empty(t, warnings)

		assert.Equal(t, []string{e3.ID, e1.ID, e2.ID}, orderedIDs(t, env, u.ID))
	})

	t.Run("order survives a restart", func(t *testing.T) {
		env = env.reopen(t)

		assert.Equal(t, []string{e3.ID, e1.ID, e2.ID}, orderedIDs(t, env, u.ID))

		anchor, err := env.chron.ResolvedAnchor(ctx, u.ID, e2.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(350), anchor.Year)
	})

	t.Run("cycles are rejected after reload", func(t *testing.T) {
		_, err := env.chron.SetTemporalValue(ctx, u.ID, e1.ID,
			entities.NewRelative(e2.ID, 10, entities.DirectionAfter))
		require.Error(t, err)

		// The stored date is untouched.
		anchor, err := env.chron.ResolvedAnchor(ctx, u.ID, e1.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(300), anchor.Year)
	})

	t.Run("deleting the reference orphans dependents persistently", func(t *testing.T) {
		orphaned, err := env.chron.DeleteEvent(ctx, u.ID, e1.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{e2.ID}, orphaned)

		env = env.reopen(t)

		anchor, err := env.chron.ResolvedAnchor(ctx, u.ID, e2.ID)
		require.NoError(t, err)
		assert.False(t, anchor.Known)
	})
}

func TestChronology_TimelinesOverSQLite(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.createUniverse(t, "Aldera")

	coronation, err := env.chron.CreateEvent(ctx, u.ID, services.EventDraft{
		Name:  "Coronation of Maris",
		Type:  entities.EventCoronation,
		Start: entities.NewExact(120, 3, 12),
	})
	require.NoError(t, err)
	treaty, err := env.chron.CreateEvent(ctx, u.ID, services.EventDraft{
		Name:  "Treaty of Harrowgate",
		Type:  entities.EventTreaty,
		Start: entities.NewYearOnly(140),
	})
	require.NoError(t, err)

	tl, err := env.timelines.CreateTimeline(ctx, u.ID, "Age of Kings", "", true)
	require.NoError(t, err)
	require.NoError(t, env.timelines.Assign(ctx, tl.ID, treaty.ID))
	require.NoError(t, env.timelines.Assign(ctx, tl.ID, coronation.ID))

	t.Run("members come back ordered after a restart", func(t *testing.T) {
		env = env.reopen(t)

		members, err := env.timelines.OrderedMembers(ctx, tl.ID)
		require.NoError(t, err)

		var names []string
		for ev := range members {
			names = append(names, ev.Name)
		}
		assert.Equal(t, []string{"Coronation of Maris", "Treaty of Harrowgate"}, names)
	})

	t.Run("range query over persisted anchors", func(t *testing.T) {
		lower, upper := int64(130), int64(150)
		inRange, err := env.timelines.MembersInRange(ctx, tl.ID, &lower, &upper)
		require.NoError(t, err)
		require.Len(t, inRange, 1)
		assert.Equal(t, treaty.ID, inRange[0].ID)
	})
}

func orderedIDs(t *testing.T, env *testEnv, universeID string) []string {
	t.Helper()
	seq, err := env.chron.OrderedEvents(context.Background(), universeID)
	require.NoError(t, err)

	var ids []string
	for ev := range seq {
		ids = append(ids, ev.ID)
	}
	return ids
}
