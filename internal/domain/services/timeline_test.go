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

type timelineFixture struct {
	ctx   context.Context
	repo  *mocks.RelationalDB
	chron *ChronologyService
	svc   *TimelineService
	uid   string
}

func newTimelineFixture(t *testing.T) *timelineFixture {
	t.Helper()
	ctx := context.Background()
	repo := mocks.NewRelationalDB()
	require.NoError(t, repo.SaveUniverse(ctx, &entities.Universe{ID: "u-1", Name: "Aldera", CreatedAt: time.Now()}))
	chron := NewChronologyService(repo)
	return &timelineFixture{
		ctx:   ctx,
		repo:  repo,
		chron: chron,
		svc:   NewTimelineService(repo, chron),
		uid:   "u-1",
	}
}

func (f *timelineFixture) event(t *testing.T, name string, start entities.TemporalValue) *entities.Event {
	t.Helper()
	ev, err := f.chron.CreateEvent(f.ctx, f.uid, EventDraft{Name: name, Start: start})
	require.NoError(t, err)
	return ev
}

func TestTimelineService_CreateTimeline(t *testing.T) {
	t.Run("marking main demotes the previous main", func(t *testing.T) {
		f := newTimelineFixture(t)

		first, err := f.svc.CreateTimeline(f.ctx, f.uid, "Main History", "", true)
		require.NoError(t, err)
		second, err := f.svc.CreateTimeline(f.ctx, f.uid, "The War Years", "", true)
		require.NoError(t, err)

		got, err := f.repo.FindMainTimeline(f.ctx, f.uid)
		require.NoError(t, err)
		assert.Equal(t, second.ID, got.ID)

		demoted, err := f.svc.Timeline(f.ctx, first.ID)
		require.NoError(t, err)
		assert.False(t, demoted.IsMain)
	})

	t.Run("rejects an unknown universe", func(t *testing.T) {
		f := newTimelineFixture(t)

		_, err := f.svc.CreateTimeline(f.ctx, "nope", "X", "", false)

		var dangling *entities.DanglingReferenceError
		require.ErrorAs(t, err, &dangling)
	})
}

func TestTimelineService_Assign(t *testing.T) {
	t.Run("is idempotent", func(t *testing.T) {
		f := newTimelineFixture(t)
		tl, err := f.svc.CreateTimeline(f.ctx, f.uid, "History", "", false)
		require.NoError(t, err)
		ev := f.event(t, "E1", entities.NewYearOnly(10))

		require.NoError(t, f.svc.Assign(f.ctx, tl.ID, ev.ID))
		require.NoError(t, f.svc.Assign(f.ctx, tl.ID, ev.ID))

		members, err := f.repo.ListTimelineMembers(f.ctx, tl.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{ev.ID}, members)
	})

	t.Run("rejects events from another universe", func(t *testing.T) {
		f := newTimelineFixture(t)
		require.NoError(t, f.repo.SaveUniverse(f.ctx, &entities.Universe{ID: "u-2", Name: "Other"}))
		tl, err := f.svc.CreateTimeline(f.ctx, f.uid, "History", "", false)
		require.NoError(t, err)
		other := NewChronologyService(f.repo)
		ev, err := other.CreateEvent(f.ctx, "u-2", EventDraft{Name: "Foreign", Start: entities.NewYearOnly(1)})
		require.NoError(t, err)

		err = f.svc.Assign(f.ctx, tl.ID, ev.ID)

		var dangling *entities.DanglingReferenceError
		require.ErrorAs(t, err, &dangling)
		assert.Equal(t, "event", dangling.Kind)
	})
}

func TestTimelineService_OrderedMembers(t *testing.T) {
	t.Run("membership views track anchor edits", func(t *testing.T) {
		f := newTimelineFixture(t)
		tl, err := f.svc.CreateTimeline(f.ctx, f.uid, "History", "", true)
		require.NoError(t, err)

		e1 := f.event(t, "E1", entities.NewExact(100, 0, 0))
		e2 := f.event(t, "E2", entities.NewRelative(e1.ID, 50, entities.DirectionAfter))
		e3 := f.event(t, "E3", entities.NewYearOnly(200))
		for _, ev := range []*entities.Event{e1, e2, e3} {
			require.NoError(t, f.svc.Assign(f.ctx, tl.ID, ev.ID))
		}

		names := func() []string {
			seq, err := f.svc.OrderedMembers(f.ctx, tl.ID)
			require.NoError(t, err)
			var out []string
			for ev := range seq {
				out = append(out, ev.Name)
			}
			return out
		}

		assert.Equal(t, []string{"E1", "E2", "E3"}, names())

		_, err = f.chron.SetTemporalValue(f.ctx, f.uid, e1.ID, entities.NewYearOnly(300))
		require.NoError(t, err)
		assert.Equal(t, []string{"E3", "E1", "E2"}, names())
	})

	t.Run("unassigned events do not appear", func(t *testing.T) {
		f := newTimelineFixture(t)
		tl, err := f.svc.CreateTimeline(f.ctx, f.uid, "History", "", false)
		require.NoError(t, err)
		e1 := f.event(t, "E1", entities.NewYearOnly(10))
		f.event(t, "E2", entities.NewYearOnly(20))
		require.NoError(t, f.svc.Assign(f.ctx, tl.ID, e1.ID))

		seq, err := f.svc.OrderedMembers(f.ctx, tl.ID)
		require.NoError(t, err)
		var names []string
		for ev := range seq {
			names = append(names, ev.Name)
		}
		assert.Equal(t, []string{"E1"}, names)
	})

	t.Run("repeated reads and an assign round trip leave the view unchanged", func(t *testing.T) {
		f := newTimelineFixture(t)
		tl, err := f.svc.CreateTimeline(f.ctx, f.uid, "History", "", false)
		require.NoError(t, err)
		e1 := f.event(t, "E1", entities.NewYearOnly(10))
		e2 := f.event(t, "E2", entities.NewYearOnly(20))
		for _, ev := range []*entities.Event{e1, e2} {
			require.NoError(t, f.svc.Assign(f.ctx, tl.ID, ev.ID))
		}

		ids := func() []string {
			seq, err := f.svc.OrderedMembers(f.ctx, tl.ID)
			require.NoError(t, err)
			var out []string
			for ev := range seq {
				out = append(out, ev.ID)
			}
			return out
		}

		original := ids()
		assert.Equal(t, original, ids())

		extra := f.event(t, "Extra", entities.NewYearOnly(15))
		require.NoError(t, f.svc.Assign(f.ctx, tl.ID, extra.ID))
		require.NoError(t, f.svc.Unassign(f.ctx, tl.ID, extra.ID))

		assert.Equal(t, original, ids())
	})

	t.Run("deleting an event removes its memberships", func(t *testing.T) {
		f := newTimelineFixture(t)
		tl, err := f.svc.CreateTimeline(f.ctx, f.uid, "History", "", false)
		require.NoError(t, err)
		e1 := f.event(t, "E1", entities.NewYearOnly(10))
		require.NoError(t, f.svc.Assign(f.ctx, tl.ID, e1.ID))

		_, err = f.chron.DeleteEvent(f.ctx, f.uid, e1.ID)
		require.NoError(t, err)

		members, err := f.repo.ListTimelineMembers(f.ctx, tl.ID)
		require.NoError(t, err)
		assert.Empty(t, members)
	})
}

func TestTimelineService_MembersInRange(t *testing.T) {
	f := newTimelineFixture(t)
	tl, err := f.svc.CreateTimeline(f.ctx, f.uid, "History", "", false)
	require.NoError(t, err)

	early := f.event(t, "Early", entities.NewYearOnly(50))
	mid := f.event(t, "Mid", entities.NewYearOnly(150))
	late := f.event(t, "Late", entities.NewYearOnly(250))
	misty := f.event(t, "Misty", entities.NewApproximate("Unplaced", nil))
	for _, ev := range []*entities.Event{early, mid, late, misty} {
		require.NoError(t, f.svc.Assign(f.ctx, tl.ID, ev.ID))
	}

	y := func(v int64) *int64 { return &v }

	t.Run("bounds are inclusive", func(t *testing.T) {
		got, err := f.svc.MembersInRange(f.ctx, tl.ID, y(50), y(150))
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "Early", got[0].Name)
		assert.Equal(t, "Mid", got[1].Name)
	})

	t.Run("nil bounds are open", func(t *testing.T) {
		got, err := f.svc.MembersInRange(f.ctx, tl.ID, y(200), nil)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Late", got[0].Name)
	})

	t.Run("unknown anchors never match, even fully open ranges", func(t *testing.T) {
		got, err := f.svc.MembersInRange(f.ctx, tl.ID, nil, nil)
		require.NoError(t, err)
		names := make([]string, 0, len(got))
		for _, ev := range got {
			names = append(names, ev.Name)
		}
		assert.Equal(t, []string{"Early", "Mid", "Late"}, names)
	})
}

func TestTimelineService_MergeView(t *testing.T) {
	f := newTimelineFixture(t)
	war, err := f.svc.CreateTimeline(f.ctx, f.uid, "The War", "", false)
	require.NoError(t, err)
	dynasty, err := f.svc.CreateTimeline(f.ctx, f.uid, "The Dynasty", "", false)
	require.NoError(t, err)

	battle := f.event(t, "Battle", entities.NewYearOnly(100))
	coronation := f.event(t, "Coronation", entities.NewYearOnly(50))
	treaty := f.event(t, "Treaty", entities.NewYearOnly(120))

	require.NoError(t, f.svc.Assign(f.ctx, war.ID, battle.ID))
	require.NoError(t, f.svc.Assign(f.ctx, war.ID, treaty.ID))
	require.NoError(t, f.svc.Assign(f.ctx, dynasty.ID, coronation.ID))
	// In both timelines; appears once in the merge.
	require.NoError(t, f.svc.Assign(f.ctx, dynasty.ID, treaty.ID))

	merged, err := f.svc.MergeView(f.ctx, []string{war.ID, dynasty.ID})
	require.NoError(t, err)
	require.Len(t, merged, 3)

	assert.Equal(t, "Coronation", merged[0].Event.Name)
	assert.Equal(t, []string{dynasty.ID}, merged[0].TimelineIDs)
	assert.Equal(t, "Battle", merged[1].Event.Name)
	assert.Equal(t, "Treaty", merged[2].Event.Name)
	assert.ElementsMatch(t, []string{war.ID, dynasty.ID}, merged[2].TimelineIDs)
}

func TestTimelineService_Delete(t *testing.T) {
	f := newTimelineFixture(t)
	tl, err := f.svc.CreateTimeline(f.ctx, f.uid, "History", "", false)
	require.NoError(t, err)
	ev := f.event(t, "E1", entities.NewYearOnly(10))
	require.NoError(t, f.svc.Assign(f.ctx, tl.ID, ev.ID))

	require.NoError(t, f.svc.Delete(f.ctx, tl.ID))

	_, err = f.svc.Timeline(f.ctx, tl.ID)
	var dangling *entities.DanglingReferenceError
	require.ErrorAs(t, err, &dangling)

	// The member event is untouched.
	_, err = f.chron.Event(f.ctx, f.uid, ev.ID)
	require.NoError(t, err)
}
