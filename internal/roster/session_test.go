package roster_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/kitchen-roster/internal/model"
	"github.com/nhle/kitchen-roster/internal/roster"
)

func openSession(t *testing.T, store *fakeStore, stream *fakeStream, mutate func(*roster.Options)) *roster.Session {
	t.Helper()
	opts := roster.Options{
		Day:        day,
		Viewer:     model.Viewer{UserID: "A", Roles: model.NewRoleSet("cook")},
		Store:      store,
		Categories: model.DefaultCategories(),
		Clock:      clock,
	}
	if stream != nil {
		opts.Subscribe = stream.subscribe
	}
	if mutate != nil {
		mutate(&opts)
	}
	s, err := roster.Open(context.Background(), opts)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestSessionLoadsAndAppliesFeed(t *testing.T) {
	store := newFakeStore(task("T1", "Walk-in temp", user("A"), due(10, 0)))
	stream := newFakeStream()
	s := openSession(t, store, stream, nil)

	assert.Equal(t, 1, s.Roster().Len())

	stream.changes <- createdChange(1, task("T2", "Prep line", role("cook"), due(9, 0)))
	stream.changes <- createdChange(2, task("T3", "Other day", func(r *model.TaskRecord) { r.ForDate = "2026-03-15" }))

	require.Eventually(t, func() bool { return s.Roster().Len() == 2 }, time.Second, 5*time.Millisecond)

	v := s.View(roster.Filter{Scope: roster.ScopeMine})
	assert.Equal(t, []string{"T2", "T1"}, ids(v.Tasks))

	s.SetRoles(nil)
	v = s.View(roster.Filter{Scope: roster.ScopeMine})
	assert.Equal(t, []string{"T1"}, ids(v.Tasks))
}

func TestSessionLoadFailureLeavesEmptyRoster(t *testing.T) {
	store := newFakeStore(task("T1", "x"))
	store.loadErr = errors.New("timeout")
	s := openSession(t, store, nil, nil)

	assert.Equal(t, 0, s.Roster().Len())
	assert.True(t, roster.IsLoadError(s.Roster().LastError()))

	store.mu.Lock()
	store.loadErr = nil
	store.mu.Unlock()

	require.NoError(t, s.Reload(context.Background()))
	assert.Equal(t, 1, s.Roster().Len())
}

func TestSessionFeedErrorsDoNotStopApplying(t *testing.T) {
	stream := newFakeStream()
	s := openSession(t, newFakeStore(), stream, nil)

	stream.errs <- errors.New("poll failed")
	stream.changes <- model.Change{Seq: 1, Kind: model.ChangeUpdated, Payload: `{}`}
	stream.changes <- createdChange(2, task("T9", "Still applied"))

	require.Eventually(t, func() bool { return s.Roster().Len() == 1 }, time.Second, 5*time.Millisecond)
	assert.Error(t, s.Roster().LastError())
}

func TestSessionMineOnlyAdmission(t *testing.T) {
	store := newFakeStore(
		task("mine", "a", user("A")),
		task("theirs", "b", user("B")),
	)
	stream := newFakeStream()
	s := openSession(t, store, stream, func(o *roster.Options) { o.MineOnly = true })

	assert.Equal(t, []string{"mine"}, ids(s.Roster().Snapshot()))

	stream.changes <- createdChange(1, task("r1", "role task", role("cook")))
	stream.changes <- createdChange(2, task("x1", "not mine", role("host")))
	stream.changes <- createdChange(3, task("marker", "mine marker", user("A")))

	require.Eventually(t, func() bool {
		_, ok := s.Roster().Get("marker")
		return ok
	}, time.Second, 5*time.Millisecond)

	_, hasRole := s.Roster().Get("r1")
	_, hasOther := s.Roster().Get("x1")
	assert.True(t, hasRole)
	assert.False(t, hasOther)
}

func TestSessionActions(t *testing.T) {
	store := newFakeStore(task("T1", "Count drawer"))
	s := openSession(t, store, nil, nil)
	ctx := context.Background()

	require.NoError(t, s.ToggleDone(ctx, "T1"))
	require.NoError(t, s.SaveNotes(ctx, "T1", "short $2", "miscount"))
	require.NoError(t, s.AssignUser(ctx, "T1", "B"))
	require.NoError(t, s.AssignRole(ctx, "T1", "cashier"))

	got, _ := s.Roster().Get("T1")
	assert.True(t, model.IsDone(got))
	assert.Equal(t, "short $2", got.Notes)
	assert.Equal(t, "B", model.Deref(got.AssigneeUserID))
	assert.Equal(t, "cashier", model.Deref(got.AssigneeRoleID))

	id, err := s.Create(ctx, model.TaskRecord{Title: "Order cups"})
	require.NoError(t, err)
	assert.Equal(t, 2, s.Roster().Len())

	res := s.Bulk(ctx, []string{"T1", id}, roster.BulkOp{Kind: roster.BulkDelete})
	assert.NoError(t, res.Err())
	assert.Equal(t, 0, s.Roster().Len())
}

func TestSessionCloseReleasesSubscription(t *testing.T) {
	stream := newFakeStream()
	store := newFakeStore()
	s, err := roster.Open(context.Background(), roster.Options{Day: day, Store: store, Subscribe: stream.subscribe})
	require.NoError(t, err)

	s.Close()
	s.Close()

	select {
	case <-stream.closed:
	default:
		t.Fatal("subscription not closed")
	}
}

func TestOpenValidates(t *testing.T) {
	_, err := roster.Open(context.Background(), roster.Options{Day: day})
	assert.Error(t, err)

	_, err = roster.Open(context.Background(), roster.Options{Day: "14/03/2026", Store: newFakeStore()})
	assert.Error(t, err)

	failing := func(context.Context, string) (roster.ChangeStream, error) {
		return nil, errors.New("no feed")
	}
	_, err = roster.Open(context.Background(), roster.Options{Day: day, Store: newFakeStore(), Subscribe: failing})
	assert.Error(t, err)
}

func TestReloadKeepsEventsAppliedDuringQuery(t *testing.T) {
	store := newFakeStore(task("t1", "Descale kettle"), task("t2", "Fold napkins"))
	s := openSession(t, store, nil, nil)
	require.Equal(t, 2, s.Roster().Len())

	store.mu.Lock()
	store.afterQuery = func() {
		s.Roster().Apply(roster.Deleted{ID: "t1"})
		s.Roster().Apply(roster.Created{Record: task("t3", "Ice bins")})
	}
	store.mu.Unlock()

	require.NoError(t, s.Reload(context.Background()))

	_, resurrected := s.Roster().Get("t1")
	assert.False(t, resurrected)
	assert.Equal(t, []string{"t2", "t3"}, ids(s.Roster().Snapshot()))
}

func TestReloadRefreshesUntouchedRecords(t *testing.T) {
	store := newFakeStore(task("t1", "Old title"), task("t2", "Stays"))
	s := openSession(t, store, nil, nil)

	store.mu.Lock()
	store.records = []model.TaskRecord{task("t1", "New title"), task("t4", "Missed while offline")}
	store.afterQuery = func() {
		s.Roster().Apply(roster.Updated{ID: "t2", Patch: model.Patch{Notes: model.Set("restocked")}})
	}
	store.mu.Unlock()

	require.NoError(t, s.Reload(context.Background()))

	got, _ := s.Roster().Get("t1")
	assert.Equal(t, "New title", got.Title)

	kept, ok := s.Roster().Get("t2")
	require.True(t, ok)
	assert.Equal(t, "restocked", kept.Notes)
	assert.Equal(t, []string{"t1", "t4", "t2"}, ids(s.Roster().Snapshot()))
}

func TestReloadDuringDeleteKeepsTaskHidden(t *testing.T) {
	store := newFakeStore(task("t1", "Empty grease trap"), task("t2", "Sweep"))
	s := openSession(t, store, nil, nil)

	store.gate = make(chan struct{})
	store.started = make(chan string, 1)

	errCh := make(chan error, 1)
	go func() { errCh <- s.Delete(context.Background(), "t1") }()
	require.Equal(t, "t1", <-store.started)

	require.NoError(t, s.Reload(context.Background()))
	_, visible := s.Roster().Get("t1")
	assert.False(t, visible)
	assert.True(t, s.Roster().InFlight("t1"))

	close(store.gate)
	require.NoError(t, <-errCh)
	assert.Equal(t, []string{"t2"}, ids(s.Roster().Snapshot()))
}
