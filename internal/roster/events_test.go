package roster_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/kitchen-roster/internal/model"
	"github.com/nhle/kitchen-roster/internal/roster"
)

func TestCreatedIsIdempotent(t *testing.T) {
	r := roster.New(day)
	rec := task("t1", "Slice tomatoes", due(9, 0))

	assert.True(t, r.Apply(roster.Created{Record: rec}))
	once := r.Snapshot()

	assert.False(t, r.Apply(roster.Created{Record: rec}))
	assert.Equal(t, once, r.Snapshot())
}

func TestCreatedKeepsExistingEntry(t *testing.T) {
	r := roster.New(day)
	r.Apply(roster.Created{Record: task("t1", "local copy")})

	r.Apply(roster.Created{Record: task("t1", "feed echo")})

	got, ok := r.Get("t1")
	require.True(t, ok)
	assert.Equal(t, "local copy", got.Title)
	assert.Equal(t, 1, r.Len())
}

func TestCreatedForOtherDayIsDropped(t *testing.T) {
	r := roster.New(day)
	rec := task("t1", "tomorrow's prep")
	rec.ForDate = "2026-03-15"

	assert.False(t, r.Apply(roster.Created{Record: rec}))
	assert.Equal(t, 0, r.Len())
}

func TestUpdatedIsPartial(t *testing.T) {
	r := roster.New(day)
	r.Apply(roster.Created{Record: task("t1", "Wash dishes", due(10, 0), user("u1"), role("dish"))})

	assert.True(t, r.ApplyChange(updatedChange(2, "t1", `{"id":"t1","notes":"x"}`)))

	got, _ := r.Get("t1")
	assert.Equal(t, "x", got.Notes)
	assert.Equal(t, "Wash dishes", got.Title)
	require.NotNil(t, got.DueAt)
	assert.Equal(t, "10:00", got.DueAt.String())
	assert.Equal(t, "u1", model.Deref(got.AssigneeUserID))
	assert.Equal(t, "dish", model.Deref(got.AssigneeRoleID))
}

func TestUpdatedNullClearsField(t *testing.T) {
	r := roster.New(day)
	r.Apply(roster.Created{Record: task("t1", "Grill check", user("u1"))})

	r.ApplyChange(updatedChange(2, "t1", `{"id":"t1","assignee_user_id":null}`))

	got, _ := r.Get("t1")
	assert.Nil(t, got.AssigneeUserID)
}

func TestSequentialUpdatesLastWins(t *testing.T) {
	r := roster.New(day)
	r.Apply(roster.Created{Record: task("t1", "Fryer")})

	r.ApplyChange(updatedChange(2, "t1", `{"id":"t1","notes":"first"}`))
	r.ApplyChange(updatedChange(3, "t1", `{"id":"t1","notes":"second"}`))

	got, _ := r.Get("t1")
	assert.Equal(t, "second", got.Notes)
}

func TestUpdatedAndDeletedForAbsentIDAreNoops(t *testing.T) {
	r := roster.New(day)
	assert.False(t, r.Apply(roster.Updated{ID: "ghost", Patch: model.Patch{Notes: model.Set("x")}}))
	assert.False(t, r.Apply(roster.Deleted{ID: "ghost"}))
	assert.Equal(t, 0, r.Len())
	assert.NoError(t, r.LastError())
}

func TestDeletedRemoves(t *testing.T) {
	r := roster.New(day)
	r.Apply(roster.Created{Record: task("t1", "a")})
	r.Apply(roster.Created{Record: task("t2", "b")})

	assert.True(t, r.ApplyChange(deletedChange(3, "t1")))
	assert.Equal(t, []string{"t2"}, ids(r.Snapshot()))
}

func TestMalformedEventsAreReported(t *testing.T) {
	cases := map[string]model.Change{
		"missing id":   {Seq: 1, Kind: model.ChangeUpdated, Payload: `{"notes":"x"}`},
		"blank id":     {Seq: 2, Kind: model.ChangeDeleted, Payload: `{"id":"  "}`},
		"not json":     {Seq: 3, Kind: model.ChangeCreated, Payload: `nope`},
		"unknown kind": {Seq: 4, Kind: "archived", Payload: `{"id":"t1"}`},
		"bad field":    {Seq: 5, Kind: model.ChangeUpdated, Payload: `{"id":"t1","due_at":"later"}`},
	}

	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			r := roster.New(day)
			r.Apply(roster.Created{Record: task("t1", "keep")})

			assert.False(t, r.ApplyChange(c))
			assert.True(t, roster.IsMalformedEvent(r.LastError()))
			assert.Equal(t, 1, r.Len())

			select {
			case err := <-r.Errors():
				assert.True(t, roster.IsMalformedEvent(err))
			default:
				t.Fatal("expected error on channel")
			}
		})
	}
}

func TestDecodeNumericID(t *testing.T) {
	ev, err := roster.Decode(model.Change{Kind: model.ChangeCreated, ForDate: day, Payload: `{"id":42,"title":"Count till"}`})
	require.NoError(t, err)

	created, ok := ev.(roster.Created)
	require.True(t, ok)
	assert.Equal(t, "42", created.Record.ID)
	assert.Equal(t, day, created.Record.ForDate)
}

func TestRandomEventsNeverDuplicate(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	r := roster.New(day)
	idsPool := []string{"a", "b", "c", "d"}

	for i := 0; i < 500; i++ {
		id := idsPool[rng.Intn(len(idsPool))]
		switch rng.Intn(3) {
		case 0:
			r.Apply(roster.Created{Record: task(id, "t"+id)})
		case 1:
			r.Apply(roster.Updated{ID: id, Patch: model.Patch{Notes: model.Set("n")}})
		case 2:
			r.Apply(roster.Deleted{ID: id})
		}

		seen := make(map[string]bool)
		for _, rec := range r.Snapshot() {
			require.False(t, seen[rec.ID], "duplicate id %s", rec.ID)
			seen[rec.ID] = true
		}
	}
}
