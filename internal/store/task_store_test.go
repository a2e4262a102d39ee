package store_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/nhle/kitchen-roster/internal/model"
	"github.com/nhle/kitchen-roster/internal/store"
	"github.com/nhle/kitchen-roster/tests/testutil"
)

const testDay = "2026-03-14"

type TaskStoreTestSuite struct {
	suite.Suite
	ctx   context.Context
	store *store.SQLiteStore
}

func (s *TaskStoreTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = testutil.NewTestStore(s.T())
}

func (s *TaskStoreTestSuite) seed(title string, due *model.TimeOfDay) string {
	return testutil.SeedTask(s.T(), s.store, model.TaskRecord{
		Title:   title,
		ForDate: testDay,
		DueAt:   due,
	})
}

func (s *TaskStoreTestSuite) TestInsertDefaultsAndRoundTrip() {
	due := model.NewTimeOfDay(9, 30)
	id := s.seed("Prep onions", &due)
	s.NotEmpty(id)

	rec, err := s.store.GetTaskByID(s.ctx, id)
	s.Require().NoError(err)
	s.Equal("Prep onions", rec.Title)
	s.Equal(model.StatusPending, rec.Status)
	s.Nil(rec.CompletedAt)
	s.Require().NotNil(rec.DueAt)
	s.Equal("09:30", rec.DueAt.String())
	s.Equal(testDay, rec.ForDate)
}

func (s *TaskStoreTestSuite) TestInsertRejectsBadDay() {
	_, err := s.store.InsertTask(s.ctx, model.TaskRecord{Title: "x", ForDate: "tomorrow"})
	s.Error(err)
}

func (s *TaskStoreTestSuite) TestQueryDayOrdersByDueThenTitle() {
	late := model.NewTimeOfDay(14, 0)
	early := model.NewTimeOfDay(8, 0)
	s.seed("zeta", nil)
	s.seed("Late", &late)
	s.seed("Early", &early)
	testutil.SeedTask(s.T(), s.store, model.TaskRecord{Title: "other day", ForDate: "2026-03-15"})

	recs, err := s.store.QueryDay(s.ctx, testDay)
	s.Require().NoError(err)
	s.Require().Len(recs, 3)
	s.Equal("Early", recs[0].Title)
	s.Equal("Late", recs[1].Title)
	s.Equal("zeta", recs[2].Title)
}

func (s *TaskStoreTestSuite) TestUpdateCouplesCompletion() {
	id := s.seed("Wipe counters", nil)

	err := s.store.UpdateTask(s.ctx, id, model.Patch{Status: model.Set(model.StatusCompleted)})
	s.Require().NoError(err)

	rec, err := s.store.GetTaskByID(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(model.StatusCompleted, rec.Status)
	s.NotNil(rec.CompletedAt)

	err = s.store.UpdateTask(s.ctx, id, model.Patch{CompletedAt: model.Clear[time.Time]()})
	s.Require().NoError(err)

	rec, err = s.store.GetTaskByID(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(model.StatusPending, rec.Status)
	s.Nil(rec.CompletedAt)
}

func (s *TaskStoreTestSuite) TestUpdateClearsAssignee() {
	id := testutil.SeedTask(s.T(), s.store, model.TaskRecord{
		Title:          "Count drawer",
		ForDate:        testDay,
		AssigneeUserID: model.StringPtr("u1"),
		AssigneeRoleID: model.StringPtr("cashier"),
	})

	err := s.store.UpdateTask(s.ctx, id, model.Patch{AssigneeUserID: model.Clear[string]()})
	s.Require().NoError(err)

	rec, err := s.store.GetTaskByID(s.ctx, id)
	s.Require().NoError(err)
	s.Nil(rec.AssigneeUserID)
	s.Equal("cashier", model.Deref(rec.AssigneeRoleID))
}

func (s *TaskStoreTestSuite) TestUpdateAndDeleteMissingTask() {
	err := s.store.UpdateTask(s.ctx, "nope", model.Patch{Notes: model.Set("x")})
	s.ErrorIs(err, store.ErrTaskNotFound)

	err = s.store.DeleteTask(s.ctx, "nope")
	s.ErrorIs(err, store.ErrTaskNotFound)

	_, err = s.store.GetTaskByID(s.ctx, "nope")
	s.ErrorIs(err, store.ErrTaskNotFound)
}

func (s *TaskStoreTestSuite) TestEmptyPatchIsNoop() {
	id := s.seed("Sweep", nil)
	before, err := s.store.LatestChangeSeq(s.ctx)
	s.Require().NoError(err)

	s.Require().NoError(s.store.UpdateTask(s.ctx, id, model.Patch{}))

	after, err := s.store.LatestChangeSeq(s.ctx)
	s.Require().NoError(err)
	s.Equal(before, after)
}

func (s *TaskStoreTestSuite) TestWritesAppendChanges() {
	id := s.seed("Fryer oil", nil)
	s.Require().NoError(s.store.UpdateTask(s.ctx, id, model.Patch{Notes: model.Set("changed at 3pm")}))
	s.Require().NoError(s.store.DeleteTask(s.ctx, id))

	changes, err := s.store.ChangesSince(s.ctx, testDay, 0, 10)
	s.Require().NoError(err)
	s.Require().Len(changes, 3)

	s.Equal(model.ChangeCreated, changes[0].Kind)
	s.Equal(model.ChangeUpdated, changes[1].Kind)
	s.Equal(model.ChangeDeleted, changes[2].Kind)
	s.Less(changes[0].Seq, changes[1].Seq)
	s.Less(changes[1].Seq, changes[2].Seq)

	var created model.TaskRecord
	s.Require().NoError(json.Unmarshal([]byte(changes[0].Payload), &created))
	s.Equal("Fryer oil", created.Title)

	var updated map[string]interface{}
	s.Require().NoError(json.Unmarshal([]byte(changes[1].Payload), &updated))
	s.Equal(id, updated["id"])
	s.Equal("changed at 3pm", updated["notes"])
	s.NotContains(updated, "title")

	later, err := s.store.ChangesSince(s.ctx, testDay, changes[1].Seq, 10)
	s.Require().NoError(err)
	s.Require().Len(later, 1)
	s.Equal(model.ChangeDeleted, later[0].Kind)

	other, err := s.store.ChangesSince(s.ctx, "2026-03-15", 0, 10)
	s.Require().NoError(err)
	s.Empty(other)
}

func TestTaskStoreSuite(t *testing.T) {
	suite.Run(t, new(TaskStoreTestSuite))
}
