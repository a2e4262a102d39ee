package roster_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/kitchen-roster/internal/model"
	"github.com/nhle/kitchen-roster/internal/roster"
)

func TestBulkPartialFailure(t *testing.T) {
	store := newFakeStore()
	store.setFail("t2")
	r := seeded(nil, task("t1", "a"), task("t2", "b"), task("t3", "c"))

	res := roster.RunBulk(context.Background(), r, store, []string{"t1", "t2", "t3"}, roster.BulkOp{Kind: roster.BulkToggle})

	assert.ElementsMatch(t, []string{"t1", "t3"}, res.Succeeded)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "t2", res.Failures[0].ID)
	assert.Equal(t, "2 succeeded, 1 failed", res.Summary())

	for _, id := range []string{"t1", "t3"} {
		got, _ := r.Get(id)
		assert.True(t, model.IsDone(got), id)
	}

	err := res.Err()
	require.Error(t, err)
	var bulkErr *roster.BulkError
	require.True(t, errors.As(err, &bulkErr))
	assert.Equal(t, 2, bulkErr.Succeeded)
	assert.True(t, roster.IsBulkError(r.LastError()))
}

func TestBulkAssignAndDelete(t *testing.T) {
	store := newFakeStore()
	r := seeded(nil, task("t1", "a"), task("t2", "b"), task("t3", "c"))

	res := roster.RunBulk(context.Background(), r, store, []string{"t1", "t2", "t1"}, roster.BulkOp{Kind: roster.BulkAssignRole, Target: "dish"})
	assert.NoError(t, res.Err())
	assert.Len(t, res.Succeeded, 2)

	res = roster.RunBulk(context.Background(), r, store, []string{"t2", "missing"}, roster.BulkOp{Kind: roster.BulkAssignUser, Target: "u5"})
	assert.Equal(t, "1 succeeded, 1 failed", res.Summary())
	assert.ErrorIs(t, res.Failures[0].Err, roster.ErrNotFound)

	got, _ := r.Get("t2")
	assert.Equal(t, "dish", model.Deref(got.AssigneeRoleID))
	assert.Equal(t, "u5", model.Deref(got.AssigneeUserID))

	res = roster.RunBulk(context.Background(), r, store, []string{"t1", "t3"}, roster.BulkOp{Kind: roster.BulkDelete})
	assert.NoError(t, res.Err())
	assert.Equal(t, []string{"t2"}, ids(r.Snapshot()))
	assert.Equal(t, []string{"t1", "t3"}, store.deletes)
}

func TestBulkEmptySelection(t *testing.T) {
	r := seeded(nil)
	res := roster.RunBulk(context.Background(), r, newFakeStore(), nil, roster.BulkOp{Kind: roster.BulkToggle})
	assert.NoError(t, res.Err())
	assert.Equal(t, "0 succeeded, 0 failed", res.Summary())
}
