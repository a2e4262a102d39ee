package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/kitchen-roster/internal/model"
	"github.com/nhle/kitchen-roster/tests/testutil"
)

func TestDirectoryRoles(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	require.NoError(t, s.CreateUser(ctx, model.User{ID: "u1", Name: "Dana"}))
	require.NoError(t, s.CreateRole(ctx, model.Role{ID: "cook", Name: "Cook"}))
	require.NoError(t, s.CreateRole(ctx, model.Role{ID: "general_manager"}))

	require.NoError(t, s.AssignRole(ctx, "u1", "general_manager"))
	require.NoError(t, s.AssignRole(ctx, "u1", "cook"))
	require.NoError(t, s.AssignRole(ctx, "u1", "cook"))

	ids, err := s.GetRoleIDsForUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"cook", "general_manager"}, ids)

	require.NoError(t, s.RevokeRole(ctx, "u1", "cook"))
	ids, err = s.GetRoleIDsForUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"general_manager"}, ids)

	roles, err := s.GetRoles(ctx)
	require.NoError(t, err)
	require.Len(t, roles, 2)
	assert.Equal(t, "general_manager", roles[1].Name)

	users, err := s.GetUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Dana", users[0].Label())
}

func TestCreateUserRequiresIdentity(t *testing.T) {
	s := testutil.NewTestStore(t)
	assert.Error(t, s.CreateUser(context.Background(), model.User{}))
}

func TestTemplates(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	due := model.NewTimeOfDay(6, 0)
	require.NoError(t, s.CreateTemplate(ctx, model.TaskTemplate{
		ID:             "t-open",
		Title:          "Open line stations",
		DueAt:          &due,
		AssigneeRoleID: model.StringPtr("line_cook"),
	}))
	require.NoError(t, s.CreateTemplate(ctx, model.TaskTemplate{ID: "t-close", Title: "Close out register"}))

	tmpls, err := s.GetTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, tmpls, 2)
	assert.Equal(t, "t-open", tmpls[0].ID)
	require.NotNil(t, tmpls[0].DueAt)
	assert.Equal(t, "06:00", tmpls[0].DueAt.String())

	has, err := s.HasInstance(ctx, "t-open", testDay)
	require.NoError(t, err)
	assert.False(t, has)

	testutil.SeedTask(t, s, tmpls[0].Instantiate(testDay))

	has, err = s.HasInstance(ctx, "t-open", testDay)
	require.NoError(t, err)
	assert.True(t, has)

	_, err = s.InsertTask(ctx, tmpls[0].Instantiate(testDay))
	assert.Error(t, err, "second instance of a template on one day violates the unique index")
}
