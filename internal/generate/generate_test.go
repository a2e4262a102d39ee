package generate_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/kitchen-roster/internal/generate"
	"github.com/nhle/kitchen-roster/internal/model"
	"github.com/nhle/kitchen-roster/tests/testutil"
)

const day = "2026-03-14"

func seedTemplates(t *testing.T) *generate.Generator {
	t.Helper()
	ctx := context.Background()
	st := testutil.NewTestStore(t)

	open := model.NewTimeOfDay(6, 30)
	require.NoError(t, st.CreateTemplate(ctx, model.TaskTemplate{
		ID: "tp-prep", Title: "Prep pico de gallo", DueAt: &open, AssigneeRoleID: model.StringPtr("lead_prep_cook"),
	}))
	require.NoError(t, st.CreateTemplate(ctx, model.TaskTemplate{ID: "tp-grill", Title: "Season grill"}))
	require.NoError(t, st.CreateTemplate(ctx, model.TaskTemplate{ID: "tp-bank", Title: "Bank deposit report"}))

	t.Cleanup(func() {
		recs, err := st.QueryDay(ctx, day)
		require.NoError(t, err)
		for _, r := range recs {
			assert.Equal(t, model.StatusPending, r.Status)
			assert.NotNil(t, r.TemplateID)
		}
	})
	return generate.New(st)
}

func TestGenerateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	g := seedTemplates(t)

	res, err := g.Generate(ctx, day, nil)
	require.NoError(t, err)
	assert.Len(t, res.Created, 3)
	assert.Zero(t, res.Skipped)

	res, err = g.Generate(ctx, day, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Created)
	assert.Equal(t, 3, res.Skipped)
}

func TestGenerateKeywordFilter(t *testing.T) {
	g := seedTemplates(t)

	res, err := g.Generate(context.Background(), day, []string{"prep", "grill"})
	require.NoError(t, err)
	assert.Len(t, res.Created, 2)
}

func TestGenerateRejectsBadDay(t *testing.T) {
	_, err := seedTemplates(t).Generate(context.Background(), "03/14", nil)
	assert.Error(t, err)
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	s := generate.NewScheduler(seedTemplates(t), "every morning", nil)
	assert.Error(t, s.Start(context.Background()))
}

func TestSchedulerStartStop(t *testing.T) {
	s := generate.NewScheduler(seedTemplates(t), "0 5 * * *", nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.Start(ctx))
	assert.Error(t, s.Start(ctx))

	s.Stop()
	s.Stop()

	res, err := s.RunOnce(ctx)
	require.NoError(t, err)
	assert.Len(t, res.Created, 3)
}
