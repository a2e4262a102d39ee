package detail

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/kitchen-roster/internal/keys"
	"github.com/nhle/kitchen-roster/internal/model"
)

func TestRendersRecord(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 30)
	m.SetNames([]model.User{{ID: "u1", Name: "Dana"}}, []model.Role{{ID: "cook", Name: "Cook"}})

	due := model.NewTimeOfDay(9, 30)
	done := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	rec := model.TaskRecord{
		ID:               "t1",
		Title:            "Check walk-in",
		Notes:            "door seal worn",
		CompletionReason: "logged",
		ForDate:          "2026-03-14",
		DueAt:            &due,
		AssigneeUserID:   model.StringPtr("u1"),
		AssigneeRoleID:   model.StringPtr("cook"),
		Status:           model.StatusCompleted,
		CompletedAt:      &done,
	}
	m.SetTask("t1", &rec, true)

	out := m.View()
	for _, want := range []string{"Check walk-in", "done", "due 09:30", "saving", "Dana (u1)", "Cook (cook)", "door seal worn", "logged"} {
		assert.Contains(t, out, want)
	}
	assert.Equal(t, "t1", m.TaskID())
}

func TestRemovedTask(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 30)
	m.SetTask("t1", nil, false)
	assert.Contains(t, m.View(), "no longer on the roster")
}
