package dashboard

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/kitchen-roster/internal/keys"
	"github.com/nhle/kitchen-roster/internal/model"
	"github.com/nhle/kitchen-roster/internal/roster"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var space = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}

func sampleView(recs ...model.TaskRecord) roster.View {
	return roster.Build(recs, model.Viewer{UserID: "u1"}, roster.Filter{}, model.DefaultCategories())
}

func rec(id, title string) model.TaskRecord {
	return model.TaskRecord{ID: id, Title: title, ForDate: "2026-03-14", Status: model.StatusPending}
}

func newDashboard(t *testing.T) Model {
	t.Helper()
	m := New(keys.DefaultKeyMap(), model.DefaultCategories(), 80, 24)
	m.SetView(sampleView(rec("a", "Alpha"), rec("b", "Bravo"), rec("c", "Charlie")), nil)
	return m
}

func TestTargetsFallBackToSelection(t *testing.T) {
	m := newDashboard(t)
	assert.Equal(t, []string{"a"}, m.TargetIDs())
}

func TestMarksAreTargetsInDisplayOrder(t *testing.T) {
	m := newDashboard(t)

	m, _ = m.Update(space)
	m, _ = m.Update(space)
	assert.Equal(t, 2, m.MarkedCount())
	assert.Equal(t, []string{"a", "b"}, m.TargetIDs())

	// Marks on tasks that leave the view are dropped.
	m.SetView(sampleView(rec("b", "Bravo"), rec("c", "Charlie")), nil)
	assert.Equal(t, []string{"b"}, m.TargetIDs())

	m, _ = m.Update(runes("u"))
	assert.Equal(t, 0, m.MarkedCount())
}

func TestCursorFollowsTaskAcrossRebuilds(t *testing.T) {
	m := newDashboard(t)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	require.Equal(t, "b", m.SelectedID())

	m.SetView(sampleView(rec("0", "Aardvark"), rec("a", "Alpha"), rec("b", "Bravo")), []string{"b"})
	assert.Equal(t, "b", m.SelectedID())
	assert.True(t, m.deco.inFlight["b"])
}

func TestFilterKeys(t *testing.T) {
	m := newDashboard(t)

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	require.NotNil(t, cmd)
	msg, ok := cmd().(FilterChangedMsg)
	require.True(t, ok)
	assert.Equal(t, roster.ScopeMine, msg.Filter.Scope)

	m, _ = m.Update(runes("]"))
	assert.Equal(t, "prep", m.Filter().Category)

	m, _ = m.Update(runes("["))
	m, _ = m.Update(runes("["))
	assert.Equal(t, "admin", m.Filter().Category)

	m, _ = m.Update(runes("0"))
	assert.Equal(t, "", m.Filter().Category)

	assert.True(t, m.SetCategory("Line"))
	assert.Equal(t, "line", m.Filter().Category)
	assert.False(t, m.SetCategory("bar"))
}

func TestViewShowsCountsAndNames(t *testing.T) {
	m := New(keys.DefaultKeyMap(), nil, 80, 24)
	r := rec("a", "Count till")
	r.AssigneeUserID = model.StringPtr("u1")
	m.SetNames([]model.User{{ID: "u1", Name: "Dana"}}, nil)
	m.SetView(sampleView(r), nil)

	out := m.View()
	assert.Contains(t, out, "1 pending")
	assert.Contains(t, out, "Count till")
	assert.Contains(t, out, "@Dana")
}
