package app

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/kitchen-roster/internal/model"
	"github.com/nhle/kitchen-roster/internal/roster"
	"github.com/nhle/kitchen-roster/internal/store"
	"github.com/nhle/kitchen-roster/internal/ui/command"
	"github.com/nhle/kitchen-roster/tests/testutil"
)

const testDay = "2026-03-14"

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func setup(t *testing.T, titles ...string) (Model, *store.SQLiteStore, []string) {
	t.Helper()
	st := testutil.NewTestStore(t)

	var ids []string
	for _, title := range titles {
		ids = append(ids, testutil.SeedTask(t, st, model.TaskRecord{Title: title, ForDate: testDay}))
	}

	sess, err := roster.Open(context.Background(), roster.Options{Day: testDay, Store: st})
	require.NoError(t, err)
	t.Cleanup(sess.Close)

	m := New(sess, st, roster.Filter{})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	next, _ = next.Update(rosterChangedMsg{})
	return next.(Model), st, ids
}

// press sends key and runs any resulting command once, feeding its
// message back into the model.
func press(t *testing.T, m Model, msg tea.KeyMsg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if cmd == nil {
		return m
	}
	out := cmd()
	if _, ok := out.(tea.BatchMsg); ok {
		return m
	}
	next, _ = m.Update(out)
	return next.(Model)
}

func TestToggleSelectedTask(t *testing.T) {
	m, st, ids := setup(t, "Prep onions")

	press(t, m, runes("x"))

	rec, err := st.GetTaskByID(context.Background(), ids[0])
	require.NoError(t, err)
	assert.True(t, model.IsDone(*rec))
	assert.True(t, model.IsDone(must(t, m.session.Roster(), ids[0])))
}

func TestBulkDeleteMarked(t *testing.T) {
	m, st, _ := setup(t, "A", "B", "C")
	space := tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}

	m = press(t, m, space)
	m = press(t, m, space)
	m = press(t, m, runes("d"))

	assert.Equal(t, "delete: 2 succeeded, 0 failed", m.status)
	recs, err := st.QueryDay(context.Background(), testDay)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "C", recs[0].Title)
}

func TestEscDismissesError(t *testing.T) {
	m, _, _ := setup(t, "A")
	m.session.Roster().Report(errors.New("store unreachable"))
	assert.Contains(t, m.View(), "store unreachable")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.NoError(t, m.session.Roster().LastError())
}

func TestCommandPaletteChangesScope(t *testing.T) {
	m, _, _ := setup(t, "A")

	next, _ := m.Update(paletteMsg(t, "mine"))
	m = next.(Model)
	assert.Equal(t, roster.ScopeMine, m.dashboard.Filter().Scope)

	next, _ = m.Update(paletteMsg(t, "category bar"))
	m = next.(Model)
	assert.Equal(t, "unknown category: bar", m.status)
}

func TestDetailFollowsRoster(t *testing.T) {
	m, _, ids := setup(t, "Wipe counters")

	m = press(t, m, runes("v"))
	require.Equal(t, ViewDetail, m.currentView)
	assert.Contains(t, m.View(), "Wipe counters")

	require.NoError(t, m.session.Delete(context.Background(), ids[0]))
	next, _ := m.Update(rosterChangedMsg{})
	m = next.(Model)
	assert.Contains(t, m.View(), "no longer on the roster")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ViewDashboard, m.currentView)
}

func must(t *testing.T, r *roster.Roster, id string) model.TaskRecord {
	t.Helper()
	rec, ok := r.Get(id)
	require.True(t, ok, id)
	return rec
}

func paletteMsg(t *testing.T, input string) tea.Msg {
	t.Helper()
	c, ok := command.Parse(input)
	require.True(t, ok, input)
	return command.CommandMsg(c)
}
