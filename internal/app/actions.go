package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/kitchen-roster/internal/model"
	"github.com/nhle/kitchen-roster/internal/roster"
	"github.com/nhle/kitchen-roster/internal/ui/assign"
)

// rosterChangedMsg is sent whenever the roster contents may have changed.
type rosterChangedMsg struct{}

// actionDoneMsg is sent after a roster action finishes. Failures are
// already on the roster's error surface; summary is an optional status.
type actionDoneMsg struct {
	err     error
	summary string
}

// directoryLoadedMsg carries the people and roles for pickers and badges,
// and the viewer's current role grants.
type directoryLoadedMsg struct {
	users   []model.User
	roles   []model.Role
	roleIDs []string
	err     error
}

// waitForChange blocks until the roster signals a change.
func waitForChange(r *roster.Roster) tea.Cmd {
	return func() tea.Msg {
		<-r.Changed()
		return rosterChangedMsg{}
	}
}

// loadDirectory fetches users, roles, and the viewer's roles.
func (m Model) loadDirectory() tea.Cmd {
	dir := m.directory
	viewer := m.session.Viewer().UserID
	return func() tea.Msg {
		if dir == nil {
			return directoryLoadedMsg{}
		}
		ctx := context.Background()
		users, err := dir.GetUsers(ctx)
		if err != nil {
			return directoryLoadedMsg{err: err}
		}
		roles, err := dir.GetRoles(ctx)
		if err != nil {
			return directoryLoadedMsg{err: err}
		}
		var roleIDs []string
		if viewer != "" {
			if roleIDs, err = dir.GetRoleIDsForUser(ctx, viewer); err != nil {
				return directoryLoadedMsg{err: err}
			}
		}
		return directoryLoadedMsg{users: users, roles: roles, roleIDs: roleIDs}
	}
}

// applyDirectory hands the directory to the views and refreshes the
// viewer's held roles.
func (m *Model) applyDirectory(msg directoryLoadedMsg) {
	m.dashboard.SetNames(msg.users, msg.roles)
	m.detail.SetNames(msg.users, msg.roles)
	m.taskForm.SetOptions(msg.users, msg.roles)
	m.assignForm.SetOptions(msg.users, msg.roles)

	viewer := m.session.Viewer().UserID
	if viewer == "" {
		return
	}
	m.session.SetRoles(msg.roleIDs)
	for _, u := range msg.users {
		if u.ID == viewer {
			m.viewerLabel = u.Label()
		}
	}
}

// reload re-queries the day.
func (m Model) reload() tea.Cmd {
	s := m.session
	return func() tea.Msg {
		return actionDoneMsg{err: s.Reload(context.Background())}
	}
}

// toggle flips completion of one task, or of every marked task.
func (m Model) toggle(ids []string) tea.Cmd {
	switch len(ids) {
	case 0:
		return nil
	case 1:
		s, id := m.session, ids[0]
		return func() tea.Msg {
			return actionDoneMsg{err: s.ToggleDone(context.Background(), id)}
		}
	}
	return m.bulk(ids, roster.BulkOp{Kind: roster.BulkToggle})
}

// remove deletes one task, or every marked task.
func (m Model) remove(ids []string) tea.Cmd {
	switch len(ids) {
	case 0:
		return nil
	case 1:
		s, id := m.session, ids[0]
		return func() tea.Msg {
			return actionDoneMsg{err: s.Delete(context.Background(), id)}
		}
	}
	return m.bulk(ids, roster.BulkOp{Kind: roster.BulkDelete})
}

// assign reassigns the picked tasks.
func (m Model) assign(target assign.Target, ids []string, assignee string) tea.Cmd {
	kind := roster.BulkAssignUser
	if target == assign.TargetRole {
		kind = roster.BulkAssignRole
	}
	if len(ids) == 1 {
		s, id := m.session, ids[0]
		return func() tea.Msg {
			ctx := context.Background()
			if kind == roster.BulkAssignRole {
				return actionDoneMsg{err: s.AssignRole(ctx, id, assignee)}
			}
			return actionDoneMsg{err: s.AssignUser(ctx, id, assignee)}
		}
	}
	return m.bulk(ids, roster.BulkOp{Kind: kind, Target: assignee})
}

// bulk runs op over ids and reports the tally.
func (m Model) bulk(ids []string, op roster.BulkOp) tea.Cmd {
	s := m.session
	return func() tea.Msg {
		res := s.Bulk(context.Background(), ids, op)
		return actionDoneMsg{err: res.Err(), summary: op.Kind.String() + ": " + res.Summary()}
	}
}

// saveNotes stores edited notes.
func (m Model) saveNotes(id, notes, reason string) tea.Cmd {
	s := m.session
	return func() tea.Msg {
		return actionDoneMsg{err: s.SaveNotes(context.Background(), id, notes, reason)}
	}
}

// createTask adds a task to the session's day.
func (m Model) createTask(rec model.TaskRecord) tea.Cmd {
	s := m.session
	return func() tea.Msg {
		_, err := s.Create(context.Background(), rec)
		return actionDoneMsg{err: err}
	}
}
