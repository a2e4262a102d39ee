package app

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/kitchen-roster/internal/keys"
	"github.com/nhle/kitchen-roster/internal/model"
	"github.com/nhle/kitchen-roster/internal/roster"
	"github.com/nhle/kitchen-roster/internal/ui"
	"github.com/nhle/kitchen-roster/internal/ui/assign"
	"github.com/nhle/kitchen-roster/internal/ui/command"
	"github.com/nhle/kitchen-roster/internal/ui/dashboard"
	"github.com/nhle/kitchen-roster/internal/ui/detail"
	helpview "github.com/nhle/kitchen-roster/internal/ui/help"
	"github.com/nhle/kitchen-roster/internal/ui/noteform"
	"github.com/nhle/kitchen-roster/internal/ui/taskform"
)

// Directory supplies the people and roles shown in pickers and badges.
type Directory interface {
	GetUsers(ctx context.Context) ([]model.User, error)
	GetRoles(ctx context.Context) ([]model.Role, error)
	GetRoleIDsForUser(ctx context.Context, userID string) ([]string, error)
}

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewDashboard ViewState = iota
	ViewDetail
	ViewHelp
	ViewCommand
	ViewTaskCreate
	ViewNotes
	ViewAssign
)

// Model is the root Bubble Tea model that routes input between the
// dashboard and its overlays and renders the roster session.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	session      *roster.Session
	directory    Directory
	keys         *keys.KeyMap
	dashboard    dashboard.Model
	detail       detail.Model
	helpView     helpview.Model
	commandView  command.Model
	taskForm     taskform.Model
	noteForm     noteform.Model
	assignForm   assign.Model
	viewerLabel  string
	status       string
	ready        bool
}

// New creates the root model for an open session.
func New(s *roster.Session, dir Directory, initial roster.Filter) Model {
	k := keys.DefaultKeyMap()
	dash := dashboard.New(k, s.Categories(), 80, 24)
	dash.SetScope(initial.Scope)
	dash.SetCategory(initial.Category)

	return Model{
		currentView: ViewDashboard,
		session:     s,
		directory:   dir,
		keys:        k,
		dashboard:   dash,
		detail:      detail.New(k, 80, 24),
		helpView:    helpview.New(k, 80, 24),
		commandView: command.New(80, 24),
		taskForm:    taskform.New(80, 24),
		noteForm:    noteform.New(80, 24),
		assignForm:  assign.New(80, 24),
		viewerLabel: s.Viewer().UserID,
	}
}

// Init renders the loaded roster, fetches the directory, and starts
// listening for roster changes.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return rosterChangedMsg{} },
		m.loadDirectory(),
	)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.dashboard.SetSize(contentWidth, contentHeight)
		m.detail.SetSize(contentWidth, contentHeight)
		m.helpView.SetSize(contentWidth, contentHeight)
		m.commandView.SetSize(contentWidth, contentHeight)
		m.taskForm.SetSize(contentWidth, contentHeight)
		m.noteForm.SetSize(contentWidth, contentHeight)
		m.assignForm.SetSize(contentWidth, contentHeight)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case rosterChangedMsg:
		cmd := m.refresh()
		if m.currentView == ViewDetail {
			m.showDetail(m.detail.TaskID())
		}
		return m, tea.Batch(cmd, waitForChange(m.session.Roster()))

	case directoryLoadedMsg:
		if msg.err != nil {
			m.session.Roster().Report(fmt.Errorf("load directory: %w", msg.err))
			return m, nil
		}
		m.applyDirectory(msg)
		return m, m.refresh()

	case actionDoneMsg:
		if msg.summary != "" {
			m.status = msg.summary
		}
		return m, nil

	case detail.BackMsg:
		m.currentView = ViewDashboard
		return m, nil

	case dashboard.FilterChangedMsg:
		m.status = ""
		return m, m.refresh()

	case taskform.TaskCreatedMsg:
		m.currentView = ViewDashboard
		return m, m.createTask(msg.Task)

	case noteform.SavedMsg:
		m.currentView = ViewDashboard
		return m, m.saveNotes(msg.TaskID, msg.Notes, msg.Reason)

	case assign.ChosenMsg:
		m.currentView = ViewDashboard
		return m, m.assign(msg.Target, msg.TaskIDs, msg.Assignee)

	case taskform.CancelMsg, noteform.CancelMsg, assign.CancelMsg:
		m.currentView = ViewDashboard
		return m, nil

	case command.CommandMsg:
		m.currentView = m.previousView
		return m, m.executeCommand(command.Command(msg))

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.currentView == ViewCommand && key.Matches(msg, m.keys.Back) {
			m.currentView = m.previousView
			return m, nil
		}
		if m.isOverlayForm() {
			break
		}

		switch {
		case key.Matches(msg, m.keys.Help):
			if m.currentView == ViewHelp {
				m.currentView = m.previousView
				return m, nil
			}
			m.previousView = m.currentView
			m.currentView = ViewHelp
			return m, nil

		case msg.String() == ":":
			m.previousView = m.currentView
			m.currentView = ViewCommand
			return m, m.commandView.Focus()

		case key.Matches(msg, m.keys.Back):
			if m.currentView != ViewDashboard {
				m.currentView = ViewDashboard
				return m, nil
			}
			m.session.Roster().DismissError()
			m.status = ""
			return m, nil
		}

		if m.currentView == ViewDashboard {
			if next, cmd, handled := m.handleDashboardKeys(msg); handled {
				return next, cmd
			}
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// isOverlayForm reports whether a form owns the keyboard.
func (m Model) isOverlayForm() bool {
	switch m.currentView {
	case ViewTaskCreate, ViewNotes, ViewAssign, ViewCommand:
		return true
	}
	return false
}

// handleDashboardKeys runs the roster actions bound on the dashboard.
func (m Model) handleDashboardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit, true

	case key.Matches(msg, m.keys.Refresh):
		m.status = ""
		return m, tea.Batch(m.reload(), m.loadDirectory()), true

	case key.Matches(msg, m.keys.Toggle):
		return m, m.toggle(m.dashboard.TargetIDs()), true

	case key.Matches(msg, m.keys.Delete):
		ids := m.dashboard.TargetIDs()
		m.dashboard.ClearMarks()
		return m, m.remove(ids), true

	case key.Matches(msg, m.keys.Detail):
		id := m.dashboard.SelectedID()
		if id == "" {
			return m, nil, true
		}
		m.showDetail(id)
		m.currentView = ViewDetail
		return m, nil, true

	case key.Matches(msg, m.keys.Notes):
		rec, ok := m.dashboard.Selected()
		if !ok {
			return m, nil, true
		}
		m.currentView = ViewNotes
		return m, m.noteForm.Start(rec), true

	case key.Matches(msg, m.keys.AssignUser), key.Matches(msg, m.keys.AssignRole):
		ids := m.dashboard.TargetIDs()
		if len(ids) == 0 {
			return m, nil, true
		}
		target, current := assign.TargetUser, ""
		rec, _ := m.dashboard.Selected()
		if key.Matches(msg, m.keys.AssignRole) {
			target, current = assign.TargetRole, model.Deref(rec.AssigneeRoleID)
		} else {
			current = model.Deref(rec.AssigneeUserID)
		}
		m.currentView = ViewAssign
		return m, m.assignForm.Start(target, ids, current), true

	case key.Matches(msg, m.keys.New):
		m.currentView = ViewTaskCreate
		return m, m.taskForm.Start(), true
	}
	return m, nil, false
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewDashboard:
		m.dashboard, cmd = m.dashboard.Update(msg)
	case ViewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	case ViewTaskCreate:
		m.taskForm, cmd = m.taskForm.Update(msg)
	case ViewNotes:
		m.noteForm, cmd = m.noteForm.Update(msg)
	case ViewAssign:
		m.assignForm, cmd = m.assignForm.Update(msg)
	}

	return m, cmd
}

// refresh rebuilds the dashboard rows from the roster.
func (m *Model) refresh() tea.Cmd {
	v := m.session.View(m.dashboard.Filter())
	return m.dashboard.SetView(v, m.session.Roster().InFlightIDs())
}

// showDetail points the detail view at the live record for id.
func (m *Model) showDetail(id string) {
	r := m.session.Roster()
	if rec, ok := r.Get(id); ok {
		m.detail.SetTask(id, &rec, r.InFlight(id))
		return
	}
	m.detail.SetTask(id, nil, false)
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	title := fmt.Sprintf("Roster %s", m.session.Day())
	if m.viewerLabel != "" {
		title += " | " + m.viewerLabel
	}
	header := m.layout.RenderHeader(title, m.syncStatus())
	content := m.renderContent()

	var statusBar string
	if err := m.session.Roster().LastError(); err != nil && m.currentView == ViewDashboard {
		statusBar = m.layout.RenderErrorBar(err.Error())
	} else {
		statusBar = m.layout.RenderStatusBar(m.keyHints())
	}

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewDashboard:
		return m.dashboard.View()
	case ViewDetail:
		return m.detail.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	case ViewTaskCreate:
		return m.taskForm.View()
	case ViewNotes:
		return m.noteForm.View()
	case ViewAssign:
		return m.assignForm.View()
	default:
		return ""
	}
}

// syncStatus summarizes commits still waiting on the store.
func (m Model) syncStatus() string {
	if n := len(m.session.Roster().InFlightIDs()); n > 0 {
		return fmt.Sprintf("saving (%d)", n)
	}
	return "live"
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewDetail:
		return "esc back | j/k scroll"
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter run | esc back"
	case ViewTaskCreate, ViewNotes, ViewAssign:
		return "enter submit | esc cancel"
	default:
		if m.status != "" {
			return m.status
		}
		if n := m.dashboard.MarkedCount(); n > 0 {
			return fmt.Sprintf("%d marked | x toggle | a/A assign | d delete | u unmark", n)
		}
		return "q quit | ? help | x done | e notes | n new | tab scope | [ ] category"
	}
}

// executeCommand handles a command from the command palette.
func (m *Model) executeCommand(c command.Command) tea.Cmd {
	switch c.Verb {
	case command.VerbReload:
		return tea.Batch(m.reload(), m.loadDirectory())

	case command.VerbScope:
		scope, err := roster.ParseScope(c.Arg)
		if err != nil {
			m.status = err.Error()
			return nil
		}
		m.dashboard.SetScope(scope)
		return m.refresh()

	case command.VerbCategory:
		if !m.dashboard.SetCategory(c.Arg) {
			m.status = "unknown category: " + c.Arg
			return nil
		}
		return m.refresh()

	case command.VerbUnmark:
		m.dashboard.ClearMarks()
		return nil

	case command.VerbQuit:
		return tea.Quit
	}
	return nil
}
