package noteform

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/kitchen-roster/internal/model"
	"github.com/nhle/kitchen-roster/internal/theme"
)

// SavedMsg carries the edited notes for a task.
type SavedMsg struct {
	TaskID string
	Notes  string
	Reason string
}

// CancelMsg is dispatched when the user cancels the form.
type CancelMsg struct{}

type formBindings struct {
	notes  string
	reason string
}

// Model edits a task's notes and completion reason.
type Model struct {
	form   *huh.Form
	fb     *formBindings
	taskID string
	title  string
	width  int
	height int
}

// New creates a new notes form model.
func New(width, height int) Model {
	return Model{fb: &formBindings{}, width: width, height: height}
}

// Start opens the form prefilled from rec.
func (m *Model) Start(rec model.TaskRecord) tea.Cmd {
	m.taskID = rec.ID
	m.title = rec.DisplayTitle()
	m.fb.notes = rec.Notes
	m.fb.reason = rec.CompletionReason

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Notes").
				Value(&m.fb.notes),
			huh.NewInput().
				Title("Completion reason").
				Placeholder("Why it was finished, skipped, or late").
				Value(&m.fb.reason),
		),
	).WithWidth(m.formWidth())
	return m.form.Init()
}

// Update handles messages for the notes form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		saved := SavedMsg{TaskID: m.taskID, Notes: m.fb.notes, Reason: m.fb.reason}
		return m, func() tea.Msg { return saved }
	case huh.StateAborted:
		return m, func() tea.Msg { return CancelMsg{} }
	}
	return m, cmd
}

// View renders the notes form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1).
		Render("Notes: " + m.title)

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(title + "\n" + m.form.View())
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	return max(40, min(m.width-4, 100))
}
