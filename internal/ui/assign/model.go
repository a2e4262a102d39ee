// Package assign is the picker used to reassign one or more tasks to a
// person or a role.
package assign

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/kitchen-roster/internal/model"
	"github.com/nhle/kitchen-roster/internal/theme"
)

// Target says what kind of assignee is being picked.
type Target int

const (
	TargetUser Target = iota
	TargetRole
)

// ChosenMsg carries the pick. An empty Assignee unassigns.
type ChosenMsg struct {
	Target   Target
	TaskIDs  []string
	Assignee string
}

// CancelMsg is dispatched when the user cancels the picker.
type CancelMsg struct{}

// Model is the assignee picker.
type Model struct {
	form    *huh.Form
	choice  *string
	target  Target
	taskIDs []string
	users   []model.User
	roles   []model.Role
	width   int
	height  int
}

// New creates a new picker.
func New(width, height int) Model {
	return Model{choice: new(string), width: width, height: height}
}

// SetOptions sets the people and roles to choose from.
func (m *Model) SetOptions(users []model.User, roles []model.Role) {
	m.users = users
	m.roles = roles
}

// Start opens the picker for taskIDs. current preselects an option.
func (m *Model) Start(target Target, taskIDs []string, current string) tea.Cmd {
	m.target = target
	m.taskIDs = taskIDs
	*m.choice = current

	var opts []huh.Option[string]
	title := "Assign to person"
	switch target {
	case TargetRole:
		title = "Assign to role"
		opts = append(opts, huh.NewOption("No role", ""))
		for _, r := range m.roles {
			opts = append(opts, huh.NewOption(r.Name, r.ID))
		}
	default:
		opts = append(opts, huh.NewOption("Nobody", ""))
		for _, u := range m.users {
			opts = append(opts, huh.NewOption(u.Label(), u.ID))
		}
	}
	if len(taskIDs) > 1 {
		title = fmt.Sprintf("%s (%d tasks)", title, len(taskIDs))
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(title).
				Options(opts...).
				Value(m.choice),
		),
	).WithWidth(max(40, min(m.width-4, 80)))
	return m.form.Init()
}

// Update handles messages for the picker.
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
		chosen := ChosenMsg{Target: m.target, TaskIDs: m.taskIDs, Assignee: *m.choice}
		return m, func() tea.Msg { return chosen }
	case huh.StateAborted:
		return m, func() tea.Msg { return CancelMsg{} }
	}
	return m, cmd
}

// View renders the picker.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}
	return lipgloss.NewStyle().
		Padding(1, 2).
		Foreground(theme.ColorWhite).
		Render(m.form.View())
}

// SetSize updates the picker dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
