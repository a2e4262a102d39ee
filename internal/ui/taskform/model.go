package taskform

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/kitchen-roster/internal/model"
	"github.com/nhle/kitchen-roster/internal/theme"
)

// TaskCreatedMsg is dispatched when a new task is submitted via the form.
type TaskCreatedMsg struct {
	Task model.TaskRecord
}

// CancelMsg is dispatched when the user cancels the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title  string
	notes  string
	dueAt  string
	userID string
	roleID string
}

// Model is the Bubble Tea model for the new task form.
type Model struct {
	form   *huh.Form
	fb     *formBindings
	users  []model.User
	roles  []model.Role
	width  int
	height int
}

// New creates a new task form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// SetOptions sets the people and roles offered as assignees.
func (m *Model) SetOptions(users []model.User, roles []model.Role) {
	m.users = users
	m.roles = roles
}

// Start resets the fields and builds a fresh form.
func (m *Model) Start() tea.Cmd {
	*m.fb = formBindings{}
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the task form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the task form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render("New Task") + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	userOpts := []huh.Option[string]{huh.NewOption("Nobody", "")}
	for _, u := range m.users {
		userOpts = append(userOpts, huh.NewOption(u.Label(), u.ID))
	}
	roleOpts := []huh.Option[string]{huh.NewOption("No role", "")}
	for _, r := range m.roles {
		roleOpts = append(roleOpts, huh.NewOption(r.Name, r.ID))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Placeholder("What needs to be done?").
				Value(&m.fb.title).
				Validate(validateRequired("Title")),
			huh.NewText().
				Title("Notes").
				Placeholder("Optional details...").
				Value(&m.fb.notes),
			huh.NewInput().
				Title("Due").
				Placeholder("HH:MM (optional)").
				Value(&m.fb.dueAt).
				Validate(validateOptionalTime),
			huh.NewSelect[string]().
				Title("Person").
				Options(userOpts...).
				Value(&m.fb.userID),
			huh.NewSelect[string]().
				Title("Role").
				Options(roleOpts...).
				Value(&m.fb.roleID),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) handleSubmit() tea.Cmd {
	rec := model.TaskRecord{
		Title:  strings.TrimSpace(m.fb.title),
		Notes:  m.fb.notes,
		Status: model.StatusPending,
	}
	if due := strings.TrimSpace(m.fb.dueAt); due != "" {
		if t, err := model.ParseTimeOfDay(due); err == nil {
			rec.DueAt = &t
		}
	}
	if m.fb.userID != "" {
		rec.AssigneeUserID = model.StringPtr(m.fb.userID)
	}
	if m.fb.roleID != "" {
		rec.AssigneeRoleID = model.StringPtr(m.fb.roleID)
	}
	return func() tea.Msg { return TaskCreatedMsg{Task: rec} }
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateOptionalTime(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := model.ParseTimeOfDay(s); err != nil {
		return fmt.Errorf("invalid time, use HH:MM")
	}
	return nil
}
