package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/kitchen-roster/internal/keys"
	"github.com/nhle/kitchen-roster/internal/model"
	"github.com/nhle/kitchen-roster/internal/theme"
)

// BackMsg signals the parent to navigate back to the dashboard.
type BackMsg struct{}

// Model shows every field of one task. It follows the live record: the
// parent calls SetTask again whenever the roster changes.
type Model struct {
	task      *model.TaskRecord
	taskID    string
	inFlight  bool
	userNames map[string]string
	roleNames map[string]string
	viewport  viewport.Model
	keys      *keys.KeyMap
	width     int
	height    int
}

// New creates a new detail view model.
func New(keys *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport:  vp,
		keys:      keys,
		userNames: make(map[string]string),
		roleNames: make(map[string]string),
		width:     width,
		height:    height,
	}
}

// Init returns the initial command for the detail view.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, m.keys.Back, m.keys.Detail) {
		return m, func() tea.Msg { return BackMsg{} }
	}

	// Delegate to viewport for scrolling (j/k, up/down, pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// TaskID returns the id of the task being shown.
func (m Model) TaskID() string {
	return m.taskID
}

// SetTask shows rec. A nil rec means the task is gone from the roster.
func (m *Model) SetTask(id string, rec *model.TaskRecord, inFlight bool) {
	if id != m.taskID {
		m.viewport.GotoTop()
	}
	m.taskID = id
	m.task = rec
	m.inFlight = inFlight
	m.viewport.SetContent(m.renderContent())
}

// SetNames sets the labels used for assignees.
func (m *Model) SetNames(users []model.User, roles []model.Role) {
	clear(m.userNames)
	for _, u := range users {
		m.userNames[u.ID] = u.Label()
	}
	clear(m.roleNames)
	for _, r := range roles {
		m.roleNames[r.ID] = r.Name
	}
}

// View renders the detail view.
func (m Model) View() string {
	if m.task == nil {
		emptyStyle := lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray)
		return emptyStyle.Render("This task is no longer on the roster.")
	}

	return m.viewport.View()
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	if m.task == nil {
		return ""
	}

	task := m.task
	done := model.IsDone(*task)
	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sections = append(sections, titleStyle.Render(task.DisplayTitle()))

	state := "pending"
	if done {
		state = "done"
	}
	badges := []string{theme.StatusStyle(done).Render(state)}
	if task.DueAt != nil {
		badges = append(badges, theme.DueStyle.Render("due "+task.DueAt.String()))
	}
	if m.inFlight {
		badges = append(badges, theme.PendingMarkStyle.Render("saving…"))
	}
	sections = append(sections, strings.Join(badges, "  "), "")

	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray).Width(12)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)
	row := func(label, value string) {
		if value == "" {
			return
		}
		sections = append(sections, metaStyle.Render(label+":")+valStyle.Render(value))
	}

	row("Person", name(m.userNames, model.Deref(task.AssigneeUserID)))
	row("Role", name(m.roleNames, model.Deref(task.AssigneeRoleID)))
	row("Day", task.ForDate)
	if task.CompletedAt != nil {
		row("Completed", task.CompletedAt.Local().Format("15:04"))
	}
	row("Reason", task.CompletionReason)
	if task.TemplateID != nil {
		row("Template", *task.TemplateID)
	}
	if !task.UpdatedAt.IsZero() {
		row("Updated", task.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	row("ID", task.ID)

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", max(1, min(m.width-4, 80))))
	sections = append(sections, "", separator, "")

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)
	sections = append(sections, headerStyle.Render("Notes"))

	notes := task.Notes
	if notes == "" {
		notes = lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true).
			Render("No notes")
	}
	sections = append(sections, notes)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
	m.viewport.SetContent(m.renderContent())
}

func name(names map[string]string, id string) string {
	if id == "" {
		return ""
	}
	if n, ok := names[id]; ok && n != "" {
		return fmt.Sprintf("%s (%s)", n, id)
	}
	return id
}
