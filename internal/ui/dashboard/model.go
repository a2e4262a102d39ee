package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/kitchen-roster/internal/keys"
	"github.com/nhle/kitchen-roster/internal/model"
	"github.com/nhle/kitchen-roster/internal/roster"
	"github.com/nhle/kitchen-roster/internal/theme"
)

// FilterChangedMsg is sent when the scope or category selection changes.
type FilterChangedMsg struct {
	Filter roster.Filter
}

// headerHeight is the number of lines above the list: tabs and counts.
const headerHeight = 2

// Model is the roster dashboard: scope and category tabs, the counters,
// and the ordered task list.
type Model struct {
	list       list.Model
	keys       *keys.KeyMap
	deco       *decorations
	scope      roster.Scope
	categories []model.CategoryConfig
	// catIndex is 0 for all categories, otherwise categories[catIndex-1].
	catIndex int
	counts   roster.Counts
	width    int
	height   int
}

// New creates a new dashboard model.
func New(k *keys.KeyMap, categories []model.CategoryConfig, width, height int) Model {
	deco := newDecorations()
	l := list.New([]list.Item{}, ItemDelegate{deco: deco}, width, height-headerHeight)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	// The app owns quitting and esc.
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)

	return Model{
		list:       l,
		keys:       k,
		deco:       deco,
		categories: categories,
		width:      width,
		height:     height,
	}
}

// Filter returns the current scope and category selection.
func (m Model) Filter() roster.Filter {
	f := roster.Filter{Scope: m.scope}
	if m.catIndex > 0 && m.catIndex <= len(m.categories) {
		f.Category = m.categories[m.catIndex-1].Name
	}
	return f
}

// SetScope selects scope without emitting a message.
func (m *Model) SetScope(scope roster.Scope) {
	m.scope = scope
}

// SetCategory selects the named category; "" selects all. It reports
// whether the name was known.
func (m *Model) SetCategory(name string) bool {
	if name == "" {
		m.catIndex = 0
		return true
	}
	for i, c := range m.categories {
		if strings.EqualFold(c.Name, name) {
			m.catIndex = i + 1
			return true
		}
	}
	return false
}

// SetView replaces the rows with v. Marks on tasks no longer in view are
// dropped; the cursor stays on the same task when it is still present.
func (m *Model) SetView(v roster.View, inFlight []string) tea.Cmd {
	selected := m.SelectedID()

	items := make([]list.Item, len(v.Tasks))
	visible := make(map[string]bool, len(v.Tasks))
	cursor := 0
	for i, rec := range v.Tasks {
		items[i] = TaskItem{Task: rec}
		visible[rec.ID] = true
		if rec.ID == selected {
			cursor = i
		}
	}
	for id := range m.deco.marked {
		if !visible[id] {
			delete(m.deco.marked, id)
		}
	}

	clear(m.deco.inFlight)
	for _, id := range inFlight {
		m.deco.inFlight[id] = true
	}

	m.counts = v.Counts
	cmd := m.list.SetItems(items)
	if len(items) > 0 {
		m.list.Select(cursor)
	}
	return cmd
}

// SetNames sets the labels used for assignee badges.
func (m *Model) SetNames(users []model.User, roles []model.Role) {
	clear(m.deco.userNames)
	for _, u := range users {
		m.deco.userNames[u.ID] = u.Label()
	}
	clear(m.deco.roleNames)
	for _, r := range roles {
		m.deco.roleNames[r.ID] = r.Name
	}
}

// SelectedID returns the id of the focused task, or "".
func (m Model) SelectedID() string {
	item, ok := m.list.SelectedItem().(TaskItem)
	if !ok {
		return ""
	}
	return item.Task.ID
}

// Selected returns the focused task.
func (m Model) Selected() (model.TaskRecord, bool) {
	item, ok := m.list.SelectedItem().(TaskItem)
	return item.Task, ok
}

// TargetIDs returns the marked task ids in display order, or the focused
// task when nothing is marked.
func (m Model) TargetIDs() []string {
	var ids []string
	for _, it := range m.list.Items() {
		if ti, ok := it.(TaskItem); ok && m.deco.marked[ti.Task.ID] {
			ids = append(ids, ti.Task.ID)
		}
	}
	if len(ids) > 0 {
		return ids
	}
	if id := m.SelectedID(); id != "" {
		return []string{id}
	}
	return nil
}

// MarkedCount returns the number of marked tasks.
func (m Model) MarkedCount() int {
	return len(m.deco.marked)
}

// ClearMarks unmarks every task.
func (m *Model) ClearMarks() {
	clear(m.deco.marked)
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the dashboard.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.CycleScope):
			m.scope = m.scope.Next()
			return m, m.filterChanged()

		case key.Matches(msg, m.keys.NextCategory):
			m.catIndex = (m.catIndex + 1) % (len(m.categories) + 1)
			return m, m.filterChanged()

		case key.Matches(msg, m.keys.PrevCategory):
			m.catIndex = (m.catIndex + len(m.categories)) % (len(m.categories) + 1)
			return m, m.filterChanged()

		case key.Matches(msg, m.keys.ClearCategory):
			m.catIndex = 0
			return m, m.filterChanged()

		case key.Matches(msg, m.keys.Mark):
			if id := m.SelectedID(); id != "" {
				if m.deco.marked[id] {
					delete(m.deco.marked, id)
				} else {
					m.deco.marked[id] = true
				}
				m.list.CursorDown()
			}
			return m, nil

		case key.Matches(msg, m.keys.ClearMarks):
			m.ClearMarks()
			return m, nil
		}
	}

	// Delegate to the list for navigation keys (up/down/pgup/pgdn)
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) filterChanged() tea.Cmd {
	f := m.Filter()
	return func() tea.Msg { return FilterChangedMsg{Filter: f} }
}

// View renders the dashboard.
func (m Model) View() string {
	header := lipgloss.JoinVertical(lipgloss.Left, m.renderTabs(), m.renderCounts())
	if len(m.list.Items()) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, header, m.renderEmptyState())
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, m.list.View())
}

// renderTabs draws the scope tab followed by the category tabs.
func (m Model) renderTabs() string {
	tabs := []string{theme.ActiveTabStyle.Render(m.scope.String())}

	names := make([]string, 0, len(m.categories)+1)
	names = append(names, "all")
	for _, c := range m.categories {
		names = append(names, c.Name)
	}
	for i, name := range names {
		if i == m.catIndex {
			tabs = append(tabs, theme.ActiveTabStyle.Render(name))
		} else {
			tabs = append(tabs, theme.TabStyle.Render(name))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// renderCounts draws the total, pending, and completed counters.
func (m Model) renderCounts() string {
	parts := []string{
		theme.CountStyle("total").Render(fmt.Sprintf("%d tasks", m.counts.Total)),
		theme.CountStyle("pending").Render(fmt.Sprintf("%d pending", m.counts.Pending)),
		theme.CountStyle("completed").Render(fmt.Sprintf("%d done", m.counts.Completed)),
	}
	if n := m.MarkedCount(); n > 0 {
		parts = append(parts, theme.MarkedStyle.Render(fmt.Sprintf(" %d marked", n)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// renderEmptyState shows guidance text when no tasks are in view.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height-headerHeight).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.scope != roster.ScopeAll || m.catIndex != 0 {
		return style.Render("No matching tasks.\nPress tab or 0 to widen the view.")
	}
	return style.Render("Nothing on the roster today.\n\nPress n to add a task.")
}

// SetSize updates the dashboard dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-headerHeight)
}
