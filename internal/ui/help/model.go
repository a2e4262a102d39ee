package help

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/kitchen-roster/internal/keys"
	"github.com/nhle/kitchen-roster/internal/theme"
)

// section is one titled group of bindings on the help page.
type section struct {
	title    string
	bindings []key.Binding
}

// paletteLines describes the ":" commands.
var paletteLines = []string{
	":reload, :r         re-query the day",
	":scope <name>       all, mine, direct, role",
	":mine, :all, ...    scope shorthands",
	":category <name>    jump to a category tab",
	":clear              show every category",
	":unmark             drop all marks",
	":quit, :q           leave the roster",
}

// Model is the help overlay for the roster dashboard.
type Model struct {
	keys     *keys.KeyMap
	help     help.Model
	sections []section
	width    int
	height   int
}

// New creates a help view for k.
func New(k *keys.KeyMap, width, height int) Model {
	h := help.New()
	h.Width = width
	return Model{
		keys:     k,
		help:     h,
		sections: sectionsFor(k),
		width:    width,
		height:   height,
	}
}

func sectionsFor(k *keys.KeyMap) []section {
	return []section{
		{"Moving around", []key.Binding{k.Up, k.Down, k.Detail, k.Back, k.Help, k.Quit}},
		{"Whose tasks", []key.Binding{k.CycleScope, k.NextCategory, k.PrevCategory, k.ClearCategory}},
		{"Marks (bulk)", []key.Binding{k.Mark, k.ClearMarks}},
		{"Marked or focused task", []key.Binding{k.Toggle, k.AssignUser, k.AssignRole, k.Delete}},
		{"Single task", []key.Binding{k.Notes, k.New, k.Refresh}},
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the help view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders the help overlay.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)
	headingStyle := lipgloss.NewStyle().Bold(true).Underline(true)

	m.help.Width = m.width - 4
	m.help.ShowAll = true

	blocks := []string{titleStyle.Render("Roster keys")}
	for _, s := range m.sections {
		blocks = append(blocks,
			headingStyle.Render(s.title),
			m.help.FullHelpView([][]key.Binding{s.bindings}),
			"",
		)
	}
	blocks = append(blocks,
		headingStyle.Render("Command palette (:)"),
		theme.DimmedStyle.Render(strings.Join(paletteLines, "\n")),
		"",
		theme.PendingMarkStyle.Render("saving…")+" means the change has not been confirmed by the store yet.",
	)

	return theme.PanelStyle.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, blocks...))
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}
