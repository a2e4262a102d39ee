package command

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/kitchen-roster/internal/theme"
)

// Verbs accepted by the palette.
const (
	VerbReload   = "reload"
	VerbScope    = "scope"
	VerbCategory = "category"
	VerbUnmark   = "unmark"
	VerbQuit     = "quit"
)

// aliases maps shorthand input to a verb and, for scopes, its argument.
var aliases = map[string]Command{
	"r":       {Verb: VerbReload},
	"refresh": {Verb: VerbReload},
	"all":     {Verb: VerbScope, Arg: "all"},
	"mine":    {Verb: VerbScope, Arg: "mine"},
	"direct":  {Verb: VerbScope, Arg: "direct"},
	"role":    {Verb: VerbScope, Arg: "role"},
	"cat":     {Verb: VerbCategory},
	"clear":   {Verb: VerbCategory},
	"q":       {Verb: VerbQuit},
}

// Command is a parsed palette entry.
type Command struct {
	Verb string
	Arg  string
}

// CommandMsg is emitted when the user executes a command.
type CommandMsg Command

// Parse splits input into a verb and its argument, resolving aliases.
// An argument given with an alias replaces the alias default.
func Parse(input string) (Command, bool) {
	fields := strings.Fields(strings.ToLower(input))
	if len(fields) == 0 {
		return Command{}, false
	}
	verb, arg := fields[0], strings.Join(fields[1:], " ")

	if c, ok := aliases[verb]; ok {
		if arg != "" {
			c.Arg = arg
		}
		return c, true
	}
	switch verb {
	case VerbReload, VerbScope, VerbCategory, VerbUnmark, VerbQuit:
		return Command{Verb: verb, Arg: arg}, true
	}
	return Command{}, false
}

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	errMsg string
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "mine, all, category prep, reload..."
	ti.Prompt = ": "
	ti.Focus()
	ti.Width = width - 6

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "enter" {
		raw := strings.TrimSpace(m.input.Value())
		if raw == "" {
			return m, nil
		}
		c, ok := Parse(raw)
		if !ok {
			m.errMsg = "unknown command: " + raw
			return m, nil
		}
		m.input.Reset()
		m.errMsg = ""
		return m, func() tea.Msg { return CommandMsg(c) }
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	rows := []string{titleStyle.Render("Command"), m.input.View()}
	if m.errMsg != "" {
		rows = append(rows, lipgloss.NewStyle().Foreground(theme.ColorRed).Render(m.errMsg))
	}

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	m.errMsg = ""
	return m.input.Focus()
}
