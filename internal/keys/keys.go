package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the roster dashboard.
type KeyMap struct {
	// Navigation
	Down key.Binding
	Up   key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Help toggle
	Help key.Binding

	// Reload the day from the store
	Refresh key.Binding

	// Filters
	CycleScope    key.Binding
	NextCategory  key.Binding
	PrevCategory  key.Binding
	ClearCategory key.Binding

	// Selection for bulk actions
	Mark       key.Binding
	ClearMarks key.Binding

	// Actions; they apply to the marked tasks, or the focused one when
	// nothing is marked.
	Toggle     key.Binding
	Detail     key.Binding
	Notes      key.Binding
	AssignUser key.Binding
	AssignRole key.Binding
	Delete     key.Binding
	New        key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back / dismiss error"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		CycleScope: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "all/mine/direct/role"),
		),
		NextCategory: key.NewBinding(
			key.WithKeys("]", "l", "right"),
			key.WithHelp("]", "next category"),
		),
		PrevCategory: key.NewBinding(
			key.WithKeys("[", "h", "left"),
			key.WithHelp("[", "previous category"),
		),
		ClearCategory: key.NewBinding(
			key.WithKeys("0"),
			key.WithHelp("0", "all categories"),
		),
		Mark: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "mark"),
		),
		ClearMarks: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "unmark all"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("x", "enter"),
			key.WithHelp("x", "toggle done"),
		),
		Detail: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "details"),
		),
		Notes: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "notes"),
		),
		AssignUser: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "assign person"),
		),
		AssignRole: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "assign role"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new task"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Toggle, k.Mark,
		k.CycleScope, k.Quit, k.Help,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Back, k.Quit, k.Help},
		{k.CycleScope, k.NextCategory, k.PrevCategory, k.ClearCategory, k.Refresh},
		{k.Mark, k.ClearMarks},
		{k.Toggle, k.Detail, k.Notes, k.AssignUser, k.AssignRole, k.Delete, k.New},
	}
}
