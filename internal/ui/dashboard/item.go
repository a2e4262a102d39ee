package dashboard

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/kitchen-roster/internal/model"
	"github.com/nhle/kitchen-roster/internal/theme"
)

// TaskItem wraps a model.TaskRecord so it can be used in a bubbles/list.
type TaskItem struct {
	Task model.TaskRecord
}

// FilterValue returns the string used for fuzzy filtering.
func (i TaskItem) FilterValue() string { return i.Task.DisplayTitle() }

// Title returns the task title for the list.
func (i TaskItem) Title() string { return i.Task.DisplayTitle() }

// Description returns a short summary line for the list.
func (i TaskItem) Description() string {
	var parts []string
	if i.Task.DueAt != nil {
		parts = append(parts, i.Task.DueAt.String())
	}
	if i.Task.Notes != "" {
		parts = append(parts, i.Task.Notes)
	}
	return strings.Join(parts, " | ")
}

// decorations is shared by reference between the Model and its delegate
// so updates are visible without rebuilding the list.
type decorations struct {
	marked    map[string]bool
	inFlight  map[string]bool
	userNames map[string]string
	roleNames map[string]string
}

func newDecorations() *decorations {
	return &decorations{
		marked:    make(map[string]bool),
		inFlight:  make(map[string]bool),
		userNames: make(map[string]string),
		roleNames: make(map[string]string),
	}
}

// ItemDelegate implements list.ItemDelegate for rendering roster rows.
type ItemDelegate struct {
	deco *decorations
}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single roster row.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ti, ok := item.(TaskItem)
	if !ok {
		return
	}
	rec := ti.Task
	done := model.IsDone(rec)

	mark := " "
	if d.deco.marked[rec.ID] {
		mark = theme.MarkedStyle.Render("•")
	}

	check := "[ ]"
	if done {
		check = "[x]"
	}
	check = theme.StatusStyle(done).Render(check)

	due := "     "
	if rec.DueAt != nil {
		due = theme.DueStyle.Render(rec.DueAt.String())
	}

	title := rec.DisplayTitle()
	if done {
		title = theme.DimmedStyle.Render(title)
	}

	line := fmt.Sprintf("%s %s %s %s%s%s", mark, check, due, title, d.assignees(rec), d.pending(rec.ID))

	if index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}

// assignees renders the person and role badges.
func (d ItemDelegate) assignees(rec model.TaskRecord) string {
	var b strings.Builder
	if id := model.Deref(rec.AssigneeUserID); id != "" {
		b.WriteString(theme.AssigneeStyle.Render("  @" + lookup(d.deco.userNames, id)))
	}
	if id := model.Deref(rec.AssigneeRoleID); id != "" {
		b.WriteString(theme.AssigneeStyle.Render("  #" + lookup(d.deco.roleNames, id)))
	}
	return b.String()
}

// pending flags a row whose last change is still being saved.
func (d ItemDelegate) pending(id string) string {
	if d.deco.inFlight[id] {
		return theme.PendingMarkStyle.Render("  saving…")
	}
	return ""
}

func lookup(names map[string]string, id string) string {
	if name, ok := names[id]; ok && name != "" {
		return name
	}
	return id
}
