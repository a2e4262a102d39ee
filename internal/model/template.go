package model

import "time"

// TaskTemplate describes a task that is instantiated once per day.
type TaskTemplate struct {
	ID             string     `json:"id" db:"id"`
	Title          string     `json:"title" db:"title"`
	DefaultNotes   string     `json:"default_notes" db:"default_notes"`
	DueAt          *TimeOfDay `json:"due_at,omitempty" db:"due_at"`
	AssigneeUserID *string    `json:"assignee_user_id,omitempty" db:"assignee_user_id"`
	AssigneeRoleID *string    `json:"assignee_role_id,omitempty" db:"assignee_role_id"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

// Instantiate builds a pending instance of the template for day.
func (t TaskTemplate) Instantiate(day string) TaskRecord {
	id := t.ID
	rec := TaskRecord{
		TemplateID:     &id,
		Title:          t.Title,
		Notes:          t.DefaultNotes,
		ForDate:        day,
		AssigneeUserID: cloneString(t.AssigneeUserID),
		AssigneeRoleID: cloneString(t.AssigneeRoleID),
		Status:         StatusPending,
	}
	if t.DueAt != nil {
		d := *t.DueAt
		rec.DueAt = &d
	}
	return rec
}
