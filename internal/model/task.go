package model

import (
	"fmt"
	"strings"
	"time"
)

// Task status values. Writers only ever write StatusPending or
// StatusCompleted; StatusDone is accepted from older rows.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusDone      = "done"
)

// DayLayout is the calendar-day format used for ForDate.
const DayLayout = "2006-01-02"

// TaskRecord is one schedulable unit of work on a single day's roster.
type TaskRecord struct {
	// ID is the stable identity of this instance, unique within a day.
	ID string `json:"id" db:"id"`

	// TemplateID links a generated instance back to its template.
	TemplateID *string `json:"template_id,omitempty" db:"template_id"`

	// Title is the display name. May be blank; see DisplayTitle.
	Title string `json:"title" db:"title"`

	Notes            string `json:"notes" db:"notes"`
	CompletionReason string `json:"completion_reason" db:"completion_reason"`

	// ForDate is the calendar day (DayLayout) this instance belongs to.
	ForDate string `json:"for_date" db:"for_date"`

	// DueAt is an optional time of day.
	DueAt *TimeOfDay `json:"due_at,omitempty" db:"due_at"`

	// AssigneeUserID and AssigneeRoleID may both be set, either, or neither.
	AssigneeUserID *string `json:"assignee_user_id,omitempty" db:"assignee_user_id"`
	AssigneeRoleID *string `json:"assignee_role_id,omitempty" db:"assignee_role_id"`

	Status      string     `json:"status" db:"status"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsDone reports whether the task is complete. Either signal alone is
// enough: a completed/done status, or a non-nil CompletedAt.
func IsDone(rec TaskRecord) bool {
	if rec.CompletedAt != nil {
		return true
	}
	return rec.Status == StatusCompleted || rec.Status == StatusDone
}

// DisplayTitle returns the title, falling back to "Task {id}".
func (r TaskRecord) DisplayTitle() string {
	if t := strings.TrimSpace(r.Title); t != "" {
		return t
	}
	return fmt.Sprintf("Task %s", r.ID)
}

// Clone returns a deep copy so callers can hold a record without
// sharing pointer fields with the roster.
func (r TaskRecord) Clone() TaskRecord {
	c := r
	c.TemplateID = cloneString(r.TemplateID)
	c.AssigneeUserID = cloneString(r.AssigneeUserID)
	c.AssigneeRoleID = cloneString(r.AssigneeRoleID)
	if r.DueAt != nil {
		d := *r.DueAt
		c.DueAt = &d
	}
	if r.CompletedAt != nil {
		t := *r.CompletedAt
		c.CompletedAt = &t
	}
	return c
}

// Today returns the current local calendar day in DayLayout.
func Today() string {
	return time.Now().Format(DayLayout)
}

// ValidDay reports whether s is a well-formed DayLayout date.
func ValidDay(s string) bool {
	_, err := time.Parse(DayLayout, s)
	return err == nil
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns *s, or "" when s is nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
