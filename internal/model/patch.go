package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Field is one entry of a Patch. A zero Field is absent and leaves the
// target untouched; a present Field either sets a value or clears it.
type Field[T any] struct {
	present bool
	value   *T
}

// Set returns a present field holding v.
func Set[T any](v T) Field[T] {
	return Field[T]{present: true, value: &v}
}

// Clear returns a present field that nulls the target.
func Clear[T any]() Field[T] {
	return Field[T]{present: true}
}

// SetOrClear returns Set(*v) when v is non-nil and Clear otherwise.
func SetOrClear[T any](v *T) Field[T] {
	if v == nil {
		return Clear[T]()
	}
	return Set(*v)
}

// Present reports whether the field takes part in the patch.
func (f Field[T]) Present() bool { return f.present }

// Get returns the new value (nil when cleared) and whether the field is present.
func (f Field[T]) Get() (*T, bool) {
	if !f.present || f.value == nil {
		return nil, f.present
	}
	v := *f.value
	return &v, true
}

// Patch is a partial update of a TaskRecord. Absent fields are left
// untouched when applied.
type Patch struct {
	Title            Field[string]
	Notes            Field[string]
	CompletionReason Field[string]
	DueAt            Field[TimeOfDay]
	Status           Field[string]
	CompletedAt      Field[time.Time]
	AssigneeUserID   Field[string]
	AssigneeRoleID   Field[string]
}

// IsEmpty reports whether no field is present.
func (p Patch) IsEmpty() bool {
	return len(p.Assignments()) == 0
}

// ApplyTo merges the present fields of p onto rec.
func (p Patch) ApplyTo(rec *TaskRecord) {
	if v, ok := p.Title.Get(); ok {
		rec.Title = derefOr(v, "")
	}
	if v, ok := p.Notes.Get(); ok {
		rec.Notes = derefOr(v, "")
	}
	if v, ok := p.CompletionReason.Get(); ok {
		rec.CompletionReason = derefOr(v, "")
	}
	if v, ok := p.DueAt.Get(); ok {
		rec.DueAt = v
	}
	if v, ok := p.Status.Get(); ok {
		rec.Status = derefOr(v, StatusPending)
	}
	if v, ok := p.CompletedAt.Get(); ok {
		rec.CompletedAt = v
	}
	if v, ok := p.AssigneeUserID.Get(); ok {
		rec.AssigneeUserID = v
	}
	if v, ok := p.AssigneeRoleID.Get(); ok {
		rec.AssigneeRoleID = v
	}
}

// Inverse returns a patch that restores, on the fields p touches, the
// values held by before.
func (p Patch) Inverse(before TaskRecord) Patch {
	var inv Patch
	if p.Title.Present() {
		inv.Title = Set(before.Title)
	}
	if p.Notes.Present() {
		inv.Notes = Set(before.Notes)
	}
	if p.CompletionReason.Present() {
		inv.CompletionReason = Set(before.CompletionReason)
	}
	if p.DueAt.Present() {
		inv.DueAt = SetOrClear(before.DueAt)
	}
	if p.Status.Present() {
		inv.Status = Set(before.Status)
	}
	if p.CompletedAt.Present() {
		inv.CompletedAt = SetOrClear(before.CompletedAt)
	}
	if p.AssigneeUserID.Present() {
		inv.AssigneeUserID = SetOrClear(before.AssigneeUserID)
	}
	if p.AssigneeRoleID.Present() {
		inv.AssigneeRoleID = SetOrClear(before.AssigneeRoleID)
	}
	return inv
}

// Assignment is one column write derived from a Patch.
type Assignment struct {
	Column string
	Value  interface{}
}

// Assignments lists the column writes for the present fields, in a
// fixed column order. Cleared text columns are written as "".
func (p Patch) Assignments() []Assignment {
	var out []Assignment
	text := func(col string, f Field[string], null string) {
		if v, ok := f.Get(); ok {
			out = append(out, Assignment{Column: col, Value: derefOr(v, null)})
		}
	}
	text("title", p.Title, "")
	text("notes", p.Notes, "")
	text("completion_reason", p.CompletionReason, "")
	if v, ok := p.DueAt.Get(); ok {
		out = append(out, Assignment{Column: "due_at", Value: nullable(v)})
	}
	text("status", p.Status, StatusPending)
	if v, ok := p.CompletedAt.Get(); ok {
		out = append(out, Assignment{Column: "completed_at", Value: nullableTime(v)})
	}
	if v, ok := p.AssigneeUserID.Get(); ok {
		out = append(out, Assignment{Column: "assignee_user_id", Value: nullable(v)})
	}
	if v, ok := p.AssigneeRoleID.Get(); ok {
		out = append(out, Assignment{Column: "assignee_role_id", Value: nullable(v)})
	}
	return out
}

// MarshalJSON writes only present fields; cleared fields encode as null.
func (p Patch) MarshalJSON() ([]byte, error) {
	m := make(map[string]interface{})
	put := func(key string, present bool, v interface{}) {
		if present {
			m[key] = v
		}
	}
	put("title", p.Title.Present(), p.Title.value)
	put("notes", p.Notes.Present(), p.Notes.value)
	put("completion_reason", p.CompletionReason.Present(), p.CompletionReason.value)
	put("due_at", p.DueAt.Present(), p.DueAt.value)
	put("status", p.Status.Present(), p.Status.value)
	put("completed_at", p.CompletedAt.Present(), p.CompletedAt.value)
	put("assignee_user_id", p.AssigneeUserID.Present(), p.AssigneeUserID.value)
	put("assignee_role_id", p.AssigneeRoleID.Present(), p.AssigneeRoleID.value)
	return json.Marshal(m)
}

// UnmarshalJSON reads a loosely structured object: known keys become
// present fields, null clears, unknown keys are ignored.
func (p *Patch) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decoding patch: %w", err)
	}
	return p.decode(raw)
}

func (p *Patch) decode(raw map[string]json.RawMessage) error {
	var out Patch
	if err := decodeField(raw, "title", &out.Title); err != nil {
		return err
	}
	if err := decodeField(raw, "notes", &out.Notes); err != nil {
		return err
	}
	if err := decodeField(raw, "completion_reason", &out.CompletionReason); err != nil {
		return err
	}
	if err := decodeField(raw, "due_at", &out.DueAt); err != nil {
		return err
	}
	if err := decodeField(raw, "status", &out.Status); err != nil {
		return err
	}
	if err := decodeField(raw, "completed_at", &out.CompletedAt); err != nil {
		return err
	}
	if err := decodeField(raw, "assignee_user_id", &out.AssigneeUserID); err != nil {
		return err
	}
	if err := decodeField(raw, "assignee_role_id", &out.AssigneeRoleID); err != nil {
		return err
	}
	*p = out
	return nil
}

// DecodePatchObject builds a Patch from an already split JSON object.
func DecodePatchObject(raw map[string]json.RawMessage) (Patch, error) {
	var p Patch
	err := p.decode(raw)
	return p, err
}

func decodeField[T any](raw map[string]json.RawMessage, key string, f *Field[T]) error {
	msg, ok := raw[key]
	if !ok {
		return nil
	}
	if string(msg) == "null" {
		*f = Clear[T]()
		return nil
	}
	var v T
	if err := json.Unmarshal(msg, &v); err != nil {
		return fmt.Errorf("decoding %s: %w", key, err)
	}
	*f = Set(v)
	return nil
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

func nullable[T any](v *T) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullableTime(v *time.Time) interface{} {
	if v == nil {
		return nil
	}
	return v.UTC()
}
