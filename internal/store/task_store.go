package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nhle/kitchen-roster/internal/model"
)

// ErrTaskNotFound is returned when a task id has no row.
var ErrTaskNotFound = errors.New("task not found")

const taskColumns = `id, template_id, title, notes, completion_reason, for_date,
	due_at, assignee_user_id, assignee_role_id, status, completed_at,
	created_at, updated_at`

// QueryDay returns every task instance for day, ordered by due time
// (untimed last) then title.
func (s *SQLiteStore) QueryDay(
	ctx context.Context,
	day string,
) ([]model.TaskRecord, error) {
	var recs []model.TaskRecord
	err := s.db.SelectContext(ctx, &recs, `
		SELECT `+taskColumns+`
		FROM task_instances
		WHERE for_date = ?
		ORDER BY due_at IS NULL, due_at, title COLLATE NOCASE`,
		day,
	)
	if err != nil {
		return nil, fmt.Errorf("querying tasks for %s: %w", day, err)
	}
	return recs, nil
}

// GetTaskByID retrieves a single task by its ID.
func (s *SQLiteStore) GetTaskByID(
	ctx context.Context,
	id string,
) (*model.TaskRecord, error) {
	var rec model.TaskRecord
	err := s.db.GetContext(ctx, &rec,
		"SELECT "+taskColumns+" FROM task_instances WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("getting task %s: %w", id, ErrTaskNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting task %s: %w", id, err)
	}
	return &rec, nil
}

// InsertTask creates a task instance and records a "created" change.
// Generates a UUID if ID is empty and returns the stored ID.
func (s *SQLiteStore) InsertTask(
	ctx context.Context,
	rec model.TaskRecord,
) (string, error) {
	if !model.ValidDay(rec.ForDate) {
		return "", fmt.Errorf("task for_date %q is not a valid day", rec.ForDate)
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	if rec.Status == "" {
		rec.Status = model.StatusPending
	}

	// Keep status and completed_at consistent.
	if model.IsDone(rec) {
		rec.Status = model.StatusCompleted
		if rec.CompletedAt == nil {
			rec.CompletedAt = &now
		}
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encoding task %s: %w", rec.ID, err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO task_instances (
			id, template_id, title, notes, completion_reason, for_date,
			due_at, assignee_user_id, assignee_role_id, status, completed_at,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.TemplateID, rec.Title, rec.Notes, rec.CompletionReason, rec.ForDate,
		rec.DueAt, rec.AssigneeUserID, rec.AssigneeRoleID, rec.Status, utcPtr(rec.CompletedAt),
		rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("inserting task %s: %w", rec.ID, err)
	}

	if err := appendChange(ctx, tx, rec.ID, rec.ForDate, model.ChangeCreated, string(payload)); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing task %s: %w", rec.ID, err)
	}
	return rec.ID, nil
}

// UpdateTask applies a partial update and records an "updated" change
// carrying only the written fields.
func (s *SQLiteStore) UpdateTask(
	ctx context.Context,
	id string,
	patch model.Patch,
) error {
	patch = coupleCompletion(patch, time.Now().UTC())
	assignments := patch.Assignments()
	if len(assignments) == 0 {
		return nil
	}

	payload, err := model.UpdatedPayload(id, patch)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	day, err := taskDay(ctx, tx, id)
	if err != nil {
		return err
	}

	sets := make([]string, 0, len(assignments)+1)
	args := make([]interface{}, 0, len(assignments)+2)
	for _, a := range assignments {
		sets = append(sets, a.Column+" = ?")
		args = append(args, a.Value)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC(), id)

	query := "UPDATE task_instances SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("updating task %s: %w", id, err)
	}

	if err := appendChange(ctx, tx, id, day, model.ChangeUpdated, payload); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing update of task %s: %w", id, err)
	}
	return nil
}

// DeleteTask removes a task instance and records a "deleted" change.
func (s *SQLiteStore) DeleteTask(ctx context.Context, id string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	day, err := taskDay(ctx, tx, id)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM task_instances WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting task %s: %w", id, err)
	}

	if err := appendChange(ctx, tx, id, day, model.ChangeDeleted, model.DeletedPayload(id)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delete of task %s: %w", id, err)
	}
	return nil
}

// ChangesSince returns up to limit change-log rows for day with a
// sequence number greater than afterSeq, in sequence order.
func (s *SQLiteStore) ChangesSince(
	ctx context.Context,
	day string,
	afterSeq int64,
	limit int,
) ([]model.Change, error) {
	if limit <= 0 {
		limit = 100
	}
	var changes []model.Change
	err := s.db.SelectContext(ctx, &changes, `
		SELECT seq, task_id, for_date, kind, payload, created_at
		FROM task_changes
		WHERE for_date = ? AND seq > ?
		ORDER BY seq
		LIMIT ?`,
		day, afterSeq, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying changes for %s after %d: %w", day, afterSeq, err)
	}
	return changes, nil
}

// LatestChangeSeq returns the highest sequence number in the change log.
func (s *SQLiteStore) LatestChangeSeq(ctx context.Context) (int64, error) {
	var seq int64
	if err := s.db.GetContext(ctx, &seq,
		"SELECT COALESCE(MAX(seq), 0) FROM task_changes"); err != nil {
		return 0, fmt.Errorf("reading latest change seq: %w", err)
	}
	return seq, nil
}

// coupleCompletion makes status and completed_at move together: a patch
// that sets one without the other gets the matching value.
func coupleCompletion(p model.Patch, now time.Time) model.Patch {
	status, hasStatus := p.Status.Get()
	_, hasCompleted := p.CompletedAt.Get()

	switch {
	case hasStatus && !hasCompleted:
		if status != nil && (*status == model.StatusCompleted || *status == model.StatusDone) {
			p.CompletedAt = model.Set(now)
		} else {
			p.CompletedAt = model.Clear[time.Time]()
		}
	case hasCompleted && !hasStatus:
		if v, _ := p.CompletedAt.Get(); v != nil {
			p.Status = model.Set(model.StatusCompleted)
		} else {
			p.Status = model.Set(model.StatusPending)
		}
	}
	return p
}

func taskDay(ctx context.Context, tx *sqlx.Tx, id string) (string, error) {
	var day string
	err := tx.GetContext(ctx, &day, "SELECT for_date FROM task_instances WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("task %s: %w", id, ErrTaskNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("looking up task %s: %w", id, err)
	}
	return day, nil
}

func appendChange(
	ctx context.Context,
	tx *sqlx.Tx,
	taskID, day, kind, payload string,
) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO task_changes (task_id, for_date, kind, payload, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		taskID, day, kind, payload, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("recording %s change for task %s: %w", kind, taskID, err)
	}
	return nil
}

func utcPtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC()
}
