package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/kitchen-roster/internal/model"
)

// CreateTemplate inserts a recurring task template.
func (s *SQLiteStore) CreateTemplate(ctx context.Context, tmpl model.TaskTemplate) error {
	if strings.TrimSpace(tmpl.Title) == "" {
		return fmt.Errorf("template title must not be empty")
	}
	if tmpl.ID == "" {
		tmpl.ID = uuid.New().String()
	}
	tmpl.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO task_templates (id, title, default_notes, due_at, assignee_user_id, assignee_role_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tmpl.ID, tmpl.Title, tmpl.DefaultNotes, tmpl.DueAt,
		tmpl.AssigneeUserID, tmpl.AssigneeRoleID, tmpl.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating template: %w", err)
	}
	return nil
}

// GetTemplates returns all templates ordered by due time then title.
func (s *SQLiteStore) GetTemplates(ctx context.Context) ([]model.TaskTemplate, error) {
	var tmpls []model.TaskTemplate
	err := s.db.SelectContext(ctx, &tmpls, `
		SELECT id, title, default_notes, due_at, assignee_user_id, assignee_role_id, created_at
		FROM task_templates
		ORDER BY due_at IS NULL, due_at, title COLLATE NOCASE`)
	if err != nil {
		return nil, fmt.Errorf("getting templates: %w", err)
	}
	return tmpls, nil
}

// HasInstance reports whether templateID already has an instance on day.
func (s *SQLiteStore) HasInstance(ctx context.Context, templateID, day string) (bool, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM task_instances WHERE template_id = ? AND for_date = ?",
		templateID, day,
	)
	if err != nil {
		return false, fmt.Errorf("checking instance of template %s on %s: %w", templateID, day, err)
	}
	return count > 0, nil
}
