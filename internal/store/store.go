package store

import (
	"context"

	"github.com/nhle/kitchen-roster/internal/model"
)

// Store defines the persistence interface for the authoritative task
// roster, its change log, the staff directory, and task templates.
type Store interface {
	// === Task instances ===

	QueryDay(ctx context.Context, day string) ([]model.TaskRecord, error)
	GetTaskByID(ctx context.Context, id string) (*model.TaskRecord, error)
	InsertTask(ctx context.Context, rec model.TaskRecord) (string, error)
	UpdateTask(ctx context.Context, id string, patch model.Patch) error
	DeleteTask(ctx context.Context, id string) error

	// === Change log ===

	ChangesSince(ctx context.Context, day string, afterSeq int64, limit int) ([]model.Change, error)
	LatestChangeSeq(ctx context.Context) (int64, error)

	// === Directory ===

	CreateUser(ctx context.Context, user model.User) error
	GetUsers(ctx context.Context) ([]model.User, error)
	CreateRole(ctx context.Context, role model.Role) error
	GetRoles(ctx context.Context) ([]model.Role, error)
	AssignRole(ctx context.Context, userID, roleID string) error
	RevokeRole(ctx context.Context, userID, roleID string) error
	GetRoleIDsForUser(ctx context.Context, userID string) ([]string, error)

	// === Templates ===

	CreateTemplate(ctx context.Context, tmpl model.TaskTemplate) error
	GetTemplates(ctx context.Context) ([]model.TaskTemplate, error)
	HasInstance(ctx context.Context, templateID, day string) (bool, error)
}
